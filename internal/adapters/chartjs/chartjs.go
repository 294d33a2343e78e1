// Package chartjs renders chart configurations as Chart.js documents and
// keeps the latest document per canvas for the status server to publish.
package chartjs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/skillmatrix/internal/domain/chart"
)

// ErrDestroyed is returned when updating an instance that was torn down.
var ErrDestroyed = errors.New("chart instance destroyed")

// Document is the published form of one chart: a Chart.js config plus the
// tooltip text computed from the current values.
type Document struct {
	ID         string     `json:"id"`
	Canvas     string     `json:"canvas"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Config     jsConfig   `json:"config"`
	Tooltips   [][]string `json:"tooltips"`
	FullLabels []string   `json:"full_labels"`
}

type jsConfig struct {
	Type    string    `json:"type"`
	Data    jsData    `json:"data"`
	Options jsOptions `json:"options"`
}

type jsData struct {
	Labels   []string    `json:"labels"`
	Datasets []jsDataset `json:"datasets"`
}

type jsDataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor any       `json:"backgroundColor,omitempty"`
	BorderColor     string    `json:"borderColor,omitempty"`
}

type jsOptions struct {
	Responsive bool               `json:"responsive"`
	Plugins    jsPlugins          `json:"plugins"`
	Scales     map[string]jsScale `json:"scales,omitempty"`
}

type jsPlugins struct {
	Title  jsTitle  `json:"title"`
	Legend jsLegend `json:"legend"`
}

type jsTitle struct {
	Display bool   `json:"display"`
	Text    string `json:"text,omitempty"`
}

type jsLegend struct {
	Position string `json:"position"`
}

type jsScale struct {
	Min        float64        `json:"min"`
	Max        float64        `json:"max"`
	Ticks      jsTicks        `json:"ticks"`
	TickLabels map[string]any `json:"tickLabels,omitempty"`
}

type jsTicks struct {
	StepSize float64 `json:"stepSize"`
}

// Renderer implements chart.Renderer.
type Renderer struct {
	mu        sync.RWMutex
	instances map[string]*Instance
	now       func() time.Time
}

// NewRenderer creates a Renderer with nothing published.
func NewRenderer() *Renderer {
	return &Renderer{instances: make(map[string]*Instance), now: time.Now}
}

// Create binds a new instance to canvasID and publishes it.
func (r *Renderer) Create(ctx context.Context, canvasID string, cfg chart.Config) (chart.Instance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if canvasID == "" {
		return nil, fmt.Errorf("create chart: empty canvas id")
	}
	inst := &Instance{
		id:       uuid.NewString(),
		canvas:   canvasID,
		cfg:      cloneConfig(cfg),
		renderer: r,
		updated:  r.now(),
	}
	r.mu.Lock()
	r.instances[canvasID] = inst
	r.mu.Unlock()
	return inst, nil
}

// Document returns the published document for canvasID.
func (r *Renderer) Document(canvasID string) (Document, bool) {
	r.mu.RLock()
	inst, ok := r.instances[canvasID]
	r.mu.RUnlock()
	if !ok {
		return Document{}, false
	}
	return inst.Document(), true
}

// Canvases lists every canvas with a live chart, sorted.
func (r *Renderer) Canvases() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.instances))
	for id := range r.instances {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (r *Renderer) remove(inst *Instance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.instances[inst.canvas]; ok && cur == inst {
		delete(r.instances, inst.canvas)
	}
}

// Instance is one drawn chart.
type Instance struct {
	id       string
	canvas   string
	renderer *Renderer

	mu        sync.RWMutex
	cfg       chart.Config
	updated   time.Time
	destroyed bool
}

// ID returns the instance id.
func (i *Instance) ID() string { return i.id }

// Config returns a copy of the current configuration.
func (i *Instance) Config() chart.Config {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return cloneConfig(i.cfg)
}

// Update replaces one value in place.
func (i *Instance) Update(dataset, index int, value float64) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.destroyed {
		return ErrDestroyed
	}
	if dataset < 0 || dataset >= len(i.cfg.Datasets) {
		return fmt.Errorf("%w: dataset %d", chart.ErrOutOfRange, dataset)
	}
	data := i.cfg.Datasets[dataset].Data
	if index < 0 || index >= len(data) {
		return fmt.Errorf("%w: index %d", chart.ErrOutOfRange, index)
	}
	data[index] = value
	i.updated = i.renderer.now()
	return nil
}

// Destroy unpublishes the instance. Destroying twice is a no-op.
func (i *Instance) Destroy() error {
	i.mu.Lock()
	if i.destroyed {
		i.mu.Unlock()
		return nil
	}
	i.destroyed = true
	i.mu.Unlock()
	i.renderer.remove(i)
	return nil
}

// Document renders the Chart.js form of the instance.
func (i *Instance) Document() Document {
	i.mu.RLock()
	defer i.mu.RUnlock()

	cfg := i.cfg
	doc := Document{
		ID:        i.id,
		Canvas:    i.canvas,
		UpdatedAt: i.updated,
		Config: jsConfig{
			Type: string(cfg.Kind),
			Data: jsData{Labels: append([]string(nil), cfg.Labels...), Datasets: make([]jsDataset, len(cfg.Datasets))},
			Options: jsOptions{
				Responsive: true,
				Plugins: jsPlugins{
					Title:  jsTitle{Display: cfg.Title != "", Text: cfg.Title},
					Legend: jsLegend{Position: legendPosition(cfg.Kind)},
				},
			},
		},
		Tooltips:   make([][]string, len(cfg.Datasets)),
		FullLabels: make([]string, len(cfg.Labels)),
	}
	for li := range cfg.Labels {
		doc.FullLabels[li] = cfg.FullLabel(li)
	}
	for di, ds := range cfg.Datasets {
		doc.Config.Data.Datasets[di] = jsDataset{
			Label:           ds.Label,
			Data:            append([]float64(nil), ds.Data...),
			BackgroundColor: background(ds.Background),
			BorderColor:     ds.BorderColor,
		}
		tips := make([]string, len(ds.Data))
		for vi := range ds.Data {
			tips[vi], _ = cfg.TooltipLabel(di, vi)
		}
		doc.Tooltips[di] = tips
	}
	if cfg.Scale != nil {
		doc.Config.Options.Scales = map[string]jsScale{scaleAxis(cfg.Kind): toScale(*cfg.Scale)}
	}
	return doc
}

// MarshalJSON encodes the published document.
func (i *Instance) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.Document())
}

func toScale(s chart.Scale) jsScale {
	out := jsScale{Min: s.Min, Max: s.Max, Ticks: jsTicks{StepSize: s.Step}}
	if len(s.TickLabels) > 0 {
		out.TickLabels = make(map[string]any, len(s.TickLabels))
		for k, v := range s.TickLabels {
			out.TickLabels[fmt.Sprint(k)] = v
		}
	}
	return out
}

func scaleAxis(k chart.Kind) string {
	if k == chart.KindRadar {
		return "r"
	}
	return "y"
}

func legendPosition(k chart.Kind) string {
	if k == chart.KindDoughnut {
		return "right"
	}
	return "top"
}

func background(colors []string) any {
	switch len(colors) {
	case 0:
		return nil
	case 1:
		return colors[0]
	default:
		return colors
	}
}

// cloneConfig copies the datasets so in-place updates never reach the
// caller's slices.
func cloneConfig(cfg chart.Config) chart.Config {
	out := cfg
	out.Labels = append([]string(nil), cfg.Labels...)
	out.Datasets = make([]chart.Dataset, len(cfg.Datasets))
	for i, ds := range cfg.Datasets {
		ds.Data = append([]float64(nil), ds.Data...)
		ds.Background = append([]string(nil), ds.Background...)
		out.Datasets[i] = ds
	}
	if cfg.Scale != nil {
		sc := *cfg.Scale
		out.Scale = &sc
	}
	return out
}
