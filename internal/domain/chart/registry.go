package chart

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/skillmatrix/pkg/metrics"
)

// Instance is a chart drawn on a canvas.
type Instance interface {
	ID() string
	Config() Config
	// Update replaces one value of a dataset in place and redraws.
	Update(dataset, index int, value float64) error
	Destroy() error
}

// Renderer constructs chart instances. The drawing library behind it is
// opaque to this package.
type Renderer interface {
	Create(ctx context.Context, canvasID string, cfg Config) (Instance, error)
}

// Registry binds at most one live instance to each canvas.
type Registry struct {
	mu       sync.Mutex
	renderer Renderer
	live     map[string]Instance
}

// NewRegistry returns a Registry drawing through r.
func NewRegistry(r Renderer) *Registry {
	return &Registry{renderer: r, live: make(map[string]Instance)}
}

// Render destroys whatever is bound to canvasID and then draws cfg there.
// The previous instance is gone even when creating the new one fails.
func (r *Registry) Render(ctx context.Context, canvasID string, cfg Config) (Instance, error) {
	if r.renderer == nil {
		return nil, ErrNoRenderer
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.destroyLocked(canvasID); err != nil {
		return nil, err
	}
	inst, err := r.renderer.Create(ctx, canvasID, cfg)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", canvasID, err)
	}
	r.live[canvasID] = inst
	metrics.RecordChartRender(string(cfg.Kind))
	metrics.UpdateChartsLive(len(r.live))
	return inst, nil
}

// UpdateValue changes a single point of the chart bound to canvasID.
func (r *Registry) UpdateValue(canvasID string, dataset, index int, value float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, ok := r.live[canvasID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoInstance, canvasID)
	}
	if err := inst.Update(dataset, index, value); err != nil {
		return err
	}
	metrics.RecordChartValueUpdate()
	return nil
}

// Live returns the instance bound to canvasID.
func (r *Registry) Live(canvasID string) (Instance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.live[canvasID]
	return inst, ok
}

// Len returns the number of live instances.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// Destroy tears down the chart bound to canvasID, if any.
func (r *Registry) Destroy(canvasID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.destroyLocked(canvasID)
}

// DestroyAll tears down every live chart and returns the first error.
func (r *Registry) DestroyAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var first error
	for id := range r.live {
		if err := r.destroyLocked(id); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (r *Registry) destroyLocked(canvasID string) error {
	inst, ok := r.live[canvasID]
	if !ok {
		return nil
	}
	delete(r.live, canvasID)
	metrics.RecordChartDestroy()
	metrics.UpdateChartsLive(len(r.live))
	if err := inst.Destroy(); err != nil {
		return fmt.Errorf("destroy %s: %w", canvasID, err)
	}
	return nil
}
