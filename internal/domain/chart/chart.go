// Package chart builds chart configurations from skill scores and keeps at
// most one live chart instance per canvas.
package chart

import (
	"fmt"
	"math"
	"strconv"

	"github.com/okian/skillmatrix/internal/domain/model"
)

// Kind is the chart type.
type Kind string

// Supported chart kinds.
const (
	KindRadar    Kind = "radar"
	KindBar      Kind = "bar"
	KindDoughnut Kind = "doughnut"
	KindLine     Kind = "line"
)

// Dataset is one named series.
type Dataset struct {
	Label       string
	Data        []float64
	Background  []string
	BorderColor string
}

// Scale fixes the value axis.
type Scale struct {
	Min  float64
	Max  float64
	Step float64
	// TickLabels maps integer tick values to display text.
	TickLabels map[int]string
}

// Config is everything a renderer needs to draw a chart. Tooltip text is not
// stored; it is derived from the raw values by TooltipLabel.
type Config struct {
	Kind     Kind
	Title    string
	Labels   []string
	Datasets []Dataset
	Scale    *Scale

	// fullLabels keeps untruncated labels for tooltip titles.
	fullLabels []string
	// ids holds the skill id behind each label of a skill radar.
	ids []int
}

// IndexOf returns the label index plotting skill id.
func (c Config) IndexOf(id int) (int, bool) {
	for i, v := range c.ids {
		if v == id {
			return i, true
		}
	}
	return -1, false
}

// FullLabel returns the untruncated label at index.
func (c Config) FullLabel(index int) string {
	if index >= 0 && index < len(c.fullLabels) {
		return c.fullLabels[index]
	}
	if index >= 0 && index < len(c.Labels) {
		return c.Labels[index]
	}
	return ""
}

// TooltipLabel derives the tooltip text for one data point from its raw value.
// Radar and line points read "Series: score (Level)"; doughnut slices read
// "Label: value (pct%)"; bars read "Series: value".
func (c Config) TooltipLabel(dataset, index int) (string, error) {
	if dataset < 0 || dataset >= len(c.Datasets) {
		return "", fmt.Errorf("%w: dataset %d", ErrOutOfRange, dataset)
	}
	ds := c.Datasets[dataset]
	if index < 0 || index >= len(ds.Data) {
		return "", fmt.Errorf("%w: index %d", ErrOutOfRange, index)
	}
	v := ds.Data[index]

	switch c.Kind {
	case KindRadar, KindLine:
		return fmt.Sprintf("%s: %s (%s)", ds.Label, formatValue(v), LevelForValue(v)), nil
	case KindDoughnut:
		total := 0.0
		for _, x := range ds.Data {
			total += x
		}
		pct := 0
		if total > 0 {
			pct = int(math.Round(v / total * 100))
		}
		return fmt.Sprintf("%s: %s (%d%%)", c.FullLabel(index), formatValue(v), pct), nil
	default:
		return fmt.Sprintf("%s: %s", ds.Label, formatValue(v)), nil
	}
}

// LevelForValue maps a possibly fractional score to a level name. Averages
// round up to the next level, so 3.2 reads as Advanced.
func LevelForValue(v float64) string {
	if v <= 0 {
		return model.ScoreUnset.Level()
	}
	s := model.Score(math.Ceil(v))
	if s > model.ScoreMax {
		s = model.ScoreMax
	}
	return s.Level()
}

// LevelScale is the fixed 0..5 scale with level-name ticks.
func LevelScale() *Scale {
	ticks := make(map[int]string, int(model.ScoreMax)+1)
	for s := model.ScoreUnset; s <= model.ScoreMax; s++ {
		ticks[int(s)] = s.Level()
	}
	return &Scale{Min: 0, Max: float64(model.ScoreMax), Step: 1, TickLabels: ticks}
}

func formatValue(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}
