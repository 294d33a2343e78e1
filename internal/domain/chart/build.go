package chart

import (
	"fmt"
	"strings"

	"github.com/okian/skillmatrix/internal/domain/model"
)

// Series is an input value series aligned with the label list.
type Series struct {
	Label  string
	Values []float64
	Color  string
}

// BuildRadar keeps only the label indices where at least one series has a
// positive value, truncates labels and pins the scale to 0..5.
func BuildRadar(labels []string, series []Series, opts ...Option) (Config, error) {
	return buildRadar(labels, nil, series, opts...)
}

// buildRadar is BuildRadar with optional item ids aligned with labels.
func buildRadar(labels []string, ids []int, series []Series, opts ...Option) (Config, error) {
	st := defaults(opts)
	if ids != nil && len(ids) != len(labels) {
		return Config{}, fmt.Errorf("%w: %d ids for %d labels", ErrLengthMismatch, len(ids), len(labels))
	}
	for _, s := range series {
		if len(s.Values) != len(labels) {
			return Config{}, fmt.Errorf("%w: %q has %d values for %d labels", ErrLengthMismatch, s.Label, len(s.Values), len(labels))
		}
	}

	keep := make([]int, 0, len(labels))
	for i := range labels {
		for _, s := range series {
			if s.Values[i] > 0 {
				keep = append(keep, i)
				break
			}
		}
	}
	if len(keep) == 0 {
		return Config{}, ErrNoData
	}

	cfg := Config{
		Kind:       KindRadar,
		Title:      st.title,
		Labels:     make([]string, len(keep)),
		fullLabels: make([]string, len(keep)),
		Datasets:   make([]Dataset, len(series)),
		Scale:      LevelScale(),
	}
	if ids != nil {
		cfg.ids = make([]int, len(keep))
	}
	for j, i := range keep {
		cfg.fullLabels[j] = labels[i]
		cfg.Labels[j] = TruncateLabel(labels[i], st.labelMax)
		if ids != nil {
			cfg.ids[j] = ids[i]
		}
	}
	for k, s := range series {
		data := make([]float64, len(keep))
		for j, i := range keep {
			data[j] = s.Values[i]
		}
		cfg.Datasets[k] = Dataset{Label: s.Label, Data: data, BorderColor: s.Color, Background: []string{s.Color}}
	}
	return cfg, nil
}

// BuildSkillRadar draws the self and manager series of one employee.
func BuildSkillRadar(skills []model.SkillScores, opts ...Option) (Config, error) {
	labels := make([]string, len(skills))
	ids := make([]int, len(skills))
	self := make([]float64, len(skills))
	manager := make([]float64, len(skills))
	for i, s := range skills {
		labels[i] = s.Skill.Name
		ids[i] = s.Skill.ID
		self[i] = float64(s.Scores.Self)
		manager[i] = float64(s.Scores.Manager)
	}
	return buildRadar(labels, ids, []Series{
		{Label: "Self-assessment", Values: self, Color: ColorSelf},
		{Label: "Manager assessment", Values: manager, Color: ColorManager},
	}, opts...)
}

// BuildComparison overlays two employees. Only skills rated for both are
// plotted; fewer than the configured minimum yields ErrNotEnoughData.
func BuildComparison(cmp model.Comparison, opts ...Option) (Config, error) {
	st := defaults(opts)

	var labels []string
	var one, two []float64
	for _, r := range cmp.Rows {
		if !r.BothRated() {
			continue
		}
		labels = append(labels, r.SkillName)
		one = append(one, float64(r.User1Score))
		two = append(two, float64(r.User2Score))
	}
	if len(labels) < st.minShared {
		return Config{}, fmt.Errorf("%w: %d of %d doubly rated skills", ErrNotEnoughData, len(labels), st.minShared)
	}

	return BuildRadar(labels, []Series{
		{Label: nameOr(cmp.User1.FullName, "User 1"), Values: one, Color: ColorUser1},
		{Label: nameOr(cmp.User2.FullName, "User 2"), Values: two, Color: ColorUser2},
	}, opts...)
}

// BuildDoughnut draws one series as slices.
func BuildDoughnut(labels []string, values []float64, opts ...Option) (Config, error) {
	st := defaults(opts)
	if len(values) != len(labels) {
		return Config{}, fmt.Errorf("%w: %d values for %d labels", ErrLengthMismatch, len(values), len(labels))
	}
	if len(values) == 0 {
		return Config{}, ErrNoData
	}
	return Config{
		Kind:       KindDoughnut,
		Title:      st.title,
		Labels:     append([]string(nil), labels...),
		fullLabels: append([]string(nil), labels...),
		Datasets: []Dataset{{
			Label:      st.title,
			Data:       append([]float64(nil), values...),
			Background: Categorical(len(values)),
		}},
	}, nil
}

// BuildBar draws one or more series as grouped bars.
func BuildBar(labels []string, series []Series, opts ...Option) (Config, error) {
	return buildCartesian(KindBar, labels, series, opts)
}

// BuildLine draws one or more series as lines on the level scale.
func BuildLine(labels []string, series []Series, opts ...Option) (Config, error) {
	cfg, err := buildCartesian(KindLine, labels, series, opts)
	if err != nil {
		return Config{}, err
	}
	cfg.Scale = LevelScale()
	return cfg, nil
}

// BuildDistribution counts assessments per level 1..5.
func BuildDistribution(counts map[model.Score]int, opts ...Option) (Config, error) {
	labels := make([]string, 0, int(model.ScoreMax))
	values := make([]float64, 0, int(model.ScoreMax))
	colors := make([]string, 0, int(model.ScoreMax))
	total := 0
	for s := model.ScoreMin; s <= model.ScoreMax; s++ {
		labels = append(labels, s.Level())
		values = append(values, float64(counts[s]))
		colors = append(colors, levelColors[s])
		total += counts[s]
	}
	if total == 0 {
		return Config{}, ErrNoData
	}
	cfg, err := BuildBar(labels, []Series{{Label: "Assessments", Values: values}}, opts...)
	if err != nil {
		return Config{}, err
	}
	cfg.Datasets[0].Background = colors
	return cfg, nil
}

// BuildRoleDistribution draws headcount per role.
func BuildRoleDistribution(roles []model.RoleCount, opts ...Option) (Config, error) {
	labels := make([]string, len(roles))
	values := make([]float64, len(roles))
	for i, r := range roles {
		labels[i] = roleTitle(r.Role)
		values[i] = float64(r.Count)
	}
	return BuildDoughnut(labels, values, opts...)
}

// BuildDepartmentAverages draws the average score per department on the level scale.
func BuildDepartmentAverages(deps []model.DepartmentStat, opts ...Option) (Config, error) {
	labels := make([]string, len(deps))
	values := make([]float64, len(deps))
	for i, d := range deps {
		labels[i] = d.Department
		values[i] = d.AvgScore
	}
	cfg, err := BuildBar(labels, []Series{{Label: "Average score", Values: values, Color: ColorSelf}}, opts...)
	if err != nil {
		return Config{}, err
	}
	cfg.Scale = LevelScale()
	return cfg, nil
}

func buildCartesian(kind Kind, labels []string, series []Series, opts []Option) (Config, error) {
	st := defaults(opts)
	if len(labels) == 0 || len(series) == 0 {
		return Config{}, ErrNoData
	}
	cfg := Config{
		Kind:       kind,
		Title:      st.title,
		Labels:     make([]string, len(labels)),
		fullLabels: append([]string(nil), labels...),
		Datasets:   make([]Dataset, len(series)),
	}
	for i, l := range labels {
		cfg.Labels[i] = TruncateLabel(l, st.labelMax)
	}
	for k, s := range series {
		if len(s.Values) != len(labels) {
			return Config{}, fmt.Errorf("%w: %q has %d values for %d labels", ErrLengthMismatch, s.Label, len(s.Values), len(labels))
		}
		color := s.Color
		if color == "" {
			color = categorical[k%len(categorical)]
		}
		cfg.Datasets[k] = Dataset{
			Label:       s.Label,
			Data:        append([]float64(nil), s.Values...),
			Background:  []string{color},
			BorderColor: color,
		}
	}
	return cfg, nil
}

func nameOr(name, fallback string) string {
	if strings.TrimSpace(name) == "" {
		return fallback
	}
	return name
}

func roleTitle(r model.Role) string {
	switch r {
	case model.RoleHR:
		return "HR"
	case "":
		return "Unknown"
	default:
		s := string(r)
		return strings.ToUpper(s[:1]) + s[1:]
	}
}
