package chart

// Option tunes a builder.
type Option func(*buildSettings)

type buildSettings struct {
	labelMax  int
	minShared int
	title     string
}

func defaults(opts []Option) buildSettings {
	s := buildSettings{labelMax: 20, minShared: 3}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithLabelMax truncates point labels to n runes.
func WithLabelMax(n int) Option {
	return func(s *buildSettings) {
		if n > 0 {
			s.labelMax = n
		}
	}
}

// WithMinShared sets how many doubly rated skills a comparison needs.
func WithMinShared(n int) Option {
	return func(s *buildSettings) {
		if n > 0 {
			s.minShared = n
		}
	}
}

// WithTitle sets the chart title.
func WithTitle(title string) Option {
	return func(s *buildSettings) {
		s.title = title
	}
}
