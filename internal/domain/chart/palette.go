package chart

// Palette colours, shared by every chart so series keep their colour across pages.
var (
	ColorSelf    = "rgba(102, 126, 234, 0.8)"
	ColorManager = "rgba(118, 75, 162, 0.8)"
	ColorUser1   = "rgba(54, 162, 235, 0.8)"
	ColorUser2   = "rgba(255, 99, 132, 0.8)"

	categorical = []string{
		"#FF6384", "#36A2EB", "#FFCE56", "#4BC0C0",
		"#9966FF", "#FF9F40", "#C9CBCF", "#667eea",
	}

	// levelColors index by score 1..5.
	levelColors = []string{"", "#f44336", "#ff9800", "#FFCE56", "#4caf50", "#4BC0C0"}
)

// Categorical returns n colours, cycling the categorical palette.
func Categorical(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = categorical[i%len(categorical)]
	}
	return out
}
