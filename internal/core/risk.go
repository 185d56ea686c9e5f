package core

import "recovery-assistant/pkg"

// Alert thresholds over the numeric risk score.
const (
	highAlertScore     = 70 // strictly above: call the patient now
	moderateAlertScore = 40 // from here up to highAlertScore: schedule follow-up
)

// ComputeTrend compares the first and last score of the window. Fewer than
// two points read as stable.
func ComputeTrend(scores []int) pkg.Trend {
	if len(scores) < 2 {
		return pkg.TrendStable
	}
	delta := scores[len(scores)-1] - scores[0]
	switch {
	case delta < 0:
		return pkg.TrendImproving
	case delta > 0:
		return pkg.TrendWorsening
	default:
		return pkg.TrendStable
	}
}

// trendLine is the short status sentence appended to question-free turns.
func trendLine(t pkg.Trend) string {
	switch t {
	case pkg.TrendImproving:
		return "\nYour recovery trend is improving!"
	case pkg.TrendWorsening:
		return "\nYour condition is worsening, please consult your doctor."
	default:
		return "\nYour status appears stable at the moment."
	}
}
