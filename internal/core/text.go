package core

import (
	"strings"

	"recovery-assistant/pkg"
)

// extractRiskTag pulls a [RISK_LEVEL: X] marker out of the model's reply,
// returning the cleaned narrative and the parsed level. Replies without a
// marker yield RiskUnknown.
func extractRiskTag(text string) (string, pkg.RiskLevel) {
	for _, tag := range []struct {
		marker string
		level  pkg.RiskLevel
	}{
		{"[RISK_LEVEL: HIGH]", pkg.RiskHigh},
		{"[RISK_LEVEL: MODERATE]", pkg.RiskModerate},
		{"[RISK_LEVEL: LOW]", pkg.RiskLow},
	} {
		if strings.Contains(text, tag.marker) {
			return strings.TrimSpace(strings.ReplaceAll(text, tag.marker, "")), tag.level
		}
	}
	return strings.TrimSpace(text), pkg.RiskUnknown
}

// extractDetails pulls a [DETAILS: …] block out of the narrative, returning
// the cleaned text and the summary it carried.
func extractDetails(text string) (string, map[string]string) {
	start := strings.Index(text, "[DETAILS:")
	if start == -1 {
		return text, nil
	}
	end := strings.Index(text[start:], "]")
	if end == -1 {
		return text, nil
	}
	end += start
	summary := strings.TrimSpace(text[start+len("[DETAILS:") : end])
	cleaned := strings.TrimSpace(text[:start] + text[end+1:])
	return cleaned, map[string]string{"summary": summary}
}

// firstQuestionOnly enforces the one-question-per-turn rule: when the text
// contains more than one question mark, it is cut after the first.
func firstQuestionOnly(text string) string {
	qpos := strings.Index(text, "?")
	if qpos == -1 {
		return text
	}
	if strings.Index(text[qpos+1:], "?") != -1 {
		return text[:qpos+1]
	}
	return text
}

// truncateText caps text at maxChars, appending an ellipsis when cut.
func truncateText(text string, maxChars int) string {
	if len(text) <= maxChars {
		return text
	}
	return text[:maxChars] + "..."
}
