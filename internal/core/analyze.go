package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"recovery-assistant/internal/llm"
	"recovery-assistant/pkg"
)

// defaultComplications is used when the model cannot extract a watch list
// from a report.
var defaultComplications = []string{"infection", "bleeding", "pain", "swelling", "delayed healing"}

// Analyzer turns uploaded report text into a clinical summary and, when
// possible, structured surgery info.
type Analyzer struct {
	LLM llm.Client
	Log zerolog.Logger
}

// AnalyzeUpload summarizes a report's text content for later use as chat
// context. Content is truncated before it reaches the model.
func (a *Analyzer) AnalyzeUpload(ctx context.Context, filename, content string) (string, error) {
	analysis, err := a.LLM.Complete(ctx, analysisSystemPrompt, analysisPrompt(filename, truncateText(content, 2000)))
	if err != nil {
		return "", fmt.Errorf("analyze report: %w", err)
	}
	return strings.TrimSpace(analysis), nil
}

// ExtractSurgeryInfo pulls the surgery type, date and expected
// complications out of an analysis. Model failures and unparseable output
// fall back to a generic watch list rather than erroring, since the intake
// flow works without structured info.
func (a *Analyzer) ExtractSurgeryInfo(ctx context.Context, analysis string) pkg.SurgeryInfo {
	fallback := pkg.SurgeryInfo{SurgeryType: "Unknown", CommonComplications: defaultComplications}

	raw, err := a.LLM.Complete(ctx, extractionSystemPrompt, extractionPrompt(analysis))
	if err != nil {
		a.Log.Warn().Err(err).Msg("surgery info extraction failed")
		return fallback
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return fallback
	}

	var info pkg.SurgeryInfo
	if err := json.Unmarshal([]byte(raw[start:end+1]), &info); err != nil {
		a.Log.Warn().Err(err).Msg("surgery info not valid JSON")
		return fallback
	}
	if info.SurgeryType == "" {
		info.SurgeryType = "Unknown"
	}
	if len(info.CommonComplications) == 0 {
		info.CommonComplications = defaultComplications
	}
	return info
}
