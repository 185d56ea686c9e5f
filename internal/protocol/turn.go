package protocol

import (
	"context"
	"math"
	"strings"

	"recovery-assistant/pkg"
)

// TurnResult is the assessment backend's answer to one chat turn.
type TurnResult struct {
	Message   string   `json:"message"`
	RiskLevel string   `json:"risk_level"`
	RiskScore *float64 `json:"risk_score"`
}

// SubmitTurn drives one chat exchange. userText may be empty, meaning
// "give me the next question". At most one turn is in flight per session:
// a call made while another turn is pending does nothing and returns
// false. The in-flight flag is cleared on every path.
func (s *Session) SubmitTurn(ctx context.Context, userText string) bool {
	s.mu.Lock()
	if s.turnInFlight {
		s.mu.Unlock()
		return false
	}
	s.turnInFlight = true
	if userText != "" {
		s.append(Item{Kind: ItemUser, Text: renderText(userText)})
	}
	s.mu.Unlock()

	res, err := s.backend.Chat(ctx, pkg.ChatRequest{
		PatientID: s.patientID,
		Message:   userText,
		Language:  s.language(),
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.turnInFlight = false

	if err != nil {
		s.append(Item{Kind: ItemError, Text: renderText(err.Error())})
		return true
	}

	s.append(Item{Kind: ItemAssistant, Text: renderText(res.Message)})

	level := pkg.ParseRiskLevel(res.RiskLevel)
	s.announceRisk(level, finiteScore(res.RiskScore), res.Message)

	if level == pkg.RiskHigh {
		s.onHighRisk()
	}

	if !strings.Contains(res.Message, "?") {
		s.showReportAffordance()
	}
	return true
}

// TurnInFlight reports whether a chat request is outstanding.
func (s *Session) TurnInFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turnInFlight
}

// showReportAffordance renders the final-report control once. Callers hold
// s.mu.
func (s *Session) showReportAffordance() {
	if s.reportShown {
		return
	}
	s.reportShown = true
	s.append(Item{Kind: ItemNotice, Text: "Your assessment is complete. You can download your final report."})
}

// onHighRisk is the escalation hook for high-level announcements. The base
// policy does nothing beyond the banner; UIs may scroll to the latest item.
func (s *Session) onHighRisk() {}

// DownloadReport fetches the finalized report document.
func (s *Session) DownloadReport(ctx context.Context) ([]byte, string, error) {
	return s.backend.DownloadReport(ctx, s.patientID)
}

func (s *Session) language() string {
	if s.cfg.Language == "" {
		return "en"
	}
	return s.cfg.Language
}

// finiteScore drops absent or non-finite scores so banners never display
// NaN or infinity.
func finiteScore(score *float64) *float64 {
	if score == nil || math.IsNaN(*score) || math.IsInf(*score, 0) {
		return nil
	}
	return score
}
