package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"recovery-assistant/internal/llm"
	"recovery-assistant/pkg"
)

// Store is the persistence surface the chat service needs. It is satisfied
// by *db.Repository; tests supply an in-memory fake.
type Store interface {
	EnsurePatient(ctx context.Context, patientID string) error
	GetPatient(ctx context.Context, patientID string) (*pkg.PatientState, error)
	SaveAssessment(ctx context.Context, st *pkg.PatientState) error
	AppendMessage(ctx context.Context, patientID string, role pkg.MessageRole, content string) (*pkg.Message, error)
	AddRiskEntry(ctx context.Context, patientID string, score int, trend pkg.Trend) error
	GetRiskHistory(ctx context.Context, patientID string) ([]pkg.RiskEntry, error)
	AddDoctorAlert(ctx context.Context, a pkg.DoctorAlert) error
	ScheduleReminder(ctx context.Context, patientID string, dueAt time.Time) error
}

// AlertNotifier pushes a doctor alert to whatever is watching the
// hospital side. Satisfied by *db.Notifier.
type AlertNotifier interface {
	Notify(ctx context.Context, alert pkg.DoctorAlert) error
}

// followUpDelay is how long after a moderate assessment the follow-up
// reminder fires.
const followUpDelay = 24 * time.Hour

// symptomsForAssessment is how many key symptoms must be covered before
// the model is told to assess instead of ask.
const symptomsForAssessment = 5

// ChatService drives one intake turn: history bookkeeping, pre-escalation,
// the model exchange, risk extraction, scoring, trends, alerts and
// reminders.
type ChatService struct {
	LLM      llm.Client
	Store    Store
	Notifier AlertNotifier
	Log      zerolog.Logger

	now func() time.Time
}

// NewChatService constructs a ChatService.
func NewChatService(client llm.Client, store Store, notifier AlertNotifier, log zerolog.Logger) *ChatService {
	return &ChatService{
		LLM:      client,
		Store:    store,
		Notifier: notifier,
		Log:      log,
		now:      time.Now,
	}
}

// HandleTurn processes one patient message and returns the assistant's
// response. Storage failures abort the turn; model failures degrade to an
// error narrative with an unknown risk level, matching the wire contract.
func (s *ChatService) HandleTurn(ctx context.Context, req pkg.ChatRequest) (*pkg.ChatResponse, error) {
	if err := s.Store.EnsurePatient(ctx, req.PatientID); err != nil {
		return nil, fmt.Errorf("ensure patient: %w", err)
	}
	st, err := s.Store.GetPatient(ctx, req.PatientID)
	if err != nil {
		return nil, fmt.Errorf("load patient: %w", err)
	}

	userMsg, err := s.Store.AppendMessage(ctx, req.PatientID, pkg.RoleUser, req.Message)
	if err != nil {
		return nil, fmt.Errorf("store user message: %w", err)
	}
	st.Conversation = append(st.Conversation, *userMsg)

	var resp *pkg.ChatResponse
	switch {
	case st.DialogueStage == pkg.StageEscalated:
		level := st.RiskLevel
		if !level.Concrete() {
			level = pkg.RiskHigh
		}
		resp = &pkg.ChatResponse{
			Message:   HoldMessage,
			RiskLevel: level,
			Details:   map[string]string{"escalated": "true"},
		}
	case severePain(req.Message):
		st.DialogueStage = pkg.StageEscalated
		resp = &pkg.ChatResponse{
			Message:   EscalationMessage,
			RiskLevel: pkg.RiskHigh,
			Details:   map[string]string{"severity": "severe", "escalated": "true"},
		}
	default:
		resp = s.intakeReply(ctx, st, req.Message, req.Language)
	}

	resp.Message = firstQuestionOnly(resp.Message)

	if _, err := s.Store.AppendMessage(ctx, req.PatientID, pkg.RoleAssistant, resp.Message); err != nil {
		return nil, fmt.Errorf("store assistant message: %w", err)
	}

	if resp.RiskLevel.Concrete() {
		st.RiskLevel = resp.RiskLevel
		if err := s.recordRisk(ctx, st, resp); err != nil {
			return nil, err
		}
	} else {
		resp.RiskScore = nil
	}

	trackSymptoms(st, req.Message)
	if len(st.SymptomsAsked) >= symptomsForAssessment &&
		(st.DialogueStage == pkg.StageInitial || st.DialogueStage == pkg.StageSymptomsInquiry) {
		st.DialogueStage = pkg.StageAssessmentComplete
	}

	if st.Details == nil {
		st.Details = map[string]string{}
	}
	for k, v := range resp.Details {
		st.Details[k] = v
	}

	if err := s.Store.SaveAssessment(ctx, st); err != nil {
		return nil, fmt.Errorf("save assessment: %w", err)
	}
	return resp, nil
}

// recordRisk handles everything a concrete risk level triggers: the score,
// its injection into the narrative, history and trend, the trend line on
// question-free turns, and alerting.
func (s *ChatService) recordRisk(ctx context.Context, st *pkg.PatientState, resp *pkg.ChatResponse) error {
	score := resp.RiskLevel.Score()
	resp.RiskScore = &score

	if !strings.Contains(strings.ToLower(resp.Message), "score:") {
		resp.Message = fmt.Sprintf("Risk score: %d\n%s", score, resp.Message)
	}

	history, err := s.Store.GetRiskHistory(ctx, st.PatientID)
	if err != nil {
		return fmt.Errorf("load risk history: %w", err)
	}
	// trend over the last three recorded scores plus this one
	start := len(history) - 3
	if start < 0 {
		start = 0
	}
	window := make([]int, 0, 4)
	for _, e := range history[start:] {
		window = append(window, e.RiskScore)
	}
	window = append(window, score)
	trend := ComputeTrend(window)

	if err := s.Store.AddRiskEntry(ctx, st.PatientID, score, trend); err != nil {
		return fmt.Errorf("record risk entry: %w", err)
	}

	if !strings.Contains(resp.Message, "?") {
		resp.Message += trendLine(trend)
	}

	alert := pkg.DoctorAlert{PatientID: st.PatientID, RiskScore: score}
	switch {
	case score > highAlertScore:
		alert.RiskLevel = pkg.RiskHigh
		if st.DialogueStage == pkg.StageEscalated {
			alert.StatusMessage = "Severe pain - CALL PATIENT NOW"
		} else {
			alert.StatusMessage = "High risk - CALL PATIENT NOW"
		}
		if err := s.Store.AddDoctorAlert(ctx, alert); err != nil {
			return fmt.Errorf("record alert: %w", err)
		}
		if s.Notifier != nil {
			if err := s.Notifier.Notify(ctx, alert); err != nil {
				s.Log.Error().Err(err).Str("patient_id", st.PatientID).Msg("doctor notification failed")
			}
		}
	case score >= moderateAlertScore:
		alert.RiskLevel = pkg.RiskModerate
		alert.StatusMessage = "Moderate risk - Follow-up scheduled in 24h"
		if err := s.Store.AddDoctorAlert(ctx, alert); err != nil {
			return fmt.Errorf("record alert: %w", err)
		}
		if err := s.Store.ScheduleReminder(ctx, st.PatientID, s.now().Add(followUpDelay)); err != nil {
			return fmt.Errorf("schedule reminder: %w", err)
		}
	default:
		alert.RiskLevel = pkg.RiskLow
		alert.StatusMessage = "Low risk - Preventive care suggested"
		if err := s.Store.AddDoctorAlert(ctx, alert); err != nil {
			return fmt.Errorf("record alert: %w", err)
		}
	}
	return nil
}

// intakeReply runs the model exchange for a normal (non-escalated) turn.
func (s *ChatService) intakeReply(ctx context.Context, st *pkg.PatientState, userMessage, language string) *pkg.ChatResponse {
	tamil := language == "ta"

	resolveRepeatComplaint(st, userMessage)

	remaining := remainingSymptoms(st)
	lower := strings.ToLower(userMessage)
	shouldAssess := len(st.SymptomsAsked) >= symptomsForAssessment ||
		st.DialogueStage == pkg.StageAssessmentComplete ||
		strings.Contains(lower, "severe") || strings.Contains(lower, "emergency")

	system := systemPrompt(st.SurgeryInfo.SurgeryType, shouldAssess, st.SymptomsAsked, tamil)
	user := s.buildUserPrompt(st, userMessage)

	switch {
	case shouldAssess:
		user += assessGuidance(tamil)
	case len(remaining) > 0 && st.DialogueStage == pkg.StageSymptomsInquiry:
		next := remaining[0]
		user += questionGuidance(next, tamil)
		st.SymptomsPrompted = appendUnique(st.SymptomsPrompted, next)
		st.LastPromptedSymptom = next
	}

	reply, err := s.LLM.Chat(ctx, []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	})
	if err != nil {
		s.Log.Error().Err(err).Str("patient_id", st.PatientID).Msg("llm chat failed")
		return &pkg.ChatResponse{
			Message:   fmt.Sprintf("Error processing request: %v", err),
			RiskLevel: pkg.RiskUnknown,
			Details:   map[string]string{},
		}
	}

	text, level := extractRiskTag(reply)
	text, details := extractDetails(text)
	if details == nil {
		details = map[string]string{}
	}

	symptomCount := len(st.SymptomsAsked)
	switch {
	case level == pkg.RiskHigh:
		text += HighRiskWarning
		st.DialogueStage = pkg.StageUrgentCare
		st.RiskLevel = pkg.RiskHigh
	case level == pkg.RiskLow && (symptomCount >= 3 || st.DialogueStage == pkg.StageAssessmentComplete):
		if !containsAny(strings.ToLower(text), []string{"preventive", "medication", "recommendation"}) {
			text += lowRiskRecommendations
		}
		st.DialogueStage = pkg.StageFollowUp
	case level == pkg.RiskLow:
		st.DialogueStage = pkg.StageSymptomsInquiry
	}

	return &pkg.ChatResponse{Message: text, RiskLevel: level, Details: details}
}

// buildUserPrompt assembles surgery context, the latest report analysis
// and recent history around the patient's message. Everything is truncated
// to keep token usage bounded.
func (s *ChatService) buildUserPrompt(st *pkg.PatientState, userMessage string) string {
	var parts []string

	var userCtx strings.Builder
	if t := st.SurgeryInfo.SurgeryType; t != "" && t != "Unknown" {
		fmt.Fprintf(&userCtx, "Surgery: %s.\n", t)
	}
	if len(st.SymptomsAsked) > 0 {
		fmt.Fprintf(&userCtx, "Asked about: %s.\n", strings.Join(st.SymptomsAsked, ", "))
	}
	if userCtx.Len() > 0 {
		parts = append(parts, userCtx.String())
	}

	if len(st.Uploads) > 0 {
		latest := st.Uploads[len(st.Uploads)-1]
		parts = append(parts, "Report: Medical Data: "+truncateText(latest.Analysis, 400))
	}

	recent := st.Conversation
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}
	if len(recent) > 0 {
		var hist strings.Builder
		for _, m := range recent {
			role := "Assistant"
			if m.Role == pkg.RoleUser {
				role = "Patient"
			}
			fmt.Fprintf(&hist, "%s: %s\n", role, truncateText(m.Content, 200))
		}
		parts = append(parts, "Recent chat:\n"+hist.String())
	}

	parts = append(parts, "Patient: "+userMessage)
	if len(parts) == 1 {
		return userMessage
	}
	return strings.Join(parts, "\n")
}
