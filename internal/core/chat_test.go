package core

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"recovery-assistant/internal/llm"
	"recovery-assistant/pkg"
)

type scriptedLLM struct {
	reply string
	err   error
}

func (s scriptedLLM) Chat(_ context.Context, _ []llm.Message) (string, error) {
	return s.reply, s.err
}

func (s scriptedLLM) Complete(_ context.Context, _, _ string) (string, error) {
	return s.reply, s.err
}

type fakeStore struct {
	patients  map[string]*pkg.PatientState
	messages  []pkg.Message
	risk      map[string][]pkg.RiskEntry
	alerts    []pkg.DoctorAlert
	reminders []time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		patients: map[string]*pkg.PatientState{},
		risk:     map[string][]pkg.RiskEntry{},
	}
}

func (f *fakeStore) EnsurePatient(_ context.Context, id string) error {
	if _, ok := f.patients[id]; !ok {
		f.patients[id] = &pkg.PatientState{
			PatientID:     id,
			RiskLevel:     pkg.RiskUnknown,
			DialogueStage: pkg.StageInitial,
		}
	}
	return nil
}

func (f *fakeStore) GetPatient(_ context.Context, id string) (*pkg.PatientState, error) {
	st := *f.patients[id]
	return &st, nil
}

func (f *fakeStore) SaveAssessment(_ context.Context, st *pkg.PatientState) error {
	cp := *st
	f.patients[st.PatientID] = &cp
	return nil
}

func (f *fakeStore) AppendMessage(_ context.Context, id string, role pkg.MessageRole, content string) (*pkg.Message, error) {
	m := pkg.Message{ID: int64(len(f.messages) + 1), PatientID: id, Role: role, Content: content}
	f.messages = append(f.messages, m)
	return &m, nil
}

func (f *fakeStore) AddRiskEntry(_ context.Context, id string, score int, trend pkg.Trend) error {
	f.risk[id] = append(f.risk[id], pkg.RiskEntry{RiskScore: score, TrendStatus: trend})
	return nil
}

func (f *fakeStore) GetRiskHistory(_ context.Context, id string) ([]pkg.RiskEntry, error) {
	return f.risk[id], nil
}

func (f *fakeStore) AddDoctorAlert(_ context.Context, a pkg.DoctorAlert) error {
	f.alerts = append(f.alerts, a)
	return nil
}

func (f *fakeStore) ScheduleReminder(_ context.Context, _ string, dueAt time.Time) error {
	f.reminders = append(f.reminders, dueAt)
	return nil
}

type fakeNotifier struct {
	alerts []pkg.DoctorAlert
}

func (f *fakeNotifier) Notify(_ context.Context, a pkg.DoctorAlert) error {
	f.alerts = append(f.alerts, a)
	return nil
}

func newTestService(client llm.Client, store Store, notifier AlertNotifier) *ChatService {
	s := NewChatService(client, store, notifier, zerolog.Nop())
	s.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestHandleTurnSeverePainEscalates(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	svc := newTestService(scriptedLLM{reply: "should not be used"}, store, notifier)

	resp, err := svc.HandleTurn(context.Background(), pkg.ChatRequest{
		PatientID: "p1", Message: "the pain is unbearable",
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.RiskLevel != pkg.RiskHigh {
		t.Errorf("risk level = %v, want high", resp.RiskLevel)
	}
	if resp.RiskScore == nil || *resp.RiskScore != 85 {
		t.Errorf("risk score = %v, want 85", resp.RiskScore)
	}
	if !strings.HasPrefix(resp.Message, "Risk score: 85") {
		t.Errorf("message missing score prefix: %q", resp.Message)
	}
	if !strings.Contains(resp.Message, EscalationMessage) {
		t.Errorf("message missing escalation text: %q", resp.Message)
	}
	if got := store.patients["p1"].DialogueStage; got != pkg.StageEscalated {
		t.Errorf("stage = %v, want escalated", got)
	}
	if len(notifier.alerts) != 1 || !strings.Contains(notifier.alerts[0].StatusMessage, "CALL PATIENT NOW") {
		t.Errorf("notifier alerts = %+v", notifier.alerts)
	}
}

func TestHandleTurnEscalatedHold(t *testing.T) {
	store := newFakeStore()
	store.patients["p1"] = &pkg.PatientState{
		PatientID:     "p1",
		RiskLevel:     pkg.RiskHigh,
		DialogueStage: pkg.StageEscalated,
	}
	svc := newTestService(scriptedLLM{reply: "should not be used"}, store, &fakeNotifier{})

	resp, err := svc.HandleTurn(context.Background(), pkg.ChatRequest{
		PatientID: "p1", Message: "any update?",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp.Message, HoldMessage) {
		t.Errorf("message = %q, want hold text", resp.Message)
	}
	if got := store.patients["p1"].DialogueStage; got != pkg.StageEscalated {
		t.Errorf("stage = %v, want still escalated", got)
	}
}

func TestHandleTurnLowRiskKeepsAsking(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(scriptedLLM{
		reply: "Glad to hear it. [RISK_LEVEL: LOW] Is there any swelling at the site?",
	}, store, &fakeNotifier{})

	resp, err := svc.HandleTurn(context.Background(), pkg.ChatRequest{
		PatientID: "p1", Message: "I feel okay overall",
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.RiskLevel != pkg.RiskLow {
		t.Errorf("risk level = %v, want low", resp.RiskLevel)
	}
	if resp.RiskScore == nil || *resp.RiskScore != 25 {
		t.Errorf("risk score = %v, want 25", resp.RiskScore)
	}
	if strings.Contains(resp.Message, "trend") {
		t.Errorf("question turn should not carry a trend line: %q", resp.Message)
	}
	if got := store.patients["p1"].DialogueStage; got != pkg.StageSymptomsInquiry {
		t.Errorf("stage = %v, want symptoms_inquiry", got)
	}
	if len(store.alerts) != 1 || store.alerts[0].RiskLevel != pkg.RiskLow {
		t.Errorf("alerts = %+v, want one low alert", store.alerts)
	}
}

func TestHandleTurnHighRiskWarns(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	svc := newTestService(scriptedLLM{
		reply: "[RISK_LEVEL: HIGH] These symptoms are concerning.",
	}, store, notifier)

	resp, err := svc.HandleTurn(context.Background(), pkg.ChatRequest{
		PatientID: "p1", Message: "lots of pus and fever",
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.RiskLevel != pkg.RiskHigh {
		t.Errorf("risk level = %v, want high", resp.RiskLevel)
	}
	if !strings.Contains(resp.Message, "HIGH RISK DETECTED") {
		t.Errorf("message missing high risk warning: %q", resp.Message)
	}
	if !strings.Contains(resp.Message, "stable at the moment") {
		t.Errorf("question-free turn should carry a trend line: %q", resp.Message)
	}
	if got := store.patients["p1"].DialogueStage; got != pkg.StageUrgentCare {
		t.Errorf("stage = %v, want urgent_care", got)
	}
	if len(notifier.alerts) != 1 {
		t.Errorf("notifier alerts = %+v, want one", notifier.alerts)
	}
}

func TestHandleTurnModerateSchedulesReminder(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(scriptedLLM{
		reply: "[RISK_LEVEL: MODERATE] Keep a close watch on this.",
	}, store, &fakeNotifier{})

	_, err := svc.HandleTurn(context.Background(), pkg.ChatRequest{
		PatientID: "p1", Message: "some swelling and redness",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(store.reminders) != 1 {
		t.Fatalf("reminders = %v, want one", store.reminders)
	}
	want := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	if !store.reminders[0].Equal(want) {
		t.Errorf("reminder due at %v, want %v", store.reminders[0], want)
	}
	if len(store.alerts) != 1 || store.alerts[0].RiskLevel != pkg.RiskModerate {
		t.Errorf("alerts = %+v, want one moderate alert", store.alerts)
	}
}

func TestHandleTurnTrendFromHistory(t *testing.T) {
	store := newFakeStore()
	store.risk["p1"] = []pkg.RiskEntry{{RiskScore: 85}, {RiskScore: 55}}
	svc := newTestService(scriptedLLM{
		reply: "[RISK_LEVEL: LOW] Things look much better now.",
	}, store, &fakeNotifier{})

	resp, err := svc.HandleTurn(context.Background(), pkg.ChatRequest{
		PatientID: "p1", Message: "feeling much better",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp.Message, "trend is improving") {
		t.Errorf("message missing improving trend: %q", resp.Message)
	}
	entries := store.risk["p1"]
	if len(entries) != 3 || entries[2].TrendStatus != pkg.TrendImproving {
		t.Errorf("risk entries = %+v, want improving appended", entries)
	}
}

func TestHandleTurnLLMErrorDegrades(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(scriptedLLM{err: context.DeadlineExceeded}, store, &fakeNotifier{})

	resp, err := svc.HandleTurn(context.Background(), pkg.ChatRequest{
		PatientID: "p1", Message: "hello",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(resp.Message, "Error processing request:") {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.RiskLevel != pkg.RiskUnknown {
		t.Errorf("risk level = %v, want unknown", resp.RiskLevel)
	}
	if resp.RiskScore != nil {
		t.Errorf("risk score = %v, want nil", *resp.RiskScore)
	}
	if len(store.alerts) != 0 {
		t.Errorf("alerts = %+v, want none", store.alerts)
	}
}

func TestHandleTurnTrimsToOneQuestion(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(scriptedLLM{
		reply: "[RISK_LEVEL: LOW] Is there pain? Is there swelling? Any fever?",
	}, store, &fakeNotifier{})

	resp, err := svc.HandleTurn(context.Background(), pkg.ChatRequest{
		PatientID: "p1", Message: "checking in",
	})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(resp.Message, "?") != 1 {
		t.Errorf("message should keep one question: %q", resp.Message)
	}
}

func TestHandleTurnCompletesAfterEnoughSymptoms(t *testing.T) {
	store := newFakeStore()
	store.patients["p1"] = &pkg.PatientState{
		PatientID:     "p1",
		RiskLevel:     pkg.RiskLow,
		DialogueStage: pkg.StageSymptomsInquiry,
		SymptomsAsked: []string{"pain", "swelling", "bleeding", "infection"},
	}
	svc := newTestService(scriptedLLM{
		reply: "Recovery is on track. [RISK_LEVEL: LOW] Keep the wound clean and rest.",
	}, store, &fakeNotifier{})

	resp, err := svc.HandleTurn(context.Background(), pkg.ChatRequest{
		PatientID: "p1", Message: "healing seems slow",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := store.patients["p1"].DialogueStage; got != pkg.StageFollowUp {
		t.Errorf("stage = %v, want follow_up", got)
	}
	if !strings.Contains(resp.Message, "PREVENTIVE MEASURES") {
		t.Errorf("message missing care guidance: %q", resp.Message)
	}
}
