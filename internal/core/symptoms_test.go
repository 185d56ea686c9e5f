package core

import (
	"reflect"
	"testing"

	"recovery-assistant/pkg"
)

func TestSeverePain(t *testing.T) {
	cases := []struct {
		message string
		want    bool
	}{
		{"I have severe pain in my knee", true},
		{"the ache is unbearable", true},
		{"very bad hurt near the wound", true},
		{"mild pain, nothing serious", false},
		{"severe swelling but no discomfort", false},
		{"feeling fine today", false},
	}
	for _, c := range cases {
		if got := severePain(c.message); got != c.want {
			t.Errorf("severePain(%q) = %v, want %v", c.message, got, c.want)
		}
	}
}

func TestTrackSymptomsNamed(t *testing.T) {
	st := &pkg.PatientState{
		SymptomsPrompted:    []string{"pain", "swelling"},
		LastPromptedSymptom: "pain",
	}
	trackSymptoms(st, "Yes, there is some pain and a bit of blood")

	wantAsked := map[string]bool{"pain": true, "bleeding": true}
	if len(st.SymptomsAsked) != len(wantAsked) {
		t.Fatalf("asked = %v, want pain and bleeding", st.SymptomsAsked)
	}
	for _, s := range st.SymptomsAsked {
		if !wantAsked[s] {
			t.Errorf("unexpected asked symptom %q", s)
		}
	}
	if !reflect.DeepEqual(st.SymptomsPrompted, []string{"swelling"}) {
		t.Errorf("prompted = %v, want [swelling]", st.SymptomsPrompted)
	}
	if st.LastPromptedSymptom != "" {
		t.Errorf("last prompted = %q, want cleared", st.LastPromptedSymptom)
	}
}

func TestTrackSymptomsGenericAnswer(t *testing.T) {
	st := &pkg.PatientState{
		SymptomsPrompted:    []string{"swelling"},
		LastPromptedSymptom: "swelling",
	}
	trackSymptoms(st, "no")

	if !reflect.DeepEqual(st.SymptomsAsked, []string{"swelling"}) {
		t.Errorf("asked = %v, want [swelling]", st.SymptomsAsked)
	}
	if len(st.SymptomsPrompted) != 0 {
		t.Errorf("prompted = %v, want empty", st.SymptomsPrompted)
	}
}

func TestTrackSymptomsLongAnswerDoesNotResolve(t *testing.T) {
	st := &pkg.PatientState{
		SymptomsPrompted:    []string{"swelling"},
		LastPromptedSymptom: "swelling",
	}
	trackSymptoms(st, "let me think about that and get back to you later today")

	if len(st.SymptomsAsked) != 0 {
		t.Errorf("asked = %v, want empty", st.SymptomsAsked)
	}
	if st.LastPromptedSymptom != "swelling" {
		t.Errorf("last prompted = %q, want swelling kept", st.LastPromptedSymptom)
	}
}

func TestResolveRepeatComplaint(t *testing.T) {
	st := &pkg.PatientState{LastPromptedSymptom: "bleeding"}
	resolveRepeatComplaint(st, "you asked me the same question again")
	if !reflect.DeepEqual(st.SymptomsAsked, []string{"bleeding"}) {
		t.Errorf("asked = %v, want [bleeding]", st.SymptomsAsked)
	}

	st2 := &pkg.PatientState{LastPromptedSymptom: "bleeding"}
	resolveRepeatComplaint(st2, "it still hurts")
	if len(st2.SymptomsAsked) != 0 {
		t.Errorf("asked = %v, want empty without a repeat complaint", st2.SymptomsAsked)
	}
}

func TestRemainingSymptoms(t *testing.T) {
	st := &pkg.PatientState{
		SymptomsAsked:    []string{"pain", "fever"},
		SymptomsPrompted: []string{"swelling"},
	}
	got := remainingSymptoms(st)
	want := []string{"bleeding", "infection", "delayed healing", "discharge"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("remaining = %v, want %v", got, want)
	}
}
