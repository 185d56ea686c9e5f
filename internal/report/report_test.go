package report

import (
	"strings"
	"testing"
	"time"

	"recovery-assistant/pkg"
)

func TestGenerate(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	st := &pkg.PatientState{
		PatientID:   "p1",
		Contact:     pkg.Contact{Name: "Asha"},
		RiskLevel:   pkg.RiskModerate,
		SurgeryInfo: pkg.SurgeryInfo{SurgeryType: "Knee replacement", SurgeryDate: "2025-05-20"},
		Uploads: []pkg.Upload{
			{Filename: "discharge.pdf", Analysis: "Post-operative discharge summary, knee replacement, no complications noted."},
		},
		SymptomsAsked: []string{"pain", "swelling"},
		Conversation: []pkg.Message{
			{Role: pkg.RoleUser, Content: "My knee is a bit sore"},
			{Role: pkg.RoleAssistant, Content: "Some soreness is expected."},
		},
	}

	out := Generate(st, now)

	for _, want := range []string{
		"Medical Report - Patient Analysis",
		"Patient ID: p1",
		"Name: Asha",
		"Risk Level: MODERATE",
		"Report Date: 2025-06-01 09:30:00",
		"Surgery Type: Knee replacement",
		"Surgery Date: 2025-05-20",
		"File: discharge.pdf",
		"Total Messages: 2",
		"Symptoms Discussed: pain, swelling",
		"Patient: My knee is a bit sore",
		"Assistant: Some soreness is expected.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestGenerateLimitsUploads(t *testing.T) {
	st := &pkg.PatientState{PatientID: "p1", RiskLevel: pkg.RiskLow}
	for i := 0; i < 7; i++ {
		st.Uploads = append(st.Uploads, pkg.Upload{Filename: string(rune('a'+i)) + ".pdf"})
	}

	out := Generate(st, time.Now())

	if strings.Contains(out, "File: a.pdf") || strings.Contains(out, "File: b.pdf") {
		t.Error("oldest uploads should be dropped from the report")
	}
	if !strings.Contains(out, "File: g.pdf") {
		t.Error("newest upload missing from the report")
	}
}

func TestFilename(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	if got := Filename("p1", now); got != "medical_report_p1_20250601_093000.txt" {
		t.Errorf("got %q", got)
	}
}
