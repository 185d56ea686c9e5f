// Package report renders a patient's record as a downloadable plain-text
// medical report: identity and risk, surgery info, recent uploads with
// their analyses, and the full conversation transcript.
package report

import (
	"fmt"
	"strings"
	"time"

	"recovery-assistant/pkg"
)

const (
	maxUploadsInReport = 5
	wrapWidth          = 90
)

// Generate renders the report for one patient. now is the report
// timestamp, injected so output is reproducible in tests.
func Generate(st *pkg.PatientState, now time.Time) string {
	var b strings.Builder

	title(&b, "Medical Report - Patient Analysis")

	section(&b, "Patient Information")
	fmt.Fprintf(&b, "Patient ID: %s\n", st.PatientID)
	if st.Contact.Name != "" {
		fmt.Fprintf(&b, "Name: %s\n", st.Contact.Name)
	}
	fmt.Fprintf(&b, "Risk Level: %s\n", strings.ToUpper(string(st.RiskLevel)))
	fmt.Fprintf(&b, "Report Date: %s\n", now.Format("2006-01-02 15:04:05"))

	if st.SurgeryInfo.SurgeryType != "" && st.SurgeryInfo.SurgeryType != "Unknown" {
		section(&b, "Surgery Information")
		fmt.Fprintf(&b, "Surgery Type: %s\n", st.SurgeryInfo.SurgeryType)
		if st.SurgeryInfo.SurgeryDate != "" {
			fmt.Fprintf(&b, "Surgery Date: %s\n", st.SurgeryInfo.SurgeryDate)
		}
	}

	if len(st.Uploads) > 0 {
		section(&b, "Uploaded Files")
		uploads := st.Uploads
		if len(uploads) > maxUploadsInReport {
			uploads = uploads[len(uploads)-maxUploadsInReport:]
		}
		for _, u := range uploads {
			fmt.Fprintf(&b, "File: %s\n", u.Filename)
			for _, line := range wrap(u.Analysis, wrapWidth) {
				fmt.Fprintf(&b, "  %s\n", line)
			}
			if u.GradcamAnalysis != "" {
				b.WriteString("  Grad-CAM Visualization (areas of interest highlighted)\n")
				for _, line := range wrap(u.GradcamAnalysis, wrapWidth) {
					fmt.Fprintf(&b, "  %s\n", line)
				}
			}
			b.WriteString("\n")
		}
	}

	if len(st.Conversation) > 0 {
		section(&b, "Conversation Summary")
		fmt.Fprintf(&b, "Total Messages: %d\n", len(st.Conversation))
		if len(st.SymptomsAsked) > 0 {
			fmt.Fprintf(&b, "Symptoms Discussed: %s\n", strings.Join(st.SymptomsAsked, ", "))
		}

		section(&b, "Full Conversation")
		for _, m := range st.Conversation {
			role := "Assistant"
			if m.Role == pkg.RoleUser {
				role = "Patient"
			}
			fmt.Fprintf(&b, "%s: %s\n", role, m.Content)
		}
	}

	return b.String()
}

// Filename is the suggested download name for a patient's report.
func Filename(patientID string, now time.Time) string {
	return fmt.Sprintf("medical_report_%s_%s.txt", patientID, now.Format("20060102_150405"))
}

func title(b *strings.Builder, text string) {
	b.WriteString(text + "\n")
	b.WriteString(strings.Repeat("=", len(text)) + "\n")
}

func section(b *strings.Builder, name string) {
	b.WriteString("\n" + name + "\n")
	b.WriteString(strings.Repeat("-", len(name)) + "\n")
}

// wrap breaks text into lines of at most width characters at word
// boundaries. Words longer than width get a line of their own.
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	return append(lines, line)
}
