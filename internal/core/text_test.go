package core

import (
	"strings"
	"testing"

	"recovery-assistant/pkg"
)

func TestExtractRiskTag(t *testing.T) {
	cases := []struct {
		in        string
		wantText  string
		wantLevel pkg.RiskLevel
	}{
		{"Looks fine. [RISK_LEVEL: LOW]", "Looks fine.", pkg.RiskLow},
		{"[RISK_LEVEL: HIGH] Seek care now.", "Seek care now.", pkg.RiskHigh},
		{"Watch it. [RISK_LEVEL: MODERATE] Rest well.", "Watch it.  Rest well.", pkg.RiskModerate},
		{"Just a question, no tag here?", "Just a question, no tag here?", pkg.RiskUnknown},
	}
	for _, c := range cases {
		text, level := extractRiskTag(c.in)
		if text != c.wantText || level != c.wantLevel {
			t.Errorf("extractRiskTag(%q) = (%q, %v), want (%q, %v)",
				c.in, text, level, c.wantText, c.wantLevel)
		}
	}
}

func TestExtractDetails(t *testing.T) {
	text, details := extractDetails("All good. [DETAILS: mild soreness, day 3] Keep resting.")
	if text != "All good.  Keep resting." {
		t.Errorf("cleaned text = %q", text)
	}
	if details["summary"] != "mild soreness, day 3" {
		t.Errorf("summary = %q", details["summary"])
	}

	text, details = extractDetails("nothing here")
	if text != "nothing here" || details != nil {
		t.Errorf("no-op expected, got (%q, %v)", text, details)
	}
}

func TestFirstQuestionOnly(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"How is the pain? And the swelling?", "How is the pain?"},
		{"How is the pain?", "How is the pain?"},
		{"No questions at all.", "No questions at all."},
		{"Is it sore? It can linger for a week.", "Is it sore? It can linger for a week."},
	}
	for _, c := range cases {
		if got := firstQuestionOnly(c.in); got != c.want {
			t.Errorf("firstQuestionOnly(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTruncateText(t *testing.T) {
	if got := truncateText("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	got := truncateText(strings.Repeat("a", 20), 10)
	if got != strings.Repeat("a", 10)+"..." {
		t.Errorf("got %q", got)
	}
}
