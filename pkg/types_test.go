package pkg

import "testing"

func TestParseRiskLevel(t *testing.T) {
	cases := []struct {
		in   string
		want RiskLevel
	}{
		{"low", RiskLow},
		{"LOW", RiskLow},
		{"moderate", RiskModerate},
		{"medium", RiskModerate},
		{"Medium", RiskModerate},
		{"high", RiskHigh},
		{" high ", RiskHigh},
		{"unknown", RiskUnknown},
		{"", RiskUnknown},
		{"critical", RiskUnknown},
	}
	for _, c := range cases {
		if got := ParseRiskLevel(c.in); got != c.want {
			t.Errorf("ParseRiskLevel(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRiskLevelScore(t *testing.T) {
	cases := []struct {
		level RiskLevel
		want  int
	}{
		{RiskHigh, 85},
		{RiskModerate, 55},
		{RiskLow, 25},
		{RiskUnknown, 40},
		{RiskNone, 40},
	}
	for _, c := range cases {
		if got := c.level.Score(); got != c.want {
			t.Errorf("%s.Score() = %d, want %d", c.level, got, c.want)
		}
	}
}

func TestRiskLevelConcrete(t *testing.T) {
	for _, l := range []RiskLevel{RiskLow, RiskModerate, RiskHigh} {
		if !l.Concrete() {
			t.Errorf("%s should be concrete", l)
		}
	}
	for _, l := range []RiskLevel{RiskUnknown, RiskNone, RiskLevel("")} {
		if l.Concrete() {
			t.Errorf("%s should not be concrete", l)
		}
	}
}
