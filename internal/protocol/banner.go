package protocol

import (
	"strings"

	"recovery-assistant/pkg"
)

// Banner templates per level. The high template is a multi-line directive;
// the others are single sentences.
var bannerTemplates = map[pkg.RiskLevel]string{
	pkg.RiskHigh: "URGENT: Contact your doctor immediately.\n" +
		"Seek emergency care if symptoms are severe.\n" +
		"Do not delay - complications can worsen quickly.",
	pkg.RiskModerate: "Monitor your symptoms closely and contact your doctor if they worsen.",
	pkg.RiskLow:      "Low risk. Continue your routine care and follow your recovery plan.",
	pkg.RiskUnknown:  "More information is needed to assess your risk.",
}

// bannerPhrases are lowercase fragments, one per template, used to detect
// that a server message already carries banner wording. A transitional
// compatibility measure: servers that embed the banner text in the
// narrative must not trigger a second banner. It only ever suppresses.
var bannerPhrases = []string{
	"contact your doctor immediately",
	"monitor your symptoms closely",
	"continue your routine care",
	"more information is needed",
}

// bannerText returns the fixed template for a level.
func bannerText(level pkg.RiskLevel) string {
	if t, ok := bannerTemplates[level]; ok {
		return t
	}
	return bannerTemplates[pkg.RiskUnknown]
}

// containsBannerPhrase reports whether the message already reads like a
// banner for any level.
func containsBannerPhrase(message string) bool {
	m := strings.ToLower(message)
	for _, p := range bannerPhrases {
		if strings.Contains(m, p) {
			return true
		}
	}
	return false
}

// announceRisk applies the presentation policy for one turn's risk signal.
// Absent or unknown levels reset the announced state to none without
// emitting. A concrete level emits one banner when it differs from the
// last announcement, the message does not already carry banner wording,
// and the previous transcript item is not a same-level banner. Callers
// hold s.mu.
func (s *Session) announceRisk(level pkg.RiskLevel, score *float64, message string) {
	if !level.Concrete() {
		s.lastAnnounced = pkg.RiskNone
		return
	}
	if level == s.lastAnnounced {
		return
	}
	if containsBannerPhrase(message) {
		s.lastAnnounced = level
		return
	}
	if last := s.lastItem(); last != nil && last.Kind == ItemBanner && last.Level == level {
		s.lastAnnounced = level
		return
	}
	s.append(Item{Kind: ItemBanner, Text: bannerText(level), Level: level, Score: score})
	s.lastAnnounced = level
}
