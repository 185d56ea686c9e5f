package core

import (
	"strings"

	"recovery-assistant/pkg"
)

// symptomKeywords maps each tracked symptom to the words a patient might
// use when answering about it.
var symptomKeywords = map[string][]string{
	"pain":            {"pain", "hurt", "ache", "aching", "sore", "painful"},
	"swelling":        {"swell", "swollen", "inflammation", "puffy", "swelling"},
	"bleeding":        {"bleed", "blood", "hemorrhage", "bleeding"},
	"infection":       {"infection", "fever", "pus", "discharge", "infected", "feverish"},
	"delayed healing": {"heal", "healing", "recovery", "not healing", "slow healing"},
}

// genericAckWords are short answers that resolve the last prompted symptom
// even when the patient does not name it.
var genericAckWords = []string{"yes", "no", "yeah", "nope", "ok", "okay", "fine", "better", "worse", "same", "normal", "not sure"}

var (
	painTerms   = []string{"pain", "hurt", "ache", "aching", "painful"}
	severeTerms = []string{"severe", "very bad", "extreme", "unbearable", "worst", "heavy"}
	repeatTerms = []string{"repeat", "repeated", "again", "same question"}
)

// severePain reports whether the message pairs a pain word with a severity
// word, which escalates the session before any model call.
func severePain(message string) bool {
	m := strings.ToLower(message)
	return containsAny(m, painTerms) && containsAny(m, severeTerms)
}

// trackSymptoms updates the asked/prompted bookkeeping from the patient's
// latest message: named symptoms move from prompted to asked, and a short
// or generic answer resolves whichever symptom was last prompted.
func trackSymptoms(st *pkg.PatientState, userMessage string) {
	m := strings.ToLower(userMessage)

	for symptom, words := range symptomKeywords {
		if !containsAny(m, words) {
			continue
		}
		st.SymptomsAsked = appendUnique(st.SymptomsAsked, symptom)
		st.SymptomsPrompted = remove(st.SymptomsPrompted, symptom)
		if st.LastPromptedSymptom == symptom {
			st.LastPromptedSymptom = ""
		}
	}

	if st.LastPromptedSymptom != "" &&
		(containsAny(m, genericAckWords) || len(strings.Fields(m)) <= 4) {
		st.SymptomsAsked = appendUnique(st.SymptomsAsked, st.LastPromptedSymptom)
		st.SymptomsPrompted = remove(st.SymptomsPrompted, st.LastPromptedSymptom)
		st.LastPromptedSymptom = ""
	}
}

// resolveRepeatComplaint marks the last prompted symptom as asked when the
// patient complains about being asked the same question again.
func resolveRepeatComplaint(st *pkg.PatientState, userMessage string) {
	if !containsAny(strings.ToLower(userMessage), repeatTerms) {
		return
	}
	if st.LastPromptedSymptom != "" {
		st.SymptomsAsked = appendUnique(st.SymptomsAsked, st.LastPromptedSymptom)
	}
}

// remainingSymptoms returns the key symptoms not yet asked or prompted.
func remainingSymptoms(st *pkg.PatientState) []string {
	covered := make(map[string]bool, len(st.SymptomsAsked)+len(st.SymptomsPrompted))
	for _, s := range st.SymptomsAsked {
		covered[s] = true
	}
	for _, s := range st.SymptomsPrompted {
		covered[s] = true
	}
	var out []string
	for _, s := range keySymptoms {
		if !covered[s] {
			out = append(out, s)
		}
	}
	return out
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func appendUnique(list []string, item string) []string {
	for _, s := range list {
		if s == item {
			return list
		}
	}
	return append(list, item)
}

func remove(list []string, item string) []string {
	out := list[:0]
	for _, s := range list {
		if s != item {
			out = append(out, s)
		}
	}
	return out
}
