// Package protocol implements the patient-side conversation session: a
// state machine coordinating uploads, chat turns and risk announcements
// against the assessment backend, independent of any particular UI.
package protocol

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"recovery-assistant/pkg"
)

// ItemKind classifies one rendered transcript entry.
type ItemKind int

const (
	ItemUser ItemKind = iota
	ItemAssistant
	ItemBanner
	ItemError
	ItemNotice
)

// Item is one entry of the session transcript, in render order. Text is
// HTML-safe: escaped with newlines converted to <br>.
type Item struct {
	Kind  ItemKind
	Text  string
	Level pkg.RiskLevel
	Score *float64
}

// Config tunes session policy.
type Config struct {
	// IntroUploadThreshold is how many uploads must complete before the
	// one-time combined greeting is composed. Defaults to 2.
	IntroUploadThreshold int
	// Language is sent with every chat turn ("en" when empty).
	Language string
}

func (c Config) introThreshold() int {
	if c.IntroUploadThreshold <= 0 {
		return 2
	}
	return c.IntroUploadThreshold
}

// UploadRecord is one completed upload as the session tracks it. Appended
// in completion order, which may differ from the order files were chosen.
type UploadRecord struct {
	Filename         string
	Analysis         string
	IsImage          bool
	DerivedImagePath string
}

// Session is one patient interaction. All state transitions go through its
// methods; the zero value is not usable, construct with NewSession. Safe
// for use from multiple goroutines since upload completions land
// concurrently.
type Session struct {
	mu sync.Mutex

	patientID string
	cfg       Config
	backend   Backend
	flags     ContactFlagStore
	log       zerolog.Logger

	contactSaved  bool
	uploads       []UploadRecord
	introSent     bool
	lastAnnounced pkg.RiskLevel
	turnInFlight  bool
	reportShown   bool

	items []Item
}

// NewSession creates a session with a fresh patient id, or resumes the
// given one. A previously persisted contact flag reopens the gate without
// re-entering details.
func NewSession(patientID string, backend Backend, flags ContactFlagStore, cfg Config, log zerolog.Logger) *Session {
	if patientID == "" {
		patientID = "patient_" + uuid.NewString()
	}
	s := &Session{
		patientID:     patientID,
		cfg:           cfg,
		backend:       backend,
		flags:         flags,
		log:           log,
		lastAnnounced: pkg.RiskNone,
	}
	if flags != nil && flags.Saved(patientID) {
		s.contactSaved = true
	}
	return s
}

// PatientID returns the stable identifier used for all backend requests.
func (s *Session) PatientID() string { return s.patientID }

// ContactSaved reports whether the contact gate is open.
func (s *Session) ContactSaved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contactSaved
}

// UploadEnabled reports whether uploads are available.
func (s *Session) UploadEnabled() bool { return s.ContactSaved() }

// ChatEnabled reports whether chat is available: contact saved and at least
// one upload completed.
func (s *Session) ChatEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contactSaved && len(s.uploads) > 0
}

// Uploads returns a copy of the completed uploads in completion order.
func (s *Session) Uploads() []UploadRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]UploadRecord, len(s.uploads))
	copy(out, s.uploads)
	return out
}

// IntroSent reports whether the one-time greeting has been rendered.
func (s *Session) IntroSent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.introSent
}

// ReportShown reports whether the final-report affordance is rendered.
func (s *Session) ReportShown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reportShown
}

// LastAnnouncedRisk returns the last risk level actually announced.
func (s *Session) LastAnnouncedRisk() pkg.RiskLevel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAnnounced
}

// Transcript returns a copy of everything rendered so far.
func (s *Session) Transcript() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// append records one transcript item. Callers hold s.mu.
func (s *Session) append(it Item) {
	s.items = append(s.items, it)
}

// lastItem returns the most recently rendered item, or nil. Callers hold
// s.mu.
func (s *Session) lastItem() *Item {
	if len(s.items) == 0 {
		return nil
	}
	return &s.items[len(s.items)-1]
}
