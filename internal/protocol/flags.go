package protocol

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ContactFlagStore persists the one bit of session state that survives a
// restart: whether contact details were saved for a patient id.
type ContactFlagStore interface {
	Saved(patientID string) bool
	MarkSaved(patientID string) error
}

// MemoryFlagStore keeps flags in process memory.
type MemoryFlagStore struct {
	mu    sync.Mutex
	saved map[string]bool
}

// NewMemoryFlagStore constructs an empty in-memory store.
func NewMemoryFlagStore() *MemoryFlagStore {
	return &MemoryFlagStore{saved: map[string]bool{}}
}

func (m *MemoryFlagStore) Saved(patientID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved[patientID]
}

func (m *MemoryFlagStore) MarkSaved(patientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[patientID] = true
	return nil
}

// FileFlagStore keeps one marker file per patient id under a directory,
// surviving restarts.
type FileFlagStore struct {
	Dir string
}

func (f *FileFlagStore) path(patientID string) string {
	// patient ids are generated by us, but sanitize anyway
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, patientID)
	return filepath.Join(f.Dir, "contact_"+name)
}

func (f *FileFlagStore) Saved(patientID string) bool {
	_, err := os.Stat(f.path(patientID))
	return err == nil
}

func (f *FileFlagStore) MarkSaved(patientID string) error {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(f.path(patientID), []byte{}, 0o644)
}
