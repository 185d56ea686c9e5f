package protocol

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"recovery-assistant/pkg"
)

// Validation errors surfaced before any request is made.
var (
	ErrNameRequired  = errors.New("name is required")
	ErrPhoneRequired = errors.New("phone is required")
	ErrEmailInvalid  = errors.New("email address is invalid")
	ErrContactGate   = errors.New("save contact details before uploading")
)

// SaveContact validates and persists contact details, opening the gate.
// The saved flag survives restarts via the flag store.
func (s *Session) SaveContact(ctx context.Context, name, phone, email string) error {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	email = strings.TrimSpace(email)
	if name == "" {
		return ErrNameRequired
	}
	if phone == "" {
		return ErrPhoneRequired
	}
	if email != "" && !validEmail(email) {
		return ErrEmailInvalid
	}

	err := s.backend.SaveContact(ctx, pkg.ContactRequest{
		PatientID: s.patientID,
		Name:      name,
		Phone:     phone,
		Email:     email,
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.contactSaved = true
	s.mu.Unlock()

	if s.flags != nil {
		if err := s.flags.MarkSaved(s.patientID); err != nil {
			s.log.Warn().Err(err).Msg("contact flag not persisted")
		}
	}
	return nil
}

// Upload sends one file to the backend and records the result. Multiple
// uploads may run concurrently; completions are recorded in whatever order
// they finish. A failed upload renders an inline error and leaves the
// upload list and gate state untouched.
func (s *Session) Upload(ctx context.Context, filename string, r io.Reader) error {
	if !s.ContactSaved() {
		return ErrContactGate
	}

	res, err := s.backend.Upload(ctx, s.patientID, filename, r)
	if err != nil {
		s.mu.Lock()
		s.append(Item{Kind: ItemError, Text: renderText(fmt.Sprintf("Upload of %s failed: %v", filename, err))})
		s.mu.Unlock()
		return err
	}

	s.RecordUpload(UploadRecord{
		Filename:         res.Filename,
		Analysis:         res.Analysis,
		IsImage:          res.IsImage,
		DerivedImagePath: res.GradcamImagePath,
	})
	return nil
}

// RecordUpload appends one completed upload. When the count first reaches
// the configured threshold, the combined greeting is composed locally and
// rendered as a one-time assistant turn, with no server round-trip.
func (s *Session) RecordUpload(rec UploadRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.uploads = append(s.uploads, rec)
	if s.introSent || len(s.uploads) != s.cfg.introThreshold() {
		return
	}
	s.introSent = true
	s.append(Item{Kind: ItemAssistant, Text: renderText(s.composeIntro())})
}

// composeIntro builds the greeting referencing every uploaded file.
// Callers hold s.mu.
func (s *Session) composeIntro() string {
	names := make([]string, len(s.uploads))
	for i, u := range s.uploads {
		names[i] = u.Filename
	}
	return fmt.Sprintf(
		"Hello! I've reviewed your uploaded documents (%s). I'm here to help with your recovery. How are you feeling today? Please describe any symptoms you have.",
		strings.Join(names, ", "),
	)
}

// validEmail is a light shape check, not RFC validation.
func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1 && !strings.Contains(email, " ")
}
