package protocol

import "errors"

// ErrVoiceUnavailable is returned when no capture engine is wired in.
var ErrVoiceUnavailable = errors.New("voice input is not available on this device")

// VoiceCapture is a start/stop toggle around a speech-to-text engine. A
// capture session is mutually exclusive with itself and independent of
// chat or upload state.
type VoiceCapture struct {
	engine VoiceEngine
	active bool
}

// VoiceEngine abstracts the actual speech-to-text capability.
type VoiceEngine interface {
	Start() error
	Stop() (transcript string, err error)
}

// NewVoiceCapture wraps an engine; engine may be nil when the capability
// is absent.
func NewVoiceCapture(engine VoiceEngine) *VoiceCapture {
	return &VoiceCapture{engine: engine}
}

// Active reports whether a capture session is running.
func (v *VoiceCapture) Active() bool { return v.active }

// Toggle starts capture when idle and stops it when active, returning the
// transcript on stop. Starting yields an empty transcript.
func (v *VoiceCapture) Toggle() (string, error) {
	if v.engine == nil {
		return "", ErrVoiceUnavailable
	}
	if v.active {
		v.active = false
		return v.engine.Stop()
	}
	if err := v.engine.Start(); err != nil {
		return "", err
	}
	v.active = true
	return "", nil
}
