// Package remind sweeps due follow-up reminders on a cron schedule and
// surfaces them as moderate-risk alerts for the hospital dashboard.
package remind

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"recovery-assistant/internal/db"
	"recovery-assistant/pkg"
)

// Store is the persistence surface the sweeper needs. Satisfied by
// *db.Repository.
type Store interface {
	DueReminders(ctx context.Context, now time.Time) ([]db.Reminder, error)
	MarkReminderSent(ctx context.Context, id int64) error
	AddDoctorAlert(ctx context.Context, a pkg.DoctorAlert) error
}

// Notifier pushes a reminder alert to listeners. Satisfied by *db.Notifier.
type Notifier interface {
	Notify(ctx context.Context, alert pkg.DoctorAlert) error
}

// Sweeper drains due reminders into doctor alerts.
type Sweeper struct {
	Store    Store
	Notifier Notifier
	Log      zerolog.Logger

	now func() time.Time
}

// NewSweeper constructs a Sweeper.
func NewSweeper(store Store, notifier Notifier, log zerolog.Logger) *Sweeper {
	return &Sweeper{Store: store, Notifier: notifier, Log: log, now: time.Now}
}

// Run starts a cron scheduler firing Sweep on the given 5-field expression
// and returns a stop function. The first sweep happens on schedule, not
// immediately.
func (s *Sweeper) Run(ctx context.Context, spec string) (func(), error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if err := s.Sweep(ctx); err != nil {
			s.Log.Error().Err(err).Msg("reminder sweep failed")
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return func() { <-c.Stop().Done() }, nil
}

// Sweep processes every reminder due right now. Each reminder becomes a
// moderate alert; a reminder is only marked sent once its alert is stored,
// so a failed sweep retries it next time.
func (s *Sweeper) Sweep(ctx context.Context) error {
	due, err := s.Store.DueReminders(ctx, s.now())
	if err != nil {
		return err
	}
	for _, rem := range due {
		alert := pkg.DoctorAlert{
			PatientID:     rem.PatientID,
			RiskScore:     pkg.RiskModerate.Score(),
			RiskLevel:     pkg.RiskModerate,
			StatusMessage: "Follow-up due - check in with patient",
		}
		if err := s.Store.AddDoctorAlert(ctx, alert); err != nil {
			s.Log.Error().Err(err).Str("patient_id", rem.PatientID).Msg("reminder alert failed")
			continue
		}
		if s.Notifier != nil {
			if err := s.Notifier.Notify(ctx, alert); err != nil {
				s.Log.Error().Err(err).Str("patient_id", rem.PatientID).Msg("reminder notify failed")
			}
		}
		if err := s.Store.MarkReminderSent(ctx, rem.ID); err != nil {
			s.Log.Error().Err(err).Int64("reminder_id", rem.ID).Msg("reminder mark failed")
		}
	}
	return nil
}
