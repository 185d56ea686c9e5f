package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"

	"recovery-assistant/pkg"
)

// Notifier publishes doctor alerts on a Postgres NOTIFY channel so that
// co-located dashboard processes can react without polling. The channel
// name should match the NOTIFY_CHANNEL environment variable.
type Notifier struct {
	DB      *sql.DB
	ConnStr string
	Channel string
}

// NewNotifier constructs a Notifier. ConnStr is needed for listening;
// publishing goes through the shared pool.
func NewNotifier(db *sql.DB, connStr, channel string) *Notifier {
	return &Notifier{DB: db, ConnStr: connStr, Channel: channel}
}

// Notify publishes the alert as JSON on the channel.
func (n *Notifier) Notify(ctx context.Context, alert pkg.DoctorAlert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return err
	}
	_, err = n.DB.ExecContext(ctx, `SELECT pg_notify($1, $2)`, n.Channel, string(payload))
	return err
}

// Listen yields doctor alerts as they are published on the channel. The
// returned channel closes when ctx is cancelled. Malformed payloads are
// skipped.
func (n *Notifier) Listen(ctx context.Context) (<-chan pkg.DoctorAlert, error) {
	listener := pq.NewListener(n.ConnStr, 10*time.Second, time.Minute, nil)
	if err := listener.Listen(n.Channel); err != nil {
		_ = listener.Close()
		return nil, err
	}
	ch := make(chan pkg.DoctorAlert)
	go func() {
		defer func() {
			_ = listener.Close()
			close(ch)
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case note, ok := <-listener.Notify:
				if !ok {
					return
				}
				if note == nil {
					// reconnect signal from the driver
					continue
				}
				var alert pkg.DoctorAlert
				if err := json.Unmarshal([]byte(note.Extra), &alert); err != nil {
					continue
				}
				select {
				case ch <- alert:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}
