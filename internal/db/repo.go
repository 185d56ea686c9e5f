package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"recovery-assistant/pkg"
)

// ErrNotFound is returned when a patient id has no record.
var ErrNotFound = errors.New("patient not found")

// Repository wraps database operations for patients, uploads, conversation
// messages, risk history, doctor alerts and follow-up reminders. A single
// Postgres database backs all of them.
type Repository struct {
	DB *sql.DB
}

// NewRepository constructs a Repository from an existing sql.DB. The caller
// is responsible for managing the connection lifecycle.
func NewRepository(db *sql.DB) *Repository { return &Repository{DB: db} }

// EnsurePatient creates an empty patient record if none exists yet.
func (r *Repository) EnsurePatient(ctx context.Context, patientID string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO patients (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`,
		patientID,
	)
	return err
}

// UpsertContact stores the contact details for a patient, creating the
// record when needed.
func (r *Repository) UpsertContact(ctx context.Context, patientID string, c pkg.Contact) error {
	if err := r.EnsurePatient(ctx, patientID); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx,
		`UPDATE patients
         SET name = $1, phone = $2, email = $3, updated_at = NOW()
         WHERE id = $4`,
		c.Name, c.Phone, c.Email, patientID,
	)
	return err
}

// GetPatient loads the full per-patient state including uploads and the
// conversation transcript.
func (r *Repository) GetPatient(ctx context.Context, patientID string) (*pkg.PatientState, error) {
	var (
		st           pkg.PatientState
		surgeryJSON  []byte
		detailsJSON  []byte
		lastPrompted string
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, phone, email, risk_level, dialogue_stage,
                surgery_info, symptoms_asked, symptoms_prompted,
                last_prompted_symptom, details, updated_at
         FROM patients WHERE id = $1`, patientID,
	).Scan(
		&st.PatientID, &st.Contact.Name, &st.Contact.Phone, &st.Contact.Email,
		&st.RiskLevel, &st.DialogueStage, &surgeryJSON,
		pq.Array(&st.SymptomsAsked), pq.Array(&st.SymptomsPrompted),
		&lastPrompted, &detailsJSON, &st.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	st.LastPromptedSymptom = lastPrompted
	if err := json.Unmarshal(surgeryJSON, &st.SurgeryInfo); err != nil {
		return nil, fmt.Errorf("decode surgery_info for %s: %w", patientID, err)
	}
	st.Details = map[string]string{}
	if len(detailsJSON) > 0 {
		if err := json.Unmarshal(detailsJSON, &st.Details); err != nil {
			return nil, fmt.Errorf("decode details for %s: %w", patientID, err)
		}
	}

	st.Uploads, err = r.ListUploads(ctx, patientID)
	if err != nil {
		return nil, err
	}
	st.Conversation, err = r.GetConversation(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// SaveAssessment persists the mutable assessment fields of a patient state
// in one update.
func (r *Repository) SaveAssessment(ctx context.Context, st *pkg.PatientState) error {
	surgeryJSON, err := json.Marshal(st.SurgeryInfo)
	if err != nil {
		return err
	}
	detailsJSON, err := json.Marshal(st.Details)
	if err != nil {
		return err
	}
	asked := st.SymptomsAsked
	if asked == nil {
		asked = []string{}
	}
	prompted := st.SymptomsPrompted
	if prompted == nil {
		prompted = []string{}
	}
	_, err = r.DB.ExecContext(ctx,
		`UPDATE patients
         SET risk_level = $1, dialogue_stage = $2, surgery_info = $3,
             symptoms_asked = $4, symptoms_prompted = $5,
             last_prompted_symptom = $6, details = $7, updated_at = NOW()
         WHERE id = $8`,
		st.RiskLevel, st.DialogueStage, surgeryJSON,
		pq.Array(asked), pq.Array(prompted),
		st.LastPromptedSymptom, detailsJSON, st.PatientID,
	)
	return err
}

// SaveUpload stores an upload row and fills in its generated id and
// timestamp.
func (r *Repository) SaveUpload(ctx context.Context, u *pkg.Upload) error {
	surgeryJSON, err := json.Marshal(u.SurgeryInfo)
	if err != nil {
		return err
	}
	return r.DB.QueryRowContext(ctx,
		`INSERT INTO uploads (patient_id, filename, content, analysis, surgery_info,
                              is_image, gradcam_analysis, gradcam_image_path)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
         RETURNING id, created_at`,
		u.PatientID, u.Filename, u.Content, u.Analysis, surgeryJSON,
		u.IsImage, u.GradcamAnalysis, u.GradcamImagePath,
	).Scan(&u.ID, &u.CreatedAt)
}

// ListUploads returns all uploads for a patient ordered by creation time.
func (r *Repository) ListUploads(ctx context.Context, patientID string) ([]pkg.Upload, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, patient_id, filename, content, analysis, surgery_info,
                is_image, gradcam_analysis, gradcam_image_path, created_at
         FROM uploads WHERE patient_id = $1
         ORDER BY created_at ASC, id ASC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var uploads []pkg.Upload
	for rows.Next() {
		var (
			u           pkg.Upload
			surgeryJSON []byte
		)
		if err := rows.Scan(&u.ID, &u.PatientID, &u.Filename, &u.Content, &u.Analysis,
			&surgeryJSON, &u.IsImage, &u.GradcamAnalysis, &u.GradcamImagePath, &u.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(surgeryJSON, &u.SurgeryInfo); err != nil {
			return nil, fmt.Errorf("decode upload surgery_info: %w", err)
		}
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}

// AppendMessage stores a new conversation message for the patient.
func (r *Repository) AppendMessage(ctx context.Context, patientID string, role pkg.MessageRole, content string) (*pkg.Message, error) {
	var m pkg.Message
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO messages (patient_id, role, content)
         VALUES ($1, $2, $3)
         RETURNING id, role, content, created_at`,
		patientID, role, content,
	).Scan(&m.ID, &m.Role, &m.Content, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.PatientID = patientID
	return &m, nil
}

// GetConversation returns the patient's messages ordered by creation time.
func (r *Repository) GetConversation(ctx context.Context, patientID string) ([]pkg.Message, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, patient_id, role, content, created_at
         FROM messages WHERE patient_id = $1
         ORDER BY created_at ASC, id ASC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var msgs []pkg.Message
	for rows.Next() {
		var m pkg.Message
		if err := rows.Scan(&m.ID, &m.PatientID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// AddRiskEntry appends one scored turn to the patient's risk history.
func (r *Repository) AddRiskEntry(ctx context.Context, patientID string, score int, trend pkg.Trend) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO risk_history (patient_id, risk_score, trend_status)
         VALUES ($1, $2, $3)`,
		patientID, score, trend,
	)
	return err
}

// GetRiskHistory returns the patient's risk entries oldest first.
func (r *Repository) GetRiskHistory(ctx context.Context, patientID string) ([]pkg.RiskEntry, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT created_at, risk_score, trend_status
         FROM risk_history WHERE patient_id = $1
         ORDER BY created_at ASC, id ASC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var history []pkg.RiskEntry
	for rows.Next() {
		var e pkg.RiskEntry
		if err := rows.Scan(&e.Date, &e.RiskScore, &e.TrendStatus); err != nil {
			return nil, err
		}
		history = append(history, e)
	}
	return history, rows.Err()
}

// AddDoctorAlert stores one hospital-side alert row.
func (r *Repository) AddDoctorAlert(ctx context.Context, a pkg.DoctorAlert) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO doctor_alerts (patient_id, risk_score, risk_level, status_message)
         VALUES ($1, $2, $3, $4)`,
		a.PatientID, a.RiskScore, a.RiskLevel, a.StatusMessage,
	)
	return err
}

// ListDoctorAlerts returns the newest alerts first, capped at 100.
func (r *Repository) ListDoctorAlerts(ctx context.Context) ([]pkg.DoctorAlert, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT patient_id, risk_score, risk_level, status_message, created_at
         FROM doctor_alerts
         ORDER BY created_at DESC, id DESC
         LIMIT 100`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var alerts []pkg.DoctorAlert
	for rows.Next() {
		var a pkg.DoctorAlert
		if err := rows.Scan(&a.PatientID, &a.RiskScore, &a.RiskLevel, &a.StatusMessage, &a.CreatedAt); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// ListPatients returns the dashboard summaries, high risk first, unknown
// last within the remainder, most recently updated at the top of each band.
func (r *Repository) ListPatients(ctx context.Context) ([]pkg.PatientSummary, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT p.id, p.name, p.risk_level, p.updated_at, p.surgery_info, p.symptoms_asked,
                (SELECT COUNT(*) FROM messages m WHERE m.patient_id = p.id),
                (SELECT COUNT(*) FROM uploads u WHERE u.patient_id = p.id)
         FROM patients p
         ORDER BY (p.risk_level = 'high') DESC,
                  (p.risk_level = 'unknown') ASC,
                  p.updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []pkg.PatientSummary
	for rows.Next() {
		var (
			s           pkg.PatientSummary
			surgeryJSON []byte
		)
		if err := rows.Scan(&s.PatientID, &s.Name, &s.RiskLevel, &s.LastUpdated,
			&surgeryJSON, pq.Array(&s.SymptomsAsked),
			&s.ConversationCount, &s.UploadCount); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(surgeryJSON, &s.SurgeryInfo); err != nil {
			return nil, fmt.Errorf("decode surgery_info: %w", err)
		}
		if s.Name == "" {
			s.Name = "Patient " + s.PatientID
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Reminder is a pending follow-up for a patient.
type Reminder struct {
	ID        int64
	PatientID string
	DueAt     time.Time
}

// ScheduleReminder records a follow-up due at the given time.
func (r *Repository) ScheduleReminder(ctx context.Context, patientID string, dueAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO reminders (patient_id, due_at) VALUES ($1, $2)`,
		patientID, dueAt,
	)
	return err
}

// DueReminders returns pending reminders whose due time has passed.
func (r *Repository) DueReminders(ctx context.Context, now time.Time) ([]Reminder, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, patient_id, due_at FROM reminders
         WHERE status = 'pending' AND due_at <= $1
         ORDER BY due_at ASC`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var due []Reminder
	for rows.Next() {
		var rem Reminder
		if err := rows.Scan(&rem.ID, &rem.PatientID, &rem.DueAt); err != nil {
			return nil, err
		}
		due = append(due, rem)
	}
	return due, rows.Err()
}

// MarkReminderSent flips a reminder out of the pending state.
func (r *Repository) MarkReminderSent(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE reminders SET status = 'sent' WHERE id = $1`, id)
	return err
}

// Ping verifies database connectivity, for readiness probes.
func (r *Repository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}
