package pkg

import (
	"strings"
	"time"
)

// RiskLevel is the categorical assessment the backend reports per turn.
// "none" is a client-side presentation state only and never travels on the
// wire; the backend emits low/moderate/high/unknown.
type RiskLevel string

const (
	RiskNone     RiskLevel = "none"
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskUnknown  RiskLevel = "unknown"
)

// ParseRiskLevel normalises a wire value to a RiskLevel. "medium" is a
// historical alias for moderate. Empty and unrecognised values map to
// unknown, which downstream code treats as "no risk signal".
func ParseRiskLevel(s string) RiskLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return RiskLow
	case "moderate", "medium":
		return RiskModerate
	case "high":
		return RiskHigh
	default:
		return RiskUnknown
	}
}

// Concrete reports whether the level carries an actual assessment, as
// opposed to unknown/none.
func (l RiskLevel) Concrete() bool {
	return l == RiskLow || l == RiskModerate || l == RiskHigh
}

// Score maps a level to its fixed numeric risk score.
func (l RiskLevel) Score() int {
	switch l {
	case RiskHigh:
		return 85
	case RiskModerate:
		return 55
	case RiskLow:
		return 25
	default:
		return 40
	}
}

// Trend describes how a patient's recent risk scores are moving.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendWorsening Trend = "worsening"
	TrendStable    Trend = "stable"
)

// DialogueStage tracks where the intake conversation currently is.
type DialogueStage string

const (
	StageInitial            DialogueStage = "initial"
	StageSymptomsInquiry    DialogueStage = "symptoms_inquiry"
	StageAssessmentComplete DialogueStage = "assessment_complete"
	StageEscalated          DialogueStage = "escalated"
	StageUrgentCare         DialogueStage = "urgent_care"
	StageFollowUp           DialogueStage = "follow_up"
)

// MessageRole describes who authored a conversation message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one conversation turn persisted for a patient.
type Message struct {
	ID        int64       `json:"id"`
	PatientID string      `json:"patient_id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"timestamp"`
}

// Contact holds the administrative details captured before chat opens.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// SurgeryInfo is the structured extraction from an uploaded report.
type SurgeryInfo struct {
	SurgeryType         string   `json:"surgery_type"`
	SurgeryDate         string   `json:"surgery_date,omitempty"`
	Site                string   `json:"site,omitempty"`
	Side                string   `json:"side,omitempty"`
	CommonComplications []string `json:"common_complications,omitempty"`
	RecoveryTimeline    string   `json:"recovery_timeline,omitempty"`
}

// Upload records one file a patient submitted, together with its analysis.
type Upload struct {
	ID               int64       `json:"id"`
	PatientID        string      `json:"patient_id"`
	Filename         string      `json:"filename"`
	Content          string      `json:"content,omitempty"`
	Analysis         string      `json:"analysis"`
	SurgeryInfo      SurgeryInfo `json:"surgery_info"`
	IsImage          bool        `json:"is_image"`
	GradcamAnalysis  string      `json:"gradcam_analysis,omitempty"`
	GradcamImagePath string      `json:"gradcam_image_path,omitempty"`
	CreatedAt        time.Time   `json:"timestamp"`
}

// PatientState is the full per-patient record behind /api/patient/:id.
type PatientState struct {
	PatientID           string            `json:"patient_id"`
	Contact             Contact           `json:"contact"`
	RiskLevel           RiskLevel         `json:"risk_level"`
	DialogueStage       DialogueStage     `json:"dialogue_stage"`
	SurgeryInfo         SurgeryInfo       `json:"surgery_info"`
	SymptomsAsked       []string          `json:"symptoms_asked"`
	SymptomsPrompted    []string          `json:"symptoms_prompted"`
	LastPromptedSymptom string            `json:"last_prompted_symptom,omitempty"`
	Details             map[string]string `json:"details"`
	Uploads             []Upload          `json:"uploads"`
	Conversation        []Message         `json:"conversation"`
	UpdatedAt           time.Time         `json:"last_updated"`
}

// PatientSummary is one dashboard card in the hospital view.
type PatientSummary struct {
	PatientID         string      `json:"patient_id"`
	Name              string      `json:"name"`
	RiskLevel         RiskLevel   `json:"risk_level"`
	LastUpdated       time.Time   `json:"last_updated"`
	ConversationCount int         `json:"conversation_count"`
	UploadCount       int         `json:"upload_count"`
	SurgeryInfo       SurgeryInfo `json:"surgery_info"`
	SymptomsAsked     []string    `json:"symptoms_asked"`
}

// RiskEntry is one point in a patient's risk history.
type RiskEntry struct {
	Date        time.Time `json:"date"`
	RiskScore   int       `json:"risk_score"`
	TrendStatus Trend     `json:"trend_status"`
}

// DoctorAlert is one row in the hospital-side alert feed.
type DoctorAlert struct {
	PatientID     string    `json:"patient_id"`
	RiskScore     int       `json:"risk_score"`
	RiskLevel     RiskLevel `json:"risk_level"`
	StatusMessage string    `json:"status_message"`
	CreatedAt     time.Time `json:"created_at"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	PatientID string `json:"patient_id"`
	Message   string `json:"message"`
	Language  string `json:"language,omitempty"`
}

// ChatResponse is the success body of POST /api/chat. RiskScore is a
// pointer because the unknown level must omit the field entirely rather
// than report zero.
type ChatResponse struct {
	Message   string            `json:"message"`
	RiskLevel RiskLevel         `json:"risk_level,omitempty"`
	RiskScore *int              `json:"risk_score,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// UploadResponse is the success body of POST /api/upload.
type UploadResponse struct {
	Message          string `json:"message"`
	Analysis         string `json:"analysis"`
	Filename         string `json:"filename"`
	IsImage          bool   `json:"is_image"`
	GradcamAnalysis  string `json:"gradcam_analysis,omitempty"`
	GradcamImagePath string `json:"gradcam_image_path,omitempty"`
}

// ContactRequest is the body of POST /api/contact.
type ContactRequest struct {
	PatientID string `json:"patient_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

// ErrorResponse is the body every endpoint returns on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}
