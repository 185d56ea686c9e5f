package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"recovery-assistant/pkg"
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".bmp": true, ".tiff": true, ".dcm": true,
}

// UploadStore is the persistence surface the upload flow needs.
type UploadStore interface {
	EnsurePatient(ctx context.Context, patientID string) error
	GetPatient(ctx context.Context, patientID string) (*pkg.PatientState, error)
	SaveUpload(ctx context.Context, u *pkg.Upload) error
	SaveAssessment(ctx context.Context, st *pkg.PatientState) error
}

// UploadService stores an uploaded report, analyzes it, and folds any
// extracted surgery info into the patient's record.
type UploadService struct {
	Analyzer *Analyzer
	Store    UploadStore
	Dir      string
	Log      zerolog.Logger

	now func() time.Time
}

// NewUploadService constructs an UploadService writing files under dir.
func NewUploadService(analyzer *Analyzer, store UploadStore, dir string, log zerolog.Logger) *UploadService {
	return &UploadService{
		Analyzer: analyzer,
		Store:    store,
		Dir:      dir,
		Log:      log,
		now:      time.Now,
	}
}

// HandleUpload persists the file, analyzes its content and records the
// upload. A successful upload of a report with a recognizable surgery type
// moves an initial session into symptom inquiry.
func (s *UploadService) HandleUpload(ctx context.Context, patientID, originalName string, r io.Reader) (*pkg.UploadResponse, error) {
	if err := s.Store.EnsurePatient(ctx, patientID); err != nil {
		return nil, fmt.Errorf("ensure patient: %w", err)
	}

	filename := fmt.Sprintf("%s_%s_%s", patientID, s.now().Format("20060102_150405"), filepath.Base(originalName))
	path := filepath.Join(s.Dir, filename)
	if err := s.saveFile(path, r); err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}

	content, isImage := readUploadContent(path, filename)

	analysis, err := s.Analyzer.AnalyzeUpload(ctx, filename, content)
	if err != nil {
		s.Log.Error().Err(err).Str("filename", filename).Msg("upload analysis failed")
		analysis = "Analysis unavailable for this upload."
	}
	info := s.Analyzer.ExtractSurgeryInfo(ctx, analysis)

	upload := &pkg.Upload{
		PatientID:   patientID,
		Filename:    filename,
		Content:     content,
		Analysis:    analysis,
		SurgeryInfo: info,
		IsImage:     isImage,
	}
	if err := s.Store.SaveUpload(ctx, upload); err != nil {
		return nil, fmt.Errorf("record upload: %w", err)
	}

	st, err := s.Store.GetPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("load patient: %w", err)
	}
	if info.SurgeryType != "Unknown" || st.SurgeryInfo.SurgeryType == "" {
		st.SurgeryInfo = info
	}
	if st.DialogueStage == pkg.StageInitial {
		st.DialogueStage = pkg.StageSymptomsInquiry
	}
	if err := s.Store.SaveAssessment(ctx, st); err != nil {
		return nil, fmt.Errorf("save assessment: %w", err)
	}

	return &pkg.UploadResponse{
		Message:  "File uploaded successfully",
		Analysis: analysis,
		Filename: filename,
		IsImage:  isImage,
	}, nil
}

func (s *UploadService) saveFile(path string, r io.Reader) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// readUploadContent returns the text content usable as analysis input and
// whether the file is an image. PDFs are stored but not text-extracted.
func readUploadContent(path, filename string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case ext == ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", false
		}
		return string(data), false
	case ext == ".pdf":
		return "PDF file uploaded. Text extraction is not available.", false
	case imageExtensions[ext]:
		return "", true
	default:
		return "", false
	}
}
