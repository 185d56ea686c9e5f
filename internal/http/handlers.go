package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"recovery-assistant/internal/db"
	"recovery-assistant/internal/report"
	"recovery-assistant/pkg"
)

// defaultPatientID is used when a request omits the patient identifier,
// matching the single-patient web client.
const defaultPatientID = "patient_1"

func (s *Server) handleContact(c *gin.Context) {
	var req pkg.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, pkg.ErrorResponse{Error: "invalid payload"})
		return
	}
	if req.PatientID == "" {
		req.PatientID = defaultPatientID
	}
	ctx := c.Request.Context()
	if err := s.Store.EnsurePatient(ctx, req.PatientID); err != nil {
		s.fail(c, err)
		return
	}
	contact := pkg.Contact{
		Name:  strings.TrimSpace(req.Name),
		Phone: strings.TrimSpace(req.Phone),
		Email: strings.TrimSpace(req.Email),
	}
	if err := s.Store.UpsertContact(ctx, req.PatientID, contact); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Contact saved", "patient_id": req.PatientID})
}

func (s *Server) handleUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, pkg.ErrorResponse{Error: "No file provided"})
		return
	}
	if file.Filename == "" {
		c.JSON(http.StatusBadRequest, pkg.ErrorResponse{Error: "No file selected"})
		return
	}
	patientID := c.PostForm("patient_id")
	if patientID == "" {
		patientID = defaultPatientID
	}

	src, err := file.Open()
	if err != nil {
		s.fail(c, err)
		return
	}
	defer src.Close()

	resp, err := s.Uploads.HandleUpload(c.Request.Context(), patientID, file.Filename, src)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleChat(c *gin.Context) {
	var req pkg.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, pkg.ErrorResponse{Error: "invalid payload"})
		return
	}
	if req.PatientID == "" {
		req.PatientID = defaultPatientID
	}
	resp, err := s.Chat.HandleTurn(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handlePatients(c *gin.Context) {
	patients, err := s.Store.ListPatients(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if patients == nil {
		patients = []pkg.PatientSummary{}
	}
	c.JSON(http.StatusOK, patients)
}

func (s *Server) handlePatient(c *gin.Context) {
	st, err := s.Store.GetPatient(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, pkg.ErrorResponse{Error: "Patient not found"})
			return
		}
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) handleRiskHistory(c *gin.Context) {
	patientID := c.Param("id")
	history, err := s.Store.GetRiskHistory(c.Request.Context(), patientID)
	if err != nil {
		s.fail(c, err)
		return
	}
	if history == nil {
		history = []pkg.RiskEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"patient_id": patientID, "history": history})
}

func (s *Server) handleDoctorAlerts(c *gin.Context) {
	alerts, err := s.Store.ListDoctorAlerts(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if alerts == nil {
		alerts = []pkg.DoctorAlert{}
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// handleAlertStream pushes doctor alerts over SSE as they are published on
// the notify channel. The connection stays open until the client goes away
// or the source closes.
func (s *Server) handleAlertStream(c *gin.Context) {
	if s.Alerts == nil {
		c.JSON(http.StatusNotImplemented, pkg.ErrorResponse{Error: "alert streaming not configured"})
		return
	}
	alerts, err := s.Alerts.Listen(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case alert, ok := <-alerts:
			if !ok {
				return
			}
			payload, err := json.Marshal(alert)
			if err != nil {
				continue
			}
			fmt.Fprintf(c.Writer, "event: doctor_alert\ndata: %s\n\n", payload)
			c.Writer.Flush()
		}
	}
}

func (s *Server) handleDownloadReport(c *gin.Context) {
	st, err := s.Store.GetPatient(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, pkg.ErrorResponse{Error: "Patient not found"})
			return
		}
		s.fail(c, err)
		return
	}
	now := s.now()
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(st.PatientID, now)))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(report.Generate(st, now)))
}

func (s *Server) handleGradcamImage(c *gin.Context) {
	// filepath.Base strips any traversal attempt from the route parameter.
	name := filepath.Base(c.Param("filename"))
	path := filepath.Join(s.UploadDir, "gradcam_"+name)
	if !fileExists(path) {
		c.JSON(http.StatusNotFound, pkg.ErrorResponse{Error: "Grad-CAM image not found"})
		return
	}
	c.File(path)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (s *Server) fail(c *gin.Context, err error) {
	s.Log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	c.JSON(http.StatusInternalServerError, pkg.ErrorResponse{Error: err.Error()})
}
