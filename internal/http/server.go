// Package http exposes the patient and hospital APIs over gin.
package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"recovery-assistant/pkg"
)

// Store is the read/write surface handlers use directly. Satisfied by
// *db.Repository.
type Store interface {
	EnsurePatient(ctx context.Context, patientID string) error
	UpsertContact(ctx context.Context, patientID string, c pkg.Contact) error
	GetPatient(ctx context.Context, patientID string) (*pkg.PatientState, error)
	GetRiskHistory(ctx context.Context, patientID string) ([]pkg.RiskEntry, error)
	ListDoctorAlerts(ctx context.Context) ([]pkg.DoctorAlert, error)
	ListPatients(ctx context.Context) ([]pkg.PatientSummary, error)
	Ping(ctx context.Context) error
}

// ChatHandler runs one intake turn. Satisfied by *core.ChatService.
type ChatHandler interface {
	HandleTurn(ctx context.Context, req pkg.ChatRequest) (*pkg.ChatResponse, error)
}

// Uploader stores and analyzes one uploaded file. Satisfied by
// *core.UploadService.
type Uploader interface {
	HandleUpload(ctx context.Context, patientID, originalName string, r io.Reader) (*pkg.UploadResponse, error)
}

// AlertSource streams doctor alerts as they are published. Satisfied by
// *db.Notifier. A nil source disables the streaming endpoint.
type AlertSource interface {
	Listen(ctx context.Context) (<-chan pkg.DoctorAlert, error)
}

// Server bundles together the dependencies required by HTTP handlers.
type Server struct {
	Store     Store
	Chat      ChatHandler
	Uploads   Uploader
	Alerts    AlertSource
	Log       zerolog.Logger
	UploadDir string
	MaxBody   int64

	now func() time.Time
}

// NewServer constructs a Server.
func NewServer(store Store, chat ChatHandler, uploads Uploader, alerts AlertSource, uploadDir string, maxBody int64, log zerolog.Logger) *Server {
	return &Server{
		Store:     store,
		Chat:      chat,
		Uploads:   uploads,
		Alerts:    alerts,
		Log:       log,
		UploadDir: uploadDir,
		MaxBody:   maxBody,
		now:       time.Now,
	}
}

// Router builds the gin engine with middleware and all routes attached.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		s.requestLogger(),
		limitBodySize(s.MaxBody),
		cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
			MaxAge:       12 * time.Hour,
		}),
	)
	router.MaxMultipartMemory = s.MaxBody

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/readyz", s.handleReady)

	api := router.Group("/api")
	api.POST("/contact", s.handleContact)
	api.POST("/upload", s.handleUpload)
	api.POST("/chat", s.handleChat)
	api.GET("/patients", s.handlePatients)
	api.GET("/patient/:id", s.handlePatient)
	api.GET("/risk-history/:id", s.handleRiskHistory)
	api.GET("/doctor-alerts", s.handleDoctorAlerts)
	api.GET("/doctor-alerts/stream", s.handleAlertStream)
	api.GET("/download-report/:id", s.handleDownloadReport)
	api.GET("/gradcam-image/:filename", s.handleGradcamImage)

	return router
}

func (s *Server) handleReady(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := s.Store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "db": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestLogger emits one structured line per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := s.now()
		c.Next()
		s.Log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", s.now().Sub(start)).
			Msg("request")
	}
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
