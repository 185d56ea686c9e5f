package protocol

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"recovery-assistant/pkg"
)

// Backend is the assessment server as the session sees it.
type Backend interface {
	Chat(ctx context.Context, req pkg.ChatRequest) (*TurnResult, error)
	Upload(ctx context.Context, patientID, filename string, r io.Reader) (*UploadResult, error)
	SaveContact(ctx context.Context, req pkg.ContactRequest) error
	DownloadReport(ctx context.Context, patientID string) (data []byte, suggestedName string, err error)
}

// UploadResult is the backend's answer to one file upload.
type UploadResult struct {
	Analysis         string `json:"analysis"`
	Filename         string `json:"filename"`
	IsImage          bool   `json:"is_image"`
	GradcamAnalysis  string `json:"gradcam_analysis"`
	GradcamImagePath string `json:"gradcam_image_path"`
}

// HTTPBackend talks to the assessment server over its JSON API.
type HTTPBackend struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPBackend constructs a backend client for the given base URL. No
// client-side timeout is imposed; a turn runs until the transport gives up
// or the context is cancelled.
func NewHTTPBackend(baseURL string) *HTTPBackend {
	return &HTTPBackend{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{},
	}
}

func (b *HTTPBackend) Chat(ctx context.Context, req pkg.ChatRequest) (*TurnResult, error) {
	var res TurnResult
	if err := b.postJSON(ctx, "/api/chat", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (b *HTTPBackend) SaveContact(ctx context.Context, req pkg.ContactRequest) error {
	return b.postJSON(ctx, "/api/contact", req, nil)
}

func (b *HTTPBackend) Upload(ctx context.Context, patientID, filename string, r io.Reader) (*UploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return nil, err
	}
	if err := mw.WriteField("patient_id", patientID); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.BaseURL+"/api/upload", &body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	var res UploadResult
	if err := b.do(httpReq, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (b *HTTPBackend) DownloadReport(ctx context.Context, patientID string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.BaseURL+"/api/download-report/"+patientID, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := b.client().Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", decodeError(resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	name := "report.txt"
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		if fn := params["filename"]; fn != "" {
			name = fn
		}
	}
	return data, name, nil
}

func (b *HTTPBackend) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return b.do(req, out)
}

func (b *HTTPBackend) do(req *http.Request, out any) error {
	resp, err := b.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (b *HTTPBackend) client() *http.Client {
	if b.Client != nil {
		return b.Client
	}
	return http.DefaultClient
}

// decodeError turns a non-2xx response into an error carrying the
// server-supplied text when available.
func decodeError(resp *http.Response) error {
	var e pkg.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Error != "" {
		return fmt.Errorf("%s", e.Error)
	}
	return fmt.Errorf("server returned %s", resp.Status)
}
