package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"xeroq/internal/api"
	"xeroq/internal/auth"
	"xeroq/internal/blobstore"
	"xeroq/internal/models"
	"xeroq/internal/store"
)

func testServer(t *testing.T, opts Options) *Server {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	bs, err := blobstore.NewLocalStore(filepath.Join(dir, "blobs"))
	if err != nil {
		t.Fatalf("open blob store: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New("127.0.0.1:0", st, bs, opts, logger)
}

func multipartUpload(t *testing.T, filename, mediaType, content, printOptions string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", mediaType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := io.WriteString(part, content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if printOptions != "" {
		if err := mw.WriteField("printOptions", printOptions); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func uploadPDF(t *testing.T, handler http.Handler, content string) api.UploadResponse {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, multipartUpload(t, "report.pdf", models.MediaTypePDF, content, `{"copies":2}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("upload returned %d: %s", rec.Code, rec.Body.String())
	}
	var resp api.UploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestUploadAndLookupRoundtrip(t *testing.T) {
	srv := testServer(t, Options{})
	handler := srv.routes()

	resp := uploadPDF(t, handler, "%PDF-1.4 content")
	if !resp.Success || len(resp.OTP) != 6 {
		t.Fatalf("unexpected upload response: %+v", resp)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/lookup?otp="+resp.OTP, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("lookup returned %d: %s", rec.Code, rec.Body.String())
	}

	var job api.JobResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if job.OTP != resp.OTP {
		t.Fatalf("otp mismatch: %q vs %q", job.OTP, resp.OTP)
	}
	if job.Filename != "report.pdf" {
		t.Fatalf("expected report.pdf, got %q", job.Filename)
	}
	if job.Status != "pending" {
		t.Fatalf("expected pending, got %q", job.Status)
	}
	if job.PrintOptions["copies"] != float64(2) {
		t.Fatalf("expected copies=2, got %v", job.PrintOptions)
	}
	if job.FileURL != "/api/admin/download?otp="+resp.OTP {
		t.Fatalf("unexpected fileUrl %q", job.FileURL)
	}
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	srv := testServer(t, Options{})
	handler := srv.routes()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, multipartUpload(t, "run.exe", "application/x-msdownload", "MZ", ""))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var errResp api.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if errResp.ErrorCode != ErrCodeUnsupportedType {
		t.Fatalf("expected error_code %d, got %d", ErrCodeUnsupportedType, errResp.ErrorCode)
	}
}

func TestUploadRejectsInvalidPrintOptions(t *testing.T) {
	srv := testServer(t, Options{})
	handler := srv.routes()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, multipartUpload(t, "a.pdf", models.MediaTypePDF, "%PDF", "{not json"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var errResp api.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if errResp.ErrorCode != ErrCodeInvalidOptions {
		t.Fatalf("expected error_code %d, got %d", ErrCodeInvalidOptions, errResp.ErrorCode)
	}
}

func TestUploadRejectsMissingFile(t *testing.T) {
	srv := testServer(t, Options{})
	handler := srv.routes()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("printOptions", "{}")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	srv := testServer(t, Options{Limits: models.SizeLimits{PDFMaxBytes: 8, DOCXMaxBytes: 8, ImageMaxBytes: 8}})
	handler := srv.routes()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, multipartUpload(t, "big.pdf", models.MediaTypePDF, strings.Repeat("x", 64), ""))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLookupRequiresOTP(t *testing.T) {
	srv := testServer(t, Options{})
	handler := srv.routes()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/lookup", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLookupUnknownOTP(t *testing.T) {
	srv := testServer(t, Options{})
	handler := srv.routes()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/lookup?otp=AAAAA1", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestLookupExpiredAndUnknownAreIndistinguishable(t *testing.T) {
	srv := testServer(t, Options{})
	handler := srv.routes()

	resp := uploadPDF(t, handler, "%PDF-1.4 short lived")

	unknown := httptest.NewRecorder()
	handler.ServeHTTP(unknown, httptest.NewRequest(http.MethodGet, "/api/admin/lookup?otp=ZZZZZ9", nil))
	if unknown.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown code, got %d", unknown.Code)
	}

	srv.service.now = func() time.Time { return time.Now().UTC().Add(25 * time.Hour) }

	expired := httptest.NewRecorder()
	handler.ServeHTTP(expired, httptest.NewRequest(http.MethodGet, "/api/admin/lookup?otp="+resp.OTP, nil))
	if expired.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for expired code, got %d", expired.Code)
	}

	// Byte-identical responses, so a caller cannot probe whether a code
	// was ever issued.
	if !bytes.Equal(expired.Body.Bytes(), unknown.Body.Bytes()) {
		t.Fatalf("expired response %q differs from unknown response %q", expired.Body.String(), unknown.Body.String())
	}
}

func TestDownloadStreamsFile(t *testing.T) {
	srv := testServer(t, Options{})
	handler := srv.routes()

	resp := uploadPDF(t, handler, "%PDF-1.4 download me")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/download?otp="+resp.OTP, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != models.MediaTypePDF {
		t.Fatalf("unexpected content type %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "report.pdf") {
		t.Fatalf("unexpected content disposition %q", got)
	}
	if rec.Body.String() != "%PDF-1.4 download me" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestCompleteEndpoint(t *testing.T) {
	srv := testServer(t, Options{})
	handler := srv.routes()

	resp := uploadPDF(t, handler, "%PDF-1.4")

	for i := 0; i < 2; i++ {
		payload, _ := json.Marshal(api.CompleteRequest{OTP: strings.ToLower(resp.OTP)})
		req := httptest.NewRequest(http.MethodPost, "/api/admin/complete", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("complete attempt %d returned %d: %s", i+1, rec.Code, rec.Body.String())
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/lookup?otp="+resp.OTP, nil))
	var job api.JobResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if job.Status != "completed" {
		t.Fatalf("expected completed, got %q", job.Status)
	}
}

func TestCleanupRequiresConfirmHeader(t *testing.T) {
	srv := testServer(t, Options{})
	handler := srv.routes()

	payload, _ := json.Marshal(api.CleanupRequest{DryRun: false})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/cleanup", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without X-Confirm, got %d", rec.Code)
	}
}

func TestCleanupAcceptsEmptyBody(t *testing.T) {
	srv := testServer(t, Options{})
	handler := srv.routes()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/cleanup", nil)
	req.Header.Set("X-Confirm", "true")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("cleanup returned %d: %s", rec.Code, rec.Body.String())
	}

	var result api.CleanupResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.DryRun {
		t.Fatal("expected a real sweep, not a dry run")
	}
}

func TestCleanupSweepsExpiredJobs(t *testing.T) {
	srv := testServer(t, Options{})
	handler := srv.routes()

	resp := uploadPDF(t, handler, "%PDF-1.4 old")
	srv.service.now = func() time.Time { return time.Now().UTC().Add(25 * time.Hour) }

	payload, _ := json.Marshal(api.CleanupRequest{DryRun: false})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/cleanup", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Confirm", "true")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("cleanup returned %d: %s", rec.Code, rec.Body.String())
	}

	var result api.CleanupResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.ExpiredCount != 1 {
		t.Fatalf("expected 1 expired, got %+v", result)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/lookup?otp="+resp.OTP, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected swept job to be gone, got %d", rec.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv := testServer(t, Options{})
	handler := srv.routes()

	uploadPDF(t, handler, "%PDF-1.4 one")
	resp := uploadPDF(t, handler, "%PDF-1.4 two")

	payload, _ := json.Marshal(api.CompleteRequest{OTP: resp.OTP})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/complete", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete returned %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("stats returned %d", rec.Code)
	}

	var stats api.StatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.TotalJobs != 2 || stats.PendingJobs != 1 || stats.CompletedJobs != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t, Options{})
	handler := srv.routes()

	uploadPDF(t, handler, "%PDF-1.4")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health returned %d", rec.Code)
	}

	var health api.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != "healthy" || health.Database != "connected" || health.TotalJobs != 1 {
		t.Fatalf("unexpected health %+v", health)
	}
}

func TestAdminAuthGate(t *testing.T) {
	hash, err := auth.HashPassword("operator-secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	srv := testServer(t, Options{AdminPasswordHash: hash})
	handler := srv.routes()

	// Upload stays public.
	resp := uploadPDF(t, handler, "%PDF-1.4")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/lookup?otp="+resp.OTP, nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/lookup?otp="+resp.OTP, nil)
	req.Header.Set("X-Admin-Token", "wrong")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/lookup?otp="+resp.OTP, nil)
	req.Header.Set("X-Admin-Token", "operator-secret")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := testServer(t, Options{AllowedOrigins: []string{"https://kiosk.example"}})
	handler := srv.routes()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://kiosk.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://kiosk.example" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no CORS header for unknown origin, got %q", got)
	}
}
