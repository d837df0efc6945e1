package api

import "time"

// ErrorResponse is a generic JSON error wrapper.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// UploadResponse is returned after a successful upload.
type UploadResponse struct {
	Success bool   `json:"success"`
	OTP     string `json:"otp"`
	Message string `json:"message"`
}

// JobResponse is the operator-facing view of one print job. It carries
// a download reference, never the file bytes.
type JobResponse struct {
	OTP          string         `json:"otp"`
	Filename     string         `json:"filename"`
	PrintOptions map[string]any `json:"printOptions"`
	UploadTime   time.Time      `json:"uploadTime"`
	Status       string         `json:"status"`
	FileURL      string         `json:"fileUrl"`
}

// CompleteRequest asks to mark one job as printed.
type CompleteRequest struct {
	OTP string `json:"otp"`
}

// CompleteResponse confirms a completion.
type CompleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CleanupRequest triggers a reaper sweep.
type CleanupRequest struct {
	DryRun bool `json:"dry_run"`
}

// CleanupResponse reports one sweep result.
type CleanupResponse struct {
	ExpiredCount     int  `json:"expired_count"`
	BlobDeleteErrors int  `json:"blob_delete_errors"`
	DryRun           bool `json:"dry_run"`
}

// StatsResponse reports job counts by status.
type StatsResponse struct {
	TotalJobs     int `json:"total_jobs"`
	PendingJobs   int `json:"pending_jobs"`
	CompletedJobs int `json:"completed_jobs"`
}

// HealthResponse reports service and database health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	TotalJobs int       `json:"total_jobs"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
}
