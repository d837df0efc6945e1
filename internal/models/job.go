package models

import "time"

// PrintJob is the sole persistent entity: one uploaded document waiting
// to be redeemed at the counter by its OTP.
type PrintJob struct {
	OTP          string         `json:"otp"`
	Filename     string         `json:"filename"`
	FileLocator  string         `json:"-"`
	FileType     string         `json:"file_type"`
	PrintOptions map[string]any `json:"print_options"`
	UploadTime   time.Time      `json:"upload_time"`
	Status       string         `json:"status"`
	ExpiresAt    time.Time      `json:"expires_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
}

// Expired reports whether the job is past its expiry at the given instant.
func (j *PrintJob) Expired(now time.Time) bool {
	if j == nil {
		return true
	}
	return !now.Before(j.ExpiresAt)
}
