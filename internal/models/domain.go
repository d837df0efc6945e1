package models

import (
	"fmt"
	"strings"
	"time"
)

// JobStatus defines allowed lifecycle states for print jobs.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusCompleted JobStatus = "completed"
)

// DefaultTTL is how long a job stays redeemable after upload.
const DefaultTTL = 24 * time.Hour

var validJobStatuses = map[JobStatus]struct{}{
	StatusPending:   {},
	StatusCompleted: {},
}

func IsValidJobStatus(status JobStatus) bool {
	_, ok := validJobStatuses[status]
	return ok
}

func ParseJobStatus(raw string) (JobStatus, error) {
	value := JobStatus(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return "", fmt.Errorf("status is required")
	}
	if !IsValidJobStatus(value) {
		return "", fmt.Errorf("invalid status: %s", value)
	}
	return value, nil
}
