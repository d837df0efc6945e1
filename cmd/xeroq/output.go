package main

import (
	"fmt"
	"os"
	"time"

	"xeroq/internal/api"
	"xeroq/internal/format"
)

var outputFormatter format.Formatter = format.JSONFormatter{Indent: "  "}

func writeJSON(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeJobDetail(job api.JobResponse) error {
	lines := []string{
		fmt.Sprintf("otp: %s", job.OTP),
		fmt.Sprintf("filename: %s", job.Filename),
		fmt.Sprintf("status: %s", job.Status),
		fmt.Sprintf("uploaded: %s", formatTime(job.UploadTime)),
	}
	if len(job.PrintOptions) > 0 {
		lines = append(lines, "options:")
		for key, value := range job.PrintOptions {
			lines = append(lines, fmt.Sprintf("  %s: %v", key, value))
		}
	}

	for _, line := range lines {
		if err := writePlain("%s\n", line); err != nil {
			return err
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
