package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"xeroq/internal/models"
)

const jobColumns = "otp, filename, file_locator, file_type, print_options, upload_time, status, expires_at, completed_at"

// InsertJob inserts one print-job row. The OTP is the primary key; a
// duplicate insert fails with a unique-constraint error.
func (s *Store) InsertJob(ctx context.Context, job *models.PrintJob) error {
	if job == nil {
		return fmt.Errorf("job is required")
	}
	if job.OTP == "" {
		return fmt.Errorf("otp is required")
	}
	if job.FileLocator == "" {
		return fmt.Errorf("file_locator is required")
	}
	if job.UploadTime.IsZero() {
		job.UploadTime = time.Now().UTC()
	}
	if job.Status == "" {
		job.Status = string(models.StatusPending)
	}

	optionsJSON, err := printOptionsToJSON(job.PrintOptions)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO print_jobs (`+jobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		job.OTP,
		job.Filename,
		job.FileLocator,
		job.FileType,
		optionsJSON,
		dbFormatTime(job.UploadTime),
		job.Status,
		dbFormatTime(job.ExpiresAt),
		dbFormatTimePtr(job.CompletedAt),
	)
	return err
}

// GetJob returns one job by OTP, or nil when absent.
func (s *Store) GetJob(ctx context.Context, code string) (*models.PrintJob, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM print_jobs WHERE otp = ?`, code)
	return scanJob(row)
}

// JobExists checks whether a job row exists for the OTP.
func (s *Store) JobExists(ctx context.Context, code string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM print_jobs WHERE otp = ? LIMIT 1", code).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdateJobStatus applies a partial update of status and completed_at
// and returns the number of affected rows.
func (s *Store) UpdateJobStatus(ctx context.Context, code string, status models.JobStatus, completedAt *time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE print_jobs SET status = ?, completed_at = ? WHERE otp = ?
	`, string(status), dbFormatTimePtr(completedAt), code)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteJob removes one job row by OTP.
func (s *Store) DeleteJob(ctx context.Context, code string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM print_jobs WHERE otp = ?", code)
	return err
}

// ListExpiredJobs returns all jobs with expires_at strictly before the cutoff.
func (s *Store) ListExpiredJobs(ctx context.Context, before time.Time) ([]models.PrintJob, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+jobColumns+` FROM print_jobs WHERE expires_at < ? ORDER BY expires_at ASC
	`, dbFormatTime(before))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []models.PrintJob{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		if job == nil {
			continue
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// DeleteExpiredJobs removes all jobs with expires_at strictly before the
// cutoff in one batched delete and returns the count removed.
func (s *Store) DeleteExpiredJobs(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM print_jobs WHERE expires_at < ?", dbFormatTime(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountJobs returns the total number of job rows.
func (s *Store) CountJobs(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM print_jobs").Scan(&count)
	return count, err
}

// CountJobsByStatus returns row counts keyed by status.
func (s *Store) CountJobsByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM print_jobs GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*models.PrintJob, error) {
	var (
		job         models.PrintJob
		optionsJSON string
		uploadTime  string
		expiresAt   string
		completedAt sql.NullString
	)

	err := row.Scan(
		&job.OTP,
		&job.Filename,
		&job.FileLocator,
		&job.FileType,
		&optionsJSON,
		&uploadTime,
		&job.Status,
		&expiresAt,
		&completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	status, err := models.ParseJobStatus(job.Status)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", job.OTP, err)
	}
	job.Status = string(status)

	job.PrintOptions, err = printOptionsFromJSON(optionsJSON)
	if err != nil {
		return nil, err
	}
	if job.UploadTime, err = dbParseTime(uploadTime); err != nil {
		return nil, fmt.Errorf("parse upload_time: %w", err)
	}
	if job.ExpiresAt, err = dbParseTime(expiresAt); err != nil {
		return nil, fmt.Errorf("parse expires_at: %w", err)
	}
	if completedAt.Valid && completedAt.String != "" {
		t, err := dbParseTime(completedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse completed_at: %w", err)
		}
		job.CompletedAt = &t
	}

	return &job, nil
}

func printOptionsToJSON(options map[string]any) (string, error) {
	if options == nil {
		options = map[string]any{}
	}
	raw, err := json.Marshal(options)
	if err != nil {
		return "", fmt.Errorf("encode print_options: %w", err)
	}
	return string(raw), nil
}

func printOptionsFromJSON(raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}
	options := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &options); err != nil {
		return nil, fmt.Errorf("decode print_options: %w", err)
	}
	return options, nil
}

// Times are stored as fixed-width RFC3339 UTC strings with millisecond
// precision so that the expires_at index compares lexicographically in
// time order.
const dbTimeLayout = "2006-01-02T15:04:05.000Z07:00"

func dbFormatTime(t time.Time) string {
	return t.UTC().Format(dbTimeLayout)
}

func dbFormatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return dbFormatTime(*t)
}

func dbParseTime(raw string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, raw)
}

// StoreInfo reports the schema version and job counts for /health and
// the stats endpoint.
type StoreInfo struct {
	SchemaVersion int
	TotalJobs     int
	StatusCounts  map[string]int
}

// Info returns current store statistics.
func (s *Store) Info(ctx context.Context) (StoreInfo, error) {
	var info StoreInfo
	version, err := s.SchemaVersion()
	if err != nil {
		return info, err
	}
	total, err := s.CountJobs(ctx)
	if err != nil {
		return info, err
	}
	counts, err := s.CountJobsByStatus(ctx)
	if err != nil {
		return info, err
	}
	info.SchemaVersion = version
	info.TotalJobs = total
	info.StatusCounts = counts
	return info, nil
}
