package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"xeroq/internal/blobstore"
	"xeroq/internal/models"
	"xeroq/internal/otp"
	"xeroq/internal/store"
)

const fallbackBlobExtension = "bin"

// JobService orchestrates the print-job lifecycle: upload, lookup,
// download, completion, and expiry.
type JobService struct {
	store     *store.Store
	blobStore blobstore.BlobStore
	ttl       time.Duration
	limits    models.SizeLimits

	// now is replaceable in tests.
	now func() time.Time
}

// NewJobService constructs a JobService.
func NewJobService(jobStore *store.Store, blobs blobstore.BlobStore, ttl time.Duration, limits models.SizeLimits) *JobService {
	if ttl <= 0 {
		ttl = models.DefaultTTL
	}
	return &JobService{
		store:     jobStore,
		blobStore: blobs,
		ttl:       ttl,
		limits:    limits,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateJobInput describes one upload.
type CreateJobInput struct {
	Filename     string
	MediaType    string
	SizeBytes    int64
	PrintOptions map[string]any
}

// JobContent describes a managed file stream for download.
type JobContent struct {
	Reader    io.ReadCloser
	MediaType string
	Filename  string
}

// SweepResult reports one reaper pass.
type SweepResult struct {
	ExpiredCount     int
	BlobDeleteErrors int
	DryRun           bool
}

var errFileTooLarge = errors.New("file exceeds size limit")

// Create validates the upload, persists the file bytes, and registers
// the job under a fresh OTP. The blob write happens before the row
// insert; a failed insert removes the blob again.
func (s *JobService) Create(ctx context.Context, in CreateJobInput, content io.Reader) (*models.PrintJob, error) {
	if s == nil || s.store == nil || s.blobStore == nil {
		return nil, internalError(fmt.Errorf("job service is not configured"))
	}
	if content == nil {
		return nil, badRequestCode(fmt.Errorf("file is required"), ErrCodeMissingRequired)
	}

	filename := strings.TrimSpace(in.Filename)
	if filename == "" {
		return nil, badRequestCode(fmt.Errorf("filename is required"), ErrCodeMissingRequired)
	}

	mediaType, err := normalizeMediaType(in.MediaType)
	if err != nil {
		return nil, err
	}
	if !models.IsAllowedFileType(mediaType) {
		return nil, badRequestCode(fmt.Errorf("unsupported file type %s (allowed: %s)", mediaType, strings.Join(models.AllowedFileTypes(), ", ")), ErrCodeUnsupportedType)
	}

	limit, ok := s.limits.LimitFor(mediaType)
	if !ok {
		return nil, badRequestCode(fmt.Errorf("unsupported file type: %s", mediaType), ErrCodeUnsupportedType)
	}
	if in.SizeBytes > limit {
		return nil, payloadTooLarge(fmt.Errorf("file exceeds %d byte limit for %s", limit, mediaType))
	}

	code, err := otp.GenerateUnique(func(candidate string) (bool, error) {
		return s.store.JobExists(ctx, candidate)
	})
	if err != nil {
		return nil, makeAPIError(http.StatusInternalServerError, "internal", ErrCodeOTPExhausted, err)
	}

	now := s.now()
	blobName := blobNameFor(code, filename, now)

	// Cap the stream independently of the declared size so a lying
	// Content-Length cannot smuggle an oversized body into the store.
	limited := &limitedReader{r: content, remaining: limit}
	locator, err := s.blobStore.Put(ctx, blobName, limited, mediaType)
	if err != nil {
		if errors.Is(err, errFileTooLarge) {
			return nil, payloadTooLarge(fmt.Errorf("file exceeds %d byte limit for %s", limit, mediaType))
		}
		return nil, blobFailure(err)
	}
	if limited.read == 0 {
		_ = s.blobStore.Delete(ctx, locator)
		return nil, badRequestCode(fmt.Errorf("file is empty"), ErrCodeEmptyFile)
	}

	job := &models.PrintJob{
		OTP:          code,
		Filename:     filename,
		FileLocator:  locator,
		FileType:     mediaType,
		PrintOptions: in.PrintOptions,
		UploadTime:   now,
		Status:       string(models.StatusPending),
		ExpiresAt:    now.Add(s.ttl),
	}
	if err := s.store.InsertJob(ctx, job); err != nil {
		_ = s.blobStore.Delete(ctx, locator)
		return nil, storeFailure(err)
	}

	return job, nil
}

// Lookup returns one live job by OTP. An expired job is reaped lazily:
// its blob and row are removed, and the caller sees the same not-found
// error as for a code that was never issued.
func (s *JobService) Lookup(ctx context.Context, code string) (*models.PrintJob, error) {
	if s == nil || s.store == nil {
		return nil, internalError(fmt.Errorf("job service is not configured"))
	}

	code = otp.Normalize(code)
	if !otp.Valid(code) {
		return nil, badRequestCode(fmt.Errorf("invalid otp"), ErrCodeInvalidOTP)
	}

	job, err := s.store.GetJob(ctx, code)
	if err != nil {
		return nil, storeFailure(err)
	}
	if job == nil {
		return nil, notFound(fmt.Errorf("job not found or expired"))
	}
	if job.Expired(s.now()) {
		s.reapOne(ctx, job)
		return nil, notFound(fmt.Errorf("job not found or expired"))
	}

	return job, nil
}

// OpenContent opens the stored file stream for one live job. A job
// whose blob has gone missing is treated as broken: the row is removed
// and not-found is returned.
func (s *JobService) OpenContent(ctx context.Context, code string) (*JobContent, error) {
	job, err := s.Lookup(ctx, code)
	if err != nil {
		return nil, err
	}

	rc, err := s.blobStore.Open(ctx, job.FileLocator)
	if err != nil {
		_ = s.store.DeleteJob(ctx, job.OTP)
		return nil, notFound(fmt.Errorf("job file not found"))
	}

	return &JobContent{Reader: rc, MediaType: job.FileType, Filename: job.Filename}, nil
}

// Complete marks one live job as printed. Completing an already
// completed job succeeds without touching the original completion time.
func (s *JobService) Complete(ctx context.Context, code string) error {
	job, err := s.Lookup(ctx, code)
	if err != nil {
		return err
	}
	if job.Status == string(models.StatusCompleted) {
		return nil
	}

	completedAt := s.now()
	affected, err := s.store.UpdateJobStatus(ctx, job.OTP, models.StatusCompleted, &completedAt)
	if err != nil {
		return storeFailure(err)
	}
	if affected == 0 {
		// The row vanished between lookup and update; expiry wins.
		return makeAPIError(http.StatusInternalServerError, "internal", ErrCodeUpdateFailed, fmt.Errorf("job update affected no rows"))
	}
	return nil
}

// Sweep removes all jobs whose expiry lies before now. Blob deletes are
// best effort; a failed blob delete never blocks the row removal.
func (s *JobService) Sweep(ctx context.Context, dryRun bool) (SweepResult, error) {
	result := SweepResult{DryRun: dryRun}
	if s == nil || s.store == nil || s.blobStore == nil {
		return result, internalError(fmt.Errorf("job service is not configured"))
	}

	cutoff := s.now()
	expired, err := s.store.ListExpiredJobs(ctx, cutoff)
	if err != nil {
		return result, storeFailure(err)
	}
	if dryRun {
		result.ExpiredCount = len(expired)
		return result, nil
	}

	for _, job := range expired {
		if err := s.blobStore.Delete(ctx, job.FileLocator); err != nil {
			result.BlobDeleteErrors++
		}
	}
	removed, err := s.store.DeleteExpiredJobs(ctx, cutoff)
	if err != nil {
		return result, storeFailure(err)
	}
	result.ExpiredCount = int(removed)
	return result, nil
}

func (s *JobService) reapOne(ctx context.Context, job *models.PrintJob) {
	if job.FileLocator != "" {
		_ = s.blobStore.Delete(ctx, job.FileLocator)
	}
	_ = s.store.DeleteJob(ctx, job.OTP)
}

// blobNameFor builds the stored object name: OTP plus upload time in
// unix milliseconds, keeping the original file extension.
func blobNameFor(code, filename string, uploadTime time.Time) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" || !isSafeExtension(ext) {
		ext = fallbackBlobExtension
	}
	return fmt.Sprintf("%s_%d.%s", code, uploadTime.UnixMilli(), ext)
}

func isSafeExtension(ext string) bool {
	for _, r := range ext {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return len(ext) > 0 && len(ext) <= 10
}

func normalizeMediaType(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", badRequestCode(fmt.Errorf("file type is required"), ErrCodeMissingRequired)
	}
	parsed, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return "", badRequestCode(fmt.Errorf("invalid file type"), ErrCodeUnsupportedType)
	}
	return strings.ToLower(strings.TrimSpace(parsed)), nil
}

// limitedReader reads at most remaining bytes and fails instead of
// truncating when the source holds more.
type limitedReader struct {
	r         io.Reader
	remaining int64
	read      int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, errFileTooLarge
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.read += int64(n)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, errFileTooLarge
	}
	return n, err
}
