package models

import (
	"sort"
	"testing"
	"time"
)

func TestIsAllowedFileType(t *testing.T) {
	allowed := []string{
		MediaTypePDF,
		MediaTypeDOCX,
		"image/jpeg",
		"IMAGE/PNG",
		" image/webp ",
	}
	for _, mediaType := range allowed {
		if !IsAllowedFileType(mediaType) {
			t.Fatalf("expected %q to be allowed", mediaType)
		}
	}

	denied := []string{"", "text/plain", "application/zip", "video/mp4"}
	for _, mediaType := range denied {
		if IsAllowedFileType(mediaType) {
			t.Fatalf("expected %q to be denied", mediaType)
		}
	}
}

func TestLimitFor(t *testing.T) {
	limits := DefaultSizeLimits()

	pdf, ok := limits.LimitFor(MediaTypePDF)
	if !ok || pdf != DefaultPDFMaxBytes {
		t.Fatalf("unexpected pdf limit %d ok=%v", pdf, ok)
	}
	docx, ok := limits.LimitFor(MediaTypeDOCX)
	if !ok || docx != DefaultDOCXMaxBytes {
		t.Fatalf("unexpected docx limit %d ok=%v", docx, ok)
	}
	img, ok := limits.LimitFor("image/png")
	if !ok || img != DefaultImageMaxBytes {
		t.Fatalf("unexpected image limit %d ok=%v", img, ok)
	}
	if pdf <= docx || pdf <= img {
		t.Fatal("pdf limit must be the largest")
	}

	if _, ok := limits.LimitFor("text/plain"); ok {
		t.Fatal("expected no limit for denied type")
	}
}

func TestIsImageType(t *testing.T) {
	if !IsImageType("image/png") || !IsImageType(" IMAGE/JPEG ") {
		t.Fatal("expected image types to be recognized")
	}
	if IsImageType(MediaTypePDF) || IsImageType("") {
		t.Fatal("expected non-images to be rejected")
	}
}

func TestAllowedFileTypesSorted(t *testing.T) {
	types := AllowedFileTypes()
	if len(types) != 9 {
		t.Fatalf("expected 9 allowed types, got %d", len(types))
	}
	if !sort.StringsAreSorted(types) {
		t.Fatalf("expected sorted list, got %v", types)
	}
	for _, mediaType := range types {
		if !IsAllowedFileType(mediaType) {
			t.Fatalf("listed type %q not allowed", mediaType)
		}
	}
}

func TestJobExpired(t *testing.T) {
	now := time.Now().UTC()

	job := PrintJob{ExpiresAt: now.Add(time.Hour)}
	if job.Expired(now) {
		t.Fatal("future expiry must not read as expired")
	}

	job.ExpiresAt = now.Add(-time.Second)
	if !job.Expired(now) {
		t.Fatal("past expiry must read as expired")
	}

	job.ExpiresAt = now
	if !job.Expired(now) {
		t.Fatal("boundary counts as expired")
	}

	var zero PrintJob
	if !zero.Expired(now) {
		t.Fatal("zero expiry treated as expired")
	}
}
