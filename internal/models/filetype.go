package models

import (
	"sort"
	"strings"
)

const (
	MediaTypePDF  = "application/pdf"
	MediaTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Per-type upload ceilings. PDFs tend to be scanned multi-page documents,
// so they get the largest limit.
const (
	DefaultPDFMaxBytes   int64 = 20 << 20
	DefaultDOCXMaxBytes  int64 = 10 << 20
	DefaultImageMaxBytes int64 = 15 << 20
)

var allowedFileTypes = map[string]struct{}{
	MediaTypePDF:  {},
	MediaTypeDOCX: {},
	"image/jpeg":  {},
	"image/jpg":   {},
	"image/png":   {},
	"image/gif":   {},
	"image/bmp":   {},
	"image/tiff":  {},
	"image/webp":  {},
}

// SizeLimits carries the per-type upload ceilings in bytes.
type SizeLimits struct {
	PDFMaxBytes   int64
	DOCXMaxBytes  int64
	ImageMaxBytes int64
}

// DefaultSizeLimits returns the built-in upload ceilings.
func DefaultSizeLimits() SizeLimits {
	return SizeLimits{
		PDFMaxBytes:   DefaultPDFMaxBytes,
		DOCXMaxBytes:  DefaultDOCXMaxBytes,
		ImageMaxBytes: DefaultImageMaxBytes,
	}
}

// LimitFor returns the byte ceiling for a media type. The second return
// is false when the type is not printable here at all.
func (l SizeLimits) LimitFor(mediaType string) (int64, bool) {
	mediaType = normalizeFileType(mediaType)
	if !IsAllowedFileType(mediaType) {
		return 0, false
	}
	switch {
	case mediaType == MediaTypePDF:
		return l.PDFMaxBytes, true
	case mediaType == MediaTypeDOCX:
		return l.DOCXMaxBytes, true
	case IsImageType(mediaType):
		return l.ImageMaxBytes, true
	default:
		return 0, false
	}
}

// Max returns the largest configured ceiling across all types.
func (l SizeLimits) Max() int64 {
	max := l.PDFMaxBytes
	if l.DOCXMaxBytes > max {
		max = l.DOCXMaxBytes
	}
	if l.ImageMaxBytes > max {
		max = l.ImageMaxBytes
	}
	return max
}

// IsAllowedFileType reports whether the media type is printable here.
func IsAllowedFileType(mediaType string) bool {
	_, ok := allowedFileTypes[normalizeFileType(mediaType)]
	return ok
}

// IsImageType reports whether the media type is a raster image.
func IsImageType(mediaType string) bool {
	return strings.HasPrefix(normalizeFileType(mediaType), "image/")
}

// AllowedFileTypes returns the allow-list, sorted for stable output.
func AllowedFileTypes() []string {
	out := make([]string, 0, len(allowedFileTypes))
	for mediaType := range allowedFileTypes {
		out = append(out, mediaType)
	}
	sort.Strings(out)
	return out
}

func normalizeFileType(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
