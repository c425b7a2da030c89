package intake

import (
	"fmt"
	"mime"
	"net/url"
	"strings"

	"github.com/bryanwahyu/safeweb/internal/domain/analysis"
)

// Intake checks run before any request reaches the analysis gateway. Every
// rejection wraps analysis.ErrInvalidInput.

// allowedMediaTypes lists what may be uploaded for a file check.
var allowedMediaTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"text/plain": true,
	"text/html":  true,
}

// DefaultMaxUploadBytes bounds file submissions when no limit is configured.
const DefaultMaxUploadBytes int64 = 10 << 20

var (
	ErrUnsupportedMediaType = fmt.Errorf("%w: unsupported file type", analysis.ErrInvalidInput)
	ErrFileTooLarge         = fmt.Errorf("%w: file too large", analysis.ErrInvalidInput)
)

// NormalizeURL prefixes https:// when the input has no http(s) scheme and
// validates the result as an absolute URL with a host.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: URL cannot be empty", analysis.ErrInvalidInput)
	}

	normalized := raw
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		normalized = "https://" + raw
	}

	u, err := url.Parse(normalized)
	if err != nil {
		return "", fmt.Errorf("%w: invalid URL format: %v", analysis.ErrInvalidInput, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: invalid URL scheme: %s", analysis.ErrInvalidInput, u.Scheme)
	}
	host := u.Hostname()
	if host == "" || strings.ContainsAny(host, " \t\r\n") {
		return "", fmt.Errorf("%w: URL has no valid host", analysis.ErrInvalidInput)
	}

	return normalized, nil
}

// ValidateMediaType accepts images (jpeg, png, webp) and plain text or HTML.
// Parameters such as charset are ignored. The bare media type is returned.
func ValidateMediaType(mediaType string) (string, error) {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return "", fmt.Errorf("%w %q", ErrUnsupportedMediaType, mediaType)
	}
	mt = strings.ToLower(mt)
	if !allowedMediaTypes[mt] {
		return "", fmt.Errorf("%w %q (allowed: jpeg, png, webp, txt, html)", ErrUnsupportedMediaType, mt)
	}
	return mt, nil
}

// IsImageMediaType reports whether an accepted media type is sent as an attachment.
func IsImageMediaType(mediaType string) bool {
	return strings.HasPrefix(mediaType, "image/")
}

// ValidateText rejects empty or whitespace-only submissions.
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: text cannot be empty", analysis.ErrInvalidInput)
	}
	return nil
}

// ValidateFileSize rejects empty files and files above max bytes.
func ValidateFileSize(size, max int64) error {
	if max <= 0 {
		max = DefaultMaxUploadBytes
	}
	if size <= 0 {
		return fmt.Errorf("%w: file is empty", analysis.ErrInvalidInput)
	}
	if size > max {
		return fmt.Errorf("%w: exceeds %d bytes", ErrFileTooLarge, max)
	}
	return nil
}

// SanitizeString removes control characters from display strings such as file names
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}
