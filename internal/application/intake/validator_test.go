package intake

import (
	"errors"
	"testing"

	"github.com/bryanwahyu/safeweb/internal/domain/analysis"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example.com", "https://example.com"},
		{"  example.com/path?q=1  ", "https://example.com/path?q=1"},
		{"http://example.com", "http://example.com"},
		{"HTTPS://Example.com", "HTTPS://Example.com"},
		{"sub.domain.co.uk:8443/x", "https://sub.domain.co.uk:8443/x"},
	}
	for _, tt := range tests {
		got, err := NormalizeURL(tt.in)
		if err != nil {
			t.Errorf("NormalizeURL(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeURL_Rejects(t *testing.T) {
	for _, in := range []string{"", "   ", "https://", "ht tp://bad", "https://exa mple.com", "http://[::1"} {
		if _, err := NormalizeURL(in); !errors.Is(err, analysis.ErrInvalidInput) {
			t.Errorf("NormalizeURL(%q): expected ErrInvalidInput, got %v", in, err)
		}
	}
}

func TestValidateMediaType(t *testing.T) {
	accepted := map[string]string{
		"image/jpeg":                "image/jpeg",
		"image/png":                 "image/png",
		"image/webp":                "image/webp",
		"text/plain; charset=utf-8": "text/plain",
		"TEXT/HTML":                 "text/html",
	}
	for in, want := range accepted {
		got, err := ValidateMediaType(in)
		if err != nil || got != want {
			t.Errorf("ValidateMediaType(%q) = %q, %v; want %q", in, got, err, want)
		}
	}

	for _, in := range []string{"application/pdf", "image/gif", "", "application/octet-stream"} {
		_, err := ValidateMediaType(in)
		if !errors.Is(err, ErrUnsupportedMediaType) || !errors.Is(err, analysis.ErrInvalidInput) {
			t.Errorf("ValidateMediaType(%q): expected unsupported type, got %v", in, err)
		}
	}
}

func TestIsImageMediaType(t *testing.T) {
	if !IsImageMediaType("image/png") || IsImageMediaType("text/html") {
		t.Error("IsImageMediaType misclassifies")
	}
}

func TestValidateText(t *testing.T) {
	if err := ValidateText(" \n\t"); !errors.Is(err, analysis.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
	if err := ValidateText("hello"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestValidateFileSize(t *testing.T) {
	if err := ValidateFileSize(0, 10); !errors.Is(err, analysis.ErrInvalidInput) {
		t.Errorf("Expected empty file to be rejected, got %v", err)
	}
	if err := ValidateFileSize(11, 10); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("Expected ErrFileTooLarge, got %v", err)
	}
	if err := ValidateFileSize(10, 10); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if err := ValidateFileSize(DefaultMaxUploadBytes+1, 0); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("Expected default limit to apply, got %v", err)
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString(" scr\x00een\x07shot.png\n"); got != "screenshot.png" {
		t.Errorf("Unexpected sanitized value %q", got)
	}
}
