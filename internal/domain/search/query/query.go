// Package query validates raw search input.
package query

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/kailas-cloud/furnsearch/internal/domain"
)

// DefaultMaxImageBytes is the upload limit when none is configured.
const DefaultMaxImageBytes = 5 << 20

var (
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
)

// ImageFormat is a supported upload format.
type ImageFormat string

// Supported formats.
const (
	JPEG ImageFormat = "jpeg"
	PNG  ImageFormat = "png"
)

// ValidateText trims the query and rejects blank input.
func ValidateText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", domain.ErrEmptyQuery
	}
	return trimmed, nil
}

// ValidateImage checks magic bytes and size. maxBytes <= 0 selects the default limit.
func ValidateImage(data []byte, maxBytes int) (ImageFormat, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	switch {
	case len(data) == 0:
		return "", fmt.Errorf("%w: empty payload", domain.ErrInvalidImage)
	case len(data) > maxBytes:
		return "", fmt.Errorf("%w: %d bytes exceeds limit of %d", domain.ErrInvalidImage, len(data), maxBytes)
	case bytes.HasPrefix(data, jpegMagic):
		return JPEG, nil
	case bytes.HasPrefix(data, pngMagic):
		return PNG, nil
	default:
		return "", fmt.Errorf("%w: unsupported format", domain.ErrInvalidImage)
	}
}

// DecodeBase64Image decodes a base64 payload, tolerating a data-URI prefix.
func DecodeBase64Image(encoded string) ([]byte, error) {
	s := strings.TrimSpace(encoded)
	if i := strings.Index(s, ";base64,"); i >= 0 && strings.HasPrefix(s, "data:") {
		s = s[i+len(";base64,"):]
	}
	if s == "" {
		return nil, fmt.Errorf("%w: empty payload", domain.ErrInvalidImage)
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidImage, err)
	}
	return data, nil
}

// MIMEType returns the media type for a format.
func (f ImageFormat) MIMEType() string {
	if f == PNG {
		return "image/png"
	}
	return "image/jpeg"
}
