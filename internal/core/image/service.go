package image

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"fridge-recipes/internal/pkg/common"

	_ "golang.org/x/image/webp"
)

var supportedFormats = map[string]bool{
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

// Service decodes and validates uploaded images.
type Service struct {
	maxSizeBytes int64
}

// NewService creates an image service accepting images up to maxSizeBytes.
func NewService(maxSizeBytes int64) *Service {
	return &Service{maxSizeBytes: maxSizeBytes}
}

// Decode turns a base64 payload, optionally a data URI, into image bytes.
// Failures are *common.CustomError values with a 400 status.
func (s *Service) Decode(imageData string) ([]byte, error) {
	payload := strings.TrimSpace(imageData)
	if strings.HasPrefix(payload, "data:") {
		comma := strings.Index(payload, ",")
		if comma == -1 || !strings.HasPrefix(payload, "data:image/") || !strings.Contains(payload[:comma], ";base64") {
			return nil, common.ErrInvalidImageFormat.Wrap(fmt.Errorf("invalid data URI"))
		}
		payload = payload[comma+1:]
	}
	if payload == "" {
		return nil, common.ErrInvalidImageFormat.Wrap(fmt.Errorf("image data is empty"))
	}

	// reject oversized payloads before allocating the decoded buffer
	if int64(base64.StdEncoding.DecodedLen(len(payload))) > s.maxSizeBytes+2 {
		return nil, common.ErrInvalidImageSize.Wrap(fmt.Errorf("image size exceeds maximum limit of %d bytes", s.maxSizeBytes))
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, common.ErrInvalidImageFormat.Wrap(fmt.Errorf("failed to decode base64 data: %w", err))
	}
	if int64(len(data)) > s.maxSizeBytes {
		return nil, common.ErrInvalidImageSize.Wrap(fmt.Errorf("image size exceeds maximum limit of %d bytes", s.maxSizeBytes))
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, common.ErrInvalidImageType.Wrap(fmt.Errorf("failed to decode image: %w", err))
	}
	if !supportedFormats[format] {
		return nil, common.ErrInvalidImageType.Wrap(fmt.Errorf("unsupported image format: %s", format))
	}

	return data, nil
}
