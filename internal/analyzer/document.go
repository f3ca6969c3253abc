// Package analyzer defines the external collaborator contracts the
// verification pipeline depends on: document field extraction, image
// sharpness measurement, liveness detection, and face comparison.
//
// The static implementations in this package are placeholders for real model
// integrations. They are wired in main and swappable without touching the
// orchestration logic.
package analyzer

import (
	"bytes"
	"context"
	"errors"
)

// ErrUndecodableImage is returned when the input bytes are not a supported
// image. The orchestrator surfaces it as a retryable collaborator failure.
var ErrUndecodableImage = errors.New("could not decode image")

// DocumentAnalyzer extracts structured identity fields from a document image
// and measures image sharpness for tampering detection.
type DocumentAnalyzer interface {
	// Extract returns the identity fields read from the document plus an
	// extraction confidence in [0,1]. Dates are ISO YYYY-MM-DD strings.
	Extract(ctx context.Context, image []byte, documentType string) (fields map[string]string, confidence float64, err error)

	// MeasureSharpness returns a non-negative sharpness measure for the
	// image. Low values indicate a blurry capture (possible copy or fake).
	MeasureSharpness(image []byte) (float64, error)
}

// StaticDocumentAnalyzer is the placeholder document analyzer. Field values
// are fixed; sharpness is derived from byte-level contrast as a stand-in for
// Laplacian variance.
type StaticDocumentAnalyzer struct{}

func NewStaticDocumentAnalyzer() *StaticDocumentAnalyzer {
	return &StaticDocumentAnalyzer{}
}

func (a *StaticDocumentAnalyzer) Extract(_ context.Context, image []byte, documentType string) (map[string]string, float64, error) {
	if !decodable(image) {
		return nil, 0, ErrUndecodableImage
	}
	fields := map[string]string{
		"name":          "John Doe",
		"dob":           "1990-01-15",
		"document_id":   "AB1234567",
		"country":       "DE",
		"expiry":        "2030-12-31",
		"document_type": documentType,
	}
	return fields, 0.95, nil
}

func (a *StaticDocumentAnalyzer) MeasureSharpness(image []byte) (float64, error) {
	if !decodable(image) {
		return 0, ErrUndecodableImage
	}
	// Mean squared difference of adjacent bytes approximates high-frequency
	// content well enough for the placeholder.
	var sum float64
	for i := 1; i < len(image); i++ {
		d := float64(image[i]) - float64(image[i-1])
		sum += d * d
	}
	return sum / float64(len(image)-1), nil
}

var (
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47}
)

// decodable is a cheap stand-in for full image decoding: the payload must be
// long enough to carry pixels and start with a JPEG or PNG signature.
func decodable(image []byte) bool {
	if len(image) < 8 {
		return false
	}
	return bytes.HasPrefix(image, jpegMagic) || bytes.HasPrefix(image, pngMagic)
}
