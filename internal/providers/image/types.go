package image

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

// SourceImage describes the user-provided photo to be transformed. Immutable
// once created; replaced wholesale when the user selects a new file.
type SourceImage struct {
	Data     []byte
	MIME     string
	Filename string
}

// DataURI encodes the source bytes as a base64 data URI.
func (s SourceImage) DataURI() string {
	return EncodeDataURI(s.Data, s.MIME)
}

// GenerateRequest describes a normalized request passed to an image provider.
type GenerateRequest struct {
	Prompt    string
	Source    SourceImage
	RequestID string
	Locale    string
}

// Result represents the image returned by the model for one request.
type Result struct {
	Data []byte
	MIME string
}

// DataURI encodes the generated bytes as a base64 data URI.
func (r Result) DataURI() string {
	return EncodeDataURI(r.Data, r.MIME)
}

// Generator is the contract implemented by all image providers.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*Result, error)
}

// EncodeDataURI renders bytes as a data URI with the given mime type.
func EncodeDataURI(data []byte, mime string) string {
	if len(data) == 0 {
		return ""
	}
	if mime == "" {
		mime = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
}

// DecodeDataURI splits a data URI into raw bytes and a mime type. Plain
// base64 input without a prefix is accepted and assumed to be a PNG.
func DecodeDataURI(uri string) ([]byte, string, error) {
	uri = strings.TrimSpace(uri)
	mime := "image/png"
	payload := uri
	if strings.HasPrefix(uri, "data:") {
		idx := strings.Index(uri, ",")
		if idx < 0 {
			return nil, "", fmt.Errorf("image: malformed data uri")
		}
		header := uri[len("data:"):idx]
		payload = uri[idx+1:]
		if m := strings.TrimSuffix(header, ";base64"); m != "" {
			mime = m
		}
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("image: decode base64: %w", err)
	}
	return data, mime, nil
}
