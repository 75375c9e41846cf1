package studio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/pualine/Ellah-art-studio/internal/providers/image"
)

// ExampleFetcher loads the fixed example image that stands in for a user
// upload.
type ExampleFetcher interface {
	Fetch(ctx context.Context) (image.SourceImage, error)
}

// HTTPExampleFetcher downloads the example image from a fixed URL.
type HTTPExampleFetcher struct {
	URL      string
	Client   *http.Client
	MaxBytes int64
}

func NewHTTPExampleFetcher(rawURL string, maxBytes int64) *HTTPExampleFetcher {
	return &HTTPExampleFetcher{
		URL:      rawURL,
		Client:   &http.Client{Timeout: 30 * time.Second},
		MaxBytes: maxBytes,
	}
}

func (f *HTTPExampleFetcher) Fetch(ctx context.Context) (image.SourceImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return image.SourceImage{}, fmt.Errorf("example: create request: %w", err)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return image.SourceImage{}, fmt.Errorf("example: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return image.SourceImage{}, fmt.Errorf("example: fetch status %d", resp.StatusCode)
	}

	reader := io.Reader(resp.Body)
	if f.MaxBytes > 0 {
		reader = io.LimitReader(resp.Body, f.MaxBytes)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return image.SourceImage{}, fmt.Errorf("example: read body: %w", err)
	}
	if len(data) == 0 {
		return image.SourceImage{}, fmt.Errorf("example: empty response")
	}

	mime := resp.Header.Get("Content-Type")
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/jpeg"
	}

	return image.SourceImage{
		Data:     data,
		MIME:     mime,
		Filename: exampleFilename(f.URL),
	}, nil
}

func exampleFilename(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return "example.jpg"
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "example.jpg"
	}
	return name
}

var _ ExampleFetcher = (*HTTPExampleFetcher)(nil)
