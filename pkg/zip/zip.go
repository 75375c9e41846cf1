package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// Asset is one file in a session export.
type Asset struct {
	Filename string
	MIME     string
	Data     []byte
}

// ArchiveSession bundles the session's assets plus a prompt.txt manifest into
// a single zip. Empty assets are skipped.
func ArchiveSession(prompt string, assets []Asset) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)

	if prompt != "" {
		w, err := zw.Create("prompt.txt")
		if err != nil {
			return nil, fmt.Errorf("zip: create prompt entry: %w", err)
		}
		if _, err := w.Write([]byte(prompt)); err != nil {
			return nil, fmt.Errorf("zip: write prompt entry: %w", err)
		}
	}

	for _, asset := range assets {
		if len(asset.Data) == 0 {
			continue
		}
		w, err := zw.Create(asset.Filename)
		if err != nil {
			return nil, fmt.Errorf("zip: create %s: %w", asset.Filename, err)
		}
		if _, err := w.Write(asset.Data); err != nil {
			return nil, fmt.Errorf("zip: write %s: %w", asset.Filename, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: close archive: %w", err)
	}
	return buf.Bytes(), nil
}
