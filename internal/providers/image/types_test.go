package image

import (
	"strings"
	"testing"
)

func TestEncodeDataURI(t *testing.T) {
	uri := EncodeDataURI([]byte("AAAA"), "image/png")
	if uri != "data:image/png;base64,QUFBQQ==" {
		t.Fatalf("EncodeDataURI = %q", uri)
	}
	if EncodeDataURI(nil, "image/png") != "" {
		t.Fatalf("empty data should encode to empty string")
	}
	if !strings.HasPrefix(EncodeDataURI([]byte("x"), ""), "data:image/png;base64,") {
		t.Fatalf("mime should default to image/png")
	}
}

func TestDecodeDataURI(t *testing.T) {
	data, mime, err := DecodeDataURI("data:image/jpeg;base64,QUFBQQ==")
	if err != nil {
		t.Fatalf("DecodeDataURI: %v", err)
	}
	if string(data) != "AAAA" || mime != "image/jpeg" {
		t.Fatalf("got %q %q", data, mime)
	}
}

func TestDecodeDataURIPlainBase64(t *testing.T) {
	data, mime, err := DecodeDataURI("QUFBQQ==")
	if err != nil {
		t.Fatalf("DecodeDataURI: %v", err)
	}
	if string(data) != "AAAA" || mime != "image/png" {
		t.Fatalf("got %q %q", data, mime)
	}
}

func TestDecodeDataURIMalformed(t *testing.T) {
	if _, _, err := DecodeDataURI("data:image/png;base64"); err == nil {
		t.Fatalf("expected error for missing comma")
	}
	if _, _, err := DecodeDataURI("not base64 at all!"); err == nil {
		t.Fatalf("expected error for invalid base64")
	}
}
