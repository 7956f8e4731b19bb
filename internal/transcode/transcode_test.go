package transcode

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"traindocs/internal/core"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"text", []byte("hello world")},
		{"binary", []byte{0x00, 0xff, 0x10, 0x80, 0x7f}},
		{"pdf magic", []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := EncodeBase64(tt.data)
			if len(tt.data) == 0 && encoded != "" {
				t.Fatalf("expected empty string for empty input, got %q", encoded)
			}

			decoded, err := DecodeBase64(encoded)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(decoded, tt.data) {
				t.Errorf("round trip mismatch: got %v, want %v", decoded, tt.data)
			}
		})
	}
}

func TestDecodeBase64Invalid(t *testing.T) {
	_, err := DecodeBase64("not!!valid!!base64")
	if err == nil {
		t.Fatal("expected error for invalid base64")
	}

	var docErr *core.DocError
	if !errors.As(err, &docErr) {
		t.Fatalf("expected DocError, got %T", err)
	}
	if docErr.Kind != core.KindDecoding {
		t.Errorf("expected decoding kind, got %v", docErr.Kind)
	}
	if docErr.Message != "failed to process file data" {
		t.Errorf("unexpected message: %q", docErr.Message)
	}
}

func TestDecodeToBlob(t *testing.T) {
	blob, err := DecodeToBlob(EncodeBase64([]byte("content")), "text/plain")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(blob.Data) != "content" {
		t.Errorf("unexpected data: %q", blob.Data)
	}
	if blob.ContentType != "text/plain" {
		t.Errorf("unexpected content type: %q", blob.ContentType)
	}
}

func TestDataURI(t *testing.T) {
	uri := DataURI("AAAA", "image/png")
	if uri != "data:image/png;base64,AAAA" {
		t.Errorf("unexpected data URI: %q", uri)
	}
}

func TestSaveTo(t *testing.T) {
	t.Run("writes atomically", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "nested", "cert.pdf")

		blob := &Blob{Data: []byte("pdf bytes"), ContentType: "application/pdf"}
		if err := SaveTo(blob, path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("download file missing: %v", err)
		}
		if string(data) != "pdf bytes" {
			t.Errorf("unexpected content: %q", data)
		}

		// No temp file left behind
		if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
			t.Error("temp file was not cleaned up")
		}
	})

	t.Run("nil blob", func(t *testing.T) {
		if err := SaveTo(nil, filepath.Join(t.TempDir(), "x")); err == nil {
			t.Fatal("expected error for nil blob")
		}
	})
}
