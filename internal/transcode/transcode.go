// Package transcode converts file content between raw bytes and base64
// text, and materializes decoded content for download.
package transcode

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"traindocs/internal/core"
)

// Blob is decoded binary content paired with its content type.
type Blob struct {
	Data        []byte
	ContentType string
}

// EncodeBase64 encodes arbitrary bytes to standard base64. Zero-length
// input yields an empty string.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeBase64 is the byte-for-byte inverse of EncodeBase64. Invalid input
// yields a decoding error from the gateway taxonomy, never a panic.
func DecodeBase64(encoded string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, core.NewDecodingError("failed to process file data", err)
	}
	return data, nil
}

// DecodeToBlob decodes base64 content into a Blob carrying the given
// content type.
func DecodeToBlob(encoded, contentType string) (*Blob, error) {
	data, err := DecodeBase64(encoded)
	if err != nil {
		return nil, err
	}
	return &Blob{Data: data, ContentType: contentType}, nil
}

// DataURI renders already-encoded content as a data: URI for inline
// preview.
func DataURI(encoded, contentType string) string {
	return fmt.Sprintf("data:%s;base64,%s", contentType, encoded)
}

// SaveTo writes a blob to the given path atomically: the content goes to a
// temp file in the destination directory first and is renamed into place.
// The temp file is removed on every failure path.
func SaveTo(blob *Blob, path string) error {
	if blob == nil {
		return fmt.Errorf("blob is required")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, blob.Data, 0o644); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to write download file: %w", err)
	}
	if err := os.Rename(tmpFile, path); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to finalize download file: %w", err)
	}

	return nil
}
