package resolve

import (
	"mime"
	"path/filepath"
	"strings"
)

// DefaultContentType is the terminal fallback when no resolution attempt
// yields a type.
const DefaultContentType = "application/octet-stream"

// extensionTypes covers the office, image, archive and text formats the
// platform stores, including types the OS mime database commonly lacks.
var extensionTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".odt":  "application/vnd.oasis.opendocument.text",
	".ods":  "application/vnd.oasis.opendocument.spreadsheet",
	".rtf":  "application/rtf",
	".txt":  "text/plain",
	".csv":  "text/csv",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".zip":  "application/zip",
	".rar":  "application/vnd.rar",
	".7z":   "application/x-7z-compressed",
	".gz":   "application/gzip",
}

// ContentType determines a MIME type for a file through an ordered fallback
// chain: explicit metadata type, filename extension lookup, the content
// type reported by the network response, then application/octet-stream.
// Never returns an empty string.
func ContentType(explicit, fileName, responseHeader string) string {
	if t := strings.TrimSpace(explicit); t != "" {
		return t
	}

	if ext := strings.ToLower(filepath.Ext(fileName)); ext != "" {
		if t, ok := extensionTypes[ext]; ok {
			return t
		}
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
	}

	if t := strings.TrimSpace(responseHeader); t != "" {
		return t
	}

	return DefaultContentType
}

// Previewable reports whether the UI can render the type inline as a
// data: URI. Everything else gets the download-instead affordance.
func Previewable(contentType string) bool {
	if strings.HasPrefix(contentType, "image/") {
		return true
	}
	return contentType == "application/pdf" || strings.HasPrefix(contentType, "application/pdf;")
}
