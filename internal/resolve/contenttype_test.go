package resolve

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContentType(t *testing.T) {
	tests := []struct {
		name           string
		explicit       string
		fileName       string
		responseHeader string
		expected       string
	}{
		{
			name:     "explicit type wins over extension",
			explicit: "application/pdf",
			fileName: "file.txt",
			expected: "application/pdf",
		},
		{
			name:     "extension lookup office format",
			fileName: "report.docx",
			expected: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		},
		{
			name:     "extension lookup is case-insensitive",
			fileName: "SCAN.PDF",
			expected: "application/pdf",
		},
		{
			name:           "response header when extension unknown",
			fileName:       "archive.unknownext",
			responseHeader: "application/x-custom",
			expected:       "application/x-custom",
		},
		{
			name:     "default when nothing resolves",
			fileName: "noextension",
			expected: DefaultContentType,
		},
		{
			name:     "empty everything",
			expected: DefaultContentType,
		},
		{
			name:     "whitespace explicit is ignored",
			explicit: "   ",
			fileName: "img.png",
			expected: "image/png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ContentType(tt.explicit, tt.fileName, tt.responseHeader)
			require.Equal(t, tt.expected, got)
			require.NotEmpty(t, got)
		})
	}
}

func TestPreviewable(t *testing.T) {
	require.True(t, Previewable("image/png"))
	require.True(t, Previewable("application/pdf"))
	require.True(t, Previewable("application/pdf; charset=binary"))
	require.False(t, Previewable("application/zip"))
	require.False(t, Previewable("text/plain"))
}
