package resolve

import (
	"testing"

	"github.com/stretchr/testify/require"

	"traindocs/internal/core"
)

func TestIdentifier(t *testing.T) {
	tests := []struct {
		name       string
		descriptor core.FileDescriptor
		expected   string
		ok         bool
	}{
		{
			name:       "direct id",
			descriptor: core.FileDescriptor{ID: "file-123"},
			expected:   "file-123",
			ok:         true,
		},
		{
			name:       "fileId field",
			descriptor: core.FileDescriptor{FileID: "file-456"},
			expected:   "file-456",
			ok:         true,
		},
		{
			name:       "id wins over fileId",
			descriptor: core.FileDescriptor{ID: "a", FileID: "b"},
			expected:   "a",
			ok:         true,
		},
		{
			name:       "plain fileName string",
			descriptor: core.FileDescriptor{FileName: "report.pdf"},
			expected:   "report.pdf",
			ok:         true,
		},
		{
			name:       "fileName list with disposition pattern",
			descriptor: core.FileDescriptor{FileNames: []string{`attachment; filename="cert.pdf"`}},
			expected:   "cert.pdf",
			ok:         true,
		},
		{
			name:       "fileName list verbatim element",
			descriptor: core.FileDescriptor{FileNames: []string{"invoice.xlsx", "ignored"}},
			expected:   "invoice.xlsx",
			ok:         true,
		},
		{
			name: "headers-only disposition",
			descriptor: core.FileDescriptor{
				Headers: map[string][]string{
					"Content-Disposition": {`attachment; filename="diploma.png"`},
				},
			},
			expected: "diploma.png",
			ok:       true,
		},
		{
			name: "case-insensitive header lookup",
			descriptor: core.FileDescriptor{
				Headers: map[string][]string{
					"content-disposition": {`filename="a.txt"`},
				},
			},
			expected: "a.txt",
			ok:       true,
		},
		{
			name:       "nothing resolvable",
			descriptor: core.FileDescriptor{},
			expected:   "",
			ok:         false,
		},
		{
			name: "disposition without filename parameter",
			descriptor: core.FileDescriptor{
				Headers: map[string][]string{"Content-Disposition": {"inline"}},
			},
			expected: "",
			ok:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Identifier(&tt.descriptor)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestIdentifierNilDescriptor(t *testing.T) {
	got, ok := Identifier(nil)
	require.False(t, ok)
	require.Empty(t, got)
}

func TestParseDescriptor(t *testing.T) {
	t.Run("string fileName and wrapped headers", func(t *testing.T) {
		raw := []byte(`{
			"fileId": "f1",
			"fileName": "cert.pdf",
			"headers": {
				"Content-Type": ["application/pdf"],
				"Content-Length": "2048"
			}
		}`)
		d := ParseDescriptor(raw)
		require.Equal(t, "f1", d.FileID)
		require.Equal(t, "cert.pdf", d.FileName)
		require.Empty(t, d.FileNames)
		require.Equal(t, "application/pdf", d.ContentType)
		require.Equal(t, int64(2048), d.Size)
	})

	t.Run("array fileName and embedded body", func(t *testing.T) {
		raw := []byte(`{"fileName": ["filename=\"a.docx\""], "body": "AAAA"}`)
		d := ParseDescriptor(raw)
		require.Equal(t, []string{`filename="a.docx"`}, d.FileNames)
		require.Equal(t, "AAAA", d.Body)

		id, ok := Identifier(&d)
		require.True(t, ok)
		require.Equal(t, "a.docx", id)
	})

	t.Run("negative size clamps to zero", func(t *testing.T) {
		d := ParseDescriptor([]byte(`{"id": "x", "size": -5}`))
		require.Equal(t, int64(0), d.Size)
	})

	t.Run("timestamps parsed when present", func(t *testing.T) {
		d := ParseDescriptor([]byte(`{"id": "x", "createdAt": "2024-03-01T10:00:00Z"}`))
		require.False(t, d.CreatedAt.IsZero())
		require.True(t, d.UpdatedAt.IsZero())
	})
}

func TestParseDescriptorList(t *testing.T) {
	t.Run("bare array", func(t *testing.T) {
		list := ParseDescriptorList([]byte(`[{"id": "a"}, {"id": "b"}]`))
		require.Len(t, list, 2)
		require.Equal(t, "b", list[1].ID)
	})

	t.Run("wrapped in files field", func(t *testing.T) {
		list := ParseDescriptorList([]byte(`{"files": [{"id": "a"}]}`))
		require.Len(t, list, 1)
	})

	t.Run("bare object normalized to one element", func(t *testing.T) {
		list := ParseDescriptorList([]byte(`{"id": "solo"}`))
		require.Len(t, list, 1)
		require.Equal(t, "solo", list[0].ID)
	})
}
