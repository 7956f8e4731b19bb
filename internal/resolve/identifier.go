package resolve

import (
	"regexp"

	"traindocs/internal/core"
)

// dispositionPattern extracts the quoted filename parameter from a
// Content-Disposition header value.
var dispositionPattern = regexp.MustCompile(`filename="([^"]+)"`)

// Identifier extracts a canonical file identifier from a descriptor.
// Attempts are ordered; the first success wins:
//
//  1. a direct id or fileId field
//  2. the fileName field — for the fragment-list form the first element is
//     used, unwrapping a filename="..." disposition pattern if present; the
//     plain-string form is used verbatim
//  3. a filename="..." parameter inside a Content-Disposition header
//
// Returns "" and false when no attempt succeeds. Pure function, no side
// effects.
func Identifier(d *core.FileDescriptor) (string, bool) {
	if d == nil {
		return "", false
	}

	if d.ID != "" {
		return d.ID, true
	}
	if d.FileID != "" {
		return d.FileID, true
	}

	if len(d.FileNames) > 0 && d.FileNames[0] != "" {
		first := d.FileNames[0]
		if m := dispositionPattern.FindStringSubmatch(first); m != nil {
			return m[1], true
		}
		return first, true
	}
	if d.FileName != "" {
		return d.FileName, true
	}

	if cd := d.Header("Content-Disposition"); cd != "" {
		if m := dispositionPattern.FindStringSubmatch(cd); m != nil {
			return m[1], true
		}
	}

	return "", false
}
