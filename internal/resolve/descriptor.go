// Package resolve normalizes the heterogeneous file metadata shapes
// returned by the platform API: it parses raw descriptors, resolves a
// canonical file identifier, and determines a usable content type.
package resolve

import (
	"time"

	"github.com/tidwall/gjson"

	"traindocs/internal/core"
)

// ParseDescriptor decodes a raw descriptor JSON object into a
// core.FileDescriptor, tolerating the shape differences between endpoints:
// string-or-array name fields, header values wrapped in single-element
// arrays, and optional embedded base64 bodies.
func ParseDescriptor(raw []byte) core.FileDescriptor {
	return parseDescriptorResult(gjson.ParseBytes(raw))
}

// ParseDescriptorList decodes a JSON array of descriptors. Endpoints that
// return a bare object instead of a list are normalized to a one-element
// slice.
func ParseDescriptorList(raw []byte) []core.FileDescriptor {
	root := gjson.ParseBytes(raw)
	// Some endpoints wrap the list in a "files" or "data" field.
	for _, field := range []string{"files", "data", "items"} {
		if inner := root.Get(field); inner.Exists() {
			root = inner
			break
		}
	}

	if !root.IsArray() {
		if root.IsObject() {
			return []core.FileDescriptor{parseDescriptorResult(root)}
		}
		return nil
	}

	var out []core.FileDescriptor
	root.ForEach(func(_, value gjson.Result) bool {
		out = append(out, parseDescriptorResult(value))
		return true
	})
	return out
}

func parseDescriptorResult(obj gjson.Result) core.FileDescriptor {
	d := core.FileDescriptor{
		ID:          obj.Get("id").String(),
		FileID:      obj.Get("fileId").String(),
		Body:        obj.Get("body").String(),
		ContentType: obj.Get("contentType").String(),
	}

	if name := obj.Get("fileName"); name.Exists() {
		if name.IsArray() {
			name.ForEach(func(_, v gjson.Result) bool {
				d.FileNames = append(d.FileNames, v.String())
				return true
			})
		} else {
			d.FileName = name.String()
		}
	}

	if headers := obj.Get("headers"); headers.IsObject() {
		d.Headers = make(map[string][]string)
		headers.ForEach(func(key, value gjson.Result) bool {
			if value.IsArray() {
				var vals []string
				value.ForEach(func(_, v gjson.Result) bool {
					vals = append(vals, v.String())
					return true
				})
				d.Headers[key.String()] = vals
			} else {
				d.Headers[key.String()] = []string{value.String()}
			}
			return true
		})
	}

	if size := obj.Get("size"); size.Exists() {
		d.Size = size.Int()
	} else if cl := d.Header("Content-Length"); cl != "" {
		d.Size = gjson.Parse(cl).Int()
	}
	if d.Size < 0 {
		d.Size = 0
	}

	d.CreatedAt = parseTime(obj.Get("createdAt"))
	d.UpdatedAt = parseTime(obj.Get("updatedAt"))

	if d.ContentType == "" {
		d.ContentType = d.Header("Content-Type")
	}

	return d
}

func parseTime(v gjson.Result) time.Time {
	if !v.Exists() {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, v.String()); err == nil {
		return t
	}
	return time.Time{}
}
