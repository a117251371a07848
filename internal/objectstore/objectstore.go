package objectstore

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/oklog/ulid/v2"
)

// Metadata describes an object being stored.
type Metadata struct {
	Folder      string
	Filename    string
	ContentType string
}

// Object is where a stored object ended up. ObjectID is all Delete needs.
type Object struct {
	URL      string `json:"url"`
	ObjectID string `json:"object_id"`
}

type Store interface {
	Put(ctx context.Context, r io.Reader, meta Metadata) (*Object, error)
	Delete(ctx context.Context, objectID string) error
}

// NewObjectID builds "<folder>/<ulid>-<filename>", unique and time-sortable.
func NewObjectID(folder, filename string) string {
	name := sanitizeFilename(filename)
	id := strings.ToLower(ulid.Make().String())
	if name != "" {
		id += "-" + name
	}
	folder = strings.Trim(path.Clean("/"+strings.TrimSpace(folder)), "/")
	if folder == "" {
		return id
	}
	return folder + "/" + id
}

func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), ".")
}
