package objectstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gwi.com/study-assistant/internal/logger"
)

// DiskStore keeps objects under a local directory. URLs point at baseURL/media/<id>.
type DiskStore struct {
	log     *logger.Logger
	root    string
	baseURL string
}

func NewDiskStore(log *logger.Logger, root, baseURL string) (*DiskStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve media dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	log.Info("Object storage initialized", "mode", "local", "root", abs)
	return &DiskStore{
		log:     log.With("service", "DiskStore"),
		root:    abs,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (d *DiskStore) Root() string { return d.root }

func (d *DiskStore) Put(ctx context.Context, r io.Reader, meta Metadata) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := NewObjectID(meta.Folder, meta.Filename)
	full, err := d.pathFor(id)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, fmt.Errorf("create object dir: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return nil, fmt.Errorf("create object file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return nil, fmt.Errorf("write object file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close object file: %w", err)
	}

	return &Object{URL: d.baseURL + "/media/" + id, ObjectID: id}, nil
}

func (d *DiskStore) Delete(ctx context.Context, objectID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := d.pathFor(objectID)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		return fmt.Errorf("delete object %q: %w", objectID, err)
	}
	return nil
}

func (d *DiskStore) pathFor(objectID string) (string, error) {
	full := filepath.Join(d.root, filepath.FromSlash(objectID))
	rel, err := filepath.Rel(d.root, full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid object id %q", objectID)
	}
	return full, nil
}
