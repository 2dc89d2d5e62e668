package store

import (
	"context"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// FS is a Store backed by an afero.Fs. Locations and paths are plain
// slash-separated paths, optionally prefixed with file://.
type FS struct {
	fs afero.Fs
}

// NewFS returns a Store reading from fs. A nil fs reads from the host filesystem.
func NewFS(fs afero.Fs) *FS {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	return &FS{fs: afero.NewReadOnlyFs(fs)}
}

// List returns the regular files directly under location, sorted by name.
func (s *FS) List(ctx context.Context, location string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := fsPath(location)
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "directory: %s", location)
		}
		return nil, errors.Wrapf(err, "failed to read dir: %s", location)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, path.Join(dir, e.Name()))
	}

	return files, nil
}

// Open opens the file at p.
func (s *FS) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.fs.Open(fsPath(p))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "file: %s", p)
		}
		return nil, errors.Wrapf(err, "failed to open: %s", p)
	}

	return f, nil
}

func fsPath(p string) string {
	if rest, ok := strings.CutPrefix(p, SchemeFile+"://"); ok {
		return rest
	}

	return p
}
