package store

import (
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const (
	SchemeFile  = "file"
	SchemeS3    = "s3"
	SchemeAzure = "azblob"
)

// ErrNotFound is returned (possibly wrapped) when a file or location does not exist.
var ErrNotFound = errors.New("not found")

// Store lists and reads migration files.
type Store interface {
	// List returns the paths of the files directly under location, in a stable
	// order. Sub-directories are not descended into.
	List(ctx context.Context, location string) ([]string, error)

	// Open returns a reader for the file at path. The caller must close it.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// ReadFile reads the entire file at path from s.
func ReadFile(ctx context.Context, s Store, path string) (string, error) {
	rc, err := s.Open(ctx, path)
	if err != nil {
		return "", err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read: %s", path)
	}

	return string(data), nil
}

// SplitURL splits a location or path of the form scheme://root/key into its
// parts. Paths without a scheme are returned with an empty scheme and the whole
// input as key.
//
//	SplitURL("s3://bucket/a/b.sql") // "s3", "bucket", "a/b.sql"
//	SplitURL("db/migrations")       // "", "", "db/migrations"
func SplitURL(path string) (scheme, root, key string) {
	idx := strings.Index(path, "://")
	if idx < 0 {
		return "", "", path
	}

	scheme = strings.ToLower(path[:idx])
	rest := path[idx+3:]
	if scheme == SchemeFile {
		return scheme, "", rest
	}

	root, key, _ = strings.Cut(rest, "/")
	return scheme, root, key
}

// childKeys filters keys to those directly under prefix, which must be empty
// or end in "/".
func childKeys(prefix string, keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		name, ok := strings.CutPrefix(k, prefix)
		if !ok || name == "" || strings.Contains(name, "/") {
			continue
		}
		out = append(out, k)
	}

	return out
}

// dirPrefix turns a key into a listing prefix.
func dirPrefix(key string) string {
	key = strings.Trim(key, "/")
	if key == "" {
		return ""
	}

	return key + "/"
}
