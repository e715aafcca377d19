// Package storage keeps uploaded verification documents in a private on-disk
// bucket layout and mints time-limited signed URLs for them.
package storage

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
)

var (
	ErrInvalidPath   = errors.New("invalid object path")
	ErrUnknownBucket = errors.New("unknown bucket")
	ErrNotFound      = errors.New("object not found")
)

// Local stores objects under <root>/<bucket>/<object path>.
type Local struct {
	root    string
	buckets map[string]struct{}
}

func NewLocal(root string, buckets ...string) (*Local, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("storage root is required")
	}
	l := &Local{root: filepath.Clean(root), buckets: make(map[string]struct{}, len(buckets))}
	for _, b := range buckets {
		if b = strings.Trim(strings.TrimSpace(b), "/"); b == "" || strings.Contains(b, "/") {
			return nil, errors.Errorf("invalid bucket name %q", b)
		}
		l.buckets[b] = struct{}{}
		if err := os.MkdirAll(filepath.Join(l.root, b), 0o750); err != nil {
			return nil, errors.Wrapf(err, "create bucket %s", b)
		}
	}
	return l, nil
}

// CleanObjectPath normalizes an in-bucket path and rejects anything that
// would leave the bucket.
func CleanObjectPath(p string) (string, error) {
	trimmed := strings.TrimSpace(p)
	trimmed = strings.TrimPrefix(trimmed, "/")
	if trimmed == "" {
		return "", ErrInvalidPath
	}
	for _, seg := range strings.Split(trimmed, "/") {
		if seg == ".." {
			return "", ErrInvalidPath
		}
	}
	clean := strings.TrimPrefix(path.Clean("/"+trimmed), "/")
	if clean == "" || clean == "." {
		return "", ErrInvalidPath
	}
	return clean, nil
}

func (l *Local) resolve(bucket, objectPath string) (string, error) {
	if _, ok := l.buckets[bucket]; !ok {
		return "", ErrUnknownBucket
	}
	clean, err := CleanObjectPath(objectPath)
	if err != nil {
		return "", err
	}

	base := filepath.Join(l.root, bucket)
	target := filepath.Clean(filepath.Join(base, filepath.FromSlash(clean)))
	if !strings.HasPrefix(target, base+string(os.PathSeparator)) {
		return "", ErrInvalidPath
	}
	return target, nil
}

// Put writes r to bucket/objectPath, replacing any existing object.
func (l *Local) Put(_ context.Context, bucket, objectPath string, r io.Reader) (int64, error) {
	target, err := l.resolve(bucket, objectPath)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return 0, errors.Wrap(err, "create object dir")
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return 0, errors.Wrap(err, "create temp object")
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return 0, errors.Wrap(err, "write object")
	}
	if err := tmp.Close(); err != nil {
		return 0, errors.Wrap(err, "close object")
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return 0, errors.Wrap(err, "commit object")
	}
	return n, nil
}

func (l *Local) Exists(_ context.Context, bucket, objectPath string) (bool, error) {
	target, err := l.resolve(bucket, objectPath)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "stat object")
	}
	return !info.IsDir(), nil
}

// Open returns the object for reading; the caller closes it.
func (l *Local) Open(_ context.Context, bucket, objectPath string) (*os.File, os.FileInfo, error) {
	target, err := l.resolve(bucket, objectPath)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, errors.Wrap(err, "open object")
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrap(err, "stat object")
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, ErrNotFound
	}
	return f, info, nil
}

// Delete removes an object. Missing objects are not an error.
func (l *Local) Delete(_ context.Context, bucket, objectPath string) error {
	target, err := l.resolve(bucket, objectPath)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "delete object")
	}
	return nil
}
