// Package pictures stores the complementary pictures attached to frames.
//
// Pictures live in a Store addressed by file name. The disk store keeps them
// in a directory; the S3 store keeps them in a bucket under a key prefix.
// File names are generated by NewPictureName and never contain directories.
package pictures

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

var (
	ErrPictureNotFound = errors.New("picture not found")
	ErrInvalidName     = errors.New("invalid picture name")
)

// Store is a flat collection of picture files.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
}

// validName rejects names that could escape the store.
func validName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || path.Base(name) != name {
		return ErrInvalidName
	}
	return nil
}
