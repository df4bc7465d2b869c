package pictures

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
)

// ExportZip writes the named pictures into a zip archive. Names missing from
// the store are skipped and returned.
func ExportZip(ctx context.Context, store Store, names []string, w io.Writer) (missing []string, err error) {
	zw := zip.NewWriter(w)
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			zw.Close()
			return missing, err
		}
		if err := addToZip(ctx, zw, store, name); err != nil {
			if errors.Is(err, ErrPictureNotFound) {
				missing = append(missing, name)
				continue
			}
			zw.Close()
			return missing, err
		}
	}
	if err := zw.Close(); err != nil {
		return missing, fmt.Errorf("finish zip: %w", err)
	}
	return missing, nil
}

func addToZip(ctx context.Context, zw *zip.Writer, store Store, name string) error {
	rc, err := store.Open(ctx, name)
	if err != nil {
		return err
	}
	defer rc.Close()

	// Pictures are already JPEG compressed.
	fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
	if err != nil {
		return fmt.Errorf("add %s to zip: %w", name, err)
	}
	if _, err := io.Copy(fw, rc); err != nil {
		return fmt.Errorf("copy %s to zip: %w", name, err)
	}
	return nil
}

// CleanupUnused deletes every stored picture whose name is not referenced
// and returns the deleted names.
func CleanupUnused(ctx context.Context, store Store, referenced []string) ([]string, error) {
	stored, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	var deleted []string
	for _, name := range stored {
		if slices.Contains(referenced, name) {
			continue
		}
		if err := store.Delete(ctx, name); err != nil && !errors.Is(err, ErrPictureNotFound) {
			return deleted, err
		}
		deleted = append(deleted, name)
	}
	return deleted, nil
}
