// Package store reads and writes whole files through afs.
//
// Plain filesystem paths are resolved to file:// URLs; anything that already
// carries a scheme (mem://, gs://, s3://...) is passed to afs unchanged.
package store

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/viant/afs"
)

// FileMode is the permission used for files created by Write.
//
// 0644 keeps written files readable but not world-writable (CWE-732).
const FileMode os.FileMode = 0644

var fs = afs.New()

// URL turns a local path into a file:// URL. Values with a scheme are returned as is.
func URL(location string) (string, error) {
	if strings.Contains(location, "://") {
		return location, nil
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", location, err)
	}
	return "file://" + filepath.ToSlash(abs), nil
}

// Read returns the full content at location.
func Read(ctx context.Context, location string) ([]byte, error) {
	u, err := URL(location)
	if err != nil {
		return nil, err
	}
	data, err := fs.DownloadWithURL(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", location, err)
	}
	return data, nil
}

// tempSibling returns a unique URL next to u with the same extension.
//
// afs Move treats a destination whose extension differs from the source's as
// a directory and moves the source into it, so the extension must match.
func tempSibling(u string) string {
	dir, name := path.Split(u)
	ext := path.Ext(name)
	return dir + strings.TrimSuffix(name, ext) + "-" + uuid.NewString() + ext
}

// Write replaces the content at location with data.
//
// The data is uploaded to a temporary sibling first and then renamed over the
// target, so readers never observe a partially written file and a failed
// upload leaves the previous content in place.
func Write(ctx context.Context, location string, data []byte) error {
	u, err := URL(location)
	if err != nil {
		return err
	}
	tmp := tempSibling(u)

	// Track success so the deferred cleanup removes the temporary on error.
	success := false
	defer func() {
		if !success {
			_ = fs.Delete(ctx, tmp) // best-effort cleanup
		}
	}()

	if err := fs.Upload(ctx, tmp, FileMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing %s: %w", location, err)
	}
	if err := fs.Move(ctx, tmp, u); err != nil {
		return fmt.Errorf("replacing %s: %w", location, err)
	}
	success = true
	return nil
}

// Exists reports whether location exists.
func Exists(ctx context.Context, location string) (bool, error) {
	u, err := URL(location)
	if err != nil {
		return false, err
	}
	ok, err := fs.Exists(ctx, u)
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", location, err)
	}
	return ok, nil
}
