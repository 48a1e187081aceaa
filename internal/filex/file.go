// Package filex contains file helpers for the photo store.
package filex

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir creates dir (and parents) when missing and returns its absolute
// path. A relative dir is resolved against the working directory.
func EnsureDir(dir string) (string, error) {
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dir)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// ImportFile copies src into dir under name, keeping src's extension, and
// returns the destination path. The copy is written to a temp file first and
// renamed into place, so a failed copy leaves nothing behind.
func ImportFile(src, dir, name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid file name %q", name)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", src, err)
	}
	if fi.IsDir() {
		return "", fmt.Errorf("%s is a directory", src)
	}

	dir, err = EnsureDir(dir)
	if err != nil {
		return "", err
	}

	dst := filepath.Join(dir, name+strings.ToLower(filepath.Ext(src)))

	tmp, err := os.CreateTemp(dir, ".import-*")
	if err != nil {
		return "", fmt.Errorf("create temp: %w", err)
	}

	_, copyErr := io.Copy(tmp, in)
	closeErr := tmp.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("copy %s: %w", src, err)
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("rename: %w", err)
	}

	return dst, nil
}
