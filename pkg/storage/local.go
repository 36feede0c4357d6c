package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalDisk stores files under a root directory.
type LocalDisk struct {
	root    string
	baseURL string
}

// NewLocal returns a disk rooted at root, made absolute against the working
// directory. baseURL prefixes URL results.
func NewLocal(root, baseURL string) *LocalDisk {
	if !filepath.IsAbs(root) {
		if cwd, err := os.Getwd(); err == nil {
			root = filepath.Join(cwd, root)
		}
	}
	return &LocalDisk{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

// Root returns the absolute root directory.
func (d *LocalDisk) Root() string { return d.root }

func (d *LocalDisk) abs(path string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(path))
	if clean == string(filepath.Separator) {
		return "", fmt.Errorf("storage/local: empty path")
	}
	return filepath.Join(d.root, clean), nil
}

func (d *LocalDisk) Put(ctx context.Context, path string, content []byte) error {
	return d.PutStream(ctx, path, bytes.NewReader(content))
}

// PutStream writes to a temp file in the target directory and renames it
// over path.
func (d *LocalDisk) PutStream(_ context.Context, path string, r io.Reader) error {
	full, err := d.abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage/local: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(full)+".*.tmp")
	if err != nil {
		return fmt.Errorf("storage/local: create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("storage/local: write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("storage/local: sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage/local: close %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("storage/local: chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return fmt.Errorf("storage/local: rename %s: %w", path, err)
	}
	return nil
}

func (d *LocalDisk) Get(_ context.Context, path string) ([]byte, error) {
	full, err := d.abs(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, wrapLocal("get", path, err)
	}
	return data, nil
}

func (d *LocalDisk) GetStream(_ context.Context, path string) (io.ReadCloser, error) {
	full, err := d.abs(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, wrapLocal("open", path, err)
	}
	return f, nil
}

func (d *LocalDisk) Exists(_ context.Context, path string) (bool, error) {
	full, err := d.abs(path)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("storage/local: stat %s: %w", path, err)
	}
	return !info.IsDir(), nil
}

func (d *LocalDisk) Delete(_ context.Context, path string) error {
	full, err := d.abs(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage/local: delete %s: %w", path, err)
	}
	return nil
}

func (d *LocalDisk) Files(_ context.Context, directory string) ([]string, error) {
	full := filepath.Join(d.root, filepath.Clean("/"+filepath.FromSlash(directory)))
	entries, err := os.ReadDir(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage/local: list %s: %w", directory, err)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

func (d *LocalDisk) URL(path string) string {
	return d.baseURL + "/" + strings.TrimLeft(filepath.ToSlash(path), "/")
}

func wrapLocal(op, path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage/local: %s %s: %w", op, path, ErrNotFound)
	}
	return fmt.Errorf("storage/local: %s %s: %w", op, path, err)
}
