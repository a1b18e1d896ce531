// Package storage keeps uploaded panorama images on the local filesystem under
// generated, collision-free names of the form "<uuid><ext>".
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidName = errors.New("invalid storage name")

var namePattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}(\.[a-z0-9]{1,5})?$`)

// ValidName reports whether name has the shape generated by Save.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Dir() string {
	return s.dir
}

// Path returns the absolute location of a stored name.
func (s *LocalStore) Path(name string) (string, error) {
	if !ValidName(name) {
		return "", ErrInvalidName
	}
	return filepath.Join(s.dir, name), nil
}

// Save streams src into a new file and returns its generated name and size.
// The file only becomes visible under its final name once fully written.
func (s *LocalStore) Save(src io.Reader, ext string) (string, int64, error) {
	name := newName(ext)
	final := filepath.Join(s.dir, name)

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	size, err := io.Copy(tmp, src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("failed to write upload: %w", err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("failed to store upload: %w", err)
	}
	return name, size, nil
}

// Copy duplicates a stored file under a new generated name.
func (s *LocalStore) Copy(name string) (string, error) {
	srcPath, err := s.Path(name)
	if err != nil {
		return "", err
	}
	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer src.Close()

	newName, _, err := s.Save(src, filepath.Ext(name))
	return newName, err
}

// Remove deletes a stored file. A missing file is not an error.
func (s *LocalStore) Remove(name string) error {
	p, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalStore) Exists(name string) bool {
	p, err := s.Path(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

func newName(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if len(ext) > 6 {
		ext = ""
	}
	return uuid.New().String() + ext
}
