package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store is the file-storage boundary: a filesystem-like area addressable
// by relative paths under a public web root. Writes are not transactional
// with the database rows that reference the stored paths; a crash between
// the two can leave an orphaned file.
type Store interface {
	// Save writes the content under dir with a fresh unique name and the
	// given extension, returning the web-relative path ("/uploads/...").
	Save(dir string, r io.Reader, ext string) (string, error)
	Delete(relPath string) error
	Exists(relPath string) bool
}

const (
	FormFileDir         = "uploads/formfile"
	CorrectiveActionDir = "uploads/correctiveactions"
)

// Disk stores files under a web root directory on the local filesystem.
type Disk struct {
	WebRoot string
}

func NewDisk(webRoot string) *Disk {
	return &Disk{WebRoot: webRoot}
}

func (d *Disk) Save(dir string, r io.Reader, ext string) (string, error) {
	absDir := filepath.Join(d.WebRoot, filepath.FromSlash(dir))
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	name := uuid.New().String()
	if ext != "" {
		name += "." + ext
	}

	f, err := os.Create(filepath.Join(absDir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return "/" + path.Join(dir, name), nil
}

func (d *Disk) Delete(relPath string) error {
	abs, ok := d.resolve(relPath)
	if !ok {
		return fmt.Errorf("invalid path: %s", relPath)
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (d *Disk) Exists(relPath string) bool {
	abs, ok := d.resolve(relPath)
	if !ok {
		return false
	}
	_, err := os.Stat(abs)
	return err == nil
}

// resolve maps a web-relative path back under the web root, rejecting
// anything that would escape it.
func (d *Disk) resolve(relPath string) (string, bool) {
	clean := path.Clean("/" + relPath)
	if strings.Contains(clean, "..") {
		return "", false
	}
	return filepath.Join(d.WebRoot, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), true
}
