package dedup

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"
)

// Storage is the namespace attachment names live in. Paths passed to and
// returned from a Storage use forward slashes.
type Storage interface {
	// Join joins path elements into a path the Storage can list.
	Join(elem ...string) string
	// List returns the names of the files directly inside dir. A missing
	// dir yields no names and no error.
	List(dir string) ([]string, error)
	// Rel expresses p relative to the storage root.
	Rel(p string) (string, error)
}

// VaultStorage addresses files by vault-relative path. Root is the vault
// directory on disk.
type VaultStorage struct {
	Root string
}

// Join implements Storage.
func (s VaultStorage) Join(elem ...string) string {
	return path.Join(elem...)
}

// List implements Storage.
func (s VaultStorage) List(dir string) ([]string, error) {
	return listFiles(s.OSPath(dir))
}

// Rel implements Storage.
func (s VaultStorage) Rel(p string) (string, error) {
	return contained(path.Clean(p))
}

// OSPath converts a vault-relative path to an operating system path.
func (s VaultStorage) OSPath(p string) string {
	return filepath.Join(s.Root, filepath.FromSlash(p))
}

// PhysicalStorage addresses files under an absolute directory outside the
// vault.
type PhysicalStorage struct {
	Root string
}

// NewPhysicalStorage returns a PhysicalStorage rooted at root.
func NewPhysicalStorage(root string) PhysicalStorage {
	return PhysicalStorage{Root: filepath.ToSlash(filepath.Clean(root))}
}

// Join implements Storage. The result is rooted at Root.
func (s PhysicalStorage) Join(elem ...string) string {
	return path.Join(append([]string{s.Root}, elem...)...)
}

// List implements Storage.
func (s PhysicalStorage) List(dir string) ([]string, error) {
	return listFiles(filepath.FromSlash(dir))
}

// Rel implements Storage.
func (s PhysicalStorage) Rel(p string) (string, error) {
	rel, err := filepath.Rel(filepath.FromSlash(s.Root), filepath.FromSlash(p))
	if err != nil {
		return "", err
	}
	return contained(filepath.ToSlash(rel))
}

// OSPath converts a root-relative path to an operating system path.
func (s PhysicalStorage) OSPath(p string) string {
	return filepath.Join(filepath.FromSlash(s.Root), filepath.FromSlash(p))
}

func contained(rel string) (string, error) {
	if rel == ".." || strings.HasPrefix(rel, "../") || path.IsAbs(rel) {
		return "", ErrOutsideRoot
	}
	return rel, nil
}

// listFiles returns the names of the non-directory entries in directory.
// Symlinks are listed without being followed since they occupy a name
// either way.
func listFiles(directory string) ([]string, error) {
	entries, err := os.ReadDir(directory)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, nil
		case errors.Is(err, fs.ErrPermission):
			return nil, &ListError{Type: PermissionDenied, Path: directory, Err: err}
		case errors.Is(err, syscall.ENOTDIR):
			return nil, &ListError{Type: NotADirectory, Path: directory, Err: err}
		default:
			return nil, &ListError{Type: ReadFailed, Path: directory, Err: err}
		}
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}
