package renamer

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// moveFile moves src to dst, creating dst's directory. It refuses to
// overwrite an existing dst.
func moveFile(src, dst string) error {
	if _, err := os.Lstat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &MoveError{Type: SourceNotFound, Path: src, Err: err}
		}
		return err
	}

	destDir := filepath.Dir(dst)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		if os.IsPermission(err) {
			return &MoveError{Type: PermissionDenied, Path: destDir, Err: err}
		}
		return err
	}

	if _, err := os.Lstat(dst); err == nil {
		return &MoveError{Type: DestinationExists, Path: dst}
	}

	if err := os.Rename(src, dst); err != nil {
		if os.IsPermission(err) {
			return &MoveError{Type: PermissionDenied, Path: src, Err: err}
		}
		// If rename fails (e.g., cross-device), fall back to copy+delete
		return copyAndDelete(src, dst)
	}
	return nil
}

// copyAndDelete copies a file to a new location and deletes the original.
// Used as a fallback when os.Rename fails (e.g., cross-device moves).
func copyAndDelete(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		if os.IsNotExist(err) {
			return &MoveError{Type: SourceNotFound, Path: src, Err: err}
		}
		if os.IsPermission(err) {
			return &MoveError{Type: PermissionDenied, Path: src, Err: err}
		}
		return err
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	// O_EXCL keeps a file created since the Lstat check intact.
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, srcInfo.Mode().Perm())
	if err != nil {
		if os.IsExist(err) {
			return &MoveError{Type: DestinationExists, Path: dst, Err: err}
		}
		if os.IsPermission(err) {
			return &MoveError{Type: PermissionDenied, Path: dst, Err: err}
		}
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(dst)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return err
	}

	if err := os.Remove(src); err != nil {
		// If we can't delete source, try to clean up destination
		os.Remove(dst)
		if os.IsPermission(err) {
			return &MoveError{Type: PermissionDenied, Path: src, Err: err}
		}
		return err
	}
	return nil
}
