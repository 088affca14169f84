package document

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"pasterename/internal/logging"
)

// Resolution records how an embed target was matched to a vault file, so
// a rewritten link can be written the same way.
type Resolution int

const (
	// ResolvedExact means the target was a vault-relative path.
	ResolvedExact Resolution = iota + 1
	// ResolvedRelative means the target was relative to the note.
	ResolvedRelative
	// ResolvedBaseName means the target was a bare file name unique in
	// the vault.
	ResolvedBaseName
)

// Vault is a directory of notes and attachments.
type Vault struct {
	Root string
}

// OSPath converts a vault-relative path to an operating system path.
func (v Vault) OSPath(p string) string {
	return filepath.Join(v.Root, filepath.FromSlash(p))
}

// Load reads and parses the note at the vault-relative notePath. Malformed
// front-matter is logged and treated as empty.
func (v Vault) Load(notePath string) (*Note, error) {
	logger := logging.GetLogger("document")
	notePath = path.Clean(filepath.ToSlash(notePath))

	data, err := os.ReadFile(v.OSPath(notePath))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NoteError{Type: NoteNotFound, Path: notePath, Err: err}
		}
		return nil, &NoteError{Type: NoteReadFailed, Path: notePath, Err: err}
	}

	note, err := newNote(notePath, string(data))
	if err != nil {
		logger.Warn().Err(err).Str("note", notePath).Msg("Ignoring malformed front-matter")
	}
	logger.Debug().
		Str("note", notePath).
		Int("embeds", len(note.Embeds)).
		Str("firstHeading", note.FirstHeading).
		Msg("Loaded note")
	return note, nil
}

// Save writes the note content back to disk.
func (v Vault) Save(n *Note) error {
	target := v.OSPath(n.Path)
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(target); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(target, []byte(n.Content), mode); err != nil {
		return &NoteError{Type: NoteWriteFailed, Path: n.Path, Err: err}
	}
	return nil
}

// ReplaceLink replaces every occurrence of oldText in the note body with
// newText and saves the note when anything changed.
func (v Vault) ReplaceLink(n *Note, oldText, newText string) (int, error) {
	count := n.replaceLink(oldText, newText)
	if count == 0 {
		return 0, nil
	}
	return count, v.Save(n)
}

// Resolve finds the vault file an embed target refers to from the note at
// notePath. Targets are tried as a vault path, then relative to the note,
// then as a file name that occurs exactly once in the vault.
func (v Vault) Resolve(target, notePath string) (string, Resolution, bool) {
	target = strings.TrimPrefix(filepath.ToSlash(target), "/")
	if target == "" {
		return "", 0, false
	}

	if p := path.Clean(target); v.isFile(p) {
		return p, ResolvedExact, true
	}
	if p := path.Join(path.Dir(notePath), target); v.isFile(p) {
		return p, ResolvedRelative, true
	}

	logger := logging.GetLogger("document")
	matches, err := v.findByName(path.Base(target))
	if err != nil {
		logger.Warn().Err(err).Str("target", target).Msg("Vault walk failed")
		return "", 0, false
	}
	if len(matches) == 1 {
		return matches[0], ResolvedBaseName, true
	}
	if len(matches) > 1 {
		logger.Debug().Str("target", target).Strs("matches", matches).Msg("Ambiguous link target")
	}
	return "", 0, false
}

// LinkTarget returns how a link to filePath from the note at notePath is
// written when the original link was matched via how.
func (v Vault) LinkTarget(filePath, notePath string, how Resolution) string {
	switch how {
	case ResolvedRelative:
		if rel, err := filepath.Rel(filepath.FromSlash(path.Dir(notePath)), filepath.FromSlash(filePath)); err == nil {
			return filepath.ToSlash(rel)
		}
	case ResolvedBaseName:
		if matches, err := v.findByName(path.Base(filePath)); err == nil && len(matches) == 1 {
			return path.Base(filePath)
		}
	}
	return filePath
}

func (v Vault) isFile(p string) bool {
	if p == ".." || strings.HasPrefix(p, "../") {
		return false
	}
	info, err := os.Stat(v.OSPath(p))
	return err == nil && !info.IsDir()
}

// findByName returns the vault-relative paths of all files named name,
// sorted.
func (v Vault) findByName(name string) ([]string, error) {
	var matches []string
	err := v.walk(func(rel string, _ fs.DirEntry) {
		if path.Base(rel) == name {
			matches = append(matches, rel)
		}
	})
	sort.Strings(matches)
	return matches, err
}

// LatestNote returns the vault-relative path of the most recently modified
// Markdown note.
func (v Vault) LatestNote() (string, error) {
	var (
		latest     string
		latestTime time.Time
	)
	err := v.walk(func(rel string, d fs.DirEntry) {
		if !strings.EqualFold(path.Ext(rel), ".md") {
			return
		}
		info, err := d.Info()
		if err != nil {
			return
		}
		mod := info.ModTime()
		if latest == "" || mod.After(latestTime) || (mod.Equal(latestTime) && rel < latest) {
			latest, latestTime = rel, mod
		}
	})
	if err != nil {
		return "", &NoteError{Type: NoteReadFailed, Path: v.Root, Err: err}
	}
	if latest == "" {
		return "", &NoteError{Type: NoNotes, Path: v.Root}
	}
	return latest, nil
}

// walk visits every regular file in the vault, skipping hidden
// directories such as .obsidian and .trash.
func (v Vault) walk(visit func(rel string, d fs.DirEntry)) error {
	return filepath.WalkDir(v.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == v.Root {
				return err
			}
			return nil
		}
		if d.IsDir() {
			if p != v.Root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(v.Root, p)
		if err != nil {
			return nil
		}
		visit(filepath.ToSlash(rel), d)
		return nil
	})
}
