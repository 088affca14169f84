package watcher

import (
	"path/filepath"
	"regexp"
	"strings"
)

// PastedImagePrefix starts the names the editor gives pasted images.
const PastedImagePrefix = "Pasted image "

// DefaultIgnorePatterns returns the default patterns for temporary files to ignore.
func DefaultIgnorePatterns() []string {
	return []string{
		"*.tmp",
		"*.part",
		"*.download",
		"*.crdownload", // Chrome partial downloads
		"*.partial",    // Generic partial file
		".~*",          // Hidden temp files (e.g., .~lock)
	}
}

// FileFilter handles filtering of files based on ignore patterns.
type FileFilter struct {
	patterns []string
}

// NewFileFilter creates a new FileFilter with the given patterns.
// If patterns is nil or empty, default patterns are used.
func NewFileFilter(patterns []string) *FileFilter {
	if len(patterns) == 0 {
		patterns = DefaultIgnorePatterns()
	}
	return &FileFilter{
		patterns: patterns,
	}
}

// ShouldIgnore checks if a file path matches any of the ignore patterns.
// It matches against the filename (base name) only.
// Patterns support glob syntax:
//   - * matches any sequence of non-separator characters
//   - ? matches any single non-separator character
//   - [abc] matches any character in the set
//   - [a-z] matches any character in the range
func (f *FileFilter) ShouldIgnore(path string) bool {
	filename := filepath.Base(path)

	for _, pattern := range f.patterns {
		if matched, err := filepath.Match(pattern, filename); err == nil && matched {
			return true
		}

		// ".tmp" style patterns match as a case-insensitive suffix
		if strings.HasPrefix(pattern, ".") && !strings.Contains(pattern, "*") {
			if strings.HasSuffix(strings.ToLower(filename), strings.ToLower(pattern)) {
				return true
			}
		}
	}
	return false
}

// GetPatterns returns the current ignore patterns.
func (f *FileFilter) GetPatterns() []string {
	result := make([]string, len(f.patterns))
	copy(result, f.patterns)
	return result
}

// AttachmentPolicy decides which new files are attachments to rename.
type AttachmentPolicy struct {
	// HandleAll extends renaming from pasted images to every attachment.
	HandleAll bool
	// Exclude, when set, is matched against the extension of files
	// HandleAll would otherwise pick up.
	Exclude *regexp.Regexp
}

// Handles reports whether the file at path should be renamed. Markdown
// notes never are; pasted images always are.
func (p AttachmentPolicy) Handles(path string) bool {
	name := filepath.Base(path)
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "md" {
		return false
	}
	if strings.HasPrefix(name, PastedImagePrefix) {
		return true
	}
	if !p.HandleAll {
		return false
	}
	return p.Exclude == nil || !p.Exclude.MatchString(ext)
}
