package watcher

import (
	"regexp"
	"testing"
)

func TestNewFileFilter_Defaults(t *testing.T) {
	for _, patterns := range [][]string{nil, {}} {
		if got := NewFileFilter(patterns).GetPatterns(); len(got) != len(DefaultIgnorePatterns()) {
			t.Errorf("NewFileFilter(%v) got %d patterns, want defaults", patterns, len(got))
		}
	}

	custom := NewFileFilter([]string{"*.bak", "*.swp"})
	if got := custom.GetPatterns(); len(got) != 2 {
		t.Errorf("NewFileFilter(custom) got %d patterns, want 2", len(got))
	}
}

func TestFileFilter_ShouldIgnore(t *testing.T) {
	tests := []struct {
		patterns []string
		path     string
		expected bool
	}{
		{nil, "/vault/Pasted image 1.png.tmp", true},
		{nil, "/vault/photo.png.crdownload", true},
		{nil, "/vault/.~lock.note.md#", true},
		{nil, "/vault/Pasted image 1.png", false},
		{[]string{".BAK"}, "/vault/a.png.bak", true},
		{[]string{"draft-?.png"}, "/vault/draft-1.png", true},
		{[]string{"draft-?.png"}, "/vault/draft-10.png", false},
		{[]string{"[ab].png"}, "/vault/c.png", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := NewFileFilter(tt.patterns).ShouldIgnore(tt.path); got != tt.expected {
				t.Errorf("ShouldIgnore(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}

func TestFileFilter_GetPatterns_ReturnsCopy(t *testing.T) {
	filter := NewFileFilter([]string{"*.bak"})
	patterns := filter.GetPatterns()
	patterns[0] = "changed"

	if filter.GetPatterns()[0] != "*.bak" {
		t.Error("GetPatterns should return a copy")
	}
}

func TestAttachmentPolicy_Handles(t *testing.T) {
	exclude := regexp.MustCompile("pdf|zip")

	tests := []struct {
		name     string
		policy   AttachmentPolicy
		path     string
		expected bool
	}{
		{"pasted image", AttachmentPolicy{}, "/vault/Pasted image 20240101.png", true},
		{"markdown never", AttachmentPolicy{HandleAll: true}, "/vault/Pasted image note.md", false},
		{"other file without handle all", AttachmentPolicy{}, "/vault/photo.jpg", false},
		{"other file with handle all", AttachmentPolicy{HandleAll: true}, "/vault/photo.jpg", true},
		{"excluded extension", AttachmentPolicy{HandleAll: true, Exclude: exclude}, "/vault/doc.pdf", false},
		{"exclusion skips pasted images", AttachmentPolicy{HandleAll: true, Exclude: regexp.MustCompile("png")}, "/vault/Pasted image 1.png", true},
		{"not excluded", AttachmentPolicy{HandleAll: true, Exclude: exclude}, "/vault/clip.mp4", true},
		{"no extension", AttachmentPolicy{HandleAll: true, Exclude: exclude}, "/vault/LICENSE", true},
		{"prefix is case sensitive", AttachmentPolicy{}, "/vault/pasted image 1.png", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.Handles(tt.path); got != tt.expected {
				t.Errorf("Handles(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}
