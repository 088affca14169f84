// Package config handles settings loading and validation for pasterename.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"pasterename/internal/dedup"
	"pasterename/internal/naming"
)

// AppName names the settings and state directories.
const AppName = "pasterename"

// EnvPrefix marks environment variables that override settings, e.g.
// PASTERENAME_IMAGE_NAME_PATTERN.
const EnvPrefix = "PASTERENAME_"

// ConfigErrorType represents the type of configuration error.
type ConfigErrorType string

const (
	FileNotFound      ConfigErrorType = "FILE_NOT_FOUND"
	InvalidFormat     ConfigErrorType = "INVALID_FORMAT"
	UnsupportedFormat ConfigErrorType = "UNSUPPORTED_FORMAT"
	ValidationError   ConfigErrorType = "VALIDATION_ERROR"
	WriteFailed       ConfigErrorType = "WRITE_FAILED"
)

// ConfigError represents an error that occurred during configuration loading.
type ConfigError struct {
	Type    ConfigErrorType
	Path    string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	switch e.Type {
	case FileNotFound:
		return fmt.Sprintf("settings file not found: %s", e.Path)
	case InvalidFormat:
		return fmt.Sprintf("invalid settings file %s: %s", e.Path, e.Message)
	case UnsupportedFormat:
		return fmt.Sprintf("unsupported settings file format: %s", e.Path)
	case ValidationError:
		return fmt.Sprintf("settings validation error: %s", e.Message)
	case WriteFailed:
		return fmt.Sprintf("failed to write settings file %s: %s", e.Path, e.Message)
	default:
		return fmt.Sprintf("settings error: %s", e.Message)
	}
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Settings holds all user-facing options. Keys are camelCase in every
// file format.
type Settings struct {
	ImageNamePattern        string `koanf:"imageNamePattern" json:"imageNamePattern"`
	DupNumberAtStart        bool   `koanf:"dupNumberAtStart" json:"dupNumberAtStart"`
	DupNumberDelimiter      string `koanf:"dupNumberDelimiter" json:"dupNumberDelimiter"`
	DupNumberAlways         bool   `koanf:"dupNumberAlways" json:"dupNumberAlways"`
	AutoRename              bool   `koanf:"autoRename" json:"autoRename"`
	HandleAllAttachments    bool   `koanf:"handleAllAttachments" json:"handleAllAttachments"`
	ExcludeExtensionPattern string `koanf:"excludeExtensionPattern" json:"excludeExtensionPattern"`
	DisableRenameNotice     bool   `koanf:"disableRenameNotice" json:"disableRenameNotice"`
	RootDirPhysical         string `koanf:"rootDirPhysical" json:"rootDirPhysical"`
	RootDirView             string `koanf:"rootDirView" json:"rootDirView"`

	// Watcher and journal options.
	DebounceMs     int      `koanf:"debounceMs" json:"debounceMs"`
	IgnorePatterns []string `koanf:"ignorePatterns" json:"ignorePatterns,omitempty"`
	JournalDir     string   `koanf:"journalDir" json:"journalDir,omitempty"`
}

// Defaults returns the settings used when nothing overrides them.
func Defaults() Settings {
	return Settings{
		ImageNamePattern:   "{{fileName}}",
		DupNumberDelimiter: naming.DefaultDelimiter,
		DebounceMs:         500,
		JournalDir:         filepath.Join(xdg.StateHome, AppName),
	}
}

// DefaultPath returns the settings file location under the XDG config
// directory.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "settings.yaml")
}

// Policy returns the deduplication policy these settings describe.
func (s *Settings) Policy() dedup.Policy {
	return dedup.NewPolicy(s.DupNumberAtStart, s.DupNumberDelimiter, s.DupNumberAlways)
}

// Physical reports whether attachments are moved out of the vault.
func (s *Settings) Physical() bool {
	return s.RootDirPhysical != ""
}

// ExcludeRegexp compiles ExcludeExtensionPattern, returning nil when the
// pattern is empty.
func (s *Settings) ExcludeRegexp() (*regexp.Regexp, error) {
	if s.ExcludeExtensionPattern == "" {
		return nil, nil
	}
	return regexp.Compile(s.ExcludeExtensionPattern)
}

// Debounce returns DebounceMs as a duration.
func (s *Settings) Debounce() time.Duration {
	return time.Duration(s.DebounceMs) * time.Millisecond
}

// sanitize normalizes values the way the settings UI does on input.
func (s *Settings) sanitize() {
	s.DupNumberDelimiter = naming.Delimiter(s.DupNumberDelimiter)
	if first, _, ok := strings.Cut(s.ExcludeExtensionPattern, "\n"); ok {
		s.ExcludeExtensionPattern = first
	}
	s.ExcludeExtensionPattern = strings.TrimSpace(s.ExcludeExtensionPattern)
}

// Load reads settings from filePath layered over the defaults and under
// the environment. The file must exist.
func Load(filePath string) (*Settings, error) {
	return load(filePath, true)
}

// LoadOrDefault is Load, except that a missing file yields the defaults
// plus environment overrides.
func LoadOrDefault(filePath string) (*Settings, error) {
	return load(filePath, false)
}

func load(filePath string, required bool) (*Settings, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaultsMap(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load default settings: %w", err)
	}

	// 2. Settings file
	if filePath != "" {
		if err := loadFile(k, filePath, required); err != nil {
			return nil, err
		}
	}

	// 3. Environment
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return envKey(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Unmarshal
	var settings Settings
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &settings,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &settings, unmarshalConf); err != nil {
		return nil, &ConfigError{Type: InvalidFormat, Path: filePath, Message: err.Error(), Err: err}
	}

	// 5. Post-process
	settings.sanitize()
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return &settings, nil
}

func loadFile(k *koanf.Koanf, filePath string, required bool) error {
	if _, err := os.Stat(filePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return &ConfigError{Type: FileNotFound, Path: filePath, Message: err.Error(), Err: err}
	}

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml", ".json":
		parser = yaml.Parser()
	case ".toml":
		parser = toml.Parser()
	default:
		return &ConfigError{Type: UnsupportedFormat, Path: filePath}
	}

	if err := k.Load(file.Provider(filePath), parser); err != nil {
		return &ConfigError{Type: InvalidFormat, Path: filePath, Message: err.Error(), Err: err}
	}
	return nil
}

func defaultsMap() map[string]interface{} {
	d := Defaults()
	return map[string]interface{}{
		"imageNamePattern":        d.ImageNamePattern,
		"dupNumberAtStart":        d.DupNumberAtStart,
		"dupNumberDelimiter":      d.DupNumberDelimiter,
		"dupNumberAlways":         d.DupNumberAlways,
		"autoRename":              d.AutoRename,
		"handleAllAttachments":    d.HandleAllAttachments,
		"excludeExtensionPattern": d.ExcludeExtensionPattern,
		"disableRenameNotice":     d.DisableRenameNotice,
		"rootDirPhysical":         d.RootDirPhysical,
		"rootDirView":             d.RootDirView,
		"debounceMs":              d.DebounceMs,
		"journalDir":              d.JournalDir,
	}
}

// envKey converts an upper snake case variable suffix to its camelCase
// settings key: IMAGE_NAME_PATTERN becomes imageNamePattern.
func envKey(s string) string {
	var b strings.Builder
	for i, part := range strings.Split(strings.ToLower(s), "_") {
		if part == "" {
			continue
		}
		if i > 0 && b.Len() > 0 {
			r := []rune(part)
			r[0] = unicode.ToUpper(r[0])
			part = string(r)
		}
		b.WriteString(part)
	}
	return b.String()
}

// Save serializes and writes settings as JSON to the given path.
func Save(settings *Settings, filePath string) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return &ConfigError{Type: InvalidFormat, Path: filePath, Message: err.Error(), Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return &ConfigError{Type: WriteFailed, Path: filePath, Message: err.Error(), Err: err}
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return &ConfigError{Type: WriteFailed, Path: filePath, Message: err.Error(), Err: err}
	}

	return nil
}
