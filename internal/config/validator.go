package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate checks settings that would make every rename fail.
func (s *Settings) Validate() error {
	err := validation.ValidateStruct(s,
		validation.Field(&s.ImageNamePattern, validation.Length(0, 1024)),
		validation.Field(&s.DupNumberDelimiter, validation.Required),
		validation.Field(&s.ExcludeExtensionPattern, validation.By(compiles)),
		validation.Field(&s.RootDirPhysical, validation.By(absolutePath)),
		validation.Field(&s.RootDirView,
			validation.When(s.RootDirPhysical == "", validation.Empty.Error("requires rootDirPhysical")),
		),
		validation.Field(&s.DebounceMs, validation.Min(0)),
	)
	if err != nil {
		return &ConfigError{Type: ValidationError, Message: err.Error(), Err: err}
	}
	return nil
}

func compiles(value interface{}) error {
	s, _ := value.(string)
	if _, err := regexp.Compile(s); err != nil {
		return errors.New("must be a valid regular expression")
	}
	return nil
}

func absolutePath(value interface{}) error {
	s, _ := value.(string)
	if s != "" && !filepath.IsAbs(s) {
		return errors.New("must be an absolute path")
	}
	return nil
}

// ValidationSeverity represents the severity of a validation issue.
type ValidationSeverity string

const (
	SeverityError   ValidationSeverity = "error"
	SeverityWarning ValidationSeverity = "warning"
)

// ConfigValidationError represents a single validation issue.
type ConfigValidationError struct {
	Field    string // settings key with the issue
	Message  string
	Severity ValidationSeverity
}

// Warnings returns issues that do not stop a run but probably surprise
// the user.
func (s *Settings) Warnings() []ConfigValidationError {
	var warnings []ConfigValidationError

	if !strings.Contains(s.ImageNamePattern, "{{") {
		warnings = append(warnings, ConfigValidationError{
			Field:    "imageNamePattern",
			Message:  "pattern has no variables; every attachment gets the same name and a duplicate number",
			Severity: SeverityWarning,
		})
	}

	if s.RootDirPhysical != "" {
		if info, err := os.Stat(s.RootDirPhysical); err == nil && !info.IsDir() {
			warnings = append(warnings, ConfigValidationError{
				Field:    "rootDirPhysical",
				Message:  fmt.Sprintf("%s is not a directory", s.RootDirPhysical),
				Severity: SeverityWarning,
			})
		}
		if s.RootDirView == "" {
			warnings = append(warnings, ConfigValidationError{
				Field:    "rootDirView",
				Message:  "empty; rewritten links will be relative to the physical root",
				Severity: SeverityWarning,
			})
		}
	}

	if s.ExcludeExtensionPattern != "" && !s.HandleAllAttachments {
		warnings = append(warnings, ConfigValidationError{
			Field:    "excludeExtensionPattern",
			Message:  "only applies when handleAllAttachments is enabled",
			Severity: SeverityWarning,
		})
	}

	return warnings
}
