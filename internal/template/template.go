// Package template renders attachment name patterns for pasterename.
//
// A pattern is literal text with embedded tokens:
//
//	{{name}}             value of a context variable, "" when unknown
//	{{DATE:FORMAT}}      current local time in a Moment-style format
//	{{frontmatter:KEY}}  scalar value of a note front-matter key
//
// Rendering never fails. Anything that cannot be resolved renders as the
// empty string, and the caller decides whether the result is usable.
package template

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Variable names available to every pattern.
const (
	VarFileName     = "fileName"
	VarDirName      = "dirName"
	VarDirPath      = "dirPath"
	VarImageNameKey = "imageNameKey"
	VarFirstHeading = "firstHeading"
)

const (
	datePrefix        = "DATE:"
	frontmatterPrefix = "frontmatter:"
)

// tokenPattern matches {{...}} tokens. Matches never overlap and are
// consumed left to right.
var tokenPattern = regexp.MustCompile(`\{\{([^{}]*)\}\}`)

// Variables is the flat context a pattern is rendered against.
// Lookups are case-sensitive.
type Variables map[string]string

// Renderer renders patterns. The zero value reads the wall clock.
type Renderer struct {
	// Now returns the instant used for DATE directives.
	Now func() time.Time
}

// Render substitutes every token of pattern. All DATE directives within
// one call share a single instant.
func (r Renderer) Render(pattern string, vars Variables, frontmatter map[string]any) string {
	if !strings.Contains(pattern, "{{") {
		return pattern
	}

	var now time.Time
	haveNow := false

	return tokenPattern.ReplaceAllStringFunc(pattern, func(token string) string {
		body := token[2 : len(token)-2]
		switch {
		case strings.HasPrefix(body, datePrefix):
			if !haveNow {
				now = r.now()
				haveNow = true
			}
			return FormatMoment(now, body[len(datePrefix):])
		case strings.HasPrefix(body, frontmatterPrefix):
			return FrontmatterString(frontmatter, body[len(frontmatterPrefix):])
		default:
			return vars[body]
		}
	})
}

func (r Renderer) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Render renders pattern with the wall clock.
func Render(pattern string, vars Variables, frontmatter map[string]any) string {
	return Renderer{}.Render(pattern, vars, frontmatter)
}

// FrontmatterString returns the value of key as a string. Missing keys,
// nil values and non-scalar values (lists, maps) yield "".
func FrontmatterString(frontmatter map[string]any, key string) string {
	if frontmatter == nil {
		return ""
	}
	v, ok := frontmatter[key]
	if !ok || v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		return val
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(val)
	case time.Time:
		// YAML dates without a time part decode as midnight UTC.
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format(time.RFC3339)
	default:
		return ""
	}
}
