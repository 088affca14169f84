// Package dedup computes collision-free attachment names.
//
// Given a candidate name and the files already present in its target
// directory, the resolver decides whether the name must change and, if so,
// picks the next free duplicate number:
//
//	suffix mode: foo.png, foo-1.png, foo-2.png -> foo-3.png
//	prefix mode: foo.png, 1-foo.png, 2-foo.png -> 3-foo.png
//
// The next number is always one past the highest number already in use,
// never a count of the variants found.
package dedup

import (
	"pasterename/internal/naming"
)

// Policy controls where duplicate numbers go and when they are added.
type Policy struct {
	AtStart   bool   // number as prefix instead of suffix
	Delimiter string // between the number and the stem
	Always    bool   // number even when there is no collision
}

// NewPolicy returns a Policy with a sanitized delimiter.
func NewPolicy(atStart bool, delimiter string, always bool) Policy {
	return Policy{
		AtStart:   atStart,
		Delimiter: naming.Delimiter(delimiter),
		Always:    always,
	}
}

func (p Policy) delimiter() string {
	if p.Delimiter == "" {
		return naming.DefaultDelimiter
	}
	return p.Delimiter
}

// NameObj is a resolved name split into its parts.
type NameObj struct {
	Name      string // stem + "." + extension
	Stem      string // may include a directory part
	Extension string // without the dot
}
