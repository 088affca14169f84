package dedup

import (
	"math"
	"path"
	"strconv"
	"strings"
)

// Resolve picks the final name for candidate given the names already
// present in its directory. candidate may carry a directory part, which is
// kept in the result; siblings are compared by base name only.
//
// The name is renumbered when it collides with a sibling or when
// policy.Always is set. The new number is one past the highest number any
// sibling already carries for the same stem and extension, or 1.
func Resolve(candidate string, siblings []string, policy Policy) (NameObj, error) {
	candidate = normalizeSeparators(candidate)

	dir, base := path.Split(candidate)
	stem, ext, err := splitName(base)
	if err != nil {
		return NameObj{}, err
	}

	m := newDuplicateMatcher(stem, ext, policy)

	exists := false
	highest := 0
	var overflow *MalformedNameError
	for _, sibling := range siblings {
		name := path.Base(normalizeSeparators(sibling))
		if name == base {
			exists = true
		}

		digits, ok := m.match(name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			// Only fatal when a number has to be picked.
			if overflow == nil {
				overflow = &MalformedNameError{Type: UnparseableNumber, Name: name, Err: err}
			}
			continue
		}
		if n > highest {
			highest = n
		}
	}

	if !exists && !policy.Always {
		return NameObj{Name: candidate, Stem: dir + stem, Extension: ext}, nil
	}

	if overflow != nil {
		return NameObj{}, overflow
	}
	if highest == math.MaxInt {
		return NameObj{}, &MalformedNameError{Type: UnparseableNumber, Name: base, Err: strconv.ErrRange}
	}
	newStem := dir + numbered(highest+1, stem, policy)
	return NameObj{Name: newStem + "." + ext, Stem: newStem, Extension: ext}, nil
}

func numbered(n int, stem string, p Policy) string {
	if p.AtStart {
		return strconv.Itoa(n) + p.delimiter() + stem
	}
	return stem + p.delimiter() + strconv.Itoa(n)
}

// splitName splits a base name at its last '.'.
func splitName(base string) (stem, ext string, err error) {
	dot := strings.LastIndexByte(base, '.')
	if dot < 0 {
		return "", "", &MalformedNameError{Type: MissingExtension, Name: base}
	}
	return base[:dot], base[dot+1:], nil
}

func normalizeSeparators(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// Resolver resolves names against the live contents of a Storage.
type Resolver struct {
	Storage Storage
	Policy  Policy
}

// NewResolver creates a Resolver for the given storage and policy.
func NewResolver(storage Storage, policy Policy) *Resolver {
	return &Resolver{Storage: storage, Policy: policy}
}

// Deduplicate resolves candidate inside targetDir. Both are relative to the
// storage root, and so is the returned name. A missing targetDir is treated
// as empty.
func (r *Resolver) Deduplicate(candidate, targetDir string) (NameObj, error) {
	candidate = normalizeSeparators(candidate)
	_, base := path.Split(candidate)
	if _, _, err := splitName(base); err != nil {
		return NameObj{}, err
	}

	full := r.Storage.Join(normalizeSeparators(targetDir), candidate)

	dir := path.Dir(full)
	siblings, err := r.Storage.List(dir)
	if err != nil {
		return NameObj{}, err
	}

	obj, err := Resolve(path.Base(full), siblings, r.Policy)
	if err != nil {
		return NameObj{}, err
	}

	name, err := r.Storage.Rel(path.Join(dir, obj.Name))
	if err != nil {
		return NameObj{}, err
	}
	return NameObj{
		Name:      name,
		Stem:      strings.TrimSuffix(name, "."+obj.Extension),
		Extension: obj.Extension,
	}, nil
}
