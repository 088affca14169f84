package dedup

// duplicateMatcher recognizes numbered variants of one stem and extension.
// Stem and extension are compared literally, so names containing regex
// metacharacters such as "a(b)" or "x.y+z" need no escaping.
type duplicateMatcher struct {
	head string
	tail string
}

func newDuplicateMatcher(stem, ext string, p Policy) duplicateMatcher {
	if p.AtStart {
		return duplicateMatcher{tail: p.delimiter() + stem + "." + ext}
	}
	return duplicateMatcher{head: stem + p.delimiter(), tail: "." + ext}
}

// match returns the decimal digits between head and tail. ok is false
// unless name is exactly head + one or more ASCII digits + tail.
func (m duplicateMatcher) match(name string) (digits string, ok bool) {
	if len(name) <= len(m.head)+len(m.tail) {
		return "", false
	}
	if name[:len(m.head)] != m.head || name[len(name)-len(m.tail):] != m.tail {
		return "", false
	}

	digits = name[len(m.head) : len(name)-len(m.tail)]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return "", false
		}
	}
	return digits, true
}
