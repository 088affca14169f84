// Package naming turns rendered patterns into attachment names.
package naming

import (
	"regexp"
	"strings"
)

// DefaultDelimiter is used when a configured delimiter sanitizes to nothing.
const DefaultDelimiter = "-"

var (
	filenameNotAllowed   = regexp.MustCompile("[^\\p{L}0-9~`!@$&*()\\-_=+{};'\",<.>? ]")
	fsFilenameNotAllowed = regexp.MustCompile("[^\\p{L}0-9~`!@$&*()\\-_=+{};'\",<.>? :/]")
)

// Filename strips characters that are unsafe inside a vault file name and
// trims surrounding whitespace.
func Filename(s string) string {
	return strings.TrimSpace(filenameNotAllowed.ReplaceAllString(s, ""))
}

// FSFilename is Filename for names stored under a physical root. It also
// keeps ':' and '/' so drive letters and sub-directories survive.
func FSFilename(s string) string {
	return strings.TrimSpace(fsFilenameNotAllowed.ReplaceAllString(s, ""))
}

// Delimiter sanitizes a duplicate-number delimiter, falling back to
// DefaultDelimiter.
func Delimiter(s string) string {
	s = Filename(s)
	if s == "" {
		return DefaultDelimiter
	}
	return s
}

// uriUnreserved holds the bytes encodeURI leaves untouched.
const uriUnreserved = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789;,/?:@&=+$-_.!~*'()#"

// Link encodes a display path for use as a Markdown link target. Reserved
// URI characters are preserved and everything else is percent-encoded as
// UTF-8.
func Link(s string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if strings.IndexByte(uriUnreserved, c) >= 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}
