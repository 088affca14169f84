package naming

import (
	"strings"
	"unicode"

	"pasterename/internal/template"
)

// RenderedName is the outcome of rendering a name pattern for one
// attachment.
type RenderedName struct {
	Stem    string
	NewName string // Stem + "." + extension

	// IsMeaningful is false when the stem holds nothing but delimiter
	// characters and whitespace.
	IsMeaningful bool
}

// Generator renders name patterns into attachment names.
type Generator struct {
	Renderer  template.Renderer
	Pattern   string
	Delimiter string
}

// Generate renders the pattern against vars and frontmatter and attaches
// ext (without a leading dot).
func (g Generator) Generate(vars template.Variables, frontmatter map[string]any, ext string) RenderedName {
	stem := g.Renderer.Render(g.Pattern, vars, frontmatter)
	return RenderedName{
		Stem:         stem,
		NewName:      stem + "." + ext,
		IsMeaningful: IsMeaningful(stem, g.Delimiter),
	}
}

// IsMeaningful reports whether stem has content beyond the characters of
// delimiter and whitespace.
func IsMeaningful(stem, delimiter string) bool {
	rest := strings.IndexFunc(stem, func(r rune) bool {
		return !unicode.IsSpace(r) && !strings.ContainsRune(delimiter, r)
	})
	return rest >= 0
}
