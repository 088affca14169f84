package document

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"pasterename/internal/naming"
)

// LinkStyle is the syntax an embed was written in.
type LinkStyle int

const (
	// WikiLink is ![[target#sub|alias]].
	WikiLink LinkStyle = iota
	// MarkdownLink is ![alt](target).
	MarkdownLink
)

// Markdown destinations may hold one level of balanced parentheses, as in
// ![](a(b).png).
var (
	wikiEmbedRe     = regexp.MustCompile(`!\[\[([^\]]+)\]\]`)
	markdownEmbedRe = regexp.MustCompile(`!\[([^\]]*)\]\(((?:[^()\n]|\([^()\n]*\))+)\)`)
)

// Embed is one embedded link found in a note body.
type Embed struct {
	Raw     string // exactly as written
	Style   LinkStyle
	Target  string // decoded link path without subpath or alias
	Subpath string // "#..." suffix of wiki links
	Alias   string // wiki alias or Markdown alt text
	offset  int
}

// parseEmbeds returns the embeds of body in order of appearance. External
// URLs are not embeds of vault files and are left out.
func parseEmbeds(body string) []Embed {
	var embeds []Embed

	for _, loc := range wikiEmbedRe.FindAllStringSubmatchIndex(body, -1) {
		inner := body[loc[2]:loc[3]]
		e := Embed{Raw: body[loc[0]:loc[1]], Style: WikiLink, offset: loc[0]}
		if target, alias, ok := strings.Cut(inner, "|"); ok {
			inner, e.Alias = target, alias
		}
		if i := strings.IndexByte(inner, '#'); i >= 0 {
			inner, e.Subpath = inner[:i], inner[i:]
		}
		e.Target = strings.TrimSpace(inner)
		if e.Target != "" {
			embeds = append(embeds, e)
		}
	}

	for _, loc := range markdownEmbedRe.FindAllStringSubmatchIndex(body, -1) {
		target, ok := markdownTarget(body[loc[4]:loc[5]])
		if !ok {
			continue
		}
		embeds = append(embeds, Embed{
			Raw:    body[loc[0]:loc[1]],
			Style:  MarkdownLink,
			Target: target,
			Alias:  body[loc[2]:loc[3]],
			offset: loc[0],
		})
	}

	sort.SliceStable(embeds, func(i, j int) bool { return embeds[i].offset < embeds[j].offset })
	return embeds
}

// markdownTarget extracts the file path from the parenthesized part of a
// Markdown image, dropping any title and percent-decoding it.
func markdownTarget(dest string) (string, bool) {
	dest = strings.TrimSpace(dest)
	if strings.HasPrefix(dest, "<") {
		end := strings.IndexByte(dest, '>')
		if end < 0 {
			return "", false
		}
		dest = dest[1:end]
	} else if i := strings.IndexAny(dest, " \t"); i >= 0 {
		dest = dest[:i]
	}
	if dest == "" || strings.Contains(dest, "://") || strings.HasPrefix(dest, "data:") {
		return "", false
	}
	if i := strings.IndexByte(dest, '#'); i >= 0 {
		dest = dest[:i]
	}
	if decoded, err := url.PathUnescape(dest); err == nil {
		dest = decoded
	}
	return dest, dest != ""
}

// WithTarget renders the embed in its own style pointing at target.
func (e Embed) WithTarget(target string) string {
	if e.Style == MarkdownLink {
		return "![" + e.Alias + "](" + naming.Link(target) + ")"
	}
	s := "![[" + target + e.Subpath
	if e.Alias != "" {
		s += "|" + e.Alias
	}
	return s + "]]"
}
