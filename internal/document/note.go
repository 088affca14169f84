// Package document reads the Markdown notes attachments are embedded in:
// their front-matter, first heading and embeds.
package document

import (
	"path"
	"strings"

	"pasterename/internal/template"
)

// ImageNameKeyField is the front-matter key read into {{imageNameKey}}.
const ImageNameKeyField = "imageNameKey"

// Note is a loaded Markdown note.
type Note struct {
	Path         string // vault-relative, forward slashes
	Content      string
	Frontmatter  map[string]any
	FirstHeading string
	Embeds       []Embed

	bodyStart int
}

func newNote(notePath, content string) (*Note, error) {
	n := &Note{Path: notePath, Content: content, Frontmatter: map[string]any{}}

	var err error
	body := content
	if raw, rest, ok := splitFrontmatter(content); ok {
		body = rest
		n.bodyStart = len(content) - len(rest)
		n.Frontmatter, err = parseFrontmatter(raw)
	}

	// The body is parsed even when the front-matter is malformed.
	n.FirstHeading = firstHeading(body)
	n.Embeds = parseEmbeds(body)
	return n, err
}

// Body returns the content after the front-matter block.
func (n *Note) Body() string {
	return n.Content[n.bodyStart:]
}

// Basename returns the note file name without its ".md" extension.
func (n *Note) Basename() string {
	return strings.TrimSuffix(path.Base(n.Path), path.Ext(n.Path))
}

// Dir returns the vault-relative directory of the note, "" at the vault
// root.
func (n *Note) Dir() string {
	dir := path.Dir(n.Path)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

// Variables returns the template variables describing this note.
func (n *Note) Variables() template.Variables {
	dir := n.Dir()
	dirName := ""
	if dir != "" {
		dirName = path.Base(dir)
	}
	return template.Variables{
		template.VarFileName:     n.Basename(),
		template.VarDirName:      dirName,
		template.VarDirPath:      dir,
		template.VarImageNameKey: template.FrontmatterString(n.Frontmatter, ImageNameKeyField),
		template.VarFirstHeading: n.FirstHeading,
	}
}

// replaceLink substitutes newText for every occurrence of oldText in the
// body and re-reads the embeds. It returns the number of replacements.
func (n *Note) replaceLink(oldText, newText string) int {
	body := n.Body()
	count := strings.Count(body, oldText)
	if count == 0 || oldText == newText {
		return 0
	}
	body = strings.ReplaceAll(body, oldText, newText)
	n.Content = n.Content[:n.bodyStart] + body
	n.Embeds = parseEmbeds(body)
	return count
}
