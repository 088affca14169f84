package document

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// splitFrontmatter separates a leading "---" fenced YAML block from the
// body. ok is false when the note has no complete front-matter block.
func splitFrontmatter(content string) (raw, body string, ok bool) {
	first, rest, found := cutLine(content)
	if !found || strings.TrimRight(first, " \t") != "---" {
		return "", content, false
	}

	start := len(content) - len(rest)
	offset := 0
	for rest != "" {
		line, next, _ := cutLine(rest)
		if t := strings.TrimRight(line, " \t"); t == "---" || t == "..." {
			return content[start : start+offset], next, true
		}
		offset += len(rest) - len(next)
		rest = next
	}
	return "", content, false
}

// cutLine returns the first line without its terminator.
func cutLine(s string) (line, rest string, found bool) {
	line, rest, found = strings.Cut(s, "\n")
	return strings.TrimSuffix(line, "\r"), rest, found
}

// parseFrontmatter decodes raw YAML into a map. Anything but a mapping at
// the top level is an error.
func parseFrontmatter(raw string) (map[string]any, error) {
	fm := map[string]any{}
	if strings.TrimSpace(raw) == "" {
		return fm, nil
	}
	if err := yaml.Unmarshal([]byte(raw), &fm); err != nil {
		return map[string]any{}, err
	}
	if fm == nil {
		fm = map[string]any{}
	}
	return fm, nil
}
