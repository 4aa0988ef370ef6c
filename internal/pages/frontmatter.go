package pages

import (
	"bytes"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// yamlFormat decodes front matter with yaml.v3 so nested maps stay
// JSON-encodable.
var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// splitFrontMatter separates an optional leading YAML block from the markdown
// body. Input without a closed block, or with malformed YAML, is returned
// unchanged.
func splitFrontMatter(data []byte) (map[string]any, []byte) {
	trimmed := bytes.TrimLeft(data, "\r\n")
	if !hasFrontMatter(trimmed) {
		return nil, data
	}

	meta := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(trimmed), &meta, yamlFormat)
	if err != nil {
		return nil, data
	}
	if len(meta) == 0 {
		meta = nil
	}
	return meta, bytes.TrimLeft(body, "\r\n")
}

// hasFrontMatter reports whether data opens with a "---" line followed
// directly by a non-blank line, and a later line is exactly "---". A "---"
// followed by a blank line is a thematic break.
func hasFrontMatter(data []byte) bool {
	lines := bytes.SplitAfter(data, []byte("\n"))
	if len(lines) < 3 || !isDelimiter(lines[0]) {
		return false
	}
	if len(bytes.TrimSpace(lines[1])) == 0 {
		return false
	}
	for _, line := range lines[1:] {
		if isDelimiter(line) {
			return true
		}
	}
	return false
}

func isDelimiter(line []byte) bool {
	return string(bytes.TrimRight(line, "\r\n")) == "---"
}
