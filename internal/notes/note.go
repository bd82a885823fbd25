// Package notes translates between person notes on disk and the store's
// entity shapes. It is the only package that reads or writes note content.
//
// A person note is a markdown file with a YAML frontmatter header:
//
//	---
//	family-tree-person: true
//	firstName: John
//	surname: Doe
//	gender: male
//	relationships:
//	    - type: spouse
//	      person: '[[Jane Doe]]'
//	---
//
//	# John Doe
//
// The relationships list holds directional stubs; each canonical edge is
// stored redundantly as one stub in each participant's note. The free-form
// body below the header is preserved verbatim across frontmatter rewrites.
package notes

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/GreedyA1/obsidian-family-tree/internal/tree"
)

// Marker is the frontmatter field identifying a note as a person record.
const Marker = "family-tree-person"

var (
	// Obsidian tolerates CRLF headers, so the delimiter match does too.
	frontmatterRe = regexp.MustCompile(`(?s)^---\r?\n(.*?)\r?\n---`)
	wikiLinkRe    = regexp.MustCompile(`\[\[([^\]|]+)(?:\|[^\]]+)?\]\]`)
	fileNameRe    = regexp.MustCompile(`[\\/:*?"<>|]`)
)

// Frontmatter is the structured header of a person note.
type Frontmatter struct {
	Person        bool   `yaml:"family-tree-person"`
	FirstName     string `yaml:"firstName"`
	Surname       string `yaml:"surname"`
	Gender        string `yaml:"gender"`
	Relationships []Stub `yaml:"relationships,omitempty"`
}

// Stub is a one-directional relationship reference stored inside a note,
// pointing at another note by wiki link.
type Stub struct {
	Type   tree.StubType `yaml:"type"`
	Person string        `yaml:"person"`
}

// ParseFrontmatter extracts and decodes the frontmatter block from note
// content. Notes without a header, or with one that fails to decode, return
// ok=false; that is a parse-skip, not an error.
func ParseFrontmatter(content string) (*Frontmatter, bool) {
	m := frontmatterRe.FindStringSubmatch(content)
	if m == nil {
		return nil, false
	}

	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(m[1]), &fm); err != nil {
		return nil, false
	}
	return &fm, true
}

// RenderFrontmatter encodes fm as a delimited YAML header block.
func RenderFrontmatter(fm *Frontmatter) (string, error) {
	data, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("failed to encode frontmatter: %w", err)
	}
	return "---\n" + string(data) + "---", nil
}

// ReplaceFrontmatter rewrites the header block in place, leaving the body
// untouched. If the note has no header, a fresh one is synthesized and
// prepended rather than failing.
func ReplaceFrontmatter(content string, fm *Frontmatter) (string, error) {
	header, err := RenderFrontmatter(fm)
	if err != nil {
		return "", err
	}

	if frontmatterRe.MatchString(content) {
		return frontmatterRe.ReplaceAllLiteralString(content, header), nil
	}
	return header + "\n\n" + content, nil
}

// WikiLinkTarget extracts the target name from a "[[Target]]" or
// "[[Target|label]]" link.
func WikiLinkTarget(s string) (string, bool) {
	m := wikiLinkRe.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// WikiLink formats a note basename as a wiki link.
func WikiLink(basename string) string {
	return "[[" + basename + "]]"
}

// Basename returns the note's name without folder or extension, which is
// what wiki links refer to.
func Basename(notePath string) string {
	return strings.TrimSuffix(path.Base(notePath), ".md")
}

// SanitizeFileName strips characters that are invalid in note file names.
func SanitizeFileName(name string) string {
	return strings.TrimSpace(fileNameRe.ReplaceAllString(name, ""))
}
