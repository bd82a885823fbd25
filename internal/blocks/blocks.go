// Package blocks parses fenced "family-tree" code blocks for relationship
// statements. Blocks are an alternative to frontmatter stubs for recording
// edges, useful in overview notes that describe many relationships at once:
//
//	```family-tree
//	# wedding of 1985
//	spouse: john_doe -- jane_doe
//	parent: john_doe -> alice_doe
//	sibling: alice_doe -- bob_doe
//	```
//
// Person definitions inside blocks are ignored; person data comes from note
// frontmatter. Statements reference persons by id directly.
package blocks

import (
	"regexp"
	"strings"

	"github.com/GreedyA1/obsidian-family-tree/internal/identity"
	"github.com/GreedyA1/obsidian-family-tree/internal/tree"
)

var (
	codeBlockRe = regexp.MustCompile("```family-tree\n([\\s\\S]*?)```")

	// spouse: john_doe -- jane_doe
	spouseRe = regexp.MustCompile(`^spouse:\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*--\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*$`)
	// parent: john_doe -> alice_doe
	parentRe = regexp.MustCompile(`^parent:\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*->\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*$`)
	// sibling: alice_doe -- bob_doe
	siblingRe = regexp.MustCompile(`^sibling:\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*--\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*$`)

	personStartRe = regexp.MustCompile(`^person\s+[a-zA-Z_][a-zA-Z0-9_]*:\s*$`)
	commentRe     = regexp.MustCompile(`^\s*#`)
)

// ParseContent extracts relationships from every family-tree block in the
// note content. Lines that match no statement are skipped; a malformed line
// never fails the parse. Edge ids use the same derivation as stub
// reconciliation, so block edges deduplicate against stub edges, and
// symmetric pairs are canonically ordered before the id is computed.
func ParseContent(content, notePath string) []tree.Relationship {
	var rels []tree.Relationship

	for _, m := range codeBlockRe.FindAllStringSubmatchIndex(content, -1) {
		block := content[m[2]:m[3]]
		startLine := strings.Count(content[:m[0]], "\n") + 1
		rels = append(rels, parseBlock(block, notePath, startLine)...)
	}

	return rels
}

func parseBlock(block, notePath string, startLine int) []tree.Relationship {
	var rels []tree.Relationship

	for i, line := range strings.Split(block, "\n") {
		lineNum := startLine + i + 1

		if commentRe.MatchString(line) || strings.TrimSpace(line) == "" {
			continue
		}
		// Person definitions and their indented properties belong to
		// frontmatter now.
		if personStartRe.MatchString(line) || strings.HasPrefix(line, "  ") {
			continue
		}

		if rel, ok := parseStatement(line, notePath, lineNum); ok {
			rels = append(rels, rel)
		}
	}

	return rels
}

func parseStatement(line, notePath string, lineNum int) (tree.Relationship, bool) {
	if m := spouseRe.FindStringSubmatch(line); m != nil {
		return symmetric(tree.RelSpouse, m[1], m[2], notePath, lineNum), true
	}
	if m := parentRe.FindStringSubmatch(line); m != nil {
		return tree.Relationship{
			ID:         identity.RelationshipID(string(tree.RelParent), m[1], m[2]),
			Type:       tree.RelParent,
			Person1ID:  m[1],
			Person2ID:  m[2],
			SourceFile: notePath,
			SourceLine: lineNum,
		}, true
	}
	if m := siblingRe.FindStringSubmatch(line); m != nil {
		return symmetric(tree.RelSibling, m[1], m[2], notePath, lineNum), true
	}
	return tree.Relationship{}, false
}

func symmetric(t tree.RelationshipType, idA, idB, notePath string, lineNum int) tree.Relationship {
	p1, p2 := identity.OrderSymmetric(idA, idB)
	return tree.Relationship{
		ID:         identity.RelationshipID(string(t), p1, p2),
		Type:       t,
		Person1ID:  p1,
		Person2ID:  p2,
		SourceFile: notePath,
		SourceLine: lineNum,
	}
}
