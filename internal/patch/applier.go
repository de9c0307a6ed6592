package patch

import (
	"log"
	"sort"
	"strings"

	"github.com/Nisugi/lich-5-docs-minimax-test/internal/extract"
)

// Apply inserts documentation blocks into the given lines and returns the new
// line slice. It is a pure function of its inputs: the same lines and
// directives always produce the same output, and neither argument is mutated.
//
// Directives are processed in descending declared-line order so that every
// insertion happens above positions still referenced by remaining directives;
// their original line numbers stay valid without any offset bookkeeping.
// Unresolvable or malformed directives are skipped individually, never
// failing the batch. A normalized anchor is placed at most once.
func Apply(original []string, directives []extract.Directive) []string {
	lines := make([]string, len(original))
	copy(lines, original)

	if len(directives) == 0 {
		return lines
	}

	sorted := make([]extract.Directive, len(directives))
	copy(sorted, directives)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LineNumber > sorted[j].LineNumber
	})

	claimed := make(map[int]bool)
	placedAnchors := make(map[string]bool)

	for _, d := range sorted {
		anchor := strings.TrimSpace(d.Anchor)
		comment := strings.TrimSpace(d.Comment)

		if d.LineNumber <= 0 || anchor == "" || comment == "" {
			log.Printf("[Apply] Skipping directive with missing fields (line=%d)", d.LineNumber)
			continue
		}

		normalized := strings.ToLower(anchor)
		if placedAnchors[normalized] {
			log.Printf("[Apply] Skipping duplicate anchor: %s", truncate(anchor, 40))
			continue
		}

		idx, ok := Resolve(lines, d.LineNumber, anchor, claimed)
		if !ok {
			continue
		}

		// Indentation comes from the matched line, never from the directive's
		// advisory indent field.
		anchorLine := lines[idx]
		indent := strings.Repeat(" ", len(anchorLine)-len(strings.TrimLeft(anchorLine, " \t")))

		block := make([]string, 0, strings.Count(comment, "\n")+1)
		for _, commentLine := range strings.Split(comment, "\n") {
			if strings.TrimSpace(commentLine) != "" {
				block = append(block, indent+commentLine)
			} else {
				block = append(block, "")
			}
		}

		lines = insertBlock(lines, idx, block)
		claimed[idx] = true
		placedAnchors[normalized] = true
	}

	return lines
}

// CommentLineCount reports how many lines a directive's comment expands to
// when inserted.
func CommentLineCount(comment string) int {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return 0
	}
	return strings.Count(comment, "\n") + 1
}

func insertBlock(lines []string, idx int, block []string) []string {
	out := make([]string, 0, len(lines)+len(block))
	out = append(out, lines[:idx]...)
	out = append(out, block...)
	out = append(out, lines[idx:]...)
	return out
}
