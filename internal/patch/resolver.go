package patch

import (
	"log"
	"strings"
)

// nearWindow is how many lines on either side of the declared position count
// as a near miss rather than a distant match.
const nearWindow = 5

// Resolve finds the 0-indexed line to insert a comment block before.
//
// lineNumber is the 1-indexed position declared by the directive, anchor is
// the validation snippet, and claimed holds indices already used as insertion
// points in this pass. Resolution order:
//
//  1. bounds check on lineNumber
//  2. reject an already-claimed index
//  3. exact substring match at the declared line
//  4. soft match at the declared line
//  5. soft match within ±5 lines, then across the rest of the file
//
// Returns (index, true) on success.
func Resolve(lines []string, lineNumber int, anchor string, claimed map[int]bool) (int, bool) {
	expected := lineNumber - 1

	if expected < 0 || expected >= len(lines) {
		log.Printf("[Resolve] Line number %d out of bounds (file has %d lines)", lineNumber, len(lines))
		return 0, false
	}

	if claimed[expected] {
		log.Printf("[Resolve] Line %d already has an inserted block, skipping", lineNumber)
		return 0, false
	}

	if strings.Contains(lines[expected], anchor) {
		return expected, true
	}

	if SoftMatch(anchor, lines[expected]) {
		return expected, true
	}

	// Anchors are unique within a file, so searching the whole file is safe.
	// Nearby lines first, then the remainder in natural order.
	searchOrder := make([]int, 0, len(lines))
	seen := map[int]bool{expected: true}
	for offset := -nearWindow; offset <= nearWindow; offset++ {
		if offset == 0 {
			continue
		}
		idx := expected + offset
		if idx >= 0 && idx < len(lines) {
			searchOrder = append(searchOrder, idx)
			seen[idx] = true
		}
	}
	for idx := range lines {
		if !seen[idx] {
			searchOrder = append(searchOrder, idx)
		}
	}

	for _, idx := range searchOrder {
		if claimed[idx] {
			continue
		}
		if SoftMatch(anchor, lines[idx]) {
			offset := idx - expected
			if offset >= -nearWindow && offset <= nearWindow {
				log.Printf("[Resolve] Found anchor at line %d (expected %d, offset %+d)", idx+1, lineNumber, offset)
			} else {
				log.Printf("[Resolve] Distant match for anchor at line %d (expected %d, offset %+d)", idx+1, lineNumber, offset)
			}
			return idx, true
		}
	}

	log.Printf("[Resolve] Could not find anchor %q (expected line %d)", truncate(anchor, 50), lineNumber)
	return 0, false
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
