package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Documentation tags whose comment lines are excluded from the content hash.
var docTags = []string{"@param", "@return", "@example", "@note", "@see", "@yield"}

// ComputeHash hashes source content with documentation comments stripped, so
// the hash changes only when actual code changes. Shebang and encoding
// comment lines are kept. The digest is sha256 truncated to 16 hex characters
// for storage economy.
func ComputeHash(content string) string {
	var codeLines []string

	for _, line := range strings.Split(content, "\n") {
		stripped := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(stripped, "#") && containsDocTag(stripped):
			// Documentation tag line, excluded
		case strings.HasPrefix(stripped, "#") && len(stripped) > 1 && stripped[1] == ' ':
			// Prose comment, excluded unless it carries file metadata
			if strings.HasPrefix(stripped, "#!") || strings.Contains(stripped, "coding:") || strings.Contains(stripped, "encoding:") {
				codeLines = append(codeLines, line)
			}
		default:
			codeLines = append(codeLines, line)
		}
	}

	sum := sha256.Sum256([]byte(strings.Join(codeLines, "\n")))
	return hex.EncodeToString(sum[:])[:16]
}

func containsDocTag(line string) bool {
	for _, tag := range docTags {
		if strings.Contains(line, tag) {
			return true
		}
	}
	return false
}
