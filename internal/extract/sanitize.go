package extract

import "strings"

// SanitizeEscapes repairs invalid escape sequences in a JSON text blob.
//
// Valid JSON escapes are \" \\ \/ \b \f \n \r \t and \uXXXX with exactly four
// hex digits. AI responses frequently contain regex-style escapes such as \d
// or \s inside string values; those are treated as an unintentionally
// unescaped backslash and the backslash is doubled so the following character
// survives the parse. A malformed \u sequence is double-escaped the same way.
//
// Single linear pass, no backtracking, never drops input characters.
func SanitizeEscapes(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	i := 0
	for i < len(text) {
		if text[i] == '\\' && i+1 < len(text) {
			next := text[i+1]

			switch {
			case strings.IndexByte(`"\/bfnrt`, next) >= 0:
				// Valid single-char escape
				b.WriteByte('\\')
				b.WriteByte(next)
				i += 2
			case next == 'u' && i+5 < len(text) && isHex4(text[i+2:i+6]):
				b.WriteString(`\u`)
				b.WriteString(text[i+2 : i+6])
				i += 6
			case next == 'u':
				// Invalid \u sequence, double-escape the backslash
				b.WriteString(`\\u`)
				i += 2
			default:
				// Invalid escape, double-escape the backslash
				b.WriteString(`\\`)
				b.WriteByte(next)
				i += 2
			}
			continue
		}

		b.WriteByte(text[i])
		i++
	}

	return b.String()
}

func isHex4(s string) bool {
	if len(s) != 4 {
		return false
	}
	for i := 0; i < 4; i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}
