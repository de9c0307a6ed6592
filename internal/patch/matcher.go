package patch

import (
	"regexp"
	"strings"
)

// A matcher knows how to soft-match one syntactic category of anchor text
// against a candidate source line. Matchers are tried in order; the first
// whose Applies reports true decides the outcome. New categories can be added
// without touching existing ones.
type matcher struct {
	name    string
	applies func(anchor string) bool
	match   func(anchor, line string) bool
}

var matchers = []matcher{
	{name: "declaration", applies: isDeclarationAnchor, match: matchDeclaration},
	{name: "definition", applies: isDefinitionAnchor, match: matchDefinition},
	{name: "accessor", applies: isAccessorAnchor, match: matchAccessor},
	{name: "constant", applies: isConstantAnchor, match: matchConstant},
	{name: "fieldvar", applies: isFieldVarAnchor, match: matchFieldVar},
	{name: "tokens", applies: func(string) bool { return true }, match: matchTokens},
}

// SoftMatch reports whether the anchor plausibly refers to the given line,
// using the first matcher whose shape fits the anchor text.
func SoftMatch(anchor, line string) bool {
	anchor = strings.TrimSpace(anchor)
	for _, m := range matchers {
		if m.applies(anchor) {
			return m.match(anchor, line)
		}
	}
	return false
}

// Declaration-like anchors: "class GameObj", "module Lich".

func isDeclarationAnchor(anchor string) bool {
	return strings.HasPrefix(anchor, "class ") || strings.HasPrefix(anchor, "module ")
}

func matchDeclaration(anchor, line string) bool {
	fields := strings.SplitN(anchor, " ", 2)
	if len(fields) < 2 {
		return false
	}
	keyword := fields[0]
	name := strings.TrimSpace(strings.SplitN(fields[1], "(", 2)[0])
	if name == "" {
		return false
	}
	re := regexp.MustCompile(`^\s*` + keyword + `\s+` + regexp.QuoteMeta(name) + `\b`)
	return re.MatchString(line)
}

// Definition-like anchors: "def method_name", "def self.method",
// "def ClassName.method". The bare method name may carry a trailing ?, ! or =
// in the source, and "[]" is the index operator.

func isDefinitionAnchor(anchor string) bool {
	return strings.HasPrefix(anchor, "def ")
}

func matchDefinition(anchor, line string) bool {
	sig := strings.TrimSpace(strings.SplitN(anchor[4:], "(", 2)[0])
	if sig == "" {
		return false
	}

	name := sig
	if i := strings.LastIndex(sig, "."); i >= 0 {
		name = sig[i+1:]
	}

	// "def method" must also match "def self.method" and "def Class.method",
	// and vice versa.
	var pattern string
	if name == "[]" {
		pattern = `\bdef\s+(?:(?:self|\w+)\.)?\[\]`
	} else {
		pattern = `\bdef\s+(?:(?:self|\w+)\.)?` + regexp.QuoteMeta(name) + `[?!=]?`
	}
	if regexp.MustCompile(pattern).MatchString(line) {
		return true
	}

	// Exact fallback on the full original signature
	return strings.Contains(line, "def "+sig)
}

// Attribute-accessor anchors: "attr_reader :mana", "attr_accessor".

func isAccessorAnchor(anchor string) bool {
	return strings.HasPrefix(anchor, "attr_")
}

func matchAccessor(anchor, line string) bool {
	parts := strings.Fields(anchor)
	if len(parts) == 0 {
		return false
	}
	attrType := parts[0]
	if len(parts) == 1 {
		return strings.Contains(line, attrType)
	}
	symbol := strings.TrimPrefix(parts[1], ":")
	re := regexp.MustCompile(attrType + `\s+:` + regexp.QuoteMeta(symbol) + `\b`)
	return re.MatchString(line)
}

// Constant anchors: "CONSTANT_NAME" or "CONSTANT_NAME = value".

func isConstantAnchor(anchor string) bool {
	cleaned := strings.TrimSpace(strings.NewReplacer("_", "", "=", "").Replace(anchor))
	if cleaned == "" {
		return false
	}
	hasUpper := false
	for _, r := range cleaned {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasUpper = true
		}
	}
	return hasUpper
}

func matchConstant(anchor, line string) bool {
	name := strings.TrimSpace(strings.SplitN(anchor, "=", 2)[0])
	if name == "" {
		return false
	}
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\s*=`)
	return re.MatchString(line)
}

// Field-variable anchors: "@var" or "@@var", matched against a plain or
// ||= assignment.

func isFieldVarAnchor(anchor string) bool {
	return strings.HasPrefix(anchor, "@")
}

func matchFieldVar(anchor, line string) bool {
	fields := strings.Fields(anchor)
	if len(fields) == 0 {
		return false
	}
	name := strings.TrimSpace(strings.SplitN(fields[0], "=", 2)[0])
	if name == "" {
		return false
	}
	re := regexp.MustCompile(regexp.QuoteMeta(name) + `\s*(=|\|\|=)`)
	return re.MatchString(line)
}

// Token fallback: every whitespace token of the anchor (parameters dropped)
// must appear somewhere in the line.

func matchTokens(anchor, line string) bool {
	cleaned := strings.TrimSpace(strings.SplitN(anchor, "(", 2)[0])
	tokens := strings.Fields(cleaned)
	if len(tokens) == 0 {
		return false
	}
	for _, token := range tokens {
		if !strings.Contains(line, token) {
			return false
		}
	}
	return true
}
