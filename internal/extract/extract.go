package extract

import (
	"encoding/json"
	"errors"
	"log"
	"regexp"
	"strings"
)

// ErrNoDirectives indicates that no extraction strategy produced a parseable
// directive list. Callers should persist the raw response for inspection
// rather than dropping it.
var ErrNoDirectives = errors.New("extract: no parseable directive list in response")

var (
	jsonBlockRegex      = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	greedyArrayRegex    = regexp.MustCompile(`(?s)\[\s*\{.*\}\s*\]`)
	nonGreedyArrayRegex = regexp.MustCompile(`(?s)\[\s*\{.*?\}\s*\]`)
)

type attempt struct {
	strategy string
	text     string
}

// Directives extracts the JSON directive array from a free-form provider
// response. Strategies are tried in order, first success wins:
//
//  1. contents of a ```json fenced code block
//  2. widest [{...}] array match
//  3. narrowest [{...}] array match, skipped if identical to (2)
//  4. the entire trimmed response
//
// Each candidate is run through SanitizeEscapes before parsing. An empty
// array is a valid result meaning the file has nothing to document.
func Directives(response string) ([]Directive, error) {
	var attempts []attempt

	if m := jsonBlockRegex.FindStringSubmatch(response); m != nil {
		attempts = append(attempts, attempt{"json code block", strings.TrimSpace(m[1])})
	}

	var greedy string
	if m := greedyArrayRegex.FindString(response); m != "" {
		greedy = m
		attempts = append(attempts, attempt{"greedy array match", m})
	}

	if m := nonGreedyArrayRegex.FindString(response); m != "" && m != greedy {
		attempts = append(attempts, attempt{"non-greedy array match", m})
	}

	if trimmed := strings.TrimSpace(response); trimmed != "" {
		attempts = append(attempts, attempt{"raw response", trimmed})
	}

	for _, a := range attempts {
		directives, ok := parseList(a.text)
		if !ok {
			continue
		}
		log.Printf("[Extract] Strategy %q extracted %d directive(s)", a.strategy, len(directives))
		return directives, nil
	}

	log.Printf("[Extract] All %d extraction strategies failed", len(attempts))
	return nil, ErrNoDirectives
}

// parseList sanitizes a candidate and attempts a strict parse into a
// directive list. A JSON value that is not an array is a failure.
func parseList(candidate string) ([]Directive, bool) {
	sanitized := strings.TrimSpace(SanitizeEscapes(candidate))
	if !strings.HasPrefix(sanitized, "[") {
		return nil, false
	}

	var directives []Directive
	if err := json.Unmarshal([]byte(sanitized), &directives); err != nil {
		return nil, false
	}
	if directives == nil {
		directives = []Directive{}
	}
	return directives, true
}
