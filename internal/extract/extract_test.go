package extract

import (
	"errors"
	"testing"
)

func TestDirectives_FencedCodeBlock(t *testing.T) {
	response := "Here is the documentation:\n```json\n" +
		`[{"line_number": 5, "anchor": "def greet", "indent": 2, "comment": "# Greets the user"}]` +
		"\n```\nLet me know if you need more."

	directives, err := Directives(response)
	if err != nil {
		t.Fatalf("Directives error: %v", err)
	}
	if len(directives) != 1 {
		t.Fatalf("want 1 directive, got %d", len(directives))
	}
	d := directives[0]
	if d.LineNumber != 5 || d.Anchor != "def greet" || d.Indent != 2 {
		t.Fatalf("unexpected directive: %+v", d)
	}
}

func TestDirectives_BareArray(t *testing.T) {
	response := `Some preamble text.
[
  {"line_number": 1, "anchor": "class Foo", "indent": 0, "comment": "# A class"},
  {"line_number": 9, "anchor": "def bar", "indent": 2, "comment": "# A method"}
]
Trailing commentary.`

	directives, err := Directives(response)
	if err != nil {
		t.Fatalf("Directives error: %v", err)
	}
	if len(directives) != 2 {
		t.Fatalf("want 2 directives, got %d", len(directives))
	}
}

func TestDirectives_EntireResponse(t *testing.T) {
	response := `[{"line_number": 3, "anchor": "MAX_SIZE", "indent": 0, "comment": "# Upper bound"}]`
	directives, err := Directives(response)
	if err != nil {
		t.Fatalf("Directives error: %v", err)
	}
	if len(directives) != 1 || directives[0].Anchor != "MAX_SIZE" {
		t.Fatalf("unexpected directives: %+v", directives)
	}
}

func TestDirectives_EmptyArrayIsValid(t *testing.T) {
	directives, err := Directives("```json\n[]\n```")
	if err != nil {
		t.Fatalf("Directives error: %v", err)
	}
	if directives == nil || len(directives) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", directives)
	}
}

func TestDirectives_InvalidEscapeRepaired(t *testing.T) {
	response := `[{"line_number": 2, "anchor": "def scan", "indent": 0, "comment": "# Matches \d+ tokens"}]`
	directives, err := Directives(response)
	if err != nil {
		t.Fatalf("Directives error: %v", err)
	}
	if directives[0].Comment != `# Matches \d+ tokens` {
		t.Fatalf("unexpected comment: %q", directives[0].Comment)
	}
}

func TestDirectives_HardFailure(t *testing.T) {
	cases := []string{
		"I could not generate documentation for this file.",
		`{"line_number": 1, "anchor": "class Foo"}`,
		"```json\nnot json at all\n```",
	}
	for _, response := range cases {
		if _, err := Directives(response); !errors.Is(err, ErrNoDirectives) {
			t.Fatalf("Directives(%q) error = %v, want ErrNoDirectives", response, err)
		}
	}
}

func TestDirectives_NonListJSONRejected(t *testing.T) {
	// A JSON object is valid JSON but not a directive list
	if _, err := Directives(`{"anchor": "class Foo"}`); !errors.Is(err, ErrNoDirectives) {
		t.Fatalf("expected ErrNoDirectives for object response, got %v", err)
	}
}
