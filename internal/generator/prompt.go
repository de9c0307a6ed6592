package generator

import (
	"fmt"
	"strings"
)

// SystemPrompt frames the model as a Ruby documentation writer that answers
// in JSON.
const SystemPrompt = `You are an expert Ruby documentation specialist.
Your task is to generate YARD-compatible documentation for Ruby code.
You will return JSON with documentation comments and their anchor points.`

// BuildUserPrompt produces the per-file prompt. The source is numbered line
// by line so the model can report exact insertion points, and the rules spell
// out the JSON contract and the escaping pitfalls models trip over.
func BuildUserPrompt(fileName, content string) string {
	var numbered strings.Builder
	for i, line := range strings.Split(content, "\n") {
		fmt.Fprintf(&numbered, "%4d: %s\n", i+1, line)
	}

	return fmt.Sprintf(`Analyze this Ruby file from the Lich5 project: **%s**

`+"```ruby\n%s```"+`

Generate **YARD-compatible** documentation for every public class, module, method, and constant.
The line numbers are shown at the start of each line (e.g., "  15: def method_name").

**CRITICAL RULES - READ CAREFULLY:**

1. **DO NOT DOCUMENT ALREADY-DOCUMENTED CODE**
   - If a method/class ALREADY has YARD comments (lines starting with # @param, # @return, etc.),
     DO NOT generate documentation for it
   - SKIP any code that already has documentation comments
   - Only document code WITHOUT existing YARD tags

2. **PARAMETER NAME RULES**
   - @param tags MUST exactly match the method's parameter names
   - For block parameters: Use "block" NOT "&block" (no ampersand symbol!)
   - For splat parameters (*args): Use "args" NOT "*args" (no asterisk!)
   - Parameter names must match what's in the def statement exactly

3. **VALIDATION BEFORE RETURNING**
   - Double-check each @param name matches the actual method parameter
   - Remove the & and * symbols from @param names
   - Ensure you're not documenting already-documented code

Return a JSON array where each entry contains:
- "line_number": The line number to insert before (1-indexed, counting from line 1)
- "anchor": A snippet of the line for validation (e.g., "class GameObj", "def initialize")
- "indent": The indentation level (number of spaces before the line)
- "comment": The YARD comment block as a single string with \n for newlines

Example output format:
`+"```json"+`
[
  {
    "line_number": 15,
    "anchor": "class GameObj",
    "indent": 0,
    "comment": "# Represents a game object\n# @example Creating a game object\n#   obj = GameObj.new"
  }
]
`+"```"+`

IMPORTANT:
- Return ONLY the JSON array, no other text
- Line numbers should match the ORIGINAL file (1-indexed)
- Anchors should be concise (just the key part like "def method_name" or "class ClassName")
- SKIP any code that already has YARD documentation (# @param, # @return, etc.)
- @param names MUST NOT include & or * symbols (use "block" not "&block", use "args" not "*args")
- CRITICAL: In the "comment" field, you MUST escape all special characters:
  * Double quotes MUST be escaped: use \" not "
  * Backslashes MUST be escaped: use \\ not \
  * Line breaks use \n (already escaped)
- Your JSON MUST be valid and parseable - test it mentally before returning
`, fileName, numbered.String())
}
