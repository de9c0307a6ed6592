package extract

// Directive is a single documentation edit proposed by an AI provider.
// Line numbers are 1-indexed and refer to the original, unmodified file.
// The indent field is advisory only; the applier measures real indentation
// from the matched line instead.
type Directive struct {
	LineNumber int    `json:"line_number"`
	Anchor     string `json:"anchor"`
	Indent     int    `json:"indent"`
	Comment    string `json:"comment"`
}
