package cdl

import (
	"regexp"
	"strings"
)

// MaxInputLen caps the raw expression length before preprocessing.
const MaxInputLen = 5000

var (
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	definitionRe   = regexp.MustCompile(`^@(\w+)\s*=\s*(.+)$`)
	referenceRe    = regexp.MustCompile(`\$(\w+)`)
)

// Definition is one @name = body macro, kept in source order.
type Definition struct {
	Name string
	Body string
}

// Preprocessed is the output of the cleanup pass that runs before lexing.
type Preprocessed struct {
	Text        string
	Definitions []Definition
	DocComments []string
}

// substitute replaces every $name (not followed by a word character) with
// its resolved body.
func substitute(text string, defs []Definition) string {
	for _, d := range defs {
		re := regexp.MustCompile(`\$` + d.Name + `\b`)
		text = re.ReplaceAllLiteralString(text, d.Body)
	}
	return text
}

// Preprocess strips comments, collects #! doc lines, resolves @name
// definitions, and substitutes $name references. Definitions may refer to
// earlier definitions; any reference left unresolved in the remaining body
// is an error.
func Preprocess(src string) (*Preprocessed, error) {
	if strings.TrimSpace(src) == "" {
		return nil, ErrEmptyInput
	}
	if len(src) > MaxInputLen {
		return nil, ErrInputTooLong
	}

	// Doc comment lines (#!) contribute their trimmed remainder and vanish.
	var docs []string
	var kept []string
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#!") {
			docs = append(docs, strings.TrimSpace(trimmed[2:]))
			continue
		}
		kept = append(kept, line)
	}
	text := strings.Join(kept, "\n")

	// Block comments, then line comments.
	text = blockCommentRe.ReplaceAllString(text, "")
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		lines = append(lines, line)
	}

	// Definition lines resolve against earlier definitions; other lines
	// stay for the final substitution pass.
	var defs []Definition
	var body []string
	for _, line := range lines {
		m := definitionRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			body = append(body, line)
			continue
		}
		defs = append(defs, Definition{Name: m[1], Body: substitute(strings.TrimSpace(m[2]), defs)})
	}

	resolved := substitute(strings.Join(body, "\n"), defs)
	if m := referenceRe.FindStringSubmatch(resolved); m != nil {
		return nil, &UnresolvedReferenceError{Name: m[1]}
	}

	resolved = strings.TrimSpace(resolved)
	if resolved == "" {
		return nil, ErrEmptyInput
	}
	return &Preprocessed{Text: resolved, Definitions: defs, DocComments: docs}, nil
}
