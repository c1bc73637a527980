package bake

import "strings"

// Placement describes where a reference sits on its line.
type Placement struct {
	// Inline is set when the reference shares its line with other text.
	Inline bool
	// InList is set when the reference is the sole content of a list
	// bullet and bullet-spanning is enabled.
	InList bool
	// Indent is the bullet's leading whitespace when InList is set.
	Indent string
}

// Classify decides the placement of a reference from the text before and
// after its span.
func Classify(before, after string, bulletSpanning bool) Placement {
	line := before[strings.LastIndexByte(before, '\n')+1:]

	var p Placement
	if bulletSpanning {
		p.Indent, p.InList = bulletPrefix(line)
	}
	atLineStart := strings.Trim(line, " ") == ""
	p.Inline = !(p.InList || atLineStart) || !endsLine(after)
	if !p.InList {
		p.Indent = ""
	}
	return p
}

// endsLine reports whether only spaces follow up to the next line break.
func endsLine(after string) bool {
	rest := after
	if i := strings.IndexByte(after, '\n'); i >= 0 {
		rest = strings.TrimSuffix(after[:i], "\r")
	}
	return strings.Trim(rest, " ") == ""
}

// bulletPrefix matches `[ \t]*(-|*|+|N.|N)) +` against the whole of line
// and returns the leading whitespace.
func bulletPrefix(line string) (string, bool) {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	indent := line[:i]

	switch {
	case i < len(line) && strings.IndexByte("-*+", line[i]) >= 0:
		i++
	case i < len(line) && isDigit(line[i]):
		for i < len(line) && isDigit(line[i]) {
			i++
		}
		if i >= len(line) || (line[i] != '.' && line[i] != ')') {
			return "", false
		}
		i++
	default:
		return "", false
	}

	rest := line[i:]
	if rest == "" || strings.Trim(rest, " ") != "" {
		return "", false
	}
	return indent, true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
