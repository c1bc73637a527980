package bake

import (
	"regexp"
	"strings"

	"github.com/agusx1211/notebake/internal/meta"
)

var (
	blockIDRE     = regexp.MustCompile(`(?m) +\^[^\s]+(\r?)$`)
	firstBulletRE = regexp.MustCompile(`^(?:[-*+]|[0-9]+[.)])[ \t]+`)
)

// StripFrontMatter removes a leading "---" delimited block together with
// the line break after its closing delimiter.
func StripFrontMatter(s string) string {
	return s[meta.FrontMatterLen(s):]
}

// StripBlockIDs removes trailing " ^id" annotations from every line.
func StripBlockIDs(s string) string {
	return blockIDRE.ReplaceAllString(s, "$1")
}

// StripFirstBullet removes one list marker and its spacing from the very
// start of s.
func StripFirstBullet(s string) string {
	if loc := firstBulletRE.FindStringIndex(s); loc != nil {
		return s[loc[1]:]
	}
	return s
}

// Dedent strips the leading whitespace of the first line from every line
// that starts with it.
func Dedent(s string) string {
	indent := s[:len(s)-len(strings.TrimLeft(s, " \t"))]
	if indent == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, indent)
	}
	return strings.Join(lines, "\n")
}

// ApplyIndent trims s and prefixes every line but the first with indent.
// The caller places the first line after the original bullet marker.
func ApplyIndent(s, indent string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", "\n"+indent)
}

// SanitizeBaked prepares a recursively baked note for splicing into its
// parent.
func SanitizeBaked(s string) string {
	return StripBlockIDs(StripFrontMatter(s))
}
