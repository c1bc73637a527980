package meta

import "strings"

// Subpath is a resolved heading or block locator.
type Subpath interface {
	subpath()
}

// HeadingSubpath selects a heading's section. When HasEnd is false the
// section runs to the end of the note.
type HeadingSubpath struct {
	Heading Heading
	End     int
	HasEnd  bool
}

// BlockSubpath selects a "^id" block.
type BlockSubpath struct {
	Block Block
}

func (HeadingSubpath) subpath() {}
func (BlockSubpath) subpath()   {}

// ResolveSubpath resolves "#^id" to a block and "#A#B" to the heading B
// nested in the section of heading A.
func ResolveSubpath(m *Metadata, subpath string) (Subpath, bool) {
	if m == nil {
		return nil, false
	}

	var parts []string
	for _, p := range strings.Split(subpath, "#") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return nil, false
	}

	if id, ok := strings.CutPrefix(parts[0], "^"); ok {
		b, found := m.Block(id)
		if !found {
			return nil, false
		}
		return BlockSubpath{Block: b}, true
	}

	cur := -1
	from, limit := 0, len(m.Headings)
	for _, part := range parts {
		found := -1
		for i := from; i < limit; i++ {
			if headingMatches(m.Headings[i].Text, part) {
				found = i
				break
			}
		}
		if found < 0 {
			return nil, false
		}
		cur = found
		from = found + 1
		limit = sectionEnd(m.Headings, found)
	}

	hs := HeadingSubpath{Heading: m.Headings[cur]}
	if next := sectionEnd(m.Headings, cur); next < len(m.Headings) {
		hs.End = m.Headings[next].Start
		hs.HasEnd = true
	}
	return hs, true
}

// sectionEnd returns the index of the first heading after i whose level is
// the same or higher, or len(headings).
func sectionEnd(headings []Heading, i int) int {
	for j := i + 1; j < len(headings); j++ {
		if headings[j].Level <= headings[i].Level {
			return j
		}
	}
	return len(headings)
}

func headingMatches(text, want string) bool {
	return strings.EqualFold(strings.Join(strings.Fields(text), " "), strings.Join(strings.Fields(want), " "))
}
