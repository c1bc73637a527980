// Package meta describes the structure of a markdown note: its references,
// headings, list items and annotated blocks, all addressed by byte offsets
// into the note's raw text.
package meta

import "strings"

// Kind tells a plain link apart from an embed.
type Kind uint8

const (
	Link Kind = iota
	Embed
)

func (k Kind) String() string {
	if k == Embed {
		return "embed"
	}
	return "link"
}

// NoParent is the Parent value of a top-level list item.
const NoParent = -1

// Span is a half-open byte range [Start, End) in a note's raw text.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Within reports whether s lies entirely inside [lo, hi).
func (s Span) Within(lo, hi int) bool { return s.Start >= lo && s.End <= hi }

// Reference is one link or embed occurrence.
type Reference struct {
	Kind    Kind
	Target  string // raw target text, e.g. "Note#Heading"
	Display string // alias text; empty when none was given
	Span
}

// Heading is an ATX or setext heading. Start is the offset of its line.
type Heading struct {
	Text  string
	Level int
	Start int
}

// ListItem is one bullet or ordered item. End covers the item's own
// content only; nested items are separate entries that point back through
// Parent.
type ListItem struct {
	Start  int // offset of the list marker
	End    int
	Line   int
	Parent int // Line of the enclosing item, or NoParent
	Indent int // column of the list marker
}

// Block is a chunk of text annotated with a trailing "^id".
type Block struct {
	ID    string
	Start int
	End   int
	Item  int // index into Metadata.ListItems, -1 for a paragraph
}

// Metadata is everything the flattening engine needs to know about a note.
type Metadata struct {
	Links     []Reference
	Embeds    []Reference
	Headings  []Heading
	ListItems []ListItem
	Blocks    map[string]Block // keyed by lower-cased id
}

// Block looks up a block by id, ignoring case.
func (m *Metadata) Block(id string) (Block, bool) {
	b, ok := m.Blocks[strings.ToLower(id)]
	return b, ok
}

// ParseLinktext splits a raw reference target into the note path and the
// subpath, which keeps its leading '#'.
func ParseLinktext(link string) (path, subpath string) {
	link = strings.TrimSpace(link)
	i := strings.IndexByte(link, '#')
	if i < 0 {
		return link, ""
	}
	return strings.TrimSpace(link[:i]), link[i:]
}
