package meta

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var (
	frontMatterRE = regexp.MustCompile(`^---\r?\n(?:[\s\S]*?\r?\n)?---[ \t]*(?:\r?\n|$)`)
	wikiLinkRE    = regexp.MustCompile(`(!?)\[\[([^\[\]\r\n]+)\]\]`)
	mdLinkRE      = regexp.MustCompile(`(!?)\[([^\[\]\r\n]*)\]\((?:<([^<>\r\n]+)>|([^()\s]+))\)`)
	schemeRE      = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*:`)
	blockIDRE     = regexp.MustCompile(`(?:^|\s)\^([A-Za-z0-9-]+)$`)
)

// FrontMatterLen returns the length of the leading "---" front matter block
// including its closing line break, or 0 when there is none.
func FrontMatterLen(s string) int {
	if loc := frontMatterRE.FindStringIndex(s); loc != nil {
		return loc[1]
	}
	return 0
}

// Parse builds the metadata record of a markdown note. All offsets refer
// to src as given.
func Parse(src string) *Metadata {
	body := []byte(src)
	if n := FrontMatterLen(src); n > 0 {
		// Blank the front matter so goldmark does not read it as a thematic
		// break plus setext heading. Offsets are preserved.
		for i := 0; i < n; i++ {
			if body[i] != '\n' && body[i] != '\r' {
				body[i] = ' '
			}
		}
	}

	p := &parser{
		src:   body,
		lines: lineStarts(body),
		md:    &Metadata{Blocks: make(map[string]Block)},
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(body))
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			p.heading(node)
		case *ast.ListItem:
			p.listItem(node)
		case *ast.Paragraph:
			if _, inItem := node.Parent().(*ast.ListItem); !inItem {
				p.paragraph(node)
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
			if s, ok := blockRange(n); ok {
				p.code = append(p.code, s)
			}
			return ast.WalkSkipChildren, nil
		case *ast.CodeSpan:
			if s, ok := codeSpanRange(node); ok {
				p.code = append(p.code, s)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	p.references()
	return p.md
}

type parser struct {
	src   []byte
	lines []int
	code  []Span
	md    *Metadata

	// itemLines maps goldmark list items to their line numbers so nested
	// items can find their parent.
	itemLines map[ast.Node]int
}

func (p *parser) heading(n *ast.Heading) {
	lines := n.Lines()
	if lines.Len() == 0 {
		return
	}
	start := p.lineStart(lines.At(0).Start)
	p.md.Headings = append(p.md.Headings, Heading{
		Text:  strings.TrimSpace(string(lines.Value(p.src))),
		Level: n.Level,
		Start: start,
	})
}

func (p *parser) listItem(n *ast.ListItem) {
	first, last := -1, -1
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if _, nested := c.(*ast.List); nested {
			continue
		}
		if s, ok := blockRange(c); ok {
			if first < 0 {
				first = s.Start
			}
			last = s.End
		}
	}
	if first < 0 {
		return
	}

	lineStart := p.lineStart(first)
	indent := 0
	for lineStart+indent < len(p.src) && (p.src[lineStart+indent] == ' ' || p.src[lineStart+indent] == '\t') {
		indent++
	}

	item := ListItem{
		Start:  lineStart + indent,
		End:    p.trimRight(last),
		Line:   p.lineOf(lineStart),
		Parent: NoParent,
		Indent: indent,
	}
	if list := n.Parent(); list != nil {
		if parent, ok := list.Parent().(*ast.ListItem); ok {
			if line, known := p.itemLines[parent]; known {
				item.Parent = line
			}
		}
	}
	if p.itemLines == nil {
		p.itemLines = make(map[ast.Node]int)
	}
	p.itemLines[n] = item.Line

	p.md.ListItems = append(p.md.ListItems, item)
	p.block(item.Start, item.End, len(p.md.ListItems)-1)
}

func (p *parser) paragraph(n *ast.Paragraph) {
	s, ok := blockRange(n)
	if !ok {
		return
	}
	p.block(p.lineStart(s.Start), p.trimRight(s.End), -1)
}

func (p *parser) block(start, end, item int) {
	if end <= start {
		return
	}
	m := blockIDRE.FindSubmatch(p.src[start:end])
	if m == nil {
		return
	}
	id := string(m[1])
	p.md.Blocks[strings.ToLower(id)] = Block{ID: id, Start: start, End: end, Item: item}
}

// references scans for wiki links and markdown links outside code.
func (p *parser) references() {
	var found []Reference

	for _, m := range wikiLinkRE.FindAllSubmatchIndex(p.src, -1) {
		inner := string(p.src[m[4]:m[5]])
		target, display, _ := strings.Cut(inner, "|")
		target = strings.TrimSpace(strings.TrimSuffix(target, `\`))
		if target == "" {
			continue
		}
		found = append(found, Reference{
			Kind:    kindOf(m[3] > m[2]),
			Target:  target,
			Display: strings.TrimSpace(display),
			Span:    Span{Start: m[0], End: m[1]},
		})
	}

	for _, m := range mdLinkRE.FindAllSubmatchIndex(p.src, -1) {
		var dest string
		if m[6] >= 0 {
			dest = string(p.src[m[6]:m[7]])
		} else {
			dest = string(p.src[m[8]:m[9]])
		}
		if dest == "" || schemeRE.MatchString(dest) {
			continue
		}
		if unescaped, err := url.PathUnescape(dest); err == nil {
			dest = unescaped
		}
		found = append(found, Reference{
			Kind:    kindOf(m[3] > m[2]),
			Target:  dest,
			Display: strings.TrimSpace(string(p.src[m[4]:m[5]])),
			Span:    Span{Start: m[0], End: m[1]},
		})
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].Start < found[j].Start })

	end := -1
	for _, ref := range found {
		if ref.Start < end || p.inCode(ref.Span) {
			continue
		}
		end = ref.End
		if ref.Kind == Embed {
			p.md.Embeds = append(p.md.Embeds, ref)
		} else {
			p.md.Links = append(p.md.Links, ref)
		}
	}
}

func (p *parser) inCode(s Span) bool {
	for _, c := range p.code {
		if s.Start < c.End && c.Start < s.End {
			return true
		}
	}
	return false
}

func (p *parser) lineStart(off int) int {
	return p.lines[p.lineOf(off)]
}

func (p *parser) lineOf(off int) int {
	return sort.Search(len(p.lines), func(i int) bool { return p.lines[i] > off }) - 1
}

func (p *parser) trimRight(end int) int {
	for end > 0 {
		switch p.src[end-1] {
		case '\n', '\r', ' ', '\t':
			end--
			continue
		}
		break
	}
	return end
}

func kindOf(embed bool) Kind {
	if embed {
		return Embed
	}
	return Link
}

func lineStarts(src []byte) []int {
	starts := []int{0}
	for i, c := range src {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// blockRange returns the byte range covered by the lines of n and its
// block descendants.
func blockRange(n ast.Node) (Span, bool) {
	s := Span{Start: -1, End: -1}
	var visit func(n ast.Node)
	visit = func(n ast.Node) {
		if n.Type() != ast.TypeBlock {
			return
		}
		if lines := n.Lines(); lines != nil {
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				if s.Start < 0 || seg.Start < s.Start {
					s.Start = seg.Start
				}
				if seg.Stop > s.End {
					s.End = seg.Stop
				}
			}
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			visit(c)
		}
	}
	visit(n)
	return s, s.Start >= 0
}

func codeSpanRange(n *ast.CodeSpan) (Span, bool) {
	s := Span{Start: -1, End: -1}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		t, ok := c.(*ast.Text)
		if !ok {
			continue
		}
		if s.Start < 0 {
			s.Start = t.Segment.Start - 1
		}
		s.End = t.Segment.Stop + 1
	}
	return s, s.Start >= 0
}
