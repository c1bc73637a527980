package bake

import "github.com/agusx1211/notebake/internal/meta"

// Region is the part of a note selected by a subpath, in original
// coordinates.
type Region struct {
	Start  int
	End    int
	Dedent bool
}

// Finish applies the region's text transforms to its (possibly already
// spliced) text.
func (r Region) Finish(s string) string {
	if r.Dedent {
		s = Dedent(s)
	}
	return StripBlockIDs(s)
}

// Extract locates the region a resolved subpath designates.
func Extract(text string, sp meta.Subpath, md *meta.Metadata) Region {
	var r Region
	switch sp := sp.(type) {
	case meta.HeadingSubpath:
		r.Start, r.End = sp.Heading.Start, len(text)
		if sp.HasEnd {
			r.End = sp.End
		}

	case meta.BlockSubpath:
		b := sp.Block
		if b.Item < 0 || md == nil || b.Item >= len(md.ListItems) {
			r.Start, r.End = b.Start, b.End
			break
		}

		item := md.ListItems[b.Item]
		r.Start, r.End = item.Start-item.Indent, item.End
		r.Dedent = true

		lines := map[int]bool{item.Line: true}
		for _, next := range md.ListItems[b.Item+1:] {
			if !lines[next.Parent] {
				break
			}
			lines[next.Line] = true
			r.End = next.End
		}

	default:
		r.End = len(text)
	}

	r.Start = clamp(r.Start, 0, len(text))
	r.End = clamp(r.End, r.Start, len(text))
	return r
}

// ExtractSubpath returns the finished text of the region sp designates.
func ExtractSubpath(text string, sp meta.Subpath, md *meta.Metadata) string {
	r := Extract(text, sp, md)
	return r.Finish(text[r.Start:r.End])
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
