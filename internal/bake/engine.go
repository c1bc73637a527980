// Package bake flattens a note graph: references to other notes, or to
// headings and blocks inside them, are replaced by the referenced content
// until a single self-contained document remains.
package bake

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/agusx1211/notebake/internal/meta"
)

// Settings toggles what a bake expands.
type Settings struct {
	IncludeLinks     bool `yaml:"links" json:"links"`
	IncludeEmbeds    bool `yaml:"embeds" json:"embeds"`
	BakeInList       bool `yaml:"bake_in_list" json:"bake_in_list"`
	ConvertFileLinks bool `yaml:"convert_file_links" json:"convert_file_links"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		IncludeLinks:  true,
		IncludeEmbeds: true,
		BakeInList:    true,
	}
}

// Store reads notes and resolves link paths to note identities.
type Store interface {
	ReadText(ctx context.Context, id string) (string, error)
	ResolveLink(linkpath, from string) (string, bool)
}

// MetadataProvider describes the structure of a note snapshot.
type MetadataProvider interface {
	Metadata(id, text string) (*meta.Metadata, bool)
	ResolveSubpath(md *meta.Metadata, subpath string) (meta.Subpath, bool)
}

// Platform answers the OS-dependent questions of asset conversion.
type Platform interface {
	IsWindows() bool
	AbsPath(id string) (string, bool)
}

// Engine runs bakes against one store.
type Engine struct {
	store    Store
	meta     MetadataProvider
	platform Platform
	log      *slog.Logger
}

// NewEngine creates an engine. A nil logger discards output.
func NewEngine(store Store, mp MetadataProvider, platform Platform, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{store: store, meta: mp, platform: platform, log: log}
}

// Bake flattens the note id from the top.
func (e *Engine) Bake(ctx context.Context, id string, s Settings) (string, error) {
	return e.Flatten(ctx, id, "", Ancestors{}, s)
}

// Flatten returns the text of id, narrowed to subpath when it resolves,
// with every eligible reference replaced by its content.
func (e *Engine) Flatten(ctx context.Context, id, subpath string, ancestors Ancestors, s Settings) (string, error) {
	text, err := e.store.ReadText(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", id, err)
	}

	md, ok := e.meta.Metadata(id, text)
	if !ok || md == nil {
		return text, nil
	}

	region := Region{End: len(text)}
	finish := func(s string) string { return s }
	if subpath != "" {
		if sp, ok := e.meta.ResolveSubpath(md, subpath); ok {
			region = Extract(text, sp, md)
			text = text[region.Start:region.End]
			finish = region.Finish
		} else {
			e.log.Debug("subpath not found", "doc", id, "subpath", subpath)
		}
	}

	refs := references(md, s, region)
	if len(refs) == 0 {
		return finish(text), nil
	}

	path := ancestors.With(id)

	// Spans stay in original coordinates; drift tracks how far the buffer
	// has moved from them.
	drift := 0
	for _, ref := range refs {
		linkpath, sub := meta.ParseLinktext(ref.Target)
		target, ok := e.store.ResolveLink(linkpath, id)
		if !ok {
			e.log.Debug("unresolved reference", "doc", id, "target", ref.Target)
			continue
		}

		start := ref.Start - region.Start + drift
		end := ref.End - region.Start + drift
		if start < 0 || end > len(text) || start > end {
			continue
		}
		before, after := text[:start], text[end:]
		place := Classify(before, after, s.BakeInList)

		var replacement string
		switch {
		case !IsDocument(target):
			if !s.ConvertFileLinks {
				continue
			}
			abs, ok := e.platform.AbsPath(target)
			if !ok {
				continue
			}
			replacement = AssetLink(abs, e.platform.IsWindows())
			e.log.Debug("converted asset", "doc", id, "target", target)

		case path.Has(target) || place.Inline:
			replacement = collapsed(ref, linkpath)
			e.log.Debug("collapsed reference", "doc", id, "target", target, "inline", place.Inline)

		default:
			baked, err := e.Flatten(ctx, target, sub, path, s)
			if err != nil {
				return "", err
			}
			baked = SanitizeBaked(baked)
			if place.InList {
				baked = ApplyIndent(StripFirstBullet(baked), place.Indent)
			}
			replacement = baked
			e.log.Debug("expanded reference", "doc", id, "target", target, "subpath", sub, "depth", path.Len())
		}

		text = before + replacement + after
		drift += len(replacement) - ref.Len()
	}

	return finish(text), nil
}

// references collects the enabled references inside region, ordered by
// position.
func references(md *meta.Metadata, s Settings, region Region) []meta.Reference {
	var refs []meta.Reference
	add := func(list []meta.Reference) {
		for _, ref := range list {
			if ref.Within(region.Start, region.End) {
				refs = append(refs, ref)
			}
		}
	}
	if s.IncludeLinks {
		add(md.Links)
	}
	if s.IncludeEmbeds {
		add(md.Embeds)
	}
	sort.SliceStable(refs, func(i, j int) bool { return refs[i].Start < refs[j].Start })
	return refs
}

func collapsed(ref meta.Reference, linkpath string) string {
	switch {
	case ref.Display != "":
		return ref.Display
	case linkpath != "":
		return linkpath
	default:
		return ref.Target
	}
}
