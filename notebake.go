// Package notebake bakes a note, and everything it links or embeds, into
// one self-contained markdown document.
package notebake

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/agusx1211/notebake/internal/bake"
	"github.com/agusx1211/notebake/internal/report"
	"github.com/agusx1211/notebake/internal/vault"
)

var ErrInputNotFound = errors.New("input note not found")

type Settings = bake.Settings

func DefaultSettings() Settings { return bake.DefaultSettings() }

// Options restrict which vault files are visible to a bake.
type Options struct {
	Include        []string
	Exclude        []string
	IncludeIgnored bool
	Logger         *slog.Logger
}

// Opener hands a written file to whatever displays it.
type Opener func(absPath string) error

// Baker bakes notes of one vault. It is safe for concurrent use.
type Baker struct {
	vault *vault.Vault
	log   *slog.Logger
}

// Open indexes the vault at root.
func Open(root string, opts Options) (*Baker, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	filter, err := vault.NewFilter(root, opts.IncludeIgnored, opts.Include, opts.Exclude)
	if err != nil {
		return nil, fmt.Errorf("failed to create filter: %w", err)
	}
	v, err := vault.Open(root, filter, log)
	if err != nil {
		return nil, err
	}
	return &Baker{vault: v, log: log}, nil
}

// Root returns the absolute vault directory.
func (b *Baker) Root() string { return b.vault.Root() }

// Resolve maps user input (an identity, a path inside the vault or a
// note name) to a note identity.
func (b *Baker) Resolve(input string) (string, error) {
	id, err := b.vault.Lookup(input)
	if err != nil {
		if errors.Is(err, vault.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", input, ErrInputNotFound)
		}
		return "", err
	}
	return id, nil
}

// BakeToString returns the baked content of input.
func (b *Baker) BakeToString(ctx context.Context, input string, s Settings) (string, error) {
	_, baked, _, err := b.bake(ctx, input, s)
	return baked, err
}

// BakeWithSources bakes input and also returns every note the bake read.
func (b *Baker) BakeWithSources(ctx context.Context, input string, s Settings) (string, []report.Source, error) {
	_, baked, sources, err := b.bake(ctx, input, s)
	return baked, sources, err
}

// BakeToFile bakes input into output, or next to input when output is
// empty, and returns the written identity. Existing files are replaced.
func (b *Baker) BakeToFile(ctx context.Context, input, output string, s Settings) (string, error) {
	id, baked, _, err := b.bake(ctx, input, s)
	if err != nil {
		return "", err
	}
	if output == "" {
		output = DefaultOutput(id)
	}
	written, err := b.vault.Write(ctx, output, baked)
	if err != nil {
		return "", err
	}
	b.log.Info("baked note written", "input", input, "output", written)
	return written, nil
}

// BakeAndOpen writes the baked note and hands it to open.
func (b *Baker) BakeAndOpen(ctx context.Context, input, output string, s Settings, open Opener) (string, error) {
	written, err := b.BakeToFile(ctx, input, output, s)
	if err != nil {
		return "", err
	}
	if open == nil {
		return written, nil
	}
	abs, _ := b.vault.AbsPath(written)
	if err := open(abs); err != nil {
		return written, fmt.Errorf("failed to open %s: %w", written, err)
	}
	return written, nil
}

// CountWords bakes input and counts the words of the result.
func (b *Baker) CountWords(ctx context.Context, input string, s Settings) (int, error) {
	baked, err := b.BakeToString(ctx, input, s)
	if err != nil {
		return 0, err
	}
	return report.WordCount(baked), nil
}

// DefaultOutput is "<dir>/<name>.baked.md" for the note id "<dir>/<name>.md".
func DefaultOutput(id string) string {
	dir, base := path.Split(id)
	name := strings.TrimSuffix(base, path.Ext(base))
	return dir + name + ".baked.md"
}

func (b *Baker) bake(ctx context.Context, input string, s Settings) (string, string, []report.Source, error) {
	if err := b.vault.Refresh(); err != nil {
		return "", "", nil, err
	}
	id, err := b.Resolve(input)
	if err != nil {
		return "", "", nil, err
	}

	rec := &recorder{Vault: b.vault, reads: make(map[string]*report.Source)}
	engine := bake.NewEngine(rec, b.vault, b.vault, b.log)
	baked, err := engine.Bake(ctx, id, s)
	if err != nil {
		return "", "", nil, err
	}
	return id, baked, rec.sources(), nil
}

// recorder is the vault as seen by one bake; it remembers what was read.
type recorder struct {
	*vault.Vault

	mu    sync.Mutex
	order []string
	reads map[string]*report.Source
}

func (r *recorder) ReadText(ctx context.Context, id string) (string, error) {
	text, err := r.Vault.ReadText(ctx, id)
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if src, ok := r.reads[id]; ok {
		src.Reads++
		return text, nil
	}
	r.reads[id] = &report.Source{ID: id, Text: text, Reads: 1}
	r.order = append(r.order, id)
	return text, nil
}

func (r *recorder) sources() []report.Source {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]report.Source, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.reads[id])
	}
	return out
}
