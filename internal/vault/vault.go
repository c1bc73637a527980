// Package vault is a directory of markdown notes and their assets: it reads
// and writes notes, resolves link paths to notes, and supplies note
// metadata.
package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/natefinch/atomic"

	"github.com/agusx1211/notebake/internal/meta"
)

var (
	ErrNotFound    = errors.New("note not found")
	ErrOutsideRoot = errors.New("path is outside the vault")
)

// Vault is a note corpus rooted at a directory. Identities are
// vault-relative, slash-separated paths. The file index is rebuilt by
// Refresh; note contents are always read fresh.
type Vault struct {
	root   string
	filter *Filter
	log    *slog.Logger

	mu    sync.RWMutex
	files []string
	lower map[string]string
}

// Open indexes the vault at root. A nil filter indexes every non-hidden
// file.
func Open(root string, filter *Filter, log *slog.Logger) (*Vault, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve vault path %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat vault %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", root)
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	v := &Vault{root: abs, filter: filter, log: log}
	if err := v.Refresh(); err != nil {
		return nil, err
	}
	return v, nil
}

// Root returns the absolute vault directory.
func (v *Vault) Root() string { return v.root }

// Refresh rebuilds the file index.
func (v *Vault) Refresh() error {
	var files []string
	err := filepath.WalkDir(v.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			v.log.Debug("skipping unreadable path", "path", p, "error", err)
			return nil
		}
		if p == v.root {
			return nil
		}
		rel, err := filepath.Rel(v.root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if !v.filter.ShouldInclude(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to index vault %s: %w", v.root, err)
	}
	sort.Strings(files)

	lower := make(map[string]string, len(files))
	for _, f := range files {
		lower[strings.ToLower(f)] = f
	}

	v.mu.Lock()
	v.files, v.lower = files, lower
	v.mu.Unlock()

	v.log.Debug("indexed vault", "root", v.root, "files", len(files))
	return nil
}

// Files returns the indexed identities in sorted order.
func (v *Vault) Files() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]string(nil), v.files...)
}

// Exists reports whether id is indexed.
func (v *Vault) Exists(id string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.lower[strings.ToLower(cleanID(id))]
	return ok
}

// Lookup maps user input to an identity. It accepts an identity, a
// filesystem path inside the vault, or a link path such as "My Note".
func (v *Vault) Lookup(input string) (string, error) {
	id := cleanID(input)
	v.mu.RLock()
	exact, ok := v.lower[strings.ToLower(id)]
	v.mu.RUnlock()
	if ok {
		return exact, nil
	}

	if abs, err := filepath.Abs(input); err == nil {
		if _, statErr := os.Stat(abs); statErr == nil {
			rel, err := filepath.Rel(v.root, abs)
			if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				return "", fmt.Errorf("%s: %w", input, ErrOutsideRoot)
			}
			if found, ok := v.ResolveLink(filepath.ToSlash(rel), ""); ok {
				return found, nil
			}
		}
	}

	if found, ok := v.ResolveLink(input, ""); ok {
		return found, nil
	}
	return "", fmt.Errorf("%s: %w", input, ErrNotFound)
}

// ReadText returns the current content of a note.
func (v *Vault) ReadText(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(v.fullPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return "", err
	}
	return string(data), nil
}

// Write creates or overwrites a note atomically and returns its identity.
func (v *Vault) Write(ctx context.Context, id, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id = cleanID(id)
	if id == "" {
		return "", fmt.Errorf("empty output path: %w", ErrOutsideRoot)
	}
	full := v.fullPath(id)

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", id, err)
	}
	_, statErr := os.Stat(full)
	if err := atomic.WriteFile(full, strings.NewReader(text)); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", id, err)
	}
	if errors.Is(statErr, fs.ErrNotExist) {
		_ = os.Chmod(full, 0o644) // atomic.WriteFile leaves new files at 0600
	}

	v.mu.Lock()
	if _, known := v.lower[strings.ToLower(id)]; !known {
		v.files = append(v.files, id)
		sort.Strings(v.files)
		v.lower[strings.ToLower(id)] = id
	}
	v.mu.Unlock()

	v.log.Debug("wrote note", "id", id, "bytes", len(text))
	return id, nil
}

// ResolveLink finds the note a link path points to, the way a note editor
// would: relative paths from the source's folder, then vault-rooted paths,
// then the best file-name match. The ".md" extension is optional.
func (v *Vault) ResolveLink(linkpath, from string) (string, bool) {
	if linkpath == "" {
		return from, from != ""
	}

	lp := filepath.ToSlash(strings.TrimSpace(linkpath))
	cands := []string{lp}
	if !strings.EqualFold(path.Ext(lp), ".md") {
		cands = append(cands, lp+".md")
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	if strings.HasPrefix(lp, "./") || strings.HasPrefix(lp, "../") {
		for _, c := range cands {
			if id, ok := v.lower[strings.ToLower(path.Join(path.Dir(from), c))]; ok {
				return id, true
			}
		}
		return "", false
	}

	for _, c := range cands {
		if id, ok := v.lower[strings.ToLower(cleanID(c))]; ok {
			return id, true
		}
	}

	fromDir := path.Dir(from)
	best := ""
	for _, f := range v.files {
		lf := strings.ToLower(f)
		for _, c := range cands {
			lc := strings.ToLower(strings.TrimPrefix(c, "/"))
			if lf != lc && !strings.HasSuffix(lf, "/"+lc) {
				continue
			}
			if best == "" || betterMatch(f, best, fromDir) {
				best = f
			}
		}
	}
	return best, best != ""
}

// betterMatch prefers files in the source's folder, then shorter paths.
// v.files is sorted, so ties keep the lexically first file.
func betterMatch(f, best, fromDir string) bool {
	fSame, bestSame := path.Dir(f) == fromDir, path.Dir(best) == fromDir
	if fSame != bestSame {
		return fSame
	}
	return len(f) < len(best)
}

// Metadata parses a markdown note snapshot. Other files have none.
func (v *Vault) Metadata(id, text string) (*meta.Metadata, bool) {
	if !strings.EqualFold(path.Ext(id), ".md") {
		return nil, false
	}
	return meta.Parse(text), true
}

// ResolveSubpath resolves a "#heading" or "#^block" subpath.
func (v *Vault) ResolveSubpath(md *meta.Metadata, subpath string) (meta.Subpath, bool) {
	return meta.ResolveSubpath(md, subpath)
}

// AbsPath returns the absolute filesystem path of a vault file.
func (v *Vault) AbsPath(id string) (string, bool) {
	if id == "" {
		return "", false
	}
	return platformPath(v.fullPath(id)), true
}

func (v *Vault) fullPath(id string) string {
	return filepath.Join(v.root, filepath.FromSlash(cleanID(id)))
}

// cleanID normalizes an identity and pins it inside the vault.
func cleanID(id string) string {
	return strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(id)), "/")
}
