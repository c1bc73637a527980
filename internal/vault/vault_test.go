package vault

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func openTree(t *testing.T, files map[string]string) *Vault {
	t.Helper()
	v, err := Open(writeTree(t, files), nil, nil)
	require.NoError(t, err)
	return v
}

func TestOpenIndexesVisibleFiles(t *testing.T) {
	v := openTree(t, map[string]string{
		"a.md":                "a",
		"dir/b.md":            "b",
		"img/pic.png":         "png",
		".obsidian/app.json":  "{}",
		".hidden.md":          "x",
		"node_modules/x/y.md": "x",
		"dir/.trash/gone.md":  "x",
		"dir/sub/deep/c.md":   "c",
	})

	assert.Equal(t, []string{"a.md", "dir/b.md", "dir/sub/deep/c.md", "img/pic.png"}, v.Files())
	assert.True(t, v.Exists("A.md"))
	assert.False(t, v.Exists(".hidden.md"))
}

func TestOpenRejectsFile(t *testing.T) {
	root := writeTree(t, map[string]string{"a.md": "a"})
	_, err := Open(filepath.Join(root, "a.md"), nil, nil)
	assert.Error(t, err)
}

func TestFilterPatterns(t *testing.T) {
	root := writeTree(t, map[string]string{
		".gitignore":        "private/\n*.tmp\n",
		"a.md":              "a",
		"a.tmp":             "t",
		"private/secret.md": "s",
		"drafts/d.md":       "d",
		"notes/n.md":        "n",
		"notes/n.txt":       "n",
	})

	f, err := NewFilter(root, false, []string{"*.md"}, []string{"drafts/"})
	require.NoError(t, err)
	v, err := Open(root, f, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md", "notes/n.md"}, v.Files())

	f, err = NewFilter(root, true, nil, []string{"notes/*.txt"})
	require.NoError(t, err)
	v, err = Open(root, f, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md", "a.tmp", "drafts/d.md", "notes/n.md", "private/secret.md"}, v.Files())
}

func TestNewFilterRejectsBadPattern(t *testing.T) {
	_, err := NewFilter(t.TempDir(), false, []string{"[unclosed"}, nil)
	assert.Error(t, err)
}

func TestResolveLink(t *testing.T) {
	v := openTree(t, map[string]string{
		"Note.md":            "",
		"dir/Note.md":        "",
		"dir/other.md":       "",
		"deep/a/b/Target.md": "",
		"x/Target.md":        "",
		"img/pic.png":        "",
	})

	tests := []struct {
		name     string
		linkpath string
		from     string
		want     string
		ok       bool
	}{
		{"empty is self", "", "dir/other.md", "dir/other.md", true},
		{"exact without extension", "Note", "dir/other.md", "Note.md", true},
		{"case insensitive", "note", "x/Target.md", "Note.md", true},
		{"vault rooted path", "dir/Note", "Note.md", "dir/Note.md", true},
		{"relative path", "./Note", "dir/other.md", "dir/Note.md", true},
		{"parent path", "../Note.md", "dir/other.md", "Note.md", true},
		{"shortest name match", "Target", "Note.md", "x/Target.md", true},
		{"same folder wins", "Target", "deep/a/b/x.md", "deep/a/b/Target.md", true},
		{"asset", "pic.png", "Note.md", "img/pic.png", true},
		{"missing", "Nope", "Note.md", "", false},
		{"missing relative", "./Target", "Note.md", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := v.ResolveLink(tt.linkpath, tt.from)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookup(t *testing.T) {
	v := openTree(t, map[string]string{"dir/My Note.md": "x"})

	id, err := v.Lookup("dir/My Note.md")
	require.NoError(t, err)
	assert.Equal(t, "dir/My Note.md", id)

	id, err = v.Lookup("My Note")
	require.NoError(t, err)
	assert.Equal(t, "dir/My Note.md", id)

	id, err = v.Lookup(filepath.Join(v.Root(), "dir", "My Note.md"))
	require.NoError(t, err)
	assert.Equal(t, "dir/My Note.md", id)

	_, err = v.Lookup("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestReadText(t *testing.T) {
	v := openTree(t, map[string]string{"a.md": "hello"})
	ctx := context.Background()

	text, err := v.ReadText(ctx, "a.md")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	_, err = v.ReadText(ctx, "missing.md")
	assert.True(t, errors.Is(err, ErrNotFound))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = v.ReadText(cancelled, "a.md")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWrite(t *testing.T) {
	v := openTree(t, map[string]string{"a.md": "old"})
	ctx := context.Background()

	id, err := v.Write(ctx, "out/new.baked.md", "baked")
	require.NoError(t, err)
	assert.Equal(t, "out/new.baked.md", id)
	assert.True(t, v.Exists(id))

	data, err := os.ReadFile(filepath.Join(v.Root(), "out", "new.baked.md"))
	require.NoError(t, err)
	assert.Equal(t, "baked", string(data))

	_, err = v.Write(ctx, "a.md", "")
	require.NoError(t, err)
	text, err := v.ReadText(ctx, "a.md")
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestWriteStaysInsideVault(t *testing.T) {
	v := openTree(t, map[string]string{})
	id, err := v.Write(context.Background(), "../../escape.md", "x")
	require.NoError(t, err)
	assert.Equal(t, "escape.md", id)
	_, err = os.Stat(filepath.Join(v.Root(), "escape.md"))
	assert.NoError(t, err)
}

func TestMetadataOnlyForNotes(t *testing.T) {
	v := openTree(t, map[string]string{})
	md, ok := v.Metadata("a.md", "# Title\n[[b]]\n")
	require.True(t, ok)
	assert.Len(t, md.Headings, 1)
	assert.Len(t, md.Links, 1)

	_, ok = v.Metadata("a.png", "# not markdown")
	assert.False(t, ok)
}

func TestAbsPath(t *testing.T) {
	v := openTree(t, map[string]string{"img/pic.png": ""})
	abs, ok := v.AbsPath("img/pic.png")
	require.True(t, ok)
	assert.Equal(t, platformPath(filepath.Join(v.Root(), "img", "pic.png")), abs)

	_, ok = v.AbsPath("")
	assert.False(t, ok)
}
