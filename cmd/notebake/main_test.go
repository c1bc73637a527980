package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
		} else {
			f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("USERPROFILE", os.Getenv("HOME"))
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeVault(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return root
}

func TestRootPrintsBakedNote(t *testing.T) {
	root := writeVault(t, map[string]string{
		"A.md": "# A\n\n![[B]]\n",
		"B.md": "bee",
	})

	out, err := runCLI(t, "--vault", root, "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "# A\n\nbee\n" {
		t.Fatalf("unexpected output: %q", out)
	}

	out, err = runCLI(t, "--vault", root, "--embeds=false", "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "# A\n\n![[B]]\n" {
		t.Fatalf("expected embeds to stay with --embeds=false, got %q", out)
	}
}

func TestRootReadsVaultConfig(t *testing.T) {
	root := writeVault(t, map[string]string{
		"A.md":      "![[B]]\n",
		"B.md":      "bee",
		".notebake": "embeds: false\n",
	})

	out, err := runCLI(t, "--vault", root, "A.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "![[B]]\n" {
		t.Fatalf("expected config to disable embeds, got %q", out)
	}

	out, err = runCLI(t, "--vault", root, "--embeds", "A.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "bee\n" {
		t.Fatalf("expected flag to override config, got %q", out)
	}
}

func TestRootWritesFile(t *testing.T) {
	root := writeVault(t, map[string]string{"notes/A.md": "plain"})

	out, err := runCLI(t, "--vault", root, "-f", "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "Output written to: ") {
		t.Fatalf("unexpected output: %q", out)
	}
	data, err := os.ReadFile(filepath.Join(root, "notes", "A.baked.md"))
	if err != nil {
		t.Fatalf("expected baked file: %v", err)
	}
	if string(data) != "plain" {
		t.Fatalf("unexpected baked content: %q", data)
	}
}

func TestRootMissingNote(t *testing.T) {
	root := writeVault(t, map[string]string{"A.md": "a"})
	if _, err := runCLI(t, "--vault", root, "nope"); err == nil {
		t.Fatalf("expected error for missing note")
	}
}

func TestRootRejectsTwoOutputModes(t *testing.T) {
	root := writeVault(t, map[string]string{"A.md": "a"})
	if _, err := runCLI(t, "--vault", root, "--print", "--copy", "A"); err == nil {
		t.Fatalf("expected error for multiple output flags")
	}
}

func TestCountWords(t *testing.T) {
	root := writeVault(t, map[string]string{
		"A.md": "one two\n\n![[B]]\n",
		"B.md": "three %%skip%%",
	})
	out, err := runCLI(t, "count", "--vault", root, "--words", "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "3\n" {
		t.Fatalf("unexpected word count: %q", out)
	}
}

func TestConfigSetOutput(t *testing.T) {
	out, err := runCLI(t, "config", "set-output", "copy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Default output set to copy") {
		t.Fatalf("unexpected output: %q", out)
	}

	if _, err := runCLI(t, "config", "set-output", "fax"); err == nil {
		t.Fatalf("expected error for invalid mode")
	}
}
