package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	OutputPrint   = "print"
	OutputCopy    = "copy"
	OutputSSHCopy = "ssh-copy"
)

func NormalizeOutput(mode string) (string, bool) {
	m := strings.TrimSpace(strings.ToLower(mode))
	switch m {
	case OutputPrint, "stdout":
		return OutputPrint, true
	case OutputCopy, "clipboard":
		return OutputCopy, true
	case OutputSSHCopy, "sshcopy", "ssh", "osc52":
		return OutputSSHCopy, true
	default:
		return "", false
	}
}

// WriteOutput sets the default output mode in the file at path, keeping
// every other key.
func WriteOutput(path string, mode string) error {
	normalized, ok := NormalizeOutput(mode)
	if !ok {
		return fmt.Errorf("invalid output mode %q (expected print, copy, or ssh-copy)", mode)
	}
	var cfg map[string]any
	data, err := os.ReadFile(path)
	if err == nil {
		if len(strings.TrimSpace(string(data))) > 0 {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	} else if !os.IsNotExist(err) {
		return err
	}
	if cfg == nil {
		cfg = make(map[string]any)
	}
	cfg["output"] = normalized
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if len(out) == 0 || out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	return os.WriteFile(path, out, perm)
}
