package main

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

func runHostCommand(name string, args []string, data string, stdout io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(data)
	if stdout != nil {
		cmd.Stdout = stdout
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%s failed: %s", name, msg)
		}
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}

func copyToClipboard(data string) error {
	switch runtime.GOOS {
	case "darwin":
		if _, err := exec.LookPath("pbcopy"); err != nil {
			return fmt.Errorf("pbcopy not found in PATH")
		}
		return runHostCommand("pbcopy", nil, data, io.Discard)
	case "windows":
		if _, err := exec.LookPath("clip"); err != nil {
			return fmt.Errorf("clip not found in PATH")
		}
		return runHostCommand("clip", nil, data, io.Discard)
	default:
		if path, _ := exec.LookPath("wl-copy"); path != "" {
			return runHostCommand(path, nil, data, io.Discard)
		}
		if path, _ := exec.LookPath("xclip"); path != "" {
			return runHostCommand(path, []string{"-selection", "clipboard"}, data, io.Discard)
		}
		if path, _ := exec.LookPath("xsel"); path != "" {
			return runHostCommand(path, []string{"--clipboard", "--input"}, data, io.Discard)
		}
		if path, _ := exec.LookPath("clip.exe"); path != "" {
			return runHostCommand(path, nil, data, io.Discard)
		}
		return fmt.Errorf("no clipboard utility found (tried wl-copy, xclip, xsel, clip.exe)")
	}
}

func osc52Sequence(data string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(data))
	seq := fmt.Sprintf("\x1b]52;c;%s\x07", encoded)
	if os.Getenv("TMUX") != "" {
		return "\x1bPtmux;" + seq + "\x1b\\"
	}
	if strings.HasPrefix(os.Getenv("TERM"), "screen") {
		return "\x1bP" + seq + "\x1b\\"
	}
	return seq
}

func copyToOSC52(data string) error {
	if _, err := io.WriteString(os.Stdout, osc52Sequence(data)); err != nil {
		return fmt.Errorf("failed to write OSC 52 sequence: %w", err)
	}
	return nil
}

// openCommand returns the program that opens a file with its default
// application on goos.
func openCommand(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}
	default:
		return "xdg-open", []string{path}
	}
}

func openFile(path string) error {
	name, args := openCommand(runtime.GOOS, path)
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%s not found in PATH", name)
	}
	return runHostCommand(name, args, "", io.Discard)
}
