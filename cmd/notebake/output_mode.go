package main

import (
	"fmt"

	"github.com/agusx1211/notebake/internal/config"
)

func resolveOutputMode(defaultMode string, printFlag, copyFlag, sshFlag bool) (string, error) {
	selected := 0
	if printFlag {
		selected++
	}
	if copyFlag {
		selected++
	}
	if sshFlag {
		selected++
	}
	if selected > 1 {
		return "", fmt.Errorf("only one of --print, --copy, or --ssh-copy may be set")
	}
	if defaultMode == "" {
		defaultMode = config.OutputPrint
	}
	if printFlag {
		return config.OutputPrint, nil
	}
	if copyFlag {
		return config.OutputCopy, nil
	}
	if sshFlag {
		return config.OutputSSHCopy, nil
	}
	return defaultMode, nil
}
