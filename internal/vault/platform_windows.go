//go:build windows

package vault

import "path/filepath"

// IsWindows reports whether asset links need the Windows file URI form.
func (v *Vault) IsWindows() bool { return true }

// platformPath turns C:\vault\a.png into C:/vault/a.png for file URIs.
func platformPath(p string) string { return filepath.ToSlash(p) }
