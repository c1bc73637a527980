//go:build !windows

package vault

// IsWindows reports whether asset links need the Windows file URI form.
func (v *Vault) IsWindows() bool { return false }

func platformPath(p string) string { return p }
