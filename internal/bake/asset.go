package bake

import (
	"path"
	"strings"
)

const (
	fileURIPrefix        = "file://"
	windowsFileURIPrefix = "file:///"
)

// IsDocument reports whether id names a note the engine can flatten.
// Everything else is an asset.
func IsDocument(id string) bool {
	return strings.EqualFold(path.Ext(id), ".md")
}

// AssetLink renders an embed pointing at an absolute file path.
func AssetLink(absPath string, windows bool) string {
	prefix := fileURIPrefix
	if windows {
		prefix = windowsFileURIPrefix
	}
	return "![](" + prefix + encodeURI(absPath) + ")"
}

const uriKeep = ";,/?:@&=+$-_.!~*'()#"

// encodeURI percent-encodes every byte outside the unreserved and reserved
// URI sets, leaving path separators and the like intact.
func encodeURI(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x80 && (isAlnum(c) || strings.IndexByte(uriKeep, c) >= 0) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isAlnum(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
