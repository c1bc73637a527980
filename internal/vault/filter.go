package vault

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// skipDirs are never part of a vault's corpus, nor are hidden directories
// such as .git, .obsidian or .trash.
var skipDirs = map[string]struct{}{
	"node_modules": {},
	"__pycache__":  {},
}

// Filter decides which files of a vault are visible to link resolution.
type Filter struct {
	gitIgnore       *ignore.GitIgnore
	includeIgnored  bool
	includePatterns []string
	excludePatterns []string
	excludedDirs    []string
}

// NewFilter creates a filter for the vault at dir.
// Exclude patterns ending with "/" exclude whole directories. Patterns
// without a "/" match file names, the rest match vault-relative paths.
func NewFilter(dir string, includeIgnored bool, includePatterns, excludePatterns []string) (*Filter, error) {
	f := &Filter{includeIgnored: includeIgnored}

	for _, pat := range includePatterns {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("invalid include pattern %q", pat)
		}
		f.includePatterns = append(f.includePatterns, pat)
	}
	for _, pat := range excludePatterns {
		if cleaned, ok := strings.CutSuffix(pat, "/"); ok {
			f.excludedDirs = append(f.excludedDirs, strings.TrimPrefix(cleaned, "/"))
			continue
		}
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pat)
		}
		f.excludePatterns = append(f.excludePatterns, pat)
	}

	if !includeIgnored {
		gitIgnorePath := filepath.Join(dir, ".gitignore")
		if _, err := os.Stat(gitIgnorePath); err == nil {
			gitIgnore, err := ignore.CompileIgnoreFile(gitIgnorePath)
			if err != nil {
				return nil, fmt.Errorf("failed to compile %s: %w", gitIgnorePath, err)
			}
			f.gitIgnore = gitIgnore
		}
	}

	return f, nil
}

// ShouldInclude reports whether the vault-relative, slash-separated path
// rel should be indexed.
func (f *Filter) ShouldInclude(rel string, isDir bool) bool {
	name := path.Base(rel)

	if isDir {
		if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
			return false
		}
		if f.isExcludedDir(rel) {
			return false
		}
	} else if strings.HasPrefix(name, ".") {
		return false
	}

	if f != nil && !f.includeIgnored && f.gitIgnore != nil && f.gitIgnore.MatchesPath(rel) {
		return false
	}

	if isDir || f == nil {
		return true
	}

	if f.matchesAny(rel, f.excludePatterns) {
		return false
	}
	if len(f.includePatterns) > 0 {
		return f.matchesAny(rel, f.includePatterns)
	}
	return true
}

func (f *Filter) isExcludedDir(rel string) bool {
	if f == nil {
		return false
	}
	for _, dir := range f.excludedDirs {
		if rel == dir || strings.HasPrefix(rel, dir+"/") {
			return true
		}
	}
	return false
}

func (f *Filter) matchesAny(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		subject := rel
		if !strings.Contains(pattern, "/") {
			subject = path.Base(rel)
		}
		if ok, err := doublestar.Match(pattern, subject); err == nil && ok {
			return true
		}
	}
	return false
}
