// Package config reads and writes .notebake files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/agusx1211/notebake/internal/bake"
)

const FileName = ".notebake"

const DefaultProfile = "default"

// Profile holds the settings a .notebake file (or one of its profiles)
// may set. Nil fields leave the inherited value alone.
type Profile struct {
	Links            *bool    `yaml:"links,omitempty"`
	Embeds           *bool    `yaml:"embeds,omitempty"`
	BakeInList       *bool    `yaml:"bake_in_list,omitempty"`
	ConvertFileLinks *bool    `yaml:"convert_file_links,omitempty"`
	Include          []string `yaml:"include,omitempty"`
	Exclude          []string `yaml:"exclude,omitempty"`
}

type File struct {
	Profile  `yaml:",inline"`
	Output   string             `yaml:"output,omitempty"`
	Profiles map[string]Profile `yaml:"profiles,omitempty"`
}

// Config is the merged result of every .notebake file that applies.
type Config struct {
	Settings bake.Settings
	Output   string
	Include  []string
	Exclude  []string
}

func Default() *Config {
	return &Config{Settings: bake.DefaultSettings()}
}

// Read parses a .notebake file. An empty file is a valid, empty config.
func Read(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if len(strings.TrimSpace(string(data))) == 0 {
		return &f, nil
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if f.Output != "" {
		normalized, ok := NormalizeOutput(f.Output)
		if !ok {
			return nil, fmt.Errorf("invalid output mode %q in %s (expected print, copy, or ssh-copy)", f.Output, path)
		}
		f.Output = normalized
	}
	return &f, nil
}

// Apply merges f into c: the file's top-level keys first, then the named
// profile, or the "default" profile when the name is unknown.
func (f *File) Apply(c *Config, profile string) {
	c.apply(f.Profile)
	if f.Output != "" {
		c.Output = f.Output
	}
	if len(f.Profiles) == 0 {
		return
	}
	if p, ok := f.Profiles[profile]; ok {
		c.apply(p)
	} else if p, ok := f.Profiles[DefaultProfile]; ok {
		c.apply(p)
	}
}

// HasProfile reports whether the file names profile explicitly.
func (f *File) HasProfile(profile string) bool {
	_, ok := f.Profiles[profile]
	return ok
}

func (c *Config) apply(p Profile) {
	setBool(&c.Settings.IncludeLinks, p.Links)
	setBool(&c.Settings.IncludeEmbeds, p.Embeds)
	setBool(&c.Settings.BakeInList, p.BakeInList)
	setBool(&c.Settings.ConvertFileLinks, p.ConvertFileLinks)
	c.Include = append(c.Include, p.Include...)
	c.Exclude = append(c.Exclude, p.Exclude...)
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// Load merges the given files in order over the defaults. Missing files
// are skipped.
func Load(profile string, paths ...string) (*Config, error) {
	c := Default()
	for _, path := range paths {
		if path == "" {
			continue
		}
		f, err := Read(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		f.Apply(c, profile)
	}
	return c, nil
}

// Paths lists the .notebake files that apply to a vault: the user's home
// file, then the vault's own.
func Paths(vaultRoot string) []string {
	var paths []string
	if home, err := HomePath(); err == nil {
		paths = append(paths, home)
	}
	vaultPath := filepath.Join(vaultRoot, FileName)
	if len(paths) == 0 || !samePath(paths[0], vaultPath) {
		paths = append(paths, vaultPath)
	}
	return paths
}

func HomePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, FileName), nil
}

func samePath(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	return err1 == nil && err2 == nil && aa == bb
}
