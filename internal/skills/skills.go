// Package skills discovers SKILL.md files from a priority-ordered list
// of source directories and exposes them as matchable summaries.
// Higher-priority sources override lower ones by name.
package skills

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Summary is the matchable surface of a skill: a unique name plus a
// free-text description. It is immutable once loaded; the matching
// core only reads it.
type Summary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Info describes a discovered skill on disk.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Path        string `json:"path"`    // absolute path to SKILL.md
	BaseDir     string `json:"baseDir"` // skill directory (parent of SKILL.md)
	Source      string `json:"source"`  // "workspace", "personal", "global", "builtin"
}

// Summary returns the matchable view of the skill.
func (i Info) Summary() Summary {
	return Summary{Name: i.Name, Description: i.Description}
}

// frontmatter holds the parsed SKILL.md YAML header.
type frontmatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

var frontmatterRe = regexp.MustCompile(`(?s)\A---\r?\n(.*?)\r?\n---\r?\n?`)

// parseFrontmatter extracts the YAML header from SKILL.md content.
// Returns the parsed header and the body with the header stripped.
// Content without a header yields an empty frontmatter and the full body.
func parseFrontmatter(content string) (frontmatter, string) {
	var fm frontmatter
	m := frontmatterRe.FindStringSubmatch(content)
	if m == nil {
		return fm, content
	}
	if err := yaml.Unmarshal([]byte(m[1]), &fm); err != nil {
		return frontmatter{}, content[len(m[0]):]
	}
	return fm, content[len(m[0]):]
}

var (
	validNameRe  = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
	invalidChars = regexp.MustCompile(`[^a-z0-9-]+`)
	edgeDashes   = regexp.MustCompile(`^-+|-+$`)
)

// NormalizeName converts a raw skill name into the canonical form:
// lowercase alphanumerics and hyphens, no leading or trailing dashes.
// Returns "" when nothing usable remains.
func NormalizeName(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if validNameRe.MatchString(lower) {
		return lower
	}
	out := invalidChars.ReplaceAllString(lower, "-")
	out = edgeDashes.ReplaceAllString(out, "")
	return out
}
