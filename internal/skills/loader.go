package skills

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Source pairs a skill directory with its origin label.
type Source struct {
	Dir   string
	Label string
}

// DefaultSources returns the standard lookup hierarchy for a workspace.
// Priority: workspace > personal > global > builtin (highest first).
func DefaultSources(workspace, globalDir, builtinDir string) []Source {
	var srcs []Source
	if workspace != "" {
		srcs = append(srcs, Source{Dir: filepath.Join(workspace, "skills"), Label: "workspace"})
	}
	if home, err := os.UserHomeDir(); err == nil {
		srcs = append(srcs, Source{Dir: filepath.Join(home, ".agents", "skills"), Label: "personal"})
	}
	if globalDir != "" {
		srcs = append(srcs, Source{Dir: globalDir, Label: "global"})
	}
	if builtinDir != "" {
		srcs = append(srcs, Source{Dir: builtinDir, Label: "builtin"})
	}
	return srcs
}

// Loader discovers SKILL.md files from its source directories.
// Discovery is cheap enough to re-run on demand; the version counter
// lets consumers (index caches, prewarmed embeddings) detect staleness
// without re-scanning.
type Loader struct {
	sources []Source

	mu    sync.RWMutex
	cache map[string]Info // name → info from the last scan

	version atomic.Int64
}

// NewLoader creates a loader over the given sources (highest priority first).
func NewLoader(sources []Source) *Loader {
	l := &Loader{
		sources: sources,
		cache:   make(map[string]Info),
	}
	l.version.Store(time.Now().UnixMilli())
	return l
}

// List scans all sources and returns the discovered skills.
// Higher-priority sources win name collisions.
func (l *Loader) List() []Info {
	l.mu.Lock()
	defer l.mu.Unlock()

	seen := make(map[string]bool)
	var out []Info

	for _, src := range l.sources {
		if src.Dir == "" {
			continue
		}
		entries, err := os.ReadDir(src.Dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			skillFile := filepath.Join(src.Dir, e.Name(), "SKILL.md")
			data, err := os.ReadFile(skillFile)
			if err != nil {
				continue
			}

			fm, body := parseFrontmatter(string(data))
			name := NormalizeName(fm.Name)
			if name == "" {
				name = NormalizeName(e.Name())
			}
			if name == "" || seen[name] {
				continue
			}
			desc := strings.TrimSpace(fm.Description)
			if desc == "" {
				desc = firstParagraph(body)
			}

			info := Info{
				Name:        name,
				Description: desc,
				Path:        skillFile,
				BaseDir:     filepath.Join(src.Dir, e.Name()),
				Source:      src.Label,
			}
			out = append(out, info)
			seen[name] = true
			l.cache[name] = info
		}
	}

	return out
}

// Summaries returns the matchable view of all discovered skills.
func (l *Loader) Summaries() []Summary {
	infos := l.List()
	out := make([]Summary, len(infos))
	for i, info := range infos {
		out[i] = info.Summary()
	}
	return out
}

// Get returns a skill by name from the last scan, scanning if the
// name has not been seen yet.
func (l *Loader) Get(name string) (Info, bool) {
	l.mu.RLock()
	info, ok := l.cache[name]
	l.mu.RUnlock()
	if ok {
		return info, true
	}
	for _, s := range l.List() {
		if s.Name == name {
			return s, true
		}
	}
	return Info{}, false
}

// Content reads a skill's SKILL.md body with the frontmatter stripped.
// The {baseDir} placeholder is replaced with the skill's directory.
func (l *Loader) Content(name string) (string, bool) {
	info, ok := l.Get(name)
	if !ok {
		return "", false
	}
	data, err := os.ReadFile(info.Path)
	if err != nil {
		slog.Warn("skill content unreadable", "skill", name, "path", info.Path, "error", err)
		return "", false
	}
	_, body := parseFrontmatter(string(data))
	return strings.ReplaceAll(body, "{baseDir}", info.BaseDir), true
}

// Version returns the current skill snapshot version. Consumers
// compare this to their cached version to detect changes.
func (l *Loader) Version() int64 {
	return l.version.Load()
}

// BumpVersion advances the version counter (called by the watcher).
func (l *Loader) BumpVersion() {
	l.version.Store(time.Now().UnixMilli())
}

// Dirs returns all configured skill directories for the watcher.
func (l *Loader) Dirs() []string {
	var dirs []string
	for _, s := range l.sources {
		if s.Dir != "" {
			dirs = append(dirs, s.Dir)
		}
	}
	return dirs
}

func firstParagraph(body string) string {
	for _, ln := range strings.Split(body, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" || strings.HasPrefix(ln, "#") {
			continue
		}
		return ln
	}
	return ""
}
