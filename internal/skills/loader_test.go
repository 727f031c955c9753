package skills

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSkill(t *testing.T, dir, folder, content string) {
	t.Helper()
	skillDir := filepath.Join(dir, folder)
	if err := os.MkdirAll(skillDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(skillDir, "SKILL.md"), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoaderList(t *testing.T) {
	dir := t.TempDir()
	writeSkill(t, dir, "git-helper", `---
name: git-helper
description: Provides git workflow assistance
---
# Git Helper
`)
	writeSkill(t, dir, "pdf", `---
name: pdf
description: PDF manipulation and extraction
---
`)

	l := NewLoader([]Source{{Dir: dir, Label: "workspace"}})
	infos := l.List()

	if len(infos) != 2 {
		t.Fatalf("List returned %d skills, want 2", len(infos))
	}
	byName := map[string]Info{}
	for _, s := range infos {
		byName[s.Name] = s
	}
	if byName["git-helper"].Description != "Provides git workflow assistance" {
		t.Errorf("description = %q", byName["git-helper"].Description)
	}
	if byName["pdf"].Source != "workspace" {
		t.Errorf("source = %q, want workspace", byName["pdf"].Source)
	}
}

func TestLoaderPriorityOverride(t *testing.T) {
	hi := t.TempDir()
	lo := t.TempDir()
	writeSkill(t, hi, "deploy", "---\nname: deploy\ndescription: workspace deploy\n---\n")
	writeSkill(t, lo, "deploy", "---\nname: deploy\ndescription: global deploy\n---\n")

	l := NewLoader([]Source{
		{Dir: hi, Label: "workspace"},
		{Dir: lo, Label: "global"},
	})
	infos := l.List()

	if len(infos) != 1 {
		t.Fatalf("List returned %d skills, want 1 (deduped by name)", len(infos))
	}
	if infos[0].Description != "workspace deploy" {
		t.Errorf("higher-priority source did not win: %q", infos[0].Description)
	}
}

func TestLoaderFallbacks(t *testing.T) {
	dir := t.TempDir()
	// No frontmatter: name comes from the folder, description from the body.
	writeSkill(t, dir, "My_Weird Skill", "# Heading\n\nDoes something useful.\n")

	l := NewLoader([]Source{{Dir: dir, Label: "workspace"}})
	infos := l.List()

	if len(infos) != 1 {
		t.Fatalf("List returned %d skills, want 1", len(infos))
	}
	if infos[0].Name != "my-weird-skill" {
		t.Errorf("normalized name = %q, want my-weird-skill", infos[0].Name)
	}
	if infos[0].Description != "Does something useful." {
		t.Errorf("inferred description = %q", infos[0].Description)
	}
}

func TestLoaderContent(t *testing.T) {
	dir := t.TempDir()
	writeSkill(t, dir, "tpl", "---\nname: tpl\ndescription: d\n---\nRun {baseDir}/run.sh\n")

	l := NewLoader([]Source{{Dir: dir, Label: "workspace"}})
	l.List()

	content, ok := l.Content("tpl")
	if !ok {
		t.Fatal("Content returned not found")
	}
	want := "Run " + filepath.Join(dir, "tpl") + "/run.sh\n"
	if content != want {
		t.Errorf("content = %q, want %q", content, want)
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"git-helper", "git-helper"},
		{"Git Helper", "git-helper"},
		{"  PDF_Tools!  ", "pdf-tools"},
		{"---", ""},
		{"a", "a"},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestVersionBump(t *testing.T) {
	l := NewLoader(nil)
	v := l.Version()
	l.BumpVersion()
	if l.Version() < v {
		t.Error("version went backwards after bump")
	}
}
