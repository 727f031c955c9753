package skills

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitForBump(t *testing.T, l *Loader, prev int64) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if l.Version() != prev {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("version never bumped")
}

func TestWatcherBumpsOnSkillEdit(t *testing.T) {
	dir := t.TempDir()
	writeSkill(t, dir, "git-helper", "---\nname: git-helper\ndescription: Automates git workflows\n---\nbody\n")

	l := NewLoader([]Source{{Dir: dir, Label: "workspace"}})
	w, err := NewWatcher(l)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	prev := l.Version()
	path := filepath.Join(dir, "git-helper", "SKILL.md")
	if err := os.WriteFile(path, []byte("---\nname: git-helper\ndescription: updated\n---\nbody\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	waitForBump(t, l, prev)
}

func TestWatcherBumpsOnNewSkillDir(t *testing.T) {
	dir := t.TempDir()

	l := NewLoader([]Source{{Dir: dir, Label: "workspace"}})
	w, err := NewWatcher(l)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	prev := l.Version()
	writeSkill(t, dir, "pdf-tools", "---\nname: pdf-tools\ndescription: Extracts text from PDFs\n---\nbody\n")

	waitForBump(t, l, prev)

	list := l.List()
	if len(list) != 1 || list[0].Name != "pdf-tools" {
		t.Fatalf("expected pdf-tools after rescan, got %v", list)
	}
}
