package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/bind"
	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/key"
)

func TestParseYAML(t *testing.T) {
	data := []byte(`
keybindings:
  "normal::dd": deleteLine
  i: enterInsert
  "normal::x":
    command: deleteRight
    repeat: "count == 0 and 1 or count"
selectbindings:
  d: deleteSelection
`)
	table, err := Parse(data, ".yaml")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	spec, ok := table.Lookup("normal", key.ParseSequence("dd"))
	if !ok {
		t.Fatal("Lookup(normal, dd) not found")
	}
	if single, ok := spec.(bind.Single); !ok || single.Command != "deleteLine" {
		t.Errorf("Lookup(normal, dd) = %+v, want deleteLine", spec)
	}

	// selectbindings are scoped to visual mode.
	if _, ok := table.Lookup("visual", key.ParseSequence("d")); !ok {
		t.Error("Lookup(visual, d) not found")
	}
	if _, ok := table.Lookup("normal", key.ParseSequence("d")); ok {
		t.Error("Lookup(normal, d) found a visual-only binding")
	}
}

func TestParseTOML(t *testing.T) {
	data := []byte(`
[keybindings]
"normal::dd" = "deleteLine"
"normal::x" = { command = "deleteRight", repeat = 2 }
`)
	table, err := Parse(data, ".toml")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	spec, ok := table.Lookup("normal", key.ParseSequence("x"))
	if !ok {
		t.Fatal("Lookup(normal, x) not found")
	}
	wa, ok := spec.(bind.WithArgs)
	if !ok || wa.Command != "deleteRight" {
		t.Errorf("Lookup(normal, x) = %+v, want deleteRight with repeat", spec)
	}
}

func TestParseJSON(t *testing.T) {
	data := []byte(`{
		"keybindings": {
			"normal::c": {"if": "selecting", "then": "deleteSelection", "else": "deleteRight"},
			"normal|visual::o": ["cursorRight", "cursorRight"]
		}
	}`)
	table, err := Parse(data, ".json")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if _, ok := table.Lookup("normal", key.ParseSequence("c")); !ok {
		t.Error("Lookup(normal, c) not found")
	}
	if _, ok := table.Lookup("visual", key.ParseSequence("o")); !ok {
		t.Error("Lookup(visual, o) not found for multi-mode scope")
	}
}

func TestParseUnsupportedFormat(t *testing.T) {
	_, err := Parse([]byte("keybindings: {}"), ".ini")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Parse(.ini) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestBuildRejectsBadEntry(t *testing.T) {
	_, err := Build(File{
		Keybindings: map[string]any{"normal::q": true},
	})
	if !errors.Is(err, bind.ErrInvalidSpec) {
		t.Errorf("Build() error = %v, want ErrInvalidSpec", err)
	}
}

func TestLoadFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bindings.yaml")
	if err := os.WriteFile(path, []byte("keybindings:\n  x: deleteRight\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if table.Len() != 1 {
		t.Errorf("Len() = %d, want 1", table.Len())
	}
}

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bindings.yaml")
	if err := os.WriteFile(path, []byte("keybindings:\n  x: deleteRight\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	loads := make(chan int, 8)
	w, err := NewWatcher(path, func(table *bind.Table, err error) {
		if err != nil {
			t.Errorf("reload error: %v", err)
			loads <- -1
			return
		}
		loads <- table.Len()
	})
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}
	defer w.Close()

	if got := <-loads; got != 1 {
		t.Fatalf("initial load Len() = %d, want 1", got)
	}

	if err := os.WriteFile(path, []byte("keybindings:\n  x: deleteRight\n  y: cursorDown\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-loads:
		if got != 2 {
			t.Errorf("reloaded Len() = %d, want 2", got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload within 3s of file change")
	}
}
