package commitfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sineer/routerconf/model"
)

func TestCommitWritesAtomicallyAndPreservesMode(t *testing.T) {
	dir := t.TempDir()
	livePath := filepath.Join(dir, "network.conf")
	if err := os.WriteFile(livePath, []byte("stale"), 0o640); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	cfg := model.New()
	s := &model.Section{Type: "interface", Name: "lan"}
	s.Set("proto", model.Scalar("static"))
	cfg.Append(s)

	if err := Commit("test.Commit", livePath, cfg); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	info, err := os.Stat(livePath)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0o640 {
		t.Errorf("mode = %v, want 0640 preserved from the original file", info.Mode().Perm())
	}

	if _, err := os.Stat(filepath.Join(dir, ".network.conf.tmp")); !os.IsNotExist(err) {
		t.Errorf("expected temp file to be gone after a successful commit")
	}

	data, err := os.ReadFile(livePath)
	if err != nil {
		t.Fatalf("read committed file: %v", err)
	}
	want, _ := model.EmitString(cfg)
	if string(data) != want {
		t.Errorf("committed content = %q, want %q", data, want)
	}
}

func TestCommitNewFileDefaultsTo0644(t *testing.T) {
	dir := t.TempDir()
	livePath := filepath.Join(dir, "new.conf")
	cfg := model.New()

	if err := Commit("test.Commit", livePath, cfg); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	info, err := os.Stat(livePath)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Errorf("mode = %v, want 0644 for a new file", info.Mode().Perm())
	}
}
