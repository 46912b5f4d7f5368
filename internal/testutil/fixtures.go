package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WritePrototypeFile writes body to dir/name, creating parent directories.
func WritePrototypeFile(t testing.TB, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// PrototypeDir creates a temp directory holding one skills.yml with body.
func PrototypeDir(t testing.TB, body string) string {
	t.Helper()

	dir := t.TempDir()
	WritePrototypeFile(t, dir, "skills.yml", body)
	return dir
}
