package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"reelsort/internal/media"
)

// WriteVideoFile drops a small placeholder video file and returns its
// FileInfo as the storage adapter would report it.
func WriteVideoFile(t testing.TB, dir, name string) media.FileInfo {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create parent for %s: %v", name, err)
	}
	payload := []byte("placeholder video payload")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return media.NewFileInfo(path, int64(len(payload)), false)
}
