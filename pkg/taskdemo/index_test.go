package taskdemo

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIndexDirectoryIndexesRegularFilesOnly(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "a.txt"), "hello")
	writeFile(t, filepath.Join(dir, "b.txt"), "world")
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	indexPath := filepath.Join(dir, "index.bleve")
	index, err := OpenIndex(indexPath)
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	defer index.Close()

	count := IndexDirectory(index, dir).Result()
	if count != 2 {
		t.Fatalf("indexed %d entries, want 2", count)
	}

	docCount, err := index.DocCount()
	if err != nil {
		t.Fatalf("doc count: %v", err)
	}
	if docCount != 2 {
		t.Fatalf("index.DocCount() = %d, want 2", docCount)
	}
}

func TestIndexDirectoryEmptyDir(t *testing.T) {
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "index.bleve")
	index, err := OpenIndex(indexPath)
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	defer index.Close()

	subdir := filepath.Join(dir, "empty")
	if err := os.Mkdir(subdir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	count := IndexDirectory(index, subdir).Result()
	if count != 0 {
		t.Fatalf("indexed %d entries, want 0", count)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}
