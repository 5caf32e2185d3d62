package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreWriteOpenRemove(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	ctx := context.Background()

	key, err := store.Write(ctx, "contracts/misthosi.pdf", []byte("pdf-bytes"))
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if key != "contracts/misthosi.pdf" {
		t.Fatalf("key = %q", key)
	}

	f, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	data, _ := io.ReadAll(f)
	_ = f.Close()
	if string(data) != "pdf-bytes" {
		t.Fatalf("content = %q", data)
	}

	if err := store.Remove(ctx, key); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.BasePath(), key)); !os.IsNotExist(err) {
		t.Fatalf("file still present after remove: %v", err)
	}
	// A second remove is a no-op, not an error.
	if err := store.Remove(ctx, key); err != nil {
		t.Fatalf("second Remove returned error: %v", err)
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	if _, err := store.Write(context.Background(), "../escape.txt", []byte("x")); err == nil {
		t.Fatal("expected traversal key to be rejected")
	}
	if _, err := store.Open(context.Background(), "/../../etc/passwd"); err == nil {
		t.Fatal("expected traversal key to be rejected")
	}
}
