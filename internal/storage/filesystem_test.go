package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFilesystemStorePutOverwritesAndGetReturnsLatest(t *testing.T) {
	store, err := NewFilesystemStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystemStore() unexpected error: %v", err)
	}
	ctx := context.Background()

	if err := store.Put(ctx, ProfileKey("sub-1"), []byte(`{"name":"first"}`), ContentTypeJSON); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if err := store.Put(ctx, ProfileKey("sub-1"), []byte(`{"name":"second"}`), ContentTypeJSON); err != nil {
		t.Fatalf("second put: %v", err)
	}

	got, err := store.Get(ctx, ProfileKey("sub-1"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"name":"second"}` {
		t.Fatalf("expected last write to win, got %s", got)
	}
}

func TestFilesystemStoreLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	store, err := NewFilesystemStore(root)
	if err != nil {
		t.Fatalf("NewFilesystemStore() unexpected error: %v", err)
	}
	if err := store.Put(context.Background(), DailyLogsKey("sub-2"), []byte("date\n"), ContentTypeCSV); err != nil {
		t.Fatalf("put: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(root, "sub-2"))
	if err != nil {
		t.Fatalf("read subject dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != DailyLogsFile {
		t.Fatalf("expected only %s in subject dir, got %v", DailyLogsFile, entries)
	}
}

func TestFilesystemStoreMissingKey(t *testing.T) {
	store, err := NewFilesystemStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystemStore() unexpected error: %v", err)
	}

	if _, err := store.Get(context.Background(), ProfileKey("nobody")); !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound on get, got %v", err)
	}
	if err := store.Delete(context.Background(), ProfileKey("nobody")); !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound on delete, got %v", err)
	}
}

func TestFilesystemStoreRejectsEscapingKeys(t *testing.T) {
	store, err := NewFilesystemStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystemStore() unexpected error: %v", err)
	}

	for _, key := range []string{"", "/etc/passwd", "../outside.json", "a/../../b"} {
		if err := store.Put(context.Background(), key, []byte("x"), ContentTypeJSON); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("expected ErrInvalidKey for %q, got %v", key, err)
		}
	}
}

func TestFilesystemStoreListFiltersByPrefix(t *testing.T) {
	store, err := NewFilesystemStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystemStore() unexpected error: %v", err)
	}
	ctx := context.Background()
	for _, key := range []string{ProfileKey("alice"), DailyLogsKey("alice"), ProfileKey("bob")} {
		if err := store.Put(ctx, key, []byte("x"), ContentTypeJSON); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}

	keys, err := store.List(ctx, "alice/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{DailyLogsKey("alice"), ProfileKey("alice")}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
}

func TestFilesystemStoreHonoursCancelledContext(t *testing.T) {
	store, err := NewFilesystemStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystemStore() unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Put(ctx, ProfileKey("sub"), []byte("x"), ContentTypeJSON); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
