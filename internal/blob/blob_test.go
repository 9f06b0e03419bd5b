package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"sporely/pkg/domain"
)

func testStoreRoundTrip(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	key := AttachmentKey(domain.EntityGrow, "grow-1")

	info, err := store.Put(ctx, key, strings.NewReader("photo-bytes"), PutOptions{ContentType: "image/jpeg"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != int64(len("photo-bytes")) || info.ContentType != "image/jpeg" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if _, err := store.Put(ctx, key, strings.NewReader("other"), PutOptions{}); err == nil {
		t.Fatalf("put must be create-only")
	}

	got, rc, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil || string(data) != "photo-bytes" {
		t.Fatalf("read: %q err=%v", data, err)
	}
	if got.ETag != info.ETag {
		t.Fatalf("etag mismatch: %q vs %q", got.ETag, info.ETag)
	}

	if _, err := store.Put(ctx, AttachmentKey(domain.EntityGrow, "grow-2"), strings.NewReader("x"), PutOptions{}); err != nil {
		t.Fatalf("put second: %v", err)
	}
	infos, err := store.List(ctx, AttachmentPrefix(domain.EntityGrow, "grow-1"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 1 || infos[0].Key != key {
		t.Fatalf("list = %+v", infos)
	}

	deleted, err := store.Delete(ctx, key)
	if err != nil || !deleted {
		t.Fatalf("delete: %v deleted=%v", err, deleted)
	}
	if deleted, _ := store.Delete(ctx, key); deleted {
		t.Fatalf("double delete must report false")
	}
	if _, err := store.Head(ctx, key); err == nil {
		t.Fatalf("head after delete must fail")
	}
}

func TestMemoryStore(t *testing.T) {
	testStoreRoundTrip(t, NewMemory())
}

func TestFilesystemStore(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	testStoreRoundTrip(t, store)
}

func TestFilesystemRejectsTraversal(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	bad := []string{"", "/abs/key", "../escape", "a/../../b"}
	for _, key := range bad {
		if _, err := store.Put(context.Background(), key, strings.NewReader("x"), PutOptions{}); err == nil {
			t.Fatalf("key %q must be rejected", key)
		}
	}
}

func TestPresignUnsupportedLocally(t *testing.T) {
	if _, err := NewMemory().PresignURL(context.Background(), "k", SignedURLOptions{}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestAttachmentKeyShape(t *testing.T) {
	key := AttachmentKey(domain.EntityCulture, "c-9")
	if !strings.HasPrefix(key, "culture/c-9/") {
		t.Fatalf("key = %q", key)
	}
	if key == AttachmentKey(domain.EntityCulture, "c-9") {
		t.Fatalf("keys must be unique per call")
	}
}
