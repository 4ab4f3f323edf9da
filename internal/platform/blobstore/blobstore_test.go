package blobstore

import (
	"bytes"
	"context"
	"testing"
)

func TestMemoryStorePutAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("https://assets.test")

	url, err := s.Put(ctx, "hospitals/a/logo.png", "image/png", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "https://assets.test/hospitals/a/logo.png" {
		t.Errorf("url = %q", url)
	}

	data, err := s.Get("hospitals/a/logo.png")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(data, []byte("png-bytes")) {
		t.Error("stored data mismatch")
	}
}

func TestMemoryStorePutRejectsOversize(t *testing.T) {
	s := NewMemoryStore("https://assets.test")
	big := make([]byte, MaxObjectSize+1)
	if _, err := s.Put(context.Background(), "k", "image/png", big); err != ErrObjectTooLarge {
		t.Errorf("err = %v, want ErrObjectTooLarge", err)
	}
}

func TestMemoryStorePutRejectsEmptyKey(t *testing.T) {
	s := NewMemoryStore("https://assets.test")
	if _, err := s.Put(context.Background(), "", "image/png", []byte("x")); err != ErrEmptyKey {
		t.Errorf("err = %v, want ErrEmptyKey", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("https://assets.test")
	if _, err := s.Put(ctx, "k", "image/png", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "k"); err != ErrObjectNotFound {
		t.Errorf("second delete err = %v, want ErrObjectNotFound", err)
	}
}

func TestMemoryStoreKeyForURL(t *testing.T) {
	s := NewMemoryStore("https://assets.test/")

	key, ok := s.KeyForURL("https://assets.test/hospitals/a/interior-1.jpg")
	if !ok || key != "hospitals/a/interior-1.jpg" {
		t.Errorf("KeyForURL = %q %v", key, ok)
	}

	if _, ok := s.KeyForURL("https://elsewhere.example/x.jpg"); ok {
		t.Error("foreign URL should not map to a key")
	}
}
