package storage

import (
	"context"
	"testing"
)

func TestMemoryRoundTrip(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	if _, ok, _ := store.Load(ctx, "k"); ok {
		t.Fatal("Load on empty store reported a document")
	}

	if err := store.Save(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, ok, err := store.Load(ctx, "k")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok || string(data) != "v1" {
		t.Errorf("Load = %q, %v", data, ok)
	}

	if err := store.Save(ctx, "k", []byte("v2")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	data, _, _ = store.Load(ctx, "k")
	if string(data) != "v2" {
		t.Errorf("Load after overwrite = %q, want v2", data)
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := store.Load(ctx, "k"); ok {
		t.Error("Load after Delete reported a document")
	}

	// Deleting again is a no-op.
	if err := store.Delete(ctx, "k"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestMemoryCopiesOnLoad(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	if err := store.Save(ctx, "k", []byte("abc")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, _, _ := store.Load(ctx, "k")
	data[0] = 'x'

	fresh, _, _ := store.Load(ctx, "k")
	if string(fresh) != "abc" {
		t.Errorf("stored document mutated through a loaded copy: %q", fresh)
	}
}

func TestMemoryCopiesOnSave(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	buf := []byte("abc")
	if err := store.Save(ctx, "k", buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	buf[0] = 'x'

	data, _, _ := store.Load(ctx, "k")
	if string(data) != "abc" {
		t.Errorf("stored document mutated through the caller's buffer: %q", data)
	}
}

func TestDocumentKeys(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{ProfileKey("u1"), "hero:u1:profile"},
		{FriendsKey("u1"), "hero:u1:friends"},
		{WorkoutsKey("u1"), "hero:u1:workouts"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("key = %q, want %q", tt.got, tt.want)
		}
	}
}
