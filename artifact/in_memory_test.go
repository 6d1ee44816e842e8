package artifact

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/agentloop/agentloop/core"
)

// Interface compliance (compile-time assertion)
var _ core.ArtifactStore = (*InMemoryStore)(nil)

func TestInMemoryStore_SaveGetIsolation(t *testing.T) {
	store := NewInMemoryStore()
	data := []byte("hello")
	if err := store.Save("run1", "a1", data); err != nil {
		t.Fatalf("save: %v", err)
	}
	// mutate original slice
	data[0] = 'H'
	out, err := store.Get("run1", "a1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(out) != "hello" {
		t.Fatalf("expected 'hello', got %q", string(out))
	}
	// mutate returned slice
	out[0] = 'x'
	out2, _ := store.Get("run1", "a1")
	if string(out2) != "hello" {
		t.Fatalf("expected isolation, got %q", string(out2))
	}
}

func TestInMemoryStore_RunScoping(t *testing.T) {
	store := NewInMemoryStore()
	if err := store.Save("run1", "a1", []byte("one")); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get("run2", "a1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound across runs, got %v", err)
	}
}

func TestInMemoryStore_ListAndDelete(t *testing.T) {
	store := NewInMemoryStore()
	if err := store.Save("run1", "a1", []byte("1")); err != nil {
		t.Fatal(err)
	}
	if err := store.Save("run1", "a2", []byte("2")); err != nil {
		t.Fatal(err)
	}
	ids, err := store.List("run1")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %d", len(ids))
	}
	if err := store.Delete("run1", "a1"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get("run1", "a1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestInMemoryStore_ConcurrentSaves(t *testing.T) {
	store := NewInMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("a%d", n)
			if err := store.Save("run1", id, []byte{byte(n)}); err != nil {
				t.Errorf("save %s: %v", id, err)
			}
		}(i)
	}
	wg.Wait()

	ids, err := store.List("run1")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 20 {
		t.Fatalf("expected 20 artifacts, got %d", len(ids))
	}
}
