package cache

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/glyphkit/glyphcache/pkg/glyph"
)

func TestNewMemory_DefaultCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		m := NewMemory(capacity)
		if m == nil {
			t.Fatalf("NewMemory(%d) returned nil", capacity)
		}
	}
}

func TestMemory_PutAndGet(t *testing.T) {
	m := NewMemory(16)
	key := glyph.NewKey("\U0001F600", 72)

	if _, ok := m.Get(key); ok {
		t.Fatal("expected miss on empty cache")
	}

	m.Put(key, []byte("png-bytes"))
	got, ok := m.Get(key)
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if !bytes.Equal(got, []byte("png-bytes")) {
		t.Errorf("Get = %q, want %q", got, "png-bytes")
	}

	// Same codepoints at a different size is a different key.
	if _, ok := m.Get(glyph.NewKey("\U0001F600", 36)); ok {
		t.Error("different size unexpectedly hit")
	}
}

func TestMemory_Overwrite(t *testing.T) {
	m := NewMemory(16)
	key := glyph.NewKey("\U0001F600", 72)

	m.Put(key, []byte("one"))
	m.Put(key, []byte("two"))

	got, ok := m.Get(key)
	if !ok || !bytes.Equal(got, []byte("two")) {
		t.Errorf("Get = %q, %v, want %q", got, ok, "two")
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
}

func TestMemory_Remove(t *testing.T) {
	m := NewMemory(16)
	key := glyph.NewKey("\U0001F600", 72)

	m.Put(key, []byte("data"))
	m.Remove(key)
	if _, ok := m.Get(key); ok {
		t.Error("expected miss after Remove")
	}
	// Removing again is harmless.
	m.Remove(key)
}

func TestMemory_CapacityEviction(t *testing.T) {
	m := NewMemory(2)
	k1 := glyph.NewKey("\U0001F600", 72)
	k2 := glyph.NewKey("\U0001F601", 72)
	k3 := glyph.NewKey("\U0001F602", 72)

	m.Put(k1, []byte("a"))
	m.Put(k2, []byte("b"))
	// Touch k1 so k2 is the least recently used.
	if _, ok := m.Get(k1); !ok {
		t.Fatal("expected k1 hit")
	}
	m.Put(k3, []byte("c"))

	if _, ok := m.Get(k2); ok {
		t.Error("expected k2 evicted")
	}
	if _, ok := m.Get(k1); !ok {
		t.Error("expected k1 retained")
	}
	if _, ok := m.Get(k3); !ok {
		t.Error("expected k3 retained")
	}
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	m := NewMemory(128)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				key := glyph.NewKey(fmt.Sprintf("\U0001F600%d", j%16), 72)
				m.Put(key, []byte{byte(i), byte(j)})
				m.Get(key)
			}
		}()
	}
	wg.Wait()
}
