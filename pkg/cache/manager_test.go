package cache

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestManager_SetAndGet(t *testing.T) {
	manager := NewManager(Options{})
	sig := NewSignature("카페", "강남", "domestic")
	superset := testSuperset(20)

	if err := manager.Set(sig, superset); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := manager.Get(NewSignature("  카페 ", "강남", "DOMESTIC"))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != superset {
		t.Error("Get returned a different superset")
	}
	if manager.Len() != 1 {
		t.Errorf("Len() = %d, want 1", manager.Len())
	}
}

func TestManager_Get_CacheMiss(t *testing.T) {
	manager := NewManager(Options{})

	_, err := manager.Get(NewSignature("nothing", "", "domestic"))
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestManager_Set_NilSuperset(t *testing.T) {
	manager := NewManager(Options{})

	err := manager.Set(NewSignature("q", "", "domestic"), nil)
	if !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("Set(nil) error = %v, want ErrInvalidEntry", err)
	}
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager(Options{})
	sig := NewSignature("q", "", "domestic")

	if err := manager.Set(sig, testSuperset(1)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	manager.Delete(sig)

	if _, err := manager.Get(sig); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after Delete, got %v", err)
	}
}

func TestManager_NoExpiryByDefault(t *testing.T) {
	manager := NewManager(Options{})
	sig := NewSignature("q", "", "domestic")
	if err := manager.Set(sig, testSuperset(1)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if _, err := manager.Get(sig); err != nil {
		t.Errorf("entry expired without a TTL: %v", err)
	}
}

func TestManager_TTL(t *testing.T) {
	manager := NewManager(Options{TTL: 20 * time.Millisecond})
	sig := NewSignature("q", "", "domestic")
	if err := manager.Set(sig, testSuperset(1)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, err := manager.Get(sig); err != nil {
		t.Fatalf("Get before expiry failed: %v", err)
	}

	time.Sleep(40 * time.Millisecond)

	if _, err := manager.Get(sig); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss for expired entry, got %v", err)
	}
	if manager.Len() != 0 {
		t.Errorf("expired entry still resident, Len() = %d", manager.Len())
	}
}

func TestManager_MaxEntries(t *testing.T) {
	manager := NewManager(Options{MaxEntries: 2})

	sigs := []QuerySignature{
		NewSignature("first", "", "domestic"),
		NewSignature("second", "", "domestic"),
		NewSignature("third", "", "domestic"),
	}
	for _, sig := range sigs {
		if err := manager.Set(sig, testSuperset(1)); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	if manager.Len() != 2 {
		t.Errorf("Len() = %d, want 2", manager.Len())
	}
	if _, err := manager.Get(sigs[0]); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("oldest entry should be evicted, got %v", err)
	}
	for _, sig := range sigs[1:] {
		if _, err := manager.Get(sig); err != nil {
			t.Errorf("Get(%s) failed: %v", sig, err)
		}
	}
}

func TestManager_OverwriteDoesNotEvict(t *testing.T) {
	manager := NewManager(Options{MaxEntries: 1})
	sig := NewSignature("q", "", "domestic")

	first := testSuperset(1)
	second := testSuperset(2)
	_ = manager.Set(sig, first)
	_ = manager.Set(sig, second)

	got, err := manager.Get(sig)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != second {
		t.Error("Set did not replace the previous superset")
	}
}

func TestManager_Concurrent(t *testing.T) {
	manager := NewManager(Options{MaxEntries: 8})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sig := NewSignature(fmt.Sprintf("q%d", i%4), "", "domestic")
			for j := 0; j < 50; j++ {
				_ = manager.Set(sig, testSuperset(3))
				if s, err := manager.Get(sig); err == nil && s.Total() != 3 {
					t.Errorf("Total() = %d, want 3", s.Total())
				}
			}
		}(i)
	}
	wg.Wait()

	if manager.Len() > 4 {
		t.Errorf("Len() = %d, want at most 4", manager.Len())
	}
}
