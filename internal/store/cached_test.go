package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lumensyntax-org/truthgit/internal/object"
)

func TestCached_LoadServesFromCache(t *testing.T) {
	dir := t.TempDir()
	c := NewCached(New(dir), time.Minute, time.Minute)

	cl := object.NewClaim("cached claim", "general", "factual", 0.5)
	h, err := c.Put(cl)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Remove the on-disk record; the cache must still serve the object.
	path := filepath.Join(dir, "claim", h[:2], h[2:]+".json")
	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove record failed: %v", err)
	}

	loaded, err := c.Load(object.TypeClaim, h)
	if err != nil {
		t.Fatalf("Cached load failed: %v", err)
	}
	if loaded.(*object.Claim).Content != "cached claim" {
		t.Errorf("Cache returned wrong object")
	}
	if !c.Exists(object.TypeClaim, h) {
		t.Error("Exists must consult the cache")
	}
}

func TestCached_UpdateRefreshesCache(t *testing.T) {
	c := NewCached(New(t.TempDir()), time.Minute, time.Minute)

	cl := object.NewClaim("state claim", "general", "factual", 0.5)
	h, err := c.Put(cl)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	cl.State = object.StateVerified
	if err := c.Update(cl); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	loaded, err := c.Load(object.TypeClaim, h)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.(*object.Claim).State != object.StateVerified {
		t.Error("Cache served a stale state after update")
	}
}
