package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lumensyntax-org/truthgit/internal/object"
)

func TestStore_PutLoadRoundtrip(t *testing.T) {
	s := New(t.TempDir())
	cl := object.NewClaim("roundtrip claim", "general", "factual", 0.7)

	h, err := s.Put(cl)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if cl.Hash != h {
		t.Errorf("Put did not record the hash on the object")
	}

	loaded, err := s.Load(object.TypeClaim, h)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got := loaded.(*object.Claim)
	if got.Content != "roundtrip claim" || got.Domain != "general" {
		t.Errorf("Loaded claim does not match stored: %+v", got)
	}
	if got.Hash != h {
		t.Errorf("Loaded claim lost its hash")
	}
}

func TestStore_PutIdempotent(t *testing.T) {
	s := New(t.TempDir())

	h1, err := s.Put(object.NewClaim("same content", "general", "factual", 0.5))
	if err != nil {
		t.Fatalf("First Put failed: %v", err)
	}
	h2, err := s.Put(object.NewClaim("same content", "general", "factual", 0.5))
	if err != nil {
		t.Fatalf("Second Put failed: %v", err)
	}
	if h1 != h2 {
		t.Errorf("Identical content produced different hashes: %s vs %s", h1, h2)
	}

	counts, err := s.CountObjects()
	if err != nil {
		t.Fatalf("CountObjects failed: %v", err)
	}
	if counts[object.TypeClaim] != 1 {
		t.Errorf("Expected a single stored record, got %d", counts[object.TypeClaim])
	}
}

func TestStore_LoadMissing(t *testing.T) {
	s := New(t.TempDir())

	_, err := s.Load(object.TypeClaim, "deadbeef")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestStore_TamperDetection(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	cl := object.NewClaim("honest claim", "general", "factual", 0.5)
	h, err := s.Put(cl)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Corrupt the stored record directly.
	path := filepath.Join(dir, "claim", h[:2], h[2:]+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Read record failed: %v", err)
	}
	tampered := strings.Replace(string(data), "honest claim", "dishonest claim", 1)
	if err := os.WriteFile(path, []byte(tampered), 0o644); err != nil {
		t.Fatalf("Write tampered record failed: %v", err)
	}

	_, err = s.Load(object.TypeClaim, h)
	if !errors.Is(err, ErrIntegrity) {
		t.Errorf("Expected ErrIntegrity for tampered record, got %v", err)
	}
}

func TestStore_UpdateKeepsIdentity(t *testing.T) {
	s := New(t.TempDir())
	cl := object.NewClaim("mutable state", "general", "factual", 0.5)
	h, err := s.Put(cl)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// State is outside the canonical payload, so this is legal.
	cl.State = object.StateVerified
	if err := s.Update(cl); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	loaded, err := s.Load(object.TypeClaim, h)
	if err != nil {
		t.Fatalf("Load after update failed: %v", err)
	}
	if loaded.(*object.Claim).State != object.StateVerified {
		t.Error("Update did not persist the state transition")
	}

	// Content is identity; changing it must be rejected.
	cl.Content = "different content"
	err = s.Update(cl)
	if !errors.Is(err, ErrIntegrity) {
		t.Errorf("Expected ErrIntegrity for identity change, got %v", err)
	}
}

func TestStore_IterObjects(t *testing.T) {
	s := New(t.TempDir())
	contents := map[string]bool{"first": false, "second": false, "third": false}
	for c := range contents {
		if _, err := s.Put(object.NewClaim(c, "general", "factual", 0.5)); err != nil {
			t.Fatalf("Put %q failed: %v", c, err)
		}
	}

	err := s.IterObjects(object.TypeClaim, func(o object.TruthObject) error {
		contents[o.(*object.Claim).Content] = true
		return nil
	})
	if err != nil {
		t.Fatalf("IterObjects failed: %v", err)
	}
	for c, seen := range contents {
		if !seen {
			t.Errorf("IterObjects skipped %q", c)
		}
	}
}

func TestStore_IterObjectsEmptyType(t *testing.T) {
	s := New(t.TempDir())
	err := s.IterObjects(object.TypeAxiom, func(o object.TruthObject) error {
		t.Error("Callback invoked for empty store")
		return nil
	})
	if err != nil {
		t.Errorf("Iterating an absent type dir must be a no-op, got %v", err)
	}
}
