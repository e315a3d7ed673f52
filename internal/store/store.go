// Package store persists immutable, content-addressed truth objects on
// disk. Records live under objects/<type>/<shard>/<rest>, where the shard is
// the first two hex characters of the content hash. Writes publish via
// temp-write-then-rename, so a record is either fully present or absent;
// storing content that already exists is a no-op.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lumensyntax-org/truthgit/internal/hashing"
	"github.com/lumensyntax-org/truthgit/internal/object"
)

var (
	// ErrNotFound indicates no record exists for the requested hash.
	ErrNotFound = errors.New("object not found")

	// ErrIntegrity indicates a loaded record's recomputed hash does not
	// match its claimed hash. Never ignore it: it means storage
	// corruption.
	ErrIntegrity = errors.New("object integrity violation")
)

const shardLen = 2

// Store is a durable content-addressed object store rooted at a directory.
type Store struct {
	root string
}

// New creates a store rooted at dir (typically <repo>/objects).
func New(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// Put computes the object's content hash, records it on the object, and
// writes the record atomically. Writing a hash that already exists is an
// idempotent no-op, which also makes concurrent puts of identical content
// safe.
func (s *Store) Put(o object.TruthObject) (string, error) {
	h, err := hashing.ContentHash(o)
	if err != nil {
		return "", fmt.Errorf("hash object: %w", err)
	}
	o.SetHash(h)

	path := s.objectPath(o.ObjectType(), h)
	if _, err := os.Stat(path); err == nil {
		return h, nil
	}
	if err := s.writeRecord(path, o); err != nil {
		return "", err
	}
	return h, nil
}

// Update rewrites the record for an already-stored object in place. Only
// metadata outside the canonical payload (such as a claim's state) may have
// changed: the recomputed hash must still match the object's hash.
func (s *Store) Update(o object.TruthObject) error {
	if o.ObjectHash() == "" {
		return fmt.Errorf("update requires a stored object")
	}
	computed, err := hashing.ContentHash(o)
	if err != nil {
		return fmt.Errorf("hash object: %w", err)
	}
	if computed != o.ObjectHash() {
		return fmt.Errorf("update would change identity of %s: %w", hashing.ShortHash(o.ObjectHash(), 0), ErrIntegrity)
	}
	return s.writeRecord(s.objectPath(o.ObjectType(), o.ObjectHash()), o)
}

// Load reads the record for the given type and hash, recomputing the content
// hash to detect corruption.
func (s *Store) Load(t object.Type, hash string) (object.TruthObject, error) {
	data, err := os.ReadFile(s.objectPath(t, hash))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s %s: %w", t, hashing.ShortHash(hash, 0), ErrNotFound)
		}
		return nil, fmt.Errorf("read %s %s: %w", t, hashing.ShortHash(hash, 0), err)
	}
	return s.decode(t, hash, data)
}

// Exists reports whether a record is present without loading it.
func (s *Store) Exists(t object.Type, hash string) bool {
	_, err := os.Stat(s.objectPath(t, hash))
	return err == nil
}

// IterObjects invokes fn for every stored object of the given type. Each
// call begins a fresh traversal; order follows directory enumeration and is
// not guaranteed. A non-nil error from fn stops the walk.
func (s *Store) IterObjects(t object.Type, fn func(object.TruthObject) error) error {
	typeDir := filepath.Join(s.root, string(t))
	shards, err := os.ReadDir(typeDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", typeDir, err)
	}

	for _, shard := range shards {
		if !shard.IsDir() {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(typeDir, shard.Name()))
		if err != nil {
			return fmt.Errorf("read shard %s: %w", shard.Name(), err)
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.HasSuffix(name, ".json") {
				continue
			}
			hash := shard.Name() + strings.TrimSuffix(name, ".json")
			obj, err := s.Load(t, hash)
			if err != nil {
				return err
			}
			if err := fn(obj); err != nil {
				return err
			}
		}
	}
	return nil
}

// CountObjects returns the number of stored records per type.
func (s *Store) CountObjects() (map[object.Type]int, error) {
	counts := make(map[object.Type]int, len(object.AllTypes()))
	for _, t := range object.AllTypes() {
		counts[t] = 0
		typeDir := filepath.Join(s.root, string(t))
		shards, err := os.ReadDir(typeDir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read %s: %w", typeDir, err)
		}
		for _, shard := range shards {
			if !shard.IsDir() {
				continue
			}
			entries, err := os.ReadDir(filepath.Join(typeDir, shard.Name()))
			if err != nil {
				return nil, fmt.Errorf("read shard %s: %w", shard.Name(), err)
			}
			for _, entry := range entries {
				if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
					counts[t]++
				}
			}
		}
	}
	return counts, nil
}

func (s *Store) objectPath(t object.Type, hash string) string {
	if len(hash) <= shardLen {
		return filepath.Join(s.root, string(t), hash+".json")
	}
	return filepath.Join(s.root, string(t), hash[:shardLen], hash[shardLen:]+".json")
}

// writeRecord publishes a record atomically: write to a temp file in the
// destination directory, then rename over the final path.
func (s *Store) writeRecord(path string, o object.TruthObject) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}

	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".put-*")
	if err != nil {
		return fmt.Errorf("create temp record: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp record: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("publish record: %w", err)
	}
	return nil
}

func (s *Store) decode(t object.Type, hash string, data []byte) (object.TruthObject, error) {
	obj, err := emptyObject(t)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, obj); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", t, hashing.ShortHash(hash, 0), err)
	}

	computed, err := hashing.ContentHash(obj)
	if err != nil {
		return nil, fmt.Errorf("rehash %s %s: %w", t, hashing.ShortHash(hash, 0), err)
	}
	if computed != hash {
		return nil, fmt.Errorf("%s %s: recomputed %s: %w", t, hashing.ShortHash(hash, 0), hashing.ShortHash(computed, 0), ErrIntegrity)
	}
	obj.SetHash(hash)
	return obj, nil
}

func emptyObject(t object.Type) (object.TruthObject, error) {
	switch t {
	case object.TypeClaim:
		return &object.Claim{}, nil
	case object.TypeVerification:
		return &object.Verification{}, nil
	case object.TypeAxiom:
		return &object.Axiom{}, nil
	case object.TypeContext:
		return &object.Context{}, nil
	default:
		return nil, fmt.Errorf("unknown object type %q", t)
	}
}
