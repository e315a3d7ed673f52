// Package repo orchestrates the truth repository: staging, verification
// commits, HEAD and perspective pointers, history traversal, and search. It
// composes the hashing service, the object store, and the consensus engine.
//
// The repository is single-writer: mutating operations serialize behind a
// file lock, and pointer updates publish via temp-write-then-rename so a
// crash never leaves a half-committed state.
package repo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/lumensyntax-org/truthgit/internal/consensus"
	"github.com/lumensyntax-org/truthgit/internal/hashing"
	"github.com/lumensyntax-org/truthgit/internal/object"
	"github.com/lumensyntax-org/truthgit/internal/store"
)

// DefaultRoot is the conventional repository directory name.
const DefaultRoot = ".truth"

const (
	objectsDir   = "objects"
	keysDir      = "keys"
	pointersFile = "pointers.json"
	configFile   = "config.json"
	lockFile     = ".lock"

	cacheTTL     = 10 * time.Minute
	cacheCleanup = 15 * time.Minute
)

// Config holds repository-level settings persisted in config.json.
type Config struct {
	ConsensusThreshold float64 `json:"consensus_threshold"`
	RepoID             string  `json:"repo_id"`
}

// pointers is the mutable, non-content-addressed repository state.
type pointers struct {
	Staged       []string          `json:"staged"`
	Head         string            `json:"head,omitempty"`
	Perspectives map[string]string `json:"perspectives"`
}

// StagedEntry is one pending claim awaiting verification.
type StagedEntry struct {
	Hash string      `json:"hash"`
	Type object.Type `json:"type"`
}

// Status is a snapshot of the repository's pointer state. Consensus points
// at the most recent passing verification, which may trail HEAD.
type Status struct {
	Staged       []StagedEntry     `json:"staged"`
	Head         string            `json:"head,omitempty"`
	Consensus    string            `json:"consensus,omitempty"`
	Perspectives map[string]string `json:"perspectives"`
}

// Repository is the orchestration layer over one on-disk truth repository.
type Repository struct {
	root  string
	store *store.Cached
	lock  *flock.Flock
}

// Open binds a Repository to a root directory without touching disk. Use
// Init to create the layout and IsInitialized to probe for it.
func Open(root string) *Repository {
	if root == "" {
		root = DefaultRoot
	}
	return &Repository{
		root:  root,
		store: store.NewCached(store.New(filepath.Join(root, objectsDir)), cacheTTL, cacheCleanup),
		lock:  flock.New(filepath.Join(root, lockFile)),
	}
}

// Root returns the repository root directory.
func (r *Repository) Root() string {
	return r.root
}

// ObjectStore exposes the underlying object store (used by the proof
// manager to check committed objects).
func (r *Repository) ObjectStore() *store.Cached {
	return r.store
}

// IsInitialized cheaply probes for the repository layout.
func (r *Repository) IsInitialized() bool {
	_, err := os.Stat(filepath.Join(r.root, configFile))
	return err == nil
}

// Init creates the on-disk layout. Fails with ErrAlreadyExists unless force.
func (r *Repository) Init(force bool) error {
	if r.IsInitialized() && !force {
		return fmt.Errorf("%s: %w", r.root, ErrAlreadyExists)
	}

	for _, t := range object.AllTypes() {
		if err := os.MkdirAll(filepath.Join(r.root, objectsDir, string(t)), 0o755); err != nil {
			return fmt.Errorf("create object dir: %w", err)
		}
	}
	// Private key material lives here; keep the directory owner-only.
	if err := os.MkdirAll(filepath.Join(r.root, keysDir), 0o700); err != nil {
		return fmt.Errorf("create keys dir: %w", err)
	}

	cfg := Config{
		ConsensusThreshold: consensus.DefaultThreshold,
		RepoID:             uuid.NewString(),
	}
	if err := writeJSONAtomic(filepath.Join(r.root, configFile), cfg); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	ptrs := pointers{Staged: []string{}, Perspectives: map[string]string{}}
	if err := writeJSONAtomic(filepath.Join(r.root, pointersFile), ptrs); err != nil {
		return fmt.Errorf("write pointers: %w", err)
	}
	return nil
}

// Config reads the repository configuration.
func (r *Repository) Config() (Config, error) {
	var cfg Config
	data, err := os.ReadFile(filepath.Join(r.root, configFile))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, fmt.Errorf("%s: %w", r.root, ErrNotInitialized)
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if cfg.ConsensusThreshold <= 0 {
		cfg.ConsensusThreshold = consensus.DefaultThreshold
	}
	return cfg, nil
}

// Claim constructs and stores a claim, dedups it by content hash, and adds
// it to the staging set. Re-claiming existing content returns the stored
// object unchanged.
func (r *Repository) Claim(content, domain, category string, confidence float64) (*object.Claim, error) {
	if err := r.requireInit(); err != nil {
		return nil, err
	}
	if err := r.lock.Lock(); err != nil {
		return nil, fmt.Errorf("acquire repository lock: %w", err)
	}
	defer func() { _ = r.lock.Unlock() }()

	cl := object.NewClaim(content, domain, category, confidence)
	h, err := hashing.ContentHash(cl)
	if err != nil {
		return nil, err
	}

	if r.store.Exists(object.TypeClaim, h) {
		existing, err := r.store.Load(object.TypeClaim, h)
		if err != nil {
			return nil, err
		}
		cl = existing.(*object.Claim)
	} else {
		if _, err := r.store.Put(cl); err != nil {
			return nil, err
		}
	}

	ptrs, err := r.readPointers()
	if err != nil {
		return nil, err
	}
	if !containsString(ptrs.Staged, h) {
		ptrs.Staged = append(ptrs.Staged, h)
		if err := r.writePointers(ptrs); err != nil {
			return nil, err
		}
	}
	return cl, nil
}

// GetStaged returns the pending claims with their type tags.
func (r *Repository) GetStaged() ([]StagedEntry, error) {
	if err := r.requireInit(); err != nil {
		return nil, err
	}
	ptrs, err := r.readPointers()
	if err != nil {
		return nil, err
	}
	entries := make([]StagedEntry, 0, len(ptrs.Staged))
	for _, h := range ptrs.Staged {
		entries = append(entries, StagedEntry{Hash: h, Type: object.TypeClaim})
	}
	return entries, nil
}

// Verify resolves every staged claim against the supplied validator
// results. Per claim it persists a Verification (parent = current HEAD),
// transitions the claim's state, advances HEAD, and unstages the claim; the
// pointer publication is the atomic commit point. Returns the last
// Verification committed, or nil if nothing was staged.
func (r *Repository) Verify(results map[string]object.VerifierResult, trigger string) (*object.Verification, error) {
	if err := r.requireInit(); err != nil {
		return nil, err
	}
	if n := successfulCount(results); n < consensus.Quorum {
		return nil, fmt.Errorf("%w (got %d)", ErrInsufficientValidators, n)
	}
	if err := r.lock.Lock(); err != nil {
		return nil, fmt.Errorf("acquire repository lock: %w", err)
	}
	defer func() { _ = r.lock.Unlock() }()

	ptrs, err := r.readPointers()
	if err != nil {
		return nil, err
	}
	if len(ptrs.Staged) == 0 {
		return nil, nil
	}
	cfg, err := r.Config()
	if err != nil {
		return nil, err
	}

	var last *object.Verification
	staged := append([]string(nil), ptrs.Staged...)
	for _, claimHash := range staged {
		v, err := r.commitVerification(ptrs, cfg, claimHash, results, trigger)
		if err != nil {
			return last, err
		}
		last = v
	}
	return last, nil
}

// VerifyClaim resolves a single staged claim against the supplied validator
// results, leaving the rest of the staging set untouched. Used when each
// claim gets its own validator run.
func (r *Repository) VerifyClaim(claimHash string, results map[string]object.VerifierResult, trigger string) (*object.Verification, error) {
	if err := r.requireInit(); err != nil {
		return nil, err
	}
	if n := successfulCount(results); n < consensus.Quorum {
		return nil, fmt.Errorf("%w (got %d)", ErrInsufficientValidators, n)
	}
	if err := r.lock.Lock(); err != nil {
		return nil, fmt.Errorf("acquire repository lock: %w", err)
	}
	defer func() { _ = r.lock.Unlock() }()

	ptrs, err := r.readPointers()
	if err != nil {
		return nil, err
	}
	if !containsString(ptrs.Staged, claimHash) {
		return nil, fmt.Errorf("claim %s is not staged: %w", hashing.ShortHash(claimHash, 0), ErrUnknownReference)
	}
	cfg, err := r.Config()
	if err != nil {
		return nil, err
	}
	return r.commitVerification(ptrs, cfg, claimHash, results, trigger)
}

// commitVerification persists one verification, transitions the claim
// state, and publishes the pointer update. Callers hold the lock.
func (r *Repository) commitVerification(ptrs *pointers, cfg Config, claimHash string, results map[string]object.VerifierResult, trigger string) (*object.Verification, error) {
	loaded, err := r.store.Load(object.TypeClaim, claimHash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("staged claim %s: %w", hashing.ShortHash(claimHash, 0), ErrUnknownReference)
		}
		return nil, err
	}
	cl := loaded.(*object.Claim)

	opinions := make(map[string]consensus.Opinion, len(results))
	for name, res := range results {
		opinions[name] = consensus.Opinion{Confidence: res.Confidence, Reasoning: res.Reasoning}
	}
	cons := consensus.Calculate(opinions, r.thresholdFor(cl.Domain, cfg))

	v := object.NewVerification(claimHash, results, cons, trigger, ptrs.Head)
	if _, err := r.store.Put(v); err != nil {
		return nil, err
	}

	if cons.Passed {
		cl.State = object.StateVerified
	} else {
		cl.State = object.StateRejected
	}
	if err := r.store.Update(cl); err != nil {
		return nil, err
	}

	ptrs.Staged = removeString(ptrs.Staged, claimHash)
	ptrs.Head = v.Hash
	if err := r.writePointers(ptrs); err != nil {
		return nil, err
	}
	return v, nil
}

// Status returns the pointer snapshot: staged entries, HEAD, the most
// recent passing verification, and the perspectives map.
func (r *Repository) Status() (*Status, error) {
	if err := r.requireInit(); err != nil {
		return nil, err
	}
	ptrs, err := r.readPointers()
	if err != nil {
		return nil, err
	}

	st := &Status{
		Staged:       make([]StagedEntry, 0, len(ptrs.Staged)),
		Head:         ptrs.Head,
		Perspectives: ptrs.Perspectives,
	}
	for _, h := range ptrs.Staged {
		st.Staged = append(st.Staged, StagedEntry{Hash: h, Type: object.TypeClaim})
	}

	// The consensus pointer trails HEAD back to the latest passing
	// verification.
	chain, err := r.walkHistory(ptrs.Head, 0)
	if err != nil {
		return nil, err
	}
	for _, v := range chain {
		if v.Consensus.Passed {
			st.Consensus = v.Hash
			break
		}
	}
	return st, nil
}

// History walks the verification chain from HEAD via parent links,
// newest-first, up to limit entries (0 means unbounded).
func (r *Repository) History(limit int) ([]*object.Verification, error) {
	if err := r.requireInit(); err != nil {
		return nil, err
	}
	ptrs, err := r.readPointers()
	if err != nil {
		return nil, err
	}
	return r.walkHistory(ptrs.Head, limit)
}

// SetPerspective points a named reference at a verification. Perspectives
// are independent named pointers; there are no merge semantics.
func (r *Repository) SetPerspective(name, verificationHash string) error {
	if err := r.requireInit(); err != nil {
		return err
	}
	if !r.store.Exists(object.TypeVerification, verificationHash) {
		return fmt.Errorf("verification %s: %w", hashing.ShortHash(verificationHash, 0), ErrUnknownReference)
	}
	if err := r.lock.Lock(); err != nil {
		return fmt.Errorf("acquire repository lock: %w", err)
	}
	defer func() { _ = r.lock.Unlock() }()

	ptrs, err := r.readPointers()
	if err != nil {
		return err
	}
	ptrs.Perspectives[name] = verificationHash
	return r.writePointers(ptrs)
}

// DeletePerspective removes a named reference. Removing an absent name is a
// no-op.
func (r *Repository) DeletePerspective(name string) error {
	if err := r.requireInit(); err != nil {
		return err
	}
	if err := r.lock.Lock(); err != nil {
		return fmt.Errorf("acquire repository lock: %w", err)
	}
	defer func() { _ = r.lock.Unlock() }()

	ptrs, err := r.readPointers()
	if err != nil {
		return err
	}
	delete(ptrs.Perspectives, name)
	return r.writePointers(ptrs)
}

// Promote creates an axiom from a verified claim. Promotion is explicit;
// nothing promotes automatically.
func (r *Repository) Promote(claimHash string, axiomType object.AxiomType) (*object.Axiom, error) {
	if err := r.requireInit(); err != nil {
		return nil, err
	}
	loaded, err := r.store.Load(object.TypeClaim, claimHash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("claim %s: %w", hashing.ShortHash(claimHash, 0), ErrUnknownReference)
		}
		return nil, err
	}
	cl := loaded.(*object.Claim)
	if cl.State != object.StateVerified {
		return nil, fmt.Errorf("claim %s is %s, only VERIFIED claims can be promoted", hashing.ShortHash(claimHash, 0), cl.State)
	}

	ax := object.NewAxiom(cl, axiomType)
	if _, err := r.store.Put(ax); err != nil {
		return nil, err
	}
	return ax, nil
}

// SaveContext stores domain metadata. A threshold of 0 keeps the repository
// default for that domain.
func (r *Repository) SaveContext(domain, description string, validators []string, threshold float64) (*object.Context, error) {
	if err := r.requireInit(); err != nil {
		return nil, err
	}
	cx := object.NewContext(domain, description, validators, threshold)
	if _, err := r.store.Put(cx); err != nil {
		return nil, err
	}
	return cx, nil
}

// GetContext returns the most recent context for a domain, or nil if none
// exists.
func (r *Repository) GetContext(domain string) (*object.Context, error) {
	if err := r.requireInit(); err != nil {
		return nil, err
	}
	var latest *object.Context
	err := r.store.IterObjects(object.TypeContext, func(o object.TruthObject) error {
		cx := o.(*object.Context)
		if cx.Domain != domain {
			return nil
		}
		if latest == nil || cx.Timestamp.After(latest.Timestamp) {
			latest = cx
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return latest, nil
}

// ListContexts returns every stored context record.
func (r *Repository) ListContexts() ([]*object.Context, error) {
	if err := r.requireInit(); err != nil {
		return nil, err
	}
	var contexts []*object.Context
	err := r.store.IterObjects(object.TypeContext, func(o object.TruthObject) error {
		contexts = append(contexts, o.(*object.Context))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return contexts, nil
}

// FindByPrefix scans all types for an object whose hash starts with the
// given prefix. Display convenience only.
func (r *Repository) FindByPrefix(prefix string) (object.TruthObject, error) {
	if err := r.requireInit(); err != nil {
		return nil, err
	}
	var found object.TruthObject
	errStop := errors.New("stop")
	for _, t := range object.AllTypes() {
		err := r.store.IterObjects(t, func(o object.TruthObject) error {
			if len(o.ObjectHash()) >= len(prefix) && o.ObjectHash()[:len(prefix)] == prefix {
				found = o
				return errStop
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStop) {
			return nil, err
		}
		if found != nil {
			return found, nil
		}
	}
	return nil, fmt.Errorf("object %s: %w", prefix, store.ErrNotFound)
}

// CheckCommitted validates that a claim/verification pair is committed and
// mutually consistent: the verification must exist and must reference the
// given claim, and the claim itself must be present. Satisfies the proof
// manager's CommitChecker.
func (r *Repository) CheckCommitted(claimHash, verificationHash string) error {
	loaded, err := r.store.Load(object.TypeVerification, verificationHash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("verification %s: %w", hashing.ShortHash(verificationHash, 0), ErrUnknownReference)
		}
		return err
	}
	v := loaded.(*object.Verification)
	if v.ClaimHash != claimHash {
		return fmt.Errorf("verification %s resolves claim %s, not %s: %w",
			hashing.ShortHash(verificationHash, 0), hashing.ShortHash(v.ClaimHash, 0), hashing.ShortHash(claimHash, 0), ErrUnknownReference)
	}
	if !r.store.Exists(object.TypeClaim, claimHash) {
		return fmt.Errorf("claim %s: %w", hashing.ShortHash(claimHash, 0), ErrUnknownReference)
	}
	return nil
}

// CountObjects reports stored record counts per type.
func (r *Repository) CountObjects() (map[object.Type]int, error) {
	if err := r.requireInit(); err != nil {
		return nil, err
	}
	return r.store.CountObjects()
}

// thresholdFor applies a domain context's threshold override when present.
func (r *Repository) thresholdFor(domain string, cfg Config) float64 {
	cx, err := r.GetContext(domain)
	if err == nil && cx != nil && cx.Threshold > 0 {
		return cx.Threshold
	}
	return cfg.ConsensusThreshold
}

// walkHistory follows parent links from head, newest-first, guarding
// against cycles. limit 0 means unbounded. A record that fails to load is
// storage corruption and surfaces as an error, never a shorter chain.
func (r *Repository) walkHistory(head string, limit int) ([]*object.Verification, error) {
	var chain []*object.Verification
	seen := make(map[string]bool)
	for h := head; h != "" && !seen[h]; {
		if limit > 0 && len(chain) >= limit {
			break
		}
		seen[h] = true
		loaded, err := r.store.Load(object.TypeVerification, h)
		if err != nil {
			return nil, fmt.Errorf("history entry %s: %w", hashing.ShortHash(h, 0), err)
		}
		v := loaded.(*object.Verification)
		chain = append(chain, v)
		h = v.Parent
	}
	return chain, nil
}

func (r *Repository) requireInit() error {
	if !r.IsInitialized() {
		return fmt.Errorf("%s: %w", r.root, ErrNotInitialized)
	}
	return nil
}

func (r *Repository) readPointers() (*pointers, error) {
	data, err := os.ReadFile(filepath.Join(r.root, pointersFile))
	if err != nil {
		return nil, fmt.Errorf("read pointers: %w", err)
	}
	var ptrs pointers
	if err := json.Unmarshal(data, &ptrs); err != nil {
		return nil, fmt.Errorf("parse pointers: %w", err)
	}
	if ptrs.Staged == nil {
		ptrs.Staged = []string{}
	}
	if ptrs.Perspectives == nil {
		ptrs.Perspectives = map[string]string{}
	}
	return &ptrs, nil
}

func (r *Repository) writePointers(ptrs *pointers) error {
	return writeJSONAtomic(filepath.Join(r.root, pointersFile), ptrs)
}

// writeJSONAtomic publishes a JSON file via temp-write-then-rename.
func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".ptr-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("publish %s: %w", filepath.Base(path), err)
	}
	return nil
}

// successfulCount counts results carrying an in-range confidence. An
// out-of-range confidence is a validator error, not an opinion, and must
// not satisfy the quorum.
func successfulCount(results map[string]object.VerifierResult) int {
	n := 0
	for _, res := range results {
		if res.Confidence >= 0 && res.Confidence <= 1 {
			n++
		}
	}
	return n
}

func containsString(s []string, target string) bool {
	for _, v := range s {
		if v == target {
			return true
		}
	}
	return false
}

func removeString(s []string, target string) []string {
	out := s[:0]
	for _, v := range s {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}
