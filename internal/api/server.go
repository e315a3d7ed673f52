// Package api exposes the repository over HTTP: read-only status and query
// endpoints plus verification and proof issuance. Every response uses a
// uniform JSON envelope.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/lumensyntax-org/truthgit/internal/object"
	"github.com/lumensyntax-org/truthgit/internal/proof"
	"github.com/lumensyntax-org/truthgit/internal/repo"
	"github.com/lumensyntax-org/truthgit/internal/store"
	"github.com/lumensyntax-org/truthgit/internal/validator"
)

// discoverFunc matches validator.Discover; injectable for tests.
type discoverFunc func(ctx context.Context, policy validator.Policy, min int) ([]validator.Validator, error)

// Server exposes one repository over HTTP. All state is explicit; there are
// no package-level globals.
type Server struct {
	addr    string
	version string
	repo    *repo.Repository
	proofs  *proof.Manager
	policy  validator.Policy
	runOpts validator.Options

	discover discoverFunc
}

// NewServer builds an API server over the given repository. The discovery
// policy decides which validator backends /api/verify may use.
func NewServer(addr, version string, r *repo.Repository, policy validator.Policy) *Server {
	return &Server{
		addr:     addr,
		version:  version,
		repo:     r,
		proofs:   proof.NewManager(r.Root(), r),
		policy:   policy,
		discover: validator.Discover,
	}
}

// Handler returns the route table. Split from Start so tests can drive it
// with httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/verify", s.handleVerify)
	mux.HandleFunc("/api/prove", s.handleProve)
	mux.HandleFunc("/api/verify-proof", s.handleVerifyProof)
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/api/claims", s.handleClaims)
	return mux
}

// Start serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// envelope is the uniform response shape for every endpoint.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Meta    meta   `json:"meta"`
}

type meta struct {
	Timestamp      string `json:"timestamp"`
	ProcessingTime string `json:"processingTime"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, start, fmt.Errorf("unknown path %s", r.URL.Path))
		return
	}
	writeData(w, http.StatusOK, start, map[string]any{
		"service": "truthgit",
		"version": s.version,
		"endpoints": []string{
			"/api/status", "/api/verify", "/api/prove",
			"/api/verify-proof", "/api/search", "/api/claims",
		},
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, start, errors.New("method not allowed"))
		return
	}

	st, err := s.repo.Status()
	if err != nil {
		writeError(w, statusFor(err), start, err)
		return
	}
	counts, err := s.repo.CountObjects()
	if err != nil {
		writeError(w, statusFor(err), start, err)
		return
	}
	writeData(w, http.StatusOK, start, map[string]any{
		"status":  st,
		"objects": counts,
	})
}

type verifyRequest struct {
	Claim      string  `json:"claim"`
	Domain     string  `json:"domain"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Local      bool    `json:"local"`
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, start, errors.New("method not allowed"))
		return
	}
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, start, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.Claim == "" {
		writeError(w, http.StatusBadRequest, start, errors.New("claim content is required"))
		return
	}

	cl, err := s.repo.Claim(req.Claim, req.Domain, req.Category, req.Confidence)
	if err != nil {
		writeError(w, statusFor(err), start, err)
		return
	}

	policy := s.policy
	if req.Local {
		policy = validator.DefaultPolicy(true)
	}
	validators, err := s.discover(r.Context(), policy, 2)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, start, err)
		return
	}

	raw, reduced := validator.Collect(r.Context(), validators, cl.Content, cl.Domain, s.runOpts)
	v, err := s.repo.VerifyClaim(cl.Hash, reduced, "api")
	if err != nil {
		writeError(w, statusFor(err), start, err)
		return
	}
	writeData(w, http.StatusOK, start, map[string]any{
		"claim":        cl,
		"verification": v,
		"validators":   raw,
	})
}

type proveRequest struct {
	ClaimHash        string `json:"claim_hash"`
	VerificationHash string `json:"verification_hash"`
}

func (s *Server) handleProve(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, start, errors.New("method not allowed"))
		return
	}
	var req proveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, start, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.ClaimHash == "" {
		writeError(w, http.StatusBadRequest, start, errors.New("claim_hash is required"))
		return
	}

	cert, err := s.issueProof(req.ClaimHash, req.VerificationHash)
	if err != nil {
		writeError(w, statusFor(err), start, err)
		return
	}
	compact, err := cert.ToCompact()
	if err != nil {
		writeError(w, http.StatusInternalServerError, start, err)
		return
	}
	writeData(w, http.StatusOK, start, map[string]any{
		"certificate": cert,
		"compact":     compact,
	})
}

func (s *Server) handleVerifyProof(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, start, errors.New("method not allowed"))
		return
	}
	var body json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, start, fmt.Errorf("decode request: %w", err))
		return
	}

	// Accept either a bare certificate object, a compact string, or a
	// {"proof": ...} wrapper.
	var input any = body
	var wrapper struct {
		Proof json.RawMessage `json:"proof"`
	}
	if err := json.Unmarshal(body, &wrapper); err == nil && len(wrapper.Proof) > 0 {
		input = wrapper.Proof
	}
	var compact string
	if raw, ok := input.(json.RawMessage); ok {
		if err := json.Unmarshal(raw, &compact); err == nil {
			input = compact
		}
	}

	valid, message, cert := proof.VerifyProofStandalone(input)
	writeData(w, http.StatusOK, start, map[string]any{
		"valid":       valid,
		"message":     message,
		"certificate": cert,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, start, errors.New("method not allowed"))
		return
	}
	q := r.URL.Query()
	results, err := s.repo.Search(q.Get("q"), q.Get("domain"), intParam(q.Get("limit"), 10))
	if err != nil {
		writeError(w, statusFor(err), start, err)
		return
	}
	writeData(w, http.StatusOK, start, map[string]any{
		"query":   q.Get("q"),
		"results": results,
	})
}

func (s *Server) handleClaims(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, start, errors.New("method not allowed"))
		return
	}
	q := r.URL.Query()
	// An empty query matches every claim; this is the listing endpoint.
	results, err := s.repo.Search("", q.Get("domain"), intParam(q.Get("limit"), 50))
	if err != nil {
		writeError(w, statusFor(err), start, err)
		return
	}
	writeData(w, http.StatusOK, start, map[string]any{
		"claims": results,
	})
}

// issueProof resolves the verification for a claim (newest in history when
// not named explicitly), generates the signing keypair on first use, and
// signs the certificate.
func (s *Server) issueProof(claimHash, verificationHash string) (*proof.Certificate, error) {
	loaded, err := s.repo.ObjectStore().Load(object.TypeClaim, claimHash)
	if err != nil {
		return nil, fmt.Errorf("claim %s: %w", claimHash, err)
	}
	cl := loaded.(*object.Claim)

	var v *object.Verification
	if verificationHash != "" {
		loaded, err := s.repo.ObjectStore().Load(object.TypeVerification, verificationHash)
		if err != nil {
			return nil, fmt.Errorf("verification %s: %w", verificationHash, err)
		}
		v = loaded.(*object.Verification)
	} else {
		history, err := s.repo.History(0)
		if err != nil {
			return nil, err
		}
		for _, entry := range history {
			if entry.ClaimHash == claimHash {
				v = entry
				break
			}
		}
		if v == nil {
			return nil, fmt.Errorf("claim %s has no committed verification: %w", claimHash, repo.ErrUnknownReference)
		}
	}

	if !s.proofs.KeysExist() {
		if err := s.proofs.GenerateKeypair(false); err != nil {
			return nil, err
		}
	}

	cfg, err := s.repo.Config()
	if err != nil {
		return nil, err
	}
	return s.proofs.CreateProof(proof.Request{
		ClaimHash:        cl.Hash,
		ClaimContent:     cl.Content,
		ClaimDomain:      cl.Domain,
		VerificationHash: v.Hash,
		ConsensusValue:   v.Consensus.Value,
		ConsensusPassed:  v.Consensus.Passed,
		Validators:       v.ValidatorNames(),
		Threshold:        cfg.ConsensusThreshold,
	})
}

func writeData(w http.ResponseWriter, status int, start time.Time, data any) {
	writeEnvelope(w, status, envelope{
		Success: true,
		Data:    data,
		Meta:    newMeta(start),
	})
}

func writeError(w http.ResponseWriter, status int, start time.Time, err error) {
	writeEnvelope(w, status, envelope{
		Success: false,
		Error:   err.Error(),
		Meta:    newMeta(start),
	})
}

func writeEnvelope(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func newMeta(start time.Time) meta {
	return meta{
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		ProcessingTime: time.Since(start).String(),
	}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repo.ErrNotInitialized):
		return http.StatusServiceUnavailable
	case errors.Is(err, repo.ErrInsufficientValidators):
		return http.StatusConflict
	case errors.Is(err, repo.ErrUnknownReference), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repo.ErrAlreadyExists), errors.Is(err, proof.ErrKeyExists):
		return http.StatusConflict
	case errors.Is(err, proof.ErrKeyMissing), errors.Is(err, proof.ErrInvalidCertificate):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func intParam(raw string, def int) int {
	if raw == "" {
		return def
	}
	if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
		return parsed
	}
	return def
}
