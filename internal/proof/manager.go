package proof

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var (
	// ErrKeyMissing indicates a proof operation before keypair
	// generation.
	ErrKeyMissing = errors.New("signing keypair not found")

	// ErrKeyExists indicates keypair generation over existing keys
	// without explicit regeneration.
	ErrKeyExists = errors.New("signing keypair already exists")

	// ErrInvalidCertificate covers signature mismatches, missing
	// required fields, and unsupported format versions.
	ErrInvalidCertificate = errors.New("invalid certificate")
)

const (
	keysDirName = "keys"
	keyFileName = "signing.json"
	keyFilePerm = 0o600
)

// CommitChecker validates that a claim/verification pair is committed and
// mutually consistent. The repository implements it; a nil checker skips
// the check (standalone issuance).
type CommitChecker interface {
	CheckCommitted(claimHash, verificationHash string) error
}

// keyFile is the on-disk keypair layout. The private key never leaves the
// repository's keys directory.
type keyFile struct {
	PubKey  string `json:"pub_key"`
	PrivKey string `json:"priv_key"`
}

// Request carries the fields of a certificate to be issued.
type Request struct {
	ClaimHash        string
	ClaimContent     string
	ClaimDomain      string
	VerificationHash string
	ConsensusValue   float64
	ConsensusPassed  bool
	Validators       []string
	Threshold        float64
}

// Manager holds the signing keypair for one repository and issues
// certificates from committed claim/verification pairs.
type Manager struct {
	root    string
	checker CommitChecker
	priv    ed25519.PrivateKey
	pub     ed25519.PublicKey
}

// NewManager binds a Manager to a repository root. Keys load lazily on
// first use.
func NewManager(root string, checker CommitChecker) *Manager {
	return &Manager{root: root, checker: checker}
}

// KeysExist probes for a persisted keypair.
func (m *Manager) KeysExist() bool {
	_, err := os.Stat(m.keyPath())
	return err == nil
}

// GenerateKeypair creates an Ed25519 signing keypair and persists it at the
// repository root with owner-only permissions. Fails with ErrKeyExists
// unless regenerate is set.
func (m *Manager) GenerateKeypair(regenerate bool) error {
	if m.KeysExist() && !regenerate {
		return fmt.Errorf("%s: %w", m.keyPath(), ErrKeyExists)
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("generate keypair: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.keyPath()), 0o700); err != nil {
		return fmt.Errorf("create keys dir: %w", err)
	}
	data, err := json.MarshalIndent(keyFile{
		PubKey:  hex.EncodeToString(pub),
		PrivKey: hex.EncodeToString(priv),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal key file: %w", err)
	}
	if err := os.WriteFile(m.keyPath(), data, keyFilePerm); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}

	m.pub = pub
	m.priv = priv
	return nil
}

// PublicKeyHex returns the issuer public key in hex form.
func (m *Manager) PublicKeyHex() (string, error) {
	if err := m.loadKeys(); err != nil {
		return "", err
	}
	return hex.EncodeToString(m.pub), nil
}

// CreateProof builds, canonicalizes, and signs a certificate from a
// committed claim/verification pair. Staged or unknown references are
// rejected before anything is signed.
func (m *Manager) CreateProof(req Request) (*Certificate, error) {
	if err := m.loadKeys(); err != nil {
		return nil, err
	}
	if m.checker != nil {
		if err := m.checker.CheckCommitted(req.ClaimHash, req.VerificationHash); err != nil {
			return nil, err
		}
	}

	cert := &Certificate{
		ClaimHash:        req.ClaimHash,
		ClaimContent:     req.ClaimContent,
		ClaimDomain:      req.ClaimDomain,
		VerificationHash: req.VerificationHash,
		ConsensusValue:   req.ConsensusValue,
		ConsensusPassed:  req.ConsensusPassed,
		Validators:       append([]string(nil), req.Validators...),
		Threshold:        req.Threshold,
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
		IssuerPublicKey:  hex.EncodeToString(m.pub),
		FormatVersion:    FormatVersion,
	}

	payload, err := cert.SigningBytes()
	if err != nil {
		return nil, err
	}
	cert.Signature = hex.EncodeToString(ed25519.Sign(m.priv, payload))
	return cert, nil
}

func (m *Manager) keyPath() string {
	return filepath.Join(m.root, keysDirName, keyFileName)
}

func (m *Manager) loadKeys() error {
	if m.priv != nil {
		return nil
	}
	data, err := os.ReadFile(m.keyPath())
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", m.keyPath(), ErrKeyMissing)
		}
		return fmt.Errorf("read key file: %w", err)
	}

	var kf keyFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return fmt.Errorf("parse key file: %w", err)
	}
	priv, err := hex.DecodeString(kf.PrivKey)
	if err != nil {
		return fmt.Errorf("decode private key: %w", err)
	}
	pub, err := hex.DecodeString(kf.PubKey)
	if err != nil {
		return fmt.Errorf("decode public key: %w", err)
	}
	if len(priv) != ed25519.PrivateKeySize || len(pub) != ed25519.PublicKeySize {
		return fmt.Errorf("key file %s holds malformed key material", m.keyPath())
	}

	m.priv = ed25519.PrivateKey(priv)
	m.pub = ed25519.PublicKey(pub)
	return nil
}
