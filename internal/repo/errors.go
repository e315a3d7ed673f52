package repo

import "errors"

// Core error taxonomy. Integrity failures surface as store.ErrIntegrity and
// are never swallowed; key and certificate errors live in the proof package.
var (
	// ErrNotInitialized indicates an operation on a non-existent
	// repository.
	ErrNotInitialized = errors.New("not a truth repository")

	// ErrAlreadyExists indicates init over an existing repository
	// without force.
	ErrAlreadyExists = errors.New("repository already exists")

	// ErrInsufficientValidators indicates fewer than two successful
	// validator results were supplied to verify.
	ErrInsufficientValidators = errors.New("need at least 2 successful validator results")

	// ErrUnknownReference indicates a referenced object hash is absent
	// from the store.
	ErrUnknownReference = errors.New("unknown object reference")
)
