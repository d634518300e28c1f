package ingest

import (
	"fmt"

	"github.com/racevision/ingest-service-go/pkg/model"
)

// StorageError marks a failed write or read against the document store.
// It is fatal for the running writer and propagated to the orchestrator,
// which halts the remaining tiers.
type StorageError struct {
	Collection string
	Scope      model.Scope
	Err        error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure on %s (season %d round %d): %v",
		e.Collection, e.Scope.Season, e.Scope.Round, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// SubScopeError records a non-fatal failure for a single sub-scope.
// The writer continues with the remaining sub-scopes.
type SubScopeError struct {
	Scope model.Scope
	Err   error
}

func (e *SubScopeError) Error() string {
	return fmt.Sprintf("season %d round %d: %v", e.Scope.Season, e.Scope.Round, e.Err)
}

func (e *SubScopeError) Unwrap() error { return e.Err }
