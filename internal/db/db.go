// Package db provides a database interface and implementations.
package db

import "github.com/blacktop/regvet/internal/model"

// Database is the interface that wraps the ledger and run-history
// operations.
type Database interface {
	// Connect connects to the database.
	Connect() error

	// CreateTool appends a new qualified tool to the ledger.
	// It returns model.ErrHashMismatch via the caller's duplicate check;
	// the ledger itself only rejects duplicate keys.
	CreateTool(t *model.QualifiedTool) error

	// GetTool returns the ledger entry for the given key.
	// It returns model.ErrNotFound if the key does not exist.
	GetTool(tool, version, arch string) (*model.QualifiedTool, error)

	// Tools returns every ledger entry, oldest first.
	Tools() ([]model.QualifiedTool, error)

	// SaveRun archives a verification run.
	SaveRun(r *model.VerificationRun) error

	// Runs returns the most recent verification runs, newest first.
	Runs(limit int) ([]model.VerificationRun, error)

	// Close closes the database.
	Close() error
}
