// Package model contains the database models for the qualification ledger
// and archived verification runs.
package model

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("no record found")
	// ErrHashMismatch is returned when a tool's content hash does not match
	// the ledger entry for its (tool, version, architecture) key.
	ErrHashMismatch = errors.New("tool hash mismatch")
)

// QualifiedTool is one append-only ledger row: a tool binary qualified for
// use on an architecture, identified by its content hash. Rows are never
// updated or deleted; a re-qualification is a new (tool, version, arch) key.
type QualifiedTool struct {
	gorm.Model
	Tool         string    `gorm:"uniqueIndex:idx_tool_ver_arch" json:"tool"`
	Version      string    `gorm:"uniqueIndex:idx_tool_ver_arch" json:"version"`
	Architecture string    `gorm:"uniqueIndex:idx_tool_ver_arch" json:"architecture"`
	SHA256       string    `json:"sha256"`
	Size         int64     `json:"size,omitempty"`
	QualifiedAt  time.Time `json:"qualified_at"`
}

// VerificationRun archives one compliance verdict.
type VerificationRun struct {
	gorm.Model
	UUID         string `gorm:"uniqueIndex" json:"uuid"`
	Architecture string `json:"architecture"`
	Pass         bool   `json:"pass"`
	// Violations holds the verdict's violation list as JSON.
	Violations string `json:"violations,omitempty"`
}
