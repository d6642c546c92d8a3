package types

import (
	"github.com/blacktop/regvet/pkg/verify"
)

var (
	BuildVersion string
	BuildTime    string
)

// Version is the version struct
type Version struct {
	APIVersion     string `json:"api_version,omitempty"`
	OSType         string `json:"os_type,omitempty"`
	BuilderVersion string `json:"builder_version,omitempty"`
}

// swagger:response genericError
type GenericError struct {
	Error string `json:"error"`
}

// VerifyRequest carries a before/after register pair for one call boundary.
type VerifyRequest struct {
	Arch     string            `json:"arch" binding:"required"`
	Before   map[string]uint64 `json:"before" binding:"required"`
	After    map[string]uint64 `json:"after" binding:"required"`
	AtEntry  bool              `json:"at_entry,omitempty"`
	ArgCount int               `json:"arg_count,omitempty"`
	AtExit   bool              `json:"at_exit,omitempty"`
}

// VerifyResponse wraps a verdict with the archived run id.
type VerifyResponse struct {
	ID      string          `json:"id"`
	Verdict *verify.Verdict `json:"verdict"`
}

// QualRequest qualifies a tool binary for an architecture.
type QualRequest struct {
	Tool    string `json:"tool" binding:"required"`
	Version string `json:"version" binding:"required"`
	Arch    string `json:"arch" binding:"required"`
	Path    string `json:"path" binding:"required"`
}
