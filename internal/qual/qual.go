// Package qual keeps the toolchain-qualification ledger: an append-only
// record of which tool binaries (assembler, linker, qualification harness)
// are approved for which architecture, identified by content hash.
package qual

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-version"
	"github.com/pkg/errors"

	"github.com/blacktop/regvet/internal/db"
	"github.com/blacktop/regvet/internal/model"
	"github.com/blacktop/regvet/pkg/abi"
)

// Ledger wraps a database with the append-only qualification rules.
type Ledger struct {
	db db.Database
}

// NewLedger creates a ledger over the given database.
func NewLedger(database db.Database) *Ledger {
	return &Ledger{db: database}
}

func hashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()
	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// Add qualifies the tool binary at path for arch. The ledger is
// append-only: re-adding an identical record is a no-op, while a
// conflicting hash for an existing (tool, version, arch) key fails with
// model.ErrHashMismatch.
func (l *Ledger) Add(tool, ver string, arch abi.Architecture, path string) (*model.QualifiedTool, error) {
	if _, err := version.NewVersion(ver); err != nil {
		return nil, errors.Wrapf(err, "bad tool version %q", ver)
	}
	if _, err := abi.Get(arch); err != nil {
		return nil, err
	}

	sum, size, err := hashFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to hash %s", path)
	}

	if prev, err := l.db.GetTool(tool, ver, string(arch)); err == nil {
		if prev.SHA256 == sum {
			return prev, nil
		}
		return nil, errors.Wrapf(model.ErrHashMismatch,
			"%s %s (%s) already qualified with %s", tool, ver, arch, prev.SHA256[:12])
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	t := &model.QualifiedTool{
		Tool:         tool,
		Version:      ver,
		Architecture: string(arch),
		SHA256:       sum,
		Size:         size,
		QualifiedAt:  time.Now().UTC(),
	}
	if err := l.db.CreateTool(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Check verifies the binary at path against the recorded hash for
// (tool, ver, arch). It returns model.ErrNotFound when the tool was never
// qualified and model.ErrHashMismatch when the binary changed since
// qualification.
func (l *Ledger) Check(tool, ver string, arch abi.Architecture, path string) (*model.QualifiedTool, error) {
	t, err := l.db.GetTool(tool, ver, string(arch))
	if err != nil {
		return nil, err
	}
	sum, _, err := hashFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to hash %s", path)
	}
	if sum != t.SHA256 {
		return t, errors.Wrapf(model.ErrHashMismatch, "%s: got %s, ledger has %s", path, sum[:12], t.SHA256[:12])
	}
	return t, nil
}

// List returns every ledger entry, oldest first.
func (l *Ledger) List() ([]model.QualifiedTool, error) {
	return l.db.Tools()
}

// Render formats one ledger entry for terminal output.
func Render(t *model.QualifiedTool) string {
	return fmt.Sprintf("%s %s (%s)  sha256:%s  %s  qualified %s",
		t.Tool, t.Version, t.Architecture, t.SHA256[:12],
		humanize.Bytes(uint64(t.Size)),
		humanize.Time(t.QualifiedAt))
}
