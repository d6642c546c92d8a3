package qual

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/blacktop/regvet/internal/db"
	"github.com/blacktop/regvet/internal/model"
	"github.com/blacktop/regvet/pkg/abi"
)

func testLedger(t *testing.T) *Ledger {
	t.Helper()
	database, err := db.NewInMemory("")
	if err != nil {
		t.Fatal(err)
	}
	if err := database.Connect(); err != nil {
		t.Fatal(err)
	}
	return NewLedger(database)
}

func writeTool(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLedgerAddAndCheck(t *testing.T) {
	l := testLedger(t)
	path := writeTool(t, "as", "fake assembler v1")

	added, err := l.Add("gas", "2.41.0", abi.RV64G, path)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if added.SHA256 == "" || added.Size == 0 {
		t.Errorf("Add() = %+v, want hash and size recorded", added)
	}

	got, err := l.Check("gas", "2.41.0", abi.RV64G, path)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if got.SHA256 != added.SHA256 {
		t.Errorf("Check() hash = %s, want %s", got.SHA256, added.SHA256)
	}
}

func TestLedgerAppendOnly(t *testing.T) {
	l := testLedger(t)
	path := writeTool(t, "as", "fake assembler v1")

	if _, err := l.Add("gas", "2.41.0", abi.RV64G, path); err != nil {
		t.Fatal(err)
	}

	// identical re-add is a no-op
	if _, err := l.Add("gas", "2.41.0", abi.RV64G, path); err != nil {
		t.Errorf("Add() identical re-add error = %v, want nil", err)
	}

	// same key, different content
	changed := writeTool(t, "as", "patched assembler")
	if _, err := l.Add("gas", "2.41.0", abi.RV64G, changed); !errors.Is(err, model.ErrHashMismatch) {
		t.Errorf("Add() error = %v, want ErrHashMismatch", err)
	}

	// new version is a fresh key
	if _, err := l.Add("gas", "2.42.0", abi.RV64G, changed); err != nil {
		t.Errorf("Add() new version error = %v", err)
	}

	tools, err := l.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(tools) != 2 {
		t.Errorf("List() = %d entries, want 2", len(tools))
	}
}

func TestLedgerCheckDetectsTamper(t *testing.T) {
	l := testLedger(t)
	path := writeTool(t, "ld", "linker")

	if _, err := l.Add("ld", "2.41.0", abi.X8664SysV, path); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("trojaned linker"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Check("ld", "2.41.0", abi.X8664SysV, path); !errors.Is(err, model.ErrHashMismatch) {
		t.Errorf("Check() error = %v, want ErrHashMismatch", err)
	}
}

func TestLedgerRejectsBadInput(t *testing.T) {
	l := testLedger(t)
	path := writeTool(t, "as", "fake assembler")

	if _, err := l.Add("gas", "not a version", abi.RV64G, path); err == nil {
		t.Error("Add() expected error for junk version")
	}
	if _, err := l.Add("gas", "2.41.0", abi.Architecture("Z80"), path); !errors.Is(err, abi.ErrUnknownArchitecture) {
		t.Errorf("Add() error = %v, want ErrUnknownArchitecture", err)
	}
	if _, err := l.Check("gas", "9.9.9", abi.RV64G, path); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Check() error = %v, want ErrNotFound", err)
	}
}
