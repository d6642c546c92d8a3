package db

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/blacktop/regvet/internal/model"
)

func backends(t *testing.T) map[string]Database {
	t.Helper()
	sqlite, err := NewSqlite(filepath.Join(t.TempDir(), "regvet.db"), 100)
	if err != nil {
		t.Fatal(err)
	}
	mem, err := NewInMemory("")
	if err != nil {
		t.Fatal(err)
	}
	return map[string]Database{
		"sqlite": sqlite,
		"memory": mem,
	}
}

func TestToolRoundTrip(t *testing.T) {
	for name, database := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := database.Connect(); err != nil {
				t.Fatal(err)
			}
			defer database.Close()

			tool := &model.QualifiedTool{
				Tool:         "gas",
				Version:      "2.41.0",
				Architecture: "RV64G",
				SHA256:       "deadbeef",
				QualifiedAt:  time.Now().UTC(),
			}
			if err := database.CreateTool(tool); err != nil {
				t.Fatal(err)
			}

			got, err := database.GetTool("gas", "2.41.0", "RV64G")
			if err != nil {
				t.Fatal(err)
			}
			if got.SHA256 != "deadbeef" {
				t.Errorf("GetTool() sha = %s, want deadbeef", got.SHA256)
			}

			if _, err := database.GetTool("gas", "0.0.1", "RV64G"); !errors.Is(err, model.ErrNotFound) {
				t.Errorf("GetTool() error = %v, want ErrNotFound", err)
			}

			tools, err := database.Tools()
			if err != nil {
				t.Fatal(err)
			}
			if len(tools) != 1 {
				t.Errorf("Tools() = %d entries, want 1", len(tools))
			}
		})
	}
}

func TestRunHistory(t *testing.T) {
	for name, database := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := database.Connect(); err != nil {
				t.Fatal(err)
			}
			defer database.Close()

			for i, id := range []string{"run-a", "run-b", "run-c"} {
				if err := database.SaveRun(&model.VerificationRun{
					UUID:         id,
					Architecture: "x86-64-SysV",
					Pass:         i%2 == 0,
				}); err != nil {
					t.Fatal(err)
				}
			}

			runs, err := database.Runs(2)
			if err != nil {
				t.Fatal(err)
			}
			if len(runs) != 2 {
				t.Fatalf("Runs(2) = %d entries, want 2", len(runs))
			}
		})
	}
}
