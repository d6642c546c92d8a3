package db

import (
	"encoding/gob"
	"os"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/blacktop/regvet/internal/model"
)

// Memory is a database that keeps the ledger in memory, optionally backed
// by a gob file. Used by tests and by one-shot CLI runs that have no
// sqlite path configured.
type Memory struct {
	Path string

	mu    sync.Mutex
	tools map[string]*model.QualifiedTool
	runs  []model.VerificationRun
}

func memKey(tool, version, arch string) string {
	return tool + "\x00" + version + "\x00" + arch
}

// NewInMemory creates a new in-memory database. An empty path means the
// database is never persisted.
func NewInMemory(path string) (Database, error) {
	return &Memory{
		Path:  path,
		tools: make(map[string]*model.QualifiedTool),
	}, nil
}

// Connect loads the persisted ledger if a path was configured.
func (m *Memory) Connect() error {
	if m.Path == "" {
		return nil
	}
	f, err := os.Open(m.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	return gob.NewDecoder(f).Decode(&m.tools)
}

// CreateTool appends a new qualified tool to the ledger.
func (m *Memory) CreateTool(t *model.QualifiedTool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := memKey(t.Tool, t.Version, t.Architecture)
	if _, exists := m.tools[key]; exists {
		return errors.Errorf("ledger entry exists for %s %s (%s)", t.Tool, t.Version, t.Architecture)
	}
	m.tools[key] = t
	return nil
}

// GetTool returns the ledger entry for the given key.
// It returns model.ErrNotFound if the key does not exist.
func (m *Memory) GetTool(tool, version, arch string) (*model.QualifiedTool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, exists := m.tools[memKey(tool, version, arch)]
	if !exists {
		return nil, model.ErrNotFound
	}
	return t, nil
}

// Tools returns every ledger entry, oldest first.
func (m *Memory) Tools() ([]model.QualifiedTool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tools := make([]model.QualifiedTool, 0, len(m.tools))
	for _, t := range m.tools {
		tools = append(tools, *t)
	}
	sort.Slice(tools, func(i, j int) bool {
		return tools[i].QualifiedAt.Before(tools[j].QualifiedAt)
	})
	return tools, nil
}

// SaveRun archives a verification run.
func (m *Memory) SaveRun(r *model.VerificationRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, *r)
	return nil
}

// Runs returns the most recent verification runs, newest first.
func (m *Memory) Runs(limit int) ([]model.VerificationRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	runs := make([]model.VerificationRun, 0, len(m.runs))
	for i := len(m.runs) - 1; i >= 0; i-- {
		if limit > 0 && len(runs) == limit {
			break
		}
		runs = append(runs, m.runs[i])
	}
	return runs, nil
}

// Close persists the ledger if a path was configured.
func (m *Memory) Close() error {
	if m.Path == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, err := os.Create(m.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(m.tools)
}
