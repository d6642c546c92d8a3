package db

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/blacktop/regvet/internal/model"
)

// Sqlite is a database that stores data in a sqlite database.
type Sqlite struct {
	URL string
	// Config
	BatchSize int

	db *gorm.DB
}

// NewSqlite creates a new Sqlite database.
func NewSqlite(path string, batchSize int) (Database, error) {
	if path == "" {
		return nil, fmt.Errorf("'path' is required")
	}
	return &Sqlite{
		URL:       path,
		BatchSize: batchSize,
	}, nil
}

// Connect connects to the database.
func (s *Sqlite) Connect() (err error) {
	s.db, err = gorm.Open(sqlite.Open(s.URL), &gorm.Config{
		CreateBatchSize:        s.BatchSize,
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect sqlite database: %w", err)
	}
	return s.db.AutoMigrate(
		&model.QualifiedTool{},
		&model.VerificationRun{},
	)
}

// CreateTool appends a new qualified tool to the ledger.
func (s *Sqlite) CreateTool(t *model.QualifiedTool) error {
	if result := s.db.Create(t); result.Error != nil {
		return result.Error
	}
	return nil
}

// GetTool returns the ledger entry for the given key.
// It returns model.ErrNotFound if the key does not exist.
func (s *Sqlite) GetTool(tool, version, arch string) (*model.QualifiedTool, error) {
	var t model.QualifiedTool
	if err := s.db.Where("tool = ? AND version = ? AND architecture = ?", tool, version, arch).
		First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Tools returns every ledger entry, oldest first.
func (s *Sqlite) Tools() ([]model.QualifiedTool, error) {
	var tools []model.QualifiedTool
	if err := s.db.Order("created_at asc").Find(&tools).Error; err != nil {
		return nil, err
	}
	return tools, nil
}

// SaveRun archives a verification run.
func (s *Sqlite) SaveRun(r *model.VerificationRun) error {
	if result := s.db.Create(r); result.Error != nil {
		return result.Error
	}
	return nil
}

// Runs returns the most recent verification runs, newest first.
func (s *Sqlite) Runs(limit int) ([]model.VerificationRun, error) {
	var runs []model.VerificationRun
	q := s.db.Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// Close closes the database.
func (s *Sqlite) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
