// Package daemon provides the daemon interface and implementation.
package daemon

import (
	"github.com/blacktop/regvet/api/server"
	"github.com/blacktop/regvet/internal/config"
	"github.com/blacktop/regvet/internal/db"
)

// Daemon is the interface that describes a regvet daemon.
type Daemon interface {
	// Start starts the daemon.
	Start() error
	// Stop stops the daemon.
	Stop() error
}

type daemon struct {
	server *server.Server
	db     db.Database
	conf   *config.Config
}

// NewDaemon creates a new daemon.
func NewDaemon(conf *config.Config) Daemon {
	return &daemon{conf: conf}
}

func (d *daemon) Start() (err error) {
	switch d.conf.Database.Driver {
	case "memory":
		d.db, err = db.NewInMemory(d.conf.Database.Path)
	default:
		d.db, err = db.NewSqlite(d.conf.Database.Path, d.conf.Database.BatchSize)
	}
	if err != nil {
		return err
	}
	if err := d.db.Connect(); err != nil {
		return err
	}

	d.server = server.NewServer(&server.Config{
		Host:   d.conf.Daemon.Host,
		Port:   d.conf.Daemon.Port,
		Socket: d.conf.Daemon.Socket,
		Debug:  d.conf.Daemon.Debug,
	}, d.db)

	return d.server.Start()
}

func (d *daemon) Stop() error {
	if d.server != nil {
		if err := d.server.Stop(); err != nil {
			return err
		}
	}
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
