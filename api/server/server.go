// Package server contains the main server struct and methods
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/blacktop/regvet/api"
	"github.com/blacktop/regvet/api/server/routes"
	"github.com/blacktop/regvet/internal/db"
)

// Config is the server configuration
type Config struct {
	Host   string
	Port   int
	Socket string
	Debug  bool
}

// Server is the main server struct
type Server struct {
	router *gin.Engine
	srv    *http.Server
	conf   *Config
}

// NewServer creates a new server
func NewServer(conf *Config, database db.Database) *Server {
	if !conf.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	rg := router.Group("/v" + api.DefaultVersion)
	routes.Add(rg, database)

	return &Server{
		router: router,
		conf:   conf,
	}
}

// Start starts the server
func (s *Server) Start() error {
	s.router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	s.srv = &http.Server{
		Handler: s.router,
	}

	var ln net.Listener
	var err error
	if s.conf.Socket != "" {
		if err := os.MkdirAll(filepath.Dir(s.conf.Socket), 0o755); err != nil {
			return fmt.Errorf("failed to create socket directory: %w", err)
		}
		os.Remove(s.conf.Socket)
		ln, err = net.Listen("unix", s.conf.Socket)
	} else {
		ln, err = net.Listen("tcp", fmt.Sprintf("%s:%d", s.conf.Host, s.conf.Port))
	}
	if err != nil {
		return err
	}

	if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop stops the server
func (s *Server) Stop() error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
