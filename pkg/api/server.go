// PlayAtlas Core
// Copyright (c) 2026 The PlayAtlas Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of PlayAtlas Core.
//
// PlayAtlas Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// PlayAtlas Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with PlayAtlas Core.  If not, see <http://www.gnu.org/licenses/>.

// Package api serves the local HTTP API.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/PlayAtlas/playatlas-core/pkg/config"
	"github.com/PlayAtlas/playatlas-core/pkg/database/gamedb"
	"github.com/PlayAtlas/playatlas-core/pkg/launcher"
	"github.com/PlayAtlas/playatlas-core/pkg/reconcile"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// requestTimeout bounds one API request. Launches block through the
// initial delay and the probe loop, so this is generous.
const requestTimeout = 5 * time.Minute

// GameLauncher is the launcher surface the API needs.
type GameLauncher interface {
	Launch(ctx context.Context, gameID, playActionID int64) launcher.Result
}

// Reconciler is the reconciliation surface the API needs.
type Reconciler interface {
	Reconcile(ctx context.Context, gameID int64) (*reconcile.Result, error)
}

// Server is the local HTTP API server.
type Server struct {
	cfg        *config.Instance
	db         *gamedb.GameDB
	launcher   GameLauncher
	reconciler Reconciler
	validate   *validator.Validate
	srv        *http.Server
}

// NewServer creates the API server. The reconciler may be nil when no
// Steam credentials are configured.
func NewServer(cfg *config.Instance, db *gamedb.GameDB, gl GameLauncher, rec Reconciler) *Server {
	return &Server{
		cfg:        cfg,
		db:         db,
		launcher:   gl,
		reconciler: rec,
		validate:   validator.New(),
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{},
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/launch", s.handleLaunch)
		r.Get("/games", s.handleListGames)
		r.Post("/games", s.handleAddGame)
		r.Route("/games/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetGame)
			r.Get("/sessions", s.handleGetSessions)
			r.Get("/actions", s.handleGetPlayActions)
			r.Post("/actions", s.handleAddPlayAction)
			r.Post("/reconcile", s.handleReconcile)
		})
	})

	return r
}

// Start serves the API until the listener fails or Stop is called.
func (s *Server) Start() error {
	addr := ":" + strconv.Itoa(s.cfg.APIPort())
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().Str("addr", addr).Msg("api: server listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}
