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

// Package service wires the daemon together: database, recovery sweep,
// launcher, Steam reconciliation and the HTTP API.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/PlayAtlas/playatlas-core/pkg/api"
	"github.com/PlayAtlas/playatlas-core/pkg/config"
	"github.com/PlayAtlas/playatlas-core/pkg/database/gamedb"
	"github.com/PlayAtlas/playatlas-core/pkg/launcher"
	"github.com/PlayAtlas/playatlas-core/pkg/process"
	"github.com/PlayAtlas/playatlas-core/pkg/reconcile"
	"github.com/PlayAtlas/playatlas-core/pkg/steam/webapi"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// Run starts the daemon and blocks until the context is cancelled or a
// component fails. Sessions left open by a previous ungraceful shutdown
// are settled before anything else runs.
func Run(ctx context.Context, cfg *config.Instance) error {
	db, err := gamedb.Open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open game database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("service: failed to close game database")
		}
	}()

	recovered, err := db.CloseHangingSessions()
	if err != nil {
		return fmt.Errorf("startup recovery sweep failed: %w", err)
	}
	if recovered > 0 {
		log.Info().Int64("sessions", recovered).Msg("service: recovered sessions from previous run")
	}

	l := launcher.New(db, process.New(), cfg, nil)
	defer l.Stop()

	var reconciler api.Reconciler
	if key, steamID := cfg.SteamAPIKey(), cfg.SteamID(); key != "" && steamID != "" {
		reconciler = reconcile.New(db, webapi.New(key, steamID))
	} else {
		log.Info().Msg("service: steam credentials not configured, reconciliation disabled")
	}

	server := api.NewServer(cfg, db, l, reconciler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Stop(shutdownCtx)
	})

	log.Info().Str("version", config.AppVersion).Msg("service: started")
	if err := g.Wait(); err != nil {
		return fmt.Errorf("service failed: %w", err)
	}
	return nil
}
