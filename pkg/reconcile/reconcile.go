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

// Package reconcile folds playtime recorded outside this tool into the
// game database as historical sessions.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PlayAtlas/playatlas-core/pkg/database"
	"github.com/PlayAtlas/playatlas-core/pkg/steam/webapi"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SteamNote is the provenance tag carried by historical sessions this
// package creates. Reconciliation only ever replaces its own sessions.
const SteamNote = "Historical playtime from Steam."

// Store is the persistence surface reconciliation needs.
type Store interface {
	GetGame(dbid int64) (*database.Game, error)
	SumSessionTime(gameID int64, platform string, historical bool) (int, error)
	DeleteHistoricalSessions(gameID int64, notes string) (int64, error)
	AddSession(session *database.PlaySession) (int64, error)
	RecomputeGameTotal(gameID int64) error
}

// Source provides externally recorded playtime.
type Source interface {
	GetOwnedGame(ctx context.Context, appID int64) (*webapi.OwnedGame, error)
}

// Reconciler replaces a game's Steam historical sessions with fresh
// figures from the Steam Web API.
type Reconciler struct {
	store  Store
	source Source
}

// New creates a Reconciler.
func New(store Store, source Source) *Reconciler {
	return &Reconciler{store: store, source: source}
}

// Result summarises one reconciliation run.
type Result struct {
	GameID   int64 `json:"gameId"`
	Deleted  int64 `json:"deletedSessions"`
	Inserted int   `json:"insertedSessions"`
	Seconds  int   `json:"historicalSeconds"`
}

// Reconcile refreshes the historical Steam playtime of one game. The
// game must have a Steam app ID. Existing historical sessions carrying
// the Steam provenance note are replaced, locally tracked live time is
// subtracted per platform, and the game total is recomputed so it again
// equals the sum over all sessions.
func (r *Reconciler) Reconcile(ctx context.Context, gameID int64) (*Result, error) {
	game, err := r.store.GetGame(gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load game %d: %w", gameID, err)
	}
	if game.SteamAppID == nil {
		return nil, fmt.Errorf("game %d has no Steam app ID", gameID)
	}

	owned, err := r.source.GetOwnedGame(ctx, *game.SteamAppID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Steam playtime for app %d: %w", *game.SteamAppID, err)
	}
	if owned == nil {
		return nil, fmt.Errorf("steam account does not own app %d", *game.SteamAppID)
	}

	deleted, err := r.store.DeleteHistoricalSessions(gameID, SteamNote)
	if err != nil {
		return nil, fmt.Errorf("failed to delete previous historical sessions: %w", err)
	}

	result := &Result{GameID: gameID, Deleted: deleted}
	for _, share := range platformShares(owned) {
		seconds, err := r.remainderSeconds(gameID, share.platform, share.minutes)
		if err != nil {
			return nil, err
		}
		if seconds <= 0 {
			continue
		}

		if err := r.insertHistorical(gameID, share.platform, seconds); err != nil {
			return nil, err
		}
		result.Inserted++
		result.Seconds += seconds
	}

	if err := r.store.RecomputeGameTotal(gameID); err != nil {
		return nil, fmt.Errorf("failed to recompute game total: %w", err)
	}

	log.Info().
		Int64("gameID", gameID).
		Int64("deleted", result.Deleted).
		Int("inserted", result.Inserted).
		Int("seconds", result.Seconds).
		Msg("reconcile: refreshed Steam historical playtime")

	return result, nil
}

type platformShare struct {
	platform string
	minutes  int
}

// platformShares decomposes Steam's per-OS playtime into session
// platforms. Steam reports Deck time inside the Linux figure, so the
// plain Linux share is the difference.
func platformShares(owned *webapi.OwnedGame) []platformShare {
	return []platformShare{
		{database.PlatformWindows, owned.PlaytimeWindows},
		{database.PlatformMac, owned.PlaytimeMac},
		{database.PlatformLinux, owned.PlaytimeLinux - owned.PlaytimeDeck},
		{database.PlatformSteamDeck, owned.PlaytimeDeck},
	}
}

// remainderSeconds converts a Steam platform share to seconds and
// subtracts the time this tool already tracked live on that platform,
// so reconciliation never double counts local sessions.
func (r *Reconciler) remainderSeconds(gameID int64, platform string, minutes int) (int, error) {
	if minutes <= 0 {
		return 0, nil
	}

	local, err := r.store.SumSessionTime(gameID, platform, false)
	if err != nil {
		return 0, fmt.Errorf("failed to sum local %s sessions: %w", platform, err)
	}

	return minutes*60 - local, nil
}

func (r *Reconciler) insertHistorical(gameID int64, platform string, seconds int) error {
	notes := SteamNote
	epoch := time.Unix(0, 0)
	_, err := r.store.AddSession(&database.PlaySession{
		ID:           uuid.NewString(),
		GameID:       gameID,
		Platform:     platform,
		StartTime:    epoch,
		EndTime:      epoch.Add(time.Duration(seconds) * time.Second),
		PlayTime:     seconds,
		AddedToTotal: true,
		Historical:   true,
		Notes:        &notes,
	})
	if err != nil {
		return fmt.Errorf("failed to insert %s historical session: %w", platform, err)
	}
	return nil
}

// ReconcileAll refreshes every game that has a Steam app ID, using one
// owned-games listing. Per-game failures are logged and skipped; the
// returned error reflects only source failures.
func (r *Reconciler) ReconcileAll(ctx context.Context, games []database.Game) ([]Result, error) {
	var results []Result
	for i := range games {
		if games[i].SteamAppID == nil {
			continue
		}
		res, err := r.Reconcile(ctx, games[i].DBID)
		if err != nil {
			if errors.Is(err, webapi.ErrNotConfigured) {
				return results, err
			}
			log.Warn().Err(err).Int64("gameID", games[i].DBID).Msg("reconcile: skipping game")
			continue
		}
		results = append(results, *res)
	}
	return results, nil
}
