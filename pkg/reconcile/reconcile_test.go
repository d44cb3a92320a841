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

package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/PlayAtlas/playatlas-core/pkg/database"
	"github.com/PlayAtlas/playatlas-core/pkg/database/gamedb"
	"github.com/PlayAtlas/playatlas-core/pkg/steam/webapi"
	"github.com/PlayAtlas/playatlas-core/pkg/testing/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	games map[int64]*webapi.OwnedGame
	err   error
}

func (s *stubSource) GetOwnedGame(_ context.Context, appID int64) (*webapi.OwnedGame, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.games[appID], nil
}

func addSteamGame(t *testing.T, db *gamedb.GameDB, name string, appID int64) int64 {
	t.Helper()
	dbid, err := db.AddGame(&database.Game{Name: name, SteamAppID: &appID})
	require.NoError(t, err)
	return dbid
}

func TestReconcileDeckDecomposition(t *testing.T) {
	t.Parallel()

	db, cleanup := helpers.NewInMemoryGameDB(t)
	defer cleanup()
	gameID := addSteamGame(t, db, "Stardew Valley", 413150)

	source := &stubSource{games: map[int64]*webapi.OwnedGame{
		413150: {
			AppID:           413150,
			Name:            "Stardew Valley",
			PlaytimeForever: 590,
			PlaytimeWindows: 90,
			PlaytimeLinux:   500,
			PlaytimeDeck:    120,
		},
	}}

	result, err := New(db, source).Reconcile(context.Background(), gameID)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Inserted)
	assert.Zero(t, result.Deleted)
	assert.Equal(t, (90+380+120)*60, result.Seconds)

	sessions, err := db.GetSessionsForGame(gameID)
	require.NoError(t, err)
	require.Len(t, sessions, 3)

	byPlatform := make(map[string]database.PlaySession, len(sessions))
	for _, s := range sessions {
		require.True(t, s.Historical)
		require.True(t, s.AddedToTotal)
		require.NotNil(t, s.Notes)
		assert.Equal(t, SteamNote, *s.Notes)
		byPlatform[s.Platform] = s
	}

	// Deck time is reported inside the Linux figure and must be split out.
	assert.Equal(t, 380*60, byPlatform[database.PlatformLinux].PlayTime)
	assert.Equal(t, 120*60, byPlatform[database.PlatformSteamDeck].PlayTime)
	assert.Equal(t, 90*60, byPlatform[database.PlatformWindows].PlayTime)

	game, err := db.GetGame(gameID)
	require.NoError(t, err)
	assert.Equal(t, 590*60, game.PlayTimeTotal)
}

func TestReconcileSubtractsLocalTime(t *testing.T) {
	t.Parallel()

	db, cleanup := helpers.NewInMemoryGameDB(t)
	defer cleanup()
	gameID := addSteamGame(t, db, "Celeste", 504230)

	// 10 minutes already tracked live on Linux by this tool.
	start := time.Unix(1700000000, 0)
	sessionID, err := db.OpenSession(&database.PlaySession{
		ID: "live-1", GameID: gameID, Platform: database.PlatformLinux, StartTime: start,
	}, false)
	require.NoError(t, err)
	require.NoError(t, db.CloseSession(sessionID, start.Add(10*time.Minute), 600))

	source := &stubSource{games: map[int64]*webapi.OwnedGame{
		504230: {AppID: 504230, PlaytimeForever: 60, PlaytimeLinux: 60},
	}}

	result, err := New(db, source).Reconcile(context.Background(), gameID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 50*60, result.Seconds, "local live time must not be double counted")

	game, err := db.GetGame(gameID)
	require.NoError(t, err)
	assert.Equal(t, 60*60, game.PlayTimeTotal, "total is live + historical")
}

func TestReconcileSkipsNonPositiveRemainders(t *testing.T) {
	t.Parallel()

	db, cleanup := helpers.NewInMemoryGameDB(t)
	defer cleanup()
	gameID := addSteamGame(t, db, "Local Only", 111)

	// Locally tracked time exceeds what Steam reports.
	start := time.Unix(1700000000, 0)
	sessionID, err := db.OpenSession(&database.PlaySession{
		ID: "lo-1", GameID: gameID, Platform: database.PlatformLinux, StartTime: start,
	}, false)
	require.NoError(t, err)
	require.NoError(t, db.CloseSession(sessionID, start.Add(2*time.Hour), 7200))

	source := &stubSource{games: map[int64]*webapi.OwnedGame{
		111: {AppID: 111, PlaytimeForever: 30, PlaytimeLinux: 30},
	}}

	result, err := New(db, source).Reconcile(context.Background(), gameID)
	require.NoError(t, err)
	assert.Zero(t, result.Inserted)

	game, err := db.GetGame(gameID)
	require.NoError(t, err)
	assert.Equal(t, 7200, game.PlayTimeTotal)
}

func TestReconcileIsIdempotent(t *testing.T) {
	t.Parallel()

	db, cleanup := helpers.NewInMemoryGameDB(t)
	defer cleanup()
	gameID := addSteamGame(t, db, "Hades", 1145360)

	source := &stubSource{games: map[int64]*webapi.OwnedGame{
		1145360: {AppID: 1145360, PlaytimeForever: 200, PlaytimeWindows: 200},
	}}
	reconciler := New(db, source)

	first, err := reconciler.Reconcile(context.Background(), gameID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Inserted)

	second, err := reconciler.Reconcile(context.Background(), gameID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), second.Deleted, "previous historical sessions are replaced")
	assert.Equal(t, 1, second.Inserted)

	sessions, err := db.GetSessionsForGame(gameID)
	require.NoError(t, err)
	assert.Len(t, sessions, 1, "no historical session accumulation")

	game, err := db.GetGame(gameID)
	require.NoError(t, err)
	assert.Equal(t, 200*60, game.PlayTimeTotal)
}

func TestReconcileErrors(t *testing.T) {
	t.Parallel()

	db, cleanup := helpers.NewInMemoryGameDB(t)
	defer cleanup()

	noSteamID, err := db.AddGame(&database.Game{Name: "DRM Free"})
	require.NoError(t, err)

	reconciler := New(db, &stubSource{})

	_, err = reconciler.Reconcile(context.Background(), noSteamID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no Steam app ID")

	unowned := addSteamGame(t, db, "Unowned", 222)
	_, err = reconciler.Reconcile(context.Background(), unowned)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not own app 222")

	_, err = reconciler.Reconcile(context.Background(), 9999)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load game")
}
