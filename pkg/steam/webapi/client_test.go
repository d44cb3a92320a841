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

package webapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ownedGamesBody = `{
	"response": {
		"game_count": 2,
		"games": [
			{
				"appid": 413150,
				"name": "Stardew Valley",
				"playtime_forever": 500,
				"playtime_windows_forever": 0,
				"playtime_mac_forever": 0,
				"playtime_linux_forever": 500,
				"playtime_deck_forever": 120,
				"rtime_last_played": 1700000000
			},
			{
				"appid": 504230,
				"name": "Celeste",
				"playtime_forever": 90,
				"playtime_windows_forever": 90,
				"playtime_mac_forever": 0,
				"playtime_linux_forever": 0,
				"playtime_deck_forever": 0,
				"rtime_last_played": 1650000000
			}
		]
	}
}`

func TestGetOwnedGames(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/IPlayerService/GetOwnedGames/v1/", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "76561198000000000", r.URL.Query().Get("steamid"))
		assert.Equal(t, "1", r.URL.Query().Get("include_appinfo"))
		assert.Equal(t, "1", r.URL.Query().Get("include_played_free_games"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(ownedGamesBody))
	}))
	defer server.Close()

	client := New("test-key", "76561198000000000", WithBaseURL(server.URL))

	games, err := client.GetOwnedGames(context.Background())
	require.NoError(t, err)
	require.Len(t, games, 2)

	assert.Equal(t, int64(413150), games[0].AppID)
	assert.Equal(t, "Stardew Valley", games[0].Name)
	assert.Equal(t, 500, games[0].PlaytimeForever)
	assert.Equal(t, 500, games[0].PlaytimeLinux)
	assert.Equal(t, 120, games[0].PlaytimeDeck)
	assert.Equal(t, int64(1700000000), games[0].LastPlayed)
}

func TestGetOwnedGame(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(ownedGamesBody))
	}))
	defer server.Close()

	client := New("test-key", "76561198000000000", WithBaseURL(server.URL))

	game, err := client.GetOwnedGame(context.Background(), 504230)
	require.NoError(t, err)
	require.NotNil(t, game)
	assert.Equal(t, "Celeste", game.Name)

	missing, err := client.GetOwnedGame(context.Background(), 999999)
	require.NoError(t, err)
	assert.Nil(t, missing, "unowned app is not an error")
}

func TestGetOwnedGamesNotConfigured(t *testing.T) {
	t.Parallel()

	client := New("", "")
	assert.False(t, client.Configured())

	_, err := client.GetOwnedGames(context.Background())
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestGetOwnedGamesHTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := New("bad-key", "76561198000000000", WithBaseURL(server.URL))

	_, err := client.GetOwnedGames(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestGetOwnedGamesBadJSON(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"response": [`))
	}))
	defer server.Close()

	client := New("test-key", "76561198000000000", WithBaseURL(server.URL))

	_, err := client.GetOwnedGames(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode")
}
