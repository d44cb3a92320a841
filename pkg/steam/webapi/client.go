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

// Package webapi is a minimal Steam Web API client covering the owned
// games endpoint used by historical playtime reconciliation.
package webapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultBaseURL = "https://api.steampowered.com"

// ErrNotConfigured is returned when the client has no API key or SteamID.
var ErrNotConfigured = errors.New("steam web api key and steam id are not configured")

// DefaultTransport provides connection pooling and reasonable timeouts.
var DefaultTransport = &http.Transport{
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ResponseHeaderTimeout: 30 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   10,
	IdleConnTimeout:       90 * time.Second,
}

// OwnedGame is one entry from IPlayerService/GetOwnedGames. Playtime
// fields are minutes; the per-OS fields decompose playtime_forever, with
// the Steam Deck figure double counted inside the Linux one.
type OwnedGame struct {
	Name            string `json:"name"`
	AppID           int64  `json:"appid"`
	PlaytimeForever int    `json:"playtime_forever"`
	PlaytimeWindows int    `json:"playtime_windows_forever"`
	PlaytimeMac     int    `json:"playtime_mac_forever"`
	PlaytimeLinux   int    `json:"playtime_linux_forever"`
	PlaytimeDeck    int    `json:"playtime_deck_forever"`
	LastPlayed      int64  `json:"rtime_last_played"`
}

type ownedGamesResponse struct {
	Response struct {
		Games     []OwnedGame `json:"games"`
		GameCount int         `json:"game_count"`
	} `json:"response"`
}

// Client talks to the Steam Web API for one account.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	steamID string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API host (for testing).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// New creates a Steam Web API client. The key and SteamID64 may be
// empty; requests then fail with ErrNotConfigured.
func New(apiKey, steamID string, opts ...Option) *Client {
	c := &Client{
		client: &http.Client{
			Transport: DefaultTransport,
			Timeout:   30 * time.Second,
		},
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		steamID: steamID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether the client has credentials to work with.
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.steamID != ""
}

// GetOwnedGames fetches the account's owned games with app info and
// per-OS playtime breakdowns, free games included.
func (c *Client) GetOwnedGames(ctx context.Context) ([]OwnedGame, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	query := url.Values{}
	query.Set("key", c.apiKey)
	query.Set("steamid", c.steamID)
	query.Set("include_appinfo", "1")
	query.Set("include_played_free_games", "1")
	query.Set("format", "json")

	endpoint := c.baseURL + "/IPlayerService/GetOwnedGames/v1/?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create owned games request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("owned games request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("owned games request returned status %d", resp.StatusCode)
	}

	var parsed ownedGamesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode owned games response: %w", err)
	}

	log.Debug().
		Int("gameCount", parsed.Response.GameCount).
		Msg("steam: fetched owned games")

	return parsed.Response.Games, nil
}

// GetOwnedGame fetches a single owned game by app ID, or nil if the
// account does not own it.
func (c *Client) GetOwnedGame(ctx context.Context, appID int64) (*OwnedGame, error) {
	games, err := c.GetOwnedGames(ctx)
	if err != nil {
		return nil, err
	}
	for i := range games {
		if games[i].AppID == appID {
			return &games[i], nil
		}
	}
	return nil, nil //nolint:nilnil // not-owned is not an error
}
