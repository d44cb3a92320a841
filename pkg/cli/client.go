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

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/PlayAtlas/playatlas-core/pkg/api"
	"github.com/PlayAtlas/playatlas-core/pkg/config"
	"github.com/PlayAtlas/playatlas-core/pkg/database"
	"github.com/PlayAtlas/playatlas-core/pkg/launcher"
	"github.com/rs/zerolog/log"
)

// launchTimeout covers the daemon's initial delay plus the full probe
// loop on default settings.
const launchTimeout = 5 * time.Minute

// launchThroughService asks the running daemon to launch a game using
// its first play action. The daemon owns the tracking loop, so tracking
// survives this process exiting.
func launchThroughService(cfg *config.Instance, gameID int64) (*launcher.Result, error) {
	baseURL := fmt.Sprintf("http://127.0.0.1:%d/api/v1", cfg.APIPort())
	client := &http.Client{Timeout: launchTimeout}

	ctx, cancel := context.WithTimeout(context.Background(), launchTimeout)
	defer cancel()

	actions, err := getPlayActions(ctx, client, baseURL, gameID)
	if err != nil {
		return nil, err
	}
	if len(actions) == 0 {
		return nil, fmt.Errorf("game %d has no play actions", gameID)
	}

	body, err := json.Marshal(&api.LaunchRequest{
		GameID:       gameID,
		PlayActionID: actions[0].DBID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode launch request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		baseURL+"/launch", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create launch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("is the service running? launch request failed: %w", err)
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("launch request returned status %d", resp.StatusCode)
	}

	var result launcher.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode launch response: %w", err)
	}
	return &result, nil
}

func getPlayActions(
	ctx context.Context,
	client *http.Client,
	baseURL string,
	gameID int64,
) ([]database.PlayAction, error) {
	url := fmt.Sprintf("%s/games/%d/actions", baseURL, gameID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create play actions request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("is the service running? play actions request failed: %w", err)
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("play actions request returned status %d", resp.StatusCode)
	}

	var actions []database.PlayAction
	if err := json.NewDecoder(resp.Body).Decode(&actions); err != nil {
		return nil, fmt.Errorf("failed to decode play actions response: %w", err)
	}
	return actions, nil
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		log.Warn().Err(err).Msg("cli: failed to close response body")
	}
}
