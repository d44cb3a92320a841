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

// Package steam imports installed Steam games from a local library into
// the game database.
package steam

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/PlayAtlas/playatlas-core/pkg/database"
	"github.com/PlayAtlas/playatlas-core/pkg/database/gamedb"
	"github.com/PlayAtlas/playatlas-core/pkg/launcher/requirements"
	"github.com/andygrunwald/vdf"
	"github.com/rs/zerolog/log"
)

// AppInfo is the metadata read from one appmanifest_<id>.acf file.
type AppInfo struct {
	Name       string
	InstallDir string
	AppID      int64
}

// Store is the persistence surface the importer needs.
type Store interface {
	GetGameBySteamAppID(appID int64) (*database.Game, error)
	AddGame(game *database.Game) (int64, error)
	AddPlayAction(action *database.PlayAction) (int64, error)
}

// ReadAppManifest parses a single Steam app manifest file.
func ReadAppManifest(path string) (*AppInfo, error) {
	f, err := os.Open(path) //nolint:gosec // G304: reads Steam manifest files
	if err != nil {
		return nil, fmt.Errorf("failed to open app manifest: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing app manifest")
		}
	}()

	m, err := vdf.NewParser(f).Parse()
	if err != nil {
		return nil, fmt.Errorf("failed to parse app manifest: %w", err)
	}

	appState, ok := m["AppState"].(map[string]any)
	if !ok {
		return nil, errors.New("AppState not found in manifest")
	}

	appIDStr, ok := appState["appid"].(string)
	if !ok {
		return nil, errors.New("appid not found in manifest")
	}
	appID, err := strconv.ParseInt(appIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid appid %q in manifest: %w", appIDStr, err)
	}

	name, ok := appState["name"].(string)
	if !ok {
		return nil, errors.New("name not found in manifest")
	}

	installDir, _ := appState["installdir"].(string)

	return &AppInfo{
		AppID:      appID,
		Name:       name,
		InstallDir: installDir,
	}, nil
}

// ScanSteamApps reads every app manifest in a steamapps directory plus
// any additional library folders it references. Unreadable manifests are
// skipped with a warning.
func ScanSteamApps(steamAppsDir string) ([]AppInfo, error) {
	var apps []AppInfo
	seen := make(map[int64]bool)

	for _, dir := range libraryDirs(steamAppsDir) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if dir == steamAppsDir {
				return nil, fmt.Errorf("failed to read steamapps directory: %w", err)
			}
			log.Warn().Err(err).Str("dir", dir).Msg("steam: skipping unreadable library folder")
			continue
		}

		for _, entry := range entries {
			name := entry.Name()
			if !strings.HasPrefix(name, "appmanifest_") || !strings.HasSuffix(name, ".acf") {
				continue
			}

			info, err := ReadAppManifest(filepath.Join(dir, name))
			if err != nil {
				log.Warn().Err(err).Str("manifest", name).Msg("steam: skipping unreadable manifest")
				continue
			}
			if seen[info.AppID] {
				continue
			}
			seen[info.AppID] = true
			apps = append(apps, *info)
		}
	}

	return apps, nil
}

// libraryDirs returns the steamapps directory plus any extra library
// steamapps directories listed in libraryfolders.vdf.
func libraryDirs(steamAppsDir string) []string {
	dirs := []string{steamAppsDir}

	f, err := os.Open(filepath.Join(steamAppsDir, "libraryfolders.vdf")) //nolint:gosec // G304: reads Steam config files
	if err != nil {
		return dirs
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing libraryfolders.vdf")
		}
	}()

	m, err := vdf.NewParser(f).Parse()
	if err != nil {
		log.Warn().Err(err).Msg("steam: failed to parse libraryfolders.vdf")
		return dirs
	}

	folders, ok := m["libraryfolders"].(map[string]any)
	if !ok {
		return dirs
	}

	for _, v := range folders {
		folder, ok := v.(map[string]any)
		if !ok {
			continue
		}
		path, ok := folder["path"].(string)
		if !ok {
			continue
		}
		extra := filepath.Join(path, "steamapps")
		if extra != steamAppsDir {
			dirs = append(dirs, extra)
		}
	}

	return dirs
}

// runtimeAppPrefixes mark Steam tooling installs that are not games.
var runtimeAppPrefixes = []string{
	"Proton",
	"Steam Linux Runtime",
	"Steamworks Common",
}

func isRuntimeApp(name string) bool {
	for _, prefix := range runtimeAppPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// ImportLibrary creates a game and a launch play action for every
// installed Steam game not already in the database. Returns the number
// of games imported.
//
// The play action launches through the steam:// URI handler and
// recognises the running game by the AppId argument Steam's process
// reaper passes to it.
func ImportLibrary(store Store, steamAppsDir string) (int, error) {
	apps, err := ScanSteamApps(steamAppsDir)
	if err != nil {
		return 0, err
	}

	imported := 0
	for _, app := range apps {
		if isRuntimeApp(app.Name) {
			continue
		}

		_, err := store.GetGameBySteamAppID(app.AppID)
		if err == nil {
			continue
		}
		if !errors.Is(err, gamedb.ErrNotFound) {
			return imported, fmt.Errorf("failed to look up game by app ID %d: %w", app.AppID, err)
		}

		appID := app.AppID
		gameID, err := store.AddGame(&database.Game{
			Name:       app.Name,
			SteamAppID: &appID,
		})
		if err != nil {
			return imported, fmt.Errorf("failed to add game %q: %w", app.Name, err)
		}

		reqs, err := launchRequirements(app.AppID)
		if err != nil {
			return imported, err
		}

		_, err = store.AddPlayAction(&database.PlayAction{
			GameID:       gameID,
			Name:         "Play on Steam",
			Path:         fmt.Sprintf("steam://rungameid/%d", app.AppID),
			Requirements: &reqs,
		})
		if err != nil {
			return imported, fmt.Errorf("failed to add play action for %q: %w", app.Name, err)
		}

		imported++
		log.Info().
			Int64("appID", app.AppID).
			Str("name", app.Name).
			Msg("steam: imported game")
	}

	return imported, nil
}

// launchRequirements builds the detection predicate for a Steam game:
// Steam launches games under its reaper process with an AppId argument.
func launchRequirements(appID int64) (string, error) {
	req := requirements.ProcessRequirements{
		RequireCommandLine: true,
		CommandLineArgs:    []string{fmt.Sprintf("AppId=%d", appID)},
	}
	data, err := json.Marshal(&req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal process requirements: %w", err)
	}
	return string(data), nil
}
