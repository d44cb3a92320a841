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

package steam

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/PlayAtlas/playatlas-core/pkg/launcher/requirements"
	"github.com/PlayAtlas/playatlas-core/pkg/testing/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir string, appID int64, name, installDir string) {
	t.Helper()
	content := fmt.Sprintf(`"AppState"
{
	"appid"		"%d"
	"name"		"%s"
	"installdir"		"%s"
}
`, appID, name, installDir)
	path := filepath.Join(dir, fmt.Sprintf("appmanifest_%d.acf", appID))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestReadAppManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeManifest(t, dir, 413150, "Stardew Valley", "Stardew Valley")

	info, err := ReadAppManifest(filepath.Join(dir, "appmanifest_413150.acf"))
	require.NoError(t, err)
	assert.Equal(t, int64(413150), info.AppID)
	assert.Equal(t, "Stardew Valley", info.Name)
	assert.Equal(t, "Stardew Valley", info.InstallDir)
}

func TestReadAppManifestInvalid(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "appmanifest_1.acf")
	require.NoError(t, os.WriteFile(path, []byte(`"AppState" { "name" "No ID" }`), 0o644))

	_, err := ReadAppManifest(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "appid not found")
}

func TestScanSteamApps(t *testing.T) {
	t.Parallel()

	main := t.TempDir()
	writeManifest(t, main, 413150, "Stardew Valley", "Stardew Valley")
	writeManifest(t, main, 504230, "Celeste", "Celeste")
	// Non-manifest noise must be ignored.
	require.NoError(t, os.WriteFile(filepath.Join(main, "appmanifest_bad.txt"), []byte("x"), 0o644))

	// A second library folder referenced from libraryfolders.vdf.
	extraRoot := t.TempDir()
	extraApps := filepath.Join(extraRoot, "steamapps")
	require.NoError(t, os.MkdirAll(extraApps, 0o755))
	writeManifest(t, extraApps, 367520, "Hollow Knight", "Hollow Knight")

	libraryFolders := fmt.Sprintf(`"libraryfolders"
{
	"0"
	{
		"path"		"%s"
	}
}
`, extraRoot)
	require.NoError(t, os.WriteFile(
		filepath.Join(main, "libraryfolders.vdf"), []byte(libraryFolders), 0o644))

	apps, err := ScanSteamApps(main)
	require.NoError(t, err)
	require.Len(t, apps, 3)

	byID := make(map[int64]AppInfo, len(apps))
	for _, app := range apps {
		byID[app.AppID] = app
	}
	assert.Equal(t, "Stardew Valley", byID[413150].Name)
	assert.Equal(t, "Celeste", byID[504230].Name)
	assert.Equal(t, "Hollow Knight", byID[367520].Name)
}

func TestScanSteamAppsMissingDir(t *testing.T) {
	t.Parallel()

	_, err := ScanSteamApps(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestImportLibrary(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeManifest(t, dir, 413150, "Stardew Valley", "Stardew Valley")
	writeManifest(t, dir, 1493710, "Proton Experimental", "Proton - Experimental")
	writeManifest(t, dir, 1628350, "Steam Linux Runtime 3.0 (sniper)", "SteamLinuxRuntime_sniper")

	db, cleanup := helpers.NewInMemoryGameDB(t)
	defer cleanup()

	imported, err := ImportLibrary(db, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, imported, "runtime tooling must not be imported")

	game, err := db.GetGameBySteamAppID(413150)
	require.NoError(t, err)
	assert.Equal(t, "Stardew Valley", game.Name)

	actions, err := db.GetPlayActionsForGame(game.DBID)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "steam://rungameid/413150", actions[0].Path)

	require.NotNil(t, actions[0].Requirements)
	req, err := requirements.Parse(*actions[0].Requirements)
	require.NoError(t, err)
	assert.True(t, req.RequireCommandLine)
	assert.Equal(t, []string{"AppId=413150"}, req.CommandLineArgs)

	// Re-import is idempotent.
	imported, err = ImportLibrary(db, dir)
	require.NoError(t, err)
	assert.Zero(t, imported)
}
