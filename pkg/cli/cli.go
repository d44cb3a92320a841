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

// Package cli handles command line flags shared by the entry point.
package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/PlayAtlas/playatlas-core/pkg/config"
	"github.com/PlayAtlas/playatlas-core/pkg/database/gamedb"
	"github.com/PlayAtlas/playatlas-core/pkg/helpers"
	"github.com/PlayAtlas/playatlas-core/pkg/reconcile"
	"github.com/PlayAtlas/playatlas-core/pkg/steam"
	"github.com/PlayAtlas/playatlas-core/pkg/steam/webapi"
	"github.com/rs/zerolog/log"
)

// Flags holds all command line flags.
type Flags struct {
	Launch      *int64
	Reconcile   *int64
	ImportSteam *string
	Daemon      *bool
	Version     *bool
	Debug       *bool
}

// SetupFlags defines the CLI flags. Call before flag.Parse.
func SetupFlags() *Flags {
	return &Flags{
		Daemon: flag.Bool(
			"daemon",
			false,
			"run the service in the foreground",
		),
		Launch: flag.Int64(
			"launch",
			0,
			"launch a game by id through the running service",
		),
		ImportSteam: flag.String(
			"import-steam",
			"",
			"import installed games from a steamapps directory",
		),
		Reconcile: flag.Int64(
			"reconcile",
			0,
			"refresh historical Steam playtime for a game by id",
		),
		Version: flag.Bool(
			"version",
			false,
			"print version and exit",
		),
		Debug: flag.Bool(
			"debug",
			false,
			"enable debug logging",
		),
	}
}

// Pre parses flags and actions those that need no environment setup.
func (f *Flags) Pre() {
	flag.Parse()

	if *f.Version {
		_, _ = fmt.Printf("PlayAtlas Core v%s\n", config.AppVersion)
		os.Exit(0)
	}
}

// Setup initialises logging and loads the config file.
func Setup(defaults config.Values, logWriters []io.Writer) *config.Instance {
	if err := helpers.InitLogging(logWriters); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.NewConfig(helpers.ConfigDir(), defaults)
	if err != nil {
		log.Error().Err(err).Msg("error loading config")
		_, _ = fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	return cfg
}

// Post actions the remaining flags that require config and logging.
// Exits the process when a flag was handled.
func (f *Flags) Post(cfg *config.Instance) {
	if *f.Debug || cfg.DebugLogging() {
		helpers.SetDebugLogging(true)
	}

	switch {
	case *f.ImportSteam != "":
		f.importSteamFlag(*f.ImportSteam)
	case *f.Launch > 0:
		f.launchFlag(cfg, *f.Launch)
	case *f.Reconcile > 0:
		f.reconcileFlag(cfg, *f.Reconcile)
	}
}

func (*Flags) importSteamFlag(steamAppsDir string) {
	db, err := gamedb.Open(context.Background())
	if err != nil {
		fatal("Error opening database: %v\n", err)
	}
	defer closeDB(db)

	imported, err := steam.ImportLibrary(db, steamAppsDir)
	if err != nil {
		fatal("Error importing Steam library: %v\n", err)
	}

	_, _ = fmt.Printf("Imported %d games\n", imported)
	os.Exit(0)
}

func (*Flags) launchFlag(cfg *config.Instance, gameID int64) {
	result, err := launchThroughService(cfg, gameID)
	if err != nil {
		fatal("Error launching game: %v\n", err)
	}
	if !result.Success {
		fatal("Launch failed: %s\n", result.Message)
	}

	_, _ = fmt.Println("Game launched, tracking started")
	os.Exit(0)
}

func (*Flags) reconcileFlag(cfg *config.Instance, gameID int64) {
	client := webapi.New(cfg.SteamAPIKey(), cfg.SteamID())
	if !client.Configured() {
		fatal("Error: steam api_key and steam_id must be set in the config file\n")
	}

	db, err := gamedb.Open(context.Background())
	if err != nil {
		fatal("Error opening database: %v\n", err)
	}
	defer closeDB(db)

	result, err := reconcile.New(db, client).Reconcile(context.Background(), gameID)
	if err != nil {
		fatal("Error reconciling: %v\n", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fatal("Error encoding result: %v\n", err)
	}
	_, _ = fmt.Println(string(out))
	os.Exit(0)
}

func closeDB(db *gamedb.GameDB) {
	if err := db.Close(); err != nil {
		log.Warn().Err(err).Msg("cli: failed to close database")
	}
}

func fatal(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
