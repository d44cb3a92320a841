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

// Package launcher runs the launch state machine: start an external game
// process, probe until the real game process is detected, then track it
// until exit while recording play time.
package launcher

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/PlayAtlas/playatlas-core/pkg/config"
	"github.com/PlayAtlas/playatlas-core/pkg/database"
	"github.com/PlayAtlas/playatlas-core/pkg/launcher/requirements"
	"github.com/PlayAtlas/playatlas-core/pkg/process"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Store is the persistence surface the launcher needs.
type Store interface {
	GetGame(dbid int64) (*database.Game, error)
	GetPlayAction(dbid int64) (*database.PlayAction, error)
	OpenSession(session *database.PlaySession, progression bool) (int64, error)
	ExtendSession(dbid int64, end time.Time, playTime int) error
	CloseSession(dbid int64, end time.Time, playTime int) error
}

// Result is the structured outcome of a launch attempt. Failures carry
// a human-readable message; raw errors never cross this boundary.
type Result struct {
	Message string `json:"message,omitempty"`
	Success bool   `json:"success"`
}

func failure(format string, args ...any) Result {
	return Result{Success: false, Message: fmt.Sprintf(format, args...)}
}

// Launcher owns the launch state machine and the tracking loops of all
// live sessions. Independent launches track concurrently; the data
// store is the only shared state between them.
type Launcher struct {
	store     Store
	inspector process.Inspector
	cfg       *config.Instance
	clock     clockwork.Clock
	registry  *registry
	platform  string
	wg        sync.WaitGroup
}

// New creates a Launcher. A nil clock uses the real clock.
func New(store Store, inspector process.Inspector, cfg *config.Instance, clock clockwork.Clock) *Launcher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Launcher{
		store:     store,
		inspector: inspector,
		cfg:       cfg,
		clock:     clock,
		registry:  newRegistry(),
		platform:  currentPlatform(),
	}
}

// ActiveSessions returns the IDs of sessions currently being tracked.
func (l *Launcher) ActiveSessions() []string {
	return l.registry.active()
}

// Stop cancels all tracking loops and waits for them to finish. Open
// sessions are reconciled by the startup recovery sweep on next run.
func (l *Launcher) Stop() {
	l.registry.cancelAll()
	l.wg.Wait()
}

// Launch runs the full state machine for one game + play action: parse
// config from the play action, start the external process, wait the
// initial delay, probe for the matching process, then hand over to the
// tracking loop. Blocks until tracking begins or the launch fails.
func (l *Launcher) Launch(ctx context.Context, gameID, playActionID int64) Result {
	game, err := l.store.GetGame(gameID)
	if err != nil {
		log.Error().Err(err).Int64("gameID", gameID).Msg("launcher: game lookup failed")
		return failure("game %d not found", gameID)
	}

	action, err := l.store.GetPlayAction(playActionID)
	if err != nil {
		log.Error().Err(err).Int64("playActionID", playActionID).Msg("launcher: play action lookup failed")
		return failure("play action %d not found", playActionID)
	}
	if action.GameID != game.DBID {
		return failure("play action %d does not belong to game %d", playActionID, gameID)
	}

	args, err := parseArguments(action)
	if err != nil {
		return failure("invalid additionalArguments on play action %d: %v", playActionID, err)
	}

	matcher, err := parseRequirements(action)
	if err != nil {
		return failure("invalid processRequirements on play action %d: %v", playActionID, err)
	}

	spec := &process.LaunchSpec{
		Path: action.Path,
		Args: args,
	}
	if action.WorkingDir != nil {
		spec.WorkingDir = *action.WorkingDir
	}

	if err := l.inspector.Start(spec); err != nil {
		log.Error().Err(err).Str("path", action.Path).Msg("launcher: failed to start process")
		return failure("failed to start %q: %v", action.Path, err)
	}

	log.Info().
		Int64("gameID", gameID).
		Str("path", action.Path).
		Msg("launcher: process started, waiting for game to appear")

	if delay := l.cfg.InitialDelay(); delay > 0 {
		if err := l.sleep(ctx, delay); err != nil {
			return failure("launch cancelled")
		}
	}

	proc, result := l.probe(ctx, matcher)
	if proc == nil {
		return result
	}

	return l.beginTracking(game, action, proc, matcher)
}

// probe polls for a matching process up to the configured attempt
// count. Returns the detected process, or a failure Result when
// exhausted or cancelled. Transient inspection errors count as
// not-found for that attempt; the loop never aborts early on them.
func (l *Launcher) probe(ctx context.Context, matcher process.Matcher) (*process.RunningProcess, Result) {
	attempts := l.cfg.ProbeAttempts()
	interval := l.cfg.ProbeInterval()

	for attempt := 1; attempt <= attempts; attempt++ {
		proc, err := l.inspector.Search(matcher)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("launcher: process search failed")
		}
		if proc != nil {
			log.Info().
				Int("pid", proc.PID).
				Int("attempt", attempt).
				Str("executable", proc.Executable).
				Msg("launcher: detected game process")
			return proc, Result{Success: true}
		}

		log.Debug().Int("attempt", attempt).Int("max", attempts).Msg("launcher: process not found")

		if attempt < attempts {
			if err := l.sleep(ctx, interval); err != nil {
				return nil, failure("launch cancelled")
			}
		}
	}

	return nil, failure("process not detected after %d attempts", attempts)
}

// beginTracking opens the play session and starts the recurring
// liveness loop for it.
func (l *Launcher) beginTracking(
	game *database.Game,
	action *database.PlayAction,
	proc *process.RunningProcess,
	matcher process.Matcher,
) Result {
	start := l.clock.Now()
	actionID := action.DBID
	session := &database.PlaySession{
		ID:           uuid.NewString(),
		GameID:       game.DBID,
		PlayActionID: &actionID,
		Platform:     l.platform,
		StartTime:    start,
		EndTime:      start,
	}

	progression := l.cfg.ProgressionEnabled() && game.ProgressionType != database.ProgressionNone

	dbid, err := l.store.OpenSession(session, progression)
	if err != nil {
		log.Error().Err(err).Int64("gameID", game.DBID).Msg("launcher: failed to open play session")
		return failure("failed to record play session: %v", err)
	}

	// Tracking outlives the request that started it.
	trackCtx, cancel := context.WithCancel(context.Background())
	l.registry.register(session.ID, cancel)

	l.wg.Add(1)
	go l.track(trackCtx, session.ID, dbid, start, proc, matcher)

	log.Info().
		Str("sessionID", session.ID).
		Int64("gameID", game.DBID).
		Msg("launcher: session opened, tracking started")

	return Result{Success: true}
}

// track is the recurring liveness loop for one session. Each tick the
// tracked snapshot is re-verified; while alive the session is extended,
// and on disappearance it is closed and the game total incremented in
// one transaction. Ticks for one session are strictly sequential.
func (l *Launcher) track(
	ctx context.Context,
	sessionID string,
	sessionDBID int64,
	start time.Time,
	proc *process.RunningProcess,
	matcher process.Matcher,
) {
	defer l.wg.Done()
	defer l.registry.deregister(sessionID)

	ticker := l.clock.NewTicker(l.cfg.TrackingInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Shutdown mid-session: leave the session open for the
			// startup recovery sweep.
			log.Info().Str("sessionID", sessionID).Msg("launcher: tracking stopped, session left open")
			return
		case <-ticker.Chan():
			now := l.clock.Now()
			elapsed := elapsedSeconds(start, now)

			if l.inspector.IsStillRunning(proc) {
				if err := l.store.ExtendSession(sessionDBID, now, elapsed); err != nil {
					log.Warn().Err(err).Str("sessionID", sessionID).Msg("launcher: failed to extend session")
				}
				continue
			}

			// Process gone (or its PID recycled): re-search once in
			// case the game replaced its own process in between ticks.
			if found, err := l.inspector.Search(matcher); err == nil && found != nil {
				proc = found
				if err := l.store.ExtendSession(sessionDBID, now, elapsed); err != nil {
					log.Warn().Err(err).Str("sessionID", sessionID).Msg("launcher: failed to extend session")
				}
				continue
			}

			if err := l.store.CloseSession(sessionDBID, now, elapsed); err != nil {
				log.Error().Err(err).Str("sessionID", sessionID).Msg("launcher: failed to close session")
				return
			}

			log.Info().
				Str("sessionID", sessionID).
				Int("playTimeSeconds", elapsed).
				Msg("launcher: process ended, session closed")
			return
		}
	}
}

// sleep waits for the duration on the launcher's clock, or returns
// early if the context is cancelled.
func (l *Launcher) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-l.clock.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err() //nolint:wrapcheck // cancellation passthrough
	}
}

func elapsedSeconds(start, now time.Time) int {
	return int(now.Sub(start).Round(time.Second) / time.Second)
}

// parseArguments decodes the play action's additionalArguments JSON
// array. Nil or empty means no arguments.
func parseArguments(action *database.PlayAction) ([]string, error) {
	if action.Arguments == nil || *action.Arguments == "" {
		return nil, nil
	}
	var args []string
	if err := json.Unmarshal([]byte(*action.Arguments), &args); err != nil {
		return nil, fmt.Errorf("expected a JSON array of strings: %w", err)
	}
	return args, nil
}

// parseRequirements resolves the play action's detection predicate:
// structured requirements when present, otherwise the legacy
// tracking-path prefix as the degenerate single-executable form.
func parseRequirements(action *database.PlayAction) (process.Matcher, error) {
	if action.Requirements != nil && *action.Requirements != "" {
		req, err := requirements.Parse(*action.Requirements)
		if err != nil {
			return nil, err
		}
		return req, nil
	}
	if action.TrackingPath != nil && *action.TrackingPath != "" {
		return requirements.FromTrackingPath(*action.TrackingPath), nil
	}
	return nil, fmt.Errorf("play action has neither processRequirements nor a tracking path")
}

// currentPlatform maps the host OS onto a session platform code.
func currentPlatform() string {
	switch runtime.GOOS {
	case "windows":
		return database.PlatformWindows
	case "darwin":
		return database.PlatformMac
	default:
		return database.PlatformLinux
	}
}
