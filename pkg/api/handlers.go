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

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/PlayAtlas/playatlas-core/pkg/config"
	"github.com/PlayAtlas/playatlas-core/pkg/database"
	"github.com/PlayAtlas/playatlas-core/pkg/database/gamedb"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("api: failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// decodeAndValidate parses a JSON request body into v and runs the
// validator over it. Writes the error response itself on failure.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return false
	}
	return true
}

func gameIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return 0, false
	}
	return id, true
}

func (*Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: config.AppVersion,
	})
}

// handleLaunch runs the launch state machine and reports its structured
// outcome. Launch failures are part of the API contract, not HTTP
// errors: the response is 200 with success=false.
func (s *Server) handleLaunch(w http.ResponseWriter, r *http.Request) {
	var req LaunchRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	result := s.launcher.Launch(r.Context(), req.GameID, req.PlayActionID)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListGames(w http.ResponseWriter, _ *http.Request) {
	games, err := s.db.ListGames()
	if err != nil {
		log.Error().Err(err).Msg("api: failed to list games")
		writeError(w, http.StatusInternalServerError, "failed to list games")
		return
	}
	if games == nil {
		games = []database.Game{}
	}
	writeJSON(w, http.StatusOK, games)
}

func (s *Server) handleAddGame(w http.ResponseWriter, r *http.Request) {
	var req AddGameRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	dbid, err := s.db.AddGame(&database.Game{
		Name:            req.Name,
		ProgressionType: req.ProgressionType,
		SteamAppID:      req.SteamAppID,
	})
	if err != nil {
		log.Error().Err(err).Str("name", req.Name).Msg("api: failed to add game")
		writeError(w, http.StatusInternalServerError, "failed to add game")
		return
	}

	game, err := s.db.GetGame(dbid)
	if err != nil {
		log.Error().Err(err).Int64("gameID", dbid).Msg("api: failed to read back game")
		writeError(w, http.StatusInternalServerError, "failed to read back game")
		return
	}
	writeJSON(w, http.StatusCreated, game)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id, ok := gameIDParam(w, r)
	if !ok {
		return
	}

	game, err := s.db.GetGame(id)
	if errors.Is(err, gamedb.ErrNotFound) {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Int64("gameID", id).Msg("api: failed to get game")
		writeError(w, http.StatusInternalServerError, "failed to get game")
		return
	}
	writeJSON(w, http.StatusOK, game)
}

func (s *Server) handleGetSessions(w http.ResponseWriter, r *http.Request) {
	id, ok := gameIDParam(w, r)
	if !ok {
		return
	}

	sessions, err := s.db.GetSessionsForGame(id)
	if err != nil {
		log.Error().Err(err).Int64("gameID", id).Msg("api: failed to get sessions")
		writeError(w, http.StatusInternalServerError, "failed to get sessions")
		return
	}
	if sessions == nil {
		sessions = []database.PlaySession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleGetPlayActions(w http.ResponseWriter, r *http.Request) {
	id, ok := gameIDParam(w, r)
	if !ok {
		return
	}

	actions, err := s.db.GetPlayActionsForGame(id)
	if err != nil {
		log.Error().Err(err).Int64("gameID", id).Msg("api: failed to get play actions")
		writeError(w, http.StatusInternalServerError, "failed to get play actions")
		return
	}
	if actions == nil {
		actions = []database.PlayAction{}
	}
	writeJSON(w, http.StatusOK, actions)
}

func (s *Server) handleAddPlayAction(w http.ResponseWriter, r *http.Request) {
	id, ok := gameIDParam(w, r)
	if !ok {
		return
	}

	// The game must exist; the schema has no cross-table enforcement for
	// a typo'd id in the URL.
	if _, err := s.db.GetGame(id); err != nil {
		if errors.Is(err, gamedb.ErrNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		log.Error().Err(err).Int64("gameID", id).Msg("api: failed to get game")
		writeError(w, http.StatusInternalServerError, "failed to get game")
		return
	}

	var req AddPlayActionRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	dbid, err := s.db.AddPlayAction(&database.PlayAction{
		GameID:       id,
		Name:         req.Name,
		Path:         req.Path,
		WorkingDir:   req.WorkingDir,
		Arguments:    req.Arguments,
		Requirements: req.Requirements,
		TrackingPath: req.TrackingPath,
	})
	if err != nil {
		log.Error().Err(err).Int64("gameID", id).Msg("api: failed to add play action")
		writeError(w, http.StatusInternalServerError, "failed to add play action")
		return
	}

	action, err := s.db.GetPlayAction(dbid)
	if err != nil {
		log.Error().Err(err).Int64("playActionID", dbid).Msg("api: failed to read back play action")
		writeError(w, http.StatusInternalServerError, "failed to read back play action")
		return
	}
	writeJSON(w, http.StatusCreated, action)
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	if s.reconciler == nil {
		writeError(w, http.StatusServiceUnavailable, "steam reconciliation is not configured")
		return
	}

	id, ok := gameIDParam(w, r)
	if !ok {
		return
	}

	result, err := s.reconciler.Reconcile(r.Context(), id)
	if err != nil {
		log.Warn().Err(err).Int64("gameID", id).Msg("api: reconciliation failed")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}
