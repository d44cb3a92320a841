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

// LaunchRequest asks the launcher to start a game through one of its
// play actions.
type LaunchRequest struct {
	GameID       int64 `json:"gameId"       validate:"required,gt=0"`
	PlayActionID int64 `json:"playActionId" validate:"required,gt=0"`
}

// AddGameRequest creates a game in the library.
type AddGameRequest struct {
	SteamAppID      *int64 `json:"steamAppId"      validate:"omitempty,gt=0"`
	Name            string `json:"name"            validate:"required,max=255"`
	ProgressionType string `json:"progressionType" validate:"omitempty,oneof=NONE MAIN_STORY FULL_COMPLETION ACHIEVEMENTS"`
}

// AddPlayActionRequest creates a play action for a game.
type AddPlayActionRequest struct {
	WorkingDir   *string `json:"workingDirectory"`
	Arguments    *string `json:"additionalArguments"`
	Requirements *string `json:"processRequirements"`
	TrackingPath *string `json:"trackingPath"`
	Name         string  `json:"name" validate:"required,max=255"`
	Path         string  `json:"path" validate:"required"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse reports daemon liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
