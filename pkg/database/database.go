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

// Package database defines the record types shared between the storage
// layer and the launcher, reconciliation and API subsystems.
package database

import "time"

// Progression types for a game. NONE disables completion tracking.
const (
	ProgressionNone        = "NONE"
	ProgressionMainStory   = "MAIN_STORY"
	ProgressionCompletion  = "FULL_COMPLETION"
	ProgressionAchievement = "ACHIEVEMENTS"
)

// Completion statuses tracked on a game.
const (
	CompletionTodo       = "TODO"
	CompletionInProgress = "IN_PROGRESS"
	CompletionBeaten     = "BEATEN"
	CompletionCompleted  = "COMPLETED"
	CompletionAbandoned  = "ABANDONED"
)

// Platform codes used on play sessions and by Steam reconciliation.
const (
	PlatformWindows   = "windows"
	PlatformMac       = "mac"
	PlatformLinux     = "linux"
	PlatformSteamDeck = "steamdeck"
)

// Game is a catalogued title.
type Game struct {
	FirstPlayedAt    *time.Time `json:"firstPlayedAt"`
	LastPlayedAt     *time.Time `json:"lastPlayedAt"`
	CompletionStatus *string    `json:"completionStatus"`
	SteamAppID       *int64     `json:"steamAppId"`
	Name             string     `json:"name"`
	ProgressionType  string     `json:"progressionType"`
	DBID             int64      `json:"id"`
	PlayCount        int        `json:"playCount"`
	PlayTimeTotal    int        `json:"playTimeTotalSeconds"`
}

// PlayAction is one way of launching a game. Path is either an executable
// path or a URI handed to the OS default-handler mechanism. Arguments is a
// JSON array of strings. Requirements is a JSON-serialized
// requirements.ProcessRequirements used to recognise the running process;
// TrackingPath is the legacy literal path-prefix alternative.
type PlayAction struct {
	WorkingDir   *string `json:"workingDirectory"`
	Arguments    *string `json:"additionalArguments"`
	Requirements *string `json:"processRequirements"`
	TrackingPath *string `json:"trackingPath"`
	Name         string  `json:"name"`
	Path         string  `json:"path"`
	DBID         int64   `json:"id"`
	GameID       int64   `json:"gameId"`
	Archived     bool    `json:"isArchived"`
}

// PlaySession is one tracked play occurrence. A session is open while
// AddedToTotal is false; closing a session folds PlayTime into the owning
// game's total exactly once.
type PlaySession struct {
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
	Notes        *string   `json:"notes"`
	PlayActionID *int64    `json:"playActionId"`
	ID           string    `json:"uuid"`
	Platform     string    `json:"platform"`
	DBID         int64     `json:"id"`
	GameID       int64     `json:"gameId"`
	PlayTime     int       `json:"playTimeSeconds"`
	AddedToTotal bool      `json:"addedToTotal"`
	Historical   bool      `json:"isHistorical"`
}
