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

package gamedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/PlayAtlas/playatlas-core/pkg/database"
	"github.com/rs/zerolog/log"
)

// AddGame inserts a new game and returns its DBID.
func (db *GameDB) AddGame(game *database.Game) (int64, error) {
	if db.sql == nil {
		return 0, ErrNullSQL
	}
	return sqlAddGame(db.ctx, db.sql, game)
}

// GetGame retrieves a single game by DBID.
func (db *GameDB) GetGame(dbid int64) (*database.Game, error) {
	if db.sql == nil {
		return nil, ErrNullSQL
	}
	return sqlGetGame(db.ctx, db.sql, dbid)
}

// GetGameBySteamAppID retrieves a game by its Steam app ID, if any.
func (db *GameDB) GetGameBySteamAppID(appID int64) (*database.Game, error) {
	if db.sql == nil {
		return nil, ErrNullSQL
	}
	return sqlGetGameBySteamAppID(db.ctx, db.sql, appID)
}

// ListGames returns all games ordered by name.
func (db *GameDB) ListGames() ([]database.Game, error) {
	if db.sql == nil {
		return nil, ErrNullSQL
	}
	return sqlListGames(db.ctx, db.sql)
}

// RecomputeGameTotal sets a game's play time total to the sum of play time
// over all of its sessions, historical and live.
func (db *GameDB) RecomputeGameTotal(gameID int64) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlRecomputeGameTotal(db.ctx, db.sql, gameID)
}

/*
 * Internal SQL functions
 */

func sqlAddGame(ctx context.Context, db *sql.DB, game *database.Game) (int64, error) {
	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO Games(
			Name, ProgressionType, CompletionStatus, FirstPlayedAt, LastPlayedAt,
			PlayCount, PlayTimeTotal, SteamAppID, CreatedAt, UpdatedAt
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare game insert statement: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	now := time.Now().Unix()
	progression := game.ProgressionType
	if progression == "" {
		progression = database.ProgressionNone
	}

	var completion any
	if game.CompletionStatus != nil {
		completion = *game.CompletionStatus
	}
	var steamAppID any
	if game.SteamAppID != nil {
		steamAppID = *game.SteamAppID
	}

	result, err := stmt.ExecContext(ctx,
		game.Name,
		progression,
		completion,
		unixOrNil(game.FirstPlayedAt),
		unixOrNil(game.LastPlayedAt),
		game.PlayCount,
		game.PlayTimeTotal,
		steamAppID,
		now,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to execute game insert: %w", err)
	}

	dbid, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	return dbid, nil
}

const gameColumns = `
	DBID, Name, ProgressionType, CompletionStatus, FirstPlayedAt, LastPlayedAt,
	PlayCount, PlayTimeTotal, SteamAppID
`

func scanGame(scan func(...any) error) (*database.Game, error) {
	var game database.Game
	var completion sql.NullString
	var firstPlayed, lastPlayed, steamAppID sql.NullInt64

	err := scan(
		&game.DBID,
		&game.Name,
		&game.ProgressionType,
		&completion,
		&firstPlayed,
		&lastPlayed,
		&game.PlayCount,
		&game.PlayTimeTotal,
		&steamAppID,
	)
	if err != nil {
		return nil, err
	}

	if completion.Valid {
		status := completion.String
		game.CompletionStatus = &status
	}
	if firstPlayed.Valid {
		t := time.Unix(firstPlayed.Int64, 0)
		game.FirstPlayedAt = &t
	}
	if lastPlayed.Valid {
		t := time.Unix(lastPlayed.Int64, 0)
		game.LastPlayedAt = &t
	}
	if steamAppID.Valid {
		appID := steamAppID.Int64
		game.SteamAppID = &appID
	}

	return &game, nil
}

func sqlGetGame(ctx context.Context, db *sql.DB, dbid int64) (*database.Game, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+gameColumns+`
		FROM Games
		WHERE DBID = ?;
	`, dbid)

	game, err := scanGame(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan game row: %w", err)
	}
	return game, nil
}

func sqlGetGameBySteamAppID(ctx context.Context, db *sql.DB, appID int64) (*database.Game, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+gameColumns+`
		FROM Games
		WHERE SteamAppID = ?;
	`, appID)

	game, err := scanGame(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan game row: %w", err)
	}
	return game, nil
}

func sqlListGames(ctx context.Context, db *sql.DB) ([]database.Game, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+gameColumns+`
		FROM Games
		ORDER BY Name;
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close rows")
		}
	}()

	var list []database.Game
	for rows.Next() {
		game, scanErr := scanGame(rows.Scan)
		if scanErr != nil {
			return list, fmt.Errorf("failed to scan game row: %w", scanErr)
		}
		list = append(list, *game)
	}

	if err := rows.Err(); err != nil {
		return list, fmt.Errorf("error iterating game rows: %w", err)
	}

	return list, nil
}

func sqlRecomputeGameTotal(ctx context.Context, db *sql.DB, gameID int64) error {
	stmt, err := db.PrepareContext(ctx, `
		UPDATE Games
		SET PlayTimeTotal = (
			SELECT COALESCE(SUM(PlayTime), 0)
			FROM PlaySessions
			WHERE GameID = Games.DBID
		),
		UpdatedAt = ?
		WHERE DBID = ?;
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare game total recompute statement: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	_, err = stmt.ExecContext(ctx, time.Now().Unix(), gameID)
	if err != nil {
		return fmt.Errorf("failed to execute game total recompute: %w", err)
	}

	return nil
}
