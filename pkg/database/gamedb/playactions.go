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

// AddPlayAction inserts a new play action and returns its DBID.
func (db *GameDB) AddPlayAction(action *database.PlayAction) (int64, error) {
	if db.sql == nil {
		return 0, ErrNullSQL
	}
	return sqlAddPlayAction(db.ctx, db.sql, action)
}

// GetPlayAction retrieves a single play action by DBID.
func (db *GameDB) GetPlayAction(dbid int64) (*database.PlayAction, error) {
	if db.sql == nil {
		return nil, ErrNullSQL
	}
	return sqlGetPlayAction(db.ctx, db.sql, dbid)
}

// GetPlayActionsForGame returns all non-archived play actions for a game.
func (db *GameDB) GetPlayActionsForGame(gameID int64) ([]database.PlayAction, error) {
	if db.sql == nil {
		return nil, ErrNullSQL
	}
	return sqlGetPlayActionsForGame(db.ctx, db.sql, gameID)
}

// ArchivePlayAction marks a play action as archived so it no longer
// appears in launch candidates.
func (db *GameDB) ArchivePlayAction(dbid int64) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlArchivePlayAction(db.ctx, db.sql, dbid)
}

/*
 * Internal SQL functions
 */

func sqlAddPlayAction(ctx context.Context, db *sql.DB, action *database.PlayAction) (int64, error) {
	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO PlayActions(
			GameID, Name, Path, WorkingDir, Arguments, Requirements,
			TrackingPath, Archived, CreatedAt, UpdatedAt
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare play action insert statement: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	now := time.Now().Unix()
	result, err := stmt.ExecContext(ctx,
		action.GameID,
		action.Name,
		action.Path,
		stringOrNil(action.WorkingDir),
		stringOrNil(action.Arguments),
		stringOrNil(action.Requirements),
		stringOrNil(action.TrackingPath),
		action.Archived,
		now,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to execute play action insert: %w", err)
	}

	dbid, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	return dbid, nil
}

func stringOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

const playActionColumns = `
	DBID, GameID, Name, Path, WorkingDir, Arguments, Requirements,
	TrackingPath, Archived
`

func scanPlayAction(scan func(...any) error) (*database.PlayAction, error) {
	var action database.PlayAction
	var workingDir, arguments, requirements, trackingPath sql.NullString

	err := scan(
		&action.DBID,
		&action.GameID,
		&action.Name,
		&action.Path,
		&workingDir,
		&arguments,
		&requirements,
		&trackingPath,
		&action.Archived,
	)
	if err != nil {
		return nil, err
	}

	if workingDir.Valid {
		s := workingDir.String
		action.WorkingDir = &s
	}
	if arguments.Valid {
		s := arguments.String
		action.Arguments = &s
	}
	if requirements.Valid {
		s := requirements.String
		action.Requirements = &s
	}
	if trackingPath.Valid {
		s := trackingPath.String
		action.TrackingPath = &s
	}

	return &action, nil
}

func sqlGetPlayAction(ctx context.Context, db *sql.DB, dbid int64) (*database.PlayAction, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+playActionColumns+`
		FROM PlayActions
		WHERE DBID = ?;
	`, dbid)

	action, err := scanPlayAction(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan play action row: %w", err)
	}
	return action, nil
}

func sqlGetPlayActionsForGame(ctx context.Context, db *sql.DB, gameID int64) ([]database.PlayAction, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+playActionColumns+`
		FROM PlayActions
		WHERE GameID = ? AND Archived = 0
		ORDER BY DBID;
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query play actions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close rows")
		}
	}()

	var list []database.PlayAction
	for rows.Next() {
		action, scanErr := scanPlayAction(rows.Scan)
		if scanErr != nil {
			return list, fmt.Errorf("failed to scan play action row: %w", scanErr)
		}
		list = append(list, *action)
	}

	if err := rows.Err(); err != nil {
		return list, fmt.Errorf("error iterating play action rows: %w", err)
	}

	return list, nil
}

func sqlArchivePlayAction(ctx context.Context, db *sql.DB, dbid int64) error {
	stmt, err := db.PrepareContext(ctx, `
		UPDATE PlayActions
		SET Archived = 1, UpdatedAt = ?
		WHERE DBID = ?;
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare play action archive statement: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	_, err = stmt.ExecContext(ctx, time.Now().Unix(), dbid)
	if err != nil {
		return fmt.Errorf("failed to execute play action archive: %w", err)
	}

	return nil
}
