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

// OpenSession creates a new play session and updates the owning game's
// launch bookkeeping (first/last played, play count, completion status)
// in a single transaction. Returns the session DBID.
//
// The session must have zero play time and AddedToTotal false; the game's
// completion status moves to IN_PROGRESS only when progression is enabled
// and the current status is unset or TODO.
func (db *GameDB) OpenSession(session *database.PlaySession, progression bool) (int64, error) {
	if db.sql == nil {
		return 0, ErrNullSQL
	}
	return sqlOpenSession(db.ctx, db.sql, session, progression)
}

// ExtendSession advances an open session's end time and play time and
// touches the game's last played date, in a single transaction. Sessions
// already added to the total are never modified.
func (db *GameDB) ExtendSession(dbid int64, end time.Time, playTime int) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlExtendSession(db.ctx, db.sql, dbid, end, playTime)
}

// CloseSession finalises a session and folds its play time into the
// owning game's total, in a single transaction. This is the only live
// code path that increments Games.PlayTimeTotal. Closing an
// already-closed session is a no-op.
func (db *GameDB) CloseSession(dbid int64, end time.Time, playTime int) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlCloseSession(db.ctx, db.sql, dbid, end, playTime)
}

// CloseHangingSessions folds the play time of any sessions left open by
// an ungraceful shutdown into their games' totals and marks them added.
// Idempotent: the AddedToTotal flag prevents double counting. Returns
// the number of sessions recovered.
func (db *GameDB) CloseHangingSessions() (int64, error) {
	if db.sql == nil {
		return 0, ErrNullSQL
	}
	return sqlCloseHangingSessions(db.ctx, db.sql)
}

// AddSession inserts a session row as-is. Used by historical playtime
// reconciliation; live sessions go through OpenSession.
func (db *GameDB) AddSession(session *database.PlaySession) (int64, error) {
	if db.sql == nil {
		return 0, ErrNullSQL
	}
	return sqlAddSession(db.ctx, db.sql, session)
}

// GetSessionsForGame returns all sessions for a game, newest first.
func (db *GameDB) GetSessionsForGame(gameID int64) ([]database.PlaySession, error) {
	if db.sql == nil {
		return nil, ErrNullSQL
	}
	return sqlGetSessionsForGame(db.ctx, db.sql, gameID)
}

// SumSessionTime returns the summed play time in seconds over a game's
// sessions for one platform, filtered on the historical flag.
func (db *GameDB) SumSessionTime(gameID int64, platform string, historical bool) (int, error) {
	if db.sql == nil {
		return 0, ErrNullSQL
	}
	return sqlSumSessionTime(db.ctx, db.sql, gameID, platform, historical)
}

// DeleteHistoricalSessions removes historical sessions for a game whose
// notes carry the given provenance tag. Returns the number deleted.
func (db *GameDB) DeleteHistoricalSessions(gameID int64, notes string) (int64, error) {
	if db.sql == nil {
		return 0, ErrNullSQL
	}
	return sqlDeleteHistoricalSessions(db.ctx, db.sql, gameID, notes)
}

/*
 * Internal SQL functions
 */

func sqlOpenSession(
	ctx context.Context,
	db *sql.DB,
	session *database.PlaySession,
	progression bool,
) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin session open transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Warn().Err(rbErr).Msg("failed to roll back session open transaction")
		}
	}()

	now := time.Now().Unix()
	var playActionID any
	if session.PlayActionID != nil {
		playActionID = *session.PlayActionID
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO PlaySessions(
			ID, GameID, PlayActionID, Platform, StartTime, EndTime,
			PlayTime, AddedToTotal, Historical, Notes, CreatedAt, UpdatedAt
		) VALUES (?, ?, ?, ?, ?, ?, 0, 0, 0, NULL, ?, ?);
	`,
		session.ID,
		session.GameID,
		playActionID,
		session.Platform,
		session.StartTime.Unix(),
		session.StartTime.Unix(),
		now,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert play session: %w", err)
	}

	dbid, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE Games
		SET FirstPlayedAt = COALESCE(FirstPlayedAt, ?),
		    LastPlayedAt = ?,
		    PlayCount = PlayCount + 1,
		    CompletionStatus = CASE
		        WHEN ? AND (CompletionStatus IS NULL OR CompletionStatus = ?)
		        THEN ?
		        ELSE CompletionStatus
		    END,
		    UpdatedAt = ?
		WHERE DBID = ?;
	`,
		session.StartTime.Unix(),
		session.StartTime.Unix(),
		progression,
		database.CompletionTodo,
		database.CompletionInProgress,
		now,
		session.GameID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update game on session open: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit session open transaction: %w", err)
	}

	return dbid, nil
}

func sqlExtendSession(ctx context.Context, db *sql.DB, dbid int64, end time.Time, playTime int) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin session extend transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Warn().Err(rbErr).Msg("failed to roll back session extend transaction")
		}
	}()

	now := time.Now().Unix()
	result, err := tx.ExecContext(ctx, `
		UPDATE PlaySessions
		SET EndTime = ?, PlayTime = ?, UpdatedAt = ?
		WHERE DBID = ? AND AddedToTotal = 0;
	`, end.Unix(), playTime, now, dbid)
	if err != nil {
		return fmt.Errorf("failed to extend play session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		// Already closed, leave the game row untouched too.
		return tx.Commit() //nolint:wrapcheck // commit of an empty tx
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE Games
		SET LastPlayedAt = ?, UpdatedAt = ?
		WHERE DBID = (SELECT GameID FROM PlaySessions WHERE DBID = ?);
	`, end.Unix(), now, dbid)
	if err != nil {
		return fmt.Errorf("failed to update game on session extend: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session extend transaction: %w", err)
	}

	return nil
}

func sqlCloseSession(ctx context.Context, db *sql.DB, dbid int64, end time.Time, playTime int) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin session close transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Warn().Err(rbErr).Msg("failed to roll back session close transaction")
		}
	}()

	now := time.Now().Unix()
	result, err := tx.ExecContext(ctx, `
		UPDATE PlaySessions
		SET EndTime = ?, PlayTime = ?, AddedToTotal = 1, UpdatedAt = ?
		WHERE DBID = ? AND AddedToTotal = 0;
	`, end.Unix(), playTime, now, dbid)
	if err != nil {
		return fmt.Errorf("failed to close play session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		// Session was already folded into the total, nothing to add.
		return tx.Commit() //nolint:wrapcheck // commit of an empty tx
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE Games
		SET LastPlayedAt = ?,
		    PlayTimeTotal = PlayTimeTotal + ?,
		    UpdatedAt = ?
		WHERE DBID = (SELECT GameID FROM PlaySessions WHERE DBID = ?);
	`, end.Unix(), playTime, now, dbid)
	if err != nil {
		return fmt.Errorf("failed to update game on session close: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session close transaction: %w", err)
	}

	return nil
}

func sqlCloseHangingSessions(ctx context.Context, db *sql.DB) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin hanging session transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Warn().Err(rbErr).Msg("failed to roll back hanging session transaction")
		}
	}()

	now := time.Now().Unix()

	// Fold open session time into totals first, then flip the flags.
	_, err = tx.ExecContext(ctx, `
		UPDATE Games
		SET PlayTimeTotal = PlayTimeTotal + (
			SELECT COALESCE(SUM(PlayTime), 0)
			FROM PlaySessions
			WHERE GameID = Games.DBID AND AddedToTotal = 0
		),
		UpdatedAt = ?
		WHERE DBID IN (SELECT GameID FROM PlaySessions WHERE AddedToTotal = 0);
	`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to fold hanging sessions into game totals: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE PlaySessions
		SET AddedToTotal = 1, UpdatedAt = ?
		WHERE AddedToTotal = 0;
	`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to mark hanging sessions closed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit hanging session transaction: %w", err)
	}

	if rows > 0 {
		log.Info().Msgf("recovered %d hanging play sessions", rows)
	}

	return rows, nil
}

func sqlAddSession(ctx context.Context, db *sql.DB, session *database.PlaySession) (int64, error) {
	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO PlaySessions(
			ID, GameID, PlayActionID, Platform, StartTime, EndTime,
			PlayTime, AddedToTotal, Historical, Notes, CreatedAt, UpdatedAt
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare session insert statement: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	now := time.Now().Unix()
	var playActionID any
	if session.PlayActionID != nil {
		playActionID = *session.PlayActionID
	}
	var notes any
	if session.Notes != nil {
		notes = *session.Notes
	}

	result, err := stmt.ExecContext(ctx,
		session.ID,
		session.GameID,
		playActionID,
		session.Platform,
		session.StartTime.Unix(),
		session.EndTime.Unix(),
		session.PlayTime,
		session.AddedToTotal,
		session.Historical,
		notes,
		now,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to execute session insert: %w", err)
	}

	dbid, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	return dbid, nil
}

func sqlGetSessionsForGame(ctx context.Context, db *sql.DB, gameID int64) ([]database.PlaySession, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT
			DBID, ID, GameID, PlayActionID, Platform, StartTime, EndTime,
			PlayTime, AddedToTotal, Historical, Notes
		FROM PlaySessions
		WHERE GameID = ?
		ORDER BY StartTime DESC, DBID DESC;
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query play sessions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close rows")
		}
	}()

	var list []database.PlaySession
	for rows.Next() {
		var session database.PlaySession
		var playActionID sql.NullInt64
		var startUnix, endUnix int64
		var notes sql.NullString

		err = rows.Scan(
			&session.DBID,
			&session.ID,
			&session.GameID,
			&playActionID,
			&session.Platform,
			&startUnix,
			&endUnix,
			&session.PlayTime,
			&session.AddedToTotal,
			&session.Historical,
			&notes,
		)
		if err != nil {
			return list, fmt.Errorf("failed to scan play session row: %w", err)
		}

		if playActionID.Valid {
			id := playActionID.Int64
			session.PlayActionID = &id
		}
		if notes.Valid {
			s := notes.String
			session.Notes = &s
		}
		session.StartTime = time.Unix(startUnix, 0)
		session.EndTime = time.Unix(endUnix, 0)

		list = append(list, session)
	}

	if err := rows.Err(); err != nil {
		return list, fmt.Errorf("error iterating play session rows: %w", err)
	}

	return list, nil
}

func sqlSumSessionTime(
	ctx context.Context,
	db *sql.DB,
	gameID int64,
	platform string,
	historical bool,
) (int, error) {
	var total int
	err := db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(PlayTime), 0)
		FROM PlaySessions
		WHERE GameID = ? AND Platform = ? AND Historical = ?;
	`, gameID, platform, historical).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum session play time: %w", err)
	}
	return total, nil
}

func sqlDeleteHistoricalSessions(
	ctx context.Context,
	db *sql.DB,
	gameID int64,
	notes string,
) (int64, error) {
	stmt, err := db.PrepareContext(ctx, `
		DELETE FROM PlaySessions
		WHERE GameID = ? AND Historical = 1 AND Notes = ?;
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare historical session delete statement: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	result, err := stmt.ExecContext(ctx, gameID, notes)
	if err != nil {
		return 0, fmt.Errorf("failed to delete historical sessions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}
