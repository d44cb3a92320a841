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

// Package gamedb is the SQLite-backed store for games, play actions and
// play sessions.
package gamedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/PlayAtlas/playatlas-core/pkg/helpers"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNullSQL is returned when the GameDB is not connected.
var ErrNullSQL = errors.New("GameDB is not connected")

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

const dbFile = "games.db"

const sqliteConnParams = "?_journal_mode=WAL&_synchronous=FULL&_busy_timeout=5000&_foreign_keys=on"

// GameDB wraps the SQLite connection for the game library.
type GameDB struct {
	sql *sql.DB
	ctx context.Context
}

// Open opens (creating if necessary) the game database and runs any
// pending migrations.
func Open(ctx context.Context) (*GameDB, error) {
	db := &GameDB{sql: nil, ctx: ctx}
	dbPath := db.Path()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create directory for database: %w", err)
	}
	sqlInstance, err := sql.Open("sqlite3", dbPath+sqliteConnParams)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.sql = sqlInstance
	if err := db.MigrateUp(); err != nil {
		return nil, err
	}
	return db, nil
}

// Path returns the on-disk location of the database file.
func (*GameDB) Path() string {
	return filepath.Join(helpers.DataDir(), dbFile)
}

// UnsafeGetSQLDb exposes the raw connection. Test use only.
func (db *GameDB) UnsafeGetSQLDb() *sql.DB {
	return db.sql
}

// MigrateUp applies pending schema migrations.
func (db *GameDB) MigrateUp() error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlMigrateUp(db.sql)
}

// Vacuum reclaims free space in the database file.
func (db *GameDB) Vacuum() error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlVacuum(db.ctx, db.sql)
}

// Truncate removes all rows from every table.
func (db *GameDB) Truncate() error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlTruncate(db.ctx, db.sql)
}

// Close closes the underlying connection.
func (db *GameDB) Close() error {
	if db.sql == nil {
		return nil
	}
	if err := db.sql.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// SetSQLForTesting allows injection of a sql.DB instance for testing.
// It initialises the schema on the injected connection.
func (db *GameDB) SetSQLForTesting(ctx context.Context, sqlDB *sql.DB) error {
	db.sql = sqlDB
	db.ctx = ctx
	return db.MigrateUp()
}

func unixOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}
