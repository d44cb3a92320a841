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

// Package helpers provides shared test setup for database-backed tests.
package helpers

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/PlayAtlas/playatlas-core/pkg/database/gamedb"
	_ "github.com/mattn/go-sqlite3"
)

// NewInMemoryGameDB creates a migrated GameDB backed by a temp-file
// SQLite database. The file persists for the test's lifetime so the
// connection can be closed and reopened.
func NewInMemoryGameDB(t *testing.T) (db *gamedb.GameDB, cleanup func()) {
	t.Helper()

	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "gamedb_test.db")

	// Foreign keys on to match the production connection parameters.
	sqlDB, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	db = &gamedb.GameDB{}
	if err := db.SetSQLForTesting(context.Background(), sqlDB); err != nil {
		if closeErr := sqlDB.Close(); closeErr != nil {
			t.Errorf("Failed to close SQL database after setup error: %v", closeErr)
		}
		t.Fatalf("Failed to set up GameDB for testing: %v", err)
	}

	cleanup = func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close GameDB: %v", err)
		}
	}

	return db, cleanup
}
