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

// Package helpers contains small shared utilities: data/config paths and
// log setup.
package helpers

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appDirName = "playatlas"

// DataEnv overrides the data directory when set.
const DataEnv = "PLAYATLAS_DATA"

// DataDir returns the directory holding the database and logs.
func DataDir() string {
	if dir := os.Getenv(DataEnv); dir != "" {
		return dir
	}
	return filepath.Join(xdg.DataHome, appDirName)
}

// ConfigDir returns the directory holding the config file.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, appDirName)
}
