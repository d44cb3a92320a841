//go:build !linux

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

package process

import "github.com/rs/zerolog/log"

// unsupportedInspector can start processes but has no process
// enumeration for this platform. Search always reports not-found so
// detection fails closed instead of guessing.
type unsupportedInspector struct{}

// New creates the process inspector for this platform.
func New(_ ...Option) Inspector {
	log.Warn().Msg("inspector: process detection not supported on this platform")
	return &unsupportedInspector{}
}

func (*unsupportedInspector) Start(spec *LaunchSpec) error {
	return startProcess(spec)
}

func (*unsupportedInspector) Search(_ Matcher) (*RunningProcess, error) {
	return nil, nil //nolint:nilnil // not-found is not an error
}

func (*unsupportedInspector) IsStillRunning(_ *RunningProcess) bool {
	return false
}
