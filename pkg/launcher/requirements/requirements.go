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

// Package requirements declares which observed process counts as "the
// game" for a play action.
package requirements

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PlayAtlas/playatlas-core/pkg/process"
)

// ProcessRequirements is the declarative predicate persisted as JSON on
// a play action. Each gate is individually toggleable; disabled gates
// are vacuously satisfied, enabled gates are conjunctive.
type ProcessRequirements struct {
	EnvVars            map[string]string `json:"environmentVariables"`
	Executables        []string          `json:"executables"`
	CommandLineArgs    []string          `json:"commandLineArguments"`
	RequireExecutable  bool              `json:"requireExecutable"`
	RequireCommandLine bool              `json:"requireCommandLineArguments"`
	RequireEnvironment bool              `json:"requireEnvironmentVariables"`
}

// Parse decodes a JSON-serialized requirements object.
func Parse(data string) (*ProcessRequirements, error) {
	var req ProcessRequirements
	decoder := json.NewDecoder(strings.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return nil, fmt.Errorf("invalid process requirements: %w", err)
	}
	return &req, nil
}

// FromTrackingPath converts a legacy literal tracking-path prefix into
// the degenerate structured form: a single required executable.
func FromTrackingPath(prefix string) *ProcessRequirements {
	return &ProcessRequirements{
		RequireExecutable: true,
		Executables:       []string{prefix},
	}
}

// Empty reports whether no gate is enabled, i.e. the requirements would
// match any process.
func (r *ProcessRequirements) Empty() bool {
	return !r.RequireExecutable && !r.RequireCommandLine && !r.RequireEnvironment
}

// Match reports whether a running process satisfies every enabled gate.
// Implements process.Matcher.
func (r *ProcessRequirements) Match(proc *process.RunningProcess) bool {
	if r.RequireExecutable && !r.matchExecutable(proc) {
		return false
	}
	if r.RequireCommandLine && !r.matchArguments(proc) {
		return false
	}
	if r.RequireEnvironment && !r.matchEnvironment(proc) {
		return false
	}
	return true
}

func (r *ProcessRequirements) matchExecutable(proc *process.RunningProcess) bool {
	for _, exe := range r.Executables {
		if proc.Executable == exe {
			return true
		}
	}
	return false
}

// matchArguments is a subset test: every required argument must appear
// somewhere in the process's argument vector, in any order.
func (r *ProcessRequirements) matchArguments(proc *process.RunningProcess) bool {
	for _, want := range r.CommandLineArgs {
		found := false
		for _, arg := range proc.Args {
			if arg == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// matchEnvironment requires every key to be present with exactly the
// required value. A missing key fails the gate.
func (r *ProcessRequirements) matchEnvironment(proc *process.RunningProcess) bool {
	for k, want := range r.EnvVars {
		got, ok := proc.Env[k]
		if !ok || got != want {
			return false
		}
	}
	return true
}
