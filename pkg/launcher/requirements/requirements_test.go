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

package requirements

import (
	"testing"

	"github.com/PlayAtlas/playatlas-core/pkg/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func gameProc() *process.RunningProcess {
	return &process.RunningProcess{
		PID:        1234,
		Executable: "/opt/games/celeste/Celeste.bin.x86_64",
		Args:       []string{"/opt/games/celeste/Celeste.bin.x86_64", "--fullscreen", "--vsync"},
		Env: map[string]string{
			"STEAM_GAME": "504230",
			"LANG":       "en_US.UTF-8",
		},
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	_, err := Parse(`{"requireExecutable": true, "bogus": 1}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid process requirements")
}

func TestParseRoundTrip(t *testing.T) {
	t.Parallel()

	req, err := Parse(`{
		"requireExecutable": true,
		"executables": ["/opt/games/celeste/Celeste.bin.x86_64"],
		"requireEnvironmentVariables": true,
		"environmentVariables": {"STEAM_GAME": "504230"}
	}`)
	require.NoError(t, err)
	assert.True(t, req.RequireExecutable)
	assert.True(t, req.RequireEnvironment)
	assert.False(t, req.RequireCommandLine)
	assert.True(t, req.Match(gameProc()))
}

func TestEmptyRequirementsMatchAnything(t *testing.T) {
	t.Parallel()

	req := &ProcessRequirements{}
	assert.True(t, req.Empty())
	assert.True(t, req.Match(gameProc()))
	assert.True(t, req.Match(&process.RunningProcess{PID: 1}))
}

func TestDisabledGatesAreIgnored(t *testing.T) {
	t.Parallel()

	// Unsatisfiable data behind disabled gates must not affect matching.
	req := &ProcessRequirements{
		Executables:     []string{"/nonexistent"},
		CommandLineArgs: []string{"--never-passed"},
		EnvVars:         map[string]string{"MISSING": "x"},
	}
	assert.True(t, req.Match(gameProc()))
}

func TestExecutableGate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		executables []string
		want        bool
	}{
		{
			name:        "exact match",
			executables: []string{"/opt/games/celeste/Celeste.bin.x86_64"},
			want:        true,
		},
		{
			name:        "any of several",
			executables: []string{"/usr/bin/other", "/opt/games/celeste/Celeste.bin.x86_64"},
			want:        true,
		},
		{
			name:        "no match",
			executables: []string{"/usr/bin/other"},
			want:        false,
		},
		{
			name:        "enabled but empty set matches nothing",
			executables: nil,
			want:        false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := &ProcessRequirements{
				RequireExecutable: true,
				Executables:       tt.executables,
			}
			assert.Equal(t, tt.want, req.Match(gameProc()))
		})
	}
}

func TestArgumentGateIsOrderInsensitiveSubset(t *testing.T) {
	t.Parallel()

	req := &ProcessRequirements{
		RequireCommandLine: true,
		CommandLineArgs:    []string{"--vsync", "--fullscreen"},
	}
	assert.True(t, req.Match(gameProc()), "order must not matter")

	req.CommandLineArgs = append(req.CommandLineArgs, "--windowed")
	assert.False(t, req.Match(gameProc()), "every required argument must be present")
}

func TestEnvironmentGateExactValues(t *testing.T) {
	t.Parallel()

	req := &ProcessRequirements{
		RequireEnvironment: true,
		EnvVars:            map[string]string{"STEAM_GAME": "504230"},
	}
	assert.True(t, req.Match(gameProc()))

	req.EnvVars["STEAM_GAME"] = "1"
	assert.False(t, req.Match(gameProc()), "value mismatch fails the gate")

	req.EnvVars = map[string]string{"NOT_SET": ""}
	assert.False(t, req.Match(gameProc()), "missing key fails even for empty value")
}

func TestFromTrackingPath(t *testing.T) {
	t.Parallel()

	req := FromTrackingPath("/opt/games/celeste/Celeste.bin.x86_64")
	assert.True(t, req.RequireExecutable)
	assert.False(t, req.RequireCommandLine)
	assert.False(t, req.RequireEnvironment)
	assert.True(t, req.Match(gameProc()))
	assert.False(t, req.Match(&process.RunningProcess{Executable: "/usr/bin/sh"}))
}

// Matching a process against requirements derived from that same process
// must always succeed, for any generated shape.
func TestMatchSelfDerivedRequirements(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		exe := rapid.StringN(1, 64, 64).Draw(t, "exe")
		args := rapid.SliceOfN(rapid.StringN(0, 16, 16), 0, 8).Draw(t, "args")
		env := rapid.MapOfN(
			rapid.StringMatching(`[A-Z_]{1,12}`),
			rapid.StringN(0, 16, 16),
			0, 8,
		).Draw(t, "env")

		proc := &process.RunningProcess{
			PID:        rapid.IntRange(1, 1<<22).Draw(t, "pid"),
			Executable: exe,
			Args:       args,
			Env:        env,
		}

		req := &ProcessRequirements{
			RequireExecutable:  true,
			Executables:        []string{exe},
			RequireCommandLine: true,
			CommandLineArgs:    args,
			RequireEnvironment: true,
			EnvVars:            env,
		}
		if !req.Match(proc) {
			t.Fatalf("self-derived requirements must match: %+v", proc)
		}

		// A foreign executable must break the executable gate.
		req.Executables = []string{exe + "-x"}
		if req.Match(proc) {
			t.Fatalf("wrong executable must not match")
		}
	})
}
