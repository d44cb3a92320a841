//go:build linux

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

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type matcherFunc func(*RunningProcess) bool

func (f matcherFunc) Match(p *RunningProcess) bool { return f(p) }

func matchExe(exe string) matcherFunc {
	return func(p *RunningProcess) bool { return p.Executable == exe }
}

// writeProcEntry lays out one /proc/<pid> directory in the fake proc
// tree: an exe symlink plus NUL-delimited cmdline and environ files.
func writeProcEntry(t *testing.T, root string, pid int, exe string, args []string, env map[string]string) {
	t.Helper()

	dir := filepath.Join(root, strconv.Itoa(pid))
	require.NoError(t, os.MkdirAll(dir, 0o755))

	// Recreate the symlink if the entry is being rewritten.
	linkPath := filepath.Join(dir, "exe")
	_ = os.Remove(linkPath)
	require.NoError(t, os.Symlink(exe, linkPath))

	cmdline := strings.Join(args, "\x00")
	if cmdline != "" {
		cmdline += "\x00"
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cmdline"), []byte(cmdline), 0o644))

	var environ strings.Builder
	for k, v := range env {
		environ.WriteString(k)
		environ.WriteString("=")
		environ.WriteString(v)
		environ.WriteString("\x00")
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "environ"), []byte(environ.String()), 0o644))
}

func TestSearchFindsMatchingProcess(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeProcEntry(t, root, 100, "/usr/bin/bash", []string{"bash"}, nil)
	writeProcEntry(t, root, 200, "/opt/game/game.x86_64",
		[]string{"/opt/game/game.x86_64", "--fullscreen"},
		map[string]string{"STEAM_GAME": "12345"})

	inspector := New(WithProcPath(root))

	proc, err := inspector.Search(matchExe("/opt/game/game.x86_64"))
	require.NoError(t, err)
	require.NotNil(t, proc)
	assert.Equal(t, 200, proc.PID)
	assert.Equal(t, []string{"/opt/game/game.x86_64", "--fullscreen"}, proc.Args)
	assert.Equal(t, "12345", proc.Env["STEAM_GAME"])
}

func TestSearchNotFoundIsNotAnError(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeProcEntry(t, root, 100, "/usr/bin/bash", []string{"bash"}, nil)

	inspector := New(WithProcPath(root))

	proc, err := inspector.Search(matchExe("/opt/game/game.x86_64"))
	require.NoError(t, err)
	assert.Nil(t, proc)
}

func TestSearchSkipsUnreadableEntries(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	// Non-numeric entries and incomplete process dirs must be skipped.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sys"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "300"), 0o755)) // no exe link
	require.NoError(t, os.WriteFile(filepath.Join(root, "uptime"), []byte("1 1"), 0o644))
	writeProcEntry(t, root, 400, "/opt/game/game.x86_64", []string{"game"}, nil)

	inspector := New(WithProcPath(root))

	proc, err := inspector.Search(matchExe("/opt/game/game.x86_64"))
	require.NoError(t, err)
	require.NotNil(t, proc)
	assert.Equal(t, 400, proc.PID)
}

func TestIsStillRunning(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeProcEntry(t, root, 500, "/opt/game/game.x86_64", []string{"game"}, map[string]string{"A": "1"})

	inspector := New(WithProcPath(root))
	proc, err := inspector.Search(matchExe("/opt/game/game.x86_64"))
	require.NoError(t, err)
	require.NotNil(t, proc)

	assert.True(t, inspector.IsStillRunning(proc))

	require.NoError(t, os.RemoveAll(filepath.Join(root, "500")))
	assert.False(t, inspector.IsStillRunning(proc), "exited process is not running")
	assert.False(t, inspector.IsStillRunning(nil))
}

func TestIsStillRunningDetectsPIDReuse(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeProcEntry(t, root, 600, "/opt/game/game.x86_64", []string{"game"}, map[string]string{"A": "1"})

	inspector := New(WithProcPath(root))
	proc, err := inspector.Search(matchExe("/opt/game/game.x86_64"))
	require.NoError(t, err)
	require.NotNil(t, proc)

	// Same PID now belongs to a different process.
	writeProcEntry(t, root, 600, "/usr/bin/sleep", []string{"sleep", "60"}, nil)
	assert.False(t, inspector.IsStillRunning(proc), "recycled PID must not count as running")

	// Same executable but changed argument vector is also a different process.
	writeProcEntry(t, root, 600, "/opt/game/game.x86_64", []string{"game", "--restarted"}, map[string]string{"A": "1"})
	assert.False(t, inspector.IsStillRunning(proc))
}

func TestSplitNulEnvSkipsMalformedEntries(t *testing.T) {
	t.Parallel()

	env := splitNulEnv([]byte("GOOD=1\x00malformed\x00EMPTY=\x00"))
	assert.Equal(t, map[string]string{"GOOD": "1", "EMPTY": ""}, env)
}

func TestLaunchSpecIsURI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		{"steam://rungameid/504230", true},
		{"heroic://launch/gog/1207658924", true},
		{"/usr/bin/game", false},
		{"C://games/thing.exe", false},
		{"://missing-scheme", false},
		{"", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			spec := &LaunchSpec{Path: tt.path}
			assert.Equal(t, tt.want, spec.IsURI())
		})
	}
}
