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
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// procInspector inspects processes by walking a /proc-style
// pseudo-filesystem.
type procInspector struct {
	procPath string
}

// New creates the process inspector for this platform.
func New(opts ...Option) Inspector {
	o := applyOptions(opts)
	return &procInspector{procPath: o.procPath}
}

func (i *procInspector) Start(spec *LaunchSpec) error {
	return startProcess(spec)
}

func (i *procInspector) Search(matcher Matcher) (*RunningProcess, error) {
	entries, err := os.ReadDir(i.procPath)
	if err != nil {
		return nil, fmt.Errorf("read proc directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}

		proc, ok := i.readProcess(pid)
		if !ok {
			continue
		}

		if matcher.Match(proc) {
			log.Debug().
				Int("pid", proc.PID).
				Str("executable", proc.Executable).
				Msg("inspector: found matching process")
			return proc, nil
		}
	}

	return nil, nil //nolint:nilnil // not-found is not an error
}

func (i *procInspector) IsStillRunning(snapshot *RunningProcess) bool {
	if snapshot == nil {
		return false
	}
	current, ok := i.readProcess(snapshot.PID)
	if !ok {
		return false
	}
	// A recycled PID shows up as any mismatch against the snapshot.
	return snapshot.Equal(current)
}

// readProcess resolves a single process's executable, argument vector
// and environment. Any read failure (permission, process vanished
// mid-read) reports not-ok so the caller treats it as not found.
func (i *procInspector) readProcess(pid int) (*RunningProcess, bool) {
	pidStr := strconv.Itoa(pid)

	exe, err := os.Readlink(filepath.Join(i.procPath, pidStr, "exe"))
	if err != nil {
		return nil, false
	}

	cmdlineData, err := os.ReadFile(filepath.Join(i.procPath, pidStr, "cmdline")) //nolint:gosec // G304: procPath is controlled
	if err != nil {
		return nil, false
	}

	environData, err := os.ReadFile(filepath.Join(i.procPath, pidStr, "environ")) //nolint:gosec // G304: procPath is controlled
	if err != nil {
		return nil, false
	}

	return &RunningProcess{
		PID:        pid,
		Executable: exe,
		Args:       splitNulList(cmdlineData),
		Env:        splitNulEnv(environData),
	}, true
}

// splitNulList splits NUL-delimited /proc data into its elements.
func splitNulList(data []byte) []string {
	s := strings.TrimRight(string(data), "\x00")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\x00")
}

// splitNulEnv splits NUL-delimited KEY=VALUE pairs into a map.
func splitNulEnv(data []byte) map[string]string {
	env := make(map[string]string)
	for _, kv := range splitNulList(data) {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		env[k] = v
	}
	return env
}
