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

// Package process provides the platform-dependent process primitives used
// by the launcher: starting a detached game process and observing running
// processes without holding an OS handle to them.
//
// The launched executable is frequently a trampoline (a store client that
// spawns the real game under a different executable), so Start gives no
// tracking guarantees; detection goes through Search instead.
package process

import "strings"

// RunningProcess is a point-in-time snapshot of an observed process.
// It is constructed fresh on each inspection and never cached across
// polls except as the basis for equality comparison during a liveness
// check.
type RunningProcess struct {
	Env        map[string]string
	Executable string
	Args       []string
	PID        int
}

// LaunchSpec describes how to start a game process.
type LaunchSpec struct {
	// Path is an executable path, or a URI handed to the OS
	// default-handler mechanism when it carries a scheme.
	Path       string
	WorkingDir string
	Args       []string
}

// IsURI reports whether the launch path should go through the OS URI
// handler instead of a direct spawn.
func (s *LaunchSpec) IsURI() bool {
	i := strings.Index(s.Path, "://")
	if i <= 0 {
		return false
	}
	// Windows drive letters ("C://...") are not schemes.
	return i > 1
}

// Matcher decides whether an observed process is the one being looked
// for. Implemented by requirements.ProcessRequirements.
type Matcher interface {
	Match(proc *RunningProcess) bool
}

// Inspector is the platform capability interface for process lifecycle
// primitives. Platforms without a Search implementation report
// not-found rather than guessing, so detection fails closed.
type Inspector interface {
	// Start launches the target detached from the current process. The
	// child survives if this process exits. No handle to the child is
	// retained.
	Start(spec *LaunchSpec) error

	// Search enumerates running processes and returns a snapshot of the
	// first one accepted by the matcher, or nil if none matched.
	// Inspection failures on individual processes are swallowed and
	// treated as non-matches.
	Search(matcher Matcher) (*RunningProcess, error)

	// IsStillRunning re-resolves the snapshot's PID and reports whether
	// it still refers to the identical process: same executable, same
	// argument vector, same environment. A recycled PID is reported as
	// not running.
	IsStillRunning(snapshot *RunningProcess) bool
}

// Equal reports whether another snapshot describes the identical
// process: executable, full argument vector and full environment must
// all match exactly.
func (p *RunningProcess) Equal(other *RunningProcess) bool {
	if other == nil {
		return false
	}
	if p.PID != other.PID || p.Executable != other.Executable {
		return false
	}
	if len(p.Args) != len(other.Args) {
		return false
	}
	for i := range p.Args {
		if p.Args[i] != other.Args[i] {
			return false
		}
	}
	if len(p.Env) != len(other.Env) {
		return false
	}
	for k, v := range p.Env {
		if ov, ok := other.Env[k]; !ok || ov != v {
			return false
		}
	}
	return true
}
