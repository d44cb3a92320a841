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
	"os/exec"

	"github.com/rs/zerolog/log"
)

// startProcess launches the spec's target detached from this process.
// URIs go through the OS default-handler mechanism; executables are
// spawned directly with arguments and working directory. The spawned
// process is deliberately not waited on or reaped here: it is usually a
// trampoline, and tracking happens via Search.
func startProcess(spec *LaunchSpec) error {
	if spec.IsURI() {
		name, args := uriOpenCommand(spec.Path)
		cmd := exec.Command(name, args...) //nolint:gosec // G204: path comes from the user's own play action
		detach(cmd)
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("failed to open URI %q: %w", spec.Path, err)
		}
		log.Debug().Str("uri", spec.Path).Msg("inspector: handed URI to OS handler")
		releaseProcess(cmd)
		return nil
	}

	cmd := exec.Command(spec.Path, spec.Args...) //nolint:gosec // G204: path comes from the user's own play action
	if spec.WorkingDir != "" {
		cmd.Dir = spec.WorkingDir
	}
	detach(cmd)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start process %q: %w", spec.Path, err)
	}
	log.Debug().
		Str("path", spec.Path).
		Strs("args", spec.Args).
		Int("pid", cmd.Process.Pid).
		Msg("inspector: started process")
	releaseProcess(cmd)
	return nil
}

// releaseProcess drops our handle so the child is not tied to the
// launcher's lifetime.
func releaseProcess(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	if err := cmd.Process.Release(); err != nil {
		log.Warn().Err(err).Msg("inspector: failed to release process handle")
	}
}
