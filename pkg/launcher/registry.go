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

package launcher

import (
	"context"
	"sync"
)

// registry maps open session IDs to their tracking loop's cancel
// handle. Sessions register on entering tracking and deregister when
// the tracked process disappears.
type registry struct {
	handles map[string]context.CancelFunc
	mu      sync.Mutex
}

func newRegistry() *registry {
	return &registry{
		handles: make(map[string]context.CancelFunc),
	}
}

func (r *registry) register(sessionID string, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles[sessionID] = cancel
}

func (r *registry) deregister(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handles, sessionID)
}

// active returns the session IDs currently being tracked.
func (r *registry) active() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.handles))
	for id := range r.handles {
		ids = append(ids, id)
	}
	return ids
}

// cancelAll stops every tracking loop. Sessions are left open for the
// startup recovery sweep; tracking cannot resume across a restart.
func (r *registry) cancelAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, cancel := range r.handles {
		cancel()
		delete(r.handles, id)
	}
}
