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

package config

import (
	"fmt"
	"time"
)

// Launcher configures the launch state machine: how long to wait before
// probing for the game process, how often to probe, how many times, and
// how often to check a tracked process for liveness.
type Launcher struct {
	InitialDelay     string `toml:"initial_delay,omitempty"`
	ProbeInterval    string `toml:"probe_interval,omitempty"`
	TrackingInterval string `toml:"tracking_interval,omitempty"`
	ProbeAttempts    *int   `toml:"probe_attempts,omitempty"`
	Progression      *bool  `toml:"progression,omitempty"`
}

const (
	defaultInitialDelay     = 10 * time.Second
	defaultProbeInterval    = 5 * time.Second
	defaultTrackingInterval = 30 * time.Second
	defaultProbeAttempts    = 10
)

// InitialDelay returns the grace period before the first process probe.
// Zero is legal and skips the wait.
func (c *Instance) InitialDelay() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Launcher.InitialDelay == "" {
		return defaultInitialDelay
	}
	d, err := time.ParseDuration(c.vals.Launcher.InitialDelay)
	if err != nil || d < 0 {
		return defaultInitialDelay
	}
	return d
}

// ProbeInterval returns the sleep between process detection attempts.
func (c *Instance) ProbeInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Launcher.ProbeInterval == "" {
		return defaultProbeInterval
	}
	d, err := time.ParseDuration(c.vals.Launcher.ProbeInterval)
	if err != nil || d <= 0 {
		return defaultProbeInterval
	}
	return d
}

// TrackingInterval returns the liveness check interval for a tracked
// process.
func (c *Instance) TrackingInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Launcher.TrackingInterval == "" {
		return defaultTrackingInterval
	}
	d, err := time.ParseDuration(c.vals.Launcher.TrackingInterval)
	if err != nil || d <= 0 {
		return defaultTrackingInterval
	}
	return d
}

// ProbeAttempts returns the maximum number of detection attempts before
// a launch is reported as failed.
func (c *Instance) ProbeAttempts() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Launcher.ProbeAttempts == nil || *c.vals.Launcher.ProbeAttempts <= 0 {
		return defaultProbeAttempts
	}
	return *c.vals.Launcher.ProbeAttempts
}

// ProgressionEnabled reports whether launches move a game's completion
// status to IN_PROGRESS.
func (c *Instance) ProgressionEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Launcher.Progression == nil {
		return true
	}
	return *c.vals.Launcher.Progression
}

// SetInitialDelay sets the pre-probe grace period from a duration string
// (e.g. "10s"). Returns an error if the duration string is invalid.
func (c *Instance) SetInitialDelay(duration string) error {
	if duration != "" {
		_, err := time.ParseDuration(duration)
		if err != nil {
			return fmt.Errorf("invalid initial delay duration: %w", err)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Launcher.InitialDelay = duration
	return nil
}

// SetProbeAttempts sets the maximum number of detection attempts.
func (c *Instance) SetProbeAttempts(attempts int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Launcher.ProbeAttempts = &attempts
}
