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

// Package config holds the TOML-backed runtime configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

const (
	// SchemaVersion is the current config file schema.
	SchemaVersion = 1
	// CfgEnv overrides the config file path when set.
	CfgEnv = "PLAYATLAS_CFG"
	// CfgFile is the default config file name.
	CfgFile = "config.toml"
	// AppVersion is the release version baked into builds.
	AppVersion = "0.3.0"
)

// Values is the serialized shape of the config file.
type Values struct {
	Launcher     Launcher `toml:"launcher,omitempty"`
	Steam        Steam    `toml:"steam,omitempty"`
	Service      Service  `toml:"service,omitempty"`
	ConfigSchema int      `toml:"config_schema"`
	DebugLogging bool     `toml:"debug_logging"`
}

// Steam configures the Steam Web API collaborator used by historical
// playtime reconciliation.
type Steam struct {
	APIKey  string `toml:"api_key,omitempty"`
	SteamID string `toml:"steam_id,omitempty"`
}

// Service configures the local HTTP API.
type Service struct {
	Port int `toml:"port,omitempty"`
}

// DefaultAPIPort is used when no port is configured.
const DefaultAPIPort = 7912

// BaseDefaults are the config values written on first run.
var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Service: Service{
		Port: DefaultAPIPort,
	},
}

// Instance is a live config handle with concurrent accessors.
type Instance struct {
	cfgPath  string
	vals     Values
	defaults Values
	mu       sync.RWMutex
}

//nolint:gocritic // config struct copied for immutability
func NewConfig(configDir string, defaults Values) (*Instance, error) {
	cfgPath := os.Getenv(CfgEnv)

	if cfgPath == "" {
		cfgPath = filepath.Join(configDir, CfgFile)
	}

	cfg := Instance{
		cfgPath:  cfgPath,
		vals:     defaults,
		defaults: defaults,
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		log.Info().Msg("saving new default config to disk")

		err := os.MkdirAll(filepath.Dir(cfgPath), 0o750)
		if err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		err = cfg.Save()
		if err != nil {
			return nil, err
		}
	}

	err := cfg.Load()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Load reads the config file from disk, layering file values on top of
// the defaults so fields missing from the file keep their defaults.
func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	if _, err := os.Stat(c.cfgPath); err != nil {
		return fmt.Errorf("failed to stat config file: %w", err)
	}

	data, err := os.ReadFile(c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	newVals := c.defaults
	err = toml.Unmarshal(data, &newVals)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return errors.New("schema version mismatch")
	}

	c.vals = newVals

	return nil
}

// Save writes the current config values to disk.
func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	c.vals.ConfigSchema = SchemaVersion

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DebugLogging reports whether debug level logging is enabled.
func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

// SetDebugLogging toggles debug level logging.
func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
}

// APIPort returns the HTTP API listen port.
func (c *Instance) APIPort() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Service.Port == 0 {
		return DefaultAPIPort
	}
	return c.vals.Service.Port
}

// SteamAPIKey returns the configured Steam Web API key, if any.
func (c *Instance) SteamAPIKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Steam.APIKey
}

// SteamID returns the configured SteamID64, if any.
func (c *Instance) SteamID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Steam.SteamID
}
