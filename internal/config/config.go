// Phonotheca - Offline Synchronization and Local Cache Engine for Personal Media Libraries
// Copyright 2026 Phonotheca Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/phonotheca/phonotheca

// Package config provides centralized configuration for all engine components.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in sensible defaults for all optional settings
//  2. Config File: optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: override any setting
//
// Config is immutable after Load() and safe for concurrent read access.
package config

import "time"

// Config holds all daemon configuration loaded from defaults, an optional YAML
// file, and environment variables.
type Config struct {
	Remote       RemoteConfig       `koanf:"remote"`
	Storage      StorageConfig      `koanf:"storage"`
	Cache        CacheConfig        `koanf:"cache"`
	Connectivity ConnectivityConfig `koanf:"connectivity"`
	Events       EventsConfig       `koanf:"events"`
	Server       ServerConfig       `koanf:"server"`
	Security     SecurityConfig     `koanf:"security"`
	Backup       BackupConfig       `koanf:"backup"`
	Logging      LoggingConfig      `koanf:"logging"`
}

// RemoteConfig holds the connection settings for the authoritative media
// service. The engine works fully offline without it; these settings only
// matter once connectivity is available.
//
// Environment Variables:
//   - REMOTE_URL: Base URL of the media service (e.g., https://music.example.com)
//   - REMOTE_TOKEN: API token issued for this device
//   - REMOTE_TIMEOUT: Per-request timeout (default: 15s)
//   - REMOTE_RATE_LIMIT: Max requests per second to the remote (default: 5)
//   - REMOTE_RATE_BURST: Burst allowance for the rate limiter (default: 10)
type RemoteConfig struct {
	URL       string        `koanf:"url"`
	Token     string        `koanf:"token"`
	Timeout   time.Duration `koanf:"timeout"`
	RateLimit float64       `koanf:"rate_limit"` // requests per second
	RateBurst int           `koanf:"rate_burst"`
}

// StorageConfig holds the durable store settings.
//
// DataDir is the root for everything the engine persists: the library store
// lives in DataDir/library, capability probes use throwaway directories
// beneath DataDir, and backups default to DataDir/backups.
type StorageConfig struct {
	DataDir    string `koanf:"data_dir"`
	SyncWrites bool   `koanf:"sync_writes"` // fsync every write; slower but safest
}

// CacheConfig controls the entity caches.
//
// StaleAfterHours is the default staleness window consulted by the daemon when
// deciding whether to refresh on connectivity; callers can still ask about any
// window they like. RefreshOnStart forces a refresh attempt at daemon start
// when online, even if the caches are not yet stale.
type CacheConfig struct {
	StaleAfterHours int  `koanf:"stale_after_hours"`
	RefreshOnStart  bool `koanf:"refresh_on_start"`
}

// ConnectivityConfig controls the connectivity watcher that turns remote
// reachability into online/offline transition events.
type ConnectivityConfig struct {
	CheckInterval time.Duration `koanf:"check_interval"`
	ProbeTimeout  time.Duration `koanf:"probe_timeout"`
}

// EventsConfig controls the in-process change-notification bus.
type EventsConfig struct {
	BufferSize int `koanf:"buffer_size"`
}

// ServerConfig holds the local control API settings.
//
// The default port 7466 spells PHON on a telephone keypad. The default host is
// loopback: the API exists for the UI process on the same machine, and binding
// wider than that without authentication is rejected by validation.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// SecurityConfig holds authentication and rate limiting for the control API.
//
// AuthMode "none" is acceptable for the default loopback binding; "basic"
// requires AdminUsername and AdminPassword (8+ characters, bcrypt-hashed at
// startup).
type SecurityConfig struct {
	AuthMode          string        `koanf:"auth_mode"` // none or basic
	AdminUsername     string        `koanf:"admin_username"`
	AdminPassword     string        `koanf:"admin_password"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// BackupConfig controls scheduled snapshots of the durable store. The cached
// entities are refetchable; the identity record and any pending actions are
// not, which is what the snapshots protect.
type BackupConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Dir      string        `koanf:"dir"` // empty = DataDir/backups
	Interval time.Duration `koanf:"interval"`
	Keep     int           `koanf:"keep"` // snapshots retained after pruning
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from all layered sources and validates it.
// This is the only entry point main() should use.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
