/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment string
	HTTPBind    string
	HTTPPort    int
	MetricsBind string

	// StoreDir holds the persisted alarm list (alarms.json) and the
	// firing history database.
	StoreDir string
	// SongDir is where acquired audio files land (song/Alarm_<id>.wav).
	SongDir string

	// TickInterval is the cadence of the alarm check loop. Matching is
	// exact-second, so anything other than 1s will skip trigger instants.
	TickInterval time.Duration

	// PlayerBin is the external audio player used for both local files and
	// radio streams (anything that accepts a path or URL as last argument).
	PlayerBin  string
	PlayerArgs []string
	// FetcherBin is the song downloader invoked when creating file alarms.
	FetcherBin string

	// HistoryEnabled controls the sqlite firing history.
	HistoryEnabled bool
	HistoryDSN     string

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("HEIMDALL_ENV", "development"),
		HTTPBind:    getEnv("HEIMDALL_HTTP_BIND", "0.0.0.0"),
		HTTPPort:    getEnvInt("HEIMDALL_HTTP_PORT", 8080),
		MetricsBind: getEnv("HEIMDALL_METRICS_BIND", "127.0.0.1:9000"),

		StoreDir: getEnv("HEIMDALL_STORE_DIR", "./ser"),
		SongDir:  getEnv("HEIMDALL_SONG_DIR", "./song"),

		TickInterval: time.Duration(getEnvInt("HEIMDALL_TICK_MS", 1000)) * time.Millisecond,

		PlayerBin:  getEnv("HEIMDALL_PLAYER_BIN", "ffplay"),
		PlayerArgs: splitArgs(getEnv("HEIMDALL_PLAYER_ARGS", "-nodisp -autoexit -loglevel quiet")),
		FetcherBin: getEnv("HEIMDALL_FETCHER_BIN", "yt-dlp"),

		HistoryEnabled: getEnvBool("HEIMDALL_HISTORY_ENABLED", true),
		HistoryDSN:     getEnv("HEIMDALL_HISTORY_DSN", ""),

		TracingEnabled:    getEnvBool("HEIMDALL_TRACING_ENABLED", false),
		OTLPEndpoint:      getEnv("HEIMDALL_OTLP_ENDPOINT", "localhost:4317"),
		TracingSampleRate: getEnvFloat("HEIMDALL_TRACING_SAMPLE_RATE", 1.0),
	}

	if cfg.HistoryDSN == "" {
		cfg.HistoryDSN = filepath.Join(cfg.StoreDir, "history.db")
	}

	if cfg.TickInterval <= 0 {
		return nil, fmt.Errorf("HEIMDALL_TICK_MS must be positive")
	}

	if cfg.PlayerBin == "" {
		return nil, fmt.Errorf("HEIMDALL_PLAYER_BIN must not be empty")
	}

	return cfg, nil
}

// AlarmFile returns the path of the persisted alarm list.
func (c *Config) AlarmFile() string {
	return filepath.Join(c.StoreDir, "alarms.json")
}

func splitArgs(s string) []string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if val := os.Getenv(key); val != "" {
		val = strings.ToLower(strings.TrimSpace(val))
		if val == "true" || val == "1" || val == "yes" {
			return true
		}
		if val == "false" || val == "0" || val == "no" {
			return false
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return def
}
