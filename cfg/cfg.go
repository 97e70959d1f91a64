/*
Copyright 2026 Dima Krasner

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package cfg defines the apfeed configuration file format and defaults.
package cfg

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// Config represents an apfeed configuration file.
type Config struct {
	// Server is the base URL of the user's home server, i.e. https://example.com/api.
	Server string
	User   string

	// TokenPath is a file that contains the session token.
	TokenPath string

	// MediaHost is the base URL of the media proxy. Attachments are fetched directly if empty.
	MediaHost string

	LogLevel slog.Level

	DatabaseOptions string
	CachePath       string
	BlockListPath   string

	MaxResolverRequests int
	ResolverCacheTTL    time.Duration
	CacheRetention      time.Duration

	MaxResponseBodySize int64
	RequestTimeout      time.Duration
	MaxIdleConns        int
	IdleConnTimeout     time.Duration
}

// FillDefaults replaces missing or invalid settings with defaults.
func (c *Config) FillDefaults() {
	if c.DatabaseOptions == "" {
		c.DatabaseOptions = "_journal_mode=WAL&_synchronous=1&_busy_timeout=5000"
	}

	if c.MaxResolverRequests <= 0 {
		c.MaxResolverRequests = 16
	}

	if c.ResolverCacheTTL <= 0 {
		c.ResolverCacheTTL = time.Hour * 6
	}

	if c.CacheRetention <= 0 {
		c.CacheRetention = time.Hour * 24 * 7
	}

	if c.MaxResponseBodySize <= 0 {
		c.MaxResponseBodySize = 1024 * 1024
	}

	if c.RequestTimeout <= 0 {
		c.RequestTimeout = time.Second * 15
	}

	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 128
	}

	if c.IdleConnTimeout <= 0 {
		c.IdleConnTimeout = time.Minute
	}
}

// Load reads a configuration file and fills missing settings with defaults.
func Load(path string) (*Config, error) {
	var c Config

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()

		if err := json.NewDecoder(f).Decode(&c); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	}

	c.FillDefaults()
	return &c, nil
}
