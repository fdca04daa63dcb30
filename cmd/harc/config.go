// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/harc

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/woozymasta/harc"
)

// envPrefix prefixes environment overrides, e.g. HARC_LOG_LEVEL.
const envPrefix = "HARC"

// Config holds settings read from the optional config file and environment.
// Command-line switches always win over it.
type Config struct {
	// LogLevel is the charmbracelet/log level name.
	LogLevel string `mapstructure:"log_level"`
	// Methods are codec digits queued when the command selects none.
	Methods string `mapstructure:"methods"`
	// AssumeYes answers every prompt with yes.
	AssumeYes bool `mapstructure:"assume_yes"`
	// Quiet suppresses progress output.
	Quiet bool `mapstructure:"quiet"`
	// Progress draws progress bars while packing and unpacking.
	Progress bool `mapstructure:"progress"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		LogLevel: "warn",
		Methods:  "1",
		Progress: true,
	}
}

// loadConfig reads configuration from path (optional) and HARC_* variables.
func loadConfig(path string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("methods", defaults.Methods)
	v.SetDefault("assume_yes", defaults.AssumeYes)
	v.SetDefault("quiet", defaults.Quiet)
	v.SetDefault("progress", defaults.Progress)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// parseMethods converts codec digits such as "41" into method ids.
func parseMethods(digits string) ([]harc.MethodID, error) {
	var queue harc.MethodQueue
	for _, r := range strings.TrimSpace(digits) {
		if r == ',' || r == ' ' {
			continue
		}

		if r < '0' || r > '9' || !harc.MethodID(r-'0').IsCodec() {
			return nil, fmt.Errorf("%w: %q in methods %q", harc.ErrUnknownMethod, r, digits)
		}

		queue.Add(harc.MethodID(r - '0'))
	}

	return queue, nil
}
