// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/symshell/pkg/guard"
)

// configFileName is looked up in the user's home directory.
const configFileName = ".symshell.yaml"

// Config is the persisted user configuration. Every field has a
// working default; a missing config file is not an error.
type Config struct {
	// Format is the default output format.
	Format string `yaml:"format" validate:"omitempty,oneof=plain pretty latex latex-inline latex-block json"`

	// Strict disables the relaxed input rewrites by default.
	Strict bool `yaml:"strict"`

	// Color is the color mode: auto, always, never.
	Color string `yaml:"color" validate:"omitempty,oneof=auto always never"`

	// LogDir overrides the session log directory.
	LogDir string `yaml:"log_dir"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// Budget bounds symbolic growth. Zero fields fall back to the
	// defaults before validation.
	Budget guard.GrowthBudget `yaml:"budget"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		Format:   "plain",
		Color:    "auto",
		LogDir:   "~/.symshell/logs",
		LogLevel: "info",
		Budget:   guard.DefaultGrowthBudget(),
	}
}

// LoadConfig reads ~/.symshell.yaml over the defaults. A missing file
// yields the defaults; a malformed or invalid file is an error so a
// typo never silently loosens the growth budget.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, nil
	}
	path := filepath.Join(home, configFileName)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}

	return parseConfig(data, cfg)
}

func parseConfig(data []byte, cfg Config) (Config, error) {
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	defaults := guard.DefaultGrowthBudget()
	if cfg.Budget.MaxIntegerExponent == 0 {
		cfg.Budget.MaxIntegerExponent = defaults.MaxIntegerExponent
	}
	if cfg.Budget.MaxFactorialArg == 0 {
		cfg.Budget.MaxFactorialArg = defaults.MaxFactorialArg
	}
	if cfg.Budget.MaxPowDepth == 0 {
		cfg.Budget.MaxPowDepth = defaults.MaxPowDepth
	}

	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.Budget.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
