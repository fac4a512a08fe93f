// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/symshell/pkg/guard"
	"github.com/AleutianAI/symshell/pkg/logging"
)

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := parseConfig([]byte(""), DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, "plain", cfg.Format)
	assert.Equal(t, "auto", cfg.Color)
	assert.Equal(t, guard.DefaultGrowthBudget(), cfg.Budget)
}

func TestParseConfig_Overrides(t *testing.T) {
	data := []byte(`
format: latex
strict: true
color: never
log_level: debug
budget:
  max_integer_exponent: 500
`)
	cfg, err := parseConfig(data, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, "latex", cfg.Format)
	assert.True(t, cfg.Strict)
	assert.Equal(t, "never", cfg.Color)
	assert.Equal(t, int64(500), cfg.Budget.MaxIntegerExponent)
	// Unset budget fields keep their defaults.
	assert.Equal(t, guard.DefaultGrowthBudget().MaxPowDepth, cfg.Budget.MaxPowDepth)
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad format", "format: html"},
		{"bad color", "color: sometimes"},
		{"bad level", "log_level: trace"},
		{"not yaml", "format: [unterminated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseConfig([]byte(tt.data), DefaultConfig())
			assert.Error(t, err)
		})
	}
}

func TestResolveFormat(t *testing.T) {
	reset := func() {
		flagFormat = ""
		flagLaTeX = false
		flagLaTeXInline = false
		flagLaTeXBlock = false
	}
	defer reset()

	cfg := DefaultConfig()

	reset()
	assert.Equal(t, "plain", resolveFormat(cfg))

	reset()
	flagLaTeX = true
	assert.Equal(t, "latex", resolveFormat(cfg))

	reset()
	flagLaTeXBlock = true
	flagLaTeX = true
	assert.Equal(t, "latex-block", resolveFormat(cfg))

	reset()
	flagFormat = "json"
	assert.Equal(t, "json", resolveFormat(cfg))

	reset()
	cfg.Format = "pretty"
	assert.Equal(t, "pretty", resolveFormat(cfg))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logging.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, logging.LevelInfo, parseLogLevel("info"))
	assert.Equal(t, logging.LevelWarn, parseLogLevel("warn"))
	assert.Equal(t, logging.LevelError, parseLogLevel("error"))
	assert.Equal(t, logging.LevelInfo, parseLogLevel(""))
}
