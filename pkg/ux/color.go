// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// ColorMode controls whether output is styled.
type ColorMode string

const (
	// ColorAuto styles output when stdout is a terminal and the
	// environment does not opt out.
	ColorAuto ColorMode = "auto"

	// ColorAlways styles output unconditionally.
	ColorAlways ColorMode = "always"

	// ColorNever emits plain text.
	ColorNever ColorMode = "never"
)

var (
	colorEnabled = true
	colorMu      sync.RWMutex
)

// ParseColorMode converts a string to a ColorMode, defaulting to auto.
func ParseColorMode(s string) ColorMode {
	switch strings.ToLower(s) {
	case "always", "on":
		return ColorAlways
	case "never", "off":
		return ColorNever
	default:
		return ColorAuto
	}
}

// InitColor decides the effective color setting for the process.
// NO_COLOR and TERM=dumb disable styling in auto mode, as does a
// redirected stdout.
func InitColor(mode ColorMode) {
	colorMu.Lock()
	defer colorMu.Unlock()

	switch mode {
	case ColorAlways:
		colorEnabled = true
	case ColorNever:
		colorEnabled = false
	default:
		colorEnabled = stdoutSupportsColor()
	}
}

// ColorsEnabled reports whether output styling is on.
func ColorsEnabled() bool {
	colorMu.RLock()
	defer colorMu.RUnlock()
	return colorEnabled
}

func stdoutSupportsColor() bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// IsInteractive reports whether stdin is a terminal, which gates the
// REPL banner and prompt.
func IsInteractive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
