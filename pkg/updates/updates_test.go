// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package updates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name    string
		current string
		latest  string
		want    int
		ok      bool
	}{
		{"equal", "1.2.3", "1.2.3", 0, true},
		{"patch behind", "1.2.3", "1.2.4", -1, true},
		{"minor ahead", "1.3.0", "1.2.9", 1, true},
		{"major behind", "1.9.9", "2.0.0", -1, true},
		{"dev older than release", "1.2.3-dev.1", "1.2.3", -1, true},
		{"release newer than dev", "1.2.3", "1.2.3-dev.9", 1, true},
		{"dev ordering", "1.2.3-dev.1", "1.2.3-dev.2", -1, true},
		{"equal dev", "1.2.3-dev.2", "1.2.3-dev.2", 0, true},
		{"garbage current", "dev", "1.2.3", 0, false},
		{"garbage latest", "1.2.3", "nightly", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Compare(tt.current, tt.latest)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestStatusLines(t *testing.T) {
	cmd := "go install github.com/AleutianAI/symshell/cmd/sym@latest"

	lines := StatusLines("dev", "1.2.3", cmd)
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "local checkout")

	lines = StatusLines("1.2.3", "", cmd)
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "unavailable")
	assert.Contains(t, lines[2], ":check")

	lines = StatusLines("1.2.3", "1.2.3", cmd)
	assert.Contains(t, lines[1], "up to date")
	assert.Equal(t, "no update needed", lines[2])

	lines = StatusLines("1.2.3", "1.3.0", cmd)
	assert.Contains(t, lines[1], "update available")
	assert.Equal(t, "update with: "+cmd, lines[2])

	lines = StatusLines("1.3.0-dev.1", "1.2.9", cmd)
	assert.Contains(t, lines[1], "newer local/pre-release")

	lines = StatusLines("1.2.3", "nightly", cmd)
	assert.Contains(t, lines[1], "comparison unavailable")
}

func TestStartupLines(t *testing.T) {
	cmd := "go install github.com/AleutianAI/symshell/cmd/sym@latest"

	assert.Equal(t, []string{"[dev build]"}, StartupLines("dev", "1.2.3", cmd))
	assert.Equal(t, []string{"[latest unavailable]"}, StartupLines("1.2.3", "", cmd))
	assert.Equal(t, []string{"[latest]"}, StartupLines("1.2.3", "1.2.3", cmd))
	assert.Equal(t, []string{"[v1.3.0 available]", cmd}, StartupLines("1.2.3", "1.3.0", cmd))
	assert.Equal(t, []string{"[ahead of v1.2.3]"}, StartupLines("1.3.0", "1.2.3", cmd))
	assert.Equal(t, []string{"[latest unverified]"}, StartupLines("1.2.3", "nightly", cmd))
}
