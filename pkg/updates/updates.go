// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package updates checks the released version against the running one.
// The network lookup is injected so the comparison and status rendering
// stay pure and testable; a failed lookup degrades to "unavailable", it
// never blocks or fails the session.
package updates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ReleaseURL is the GitHub "latest release" endpoint for this project.
const ReleaseURL = "https://api.github.com/repos/AleutianAI/symshell/releases/latest"

const fetchTimeout = 2 * time.Second

// Fetcher returns the latest released version string, or an error when
// the lookup cannot be completed.
type Fetcher func(ctx context.Context) (string, error)

// semverishPattern accepts MAJOR.MINOR.PATCH with an optional -dev.N
// pre-release marker.
var semverishPattern = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)(?:-dev\.(\d+))?$`)

// LatestReleaseVersion fetches the latest release tag from the GitHub API.
func LatestReleaseVersion(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ReleaseURL, nil)
	if err != nil {
		return "", fmt.Errorf("building release request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching latest release: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching latest release: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading release response: %w", err)
	}
	var payload struct {
		TagName string `json:"tag_name"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decoding release response: %w", err)
	}
	tag := strings.TrimPrefix(strings.TrimSpace(payload.TagName), "v")
	if tag == "" {
		return "", fmt.Errorf("release response carried no tag")
	}
	return tag, nil
}

// Compare orders two semverish version strings. It returns -1 when
// current is older than latest, 0 when equal, +1 when newer. The second
// return is false when either string does not match the accepted shape.
//
// A release without a -dev marker is newer than the same release with
// one.
func Compare(current, latest string) (int, bool) {
	cm := semverishPattern.FindStringSubmatch(current)
	lm := semverishPattern.FindStringSubmatch(latest)
	if cm == nil || lm == nil {
		return 0, false
	}

	for i := 1; i <= 3; i++ {
		c, _ := strconv.Atoi(cm[i])
		l, _ := strconv.Atoi(lm[i])
		if c < l {
			return -1, true
		}
		if c > l {
			return 1, true
		}
	}

	switch {
	case cm[4] == "" && lm[4] == "":
		return 0, true
	case cm[4] == "":
		return 1, true
	case lm[4] == "":
		return -1, true
	}
	c, _ := strconv.Atoi(cm[4])
	l, _ := strconv.Atoi(lm[4])
	switch {
	case c < l:
		return -1, true
	case c > l:
		return 1, true
	}
	return 0, true
}

// StatusLines renders the full ":update" report. latest is empty when
// the lookup failed.
func StatusLines(version, latest, updateCmd string) []string {
	if version == "dev" {
		return []string{
			"current version: dev (local checkout)",
			"latest version: unknown from local checkout",
			"install latest local changes with: go install ./cmd/sym",
		}
	}

	lines := []string{"current version: " + version}
	if latest == "" {
		return append(lines,
			"latest version: unavailable (offline or release host unreachable)",
			"hint: retry :check when online")
	}

	rel, ok := Compare(version, latest)
	switch {
	case (ok && rel == 0) || latest == version:
		lines = append(lines,
			"latest version: "+latest+" (up to date)",
			"no update needed")
	case ok && rel < 0:
		lines = append(lines,
			"latest version: "+latest+" (update available)",
			"update with: "+updateCmd)
	case ok && rel > 0:
		lines = append(lines,
			"latest version: "+latest+" (you are on a newer local/pre-release build)",
			"no update needed")
	default:
		lines = append(lines,
			"latest version: "+latest+" (version comparison unavailable)",
			"update with: "+updateCmd)
	}
	return lines
}

// StartupLines renders the short banner shown when an interactive
// session begins.
func StartupLines(version, latest, updateCmd string) []string {
	if version == "dev" {
		return []string{"[dev build]"}
	}
	if latest == "" {
		return []string{"[latest unavailable]"}
	}

	rel, ok := Compare(version, latest)
	switch {
	case (ok && rel == 0) || latest == version:
		return []string{"[latest]"}
	case ok && rel < 0:
		return []string{"[v" + latest + " available]", updateCmd}
	case ok && rel > 0:
		return []string{"[ahead of v" + latest + "]"}
	}
	return []string{"[latest unverified]"}
}
