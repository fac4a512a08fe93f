// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/symshell/pkg/logging"
	"github.com/AleutianAI/symshell/pkg/session"
	"github.com/AleutianAI/symshell/pkg/ux"
)

func captureOutput(f func()) (stdout, stderr string) {
	oldOut, oldErr := os.Stdout, os.Stderr
	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	f()

	wOut.Close()
	wErr.Close()
	os.Stdout = oldOut
	os.Stderr = oldErr

	var bufOut, bufErr bytes.Buffer
	io.Copy(&bufOut, rOut)
	io.Copy(&bufErr, rErr)
	return bufOut.String(), bufErr.String()
}

func testLogger() *logging.Logger {
	return logging.New(logging.Config{Quiet: true})
}

func init() {
	ux.InitColor(ux.ColorNever)
}

func TestHandleLine_Quit(t *testing.T) {
	sess := session.New()
	base := session.DefaultOptions()
	for _, line := range []string{":q", ":quit", ":x"} {
		quit := handleLine(line, &base, DefaultConfig(), sess, testLogger())
		assert.True(t, quit, "line %q", line)
	}
}

func TestHandleLine_Evaluate(t *testing.T) {
	sess := session.New()
	base := session.DefaultOptions()

	stdout, stderr := captureOutput(func() {
		handleLine("d(x^3 + 2*x, x)", &base, DefaultConfig(), sess, testLogger())
	})
	assert.Equal(t, "3*x**2 + 2\n", stdout)
	assert.Contains(t, stderr, "see: https://www.wolframalpha.com/input?i=")
}

func TestHandleLine_DiagnosticToStderr(t *testing.T) {
	sess := session.New()
	base := session.DefaultOptions()

	stdout, stderr := captureOutput(func() {
		handleLine("gcd(8)", &base, DefaultConfig(), sess, testLogger())
	})
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "E: gcd takes 2 arguments (got 1)")
	assert.Contains(t, stderr, "hint: gcd syntax")
}

func TestHandleLine_InlineOptions(t *testing.T) {
	sess := session.New()
	base := session.DefaultOptions()

	stdout, _ := captureOutput(func() {
		handleLine("--latex d(x^2, x)", &base, DefaultConfig(), sess, testLogger())
	})
	assert.Equal(t, "2 x\n", stdout)
	// One-line override leaves the session defaults alone.
	assert.Equal(t, "plain", base.Format)

	_, stderr := captureOutput(func() {
		handleLine("--format json", &base, DefaultConfig(), sess, testLogger())
	})
	assert.Contains(t, stderr, "options updated")
	assert.Equal(t, "json", base.Format)
}

func TestHandleLine_UnknownCommand(t *testing.T) {
	sess := session.New()
	base := session.DefaultOptions()

	stdout, stderr := captureOutput(func() {
		handleLine(":frobnicate", &base, DefaultConfig(), sess, testLogger())
	})
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "unknown command")
}

func TestHandleLine_HelpAndVersion(t *testing.T) {
	sess := session.New()
	base := session.DefaultOptions()

	_, stderr := captureOutput(func() {
		handleLine(":help", &base, DefaultConfig(), sess, testLogger())
	})
	assert.Contains(t, stderr, "sym v")
	assert.Contains(t, stderr, "repl commands:")

	_, stderr = captureOutput(func() {
		handleLine(":v", &base, DefaultConfig(), sess, testLogger())
	})
	assert.Contains(t, stderr, "sym v")
}

func TestHandleLine_TutorialFlow(t *testing.T) {
	sess := session.New()
	base := session.DefaultOptions()
	cfg := DefaultConfig()
	logger := testLogger()

	_, stderr := captureOutput(func() {
		handleLine(":tutorial", &base, cfg, sess, logger)
	})
	assert.Contains(t, stderr, "step 1/6")
	assert.Equal(t, session.StateTutorial, sess.State())

	_, stderr = captureOutput(func() {
		handleLine(":next", &base, cfg, sess, logger)
	})
	assert.Contains(t, stderr, "step 2/6")

	// A blank line also advances while the tutorial is active.
	_, stderr = captureOutput(func() {
		handleLine("", &base, cfg, sess, logger)
	})
	assert.Contains(t, stderr, "step 3/6")

	_, stderr = captureOutput(func() {
		handleLine(":done", &base, cfg, sess, logger)
	})
	assert.Contains(t, stderr, "tutorial ended")
	assert.Equal(t, session.StateIdle, sess.State())
}

func TestHandleLine_SessionStateAcrossLines(t *testing.T) {
	sess := session.New()
	base := session.DefaultOptions()
	cfg := DefaultConfig()
	logger := testLogger()

	stdout, _ := captureOutput(func() {
		handleLine("a = 2 + 3", &base, cfg, sess, logger)
	})
	assert.Equal(t, "5\n", stdout)

	stdout, _ = captureOutput(func() {
		handleLine("ans * a", &base, cfg, sess, logger)
	})
	assert.Equal(t, "25\n", stdout)
}

func TestPrintUpdateStatus_StubbedFetch(t *testing.T) {
	oldVersion := version
	oldFetch := fetchLatest
	defer func() {
		version = oldVersion
		fetchLatest = oldFetch
	}()

	version = "1.2.3"
	fetchLatest = func(ctx context.Context) (string, error) {
		return "1.3.0", nil
	}

	_, stderr := captureOutput(func() {
		printUpdateStatus()
	})
	require.True(t, strings.Contains(stderr, "update available"), "stderr = %q", stderr)
	assert.Contains(t, stderr, updateCmd)
}

func TestStartupStatus_DevBuildSkipsFetch(t *testing.T) {
	oldFetch := fetchLatest
	defer func() { fetchLatest = oldFetch }()
	fetchLatest = func(ctx context.Context) (string, error) {
		t.Fatal("dev build must not hit the network")
		return "", nil
	}

	assert.Equal(t, []string{"[dev build]"}, startupStatus())
}
