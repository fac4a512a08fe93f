// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
)

// Helper to capture stdout
func captureStdout(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

// Helper to capture stderr
func captureStderr(f func()) string {
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	f()

	w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

func TestResult_GoesToStdout(t *testing.T) {
	InitColor(ColorNever)

	var errOut string
	out := captureStdout(func() {
		errOut = captureStderr(func() {
			Result("3*x**2 + 2")
		})
	})

	if out != "3*x**2 + 2\n" {
		t.Errorf("stdout = %q, want result line", out)
	}
	if errOut != "" {
		t.Errorf("stderr = %q, want empty", errOut)
	}
}

func TestDiagnostics_GoToStderr(t *testing.T) {
	InitColor(ColorNever)

	var errOut string
	out := captureStdout(func() {
		errOut = captureStderr(func() {
			ErrorLine("E: name 'foo' is not defined")
			HintLine("hint: only single-letter variables are recognized")
			Note("note: sinx -> sin(x)")
		})
	})

	if out != "" {
		t.Errorf("stdout = %q, want empty", out)
	}
	for _, want := range []string{"E: name 'foo'", "hint:", "note:"} {
		if !strings.Contains(errOut, want) {
			t.Errorf("stderr missing %q in %q", want, errOut)
		}
	}
}

func TestColorNever_PlainText(t *testing.T) {
	InitColor(ColorNever)
	out := captureStdout(func() {
		Result("1/2")
	})
	if out != "1/2\n" {
		t.Errorf("expected unstyled output, got %q", out)
	}
}

func TestColorAlways_Styles(t *testing.T) {
	InitColor(ColorAlways)
	defer InitColor(ColorNever)

	if !ColorsEnabled() {
		t.Fatal("ColorsEnabled() = false after InitColor(ColorAlways)")
	}
}

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		in   string
		want ColorMode
	}{
		{"always", ColorAlways},
		{"on", ColorAlways},
		{"never", ColorNever},
		{"off", ColorNever},
		{"auto", ColorAuto},
		{"", ColorAuto},
		{"bogus", ColorAuto},
	}
	for _, tt := range tests {
		if got := ParseColorMode(tt.in); got != tt.want {
			t.Errorf("ParseColorMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitColor_NoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	InitColor(ColorAuto)
	defer InitColor(ColorNever)

	if ColorsEnabled() {
		t.Error("NO_COLOR set but colors are enabled")
	}
}

func TestInitColor_DumbTerm(t *testing.T) {
	t.Setenv("TERM", "dumb")
	InitColor(ColorAuto)
	defer InitColor(ColorNever)

	if ColorsEnabled() {
		t.Error("TERM=dumb but colors are enabled")
	}
}

func TestBanner(t *testing.T) {
	InitColor(ColorNever)
	errOut := captureStderr(func() {
		Banner("1.0.0", []string{"[latest]"})
	})
	for _, want := range []string{"symshell 1.0.0", ":h for help", "[latest]"} {
		if !strings.Contains(errOut, want) {
			t.Errorf("banner missing %q in %q", want, errOut)
		}
	}
}

func TestHelpBox_GoesToStderr(t *testing.T) {
	InitColor(ColorNever)

	var errOut string
	out := captureStdout(func() {
		errOut = captureStderr(func() {
			HelpBox("reference", "repl commands:\n  :h  show help")
		})
	})

	if out != "" {
		t.Errorf("stdout = %q, want empty", out)
	}
	for _, want := range []string{"reference", "repl commands:"} {
		if !strings.Contains(errOut, want) {
			t.Errorf("help box missing %q in %q", want, errOut)
		}
	}
}

func TestPrompt_Plain(t *testing.T) {
	InitColor(ColorNever)
	if got := Prompt(); got != "sym> " {
		t.Errorf("Prompt() = %q, want %q", got, "sym> ")
	}
}
