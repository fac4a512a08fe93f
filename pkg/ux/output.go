// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides terminal output styling for the calculator.
//
// Results go to stdout, everything else (diagnostics, hints, notes,
// banners) goes to stderr, so piping the session captures exactly the
// answers. Styling honors the color mode set via InitColor.
package ux

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Aleutian color palette - deep ocean teals and arctic waters
var (
	ColorTealBright  = lipgloss.Color("#2CD7C7") // Bright teal - highlights, results
	ColorTealPrimary = lipgloss.Color("#20B9B4") // Primary teal - main brand color
	ColorTealDeep    = lipgloss.Color("#16858E") // Deep teal - borders, accents
	ColorSlate       = lipgloss.Color("#2C4A54") // Slate - muted text

	ColorWarning = lipgloss.Color("#F4D03F") // Gold/amber for warnings
	ColorError   = lipgloss.Color("#E74C3C") // Red for errors
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title  lipgloss.Style
	Prompt lipgloss.Style
	Result lipgloss.Style
	Muted  lipgloss.Style
	Error  lipgloss.Style
	Hint   lipgloss.Style
	Box    lipgloss.Style
}{
	Title:  lipgloss.NewStyle().Bold(true).Foreground(ColorTealBright),
	Prompt: lipgloss.NewStyle().Bold(true).Foreground(ColorTealPrimary),
	Result: lipgloss.NewStyle().Foreground(ColorTealBright),
	Muted:  lipgloss.NewStyle().Foreground(ColorSlate),
	Error:  lipgloss.NewStyle().Foreground(ColorError),
	Hint:   lipgloss.NewStyle().Foreground(ColorWarning),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorTealDeep).
		Padding(0, 1),
}

// styled renders text with the style when colors are on, plain
// otherwise.
func styled(s lipgloss.Style, text string) string {
	if !ColorsEnabled() {
		return text
	}
	return s.Render(text)
}

// Prompt returns the styled input prompt.
func Prompt() string {
	return styled(Styles.Prompt, "sym> ")
}

// Result prints an evaluation result to stdout.
func Result(text string) {
	fmt.Fprintln(os.Stdout, styled(Styles.Result, text))
}

// ErrorLine prints a diagnostic error line to stderr.
func ErrorLine(text string) {
	fmt.Fprintln(os.Stderr, styled(Styles.Error, text))
}

// HintLine prints a diagnostic hint line to stderr.
func HintLine(text string) {
	fmt.Fprintln(os.Stderr, styled(Styles.Hint, text))
}

// Note prints a rewrite note or similar secondary line to stderr.
func Note(text string) {
	fmt.Fprintln(os.Stderr, styled(Styles.Muted, text))
}

// Info prints an informational line to stderr.
func Info(text string) {
	fmt.Fprintln(os.Stderr, text)
}

// Title prints a styled heading to stderr.
func Title(text string) {
	fmt.Fprintln(os.Stderr, styled(Styles.Title, text))
}

// Banner prints the session greeting to stderr.
func Banner(version string, statusLines []string) {
	Title("symshell " + version)
	Info("type an expression, :h for help, :q to quit")
	for _, line := range statusLines {
		Note(line)
	}
}

// HelpBox prints a titled block of reference text to stderr.
func HelpBox(title, content string) {
	if !ColorsEnabled() {
		fmt.Fprintf(os.Stderr, "%s\n%s\n", title, content)
		return
	}
	titleLine := Styles.Title.Render(title)
	fmt.Fprintln(os.Stderr, Styles.Box.Render(titleLine+"\n"+content))
}

// Steps prints a numbered walkthrough screen to stderr.
func Steps(text string) {
	for _, line := range strings.Split(text, "\n") {
		Info(line)
	}
}
