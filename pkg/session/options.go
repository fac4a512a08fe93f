// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package session

import (
	"fmt"
	"strings"

	"github.com/google/shlex"
	"github.com/spf13/pflag"
)

// Options are the per-line evaluation settings. A REPL line may carry a
// leading flag group that overrides them for that line only; an
// options-only line updates the session defaults.
type Options struct {
	Format       string
	Strict       bool
	NoSimplify   bool
	ExplainParse bool
	AlwaysRef    bool
}

// DefaultOptions matches the command-line defaults: relaxed parsing,
// simplification on, plain output.
func DefaultOptions() Options {
	return Options{Format: "plain"}
}

// ParseInlineOptions recognizes option prefixes on a REPL line, e.g.
// "--latex d(x^2, x)" or "sym --strict 2x". It returns the effective
// options, the remaining expression text, and whether the line carried
// options at all. Lines that are not option-shaped come back untouched.
func ParseInlineOptions(line string, base Options) (Options, string, bool, error) {
	trimmed := strings.TrimSpace(line)
	if after, ok := strings.CutPrefix(trimmed, "sym "); ok {
		trimmed = strings.TrimSpace(after)
	} else if !strings.HasPrefix(trimmed, "--") {
		// A single "-" starts an expression like "-x + 1", never a flag.
		return base, line, false, nil
	}

	tokens, err := shlex.Split(trimmed)
	if err != nil {
		return base, "", true, fmt.Errorf("invalid option input: %w", err)
	}

	opts := base
	fs := pflag.NewFlagSet("sym", pflag.ContinueOnError)
	fs.Usage = func() {}
	format := fs.String("format", opts.Format, "")
	latex := fs.Bool("latex", false, "")
	latexInline := fs.Bool("latex-inline", false, "")
	latexBlock := fs.Bool("latex-block", false, "")
	strict := fs.Bool("strict", opts.Strict, "")
	noSimplify := fs.Bool("no-simplify", opts.NoSimplify, "")
	explain := fs.Bool("explain-parse", opts.ExplainParse, "")
	wa := fs.Bool("wa", opts.AlwaysRef, "")
	if err := fs.Parse(tokens); err != nil {
		return base, "", true, fmt.Errorf("invalid option input: %w", err)
	}

	opts.Format = *format
	opts.Strict = *strict
	opts.NoSimplify = *noSimplify
	opts.ExplainParse = *explain
	opts.AlwaysRef = *wa
	switch {
	case *latexBlock:
		opts.Format = "latex-block"
	case *latexInline:
		opts.Format = "latex-inline"
	case *latex:
		opts.Format = "latex"
	}

	return opts, strings.Join(fs.Args(), " "), true, nil
}
