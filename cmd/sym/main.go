// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command sym is a terminal symbolic calculator. With arguments it
// evaluates one expression and exits; without arguments it starts an
// interactive session.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/symshell/pkg/calc"
	"github.com/AleutianAI/symshell/pkg/diagnostics"
	"github.com/AleutianAI/symshell/pkg/logging"
	"github.com/AleutianAI/symshell/pkg/session"
	"github.com/AleutianAI/symshell/pkg/ux"
)

// version is stamped by the release build.
var version = "dev"

var (
	flagFormat       string
	flagLaTeX        bool
	flagLaTeXInline  bool
	flagLaTeXBlock   bool
	flagStrict       bool
	flagNoSimplify   bool
	flagExplainParse bool
	flagAlwaysRef    bool
	flagColor        string
	flagVerbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "sym [expression]",
	Short: "A symbolic calculator for the terminal",
	Long: `sym evaluates symbolic math: derivatives, integrals, equation
solving, ODEs, exact rationals and matrices. Run with an expression for
a single answer, or with no arguments for an interactive session.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       version,
	RunE:          runRoot,
}

func init() {
	fl := rootCmd.Flags()
	fl.StringVar(&flagFormat, "format", "", "output format: plain|pretty|latex|latex-inline|latex-block|json")
	fl.BoolVar(&flagLaTeX, "latex", false, "shorthand for --format latex")
	fl.BoolVar(&flagLaTeXInline, "latex-inline", false, "shorthand for --format latex-inline")
	fl.BoolVar(&flagLaTeXBlock, "latex-block", false, "shorthand for --format latex-block")
	fl.BoolVar(&flagStrict, "strict", false, "disable relaxed input rewrites")
	fl.BoolVar(&flagNoSimplify, "no-simplify", false, "keep the result in its input shape")
	fl.BoolVar(&flagExplainParse, "explain-parse", false, "show how the input was read")
	fl.BoolVar(&flagAlwaysRef, "wa", false, "always print a reference link")
	fl.StringVar(&flagColor, "color", "auto", "color mode: auto|always|never")
	fl.BoolVar(&flagVerbose, "verbose", false, "log to stderr as well as the log file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errEvaluation) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	ux.InitColor(ux.ParseColorMode(resolveColor(cfg)))

	logger := logging.New(logging.Config{
		Level:   parseLogLevel(cfg.LogLevel),
		LogDir:  cfg.LogDir,
		Service: "sym",
		Quiet:   !flagVerbose,
	})
	defer logger.Close()

	base := session.Options{
		Format:       resolveFormat(cfg),
		Strict:       flagStrict || cfg.Strict,
		NoSimplify:   flagNoSimplify,
		ExplainParse: flagExplainParse,
		AlwaysRef:    flagAlwaysRef,
	}

	if len(args) > 0 {
		return runOnce(strings.Join(args, " "), base, cfg, logger)
	}
	return runREPL(base, cfg, logger)
}

// errEvaluation signals a failed one-shot evaluation after its
// diagnostic has already been printed.
var errEvaluation = fmt.Errorf("evaluation failed")

func runOnce(expr string, opts session.Options, cfg Config, logger *logging.Logger) error {
	sess := session.New()
	logger.Info("one-shot evaluation", "session_id", sess.ID, "input_len", len(expr))

	res, fail := calc.Evaluate(expr, calcOptions(opts, cfg), sess)
	if fail != nil {
		printDiagnostic(fail.Diagnostic(expr), expr)
		logger.Warn("evaluation failed", "session_id", sess.ID, "kind", int(fail.Kind))
		return errEvaluation
	}
	printResult(res, expr, opts)
	return nil
}

// calcOptions maps the session-level settings onto one pipeline call.
func calcOptions(opts session.Options, cfg Config) calc.Options {
	return calc.Options{
		Strict:     opts.Strict,
		NoSimplify: opts.NoSimplify,
		Format:     opts.Format,
		Budget:     cfg.Budget,
	}
}

// printResult writes the answer to stdout and any secondary lines to
// stderr.
func printResult(res calc.Result, raw string, opts session.Options) {
	for _, note := range res.Notes {
		ux.Note(fmt.Sprintf("note: %s -> %s", note.From, note.To))
	}
	if opts.ExplainParse {
		ux.HintLine("hint: parsed as: " + res.Normalized)
	}
	ux.Result(res.Output)
	if opts.AlwaysRef || diagnostics.IsComplexExpression(raw) {
		ux.Note("see: " + diagnostics.ReferenceURL(raw))
	}
}

// printDiagnostic writes the error line, at most one hint line, and an
// optional reference link to stderr.
func printDiagnostic(d diagnostics.Diagnostic, expr string) {
	ux.ErrorLine(d.ErrorLine())
	if d.Hint != "" {
		ux.HintLine(d.HintLine())
	}
	if !d.SuppressReference && diagnostics.IsComplexExpression(expr) {
		ux.Note("see: " + diagnostics.ReferenceURL(expr))
	}
}

func resolveColor(cfg Config) string {
	if flagColor != "" && flagColor != "auto" {
		return flagColor
	}
	if cfg.Color != "" {
		return cfg.Color
	}
	return flagColor
}

func resolveFormat(cfg Config) string {
	switch {
	case flagLaTeXBlock:
		return "latex-block"
	case flagLaTeXInline:
		return "latex-inline"
	case flagLaTeX:
		return "latex"
	case flagFormat != "":
		return flagFormat
	case cfg.Format != "":
		return cfg.Format
	}
	return "plain"
}

func parseLogLevel(s string) logging.Level {
	switch s {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}
