// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package calc is the evaluator adapter: the pipeline between one raw
// input line and the engine. Guard, normalize, parse, infer missing
// variables, growth pre-check, evaluate, conditional simplify, render.
// Session state is only updated after the whole pipeline succeeds.
package calc

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/AleutianAI/symshell/pkg/diagnostics"
	"github.com/AleutianAI/symshell/pkg/engine"
	"github.com/AleutianAI/symshell/pkg/guard"
	"github.com/AleutianAI/symshell/pkg/normalize"
	"github.com/AleutianAI/symshell/pkg/session"
)

// Options carries the per-call configuration for one evaluation.
type Options struct {
	// Strict disables the relaxed shorthand stages.
	Strict bool
	// NoSimplify keeps the evaluated expression in its input shape.
	NoSimplify bool
	// Format selects the output rendering: plain, pretty, latex,
	// latex-inline, latex-block, json.
	Format string
	// Var names the variable of operation explicitly; empty means infer.
	Var string
	// Budget bounds symbolic growth.
	Budget guard.GrowthBudget
}

// DefaultOptions returns relaxed parsing, simplification on, plain output,
// stock growth budget.
func DefaultOptions() Options {
	return Options{Format: "plain", Budget: guard.DefaultGrowthBudget()}
}

// Result is a successful evaluation.
type Result struct {
	// Output is the rendered result in the requested format.
	Output string
	// Plain is the canonical plain rendering, used for hints.
	Plain string
	// Normalized is the canonical surface text fed to the parser.
	Normalized string
	// Notes are the relaxed-mode rewrites applied to the input.
	Notes []normalize.Rewrite
	// Bound is the assignment target when the line was an assignment.
	Bound string
}

var assignPattern = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*=([^=].*)$`)

// Evaluate runs one raw input line through the pipeline. On success the
// session's ans (and binding, for assignment lines) is updated; on
// failure the session is left untouched.
func Evaluate(raw string, opts Options, sess *session.Session) (Result, *Failure) {
	if err := guard.CheckErr(raw); err != nil {
		return Result{}, wrap(diagnostics.KindGuardrail, err)
	}

	if strings.HasPrefix(strings.TrimSpace(raw), "ode ") {
		return evaluateODE(raw, opts, sess)
	}

	if m := assignPattern.FindStringSubmatch(strings.TrimSpace(raw)); m != nil {
		return evaluateAssignment(m[1], m[2], opts, sess)
	}

	res, expr, fail := run(raw, opts, sess)
	if fail != nil {
		return Result{}, fail
	}
	sess.SetAns(expr)
	return res, nil
}

// run is the pipeline without session mutation, shared by plain lines and
// assignment right-hand sides.
func run(raw string, opts Options, sess *session.Session) (Result, engine.Expr, *Failure) {
	relaxed := !opts.Strict
	normalized := normalize.Normalize(raw, relaxed)
	var notes []normalize.Rewrite
	if relaxed {
		notes = normalize.RelaxedRewrites(raw)
		if fail := checkShorthandAmbiguity(normalized); fail != nil {
			return Result{}, nil, fail
		}
	}

	ns := engine.NewNamespace(sess.Bindings())
	parsed, err := engine.Parse(normalized, ns)
	if err != nil {
		return Result{}, nil, wrap(diagnostics.KindParse, err)
	}

	parsed, fail := fillInferredVariables(parsed, opts.Var)
	if fail != nil {
		return Result{}, nil, fail
	}

	if depth := engine.PowDepth(parsed); depth > opts.Budget.MaxPowDepth {
		return Result{}, nil, failf(diagnostics.KindGuardrail,
			"exponent tower of depth %d exceeds the limit (%d)", depth, opts.Budget.MaxPowDepth)
	}

	lim := limitsFrom(opts.Budget)
	evaluated, err := engine.Eval(parsed, lim)
	if err != nil {
		return Result{}, nil, wrap(diagnostics.KindEvaluation, err)
	}

	final := evaluated
	if shouldSimplify(evaluated, opts) {
		final = engine.Simplify(evaluated)
	}

	if err := engine.CheckGrowth(final, lim); err != nil {
		return Result{}, nil, wrap(diagnostics.KindGuardrail, err)
	}

	res, fail := renderResult(final, raw, normalized, opts)
	if fail != nil {
		return Result{}, nil, fail
	}
	res.Notes = notes
	return res, final, nil
}

func evaluateAssignment(name, rhs string, opts Options, sess *session.Session) (Result, *Failure) {
	if name == "ans" || engine.Reserved(name) {
		return Result{}, failf(diagnostics.KindEvaluation, "cannot assign reserved name: %s", name)
	}
	res, expr, fail := run(rhs, opts, sess)
	if fail != nil {
		return Result{}, fail
	}
	sess.Bind(name, expr)
	res.Bound = name
	return res, nil
}

// shouldSimplify skips simplification for list and mapping results, whose
// element order is part of the answer, and when the caller asked for the
// input shape back.
func shouldSimplify(e engine.Expr, opts Options) bool {
	if opts.NoSimplify {
		return false
	}
	switch engine.CategoryOf(e) {
	case engine.CategoryList, engine.CategoryMapping:
		return false
	}
	return true
}

// limitsFrom converts the configured budget into engine limits.
func limitsFrom(b guard.GrowthBudget) engine.Limits {
	return engine.Limits{
		MaxIntegerExponent: b.MaxIntegerExponent,
		MaxFactorialArg:    b.MaxFactorialArg,
		MaxPowDepth:        b.MaxPowDepth,
	}
}

var shorthandAmbiguity = regexp.MustCompile(`\b(sin|cos|tan|log|exp|sqrt)\s+\S`)

// checkShorthandAmbiguity rejects unparenthesized function shorthand like
// "sin x^2", which has two defensible readings. It is surfaced, never
// guessed.
func checkShorthandAmbiguity(normalized string) *Failure {
	if m := shorthandAmbiguity.FindStringSubmatch(normalized); m != nil {
		return failf(diagnostics.KindAmbiguity,
			"ambiguous function shorthand near '%s'", strings.TrimSpace(m[0]))
	}
	return nil
}

// jsonResult is the machine-readable output shape for --format json.
type jsonResult struct {
	Input  string `json:"input"`
	Parsed string `json:"parsed"`
	Result string `json:"result"`
}

func renderResult(final engine.Expr, raw, normalized string, opts Options) (Result, *Failure) {
	plain := engine.Render(final, engine.FormatPlain)
	res := Result{Plain: plain, Normalized: normalized}
	switch opts.Format {
	case "", "plain":
		res.Output = plain
	case "pretty":
		res.Output = engine.Render(final, engine.FormatPretty)
	case "latex":
		res.Output = engine.Render(final, engine.FormatLaTeX)
	case "latex-inline":
		res.Output = engine.Render(final, engine.FormatLaTeXInline)
	case "latex-block":
		res.Output = engine.Render(final, engine.FormatLaTeXBlock)
	case "json":
		payload, err := json.Marshal(jsonResult{Input: raw, Parsed: normalized, Result: plain})
		if err != nil {
			return Result{}, wrap(diagnostics.KindEvaluation, err)
		}
		res.Output = string(payload)
	default:
		return Result{}, failf(diagnostics.KindEvaluation, "unknown output format: %s", opts.Format)
	}
	return res, nil
}
