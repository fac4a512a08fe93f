// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package calc

import (
	"math/big"
	"regexp"
	"strings"

	"github.com/AleutianAI/symshell/pkg/diagnostics"
	"github.com/AleutianAI/symshell/pkg/engine"
	"github.com/AleutianAI/symshell/pkg/normalize"
	"github.com/AleutianAI/symshell/pkg/session"
)

// # Description
//
// The "ode" input alias: `ode dy/dx = y, y(0)=1` is an equation plus
// optional comma-separated initial conditions, lowered onto the engine's
// dsolve with the conditions attached.

var icPattern = regexp.MustCompile(`^([a-zA-Z])(')?\((-?\d+(?:/\d+)?)\)\s*=\s*(-?\d+(?:/\d+)?)$`)

func evaluateODE(raw string, opts Options, sess *session.Session) (Result, *Failure) {
	body := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "ode "))
	if body == "" {
		return Result{}, failf(diagnostics.KindParse, "ode needs an equation, for example: ode dy/dx = y")
	}

	eqText, ics, fail := splitInitialConditions(body)
	if fail != nil {
		return Result{}, fail
	}

	normalized := normalize.Normalize(eqText, !opts.Strict)
	ns := engine.NewNamespace(sess.Bindings())
	parsed, err := engine.Parse(normalized, ns)
	if err != nil {
		return Result{}, wrap(diagnostics.KindParse, err)
	}
	lim := limitsFrom(opts.Budget)
	equation, err := engine.Eval(parsed, lim)
	if err != nil {
		return Result{}, wrap(diagnostics.KindEvaluation, err)
	}

	dep, iv, fail := odeUnknown(equation)
	if fail != nil {
		return Result{}, fail
	}
	solution, err := engine.DSolve(equation, dep, iv, ics)
	if err != nil {
		return Result{}, wrap(diagnostics.KindEvaluation, err)
	}

	res, rfail := renderResult(solution, raw, normalized, opts)
	if rfail != nil {
		return Result{}, rfail
	}
	// Solutions print as `y(x) = ...` rather than the Eq(...) call form.
	if eq, ok := solution.(engine.Eq); ok && (opts.Format == "" || opts.Format == "plain") {
		res.Output = engine.Render(eq.Lhs, engine.FormatPlain) + " = " + engine.Render(eq.Rhs, engine.FormatPlain)
	}
	sess.SetAns(solution)
	return res, nil
}

// splitInitialConditions separates trailing `y(0)=1` style conditions from
// the equation text. Only depth-zero commas separate conditions.
func splitInitialConditions(body string) (string, []engine.InitialCondition, *Failure) {
	parts := splitTopLevel(body, ',')
	eqText := strings.TrimSpace(parts[0])
	var ics []engine.InitialCondition
	for _, part := range parts[1:] {
		ic, fail := parseInitialCondition(strings.TrimSpace(part))
		if fail != nil {
			return "", nil, fail
		}
		ics = append(ics, ic)
	}
	return eqText, ics, nil
}

func parseInitialCondition(text string) (engine.InitialCondition, *Failure) {
	m := icPattern.FindStringSubmatch(strings.ReplaceAll(text, " ", ""))
	if m == nil {
		return engine.InitialCondition{}, failf(diagnostics.KindParse,
			"initial condition must look like y(0)=1 or y'(0)=0 (got %q)", text)
	}
	order := 0
	if m[2] == "'" {
		order = 1
	}
	at, ok := new(big.Rat).SetString(m[3])
	if !ok {
		return engine.InitialCondition{}, failf(diagnostics.KindParse, "bad initial condition point %q", m[3])
	}
	value, ok := new(big.Rat).SetString(m[4])
	if !ok {
		return engine.InitialCondition{}, failf(diagnostics.KindParse, "bad initial condition value %q", m[4])
	}
	return engine.InitialCondition{Order: order, At: at, Value: value}, nil
}

func splitTopLevel(text string, sep rune) []string {
	var parts []string
	depth := 0
	start := 0
	for i, c := range text {
		switch c {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, text[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, text[start:])
}

// odeUnknown finds the single undefined function application in the
// equation, which names the dependent and independent variables.
func odeUnknown(equation engine.Expr) (string, string, *Failure) {
	undefs := engine.AppliedUndefs(equation)
	if len(undefs) != 1 {
		return "", "", failf(diagnostics.KindEvaluation,
			"cannot determine the unknown function; write the equation in terms of one function like y(x)")
	}
	fn := undefs[0]
	if len(fn.Args) != 1 {
		return "", "", failf(diagnostics.KindEvaluation, "cannot determine the independent variable")
	}
	s, ok := fn.Args[0].(engine.Sym)
	if !ok {
		return "", "", failf(diagnostics.KindEvaluation, "cannot determine the independent variable")
	}
	return fn.Fn, s.Name, nil
}
