// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package normalize

import (
	"regexp"
	"strings"
)

// # Description
//
// Stage 5 of the pipeline: ODE shorthand lowering. Leibniz fractions,
// prime notation and typeset derivative fractions are rewritten into
// explicit d(...) calls under one fixed convention: the dependent variable
// becomes a function of the independent variable everywhere in the line.
// When the whole left side of an equation is a bare derivative, the
// equation is emitted with the derivative on the right so the solved
// function leads the rendered result.

var (
	leibnizSecond = regexp.MustCompile(`\bd\s*\^\s*2\s*([a-zA-Z])\s*/\s*d\s*([a-zA-Z])\s*\^\s*2`)
	leibnizFirst  = regexp.MustCompile(`\bd\s*([a-zA-Z])\s*/\s*d\s*([a-zA-Z])\b`)
	primeMark     = regexp.MustCompile(`([a-zA-Z])('+)`)
	texDerivFrac  = regexp.MustCompile(`\(\s*\(\s*(d\s*\^?\s*2?\s*[a-zA-Z])\s*\)\s*/\s*\(\s*(d\s*[a-zA-Z]\s*(?:\^\s*2)?)\s*\)\s*\)`)
)

func lowerODE(text string) string {
	// Typeset fractions arrive from stage 2 as ((dy)/(dx)); collapse the
	// grouping so the Leibniz patterns below see them.
	text = texDerivFrac.ReplaceAllString(text, "$1/$2")

	if out, ok := lowerExplicitDerivative(text); ok {
		return out
	}
	if out, ok := lowerLeibniz(text); ok {
		return out
	}
	if out, ok := lowerPrime(text); ok {
		return out
	}
	return text
}

// lowerLeibniz handles dy/dx forms, first and second order.
func lowerLeibniz(text string) (string, bool) {
	m := leibnizSecond.FindStringSubmatch(text)
	order := 2
	if m == nil {
		m = leibnizFirst.FindStringSubmatch(text)
		order = 1
	}
	if m == nil {
		return text, false
	}
	dep, iv := m[1], m[2]
	if dep == iv {
		return text, false
	}
	deriv := derivCall(dep, iv, order)

	lhs, rhs, hasEq := strings.Cut(text, "=")
	if !hasEq {
		out := replaceAllLeibniz(text, order, deriv)
		return applyDependent(out, dep, iv), true
	}
	lhsTrim := strings.TrimSpace(lhs)
	if leibnizOnly(lhsTrim, order) {
		// Bare-derivative left side: swap so the unknown function leads.
		rhsLow := applyDependent(strings.TrimSpace(rhs), dep, iv)
		return "Eq(" + rhsLow + ", " + deriv + ")", true
	}
	lhsLow := applyDependent(replaceAllLeibniz(lhsTrim, order, deriv), dep, iv)
	rhsLow := applyDependent(replaceAllLeibniz(strings.TrimSpace(rhs), order, deriv), dep, iv)
	return "Eq(" + lhsLow + ", " + rhsLow + ")", true
}

func leibnizOnly(lhs string, order int) bool {
	re := leibnizFirst
	if order == 2 {
		re = leibnizSecond
	}
	return strings.TrimSpace(re.ReplaceAllString(lhs, "")) == ""
}

func replaceAllLeibniz(text string, order int, deriv string) string {
	if order == 2 {
		return leibnizSecond.ReplaceAllString(text, deriv)
	}
	return leibnizFirst.ReplaceAllString(text, deriv)
}

// lowerPrime handles y' and y'' notation. The independent variable is x by
// convention, or t when the dependent variable is itself x.
func lowerPrime(text string) (string, bool) {
	m := primeMark.FindStringSubmatch(text)
	if m == nil {
		return text, false
	}
	dep := m[1]
	iv := "x"
	if dep == "x" {
		iv = "t"
	}

	rewrite := func(s string) string {
		s = primeMark.ReplaceAllStringFunc(s, func(mark string) string {
			sub := primeMark.FindStringSubmatch(mark)
			return derivCall(sub[1], iv, len(sub[2]))
		})
		return applyDependent(s, dep, iv)
	}

	lhs, rhs, hasEq := strings.Cut(text, "=")
	if !hasEq {
		return rewrite(text), true
	}
	lhsTrim := strings.TrimSpace(lhs)
	if bare := primeMark.FindStringSubmatch(lhsTrim); bare != nil && bare[0] == lhsTrim && len(bare[2]) == 1 {
		return "Eq(" + rewrite(strings.TrimSpace(rhs)) + ", " + derivCall(dep, iv, 1) + ")", true
	}
	return "Eq(" + rewrite(lhsTrim) + ", " + rewrite(strings.TrimSpace(rhs)) + ")", true
}

// lowerExplicitDerivative handles d(expr)/dvar and df(t)/dt shorthand,
// rewriting them to the two-argument derivative call.
func lowerExplicitDerivative(text string) (string, bool) {
	changed := false
	for i := 0; i < len(text); i++ {
		if text[i] != 'd' || (i > 0 && isIdentChar(text[i-1])) {
			continue
		}
		j := i + 1
		for j < len(text) && isLetterByte(text[j]) {
			j++
		}
		if j >= len(text) || text[j] != '(' {
			continue
		}
		inner, tail, ok := readParenGroup(text[j:])
		if !ok {
			continue
		}
		rest := strings.TrimLeft(tail, " ")
		if !strings.HasPrefix(rest, "/d") || len(rest) < 3 || !isLetterByte(rest[2]) {
			continue
		}
		if len(rest) > 3 && isIdentChar(rest[3]) {
			continue
		}
		variable := string(rest[2])
		var call string
		if j > i+1 {
			// df(t)/dt keeps the function application intact.
			call = "d(" + text[i+1:j] + "(" + inner + "), " + variable + ")"
		} else {
			call = "d(" + inner + ", " + variable + ")"
		}
		text = text[:i] + call + rest[3:]
		changed = true
		i += len(call) - 1
	}
	if !changed {
		return text, false
	}
	return text, true
}

func derivCall(dep, iv string, order int) string {
	inner := dep + "(" + iv + ")"
	for k := 0; k < order; k++ {
		inner = "d(" + inner + ", " + iv + ")"
	}
	return inner
}

// applyDependent replaces bare occurrences of the dependent variable with
// its function-application form, skipping occurrences already applied.
func applyDependent(text, dep, iv string) string {
	var b strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		if string(c) != dep ||
			(i > 0 && isIdentChar(text[i-1])) ||
			(i+1 < len(text) && isIdentChar(text[i+1])) ||
			(i+1 < len(text) && text[i+1] == '(') {
			b.WriteByte(c)
			continue
		}
		b.WriteString(dep + "(" + iv + ")")
	}
	return b.String()
}

func isLetterByte(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isIdentChar(c byte) bool  { return isLetterByte(c) || (c >= '0' && c <= '9') || c == '_' }
