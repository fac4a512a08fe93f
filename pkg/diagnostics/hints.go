// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package diagnostics

import (
	"regexp"
	"strings"
)

// # Description
//
// The hint table. Each entry maps a recognizable failure message, plus
// whatever the input line looked like, to a one-line suggestion. Ordering
// matters: the first match wins.

var (
	spacePattern   = regexp.MustCompile(`\s+`)
	leibnizPattern = regexp.MustCompile(`\bd[A-Za-z0-9_]+/d[A-Za-z0-9_]+\b`)
)

// HintFor returns the hint for a failure message, or "" when no entry in
// the table applies.
func HintFor(message, expr string) string {
	text := strings.ToLower(message)
	compact := strings.ToLower(spacePattern.ReplaceAllString(expr, ""))

	if hint := arityHint(text, compact); hint != "" {
		return hint
	}

	switch {
	case strings.Contains(text, "unexpected end of input"):
		if strings.Contains(expr, "/d") || strings.HasPrefix(strings.TrimSpace(expr), "d(") {
			return "derivative syntax: d(expr, var) or d(sin(x))/dx or df(t)/dt"
		}
		return "check missing closing ')' or unmatched quote"

	case strings.Contains(text, "invalid syntax"):
		return syntaxHint(expr, compact)

	case strings.Contains(text, "cannot assign reserved name: f"):
		return "'f' is reserved for function notation in ODEs; choose another variable name (e.g. ff)"

	case strings.Contains(text, "cannot assign reserved name"):
		return "that name is reserved; choose a different variable name"

	case strings.Contains(text, "is not defined"):
		if strings.Contains(expr, "/d") || strings.HasPrefix(strings.TrimSpace(expr), "d") {
			return "derivative syntax: d(expr, var) or d(sin(x))/dx or df(t)/dt"
		}
		return "use one of: x y z t pi e f, or assign your own name first"

	case strings.Contains(text, "ambiguous variable"):
		return "pass the variable explicitly, for example d(expr, x) or int(expr, x)"

	case strings.Contains(text, "requires a variable"):
		return "pass the variable explicitly, for example d(expr, x) or int(expr, x)"

	case strings.Contains(text, "ambiguous function shorthand"):
		return "write sin(x^2) or (sin(x))^2; bare 'sin x^2' is ambiguous"

	case strings.Contains(text, "dsolve") && strings.Contains(text, "equation"):
		return "dsolve expects an equation: use dsolve(Eq(...), y(x))"

	case strings.Contains(text, "blocked token"):
		return "remove blocked patterns like '__', ';', or newlines"

	case strings.Contains(text, "integer power too large to evaluate exactly"):
		return "power too large to expand exactly; simplify to cancel first (for example 10^N + 1 - 10^N), or use a smaller exponent"

	case strings.Contains(text, "factorial input too large to evaluate exactly"):
		return "factorial grows very fast; use a smaller n or a symbolic form"

	case strings.Contains(text, "exponent tower"):
		return "deeply nested powers grow too fast to evaluate; flatten or reduce the tower"

	case strings.Contains(text, "empty expression"):
		return "enter a math expression, or use :examples"

	case strings.Contains(text, "no real roots"):
		return "this equation has no real solutions; only real roots are reported"
	}
	return ""
}

// arityHint covers the integer helpers whose most common failure is a
// wrong argument count or a non-integer argument.
func arityHint(text, compact string) string {
	switch {
	case strings.HasPrefix(compact, "gcd(") && strings.Contains(text, "takes 2 arguments"):
		return "gcd syntax: gcd(a, b) (for example gcd(8, 12))"
	case strings.HasPrefix(compact, "lcm(") && strings.Contains(text, "takes 2 arguments"):
		return "lcm syntax: lcm(a, b) (for example lcm(8, 12))"
	case strings.HasPrefix(compact, "isprime(") && strings.Contains(text, "is not an integer"):
		return "isprime expects an integer n (for example isprime(101))"
	case strings.HasPrefix(compact, "isprime(") && strings.Contains(text, "takes 1 argument"):
		return "isprime syntax: isprime(n)"
	case strings.HasPrefix(compact, "factorint(") && strings.Contains(text, "is not an integer"):
		return "factorint expects an integer n (for example factorint(84))"
	case strings.HasPrefix(compact, "factorint(") && strings.Contains(text, "takes 1 argument"):
		return "factorint syntax: factorint(n)"
	case strings.HasPrefix(compact, "num(") && strings.Contains(text, "takes 1 argument"):
		return "num syntax: num(expr) (for example num(3/14))"
	case strings.HasPrefix(compact, "den(") && strings.Contains(text, "takes 1 argument"):
		return "den syntax: den(expr) (for example den(3/14))"
	}
	return ""
}

// syntaxHint picks the most likely cause of a generic syntax failure from
// the shape of the input line.
func syntaxHint(expr, compact string) string {
	switch {
	case strings.HasPrefix(strings.TrimSpace(expr), "Eq(") && !eqHasTopLevelComma(expr):
		return "Eq syntax: Eq(lhs, rhs), for example Eq(d(y(x), x), y(x))"
	case strings.Contains(compact, "dsolve(") && !strings.Contains(compact, "eq("):
		return "dsolve expects an equation: use dsolve(Eq(...), y(x))"
	case strings.Contains(expr, `\frac`):
		return `LaTeX fraction syntax: \frac{numerator}{denominator}`
	case strings.Contains(compact, "d(") || leibnizPattern.MatchString(compact):
		return "derivative syntax: d(expr, var) or d(sin(x))/dx or df(t)/dt"
	case strings.Contains(compact, "matrix("):
		return "matrix syntax: Matrix([[1,2],[3,4]])"
	}
	return "check commas and brackets; try :examples for working patterns"
}

// eqHasTopLevelComma reports whether an Eq(...) call separates its two
// halves with a depth-zero comma.
func eqHasTopLevelComma(expr string) bool {
	stripped := strings.TrimSpace(expr)
	if !strings.HasPrefix(stripped, "Eq(") {
		return true
	}
	inner := strings.TrimPrefix(stripped, "Eq(")
	inner = strings.TrimSuffix(inner, ")")
	depth := 0
	for _, c := range inner {
		switch c {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				return true
			}
		}
	}
	return false
}
