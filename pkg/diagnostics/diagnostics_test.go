// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package diagnostics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExplain_Markers(t *testing.T) {
	d := Explain(KindParse, errors.New("invalid syntax near \"*\""), "x * * y")
	assert.Equal(t, "E: invalid syntax near \"*\"", d.ErrorLine())
	assert.Equal(t, "hint: check commas and brackets; try :examples for working patterns", d.HintLine())
}

func TestExplain_NoHint(t *testing.T) {
	d := Explain(KindEvaluation, errors.New("matrix is singular"), "inv(Matrix([[1,2],[2,4]]))")
	assert.Equal(t, "", d.HintLine())
}

func TestHintFor_ArityTable(t *testing.T) {
	cases := []struct {
		msg, expr, want string
	}{
		{"gcd takes 2 arguments (got 1)", "gcd(8)", "gcd syntax: gcd(a, b) (for example gcd(8, 12))"},
		{"lcm takes 2 arguments (got 3)", "lcm(1, 2, 3)", "lcm syntax: lcm(a, b) (for example lcm(8, 12))"},
		{"x is not an integer", "isprime(x)", "isprime expects an integer n (for example isprime(101))"},
		{"factorint takes 1 argument (got 2)", "factorint(4, 5)", "factorint syntax: factorint(n)"},
		{"num takes 1 argument (got 0)", "num()", "num syntax: num(expr) (for example num(3/14))"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, HintFor(c.msg, c.expr), "msg %q", c.msg)
	}
}

func TestHintFor_SyntaxShapes(t *testing.T) {
	assert.Contains(t, HintFor("invalid syntax near \")\"", "Eq(x = 1)"), "Eq syntax")
	assert.Contains(t, HintFor("invalid syntax near \",\"", "dsolve(y, x)"), "dsolve expects an equation")
	assert.Contains(t, HintFor("invalid syntax near \"\\\\\"", `\frac{1}{2`), "LaTeX fraction")
	assert.Contains(t, HintFor("invalid syntax near \"/\"", "d(x^2/dx"), "derivative syntax")
	assert.Contains(t, HintFor("unexpected end of input", "(x + 1"), "missing closing ')'")
	assert.Contains(t, HintFor("unexpected end of input", "d(x**2"), "derivative syntax")
}

func TestHintFor_GuardAndGrowth(t *testing.T) {
	assert.Contains(t, HintFor("input contains a blocked token (statement separator ';')", "1; 2"), "blocked patterns")
	assert.Contains(t, HintFor("integer power too large to evaluate exactly", "2**20000"), "simplify to cancel")
	assert.Contains(t, HintFor("factorial input too large to evaluate exactly", "100001!"), "grows very fast")
	assert.Contains(t, HintFor("empty expression", ""), ":examples")
}

func TestHintFor_Ambiguity(t *testing.T) {
	assert.Contains(t, HintFor("ambiguous variable for d; pass one explicitly", "d(x*y)"), "pass the variable explicitly")
	assert.Contains(t, HintFor("ambiguous function shorthand", "sin x^2"), "sin(x^2) or (sin(x))^2")
}

func TestSuppressReference(t *testing.T) {
	suppressed := []Diagnostic{
		Explain(KindGuardrail, errors.New("input contains a blocked token"), "a; b"),
		Explain(KindEvaluation, errors.New("cannot assign reserved name: pi"), "pi = 3"),
		Explain(KindEvaluation, errors.New("integer power too large to evaluate exactly"), "2**20000"),
		Explain(KindEvaluation, errors.New("factorial input too large to evaluate exactly"), "100001!"),
	}
	for _, d := range suppressed {
		assert.True(t, d.SuppressReference, "message %q", d.Message)
	}

	open := Explain(KindEvaluation, errors.New("no closed form found"), "int(exp(x**2), x)")
	assert.False(t, open.SuppressReference)
}

func TestReferenceURL(t *testing.T) {
	assert.Equal(t,
		"https://www.wolframalpha.com/input?i=d%28x%5E2%2C+x%29",
		ReferenceURL("d(x^2, x)"))
}

func TestIsComplexExpression(t *testing.T) {
	assert.True(t, IsComplexExpression("solve(x^2 - 4, x)"))
	assert.True(t, IsComplexExpression("d(x**3, x)"))
	assert.False(t, IsComplexExpression("1 + 1"))
	// "gcd(" contains the "d(" marker, so gcd calls count as complex.
	assert.True(t, IsComplexExpression("gcd(8, 12)"))
	long := "1 + 1 + 1 + 1 + 1 + 1 + 1 + 1 + 1 + 1 + 1"
	assert.True(t, IsComplexExpression(long))
}
