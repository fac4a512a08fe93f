// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Wrappers(t *testing.T) {
	cases := map[string]string{
		`$x + 1$`:           "x + 1",
		`$$x^2$$`:           "x^2",
		`\left(x\right)`:    "(x)",
		"x − 1":        "x - 1",
		`2 \cdot x`:         "2 * x",
	}
	for src, want := range cases {
		assert.Equal(t, want, Normalize(src, false), "input %q", src)
	}
}

func TestNormalize_TypesetCommands(t *testing.T) {
	cases := map[string]string{
		`\frac{1}{2}`:            "((1)/(2))",
		`\frac{x+1}{x-1}`:        "((x+1)/(x-1))",
		`\frac{\frac{1}{2}}{3}`:  "((((1)/(2)))/(3))",
		`\sqrt{2}`:               "sqrt(2)",
		`\sin(x) + \cos(x)`:      "sin(x) + cos(x)",
		`x^{2}`:                  "x^(2)",
		`ln(x)`:                  "log(x)",
		`\ln(x)`:                 "log(x)",
	}
	for src, want := range cases {
		assert.Equal(t, want, Normalize(src, false), "input %q", src)
	}
}

func TestNormalize_ODELowering(t *testing.T) {
	cases := map[string]string{
		"dy/dx = y":               "Eq(y(x), d(y(x), x))",
		"d y / d x = y":           "Eq(y(x), d(y(x), x))",
		"y' = y":                  "Eq(y(x), d(y(x), x))",
		"y'' + y = 0":             "Eq(d(d(y(x), x), x) + y(x), 0)",
		"y' + 2*y = 0":            "Eq(d(y(x), x) + 2*y(x), 0)",
		"d(sin(x))/dx":            "d(sin(x), x)",
		"df(t)/dt":                "d(f(t), t)",
		`\frac{dy}{dx} = y`:       "Eq(y(x), d(y(x), x))",
		"dz/dt = -z":              "Eq(-z(t), d(z(t), t))",
	}
	for src, want := range cases {
		assert.Equal(t, want, Normalize(src, false), "input %q", src)
	}
}

func TestNormalize_FunctionExponents(t *testing.T) {
	assert.Equal(t, "(sin(x))^2", Normalize("sin^2(x)", false))
	assert.Equal(t, "(cos(x))^3 + 1", Normalize("cos^3(x) + 1", false))
	assert.Equal(t, "(sin(x))^2", Normalize("sin**2(x)", false))
	// Unparenthesized shorthand stays put; ambiguity is surfaced, not guessed.
	assert.Equal(t, "sin x^2", Normalize("sin x^2", true))
}

func TestNormalize_ImplicitMultiplication(t *testing.T) {
	cases := map[string]string{
		"2x":       "2*x",
		"2(x+1)":   "2*(x+1)",
		"(x+1)(x-1)": "(x+1)*(x-1)",
		"x y":      "x*y",
		"2sin(x)":  "2*sin(x)",
	}
	for src, want := range cases {
		assert.Equal(t, want, Normalize(src, true), "input %q", src)
	}
	// Strict mode leaves shorthand untouched.
	assert.Equal(t, "2x", Normalize("2x", false))
}

func TestNormalize_FunctionGluing(t *testing.T) {
	assert.Equal(t, "sin(x)", Normalize("sinx", true))

	notes := RelaxedRewrites("sinx + cosy")
	require.Len(t, notes, 2)
	assert.Equal(t, Rewrite{From: "sinx", To: "sin(x)"}, notes[0])
	assert.Equal(t, Rewrite{From: "cosy", To: "cos(y)"}, notes[1])
}

// TestNormalize_Idempotent verifies the pipeline invariant: renormalizing
// canonical text changes nothing.
func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"dy/dx = y",
		"y'' + y = 0",
		`\frac{1}{2} + \sqrt{2}`,
		"sin^2(x)",
		"2x + 3(x+1)",
		"d(x**2, x)",
		"solve(x^2 - 4, x)",
		"gcd(8, 12)",
		"Eq(y(x), d(y(x), x))",
	}
	for _, relaxed := range []bool{false, true} {
		for _, src := range inputs {
			once := Normalize(src, relaxed)
			twice := Normalize(once, relaxed)
			assert.Equal(t, once, twice, "input %q relaxed=%v", src, relaxed)
		}
	}
}

func TestNormalize_PlainTextUntouched(t *testing.T) {
	for _, src := range []string{
		"1/3 + 1/6",
		"d(x**3 + 2*x, x)",
		"int(sin(x), x)",
		"N(pi, 10)",
		"factorial(5)",
	} {
		assert.Equal(t, src, Normalize(src, false), "input %q", src)
		assert.Equal(t, src, Normalize(src, true), "input %q relaxed", src)
	}
}
