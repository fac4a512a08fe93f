// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_RoundTrip(t *testing.T) {
	cases := map[string]string{
		"x + 1":        "x + 1",
		"x + + y":      "x + y",
		"2*x":          "2*x",
		"x^2":          "x**2",
		"x**2":         "x**2",
		"sin(x)":       "sin(x)",
		"[1, 2, 3]":    "[1, 2, 3]",
		"y(x)":         "y(x)",
		"Eq(x, 1)":     "Eq(x, 1)",
		"3/4":          "3/4",
		"-x":           "-x",
		"(x + 1)*2":    "2*(x + 1)",
		"pi":           "pi",
		"e":            "E",
		"1.5":          "3/2",
		"2**(x + 1)":   "2**(x + 1)",
		"d(x**2, x)":   "d(x**2, x)",
		"solve(x, x)":  "solve(x, x)",
		"f(t) + f(t)":  "f(t) + f(t)",
		"abs(-3)":      "abs(-3)",
		"sqrt(x)/2":    "sqrt(x)/2",
		"x*y*z":        "x*y*z",
		"Matrix([[1]])": "Matrix([[1]])",
	}
	for src, want := range cases {
		e, err := Parse(src, NewNamespace(nil))
		require.NoError(t, err, "parse %q", src)
		assert.Equal(t, want, Render(e, FormatPlain), "input %q", src)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"2 +":        "unexpected end of input",
		"":           "unexpected end of input",
		"(x + 1":     "unexpected end of input",
		"foo":        "name 'foo' is not defined",
		"bar(3)":     "name 'bar' is not defined",
		"x * * y":    "invalid syntax",
		"1 2":        "invalid syntax",
	}
	for src, want := range cases {
		_, err := Parse(src, NewNamespace(nil))
		require.Error(t, err, "parse %q should fail", src)
		assert.Contains(t, err.Error(), want, "input %q", src)
	}
}

// TestParse_BindingNotCallable verifies a session binding cannot be applied
// like a function, closing the door on call-through-binding tricks.
func TestParse_BindingNotCallable(t *testing.T) {
	ns := NewNamespace(map[string]Expr{"a": Integer(3)})
	_, err := Parse("a(4)", ns)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'a' is not callable")
}

func TestParse_NoAmbientNames(t *testing.T) {
	// Host-language names must not resolve through the capability table.
	for _, src := range []string{"eval(1)", "open(1)", "import", "os"} {
		_, err := Parse(src, NewNamespace(nil))
		assert.Error(t, err, "input %q must not resolve", src)
	}
}

func TestParse_BareSymbolApplication(t *testing.T) {
	e, err := Parse("y(x)", NewNamespace(nil))
	require.NoError(t, err)
	call, ok := e.(Call)
	require.True(t, ok)
	assert.Equal(t, "y", call.Fn)
	assert.Equal(t, []string{"x"}, FreeSymbols(e))
}

func TestFreeSymbols(t *testing.T) {
	cases := map[string][]string{
		"x + y":       {"x", "y"},
		"sin(t)":      {"t"},
		"pi + E":      {},
		"y(x) + x":    {"x"},
		"2 + 3":       {},
		"z*y*x":       {"x", "y", "z"},
	}
	for src, want := range cases {
		e, err := Parse(src, NewNamespace(nil))
		require.NoError(t, err, "parse %q", src)
		assert.Equal(t, want, FreeSymbols(e), "input %q", src)
	}
}
