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

// evalString runs the full parse/eval/simplify pipeline with default limits
// and renders the result in plain form.
func evalString(t *testing.T, src string) string {
	t.Helper()
	parsed, err := Parse(src, NewNamespace(nil))
	require.NoError(t, err, "parse %q", src)
	out, err := Eval(parsed, DefaultLimits())
	require.NoError(t, err, "eval %q", src)
	simplified := Simplify(out)
	require.NoError(t, CheckGrowth(simplified, DefaultLimits()), "growth check %q", src)
	return Render(simplified, FormatPlain)
}

func evalErrString(t *testing.T, src string) string {
	t.Helper()
	parsed, err := Parse(src, NewNamespace(nil))
	require.NoError(t, err, "parse %q", src)
	_, err = Eval(parsed, DefaultLimits())
	require.Error(t, err, "eval %q should fail", src)
	return err.Error()
}

func TestEval_Arithmetic(t *testing.T) {
	cases := map[string]string{
		"1 + 2*3":     "7",
		"1/3 + 1/6":   "1/2",
		"2**3**2":     "512",
		"(2**3)**2":   "64",
		"10/4":        "5/2",
		"-(3 - 5)":    "2",
		"2*x + 3*x":   "5*x",
		"x*x*x":       "x**3",
		"x + x - 2*x": "0",
	}
	for src, want := range cases {
		assert.Equal(t, want, evalString(t, src), "input %q", src)
	}
}

func TestEval_Derivative(t *testing.T) {
	assert.Equal(t, "3*x**2 + 2", evalString(t, "d(x**3 + 2*x, x)"))
	assert.Equal(t, "cos(x)", evalString(t, "d(sin(x), x)"))
	assert.Equal(t, "2*exp(2*x)", evalString(t, "d(exp(2*x), x)"))
}

func TestEval_Integral(t *testing.T) {
	assert.Equal(t, "x**2/2", evalString(t, "int(x, x)"))
	assert.Equal(t, "-cos(x)", evalString(t, "int(sin(x), x)"))
	assert.Equal(t, "log(x)", evalString(t, "int(1/x, x)"))
}

func TestEval_Solve(t *testing.T) {
	assert.Equal(t, "[-2, 2]", evalString(t, "solve(x**2 - 4, x)"))
	assert.Equal(t, "[3]", evalString(t, "solve(2*x - 6, x)"))
	assert.Equal(t, "[1]", evalString(t, "solve(x**2 - 2*x + 1, x)"))
	assert.Equal(t, "[-2, 2]", evalString(t, "solve(Eq(x**2, 4), x)"))
}

func TestEval_SolveArity(t *testing.T) {
	msg := evalErrString(t, "solve(x**2 - 4)")
	assert.Contains(t, msg, "solve takes an expression and a variable")
}

func TestEval_SolveNoRealRoots(t *testing.T) {
	msg := evalErrString(t, "solve(x**2 + 1, x)")
	assert.Contains(t, msg, "no real roots")
}

func TestEval_PythagoreanIdentity(t *testing.T) {
	assert.Equal(t, "1", evalString(t, "sin(x)**2 + cos(x)**2"))
}

// TestEval_NoSimplifyPreservesShape verifies that Eval alone folds numbers
// but never reorders or rewrites symbolic structure.
func TestEval_NoSimplifyPreservesShape(t *testing.T) {
	parsed, err := Parse("sin(x)**2 + cos(x)**2", NewNamespace(nil))
	require.NoError(t, err)
	out, err := Eval(parsed, DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, "sin(x)**2 + cos(x)**2", Render(out, FormatPlain))

	parsed, err = Parse("1/3 + 1/6", NewNamespace(nil))
	require.NoError(t, err)
	out, err = Eval(parsed, DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, "1/2", Render(out, FormatPlain))
}

func TestEval_IntegerFunctions(t *testing.T) {
	assert.Equal(t, "4", evalString(t, "gcd(8, 12)"))
	assert.Equal(t, "24", evalString(t, "lcm(8, 12)"))
	assert.Equal(t, "120", evalString(t, "factorial(5)"))
	assert.Equal(t, "120", evalString(t, "5!"))
	assert.Equal(t, "True", evalString(t, "isprime(13)"))
	assert.Equal(t, "False", evalString(t, "isprime(12)"))
	assert.Equal(t, "{2: 2, 3: 1}", evalString(t, "factorint(12)"))
	assert.Equal(t, "3", evalString(t, "num(3/4)"))
	assert.Equal(t, "4", evalString(t, "den(3/4)"))
}

func TestEval_GcdArity(t *testing.T) {
	msg := evalErrString(t, "gcd(8)")
	assert.Contains(t, msg, "gcd takes 2 arguments")
}

func TestEval_Numeric(t *testing.T) {
	assert.Equal(t, "3.141592654", evalString(t, "N(pi, 10)"))
	assert.Equal(t, "2.718281828459045", evalString(t, "N(E, 16)"))
	assert.Equal(t, "1.414213562", evalString(t, "N(sqrt(2), 10)"))
}

func TestEval_Matrix(t *testing.T) {
	assert.Equal(t, "-2", evalString(t, "det(Matrix([[1, 2], [3, 4]]))"))
	assert.Equal(t, "2", evalString(t, "rank(Matrix([[1, 2], [3, 4]]))"))
	assert.Equal(t, "1", evalString(t, "rank(Matrix([[1, 2], [2, 4]]))"))
	assert.Equal(t, "Matrix([[-2, 1], [3/2, -1/2]])", evalString(t, "inv(Matrix([[1, 2], [3, 4]]))"))
	assert.Equal(t, "Matrix([[1, 0], [0, 1]])", evalString(t, "eye(2)"))
	assert.Equal(t, "Matrix([[0, 0], [0, 0]])", evalString(t, "zeros(2)"))
	assert.Equal(t, "{2: 1, 3: 1}", evalString(t, "eigvals(Matrix([[2, 0], [0, 3]]))"))
	assert.Equal(t, "{-1: 1, 1: 1}", evalString(t, "eigvals(Matrix([[0, 1], [1, 0]]))"))
}

func TestEval_MatrixSingular(t *testing.T) {
	msg := evalErrString(t, "inv(Matrix([[1, 2], [2, 4]]))")
	assert.Contains(t, msg, "singular")
}

// TestEval_GrowthCancellation verifies that enormous powers cancel
// algebraically without ever being expanded.
func TestEval_GrowthCancellation(t *testing.T) {
	assert.Equal(t, "1", evalString(t, "10**10000000000 + 1 - 10**10000000000"))
}

func TestEval_GrowthHeldPower(t *testing.T) {
	parsed, err := Parse("2**20000", NewNamespace(nil))
	require.NoError(t, err)
	out, err := Eval(parsed, DefaultLimits())
	require.NoError(t, err)
	err = CheckGrowth(Simplify(out), DefaultLimits())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "integer power too large")
}

func TestEval_GrowthHeldFactorial(t *testing.T) {
	parsed, err := Parse("100001!", NewNamespace(nil))
	require.NoError(t, err)
	out, err := Eval(parsed, DefaultLimits())
	require.NoError(t, err)
	err = CheckGrowth(Simplify(out), DefaultLimits())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "factorial input too large")
}

func TestPowDepth(t *testing.T) {
	e, err := Parse("2**3**4**5**6**7", NewNamespace(nil))
	require.NoError(t, err)
	assert.Equal(t, 6, PowDepth(e))

	e, err = Parse("x + 2**3", NewNamespace(nil))
	require.NoError(t, err)
	assert.Equal(t, 2, PowDepth(e))

	e, err = Parse("x + y", NewNamespace(nil))
	require.NoError(t, err)
	assert.Equal(t, 0, PowDepth(e))
}

func TestEval_SessionBindings(t *testing.T) {
	ns := NewNamespace(map[string]Expr{"a": Integer(3)})
	parsed, err := Parse("a**2 + 1", ns)
	require.NoError(t, err)
	out, err := Eval(parsed, DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, "10", Render(Simplify(out), FormatPlain))
}

func TestReserved(t *testing.T) {
	for _, name := range []string{"pi", "E", "sin", "solve", "x", "factorial"} {
		assert.True(t, Reserved(name), "%s should be reserved", name)
	}
	assert.False(t, Reserved("a"))
	assert.False(t, Reserved("result"))
}
