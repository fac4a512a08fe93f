// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseEquation runs text through parse and eval so d(y(x), x) calls become
// derivative nodes, the shape DSolve consumes.
func parseEquation(t *testing.T, src string) Expr {
	t.Helper()
	parsed, err := Parse(src, NewNamespace(nil))
	require.NoError(t, err, "parse %q", src)
	eq, err := Eval(parsed, DefaultLimits())
	require.NoError(t, err, "eval %q", src)
	return eq
}

func dsolveString(t *testing.T, src string, ics []InitialCondition) string {
	t.Helper()
	sol, err := DSolve(parseEquation(t, src), "y", "x", ics)
	require.NoError(t, err, "dsolve %q", src)
	return Render(sol, FormatPlain)
}

func TestDSolve_FirstOrderGeneral(t *testing.T) {
	got := dsolveString(t, "Eq(d(y(x), x), y(x))", nil)
	assert.Equal(t, "Eq(y(x), C1*exp(x))", got)
}

func TestDSolve_FirstOrderInitialCondition(t *testing.T) {
	ics := []InitialCondition{{Order: 0, At: new(big.Rat), Value: big.NewRat(1, 1)}}
	got := dsolveString(t, "Eq(d(y(x), x), y(x))", ics)
	assert.Equal(t, "Eq(y(x), exp(x))", got)
}

func TestDSolve_FirstOrderDecay(t *testing.T) {
	got := dsolveString(t, "Eq(d(y(x), x), -2*y(x))", nil)
	assert.Equal(t, "Eq(y(x), C1*exp(-2*x))", got)
}

func TestDSolve_SecondOrderOscillator(t *testing.T) {
	got := dsolveString(t, "d(d(y(x), x), x) + y(x)", nil)
	assert.Equal(t, "Eq(y(x), C1*sin(x) + C2*cos(x))", got)
}

func TestDSolve_SecondOrderOscillatorWithICs(t *testing.T) {
	// y(0)=0, y'(0)=1 picks out sin(x).
	ics := []InitialCondition{
		{Order: 0, At: new(big.Rat), Value: new(big.Rat)},
		{Order: 1, At: new(big.Rat), Value: big.NewRat(1, 1)},
	}
	got := dsolveString(t, "d(d(y(x), x), x) + y(x)", ics)
	assert.Equal(t, "Eq(y(x), sin(x))", got)
}

func TestDSolve_SecondOrderDistinctRoots(t *testing.T) {
	// Characteristic roots 1 and 2.
	got := dsolveString(t, "d(d(y(x), x), x) - 3*d(y(x), x) + 2*y(x)", nil)
	assert.Equal(t, "Eq(y(x), C1*exp(x) + C2*exp(2*x))", got)
}

func TestDSolve_NoDerivative(t *testing.T) {
	_, err := DSolve(parseEquation(t, "Eq(y(x), 1)"), "y", "x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not contain a derivative")
}

func TestDSolve_NonConstantCoefficient(t *testing.T) {
	_, err := DSolve(parseEquation(t, "Eq(d(y(x), x), x*y(x))"), "y", "x", nil)
	require.Error(t, err)
}

func TestDSolve_InitialConditionCount(t *testing.T) {
	ics := []InitialCondition{{Order: 0, At: new(big.Rat), Value: big.NewRat(1, 1)}}
	_, err := DSolve(parseEquation(t, "d(d(y(x), x), x) + y(x)"), "y", "x", ics)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initial conditions")
}

// TestDSolve_ThroughEval verifies the dsolve operation is reachable from
// plain surface text.
func TestDSolve_ThroughEval(t *testing.T) {
	parsed, err := Parse("dsolve(Eq(d(y(x), x), y(x)), y(x))", NewNamespace(nil))
	require.NoError(t, err)
	out, err := Eval(parsed, DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, "Eq(y(x), C1*exp(x))", Render(out, FormatPlain))
}
