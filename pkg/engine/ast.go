// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package engine is the symbolic math collaborator behind the calculator
// pipeline. It exposes exactly the narrow contract the core needs: parsing
// into an opaque expression handle, the free-symbol set, a fixed table of
// operation handles, simplification, and rendering. Nothing outside that
// surface is reachable from user text.
//
// Expressions are immutable trees over exact rational arithmetic
// (math/big.Rat). Simplification is rule-based flatten-and-collect, not
// canonical factoring.
package engine

import (
	"math/big"
	"sort"
)

// Expr is an expression tree node. Trees are immutable: every operation
// returns a new tree and never mutates its inputs.
type Expr interface {
	isExpr()
}

// Num is an exact rational constant.
type Num struct {
	Val *big.Rat
}

// Sym is a free symbol or a named constant (pi, E, True, False).
type Sym struct {
	Name string
}

// Float is an inexact numeric value produced by N(). Digits records the
// significant digits requested so rendering stays stable.
type Float struct {
	Val    *big.Float
	Digits int
}

// Call is a function application. For names in the capability table this is
// a known function (sin, log, factorial, ...); for anything else it is an
// undefined function application such as y(x), which stays symbolic.
type Call struct {
	Fn   string
	Args []Expr
}

// Add is an n-ary sum.
type Add struct {
	Terms []Expr
}

// Mul is an n-ary product.
type Mul struct {
	Factors []Expr
}

// Pow is exponentiation. Oversized integer powers are held in this symbolic
// form rather than expanded; the growth guard inspects for survivors after
// simplification.
type Pow struct {
	Base Expr
	Exp  Expr
}

// Eq is a symbolic equation (not an assignment).
type Eq struct {
	Lhs Expr
	Rhs Expr
}

// Derivative is an unevaluated derivative of an undefined function
// application, e.g. Derivative(y(x), x) or Derivative(y(x), (x, 2)).
type Derivative struct {
	Expr  Expr
	Var   Sym
	Order int
}

// List is an ordered multi-valued result (solve roots, eigenvalues).
type List struct {
	Items []Expr
}

// Dict is a mapping-shaped result (factorint). Keys keep insertion order.
type Dict struct {
	Keys []Expr
	Vals []Expr
}

// Matrix is a dense rational/symbolic matrix.
type Matrix struct {
	Rows [][]Expr
}

func (Num) isExpr()        {}
func (Sym) isExpr()        {}
func (Float) isExpr()      {}
func (Call) isExpr()       {}
func (Add) isExpr()        {}
func (Mul) isExpr()        {}
func (Pow) isExpr()        {}
func (Eq) isExpr()         {}
func (Derivative) isExpr() {}
func (List) isExpr()       {}
func (Dict) isExpr()       {}
func (Matrix) isExpr()     {}

// Category is the surface shape of a result. The core never inspects tree
// internals; it only branches on this for formatting and simplification
// decisions.
type Category int

const (
	CategoryScalar Category = iota
	CategoryList
	CategoryMapping
	CategoryMatrix
	CategoryEquation
)

// CategoryOf reports the surface category of an expression.
func CategoryOf(e Expr) Category {
	switch e.(type) {
	case List:
		return CategoryList
	case Dict:
		return CategoryMapping
	case Matrix:
		return CategoryMatrix
	case Eq:
		return CategoryEquation
	default:
		return CategoryScalar
	}
}

// Integer builds an exact integer constant.
func Integer(n int64) Num { return Num{Val: big.NewRat(n, 1)} }

// Rational builds an exact fraction.
func Rational(p, q int64) Num { return Num{Val: big.NewRat(p, q)} }

// constantNames are symbols that are never free: they denote fixed values.
var constantNames = map[string]bool{
	"pi":    true,
	"E":     true,
	"True":  true,
	"False": true,
	"C1":    true,
	"C2":    true,
}

// FreeSymbols returns the sorted free-symbol names of an expression.
// Named constants and undefined function heads are not free symbols;
// the arguments of an undefined application are (y(x) frees {x}).
func FreeSymbols(e Expr) []string {
	set := map[string]bool{}
	collectFreeSymbols(e, set)
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func collectFreeSymbols(e Expr, set map[string]bool) {
	switch v := e.(type) {
	case Num:
	case Sym:
		if !constantNames[v.Name] {
			set[v.Name] = true
		}
	case Call:
		for _, a := range v.Args {
			collectFreeSymbols(a, set)
		}
	case Add:
		for _, t := range v.Terms {
			collectFreeSymbols(t, set)
		}
	case Mul:
		for _, f := range v.Factors {
			collectFreeSymbols(f, set)
		}
	case Pow:
		collectFreeSymbols(v.Base, set)
		collectFreeSymbols(v.Exp, set)
	case Eq:
		collectFreeSymbols(v.Lhs, set)
		collectFreeSymbols(v.Rhs, set)
	case Derivative:
		collectFreeSymbols(v.Expr, set)
		set[v.Var.Name] = true
	case List:
		for _, it := range v.Items {
			collectFreeSymbols(it, set)
		}
	case Dict:
		for i := range v.Keys {
			collectFreeSymbols(v.Keys[i], set)
			collectFreeSymbols(v.Vals[i], set)
		}
	case Matrix:
		for _, row := range v.Rows {
			for _, cell := range row {
				collectFreeSymbols(cell, set)
			}
		}
	}
}

// AppliedUndefs returns the undefined function applications in e, sorted by
// rendered form. Used by ODE solving to infer the dependent function.
func AppliedUndefs(e Expr) []Call {
	var out []Call
	seen := map[string]bool{}
	walk(e, func(n Expr) {
		if c, ok := n.(Call); ok && !knownFunctions[c.Fn] && !operationNames[c.Fn] {
			key := Render(c, FormatPlain)
			if !seen[key] {
				seen[key] = true
				out = append(out, c)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		return Render(out[i], FormatPlain) < Render(out[j], FormatPlain)
	})
	return out
}

// walk visits every node of the tree in depth-first order.
func walk(e Expr, fn func(Expr)) {
	fn(e)
	switch v := e.(type) {
	case Call:
		for _, a := range v.Args {
			walk(a, fn)
		}
	case Add:
		for _, t := range v.Terms {
			walk(t, fn)
		}
	case Mul:
		for _, f := range v.Factors {
			walk(f, fn)
		}
	case Pow:
		walk(v.Base, fn)
		walk(v.Exp, fn)
	case Eq:
		walk(v.Lhs, fn)
		walk(v.Rhs, fn)
	case Derivative:
		walk(v.Expr, fn)
	case List:
		for _, it := range v.Items {
			walk(it, fn)
		}
	case Dict:
		for i := range v.Keys {
			walk(v.Keys[i], fn)
			walk(v.Vals[i], fn)
		}
	case Matrix:
		for _, row := range v.Rows {
			for _, cell := range row {
				walk(cell, fn)
			}
		}
	}
}

// isInteger reports whether n is an exact integer.
func isInteger(n Num) bool { return n.Val.IsInt() }

// intFromNum returns the integer value of n when it is an exact integer.
func intFromNum(n Num) (*big.Int, bool) {
	if !n.Val.IsInt() {
		return nil, false
	}
	return new(big.Int).Set(n.Val.Num()), true
}

// substitute returns e with every occurrence of the symbol name replaced.
func substitute(e Expr, name string, value Expr) Expr {
	switch v := e.(type) {
	case Num:
		return v
	case Sym:
		if v.Name == name {
			return value
		}
		return v
	case Call:
		args := make([]Expr, len(v.Args))
		for i, a := range v.Args {
			args[i] = substitute(a, name, value)
		}
		return Call{Fn: v.Fn, Args: args}
	case Add:
		terms := make([]Expr, len(v.Terms))
		for i, t := range v.Terms {
			terms[i] = substitute(t, name, value)
		}
		return Add{Terms: terms}
	case Mul:
		factors := make([]Expr, len(v.Factors))
		for i, f := range v.Factors {
			factors[i] = substitute(f, name, value)
		}
		return Mul{Factors: factors}
	case Pow:
		return Pow{Base: substitute(v.Base, name, value), Exp: substitute(v.Exp, name, value)}
	case Eq:
		return Eq{Lhs: substitute(v.Lhs, name, value), Rhs: substitute(v.Rhs, name, value)}
	case Derivative:
		return Derivative{Expr: substitute(v.Expr, name, value), Var: v.Var, Order: v.Order}
	case List:
		items := make([]Expr, len(v.Items))
		for i, it := range v.Items {
			items[i] = substitute(it, name, value)
		}
		return List{Items: items}
	case Matrix:
		rows := make([][]Expr, len(v.Rows))
		for i, row := range v.Rows {
			rows[i] = make([]Expr, len(row))
			for j, cell := range row {
				rows[i][j] = substitute(cell, name, value)
			}
		}
		return Matrix{Rows: rows}
	default:
		return e
	}
}
