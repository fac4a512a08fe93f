// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"math/big"
	"sort"
)

// Simplify canonicalizes an expression: sums and products are flattened,
// like terms are collected and cancelled, numeric subexpressions are folded
// exactly, and a small set of structural identities is applied
// (sin^2+cos^2 -> 1, E^u -> exp(u), perfect-square roots).
//
// Oversized integer powers are deliberately NOT expanded; they keep their
// symbolic Pow form so that cancellable expressions cancel and the growth
// guard can inspect what survives.
func Simplify(e Expr) Expr {
	return simplifyWith(e, DefaultLimits())
}

func simplifyWith(e Expr, lim Limits) Expr {
	s := simplifier{lim: lim}
	return s.simplify(e)
}

type simplifier struct {
	lim Limits
}

func (s simplifier) simplify(e Expr) Expr {
	switch v := e.(type) {
	case Num, Sym:
		return e
	case Call:
		args := make([]Expr, len(v.Args))
		for i, a := range v.Args {
			args[i] = s.simplify(a)
		}
		return s.simplifyCall(Call{Fn: v.Fn, Args: args})
	case Add:
		return s.simplifyAdd(v)
	case Mul:
		return s.simplifyMul(v)
	case Pow:
		return s.simplifyPow(Pow{Base: s.simplify(v.Base), Exp: s.simplify(v.Exp)})
	case Eq:
		return Eq{Lhs: s.simplify(v.Lhs), Rhs: s.simplify(v.Rhs)}
	case Derivative:
		return Derivative{Expr: s.simplify(v.Expr), Var: v.Var, Order: v.Order}
	case List:
		items := make([]Expr, len(v.Items))
		for i, it := range v.Items {
			items[i] = s.simplify(it)
		}
		return List{Items: items}
	case Dict:
		return v
	case Matrix:
		rows := make([][]Expr, len(v.Rows))
		for i, row := range v.Rows {
			rows[i] = make([]Expr, len(row))
			for j, cell := range row {
				rows[i][j] = s.simplify(cell)
			}
		}
		return Matrix{Rows: rows}
	default:
		return e
	}
}

// ---------------------------------------------------------------------------
// Sums
// ---------------------------------------------------------------------------

type collectedTerm struct {
	coeff *big.Rat
	key   Expr // non-numeric part; nil for the rational constant
}

func (s simplifier) simplifyAdd(a Add) Expr {
	var flat []Expr
	for _, t := range a.Terms {
		t = s.simplify(t)
		if inner, ok := t.(Add); ok {
			flat = append(flat, inner.Terms...)
			continue
		}
		flat = append(flat, t)
	}

	constant := new(big.Rat)
	order := []string{}
	byKey := map[string]*collectedTerm{}
	for _, t := range flat {
		coeff, key := splitCoeff(t)
		if key == nil {
			constant.Add(constant, coeff)
			continue
		}
		id := renderPlain(key)
		if ct, ok := byKey[id]; ok {
			ct.coeff.Add(ct.coeff, coeff)
			continue
		}
		byKey[id] = &collectedTerm{coeff: new(big.Rat).Set(coeff), key: key}
		order = append(order, id)
	}

	s.applyPythagorean(byKey, &order, constant)

	terms := make([]Expr, 0, len(order)+1)
	for _, id := range order {
		ct := byKey[id]
		if ct == nil || ct.coeff.Sign() == 0 {
			continue
		}
		terms = append(terms, rebuildTerm(ct.coeff, ct.key))
	}
	sortAddTerms(terms)
	if constant.Sign() != 0 {
		terms = append(terms, Num{Val: constant})
	}

	switch len(terms) {
	case 0:
		return Integer(0)
	case 1:
		return terms[0]
	default:
		return Add{Terms: terms}
	}
}

// applyPythagorean folds c*sin(u)^2 + c*cos(u)^2 into the constant c.
func (s simplifier) applyPythagorean(byKey map[string]*collectedTerm, order *[]string, constant *big.Rat) {
	for _, id := range append([]string(nil), *order...) {
		ct, ok := byKey[id]
		if !ok || ct.coeff.Sign() == 0 {
			continue
		}
		inner, isSin := trigSquareArg(ct.key, "sin")
		if !isSin {
			continue
		}
		cosKey := renderPlain(Pow{Base: Call{Fn: "cos", Args: []Expr{inner}}, Exp: Integer(2)})
		partner, ok := byKey[cosKey]
		if !ok || partner.coeff.Cmp(ct.coeff) != 0 {
			continue
		}
		constant.Add(constant, ct.coeff)
		ct.coeff = new(big.Rat)
		partner.coeff = new(big.Rat)
	}
	kept := (*order)[:0]
	for _, id := range *order {
		if ct := byKey[id]; ct != nil && ct.coeff.Sign() != 0 {
			kept = append(kept, id)
		}
	}
	*order = kept
}

// trigSquareArg matches fn(u)^2 and returns u.
func trigSquareArg(e Expr, fn string) (Expr, bool) {
	p, ok := e.(Pow)
	if !ok {
		return nil, false
	}
	exp, ok := p.Exp.(Num)
	if !ok || exp.Val.Cmp(big.NewRat(2, 1)) != 0 {
		return nil, false
	}
	c, ok := p.Base.(Call)
	if !ok || c.Fn != fn || len(c.Args) != 1 {
		return nil, false
	}
	return c.Args[0], true
}

// splitCoeff separates the rational coefficient of a term from its symbolic
// part. The symbolic part is nil for a pure number.
func splitCoeff(e Expr) (*big.Rat, Expr) {
	switch v := e.(type) {
	case Num:
		return new(big.Rat).Set(v.Val), nil
	case Mul:
		coeff := big.NewRat(1, 1)
		var rest []Expr
		for _, f := range v.Factors {
			if n, ok := f.(Num); ok {
				coeff.Mul(coeff, n.Val)
				continue
			}
			rest = append(rest, f)
		}
		switch len(rest) {
		case 0:
			return coeff, nil
		case 1:
			return coeff, rest[0]
		default:
			return coeff, Mul{Factors: rest}
		}
	default:
		return big.NewRat(1, 1), e
	}
}

// rebuildTerm reattaches a collected coefficient to its symbolic part.
func rebuildTerm(coeff *big.Rat, key Expr) Expr {
	if coeff.Cmp(big.NewRat(1, 1)) == 0 {
		return key
	}
	factors := []Expr{Num{Val: new(big.Rat).Set(coeff)}}
	if m, ok := key.(Mul); ok {
		factors = append(factors, m.Factors...)
	} else {
		factors = append(factors, key)
	}
	return Mul{Factors: factors}
}

// sortAddTerms orders sum terms for deterministic rendering: symbolic terms
// first by descending polynomial degree, unevaluated derivatives after them,
// ties broken by rendered form.
func sortAddTerms(terms []Expr) {
	sort.SliceStable(terms, func(i, j int) bool {
		ri, rj := addRank(terms[i]), addRank(terms[j])
		if ri != rj {
			return ri < rj
		}
		di, dj := degreeOf(terms[i]), degreeOf(terms[j])
		if di != dj {
			return di > dj
		}
		return renderPlain(terms[i]) < renderPlain(terms[j])
	})
}

func addRank(e Expr) int {
	if _, ok := e.(Num); ok {
		return 3
	}
	hasDeriv := false
	walk(e, func(n Expr) {
		if _, ok := n.(Derivative); ok {
			hasDeriv = true
		}
	})
	if hasDeriv {
		return 2
	}
	return 1
}

// degreeOf is the total polynomial degree used for term ordering. Function
// applications count as degree one.
func degreeOf(e Expr) int {
	switch v := e.(type) {
	case Num:
		return 0
	case Sym:
		if constantNames[v.Name] {
			return 0
		}
		return 1
	case Call, Derivative:
		return 1
	case Add:
		max := 0
		for _, t := range v.Terms {
			if d := degreeOf(t); d > max {
				max = d
			}
		}
		return max
	case Mul:
		sum := 0
		for _, f := range v.Factors {
			sum += degreeOf(f)
		}
		return sum
	case Pow:
		if n, ok := v.Exp.(Num); ok && isInteger(n) && n.Val.Num().IsInt64() {
			return degreeOf(v.Base) * int(n.Val.Num().Int64())
		}
		return degreeOf(v.Base)
	default:
		return 0
	}
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

func (s simplifier) simplifyMul(m Mul) Expr {
	var flat []Expr
	coeff := big.NewRat(1, 1)
	for _, f := range m.Factors {
		f = s.simplify(f)
		switch v := f.(type) {
		case Mul:
			for _, inner := range v.Factors {
				if n, ok := inner.(Num); ok {
					coeff.Mul(coeff, n.Val)
					continue
				}
				flat = append(flat, inner)
			}
		case Num:
			coeff.Mul(coeff, v.Val)
		default:
			flat = append(flat, f)
		}
	}
	if coeff.Sign() == 0 {
		return Integer(0)
	}

	// Combine repeated bases: x * x^2 -> x^3.
	type basePower struct {
		base Expr
		exps []Expr
	}
	order := []string{}
	byBase := map[string]*basePower{}
	for _, f := range flat {
		b, exp := base(f), exponent(f)
		id := renderPlain(b)
		if bp, ok := byBase[id]; ok {
			bp.exps = append(bp.exps, exp)
			continue
		}
		byBase[id] = &basePower{base: b, exps: []Expr{exp}}
		order = append(order, id)
	}

	factors := make([]Expr, 0, len(order))
	for _, id := range order {
		bp := byBase[id]
		var expSum Expr
		if len(bp.exps) == 1 {
			expSum = bp.exps[0]
		} else {
			expSum = s.simplifyAdd(Add{Terms: bp.exps})
		}
		p := s.simplifyPow(Pow{Base: bp.base, Exp: expSum})
		if n, ok := p.(Num); ok {
			coeff.Mul(coeff, n.Val)
			continue
		}
		factors = append(factors, p)
	}
	if coeff.Sign() == 0 {
		return Integer(0)
	}
	sort.SliceStable(factors, func(i, j int) bool {
		return renderPlain(factors[i]) < renderPlain(factors[j])
	})

	one := big.NewRat(1, 1)
	switch {
	case len(factors) == 0:
		return Num{Val: coeff}
	case coeff.Cmp(one) == 0 && len(factors) == 1:
		return factors[0]
	case coeff.Cmp(one) == 0:
		return Mul{Factors: factors}
	default:
		return Mul{Factors: append([]Expr{Num{Val: coeff}}, factors...)}
	}
}

func base(e Expr) Expr {
	if p, ok := e.(Pow); ok {
		return p.Base
	}
	return e
}

func exponent(e Expr) Expr {
	if p, ok := e.(Pow); ok {
		return p.Exp
	}
	return Integer(1)
}

// ---------------------------------------------------------------------------
// Powers
// ---------------------------------------------------------------------------

func (s simplifier) simplifyPow(p Pow) Expr {
	if sym, ok := p.Base.(Sym); ok && sym.Name == "E" {
		return s.simplifyCall(Call{Fn: "exp", Args: []Expr{p.Exp}})
	}
	if exp, ok := p.Exp.(Num); ok {
		if exp.Val.Sign() == 0 {
			return Integer(1)
		}
		if exp.Val.Cmp(big.NewRat(1, 1)) == 0 {
			return p.Base
		}
		if baseNum, ok := p.Base.(Num); ok && isInteger(exp) {
			if folded, ok := s.foldNumPow(baseNum, exp); ok {
				return folded
			}
			return p
		}
		// (b^a)^c -> b^(a*c) for numeric a, c.
		if inner, ok := p.Base.(Pow); ok {
			if innerExp, ok := inner.Exp.(Num); ok {
				combined := new(big.Rat).Mul(innerExp.Val, exp.Val)
				return s.simplifyPow(Pow{Base: inner.Base, Exp: Num{Val: combined}})
			}
		}
	}
	return p
}

// foldNumPow computes base^exp exactly when the exponent is a small enough
// integer. Larger powers stay symbolic on purpose.
func (s simplifier) foldNumPow(baseNum, exp Num) (Expr, bool) {
	e, ok := intFromNum(exp)
	if !ok {
		return nil, false
	}
	abs := new(big.Int).Abs(e)
	if !abs.IsInt64() || abs.Int64() > s.lim.MaxIntegerExponent {
		return nil, false
	}
	n := abs.Int64()
	if baseNum.Val.Sign() == 0 {
		if e.Sign() > 0 {
			return Integer(0), true
		}
		return nil, false // 0^0 handled above; 0^-n stays symbolic
	}
	num := new(big.Int).Exp(baseNum.Val.Num(), big.NewInt(n), nil)
	den := new(big.Int).Exp(baseNum.Val.Denom(), big.NewInt(n), nil)
	val := new(big.Rat).SetFrac(num, den)
	if e.Sign() < 0 {
		val.Inv(val)
	}
	return Num{Val: val}, true
}

// ---------------------------------------------------------------------------
// Function special values
// ---------------------------------------------------------------------------

func (s simplifier) simplifyCall(c Call) Expr {
	if len(c.Args) != 1 {
		return c
	}
	arg := c.Args[0]
	n, isNum := arg.(Num)
	zero := isNum && n.Val.Sign() == 0
	one := isNum && n.Val.Cmp(big.NewRat(1, 1)) == 0

	switch c.Fn {
	case "sin", "tan":
		if zero {
			return Integer(0)
		}
	case "cos":
		if zero {
			return Integer(1)
		}
	case "exp":
		if zero {
			return Integer(1)
		}
		// exp(log(u)) -> u
		if inner, ok := arg.(Call); ok && inner.Fn == "log" && len(inner.Args) == 1 {
			return inner.Args[0]
		}
	case "log":
		if one {
			return Integer(0)
		}
		if sym, ok := arg.(Sym); ok && sym.Name == "E" {
			return Integer(1)
		}
	case "sqrt":
		if isNum {
			if root, ok := ratSqrt(n.Val); ok {
				return Num{Val: root}
			}
		}
	case "abs":
		if isNum {
			return Num{Val: new(big.Rat).Abs(n.Val)}
		}
	}
	return c
}

// ratSqrt returns the exact square root of a non-negative rational when both
// numerator and denominator are perfect squares.
func ratSqrt(r *big.Rat) (*big.Rat, bool) {
	if r.Sign() < 0 {
		return nil, false
	}
	num := new(big.Int).Sqrt(r.Num())
	den := new(big.Int).Sqrt(r.Denom())
	if new(big.Int).Mul(num, num).Cmp(r.Num()) != 0 {
		return nil, false
	}
	if new(big.Int).Mul(den, den).Cmp(r.Denom()) != 0 {
		return nil, false
	}
	return new(big.Rat).SetFrac(num, den), true
}
