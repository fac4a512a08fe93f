// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import "math/big"

// Diff differentiates e with respect to the named variable. Undefined
// function applications produce unevaluated Derivative nodes. The result is
// not simplified; callers run Simplify on it.
func Diff(e Expr, v string) (Expr, error) {
	switch t := e.(type) {
	case Num, Float:
		return Integer(0), nil
	case Sym:
		if t.Name == v {
			return Integer(1), nil
		}
		return Integer(0), nil
	case Add:
		terms := make([]Expr, len(t.Terms))
		for i, term := range t.Terms {
			d, err := Diff(term, v)
			if err != nil {
				return nil, err
			}
			terms[i] = d
		}
		return Add{Terms: terms}, nil
	case Mul:
		// Product rule over n factors.
		var terms []Expr
		for i := range t.Factors {
			d, err := Diff(t.Factors[i], v)
			if err != nil {
				return nil, err
			}
			factors := make([]Expr, 0, len(t.Factors))
			factors = append(factors, d)
			for j, f := range t.Factors {
				if j != i {
					factors = append(factors, f)
				}
			}
			terms = append(terms, Mul{Factors: factors})
		}
		return Add{Terms: terms}, nil
	case Pow:
		return diffPow(t, v)
	case Call:
		return diffCall(t, v)
	case Derivative:
		if t.Var.Name == v {
			return Derivative{Expr: t.Expr, Var: t.Var, Order: t.Order + 1}, nil
		}
		return nil, evalErrorf("d", "cannot mix derivative variables (%s and %s)", t.Var.Name, v)
	default:
		return nil, evalErrorf("d", "cannot differentiate %s", renderPlain(e))
	}
}

func diffPow(p Pow, v string) (Expr, error) {
	baseDep := containsSym(p.Base, v)
	expDep := containsSym(p.Exp, v)
	switch {
	case !baseDep && !expDep:
		return Integer(0), nil
	case baseDep && !expDep:
		// n * b^(n-1) * b'
		db, err := Diff(p.Base, v)
		if err != nil {
			return nil, err
		}
		newExp := Add{Terms: []Expr{p.Exp, Integer(-1)}}
		return Mul{Factors: []Expr{p.Exp, Pow{Base: p.Base, Exp: newExp}, db}}, nil
	case !baseDep && expDep:
		// a^u * log(a) * u'
		du, err := Diff(p.Exp, v)
		if err != nil {
			return nil, err
		}
		return Mul{Factors: []Expr{p, Call{Fn: "log", Args: []Expr{p.Base}}, du}}, nil
	default:
		return nil, evalErrorf("d", "cannot differentiate %s", renderPlain(p))
	}
}

func diffCall(c Call, v string) (Expr, error) {
	if !containsSym(c, v) {
		return Integer(0), nil
	}
	if len(c.Args) != 1 {
		return nil, evalErrorf("d", "cannot differentiate %s", renderPlain(c))
	}
	u := c.Args[0]

	if !knownFunctions[c.Fn] {
		// Undefined application: only the direct y(x) form stays symbolic.
		if sym, ok := u.(Sym); ok && sym.Name == v {
			return Derivative{Expr: c, Var: Sym{Name: v}, Order: 1}, nil
		}
		return nil, evalErrorf("d", "cannot differentiate %s; use %s(%s)-style notation", renderPlain(c), c.Fn, v)
	}

	var outer Expr
	switch c.Fn {
	case "sin":
		outer = Call{Fn: "cos", Args: []Expr{u}}
	case "cos":
		outer = Mul{Factors: []Expr{Integer(-1), Call{Fn: "sin", Args: []Expr{u}}}}
	case "tan":
		outer = Add{Terms: []Expr{Pow{Base: Call{Fn: "tan", Args: []Expr{u}}, Exp: Integer(2)}, Integer(1)}}
	case "exp":
		outer = c
	case "log":
		outer = Pow{Base: u, Exp: Integer(-1)}
	case "sqrt":
		outer = Mul{Factors: []Expr{Rational(1, 2), Pow{Base: u, Exp: Rational(-1, 2)}}}
	default:
		return nil, evalErrorf("d", "cannot differentiate %s", renderPlain(c))
	}
	du, err := Diff(u, v)
	if err != nil {
		return nil, err
	}
	return Mul{Factors: []Expr{outer, du}}, nil
}

func containsSym(e Expr, name string) bool {
	found := false
	walk(e, func(n Expr) {
		if sym, ok := n.(Sym); ok && sym.Name == name {
			found = true
		}
		if d, ok := n.(Derivative); ok && d.Var.Name == name {
			found = true
		}
	})
	return found
}

// Integrate computes an antiderivative of e with respect to v. Matching is
// pattern-based in the style of table integration: polynomials, sums,
// constant multiples, and sin/cos/exp with linear arguments. Anything else
// reports no closed form.
func Integrate(e Expr, v string) (Expr, error) {
	e = Simplify(e)
	return integrate(e, v)
}

func integrate(e Expr, v string) (Expr, error) {
	if !containsSym(e, v) {
		return Mul{Factors: []Expr{e, Sym{Name: v}}}, nil
	}
	switch t := e.(type) {
	case Sym:
		// t == v here
		return Mul{Factors: []Expr{Rational(1, 2), Pow{Base: t, Exp: Integer(2)}}}, nil
	case Add:
		terms := make([]Expr, len(t.Terms))
		for i, term := range t.Terms {
			in, err := integrate(term, v)
			if err != nil {
				return nil, err
			}
			terms[i] = in
		}
		return Add{Terms: terms}, nil
	case Mul:
		var constFactors, varFactors []Expr
		for _, f := range t.Factors {
			if containsSym(f, v) {
				varFactors = append(varFactors, f)
			} else {
				constFactors = append(constFactors, f)
			}
		}
		if len(varFactors) != 1 {
			return nil, noClosedForm(e, v)
		}
		inner, err := integrate(varFactors[0], v)
		if err != nil {
			return nil, err
		}
		return Mul{Factors: append(constFactors, inner)}, nil
	case Pow:
		return integratePow(t, v)
	case Call:
		return integrateCall(t, v)
	default:
		return nil, noClosedForm(e, v)
	}
}

func integratePow(p Pow, v string) (Expr, error) {
	sym, ok := p.Base.(Sym)
	if !ok || sym.Name != v {
		return nil, noClosedForm(p, v)
	}
	n, ok := p.Exp.(Num)
	if !ok {
		return nil, noClosedForm(p, v)
	}
	minusOne := big.NewRat(-1, 1)
	if n.Val.Cmp(minusOne) == 0 {
		return Call{Fn: "log", Args: []Expr{p.Base}}, nil
	}
	newExp := new(big.Rat).Add(n.Val, big.NewRat(1, 1))
	coeff := new(big.Rat).Inv(newExp)
	return Mul{Factors: []Expr{Num{Val: coeff}, Pow{Base: p.Base, Exp: Num{Val: newExp}}}}, nil
}

func integrateCall(c Call, v string) (Expr, error) {
	if len(c.Args) != 1 {
		return nil, noClosedForm(c, v)
	}
	k, _, err := linearArg(c.Args[0], v)
	if err != nil {
		return nil, noClosedForm(c, v)
	}
	invK := Num{Val: new(big.Rat).Inv(k)}
	switch c.Fn {
	case "sin":
		return Mul{Factors: []Expr{Integer(-1), invK, Call{Fn: "cos", Args: c.Args}}}, nil
	case "cos":
		return Mul{Factors: []Expr{invK, Call{Fn: "sin", Args: c.Args}}}, nil
	case "exp":
		return Mul{Factors: []Expr{invK, c}}, nil
	default:
		return nil, noClosedForm(c, v)
	}
}

// linearArg requires u = k*v + m with rational k != 0 and rational m.
func linearArg(u Expr, v string) (*big.Rat, *big.Rat, error) {
	coeffs, err := polyCoeffs(Simplify(u), v)
	if err != nil {
		return nil, nil, err
	}
	for deg := range coeffs {
		if deg > 1 {
			return nil, nil, evalErrorf("int", "argument is not linear in %s", v)
		}
	}
	k := coeffs[1]
	if k == nil || k.Sign() == 0 {
		return nil, nil, evalErrorf("int", "argument is not linear in %s", v)
	}
	m := coeffs[0]
	if m == nil {
		m = new(big.Rat)
	}
	return k, m, nil
}

func noClosedForm(e Expr, v string) error {
	return evalErrorf("int", "no closed form found for int(%s, %s)", renderPlain(e), v)
}
