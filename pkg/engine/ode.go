// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import "math/big"

// # Description
//
// Closed-form solutions for linear constant-coefficient ordinary
// differential equations of order one and two, with optional initial
// conditions fixing the C1/C2 constants.

// InitialCondition pins the solution or its first derivative at a point,
// e.g. y(0)=1 is {Order: 0, At: 0, Value: 1}.
type InitialCondition struct {
	Order int
	At    *big.Rat
	Value *big.Rat
}

// DSolve solves a*y'' + b*y' + c*y + d = 0 for the dependent function dep
// of the independent variable iv, returning Eq(dep(iv), solution).
func DSolve(eq Expr, dep, iv string, ics []InitialCondition) (Expr, error) {
	lhs := eq
	if e, ok := eq.(Eq); ok {
		lhs = Add{Terms: []Expr{e.Lhs, Mul{Factors: []Expr{Integer(-1), e.Rhs}}}}
	}
	coeffs, err := odeCoeffs(Simplify(lhs), dep, iv)
	if err != nil {
		return nil, err
	}

	var sol Expr
	switch {
	case coeffs[3].Sign() != 0:
		sol, err = solveSecondOrder(coeffs, iv)
	case coeffs[2].Sign() != 0:
		sol, err = solveFirstOrder(coeffs, iv)
	default:
		return nil, evalErrorf("dsolve", "input does not contain a derivative of %s", dep)
	}
	if err != nil {
		return nil, err
	}

	if len(ics) > 0 {
		sol, err = applyInitialConditions(sol, iv, ics)
		if err != nil {
			return nil, err
		}
	}
	return Eq{Lhs: Call{Fn: dep, Args: []Expr{Sym{Name: iv}}}, Rhs: Simplify(sol)}, nil
}

// odeCoeffs extracts [constant, y, y', y''] coefficients from a flattened
// sum. Any term that is not a constant multiple of one of those basis
// elements makes the equation unsupported.
func odeCoeffs(lhs Expr, dep, iv string) ([4]*big.Rat, error) {
	var coeffs [4]*big.Rat
	for i := range coeffs {
		coeffs[i] = new(big.Rat)
	}
	terms := []Expr{lhs}
	if a, ok := lhs.(Add); ok {
		terms = a.Terms
	}
	for _, t := range terms {
		coeff := big.NewRat(1, 1)
		core := t
		if m, ok := t.(Mul); ok {
			rest := make([]Expr, 0, len(m.Factors))
			for _, f := range m.Factors {
				if n, ok := f.(Num); ok {
					coeff.Mul(coeff, n.Val)
				} else {
					rest = append(rest, f)
				}
			}
			switch len(rest) {
			case 0:
				core = Integer(1)
			case 1:
				core = rest[0]
			default:
				core = Mul{Factors: rest}
			}
		}
		slot, err := odeBasisSlot(core, dep, iv)
		if err != nil {
			return coeffs, err
		}
		if slot == 0 {
			if n, ok := core.(Num); ok {
				coeff.Mul(coeff, n.Val)
			}
		}
		coeffs[slot].Add(coeffs[slot], coeff)
	}
	return coeffs, nil
}

func odeBasisSlot(core Expr, dep, iv string) (int, error) {
	switch v := core.(type) {
	case Num:
		return 0, nil
	case Call:
		if v.Fn == dep && len(v.Args) == 1 {
			if s, ok := v.Args[0].(Sym); ok && s.Name == iv {
				return 1, nil
			}
		}
	case Derivative:
		inner, ok := v.Expr.(Call)
		if ok && inner.Fn == dep && v.Var.Name == iv && v.Order >= 1 && v.Order <= 2 {
			return v.Order + 1, nil
		}
		return 0, evalErrorf("dsolve", "only first and second derivatives of %s are supported", dep)
	}
	return 0, evalErrorf("dsolve", "term %s is not linear in %s with constant coefficients", renderPlain(core), dep)
}

// solveFirstOrder handles b*y' + c*y + d = 0, rewritten as y' = k*y + p.
func solveFirstOrder(coeffs [4]*big.Rat, iv string) (Expr, error) {
	b, c, d := coeffs[2], coeffs[1], coeffs[0]
	k := new(big.Rat).Neg(new(big.Rat).Quo(c, b))
	p := new(big.Rat).Neg(new(big.Rat).Quo(d, b))
	x := Sym{Name: iv}
	if k.Sign() == 0 {
		// y' = p, so y = p*x + C1.
		return Add{Terms: []Expr{
			Mul{Factors: []Expr{Num{Val: p}, x}},
			Sym{Name: "C1"},
		}}, nil
	}
	hom := Mul{Factors: []Expr{
		Sym{Name: "C1"},
		Call{Fn: "exp", Args: []Expr{mulRat(k, x)}},
	}}
	if p.Sign() == 0 {
		return hom, nil
	}
	// Steady state of y' = k*y + p.
	part := new(big.Rat).Neg(new(big.Rat).Quo(p, k))
	return Add{Terms: []Expr{hom, Num{Val: part}}}, nil
}

// solveSecondOrder handles a*y'' + b*y' + c*y + d = 0 via the
// characteristic polynomial a*r^2 + b*r + c.
func solveSecondOrder(coeffs [4]*big.Rat, iv string) (Expr, error) {
	a, b, c, d := coeffs[3], coeffs[2], coeffs[1], coeffs[0]
	x := Sym{Name: iv}

	var particular Expr
	if d.Sign() != 0 {
		if c.Sign() == 0 {
			return nil, evalErrorf("dsolve", "no closed-form solution for this forcing term")
		}
		particular = Num{Val: new(big.Rat).Neg(new(big.Rat).Quo(d, c))}
	}

	disc := new(big.Rat).Sub(
		new(big.Rat).Mul(b, b),
		new(big.Rat).Mul(new(big.Rat).Mul(big.NewRat(4, 1), a), c),
	)

	var hom Expr
	switch {
	case disc.Sign() > 0:
		sq, ok := ratSqrt(disc)
		if !ok {
			return nil, evalErrorf("dsolve", "characteristic roots are irrational; no closed-form solution here")
		}
		twoA := new(big.Rat).Mul(big.NewRat(2, 1), a)
		r1 := new(big.Rat).Quo(new(big.Rat).Sub(new(big.Rat).Neg(b), sq), twoA)
		r2 := new(big.Rat).Quo(new(big.Rat).Add(new(big.Rat).Neg(b), sq), twoA)
		hom = Add{Terms: []Expr{
			expMode("C1", r1, x),
			expMode("C2", r2, x),
		}}
	case disc.Sign() == 0:
		r := new(big.Rat).Quo(new(big.Rat).Neg(b), new(big.Rat).Mul(big.NewRat(2, 1), a))
		hom = Add{Terms: []Expr{
			expMode("C1", r, x),
			Mul{Factors: []Expr{Sym{Name: "C2"}, x, Call{Fn: "exp", Args: []Expr{mulRat(r, x)}}}},
		}}
	default:
		negDisc := new(big.Rat).Neg(disc)
		sq, ok := ratSqrt(negDisc)
		if !ok {
			return nil, evalErrorf("dsolve", "characteristic roots are irrational; no closed-form solution here")
		}
		twoA := new(big.Rat).Mul(big.NewRat(2, 1), a)
		alpha := new(big.Rat).Quo(new(big.Rat).Neg(b), twoA)
		omega := new(big.Rat).Quo(sq, twoA)
		osc := Add{Terms: []Expr{
			Mul{Factors: []Expr{Sym{Name: "C1"}, Call{Fn: "sin", Args: []Expr{mulRat(omega, x)}}}},
			Mul{Factors: []Expr{Sym{Name: "C2"}, Call{Fn: "cos", Args: []Expr{mulRat(omega, x)}}}},
		}}
		if alpha.Sign() == 0 {
			hom = osc
		} else {
			hom = Mul{Factors: []Expr{Call{Fn: "exp", Args: []Expr{mulRat(alpha, x)}}, osc}}
		}
	}

	if particular == nil {
		return hom, nil
	}
	return Add{Terms: []Expr{hom, particular}}, nil
}

func expMode(constant string, r *big.Rat, x Sym) Expr {
	return Mul{Factors: []Expr{
		Sym{Name: constant},
		Call{Fn: "exp", Args: []Expr{mulRat(r, x)}},
	}}
}

func mulRat(r *big.Rat, x Sym) Expr {
	if r.Cmp(big.NewRat(1, 1)) == 0 {
		return x
	}
	return Mul{Factors: []Expr{Num{Val: r}, x}}
}

// applyInitialConditions solves for C1 (and C2) given conditions on the
// solution or its first derivative. The general solution is linear in the
// constants, so each condition yields one linear equation which is
// extracted by probing the constants at 0 and 1.
func applyInitialConditions(sol Expr, iv string, ics []InitialCondition) (Expr, error) {
	consts := []string{}
	for _, name := range []string{"C1", "C2"} {
		if containsSym(sol, name) {
			consts = append(consts, name)
		}
	}
	if len(ics) < len(consts) {
		return nil, evalErrorf("dsolve", "need %d initial conditions to fix %d constants", len(consts), len(consts))
	}
	if len(ics) > len(consts) {
		return nil, evalErrorf("dsolve", "more initial conditions than free constants")
	}

	// rows[i] = coefficients of consts in equation i, rhs[i] = value - offset.
	n := len(consts)
	rows := make([][]*big.Rat, n)
	rhs := make([]*big.Rat, n)
	for i, ic := range ics {
		expr := sol
		if ic.Order == 1 {
			d, err := Diff(sol, iv)
			if err != nil {
				return nil, err
			}
			expr = d
		} else if ic.Order != 0 {
			return nil, evalErrorf("dsolve", "initial conditions beyond the first derivative are not supported")
		}
		at := substitute(expr, iv, Num{Val: ic.At})

		offset, err := probeConstants(at, consts, make([]*big.Rat, n))
		if err != nil {
			return nil, err
		}
		rows[i] = make([]*big.Rat, n)
		for j := range consts {
			probe := make([]*big.Rat, n)
			probe[j] = big.NewRat(1, 1)
			v, err := probeConstants(at, consts, probe)
			if err != nil {
				return nil, err
			}
			rows[i][j] = new(big.Rat).Sub(v, offset)
		}
		rhs[i] = new(big.Rat).Sub(ic.Value, offset)
	}

	vals, err := solveLinearSystem(rows, rhs)
	if err != nil {
		return nil, err
	}
	out := sol
	for i, name := range consts {
		out = substitute(out, name, Num{Val: vals[i]})
	}
	return out, nil
}

// probeConstants substitutes trial values for the constants and reduces
// the result to a rational. Nil probe entries mean zero.
func probeConstants(e Expr, consts []string, probe []*big.Rat) (*big.Rat, error) {
	for i, name := range consts {
		v := probe[i]
		if v == nil {
			v = new(big.Rat)
		}
		e = substitute(e, name, Num{Val: v})
	}
	reduced := Simplify(e)
	if n, ok := reduced.(Num); ok {
		return new(big.Rat).Set(n.Val), nil
	}
	// exp at a nonzero rational point has no exact value.
	return nil, evalErrorf("dsolve", "initial condition at %s does not reduce to an exact value", renderPlain(reduced))
}

func solveLinearSystem(rows [][]*big.Rat, rhs []*big.Rat) ([]*big.Rat, error) {
	n := len(rows)
	aug := make([][]*big.Rat, n)
	for i := range rows {
		aug[i] = make([]*big.Rat, n+1)
		for j := 0; j < n; j++ {
			aug[i][j] = new(big.Rat).Set(rows[i][j])
		}
		aug[i][n] = new(big.Rat).Set(rhs[i])
	}
	for col := 0; col < n; col++ {
		pivot := -1
		for r := col; r < n; r++ {
			if aug[r][col].Sign() != 0 {
				pivot = r
				break
			}
		}
		if pivot == -1 {
			return nil, evalErrorf("dsolve", "initial conditions do not determine the constants")
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]
		inv := new(big.Rat).Inv(aug[col][col])
		for j := col; j <= n; j++ {
			aug[col][j].Mul(aug[col][j], inv)
		}
		for r := 0; r < n; r++ {
			if r == col || aug[r][col].Sign() == 0 {
				continue
			}
			f := new(big.Rat).Set(aug[r][col])
			for j := col; j <= n; j++ {
				aug[r][j].Sub(aug[r][j], new(big.Rat).Mul(f, aug[col][j]))
			}
		}
	}
	out := make([]*big.Rat, n)
	for i := 0; i < n; i++ {
		out[i] = aug[i][n]
	}
	return out, nil
}
