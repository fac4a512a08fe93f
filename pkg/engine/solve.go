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

// Solve finds the roots of a polynomial equation in v. The input is either
// an expression (solved against zero) or an Eq. Supported degrees are 1 and
// 2 with rational coefficients; quadratic roots keep an exact sqrt form when
// the discriminant is not a perfect square.
func Solve(e Expr, v string) (Expr, error) {
	if eq, ok := e.(Eq); ok {
		e = Add{Terms: []Expr{eq.Lhs, Mul{Factors: []Expr{Integer(-1), eq.Rhs}}}}
	}
	e = Simplify(e)
	coeffs, err := polyCoeffs(e, v)
	if err != nil {
		return nil, err
	}

	degree := 0
	for deg, c := range coeffs {
		if c.Sign() != 0 && deg > degree {
			degree = deg
		}
	}

	at := func(deg int) *big.Rat {
		if c, ok := coeffs[deg]; ok {
			return c
		}
		return new(big.Rat)
	}

	switch degree {
	case 0:
		return List{}, nil
	case 1:
		root := new(big.Rat).Quo(new(big.Rat).Neg(at(0)), at(1))
		return List{Items: []Expr{Num{Val: root}}}, nil
	case 2:
		return solveQuadratic(at(2), at(1), at(0))
	default:
		return nil, evalErrorf("solve", "solve supports polynomial equations up to degree 2 (got degree %d)", degree)
	}
}

func solveQuadratic(a, b, c *big.Rat) (Expr, error) {
	// disc = b^2 - 4ac
	disc := new(big.Rat).Mul(b, b)
	fourAC := new(big.Rat).Mul(big.NewRat(4, 1), new(big.Rat).Mul(a, c))
	disc.Sub(disc, fourAC)

	twoA := new(big.Rat).Mul(big.NewRat(2, 1), a)
	negB := new(big.Rat).Neg(b)

	if root, ok := ratSqrt(disc); ok {
		r1 := new(big.Rat).Quo(new(big.Rat).Sub(negB, root), twoA)
		r2 := new(big.Rat).Quo(new(big.Rat).Add(negB, root), twoA)
		roots := []*big.Rat{r1, r2}
		sort.Slice(roots, func(i, j int) bool { return roots[i].Cmp(roots[j]) < 0 })
		if roots[0].Cmp(roots[1]) == 0 {
			return List{Items: []Expr{Num{Val: roots[0]}}}, nil
		}
		return List{Items: []Expr{Num{Val: roots[0]}, Num{Val: roots[1]}}}, nil
	}
	if disc.Sign() < 0 {
		return nil, evalErrorf("solve", "no real roots (discriminant %s is negative)", ratString(disc))
	}

	// Exact irrational roots: (-b ± sqrt(disc)) / (2a).
	sqrtD := Call{Fn: "sqrt", Args: []Expr{Num{Val: disc}}}
	invTwoA := Num{Val: new(big.Rat).Inv(twoA)}
	r1 := Simplify(Mul{Factors: []Expr{invTwoA, Add{Terms: []Expr{Num{Val: negB}, Mul{Factors: []Expr{Integer(-1), sqrtD}}}}}})
	r2 := Simplify(Mul{Factors: []Expr{invTwoA, Add{Terms: []Expr{Num{Val: negB}, sqrtD}}}})
	return List{Items: []Expr{r1, r2}}, nil
}

// polyCoeffs extracts rational polynomial coefficients by degree.
// Symbolic coefficients and non-polynomial structure are errors.
func polyCoeffs(e Expr, v string) (map[int]*big.Rat, error) {
	switch t := e.(type) {
	case Num:
		return map[int]*big.Rat{0: new(big.Rat).Set(t.Val)}, nil
	case Sym:
		if t.Name == v {
			return map[int]*big.Rat{1: big.NewRat(1, 1)}, nil
		}
		return nil, evalErrorf("solve", "symbolic coefficient %s is not supported; use numeric coefficients", t.Name)
	case Add:
		out := map[int]*big.Rat{}
		for _, term := range t.Terms {
			m, err := polyCoeffs(term, v)
			if err != nil {
				return nil, err
			}
			for deg, c := range m {
				if cur, ok := out[deg]; ok {
					cur.Add(cur, c)
				} else {
					out[deg] = c
				}
			}
		}
		return out, nil
	case Mul:
		out := map[int]*big.Rat{0: big.NewRat(1, 1)}
		for _, f := range t.Factors {
			m, err := polyCoeffs(f, v)
			if err != nil {
				return nil, err
			}
			out = convolve(out, m)
		}
		return out, nil
	case Pow:
		n, ok := t.Exp.(Num)
		if !ok || !isInteger(n) || n.Val.Sign() < 0 {
			return nil, notPolynomial(e, v)
		}
		deg, ok2 := intFromNum(n)
		if !ok2 || !deg.IsInt64() || deg.Int64() > 64 {
			return nil, notPolynomial(e, v)
		}
		baseMap, err := polyCoeffs(t.Base, v)
		if err != nil {
			return nil, err
		}
		out := map[int]*big.Rat{0: big.NewRat(1, 1)}
		for i := int64(0); i < deg.Int64(); i++ {
			out = convolve(out, baseMap)
		}
		return out, nil
	default:
		return nil, notPolynomial(e, v)
	}
}

func notPolynomial(e Expr, v string) error {
	return evalErrorf("solve", "%s is not a polynomial in %s", renderPlain(e), v)
}

func convolve(a, b map[int]*big.Rat) map[int]*big.Rat {
	out := map[int]*big.Rat{}
	for da, ca := range a {
		for db, cb := range b {
			prod := new(big.Rat).Mul(ca, cb)
			if cur, ok := out[da+db]; ok {
				cur.Add(cur, prod)
			} else {
				out[da+db] = prod
			}
		}
	}
	return out
}
