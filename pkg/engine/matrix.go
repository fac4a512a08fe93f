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
// Exact linear algebra over the rationals: construction helpers plus
// det, inv, rank and 2x2 eigenvalues. All algorithms work on *big.Rat
// so results are never approximated.

func applyMatrix(args []Expr) (Expr, error) {
	if len(args) != 1 {
		return nil, evalErrorf("Matrix", "Matrix takes 1 argument (got %d)", len(args))
	}
	outer, ok := args[0].(List)
	if !ok {
		return nil, evalErrorf("Matrix", "Matrix expects a list of rows")
	}
	rows := make([][]Expr, 0, len(outer.Items))
	width := -1
	for _, r := range outer.Items {
		inner, ok := r.(List)
		if !ok {
			return nil, evalErrorf("Matrix", "Matrix rows must be lists")
		}
		if width == -1 {
			width = len(inner.Items)
		} else if len(inner.Items) != width {
			return nil, evalErrorf("Matrix", "Matrix rows must have equal length")
		}
		row := make([]Expr, len(inner.Items))
		copy(row, inner.Items)
		rows = append(rows, row)
	}
	if len(rows) == 0 || width == 0 {
		return nil, evalErrorf("Matrix", "Matrix must not be empty")
	}
	return Matrix{Rows: rows}, nil
}

func applyEye(args []Expr) (Expr, error) {
	n, err := wantDim("eye", args)
	if err != nil {
		return nil, err
	}
	rows := make([][]Expr, n)
	for i := range rows {
		rows[i] = make([]Expr, n)
		for j := range rows[i] {
			if i == j {
				rows[i][j] = Integer(1)
			} else {
				rows[i][j] = Integer(0)
			}
		}
	}
	return Matrix{Rows: rows}, nil
}

func applyFill(op string, args []Expr, v Expr) (Expr, error) {
	var nr, nc int
	switch len(args) {
	case 1:
		n, err := wantDim(op, args)
		if err != nil {
			return nil, err
		}
		nr, nc = n, n
	case 2:
		r, err := wantSmallInt(op, args[0])
		if err != nil {
			return nil, err
		}
		c, err := wantSmallInt(op, args[1])
		if err != nil {
			return nil, err
		}
		nr, nc = r, c
	default:
		return nil, evalErrorf(op, "%s takes 1 or 2 arguments (got %d)", op, len(args))
	}
	rows := make([][]Expr, nr)
	for i := range rows {
		rows[i] = make([]Expr, nc)
		for j := range rows[i] {
			rows[i][j] = v
		}
	}
	return Matrix{Rows: rows}, nil
}

const maxMatrixDim = 64

func wantDim(op string, args []Expr) (int, error) {
	if len(args) != 1 {
		return 0, evalErrorf(op, "%s takes 1 argument (got %d)", op, len(args))
	}
	return wantSmallInt(op, args[0])
}

func wantSmallInt(op string, e Expr) (int, error) {
	i, err := wantInt(op, e)
	if err != nil {
		return 0, err
	}
	if !i.IsInt64() || i.Int64() < 1 || i.Int64() > maxMatrixDim {
		return 0, evalErrorf(op, "%s dimension must be between 1 and %d", op, maxMatrixDim)
	}
	return int(i.Int64()), nil
}

func toRatMatrix(op string, args []Expr) ([][]*big.Rat, error) {
	if len(args) != 1 {
		return nil, evalErrorf(op, "%s takes 1 argument (got %d)", op, len(args))
	}
	m, ok := args[0].(Matrix)
	if !ok {
		return nil, evalErrorf(op, "%s expects a Matrix", op)
	}
	out := make([][]*big.Rat, len(m.Rows))
	for i, row := range m.Rows {
		out[i] = make([]*big.Rat, len(row))
		for j, cell := range row {
			n, ok := cell.(Num)
			if !ok {
				return nil, evalErrorf(op, "%s requires numeric matrix entries", op)
			}
			out[i][j] = new(big.Rat).Set(n.Val)
		}
	}
	return out, nil
}

func applyDet(args []Expr) (Expr, error) {
	m, err := toRatMatrix("det", args)
	if err != nil {
		return nil, err
	}
	if len(m) != len(m[0]) {
		return nil, evalErrorf("det", "det requires a square matrix")
	}
	d, _ := gaussEliminate(copyRat(m))
	return Num{Val: d}, nil
}

func applyRank(args []Expr) (Expr, error) {
	m, err := toRatMatrix("rank", args)
	if err != nil {
		return nil, err
	}
	_, r := gaussEliminate(copyRat(m))
	return Integer(int64(r)), nil
}

func applyInv(args []Expr) (Expr, error) {
	m, err := toRatMatrix("inv", args)
	if err != nil {
		return nil, err
	}
	n := len(m)
	if n != len(m[0]) {
		return nil, evalErrorf("inv", "inv requires a square matrix")
	}
	// Augment with the identity and reduce.
	aug := make([][]*big.Rat, n)
	for i := 0; i < n; i++ {
		aug[i] = make([]*big.Rat, 2*n)
		for j := 0; j < n; j++ {
			aug[i][j] = new(big.Rat).Set(m[i][j])
			aug[i][n+j] = new(big.Rat)
		}
		aug[i][n+i] = big.NewRat(1, 1)
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
			return nil, evalErrorf("inv", "matrix is singular")
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]
		scale := new(big.Rat).Inv(aug[col][col])
		for j := 0; j < 2*n; j++ {
			aug[col][j].Mul(aug[col][j], scale)
		}
		for r := 0; r < n; r++ {
			if r == col || aug[r][col].Sign() == 0 {
				continue
			}
			f := new(big.Rat).Set(aug[r][col])
			for j := 0; j < 2*n; j++ {
				aug[r][j].Sub(aug[r][j], new(big.Rat).Mul(f, aug[col][j]))
			}
		}
	}
	rows := make([][]Expr, n)
	for i := 0; i < n; i++ {
		rows[i] = make([]Expr, n)
		for j := 0; j < n; j++ {
			rows[i][j] = Num{Val: aug[i][n+j]}
		}
	}
	return Matrix{Rows: rows}, nil
}

// applyEigvals handles 1x1 and 2x2 matrices exactly; larger matrices need a
// root finder this engine does not carry.
func applyEigvals(args []Expr) (Expr, error) {
	m, err := toRatMatrix("eigvals", args)
	if err != nil {
		return nil, err
	}
	n := len(m)
	if n != len(m[0]) {
		return nil, evalErrorf("eigvals", "eigvals requires a square matrix")
	}
	switch n {
	case 1:
		return Dict{Keys: []Expr{Num{Val: m[0][0]}}, Vals: []Expr{Integer(1)}}, nil
	case 2:
		// Characteristic polynomial: x^2 - tr*x + det.
		tr := new(big.Rat).Add(m[0][0], m[1][1])
		det := new(big.Rat).Sub(
			new(big.Rat).Mul(m[0][0], m[1][1]),
			new(big.Rat).Mul(m[0][1], m[1][0]),
		)
		roots, err := Solve(Add{Terms: []Expr{
			Pow{Base: Sym{Name: "x"}, Exp: Integer(2)},
			Mul{Factors: []Expr{Num{Val: new(big.Rat).Neg(tr)}, Sym{Name: "x"}}},
			Num{Val: det},
		}}, "x")
		if err != nil {
			return nil, evalErrorf("eigvals", "eigenvalues are not real")
		}
		lst := roots.(List)
		if len(lst.Items) == 1 {
			return Dict{Keys: lst.Items, Vals: []Expr{Integer(2)}}, nil
		}
		return Dict{Keys: lst.Items, Vals: []Expr{Integer(1), Integer(1)}}, nil
	}
	return nil, evalErrorf("eigvals", "eigvals supports matrices up to 2x2")
}

func copyRat(m [][]*big.Rat) [][]*big.Rat {
	out := make([][]*big.Rat, len(m))
	for i, row := range m {
		out[i] = make([]*big.Rat, len(row))
		for j, v := range row {
			out[i][j] = new(big.Rat).Set(v)
		}
	}
	return out
}

// gaussEliminate row-reduces in place and returns (det, rank). det is only
// meaningful for square input.
func gaussEliminate(m [][]*big.Rat) (*big.Rat, int) {
	nr, nc := len(m), len(m[0])
	det := big.NewRat(1, 1)
	rank := 0
	for col := 0; col < nc && rank < nr; col++ {
		pivot := -1
		for r := rank; r < nr; r++ {
			if m[r][col].Sign() != 0 {
				pivot = r
				break
			}
		}
		if pivot == -1 {
			det.SetInt64(0)
			continue
		}
		if pivot != rank {
			m[rank], m[pivot] = m[pivot], m[rank]
			det.Neg(det)
		}
		det.Mul(det, m[rank][col])
		inv := new(big.Rat).Inv(m[rank][col])
		for j := col; j < nc; j++ {
			m[rank][j].Mul(m[rank][j], inv)
		}
		for r := 0; r < nr; r++ {
			if r == rank || m[r][col].Sign() == 0 {
				continue
			}
			f := new(big.Rat).Set(m[r][col])
			for j := col; j < nc; j++ {
				m[r][j].Sub(m[r][j], new(big.Rat).Mul(f, m[rank][j]))
			}
		}
		rank++
	}
	if rank < nr {
		det.SetInt64(0)
	}
	return det, rank
}
