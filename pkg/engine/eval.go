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
// Eval is the operation dispatcher. It walks an expression bottom-up,
// executes operation calls (d, int, solve, ...), and folds arithmetic on
// plain numbers while preserving the structure and order of anything
// symbolic. Algebraic rewriting lives in Simplify; Eval never reorders
// terms, so a no-simplify caller sees the input shape back.

// Eval evaluates operation calls and numeric arithmetic in e. The limits
// bound eager expansion of powers and factorials; subterms above a limit
// are left in symbolic form for the caller's growth check.
func Eval(e Expr, lim Limits) (Expr, error) {
	switch v := e.(type) {
	case Num, Sym, Float:
		return e, nil
	case Add:
		terms, err := evalAll(v.Terms, lim)
		if err != nil {
			return nil, err
		}
		return foldAdd(terms), nil
	case Mul:
		factors, err := evalAll(v.Factors, lim)
		if err != nil {
			return nil, err
		}
		return foldMul(factors), nil
	case Pow:
		base, err := Eval(v.Base, lim)
		if err != nil {
			return nil, err
		}
		exp, err := Eval(v.Exp, lim)
		if err != nil {
			return nil, err
		}
		return foldPow(Pow{Base: base, Exp: exp}, lim), nil
	case Eq:
		lhs, err := Eval(v.Lhs, lim)
		if err != nil {
			return nil, err
		}
		rhs, err := Eval(v.Rhs, lim)
		if err != nil {
			return nil, err
		}
		return Eq{Lhs: lhs, Rhs: rhs}, nil
	case Derivative:
		inner, err := Eval(v.Expr, lim)
		if err != nil {
			return nil, err
		}
		return Derivative{Expr: inner, Var: v.Var, Order: v.Order}, nil
	case List:
		items, err := evalAll(v.Items, lim)
		if err != nil {
			return nil, err
		}
		return List{Items: items}, nil
	case Matrix:
		rows := make([][]Expr, len(v.Rows))
		for i, row := range v.Rows {
			cells, err := evalAll(row, lim)
			if err != nil {
				return nil, err
			}
			rows[i] = cells
		}
		return Matrix{Rows: rows}, nil
	case Call:
		return evalCall(v, lim)
	}
	return e, nil
}

func evalAll(in []Expr, lim Limits) ([]Expr, error) {
	out := make([]Expr, len(in))
	for i, e := range in {
		v, err := Eval(e, lim)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func evalCall(c Call, lim Limits) (Expr, error) {
	args, err := evalAll(c.Args, lim)
	if err != nil {
		return nil, err
	}
	switch c.Fn {
	case "d":
		expr, v, err := exprAndVar("d", args)
		if err != nil {
			return nil, err
		}
		return Diff(expr, v)
	case "int":
		expr, v, err := exprAndVar("int", args)
		if err != nil {
			return nil, err
		}
		return Integrate(expr, v)
	case "solve":
		expr, v, err := exprAndVar("solve", args)
		if err != nil {
			return nil, err
		}
		return Solve(expr, v)
	case "dsolve":
		return evalDsolve(args)
	case "N":
		return N(args)
	case "Eq":
		if len(args) != 2 {
			return nil, evalErrorf("Eq", "Eq takes 2 arguments (got %d)", len(args))
		}
		return Eq{Lhs: args[0], Rhs: args[1]}, nil
	case "gcd":
		return applyGcd(args)
	case "lcm":
		return applyLcm(args)
	case "factorial":
		return applyFactorial(args, lim)
	case "isprime":
		return applyIsPrime(args)
	case "factorint":
		return applyFactorint(args)
	case "num":
		return applyNum(args)
	case "den":
		return applyDen(args)
	case "Matrix":
		return applyMatrix(args)
	case "eye":
		return applyEye(args)
	case "zeros":
		return applyFill("zeros", args, Integer(0))
	case "ones":
		return applyFill("ones", args, Integer(1))
	case "det":
		return applyDet(args)
	case "inv":
		return applyInv(args)
	case "rank":
		return applyRank(args)
	case "eigvals":
		return applyEigvals(args)
	}
	// Elementary functions and undefined applications stay symbolic here;
	// Simplify knows their special values.
	return Call{Fn: c.Fn, Args: args}, nil
}

func exprAndVar(op string, args []Expr) (Expr, string, error) {
	if len(args) != 2 {
		return nil, "", evalErrorf(op, "%s takes an expression and a variable (got %d arguments)", op, len(args))
	}
	s, ok := args[1].(Sym)
	if !ok {
		return nil, "", evalErrorf(op, "%s variable must be a symbol, not %s", op, renderPlain(args[1]))
	}
	return args[0], s.Name, nil
}

func evalDsolve(args []Expr) (Expr, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, evalErrorf("dsolve", "dsolve takes an equation and a function like y(x)")
	}
	eq := args[0]
	var dep, iv string
	if len(args) == 2 {
		fn, ok := args[1].(Call)
		if !ok || len(fn.Args) != 1 {
			return nil, evalErrorf("dsolve", "dsolve function argument must look like y(x)")
		}
		s, ok := fn.Args[0].(Sym)
		if !ok {
			return nil, evalErrorf("dsolve", "dsolve function argument must look like y(x)")
		}
		dep, iv = fn.Fn, s.Name
	} else {
		undefs := AppliedUndefs(eq)
		if len(undefs) != 1 {
			return nil, evalErrorf("dsolve", "cannot determine the unknown function; pass it explicitly like dsolve(eq, y(x))")
		}
		fn := undefs[0]
		s, ok := fn.Args[0].(Sym)
		if !ok {
			return nil, evalErrorf("dsolve", "cannot determine the independent variable")
		}
		dep, iv = fn.Fn, s.Name
	}
	return DSolve(eq, dep, iv, nil)
}

// ---------------------------------------------------------------------------
// Order-preserving numeric folding
// ---------------------------------------------------------------------------

func foldAdd(terms []Expr) Expr {
	flat := make([]Expr, 0, len(terms))
	for _, t := range terms {
		if inner, ok := t.(Add); ok {
			flat = append(flat, inner.Terms...)
		} else {
			flat = append(flat, t)
		}
	}
	allNum := true
	for _, t := range flat {
		if _, ok := t.(Num); !ok {
			allNum = false
			break
		}
	}
	if !allNum {
		if len(flat) == 1 {
			return flat[0]
		}
		return Add{Terms: flat}
	}
	sum := new(big.Rat)
	for _, t := range flat {
		sum.Add(sum, t.(Num).Val)
	}
	return Num{Val: sum}
}

func foldMul(factors []Expr) Expr {
	flat := make([]Expr, 0, len(factors))
	for _, f := range factors {
		if inner, ok := f.(Mul); ok {
			flat = append(flat, inner.Factors...)
		} else {
			flat = append(flat, f)
		}
	}
	allNum := true
	for _, f := range flat {
		if _, ok := f.(Num); !ok {
			allNum = false
			break
		}
	}
	if !allNum {
		if len(flat) == 1 {
			return flat[0]
		}
		return Mul{Factors: flat}
	}
	prod := big.NewRat(1, 1)
	for _, f := range flat {
		prod.Mul(prod, f.(Num).Val)
	}
	return Num{Val: prod}
}

func foldPow(p Pow, lim Limits) Expr {
	baseNum, baseOK := p.Base.(Num)
	expNum, expOK := p.Exp.(Num)
	if !baseOK || !expOK || !isInteger(expNum) {
		return p
	}
	s := simplifier{lim: lim}
	if folded, ok := s.foldNumPow(baseNum, expNum); ok {
		return folded
	}
	return p
}

// ---------------------------------------------------------------------------
// Growth inspection
// ---------------------------------------------------------------------------

// PowDepth measures the deepest chain of nested exponents, counting
// operands: x has depth 0, x**2 has depth 2, and 2^3^4^5^6^7 has depth 6
// no matter how the chain associates.
func PowDepth(e Expr) int {
	depth := 0
	switch v := e.(type) {
	case Pow:
		b := PowDepth(v.Base)
		if b == 0 {
			b = 1
		}
		x := PowDepth(v.Exp)
		if x == 0 {
			x = 1
		}
		if x > b {
			b = x
		}
		return b + 1
	case Add:
		for _, t := range v.Terms {
			if d := PowDepth(t); d > depth {
				depth = d
			}
		}
	case Mul:
		for _, f := range v.Factors {
			if d := PowDepth(f); d > depth {
				depth = d
			}
		}
	case Call:
		for _, a := range v.Args {
			if d := PowDepth(a); d > depth {
				depth = d
			}
		}
	case Eq:
		l, r := PowDepth(v.Lhs), PowDepth(v.Rhs)
		if l > r {
			return l
		}
		return r
	case List:
		for _, it := range v.Items {
			if d := PowDepth(it); d > depth {
				depth = d
			}
		}
	case Derivative:
		return PowDepth(v.Expr)
	}
	return depth
}

// CheckGrowth scans a fully simplified result for held power or factorial
// nodes that survived cancellation, meaning the computation really does
// require infeasible expansion.
func CheckGrowth(e Expr, lim Limits) error {
	var found error
	walk(e, func(n Expr) {
		if found != nil {
			return
		}
		switch v := n.(type) {
		case Pow:
			baseNum, ok := v.Base.(Num)
			if !ok {
				return
			}
			expNum, ok := v.Exp.(Num)
			if !ok || !isInteger(expNum) {
				return
			}
			i, _ := intFromNum(expNum)
			abs := new(big.Int).Abs(i)
			if baseNum.Val.Sign() != 0 && (!abs.IsInt64() || abs.Int64() > lim.MaxIntegerExponent) {
				found = evalErrorf("pow", "integer power too large to evaluate exactly")
			}
		case Call:
			if v.Fn != "factorial" || len(v.Args) != 1 {
				return
			}
			arg, ok := v.Args[0].(Num)
			if !ok || !isInteger(arg) {
				return
			}
			i, _ := intFromNum(arg)
			if i.Sign() >= 0 && (!i.IsInt64() || i.Int64() > lim.MaxFactorialArg) {
				found = evalErrorf("factorial", "factorial input too large to evaluate exactly")
			}
		}
	})
	return found
}
