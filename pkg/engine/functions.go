// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import "math/big"

func applyGcd(args []Expr) (Expr, error) {
	return applyIntPair("gcd", args, func(a, b *big.Int) *big.Int {
		return new(big.Int).GCD(nil, nil, new(big.Int).Abs(a), new(big.Int).Abs(b))
	})
}

func applyLcm(args []Expr) (Expr, error) {
	return applyIntPair("lcm", args, func(a, b *big.Int) *big.Int {
		if a.Sign() == 0 || b.Sign() == 0 {
			return big.NewInt(0)
		}
		g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(a), new(big.Int).Abs(b))
		out := new(big.Int).Mul(new(big.Int).Abs(a), new(big.Int).Abs(b))
		return out.Div(out, g)
	})
}

func applyIntPair(op string, args []Expr, fn func(a, b *big.Int) *big.Int) (Expr, error) {
	if len(args) != 2 {
		return nil, evalErrorf(op, "%s takes 2 arguments (got %d)", op, len(args))
	}
	a, err := wantInt(op, args[0])
	if err != nil {
		return nil, err
	}
	b, err := wantInt(op, args[1])
	if err != nil {
		return nil, err
	}
	return Num{Val: new(big.Rat).SetInt(fn(a, b))}, nil
}

func wantInt(op string, e Expr) (*big.Int, error) {
	n, ok := e.(Num)
	if !ok {
		return nil, evalErrorf(op, "%s is not an integer", renderPlain(e))
	}
	i, ok := intFromNum(n)
	if !ok {
		return nil, evalErrorf(op, "%s is not an integer", renderPlain(e))
	}
	return i, nil
}

// applyFactorial computes n! when n is a tractable integer; above the limit
// the call is left in symbolic form for the growth guard to judge after
// cancellation.
func applyFactorial(args []Expr, lim Limits) (Expr, error) {
	if len(args) != 1 {
		return nil, evalErrorf("factorial", "factorial takes 1 argument (got %d)", len(args))
	}
	n, ok := args[0].(Num)
	if !ok || !isInteger(n) {
		return Call{Fn: "factorial", Args: args}, nil
	}
	i, _ := intFromNum(n)
	if i.Sign() < 0 {
		return nil, evalErrorf("factorial", "factorial of a negative integer is undefined")
	}
	if !i.IsInt64() || i.Int64() > lim.MaxFactorialArg {
		return Call{Fn: "factorial", Args: args}, nil
	}
	v := i.Int64()
	if v == 0 {
		return Integer(1), nil
	}
	return Num{Val: new(big.Rat).SetInt(new(big.Int).MulRange(1, v))}, nil
}

func applyIsPrime(args []Expr) (Expr, error) {
	if len(args) != 1 {
		return nil, evalErrorf("isprime", "isprime takes 1 argument (got %d)", len(args))
	}
	i, err := wantInt("isprime", args[0])
	if err != nil {
		return nil, err
	}
	if i.Sign() <= 0 {
		return Sym{Name: "False"}, nil
	}
	if i.ProbablyPrime(32) {
		return Sym{Name: "True"}, nil
	}
	return Sym{Name: "False"}, nil
}

// factorintBound caps trial division so that factorint stays sub-second even
// for adversarial inputs.
var factorintBound = big.NewInt(1_000_000)

func applyFactorint(args []Expr) (Expr, error) {
	if len(args) != 1 {
		return nil, evalErrorf("factorint", "factorint takes 1 argument (got %d)", len(args))
	}
	n, err := wantInt("factorint", args[0])
	if err != nil {
		return nil, err
	}
	if n.Sign() <= 0 {
		return nil, evalErrorf("factorint", "factorint expects a positive integer")
	}

	rest := new(big.Int).Set(n)
	var keys, vals []Expr
	appendFactor := func(p *big.Int, count int64) {
		keys = append(keys, Num{Val: new(big.Rat).SetInt(new(big.Int).Set(p))})
		vals = append(vals, Integer(count))
	}

	two := big.NewInt(2)
	count := int64(0)
	for new(big.Int).Mod(rest, two).Sign() == 0 {
		rest.Div(rest, two)
		count++
	}
	if count > 0 {
		appendFactor(two, count)
	}

	p := big.NewInt(3)
	for p.Cmp(factorintBound) <= 0 {
		sq := new(big.Int).Mul(p, p)
		if sq.Cmp(rest) > 0 {
			break
		}
		count = 0
		for new(big.Int).Mod(rest, p).Sign() == 0 {
			rest.Div(rest, p)
			count++
		}
		if count > 0 {
			appendFactor(p, count)
		}
		p.Add(p, two)
	}

	one := big.NewInt(1)
	if rest.Cmp(one) != 0 {
		if !rest.ProbablyPrime(32) {
			return nil, evalErrorf("factorint", "factorint input has factors beyond the trial-division bound")
		}
		appendFactor(rest, 1)
	}
	return Dict{Keys: keys, Vals: vals}, nil
}

func applyNum(args []Expr) (Expr, error) {
	if len(args) != 1 {
		return nil, evalErrorf("num", "num takes 1 argument (got %d)", len(args))
	}
	n, ok := args[0].(Num)
	if !ok {
		return nil, evalErrorf("num", "num expects a rational value")
	}
	return Num{Val: new(big.Rat).SetInt(n.Val.Num())}, nil
}

func applyDen(args []Expr) (Expr, error) {
	if len(args) != 1 {
		return nil, evalErrorf("den", "den takes 1 argument (got %d)", len(args))
	}
	n, ok := args[0].(Num)
	if !ok {
		return nil, evalErrorf("den", "den expects a rational value")
	}
	return Num{Val: new(big.Rat).SetInt(n.Val.Denom())}, nil
}
