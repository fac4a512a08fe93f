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
// Arbitrary-precision numeric evaluation behind the N(expr, digits)
// operation. Symbolic constants and elementary functions are evaluated
// with guard digits so the final rounding to the requested precision is
// stable.

const (
	defaultDigits = 15
	guardDigits   = 10
	maxDigits     = 10000
)

const piDigits = "3.14159265358979323846264338327950288419716939937510582097494459230781640628620899862803482534211707"
const eDigits = "2.71828182845904523536028747135266249775724709369995957496696762772407663035354759457138217852516643"

// N evaluates an expression to a decimal approximation with the requested
// number of significant digits.
func N(args []Expr) (Expr, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, evalErrorf("N", "N takes 1 or 2 arguments (got %d)", len(args))
	}
	digits := defaultDigits
	if len(args) == 2 {
		d, err := wantInt("N", args[1])
		if err != nil {
			return nil, err
		}
		if !d.IsInt64() || d.Int64() < 1 || d.Int64() > maxDigits {
			return nil, evalErrorf("N", "N digits must be between 1 and %d", maxDigits)
		}
		digits = int(d.Int64())
	}
	prec := bitsForDigits(digits + guardDigits)
	v, err := evalNumeric(args[0], prec)
	if err != nil {
		return nil, err
	}
	return Float{Val: v, Digits: digits}, nil
}

// bitsForDigits converts decimal digits to a binary mantissa size.
func bitsForDigits(digits int) uint {
	return uint(float64(digits)*3.3219280948873626) + 8
}

func evalNumeric(e Expr, prec uint) (*big.Float, error) {
	switch v := e.(type) {
	case Num:
		return new(big.Float).SetPrec(prec).SetRat(v.Val), nil
	case Float:
		return new(big.Float).SetPrec(prec).Set(v.Val), nil
	case Sym:
		switch v.Name {
		case "pi":
			return constFromDecimal(piDigits, prec), nil
		case "E", "e":
			return constFromDecimal(eDigits, prec), nil
		}
		return nil, evalErrorf("N", "cannot evaluate symbol %s numerically", v.Name)
	case Add:
		sum := new(big.Float).SetPrec(prec)
		for _, t := range v.Terms {
			f, err := evalNumeric(t, prec)
			if err != nil {
				return nil, err
			}
			sum.Add(sum, f)
		}
		return sum, nil
	case Mul:
		prod := new(big.Float).SetPrec(prec).SetInt64(1)
		for _, f := range v.Factors {
			x, err := evalNumeric(f, prec)
			if err != nil {
				return nil, err
			}
			prod.Mul(prod, x)
		}
		return prod, nil
	case Pow:
		return evalNumericPow(v, prec)
	case Call:
		return evalNumericCall(v, prec)
	}
	return nil, evalErrorf("N", "cannot evaluate %s numerically", renderPlain(e))
}

func evalNumericPow(p Pow, prec uint) (*big.Float, error) {
	base, err := evalNumeric(p.Base, prec)
	if err != nil {
		return nil, err
	}
	if n, ok := p.Exp.(Num); ok && isInteger(n) {
		i, _ := intFromNum(n)
		if i.IsInt64() {
			return floatIntPow(base, i.Int64(), prec), nil
		}
	}
	exp, err := evalNumeric(p.Exp, prec)
	if err != nil {
		return nil, err
	}
	if base.Sign() <= 0 {
		return nil, evalErrorf("N", "cannot evaluate %s numerically", renderPlain(p))
	}
	// b^e = exp(e * log b)
	return floatExp(new(big.Float).SetPrec(prec).Mul(exp, floatLog(base, prec)), prec), nil
}

func floatIntPow(base *big.Float, e int64, prec uint) *big.Float {
	neg := e < 0
	if neg {
		e = -e
	}
	out := new(big.Float).SetPrec(prec).SetInt64(1)
	acc := new(big.Float).SetPrec(prec).Set(base)
	for e > 0 {
		if e&1 == 1 {
			out.Mul(out, acc)
		}
		acc.Mul(acc, acc)
		e >>= 1
	}
	if neg {
		out.Quo(new(big.Float).SetPrec(prec).SetInt64(1), out)
	}
	return out
}

func evalNumericCall(c Call, prec uint) (*big.Float, error) {
	if len(c.Args) != 1 {
		return nil, evalErrorf("N", "cannot evaluate %s numerically", renderPlain(c))
	}
	x, err := evalNumeric(c.Args[0], prec)
	if err != nil {
		return nil, err
	}
	switch c.Fn {
	case "sin":
		return floatSin(x, prec), nil
	case "cos":
		return floatCos(x, prec), nil
	case "tan":
		cosv := floatCos(x, prec)
		if cosv.Sign() == 0 {
			return nil, evalErrorf("N", "tan is undefined at this point")
		}
		return new(big.Float).SetPrec(prec).Quo(floatSin(x, prec), cosv), nil
	case "exp":
		return floatExp(x, prec), nil
	case "log":
		if x.Sign() <= 0 {
			return nil, evalErrorf("N", "log expects a positive argument")
		}
		return floatLog(x, prec), nil
	case "sqrt":
		if x.Sign() < 0 {
			return nil, evalErrorf("N", "sqrt expects a nonnegative argument")
		}
		return new(big.Float).SetPrec(prec).Sqrt(x), nil
	case "abs":
		return new(big.Float).SetPrec(prec).Abs(x), nil
	}
	return nil, evalErrorf("N", "cannot evaluate %s numerically", renderPlain(c))
}

// floatExp sums the Taylor series after range reduction by halving.
func floatExp(x *big.Float, prec uint) *big.Float {
	wp := prec + 32
	v := new(big.Float).SetPrec(wp).Set(x)
	halvings := 0
	two := new(big.Float).SetPrec(wp).SetInt64(2)
	for new(big.Float).Abs(v).Cmp(new(big.Float).SetFloat64(0.5)) > 0 {
		v.Quo(v, two)
		halvings++
	}
	sum := new(big.Float).SetPrec(wp).SetInt64(1)
	term := new(big.Float).SetPrec(wp).SetInt64(1)
	for k := int64(1); ; k++ {
		term.Mul(term, v)
		term.Quo(term, new(big.Float).SetPrec(wp).SetInt64(k))
		sum.Add(sum, term)
		if negligible(term, sum, wp) {
			break
		}
	}
	for i := 0; i < halvings; i++ {
		sum.Mul(sum, sum)
	}
	return sum.SetPrec(prec)
}

// floatLog uses atanh series on (x-1)/(x+1) after scaling x into [0.5, 2).
func floatLog(x *big.Float, prec uint) *big.Float {
	wp := prec + 32
	v := new(big.Float).SetPrec(wp).Set(x)
	two := new(big.Float).SetPrec(wp).SetInt64(2)
	half := new(big.Float).SetPrec(wp).SetFloat64(0.5)
	scale := int64(0)
	for v.Cmp(two) >= 0 {
		v.Quo(v, two)
		scale++
	}
	for v.Cmp(half) < 0 {
		v.Mul(v, two)
		scale--
	}
	num := new(big.Float).SetPrec(wp).Sub(v, one(wp))
	den := new(big.Float).SetPrec(wp).Add(v, one(wp))
	z := new(big.Float).SetPrec(wp).Quo(num, den)
	z2 := new(big.Float).SetPrec(wp).Mul(z, z)
	sum := new(big.Float).SetPrec(wp).Set(z)
	term := new(big.Float).SetPrec(wp).Set(z)
	for k := int64(3); ; k += 2 {
		term.Mul(term, z2)
		piece := new(big.Float).SetPrec(wp).Quo(term, new(big.Float).SetPrec(wp).SetInt64(k))
		sum.Add(sum, piece)
		if negligible(piece, sum, wp) {
			break
		}
	}
	sum.Mul(sum, two)
	if scale != 0 {
		ln2 := logTwo(wp)
		sum.Add(sum, new(big.Float).SetPrec(wp).Mul(ln2, new(big.Float).SetPrec(wp).SetInt64(scale)))
	}
	return sum.SetPrec(prec)
}

func logTwo(prec uint) *big.Float {
	// log 2 = 2 * atanh(1/3)
	wp := prec + 16
	third := new(big.Float).SetPrec(wp).Quo(one(wp), new(big.Float).SetPrec(wp).SetInt64(3))
	z2 := new(big.Float).SetPrec(wp).Mul(third, third)
	sum := new(big.Float).SetPrec(wp).Set(third)
	term := new(big.Float).SetPrec(wp).Set(third)
	for k := int64(3); ; k += 2 {
		term.Mul(term, z2)
		piece := new(big.Float).SetPrec(wp).Quo(term, new(big.Float).SetPrec(wp).SetInt64(k))
		sum.Add(sum, piece)
		if negligible(piece, sum, wp) {
			break
		}
	}
	return sum.Mul(sum, new(big.Float).SetPrec(wp).SetInt64(2)).SetPrec(prec)
}

func floatSin(x *big.Float, prec uint) *big.Float {
	return sinCos(x, prec, true)
}

func floatCos(x *big.Float, prec uint) *big.Float {
	return sinCos(x, prec, false)
}

// sinCos reduces mod 2*pi and sums the alternating Taylor series.
func sinCos(x *big.Float, prec uint, wantSin bool) *big.Float {
	wp := prec + 48
	pi := constFromDecimal(piDigits, wp)
	twoPi := new(big.Float).SetPrec(wp).Mul(pi, new(big.Float).SetPrec(wp).SetInt64(2))
	v := new(big.Float).SetPrec(wp).Set(x)
	q := new(big.Float).SetPrec(wp).Quo(v, twoPi)
	qi, _ := q.Int(nil)
	v.Sub(v, new(big.Float).SetPrec(wp).Mul(twoPi, new(big.Float).SetPrec(wp).SetInt(qi)))

	v2 := new(big.Float).SetPrec(wp).Mul(v, v)
	var sum, term *big.Float
	var k int64
	if wantSin {
		sum = new(big.Float).SetPrec(wp).Set(v)
		term = new(big.Float).SetPrec(wp).Set(v)
		k = 1
	} else {
		sum = one(wp)
		term = one(wp)
		k = 0
	}
	for {
		term.Mul(term, v2)
		term.Quo(term, new(big.Float).SetPrec(wp).SetInt64((k+1)*(k+2)))
		term.Neg(term)
		sum.Add(sum, term)
		k += 2
		if negligible(term, sum, wp) {
			break
		}
	}
	return sum.SetPrec(prec)
}

func one(prec uint) *big.Float {
	return new(big.Float).SetPrec(prec).SetInt64(1)
}

func negligible(term, sum *big.Float, prec uint) bool {
	if term.Sign() == 0 {
		return true
	}
	if sum.Sign() == 0 {
		return false
	}
	return term.MantExp(nil) < sum.MantExp(nil)-int(prec)
}

func constFromDecimal(s string, prec uint) *big.Float {
	f, _, err := big.ParseFloat(s, 10, prec, big.ToNearestEven)
	if err != nil {
		panic("engine: bad constant literal")
	}
	return f
}
