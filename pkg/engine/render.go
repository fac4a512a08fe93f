// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"math/big"
	"strings"
)

// Format selects an output rendering.
type Format int

const (
	// FormatPlain is the canonical machine-friendly text form (x**2, 1/2).
	FormatPlain Format = iota
	// FormatPretty is plain text with ^ powers for human reading.
	FormatPretty
	// FormatLaTeX is raw LaTeX with no delimiters.
	FormatLaTeX
	// FormatLaTeXInline wraps LaTeX as $...$.
	FormatLaTeXInline
	// FormatLaTeXBlock wraps LaTeX as $$...$$.
	FormatLaTeXBlock
)

// Render produces the textual form of an expression.
func Render(e Expr, f Format) string {
	switch f {
	case FormatPretty:
		r := renderer{pow: "^"}
		return r.render(e, false)
	case FormatLaTeX:
		return renderLaTeX(e)
	case FormatLaTeXInline:
		return "$" + renderLaTeX(e) + "$"
	case FormatLaTeXBlock:
		return "$$\n" + renderLaTeX(e) + "\n$$"
	default:
		return renderPlain(e)
	}
}

func renderPlain(e Expr) string {
	r := renderer{pow: "**"}
	return r.render(e, false)
}

type renderer struct {
	pow string
}

// render produces the text form; wrapped requests parentheses around
// compound expressions (sums, signed products).
func (r renderer) render(e Expr, wrapped bool) string {
	switch v := e.(type) {
	case Num:
		return ratString(v.Val)
	case Float:
		return v.Val.Text('g', v.Digits)
	case Sym:
		return v.Name
	case Call:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = r.render(a, false)
		}
		return v.Fn + "(" + strings.Join(args, ", ") + ")"
	case Add:
		out := r.renderAdd(v)
		if wrapped {
			return "(" + out + ")"
		}
		return out
	case Mul:
		out := r.renderMul(v)
		if wrapped && (strings.HasPrefix(out, "-") || strings.Contains(out, "*") || strings.Contains(out, "/")) {
			return "(" + out + ")"
		}
		return out
	case Pow:
		return r.renderPow(v)
	case Eq:
		return "Eq(" + r.render(v.Lhs, false) + ", " + r.render(v.Rhs, false) + ")"
	case Derivative:
		inner := r.render(v.Expr, false)
		if v.Order == 1 {
			return "Derivative(" + inner + ", " + v.Var.Name + ")"
		}
		return "Derivative(" + inner + ", (" + v.Var.Name + ", " + itoa(v.Order) + "))"
	case List:
		items := make([]string, len(v.Items))
		for i, it := range v.Items {
			items[i] = r.render(it, false)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case Dict:
		pairs := make([]string, len(v.Keys))
		for i := range v.Keys {
			pairs[i] = r.render(v.Keys[i], false) + ": " + r.render(v.Vals[i], false)
		}
		return "{" + strings.Join(pairs, ", ") + "}"
	case Matrix:
		rows := make([]string, len(v.Rows))
		for i, row := range v.Rows {
			cells := make([]string, len(row))
			for j, cell := range row {
				cells[j] = r.render(cell, false)
			}
			rows[i] = "[" + strings.Join(cells, ", ") + "]"
		}
		return "Matrix([" + strings.Join(rows, ", ") + "])"
	default:
		return "?"
	}
}

func (r renderer) renderAdd(a Add) string {
	var b strings.Builder
	for i, t := range a.Terms {
		s := r.render(t, false)
		if i == 0 {
			b.WriteString(s)
			continue
		}
		if strings.HasPrefix(s, "-") {
			b.WriteString(" - ")
			b.WriteString(s[1:])
		} else {
			b.WriteString(" + ")
			b.WriteString(s)
		}
	}
	return b.String()
}

// renderMul prints a product with its rational coefficient first and
// reciprocal factors gathered into a denominator: (1/2)*x^2 prints as
// "x**2/2", x^-1 as "1/x".
func (r renderer) renderMul(m Mul) string {
	coeff := big.NewRat(1, 1)
	var numParts, denParts []string
	for _, f := range m.Factors {
		switch v := f.(type) {
		case Num:
			coeff.Mul(coeff, v.Val)
		case Pow:
			if n, ok := v.Exp.(Num); ok && isInteger(n) && n.Val.Sign() < 0 {
				inverted := Pow{Base: v.Base, Exp: Num{Val: new(big.Rat).Neg(n.Val)}}
				if one, ok := inverted.Exp.(Num); ok && one.Val.Cmp(big.NewRat(1, 1)) == 0 {
					denParts = append(denParts, r.render(v.Base, true))
				} else {
					denParts = append(denParts, r.renderPow(inverted))
				}
				continue
			}
			numParts = append(numParts, r.renderPow(v))
		default:
			numParts = append(numParts, r.render(f, true))
		}
	}

	neg := coeff.Sign() < 0
	abs := new(big.Rat).Abs(coeff)
	if abs.Num().Cmp(big.NewInt(1)) != 0 || len(numParts) == 0 {
		numParts = append([]string{abs.Num().String()}, numParts...)
	}
	if abs.Denom().Cmp(big.NewInt(1)) != 0 {
		denParts = append(denParts, abs.Denom().String())
	}

	out := strings.Join(numParts, "*")
	if len(denParts) == 1 {
		out += "/" + denParts[0]
	} else if len(denParts) > 1 {
		out += "/(" + strings.Join(denParts, "*") + ")"
	}
	if neg {
		out = "-" + out
	}
	return out
}

func (r renderer) renderPow(p Pow) string {
	baseStr := r.render(p.Base, true)
	switch p.Base.(type) {
	case Pow:
		baseStr = "(" + baseStr + ")"
	case Num:
		if strings.Contains(baseStr, "/") || strings.HasPrefix(baseStr, "-") {
			baseStr = "(" + baseStr + ")"
		}
	}
	expStr := r.render(p.Exp, true)
	if strings.HasPrefix(expStr, "-") || strings.Contains(expStr, "/") {
		expStr = "(" + expStr + ")"
	}
	return baseStr + r.pow + expStr
}

func ratString(v *big.Rat) string {
	if v.IsInt() {
		return v.Num().String()
	}
	return v.Num().String() + "/" + v.Denom().String()
}

func itoa(n int) string {
	return new(big.Int).SetInt64(int64(n)).String()
}

// ---------------------------------------------------------------------------
// LaTeX
// ---------------------------------------------------------------------------

var latexFuncs = map[string]string{
	"sin": `\sin`,
	"cos": `\cos`,
	"tan": `\tan`,
	"log": `\log`,
}

func renderLaTeX(e Expr) string {
	switch v := e.(type) {
	case Num:
		if v.Val.IsInt() {
			return v.Val.Num().String()
		}
		return `\frac{` + v.Val.Num().String() + `}{` + v.Val.Denom().String() + `}`
	case Float:
		return v.Val.Text('g', v.Digits)
	case Sym:
		switch v.Name {
		case "pi":
			return `\pi`
		case "E":
			return "e"
		default:
			return v.Name
		}
	case Call:
		return latexCall(v)
	case Add:
		var b strings.Builder
		for i, t := range v.Terms {
			s := renderLaTeX(t)
			if i == 0 {
				b.WriteString(s)
				continue
			}
			if strings.HasPrefix(s, "-") {
				b.WriteString(" - ")
				b.WriteString(s[1:])
			} else {
				b.WriteString(" + ")
				b.WriteString(s)
			}
		}
		return b.String()
	case Mul:
		return latexMul(v)
	case Pow:
		baseStr := renderLaTeX(v.Base)
		switch v.Base.(type) {
		case Add, Mul, Pow:
			baseStr = `\left(` + baseStr + `\right)`
		}
		return baseStr + "^{" + renderLaTeX(v.Exp) + "}"
	case Eq:
		return renderLaTeX(v.Lhs) + " = " + renderLaTeX(v.Rhs)
	case Derivative:
		varName := v.Var.Name
		inner := renderLaTeX(v.Expr)
		if v.Order == 1 {
			return `\frac{d}{d ` + varName + `} ` + inner
		}
		n := itoa(v.Order)
		return `\frac{d^{` + n + `}}{d ` + varName + `^{` + n + `}} ` + inner
	case List:
		items := make([]string, len(v.Items))
		for i, it := range v.Items {
			items[i] = renderLaTeX(it)
		}
		return `\left[ ` + strings.Join(items, `, \  `) + `\right]`
	case Dict:
		pairs := make([]string, len(v.Keys))
		for i := range v.Keys {
			pairs[i] = renderLaTeX(v.Keys[i]) + ` : ` + renderLaTeX(v.Vals[i])
		}
		return `\left\{ ` + strings.Join(pairs, `, \  `) + `\right\}`
	case Matrix:
		rows := make([]string, len(v.Rows))
		for i, row := range v.Rows {
			cells := make([]string, len(row))
			for j, cell := range row {
				cells[j] = renderLaTeX(cell)
			}
			rows[i] = strings.Join(cells, " & ")
		}
		return `\begin{bmatrix}` + strings.Join(rows, `\\`) + `\end{bmatrix}`
	default:
		return "?"
	}
}

func latexCall(c Call) string {
	if len(c.Args) == 1 {
		arg := renderLaTeX(c.Args[0])
		switch c.Fn {
		case "sqrt":
			return `\sqrt{` + arg + `}`
		case "exp":
			return "e^{" + arg + "}"
		case "abs":
			return `\left|` + arg + `\right|`
		}
		if name, ok := latexFuncs[c.Fn]; ok {
			return name + `\left(` + arg + `\right)`
		}
	}
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = renderLaTeX(a)
	}
	return c.Fn + `\left(` + strings.Join(args, ", ") + `\right)`
}

func latexMul(m Mul) string {
	coeff := big.NewRat(1, 1)
	var parts []string
	var denomParts []string
	for _, f := range m.Factors {
		switch v := f.(type) {
		case Num:
			coeff.Mul(coeff, v.Val)
		case Pow:
			if n, ok := v.Exp.(Num); ok && isInteger(n) && n.Val.Sign() < 0 {
				exp := new(big.Rat).Neg(n.Val)
				if exp.Cmp(big.NewRat(1, 1)) == 0 {
					denomParts = append(denomParts, renderLaTeX(v.Base))
				} else {
					denomParts = append(denomParts, renderLaTeX(Pow{Base: v.Base, Exp: Num{Val: exp}}))
				}
				continue
			}
			parts = append(parts, renderLaTeX(v))
		case Add:
			parts = append(parts, `\left(`+renderLaTeX(v)+`\right)`)
		default:
			parts = append(parts, renderLaTeX(f))
		}
	}

	neg := coeff.Sign() < 0
	abs := new(big.Rat).Abs(coeff)
	if abs.Num().Cmp(big.NewInt(1)) != 0 || len(parts) == 0 {
		parts = append([]string{abs.Num().String()}, parts...)
	}
	if abs.Denom().Cmp(big.NewInt(1)) != 0 {
		denomParts = append(denomParts, abs.Denom().String())
	}

	out := strings.Join(parts, " ")
	if len(denomParts) > 0 {
		out = `\frac{` + out + `}{` + strings.Join(denomParts, " ") + `}`
	}
	if neg {
		out = "-" + out
	}
	return out
}
