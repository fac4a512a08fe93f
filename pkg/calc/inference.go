// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package calc

import (
	"github.com/AleutianAI/symshell/pkg/diagnostics"
	"github.com/AleutianAI/symshell/pkg/engine"
)

// # Description
//
// Variable inference for derivative, integral and solve calls written
// without a variable. The rule is a pure function of the free-symbol set: an
// explicit variable always wins; otherwise exactly one free symbol is
// required. Zero or several candidates fail loudly; the pipeline never
// guesses among candidates and never defaults to x.

// fillInferredVariables rewrites one-argument d(...), int(...) and
// solve(...) calls to their two-argument form.
func fillInferredVariables(e engine.Expr, explicit string) (engine.Expr, *Failure) {
	switch v := e.(type) {
	case engine.Call:
		args := make([]engine.Expr, len(v.Args))
		for i, a := range v.Args {
			filled, fail := fillInferredVariables(a, explicit)
			if fail != nil {
				return nil, fail
			}
			args[i] = filled
		}
		if (v.Fn == "d" || v.Fn == "int" || v.Fn == "solve") && len(args) == 1 {
			variable, fail := resolveVariable(v.Fn, args[0], explicit)
			if fail != nil {
				return nil, fail
			}
			args = append(args, engine.Sym{Name: variable})
		}
		return engine.Call{Fn: v.Fn, Args: args}, nil
	case engine.Add:
		terms, fail := fillAll(v.Terms, explicit)
		if fail != nil {
			return nil, fail
		}
		return engine.Add{Terms: terms}, nil
	case engine.Mul:
		factors, fail := fillAll(v.Factors, explicit)
		if fail != nil {
			return nil, fail
		}
		return engine.Mul{Factors: factors}, nil
	case engine.Pow:
		base, fail := fillInferredVariables(v.Base, explicit)
		if fail != nil {
			return nil, fail
		}
		exp, fail := fillInferredVariables(v.Exp, explicit)
		if fail != nil {
			return nil, fail
		}
		return engine.Pow{Base: base, Exp: exp}, nil
	case engine.Eq:
		lhs, fail := fillInferredVariables(v.Lhs, explicit)
		if fail != nil {
			return nil, fail
		}
		rhs, fail := fillInferredVariables(v.Rhs, explicit)
		if fail != nil {
			return nil, fail
		}
		return engine.Eq{Lhs: lhs, Rhs: rhs}, nil
	case engine.List:
		items, fail := fillAll(v.Items, explicit)
		if fail != nil {
			return nil, fail
		}
		return engine.List{Items: items}, nil
	default:
		return e, nil
	}
}

func fillAll(in []engine.Expr, explicit string) ([]engine.Expr, *Failure) {
	out := make([]engine.Expr, len(in))
	for i, e := range in {
		filled, fail := fillInferredVariables(e, explicit)
		if fail != nil {
			return nil, fail
		}
		out[i] = filled
	}
	return out, nil
}

// resolveVariable picks the variable of operation for op applied to expr.
func resolveVariable(op string, expr engine.Expr, explicit string) (string, *Failure) {
	if explicit != "" {
		return explicit, nil
	}
	free := engine.FreeSymbols(expr)
	switch len(free) {
	case 1:
		return free[0], nil
	case 0:
		return "", failf(diagnostics.KindAmbiguity, "%s requires a variable (no symbols found)", op)
	default:
		return "", failf(diagnostics.KindAmbiguity, "ambiguous variable for %s; pass one explicitly", op)
	}
}
