// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

// The parser resolves names only through an explicit capability table.
// There is no ambient namespace: a name that is not a listed symbol, a
// listed function, or a session binding does not exist, no matter what
// the host process has in scope.

// knownFunctions are elementary functions the engine understands. Any other
// applied name (y(x), f(t)) stays symbolic as an undefined application.
var knownFunctions = map[string]bool{
	"sin":  true,
	"cos":  true,
	"tan":  true,
	"exp":  true,
	"log":  true,
	"sqrt": true,
	"abs":  true,
}

// operationNames are the operation handles reachable from user text.
var operationNames = map[string]bool{
	"d":         true,
	"int":       true,
	"solve":     true,
	"dsolve":    true,
	"N":         true,
	"Eq":        true,
	"gcd":       true,
	"lcm":       true,
	"factorial": true,
	"isprime":   true,
	"factorint": true,
	"num":       true,
	"den":       true,
	"Matrix":    true,
	"eye":       true,
	"zeros":     true,
	"ones":      true,
	"det":       true,
	"inv":       true,
	"rank":      true,
	"eigvals":   true,
}

// bareSymbols are the identifiers that resolve to free symbols when written
// without an argument list. f is included for function notation in ODEs.
var bareSymbols = map[string]bool{
	"x": true,
	"y": true,
	"z": true,
	"t": true,
	"f": true,
}

// Namespace is the immutable capability table handed to Parse. Session
// bindings layer on top of the fixed tables; they can never shadow them.
type Namespace struct {
	bindings map[string]Expr
}

// NewNamespace builds a capability table with the given session bindings.
// A nil map is a valid empty session.
func NewNamespace(bindings map[string]Expr) *Namespace {
	copied := make(map[string]Expr, len(bindings))
	for k, v := range bindings {
		copied[k] = v
	}
	return &Namespace{bindings: copied}
}

// Reserved reports whether name belongs to the fixed capability table and
// therefore cannot be used as an assignment target.
func Reserved(name string) bool {
	if knownFunctions[name] || operationNames[name] || bareSymbols[name] {
		return true
	}
	return name == "pi" || name == "e" || name == "E"
}

// lookup resolves a bare identifier. Fixed names win over session bindings.
func (ns *Namespace) lookup(name string) (Expr, bool) {
	switch {
	case name == "pi":
		return Sym{Name: "pi"}, true
	case name == "e" || name == "E":
		return Sym{Name: "E"}, true
	case bareSymbols[name]:
		return Sym{Name: name}, true
	}
	if ns != nil {
		if v, ok := ns.bindings[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Limits bounds what the engine will expand eagerly. Integer powers above
// MaxIntegerExponent and factorials above MaxFactorialArg are left in
// symbolic form instead of being computed; the caller decides what to do
// with survivors after simplification.
type Limits struct {
	MaxIntegerExponent int64
	MaxFactorialArg    int64
	MaxPowDepth        int
}

// DefaultLimits are the stock growth limits. The exact cutoffs are policy,
// not behavior; only the fail-fast/pass-through boundary is contractual.
func DefaultLimits() Limits {
	return Limits{
		MaxIntegerExponent: 10000,
		MaxFactorialArg:    10000,
		MaxPowDepth:        5,
	}
}
