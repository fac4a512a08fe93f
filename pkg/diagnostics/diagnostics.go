// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package diagnostics converts pipeline failures into the one-line
// message plus optional one-line hint the user actually sees. No failure
// leaves this package as a stack trace or an internal identifier.
package diagnostics

import (
	"net/url"
	"strings"
)

// Kind classifies a failure for reporting policy.
type Kind int

const (
	// KindGuardrail covers blocked or oversized input and growth-budget
	// rejections. Deterministic and local.
	KindGuardrail Kind = iota
	// KindParse covers malformed surface syntax.
	KindParse
	// KindAmbiguity covers variable inference and shorthand ambiguity.
	KindAmbiguity
	// KindEvaluation covers engine failures on well-formed input.
	KindEvaluation
	// KindUnknownCommand covers unrecognized REPL directives.
	KindUnknownCommand
)

// Diagnostic is the user-facing form of a failure (or of a post-success
// informational hint). Message renders as "E: <msg>", Hint as
// "hint: <msg>"; both go to stderr.
type Diagnostic struct {
	Kind              Kind
	Message           string
	Hint              string
	SuppressReference bool
}

// ErrorLine renders the message with the fixed error marker.
func (d Diagnostic) ErrorLine() string {
	return "E: " + d.Message
}

// HintLine renders the hint with the fixed hint marker, or "" when the
// diagnostic carries no hint.
func (d Diagnostic) HintLine() string {
	if d.Hint == "" {
		return ""
	}
	return "hint: " + d.Hint
}

// Explain builds the diagnostic for a failure. expr is the raw input line,
// used to pick syntax-specific hints.
func Explain(kind Kind, err error, expr string) Diagnostic {
	msg := err.Error()
	return Diagnostic{
		Kind:              kind,
		Message:           msg,
		Hint:              HintFor(msg, expr),
		SuppressReference: suppressReference(kind, msg),
	}
}

// suppressReference disables the external-reference hint for failures that
// are local and fully explainable: guardrail rejections and reserved-name
// assignment errors.
func suppressReference(kind Kind, msg string) bool {
	if kind == KindGuardrail || kind == KindUnknownCommand {
		return true
	}
	text := strings.ToLower(msg)
	switch {
	case strings.Contains(text, "cannot assign reserved name"),
		strings.Contains(text, "integer power too large to evaluate exactly"),
		strings.Contains(text, "factorial input too large to evaluate exactly"):
		return true
	}
	return false
}

// ReferenceURL builds the external lookup link for an expression.
func ReferenceURL(expr string) string {
	return "https://www.wolframalpha.com/input?i=" + url.QueryEscape(expr)
}

// complexMarkers flag expressions worth an informational lookup link even
// on success.
var complexMarkers = []string{"d(", "int(", "solve(", "dsolve(", "Eq(", "ln(", "log(", "^", "{", "}"}

// IsComplexExpression applies the fixed structural heuristic used to decide
// whether a successful result gets an informational reference hint.
func IsComplexExpression(expr string) bool {
	if len(expr) >= 40 {
		return true
	}
	for _, m := range complexMarkers {
		if strings.Contains(expr, m) {
			return true
		}
	}
	return false
}
