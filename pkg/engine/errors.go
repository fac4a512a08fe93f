// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import "fmt"

// ParseError reports malformed surface syntax.
//
// Pos is a byte offset into the parsed text (-1 if unknown). The message is
// user-facing; it never exposes internal identifiers.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string { return e.Msg }

func parseErrorf(pos int, format string, args ...any) error {
	return &ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// EvalError reports an operation that ran but produced no result, such as
// an integral with no matching pattern or a solver given a non-polynomial.
type EvalError struct {
	Op  string
	Msg string
}

func (e *EvalError) Error() string { return e.Msg }

func evalErrorf(op, format string, args ...any) error {
	return &EvalError{Op: op, Msg: fmt.Sprintf(format, args...)}
}
