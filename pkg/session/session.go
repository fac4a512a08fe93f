// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package session holds the REPL's mutable state: the variable bindings,
// the running answer, and the tutorial cursor. One Session value is
// threaded through the loop by reference, so the pipeline can be tested
// by constructing a Session directly without driving a terminal.
package session

import (
	"github.com/AleutianAI/symshell/pkg/engine"
	"github.com/google/uuid"
)

// State is the REPL state machine's current mode.
type State int

const (
	// StateIdle is normal evaluation.
	StateIdle State = iota
	// StateTutorial means a guided walkthrough is in progress.
	StateTutorial
)

// Session is the whole of the REPL's mutable state.
type Session struct {
	ID       string
	bindings map[string]engine.Expr
	ans      engine.Expr
	state    State
	cursor   int
}

// New creates an empty idle session with a fresh id.
func New() *Session {
	return &Session{
		ID:       uuid.NewString(),
		bindings: map[string]engine.Expr{},
	}
}

// Bindings returns the names visible to the parser, including ans when an
// answer exists. The returned map is a copy; mutating it does not touch
// the session.
func (s *Session) Bindings() map[string]engine.Expr {
	out := make(map[string]engine.Expr, len(s.bindings)+1)
	for k, v := range s.bindings {
		out[k] = v
	}
	if s.ans != nil {
		out["ans"] = s.ans
	}
	return out
}

// Bind records a variable assignment and updates ans to the bound value.
func (s *Session) Bind(name string, value engine.Expr) {
	s.bindings[name] = value
	s.ans = value
}

// SetAns records the result of a successful evaluation.
func (s *Session) SetAns(value engine.Expr) {
	s.ans = value
}

// Ans returns the last successful result, or nil before any evaluation.
func (s *Session) Ans() engine.Expr {
	return s.ans
}

// State reports the current machine state.
func (s *Session) State() State {
	return s.state
}
