// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package session

// tutorialSteps is the guided walkthrough, one screen per step.
var tutorialSteps = []string{
	"step 1/6\n  run: 1/3 + 1/6\n  expect: 1/2",
	"step 2/6\n  run: d(x^3 + 2*x, x)\n  expect: 3*x**2 + 2",
	"step 3/6\n  run: int(sin(x), x)\n  expect: -cos(x)",
	"step 4/6\n  run: dy/dx = y\n  expect: Eq(y(x), Derivative(y(x), x))",
	"step 5/6\n  run: dsolve(Eq(d(y(x), x), y(x)), y(x))\n  expect: Eq(y(x), C1*exp(x))",
	"step 6/6\n  run: --latex d(x^2, x)\n  expect: 2 x",
}

// StartTutorial enters tutorial mode at the first step and returns its
// text.
func (s *Session) StartTutorial() string {
	s.state = StateTutorial
	s.cursor = 0
	return tutorialSteps[0]
}

// AdvanceTutorial moves the cursor forward one step. The second return is
// false when the walkthrough is already on its final step; the session
// then returns to idle.
func (s *Session) AdvanceTutorial() (string, bool) {
	if s.state != StateTutorial {
		return "", false
	}
	if s.cursor+1 >= len(tutorialSteps) {
		s.state = StateIdle
		return "", false
	}
	s.cursor++
	return tutorialSteps[s.cursor], true
}

// RepeatTutorial re-emits the current step.
func (s *Session) RepeatTutorial() (string, bool) {
	if s.state != StateTutorial {
		return "", false
	}
	return tutorialSteps[s.cursor], true
}

// EndTutorial leaves tutorial mode. It reports whether a tutorial was
// actually active.
func (s *Session) EndTutorial() bool {
	if s.state != StateTutorial {
		return false
	}
	s.state = StateIdle
	return true
}
