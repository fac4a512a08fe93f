// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package guard is the input safety boundary. It runs on raw text before
// any normalization so that shorthand expansion can never smuggle a
// blocked token past the check, and it is a pure predicate: rejected
// input is never partially processed.
package guard

import (
	"fmt"
	"strings"
)

// MaxInputLength bounds a single input line.
const MaxInputLength = 2000

// blockedTokens are substrings associated with identifier escape or
// statement separation. The set is fixed; it is a safety boundary, not
// configuration.
var blockedTokens = []string{"__", ";", "\n", "\r"}

// tokenLabels give each blocked token a printable name for diagnostics.
var tokenLabels = map[string]string{
	"__": "double underscore",
	";":  "statement separator ';'",
	"\n": "embedded newline",
	"\r": "embedded newline",
}

// Verdict is the outcome of checking one raw input line.
type Verdict struct {
	OK     bool
	Reason string
}

// Violation reports a rejected input line.
type Violation struct {
	Reason string
}

func (e *Violation) Error() string {
	return e.Reason
}

// Check validates raw input. It rejects empty input, oversized input, and
// input containing a blocked token.
func Check(text string) Verdict {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Verdict{Reason: "empty expression"}
	}
	if len(text) > MaxInputLength {
		return Verdict{Reason: fmt.Sprintf("input exceeds %d characters", MaxInputLength)}
	}
	for _, tok := range blockedTokens {
		if strings.Contains(text, tok) {
			return Verdict{Reason: fmt.Sprintf("input contains a blocked token (%s)", tokenLabels[tok])}
		}
	}
	return Verdict{OK: true}
}

// CheckErr is Check with an error-shaped result for pipeline callers.
func CheckErr(text string) error {
	if v := Check(text); !v.OK {
		return &Violation{Reason: v.Reason}
	}
	return nil
}
