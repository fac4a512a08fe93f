// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package normalize rewrites loosely formatted calculator input into the
// engine's canonical surface syntax. The pipeline is an ordered list of
// pure text stages; running the full pipeline twice is a no-op, so
// already-canonical text passes through unchanged.
package normalize

import (
	"regexp"
	"strings"
)

// Rewrite records one relaxed-mode text substitution so the caller can
// surface it as a hint ("rewrote sinx as sin(x)").
type Rewrite struct {
	From string
	To   string
}

// functionNames are the multi-character names that implicit-multiplication
// and gluing rules must never split.
var functionNames = []string{"sqrt", "sin", "cos", "tan", "exp", "log", "abs"}

// Normalize applies every rewrite stage in order. The relaxed flag enables
// the shorthand stages (implicit multiplication, function gluing); strict
// mode runs only the notation-canonicalizing stages.
func Normalize(text string, relaxed bool) string {
	out, _ := run(text, relaxed)
	return out
}

// RelaxedRewrites reports the shorthand substitutions relaxed mode would
// apply to text, for hint output.
func RelaxedRewrites(text string) []Rewrite {
	_, notes := run(text, true)
	return notes
}

func run(text string, relaxed bool) (string, []Rewrite) {
	out := strings.TrimSpace(text)
	out = stripWrappers(out)
	out = unwrapCommands(out)
	out = aliasBrackets(out)
	out = aliasFunctions(out)
	out = lowerODE(out)
	out = rewriteFunctionExponents(out)
	var notes []Rewrite
	if relaxed {
		out, notes = insertImplicitMultiplication(out)
	}
	return out, notes
}

// ---------------------------------------------------------------------------
// Stage 1: wrapper stripping
// ---------------------------------------------------------------------------

var wrapperReplacer = strings.NewReplacer(
	"$$", "",
	"$", "",
	`\left`, "",
	`\right`, "",
	`\[`, "",
	`\]`, "",
	`\(`, "",
	`\)`, "",
	"−", "-", // unicode minus
	"×", "*",
	`\cdot`, "*",
	`\times`, "*",
)

func stripWrappers(text string) string {
	return strings.TrimSpace(wrapperReplacer.Replace(text))
}

// ---------------------------------------------------------------------------
// Stage 2: typeset command unwrapping
// ---------------------------------------------------------------------------

var texFuncs = strings.NewReplacer(
	`\sin`, "sin",
	`\cos`, "cos",
	`\tan`, "tan",
	`\exp`, "exp",
	`\log`, "log",
	`\ln`, "ln",
	`\pi`, "pi",
)

// unwrapCommands lowers \frac{a}{b} to ((a)/(b)) and \sqrt{x} to sqrt(x).
// Fraction arguments are read with a brace-balance scanner because the
// numerator or denominator may contain nested commands.
func unwrapCommands(text string) string {
	for {
		idx := strings.Index(text, `\frac`)
		if idx == -1 {
			break
		}
		numerator, rest, ok := readBraceGroup(text[idx+len(`\frac`):])
		if !ok {
			break
		}
		denominator, tail, ok := readBraceGroup(rest)
		if !ok {
			break
		}
		text = text[:idx] + "((" + numerator + ")/(" + denominator + "))" + tail
	}
	for {
		idx := strings.Index(text, `\sqrt`)
		if idx == -1 {
			break
		}
		arg, tail, ok := readBraceGroup(text[idx+len(`\sqrt`):])
		if !ok {
			break
		}
		text = text[:idx] + "sqrt(" + arg + ")" + tail
	}
	return texFuncs.Replace(text)
}

// readBraceGroup consumes a balanced {...} group, skipping leading spaces,
// and returns its contents plus the remaining text.
func readBraceGroup(text string) (string, string, bool) {
	i := 0
	for i < len(text) && text[i] == ' ' {
		i++
	}
	if i >= len(text) || text[i] != '{' {
		return "", "", false
	}
	depth := 0
	for j := i; j < len(text); j++ {
		switch text[j] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[i+1 : j], text[j+1:], true
			}
		}
	}
	return "", "", false
}

// ---------------------------------------------------------------------------
// Stage 3: bracket aliasing
// ---------------------------------------------------------------------------

var bracketReplacer = strings.NewReplacer("{", "(", "}", ")")

func aliasBrackets(text string) string {
	return bracketReplacer.Replace(text)
}

// ---------------------------------------------------------------------------
// Stage 4: function alias rewriting
// ---------------------------------------------------------------------------

var lnPattern = regexp.MustCompile(`\bln\s*\(`)

func aliasFunctions(text string) string {
	return lnPattern.ReplaceAllString(text, "log(")
}

// ---------------------------------------------------------------------------
// Stage 6: function-exponent rewriting
// ---------------------------------------------------------------------------

var funcExpPattern = regexp.MustCompile(`\b(sin|cos|tan|log|exp|sqrt)\s*(?:\^|\*\*)\s*(\d+)\s*\(`)

// rewriteFunctionExponents turns sin^2(x) into (sin(x))^2. The rewrite only
// fires on the parenthesized form; bare "sin x^2" is left alone so the
// ambiguity surfaces downstream instead of being guessed at.
func rewriteFunctionExponents(text string) string {
	for {
		loc := funcExpPattern.FindStringSubmatchIndex(text)
		if loc == nil {
			return text
		}
		fn := text[loc[2]:loc[3]]
		exponent := text[loc[4]:loc[5]]
		arg, tail, ok := readParenGroup(text[loc[1]-1:])
		if !ok {
			return text
		}
		text = text[:loc[0]] + "(" + fn + "(" + arg + "))^" + exponent + tail
	}
}

// readParenGroup consumes a balanced (...) group and returns its contents
// plus the remaining text.
func readParenGroup(text string) (string, string, bool) {
	if len(text) == 0 || text[0] != '(' {
		return "", "", false
	}
	depth := 0
	for j := 0; j < len(text); j++ {
		switch text[j] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return text[1:j], text[j+1:], true
			}
		}
	}
	return "", "", false
}

// ---------------------------------------------------------------------------
// Stage 7: implicit multiplication (relaxed mode only)
// ---------------------------------------------------------------------------

var glueNames = regexp.MustCompile(`\b(sin|cos|tan|exp|log|sqrt)([a-z])\b`)

func insertImplicitMultiplication(text string) (string, []Rewrite) {
	var notes []Rewrite

	// Glue known function names typed without parentheses: sinx -> sin(x).
	text = glueNames.ReplaceAllStringFunc(text, func(m string) string {
		sub := glueNames.FindStringSubmatch(m)
		glued := sub[1] + "(" + sub[2] + ")"
		notes = append(notes, Rewrite{From: m, To: glued})
		return glued
	})

	var b strings.Builder
	runes := []rune(text)
	for i, c := range runes {
		if i > 0 {
			prev := runes[i-1]
			switch {
			case isDigit(prev) && (isLetter(c) || c == '('):
				b.WriteByte('*')
			case prev == ')' && (c == '(' || isLetter(c) || isDigit(c)):
				b.WriteByte('*')
			case prev == ' ' && isLetter(c) && i >= 2 && isLetter(runes[i-2]):
				if w := identBefore(runes, i-1); len(w) == 1 && !startsFunctionWord(runes, i) {
					b.WriteByte('*')
				}
			}
		}
		b.WriteRune(c)
	}
	out := strings.ReplaceAll(b.String(), " *", "*")
	out = strings.ReplaceAll(out, "* ", "*")
	return out, notes
}

// identBefore returns the identifier ending at index end (exclusive of the
// whitespace that follows it).
func identBefore(runes []rune, end int) string {
	j := end
	for j > 0 && isLetter(runes[j-1]) {
		j--
	}
	return string(runes[j:end])
}

// startsFunctionWord reports whether the identifier starting at i is a
// multi-character function name; "sin x" must not become "sin*x" because
// that shorthand is ambiguous, not multiplicative.
func startsFunctionWord(runes []rune, i int) bool {
	j := i
	for j < len(runes) && isLetter(runes[j]) {
		j++
	}
	word := string(runes[i:j])
	for _, fn := range functionNames {
		if word == fn {
			return true
		}
	}
	return false
}

func isDigit(c rune) bool  { return c >= '0' && c <= '9' }
func isLetter(c rune) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
