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
	"unicode"
)

// Parse turns normalized calculator text into an expression tree.
//
// Name resolution goes exclusively through the capability table: fixed
// symbols, listed functions/operations, and the session bindings carried by
// ns. Applied names outside the table (y(x), f(t)) become undefined function
// applications. Bare names outside the table are an error.
//
// Parse never evaluates anything: 2+2 comes back as Add, 10^10000000000 as
// Pow. Evaluation and growth policy are the caller's job.
func Parse(text string, ns *Namespace) (Expr, error) {
	p := &parser{src: text, ns: ns}
	p.next()
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, parseErrorf(p.tok.pos, "invalid syntax near %q", p.tok.text)
	}
	return e, nil
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokNumber
	tokIdent
	tokOp // single-rune operators and punctuation, plus **
)

type token struct {
	kind tokKind
	text string
	pos  int
}

type parser struct {
	src string
	ns  *Namespace
	pos int
	tok token
}

func (p *parser) next() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
	if p.pos >= len(p.src) {
		p.tok = token{kind: tokEOF, pos: p.pos}
		return
	}
	start := p.pos
	c := rune(p.src[p.pos])
	switch {
	case unicode.IsDigit(c) || c == '.':
		for p.pos < len(p.src) && (unicode.IsDigit(rune(p.src[p.pos])) || p.src[p.pos] == '.') {
			p.pos++
		}
		p.tok = token{kind: tokNumber, text: p.src[start:p.pos], pos: start}
	case unicode.IsLetter(c) || c == '_':
		for p.pos < len(p.src) && (unicode.IsLetter(rune(p.src[p.pos])) || unicode.IsDigit(rune(p.src[p.pos])) || p.src[p.pos] == '_') {
			p.pos++
		}
		p.tok = token{kind: tokIdent, text: p.src[start:p.pos], pos: start}
	default:
		if strings.HasPrefix(p.src[p.pos:], "**") {
			p.pos += 2
			p.tok = token{kind: tokOp, text: "^", pos: start}
			return
		}
		p.pos++
		p.tok = token{kind: tokOp, text: string(c), pos: start}
	}
}

func (p *parser) isOp(text string) bool {
	return p.tok.kind == tokOp && p.tok.text == text
}

// parseExpr := term (('+'|'-') term)*
func (p *parser) parseExpr() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	terms := []Expr{left}
	for p.isOp("+") || p.isOp("-") {
		neg := p.tok.text == "-"
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if neg {
			right = Mul{Factors: []Expr{Integer(-1), right}}
		}
		terms = append(terms, right)
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return Add{Terms: terms}, nil
}

// parseTerm := unary (('*'|'/') unary)*
func (p *parser) parseTerm() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	factors := []Expr{left}
	for p.isOp("*") || p.isOp("/") {
		div := p.tok.text == "/"
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if div {
			right = Pow{Base: right, Exp: Integer(-1)}
		}
		factors = append(factors, right)
	}
	if len(factors) == 1 {
		return factors[0], nil
	}
	return Mul{Factors: factors}, nil
}

// parseUnary := ('+'|'-')* power
func (p *parser) parseUnary() (Expr, error) {
	if p.isOp("+") {
		p.next()
		return p.parseUnary()
	}
	if p.isOp("-") {
		p.next()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Mul{Factors: []Expr{Integer(-1), inner}}, nil
	}
	return p.parsePower()
}

// parsePower := postfix ('^' unary)?   (right associative)
func (p *parser) parsePower() (Expr, error) {
	base, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.isOp("^") {
		p.next()
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Pow{Base: base, Exp: exp}, nil
	}
	return base, nil
}

// parsePostfix := primary '!'*
func (p *parser) parsePostfix() (Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.isOp("!") {
		p.next()
		e = Call{Fn: "factorial", Args: []Expr{e}}
	}
	return e, nil
}

func (p *parser) parsePrimary() (Expr, error) {
	switch {
	case p.tok.kind == tokNumber:
		text := p.tok.text
		pos := p.tok.pos
		p.next()
		val, ok := new(big.Rat).SetString(text)
		if !ok {
			return nil, parseErrorf(pos, "invalid number %q", text)
		}
		return Num{Val: val}, nil

	case p.tok.kind == tokIdent:
		name := p.tok.text
		pos := p.tok.pos
		p.next()
		if p.isOp("(") {
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return p.resolveCall(name, args, pos)
		}
		if v, ok := p.ns.lookup(name); ok {
			return v, nil
		}
		if knownFunctions[name] || operationNames[name] {
			return nil, parseErrorf(pos, "%s needs an argument list, e.g. %s(...)", name, name)
		}
		return nil, parseErrorf(pos, "name '%s' is not defined", name)

	case p.isOp("("):
		p.next()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if !p.isOp(")") {
			return nil, p.unexpected()
		}
		p.next()
		return e, nil

	case p.isOp("["):
		return p.parseList()

	case p.tok.kind == tokEOF:
		return nil, parseErrorf(p.tok.pos, "unexpected end of input")

	default:
		return nil, parseErrorf(p.tok.pos, "invalid syntax near %q", p.tok.text)
	}
}

func (p *parser) unexpected() error {
	if p.tok.kind == tokEOF {
		return parseErrorf(p.tok.pos, "unexpected end of input")
	}
	return parseErrorf(p.tok.pos, "invalid syntax near %q", p.tok.text)
}

// parseArgs consumes '(' expr (',' expr)* ')'.
func (p *parser) parseArgs() ([]Expr, error) {
	p.next() // consume '('
	var args []Expr
	if p.isOp(")") {
		p.next()
		return args, nil
	}
	for {
		a, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.isOp(",") {
			p.next()
			continue
		}
		if p.isOp(")") {
			p.next()
			return args, nil
		}
		return nil, p.unexpected()
	}
}

func (p *parser) parseList() (Expr, error) {
	p.next() // consume '['
	var items []Expr
	if p.isOp("]") {
		p.next()
		return List{Items: items}, nil
	}
	for {
		it, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, it)
		if p.isOp(",") {
			p.next()
			continue
		}
		if p.isOp("]") {
			p.next()
			return List{Items: items}, nil
		}
		return nil, p.unexpected()
	}
}

// resolveCall classifies an applied name. Known functions and operations
// become regular calls; a name from the symbol table becomes an undefined
// application (y(x)); anything else is unknown.
func (p *parser) resolveCall(name string, args []Expr, pos int) (Expr, error) {
	if knownFunctions[name] || operationNames[name] {
		return Call{Fn: name, Args: args}, nil
	}
	if bareSymbols[name] {
		return Call{Fn: name, Args: args}, nil
	}
	if _, ok := p.ns.lookup(name); ok {
		// Session bindings hold values, not functions.
		return nil, parseErrorf(pos, "'%s' is not callable", name)
	}
	return nil, parseErrorf(pos, "name '%s' is not defined", name)
}
