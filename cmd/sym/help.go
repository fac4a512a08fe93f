// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

// updateCmd is the suggested upgrade command line.
const updateCmd = "go install github.com/AleutianAI/symshell/cmd/sym@latest"

const helpText = `usage:
  sym [--format MODE] [--latex|--latex-inline|--latex-block] [--strict] [--no-simplify] [--explain-parse] [--wa] [--color MODE] '<expression>'
  sym

options:
  --format MODE   output mode: plain, pretty, latex, latex-inline, latex-block, json
  --latex         print raw LaTeX (no delimiters)
  --latex-inline  print LaTeX wrapped as $...$
  --latex-block   print LaTeX wrapped as $$...$$
  --strict        disable relaxed input parsing
  --no-simplify   skip simplification of parsed expressions
  --explain-parse show the normalized expression on stderr
  --wa            always print a reference link
  --color MODE    output color: auto, always, never

repl commands:
  :h, :help        show this help
  :examples        show example expressions
  :tutorial        start the guided tour
  :next            next tutorial step (after :tutorial)
  :repeat          repeat current tutorial step
  :done            exit tutorial mode
  :ode             show the ODE quick reference
  :v, :version     show version
  :update, :check  check current vs latest version
  :q, :quit, :x    quit

quick examples:
  1/3 + 1/6
  d(x^3 + 2*x, x)
  int(sin(x), x)
  solve(x^2 - 4, x)
  N(pi, 20)`

const examplesText = `examples:
  1/3 + 1/6
  d(x^3 + 2*x, x)
  int(sin(x), x)
  solve(x^2 - 4, x)
  A = Matrix([[1, 2], [3, 4]])
  det(A)
  ode dy/dx = y, y(0)=1
  dsolve(Eq(d(y(x), x), y(x)), y(x))
  N(pi, 20)`

const odeText = `ode quick reference:
  quick start (human style):
    ode y' = y
    ode y'' + y = 0
    ode y' = y, y(0)=1

what you can type:
  dy/dx = y
  y' = y
  \frac{dy}{dx} = y

internal equivalent (advanced):
  dsolve(Eq(d(y(x), x), y(x)), y(x))

notes:
  Eq(...) is equation form (not assignment)
  y(x) means dependent function notation required by dsolve`
