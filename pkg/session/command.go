// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package session

import "strings"

// CommandKind enumerates every REPL directive. The set is closed: the
// dispatch switch over it is exhaustive, and anything else on a line is
// either an expression or an unknown-command diagnostic.
type CommandKind int

const (
	// CmdEvaluate means the line is an expression for the pipeline.
	CmdEvaluate CommandKind = iota
	// CmdEmpty is a blank line (advances the tutorial when one is active).
	CmdEmpty
	// CmdHelp prints the command reference.
	CmdHelp
	// CmdExamples prints worked examples.
	CmdExamples
	// CmdTutorialStart enters tutorial mode at step one.
	CmdTutorialStart
	// CmdTutorialNext advances the tutorial cursor.
	CmdTutorialNext
	// CmdTutorialRepeat re-emits the current step.
	CmdTutorialRepeat
	// CmdTutorialDone leaves tutorial mode.
	CmdTutorialDone
	// CmdODEHelp prints the ODE notation reference.
	CmdODEHelp
	// CmdVersion prints the version line.
	CmdVersion
	// CmdUpdate checks for a newer release.
	CmdUpdate
	// CmdQuit ends the session.
	CmdQuit
	// CmdUnknown is an unrecognized ":" directive.
	CmdUnknown
)

// Command is one classified REPL line.
type Command struct {
	Kind CommandKind
	Line string
}

// Classify maps a raw REPL line onto the command enumeration.
func Classify(line string) Command {
	trimmed := strings.TrimSpace(line)
	switch trimmed {
	case "":
		return Command{Kind: CmdEmpty}
	case ":q", ":quit", ":x":
		return Command{Kind: CmdQuit}
	case ":h", ":help":
		return Command{Kind: CmdHelp}
	case ":examples":
		return Command{Kind: CmdExamples}
	case ":tutorial", ":t", ":tour":
		return Command{Kind: CmdTutorialStart}
	case ":next":
		return Command{Kind: CmdTutorialNext}
	case ":repeat":
		return Command{Kind: CmdTutorialRepeat}
	case ":done":
		return Command{Kind: CmdTutorialDone}
	case ":ode":
		return Command{Kind: CmdODEHelp}
	case ":v", ":version":
		return Command{Kind: CmdVersion}
	case ":update", ":check":
		return Command{Kind: CmdUpdate}
	}
	if strings.HasPrefix(trimmed, ":") {
		return Command{Kind: CmdUnknown, Line: trimmed}
	}
	return Command{Kind: CmdEvaluate, Line: trimmed}
}
