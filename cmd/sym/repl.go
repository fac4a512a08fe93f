// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/AleutianAI/symshell/pkg/calc"
	"github.com/AleutianAI/symshell/pkg/diagnostics"
	"github.com/AleutianAI/symshell/pkg/logging"
	"github.com/AleutianAI/symshell/pkg/session"
	"github.com/AleutianAI/symshell/pkg/updates"
	"github.com/AleutianAI/symshell/pkg/ux"
)

const historyFileName = ".symshell_history"

// fetchLatest is the release lookup, swapped out in tests.
var fetchLatest updates.Fetcher = updates.LatestReleaseVersion

// runREPL is the interactive session loop. It always returns nil: a
// failed evaluation prints a diagnostic and prompts again, and EOF or
// Ctrl-C ends the session cleanly.
func runREPL(base session.Options, cfg Config, logger *logging.Logger) error {
	sess := session.New()
	logger.Info("session started", "session_id", sess.ID)
	defer logger.Info("session ended", "session_id", sess.ID)

	if ux.IsInteractive() {
		ux.Banner(version, startupStatus())
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := historyPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	for {
		line, err := ln.Prompt(ux.Prompt())
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			ux.Info("")
			return nil
		}
		if err != nil {
			logger.Error("read failed", "session_id", sess.ID, "error", err.Error())
			return nil
		}

		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}

		quit := handleLine(line, &base, cfg, sess, logger)
		if quit {
			return nil
		}
	}
}

// handleLine dispatches one REPL line. It reports whether the session
// should end.
func handleLine(line string, base *session.Options, cfg Config, sess *session.Session, logger *logging.Logger) bool {
	cmd := session.Classify(line)
	switch cmd.Kind {
	case session.CmdQuit:
		return true

	case session.CmdEmpty:
		if sess.State() == session.StateTutorial {
			advanceTutorial(sess)
		}
		return false

	case session.CmdHelp:
		ux.HelpBox("sym v"+version+" - symbolic calculator", helpText)
		return false

	case session.CmdExamples:
		ux.HelpBox("examples", examplesText)
		return false

	case session.CmdODEHelp:
		ux.HelpBox("differential equations", odeText)
		return false

	case session.CmdTutorialStart:
		ux.Steps(sess.StartTutorial())
		ux.Info("(:next to advance, :repeat to repeat, :done to leave)")
		return false

	case session.CmdTutorialNext:
		if sess.State() != session.StateTutorial {
			ux.Info("no tutorial in progress; start one with :tutorial")
			return false
		}
		advanceTutorial(sess)
		return false

	case session.CmdTutorialRepeat:
		step, ok := sess.RepeatTutorial()
		if !ok {
			ux.Info("no tutorial in progress; start one with :tutorial")
			return false
		}
		ux.Steps(step)
		return false

	case session.CmdTutorialDone:
		if sess.EndTutorial() {
			ux.Info("tutorial ended")
		} else {
			ux.Info("no tutorial in progress")
		}
		return false

	case session.CmdVersion:
		ux.Info("sym v" + version)
		return false

	case session.CmdUpdate:
		printUpdateStatus()
		return false

	case session.CmdUnknown:
		diag := diagnostics.Explain(diagnostics.KindUnknownCommand,
			fmt.Errorf("unknown command: %s", cmd.Line), cmd.Line)
		printDiagnostic(diag, cmd.Line)
		return false
	}

	evaluateLine(cmd.Line, base, cfg, sess, logger)
	return false
}

// evaluateLine runs one expression line, honoring inline option
// prefixes. An options-only line updates the session defaults.
func evaluateLine(line string, base *session.Options, cfg Config, sess *session.Session, logger *logging.Logger) {
	opts, expr, hadOpts, err := session.ParseInlineOptions(line, *base)
	if err != nil {
		diag := diagnostics.Explain(diagnostics.KindParse, err, line)
		printDiagnostic(diag, line)
		return
	}
	if hadOpts && strings.TrimSpace(expr) == "" {
		*base = opts
		ux.Info("options updated")
		return
	}

	res, fail := calc.Evaluate(expr, calcOptions(opts, cfg), sess)
	if fail != nil {
		printDiagnostic(fail.Diagnostic(expr), expr)
		logger.Warn("evaluation failed",
			"session_id", sess.ID, "kind", int(fail.Kind), "input_len", len(expr))
		return
	}
	logger.Info("evaluated", "session_id", sess.ID, "input_len", len(expr))
	printResult(res, expr, opts)
}

func advanceTutorial(sess *session.Session) {
	step, ok := sess.AdvanceTutorial()
	if !ok {
		ux.Info("tutorial complete")
		return
	}
	ux.Steps(step)
}

// startupStatus builds the short banner suffix. The release lookup is
// skipped for dev builds, where the answer is fixed.
func startupStatus() []string {
	if version == "dev" {
		return updates.StartupLines(version, "", updateCmd)
	}
	latest, err := fetchLatest(context.Background())
	if err != nil {
		latest = ""
	}
	return updates.StartupLines(version, latest, updateCmd)
}

func printUpdateStatus() {
	var latest string
	if version != "dev" {
		if v, err := fetchLatest(context.Background()); err == nil {
			latest = v
		}
	}
	for _, line := range updates.StatusLines(version, latest, updateCmd) {
		ux.Info(line)
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyFileName)
}
