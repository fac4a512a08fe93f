// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package calc

import (
	"fmt"

	"github.com/AleutianAI/symshell/pkg/diagnostics"
)

// Failure tags a pipeline error with its diagnostic kind. Every failure
// the pipeline can produce is caught and wrapped here; nothing escapes as
// an untyped fault.
type Failure struct {
	Kind diagnostics.Kind
	Err  error
}

func (f *Failure) Error() string {
	return f.Err.Error()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Diagnostic converts the failure to its user-facing form.
func (f *Failure) Diagnostic(expr string) diagnostics.Diagnostic {
	return diagnostics.Explain(f.Kind, f.Err, expr)
}

func failf(kind diagnostics.Kind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Err: fmt.Errorf(format, args...)}
}

func wrap(kind diagnostics.Kind, err error) *Failure {
	return &Failure{Kind: kind, Err: err}
}
