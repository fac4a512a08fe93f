// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package guard

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// GrowthBudget bounds acceptable symbolic size during evaluation. It is a
// pure function of configuration and is never mutated at runtime. The
// exact cutoffs are policy values; only the fail-fast/pass-through
// boundary is contractual.
type GrowthBudget struct {
	MaxIntegerExponent int64 `yaml:"max_integer_exponent" validate:"required,min=2,max=1000000"`
	MaxFactorialArg    int64 `yaml:"max_factorial_arg" validate:"required,min=2,max=1000000"`
	MaxPowDepth        int   `yaml:"max_pow_depth" validate:"required,min=2,max=64"`
}

// DefaultGrowthBudget returns the stock limits.
func DefaultGrowthBudget() GrowthBudget {
	return GrowthBudget{
		MaxIntegerExponent: 10000,
		MaxFactorialArg:    10000,
		MaxPowDepth:        5,
	}
}

// Validate rejects budgets outside the supported policy range.
func (b GrowthBudget) Validate() error {
	if err := validator.New().Struct(b); err != nil {
		return fmt.Errorf("invalid growth budget: %w", err)
	}
	return nil
}
