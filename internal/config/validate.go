package config

import (
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/roach88/xplain/internal/graph"
)

// Validation error codes (E200-E209).
const (
	ErrCategoryNotIdempotent = "E201" // a produced category maps elsewhere
	ErrEmptyIdentifier       = "E202" // empty operator identifier or category
	ErrInvalidColor          = "E203" // color is not #RRGGBB
	ErrNegativeContext       = "E204" // diff_context < 0
	ErrOptLevelRange         = "E205" // opt_level outside 1..3
	ErrInvalidLevels         = "E206" // timeline levels outside 0..3 or repeated
)

// Optimization levels accepted by the compiler.
const (
	MinOptLevel = 1
	MaxOptLevel = 3
)

// ValidationError is one rule violation in a config.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks c and returns every violation found, in a stable order.
func Validate(c *Config) []ValidationError {
	var errs []ValidationError

	for i, t := range c.Trivial {
		if t == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("trivial[%d]", i),
				Message: "operator identifier must be non-empty",
				Code:    ErrEmptyIdentifier,
			})
		}
	}

	keys := sortedKeys(c.Categories)
	for _, k := range keys {
		if k == "" || c.Categories[k] == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("categories.%q", k),
				Message: "operator identifier and category must be non-empty",
				Code:    ErrEmptyIdentifier,
			})
		}
	}
	// Every category the table or prefix rule produces must map to itself,
	// or CategoryOf would not be idempotent.
	cz := c.Canonicalizer()
	for _, cat := range cz.Categories() {
		if next := cz.CategoryOf(cat); next != cat {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("categories.%q", cat),
				Message: fmt.Sprintf("category %q maps to %q; it must map to itself", cat, next),
				Code:    ErrCategoryNotIdempotent,
			})
		}
	}

	for _, k := range sortedKeys(c.Colors) {
		if !graph.ValidColor(c.Colors[k]) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("colors.%q", k),
				Message: fmt.Sprintf("color %q must be #RRGGBB", c.Colors[k]),
				Code:    ErrInvalidColor,
			})
		}
	}
	if !graph.ValidColor(c.DefaultColor) {
		errs = append(errs, ValidationError{
			Field:   "default_color",
			Message: fmt.Sprintf("color %q must be #RRGGBB", c.DefaultColor),
			Code:    ErrInvalidColor,
		})
	}

	if c.DiffContext < 0 {
		errs = append(errs, ValidationError{
			Field:   "diff_context",
			Message: fmt.Sprintf("context must be >= 0, got %d", c.DiffContext),
			Code:    ErrNegativeContext,
		})
	}
	if c.OptLevel < MinOptLevel || c.OptLevel > MaxOptLevel {
		errs = append(errs, ValidationError{
			Field:   "opt_level",
			Message: fmt.Sprintf("level must be in %d..%d, got %d", MinOptLevel, MaxOptLevel, c.OptLevel),
			Code:    ErrOptLevelRange,
		})
	}

	seen := make(map[int]bool, len(c.Levels))
	for i, l := range c.Levels {
		if l < 0 || l > MaxOptLevel || seen[l] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("levels[%d]", i),
				Message: fmt.Sprintf("level %d must be in 0..%d and listed once", l, MaxOptLevel),
				Code:    ErrInvalidLevels,
			})
		}
		seen[l] = true
	}

	return errs
}

func sortedKeys(m map[string]string) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}
