// Package config holds the tunable tables of xplain: the trivial-operator
// set, the category table, fusion targets, display colors and diff
// settings. Configuration is written in CUE and layered over a built-in
// default.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"github.com/samber/lo"

	"github.com/roach88/xplain/internal/canon"
	"github.com/roach88/xplain/internal/graph"
)

//go:embed default.cue
var defaultCUE []byte

// Load error codes.
const (
	ErrCodeRead   = "E210" // config file unreadable
	ErrCodeBuild  = "E211" // CUE does not evaluate
	ErrCodeDecode = "E212" // field has the wrong shape
)

// Config is the resolved configuration. Treat it as immutable once loaded.
type Config struct {
	Trivial      []string          `json:"trivial"`
	Categories   map[string]string `json:"categories"`
	ConvPrefixes []string          `json:"conv_prefixes"`
	Fused        []string          `json:"fused"`
	Colors       map[string]string `json:"colors"`
	DefaultColor string            `json:"default_color"`
	DiffContext  int               `json:"diff_context"`
	OptLevel     int               `json:"opt_level"`
	Levels       []int             `json:"levels"`

	// Source is the user file layered over the default, empty if none.
	Source string `json:"source,omitempty"`
}

// LoadError is a failure to read or decode a config file.
type LoadError struct {
	Code    string
	Field   string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	prefix := e.Code
	if e.Field != "" {
		prefix += ": " + e.Field
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), prefix, e.Message)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// InvalidError carries every validation failure of a config.
type InvalidError struct {
	Errors []ValidationError
}

func (e *InvalidError) Error() string {
	if len(e.Errors) == 1 {
		return "invalid config: " + e.Errors[0].Error()
	}
	return fmt.Sprintf("invalid config: %s (and %d more)", e.Errors[0].Error(), len(e.Errors)-1)
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	v := cuecontext.New().CompileBytes(defaultCUE, cue.Filename("default.cue"))
	if err := decode(v, cfg); err != nil {
		panic(fmt.Sprintf("config: built-in default does not decode: %v", err))
	}
	return cfg
}

// Load reads the CUE file at path, layers it over the default and
// validates the result. An empty path returns the default.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRead, Message: err.Error()}
	}
	cfg, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	cfg.Source = path
	return cfg, nil
}

// Parse is Load for in-memory CUE source; filename is only used in error
// positions.
func Parse(data []byte, filename string) (*Config, error) {
	v := cuecontext.New().CompileBytes(data, cue.Filename(filename))
	if err := v.Validate(); err != nil {
		return nil, formatCUEError(err)
	}

	cfg := Default()
	if err := decode(v, cfg); err != nil {
		return nil, err
	}
	if errs := Validate(cfg); len(errs) > 0 {
		return nil, &InvalidError{Errors: errs}
	}
	return cfg, nil
}

var knownFields = []string{
	"trivial", "categories", "conv_prefixes", "fused",
	"colors", "default_color", "diff_context", "opt_level", "levels",
}

// decode overlays the fields present in v onto cfg. Unknown top-level
// fields are rejected.
func decode(v cue.Value, cfg *Config) error {
	iter, err := v.Fields()
	if err != nil {
		return decodeError("", "config must be a struct", v)
	}
	for iter.Next() {
		if name := iter.Selector().Unquoted(); !slices.Contains(knownFields, name) {
			return decodeError(name, "unknown field", iter.Value())
		}
	}

	if cfg.Trivial, err = stringList(v, "trivial", cfg.Trivial); err != nil {
		return err
	}
	if cfg.Categories, err = stringMap(v, "categories", cfg.Categories); err != nil {
		return err
	}
	if cfg.ConvPrefixes, err = stringList(v, "conv_prefixes", cfg.ConvPrefixes); err != nil {
		return err
	}
	if cfg.Fused, err = stringList(v, "fused", cfg.Fused); err != nil {
		return err
	}
	if cfg.Colors, err = stringMap(v, "colors", cfg.Colors); err != nil {
		return err
	}
	if cfg.DefaultColor, err = stringField(v, "default_color", cfg.DefaultColor); err != nil {
		return err
	}
	if cfg.DiffContext, err = intField(v, "diff_context", cfg.DiffContext); err != nil {
		return err
	}
	if cfg.OptLevel, err = intField(v, "opt_level", cfg.OptLevel); err != nil {
		return err
	}
	if cfg.Levels, err = intList(v, "levels", cfg.Levels); err != nil {
		return err
	}
	return nil
}

func lookup(v cue.Value, field string) (cue.Value, bool) {
	f := v.LookupPath(cue.ParsePath(field))
	return f, f.Exists()
}

func stringField(v cue.Value, field, def string) (string, error) {
	f, ok := lookup(v, field)
	if !ok {
		return def, nil
	}
	s, err := f.String()
	if err != nil {
		return "", decodeError(field, "must be a string", f)
	}
	return s, nil
}

func intField(v cue.Value, field string, def int) (int, error) {
	f, ok := lookup(v, field)
	if !ok {
		return def, nil
	}
	n, err := f.Int64()
	if err != nil {
		return 0, decodeError(field, "must be an integer", f)
	}
	return int(n), nil
}

func stringList(v cue.Value, field string, def []string) ([]string, error) {
	f, ok := lookup(v, field)
	if !ok {
		return def, nil
	}
	iter, err := f.List()
	if err != nil {
		return nil, decodeError(field, "must be a list of strings", f)
	}
	out := []string{}
	for i := 0; iter.Next(); i++ {
		s, err := iter.Value().String()
		if err != nil {
			return nil, decodeError(fmt.Sprintf("%s[%d]", field, i), "must be a string", iter.Value())
		}
		out = append(out, s)
	}
	return out, nil
}

func intList(v cue.Value, field string, def []int) ([]int, error) {
	f, ok := lookup(v, field)
	if !ok {
		return def, nil
	}
	iter, err := f.List()
	if err != nil {
		return nil, decodeError(field, "must be a list of integers", f)
	}
	out := []int{}
	for i := 0; iter.Next(); i++ {
		n, err := iter.Value().Int64()
		if err != nil {
			return nil, decodeError(fmt.Sprintf("%s[%d]", field, i), "must be an integer", iter.Value())
		}
		out = append(out, int(n))
	}
	return out, nil
}

// stringMap merges the struct at field over def.
func stringMap(v cue.Value, field string, def map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(def))
	for k, s := range def {
		out[k] = s
	}

	f, ok := lookup(v, field)
	if !ok {
		return out, nil
	}
	iter, err := f.Fields()
	if err != nil {
		return nil, decodeError(field, "must be a struct of strings", f)
	}
	for iter.Next() {
		key := iter.Selector().Unquoted()
		s, err := iter.Value().String()
		if err != nil {
			return nil, decodeError(fmt.Sprintf("%s.%q", field, key), "must be a string", iter.Value())
		}
		out[key] = s
	}
	return out, nil
}

func decodeError(field, msg string, v cue.Value) *LoadError {
	return &LoadError{Code: ErrCodeDecode, Field: field, Message: msg, Pos: v.Pos()}
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: ErrCodeBuild, Message: err.Error()}
	}
	first := errs[0]
	le := &LoadError{Code: ErrCodeBuild, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}

// Canonicalizer returns the Canonicalizer described by c.
func (c *Config) Canonicalizer() *canon.Canonicalizer {
	return canon.New(canon.Table(c.Categories), c.ConvPrefixes)
}

// Builder returns a graph Builder using c's categories and trivial set.
func (c *Config) Builder() *graph.Builder {
	return graph.NewBuilder(c.Canonicalizer(), c.Trivial)
}

// Palette returns the display palette described by c.
func (c *Config) Palette() graph.Palette {
	return graph.Palette{Colors: lo.Assign(c.Colors), Default: c.DefaultColor}
}

// TimelineLevels returns the configured levels in ascending order.
func (c *Config) TimelineLevels() []int {
	levels := slices.Clone(c.Levels)
	slices.Sort(levels)
	return levels
}
