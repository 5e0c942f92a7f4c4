package model

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Error codes reported by Load and Parse.
const (
	ErrCodeRead    = "E301" // model file unreadable
	ErrCodeParse   = "E302" // malformed YAML/JSON
	ErrCodeEmpty   = "E303" // empty document
	ErrCodeInvalid = "E304" // structurally invalid record
)

// LoadError describes why a model description could not be obtained.
type LoadError struct {
	Code    string
	Path    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load reads a model description from path.
func Load(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRead, Path: path, Message: "failed to read model file", Err: err}
	}

	desc, err := Parse(data)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			loadErr.Path = path
		}
		return nil, err
	}
	return desc, nil
}

// Parse decodes a model description. JSON input is accepted since it is
// valid YAML. Unknown fields are rejected so exporter typos surface early.
func Parse(data []byte) (*Description, error) {
	var desc Description
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&desc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{Code: ErrCodeEmpty, Message: "model description is empty"}
		}
		return nil, &LoadError{Code: ErrCodeParse, Message: "failed to parse model description", Err: err}
	}

	if err := validate(&desc); err != nil {
		return nil, err
	}
	return &desc, nil
}

// validate checks that every record carries an operator type.
func validate(d *Description) error {
	for i, op := range d.Ops {
		if op.OpType == "" {
			return &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("ops[%d]: op_type is required", i)}
		}
	}
	return nil
}
