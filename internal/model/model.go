// Package model defines the operation records a computation graph is built
// from, and loads them from the YAML or JSON dumps written by a model-format
// exporter.
package model

// OperationRecord is one operation of a model, in graph order.
type OperationRecord struct {
	OpType  string   `yaml:"op_type" json:"op_type"`
	Name    string   `yaml:"name,omitempty" json:"name,omitempty"`
	Inputs  []string `yaml:"inputs,omitempty" json:"inputs,omitempty"`
	Outputs []string `yaml:"outputs,omitempty" json:"outputs,omitempty"`
}

// Description is a model dump: a name plus its ordered operations.
type Description struct {
	Model string            `yaml:"model" json:"model"`
	Ops   []OperationRecord `yaml:"ops" json:"ops"`
}
