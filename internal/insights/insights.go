// Package insights turns benchmark results into short, human-readable
// observations about what the compiler did. Benchmarks themselves are run
// elsewhere; this package only reads their output.
package insights

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Backend labels produced by the benchmark runners.
const (
	BackendFP32ONNX = "FP32-ONNXRuntime"
	BackendINT8ONNX = "INT8-ONNXRuntime"
	BackendFP32TVM  = "FP32-TVM-Ryzen"
	BackendINT8TVM  = "INT8-TVM-Ryzen"
)

// NoInsights is returned alone when no comparison could be made.
const NoInsights = "No detailed insights available. Try running both FP32 and INT8 or enable TVM."

// Metrics is one backend's benchmark result. Missing values are nil.
type Metrics struct {
	LatencyMS  *float64 `yaml:"latency_ms" json:"latency_ms,omitempty"`
	Throughput *float64 `yaml:"throughput" json:"throughput,omitempty"`
	MemoryMB   *float64 `yaml:"memory_mb" json:"memory_mb,omitempty"`
	EnergyEst  *float64 `yaml:"energy_est" json:"energy_est,omitempty"`
}

// Results maps a backend label to its metrics.
type Results map[string]Metrics

// Backends returns the backend labels, sorted.
func (r Results) Backends() []string {
	keys := lo.Keys(r)
	slices.Sort(keys)
	return keys
}

// LoadResults reads benchmark results from a JSON or YAML file.
func LoadResults(path string) (Results, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	res, err := ParseResults(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// ParseResults decodes benchmark results. An empty document yields empty
// Results.
func ParseResults(data []byte) (Results, error) {
	res := Results{}
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&res); err != nil {
		if errors.Is(err, io.EOF) {
			return Results{}, nil
		}
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return res, nil
}

// Explain compares FP32 and INT8 runs of the same backend. It reports the
// ONNX Runtime latency gain and the TVM Ryzen throughput boost when both
// sides of a pair have a non-zero value, and NoInsights otherwise.
func Explain(r Results) []string {
	var out []string

	if a, b, ok := pair(r, BackendFP32ONNX, BackendINT8ONNX, func(m Metrics) *float64 { return m.LatencyMS }); ok {
		gain := (a - b) / a * 100
		out = append(out, fmt.Sprintf("ONNXRuntime: INT8 reduced latency by ~%.1f%% (FP32 %.1fms → INT8 %.1fms).", gain, a, b))
	}
	if a, b, ok := pair(r, BackendFP32TVM, BackendINT8TVM, func(m Metrics) *float64 { return m.Throughput }); ok {
		boost := (b - a) / a * 100
		out = append(out, fmt.Sprintf("TVM Ryzen: INT8 increased throughput by ~%.1f%% (vectorized kernels / fuse).", boost))
	}

	if len(out) == 0 {
		out = append(out, NoInsights)
	}
	return out
}

// pair returns the field of both backends when both are present and
// non-zero.
func pair(r Results, fp32, int8 string, field func(Metrics) *float64) (float64, float64, bool) {
	ma, okA := r[fp32]
	mb, okB := r[int8]
	if !okA || !okB {
		return 0, 0, false
	}
	a, b := field(ma), field(mb)
	if a == nil || b == nil || *a == 0 || *b == 0 {
		return 0, 0, false
	}
	return *a, *b, true
}
