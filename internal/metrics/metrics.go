// Package metrics collects analysis results as Prometheus metrics and
// writes them in the text exposition format, for node-exporter textfile
// collection.
package metrics

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/roach88/xplain/internal/graph"
	"github.com/roach88/xplain/internal/irdiff"
)

// Graph stages.
const (
	StageBefore = "before"
	StageAfter  = "after"
)

// Collector captures metrics for one CLI invocation.
type Collector struct {
	registry        *prometheus.Registry
	graphNodes      *prometheus.GaugeVec
	graphEdges      *prometheus.GaugeVec
	categoryOps     *prometheus.GaugeVec
	fusionReduction *prometheus.GaugeVec
	diffHunks       *prometheus.GaugeVec
	diffLines       *prometheus.CounterVec
	commandsTotal   *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec
}

// NewCollector initializes a new metrics registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	c := &Collector{
		registry: registry,
		graphNodes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "xplain_graph_nodes", Help: "Number of nodes in the model graph"},
			[]string{"model", "stage"},
		),
		graphEdges: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "xplain_graph_edges", Help: "Number of edges in the model graph"},
			[]string{"model", "stage"},
		),
		categoryOps: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "xplain_category_nodes", Help: "Number of graph nodes per category"},
			[]string{"model", "stage", "category"},
		),
		fusionReduction: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "xplain_fusion_reduction_percent",
				Help: "Percentage of Conv and MatMul/Gemm nodes not absorbed into fused ops",
			},
			[]string{"model"},
		),
		diffHunks: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "xplain_ir_diff_hunks", Help: "Number of hunks in an IR diff"},
			[]string{"from", "to"},
		),
		diffLines: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "xplain_ir_diff_lines_total", Help: "Changed IR lines by kind"},
			[]string{"kind"},
		),
		commandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "xplain_commands_total", Help: "CLI commands run"},
			[]string{"command", "status"},
		),
		commandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "xplain_command_duration_seconds",
				Help:    "CLI command duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),
	}

	registry.MustRegister(c.graphNodes, c.graphEdges, c.categoryOps, c.fusionReduction,
		c.diffHunks, c.diffLines, c.commandsTotal, c.commandDuration)
	return c
}

// ObserveGraph records the size and category counts of g.
func (c *Collector) ObserveGraph(model, stage string, g *graph.Graph) {
	c.graphNodes.WithLabelValues(model, stage).Set(float64(g.NodeCount()))
	c.graphEdges.WithLabelValues(model, stage).Set(float64(g.EdgeCount()))
	for cat, n := range graph.Counts(g) {
		c.categoryOps.WithLabelValues(model, stage, cat).Set(float64(n))
	}
}

// ObserveReduction records the fusion reduction of model.
func (c *Collector) ObserveReduction(model string, reduction float64) {
	c.fusionReduction.WithLabelValues(model).Set(reduction)
}

// ObserveDiff records the hunk and line counts of r.
func (c *Collector) ObserveDiff(r *irdiff.Report) {
	removed, added := r.Stats()
	c.diffHunks.WithLabelValues(r.FromLabel, r.ToLabel).Set(float64(len(r.Hunks)))
	c.diffLines.WithLabelValues(string(irdiff.Removed)).Add(float64(removed))
	c.diffLines.WithLabelValues(string(irdiff.Added)).Add(float64(added))
}

// ObserveCommand records a command outcome.
func (c *Collector) ObserveCommand(command, status string, duration time.Duration) {
	c.commandsTotal.WithLabelValues(command, status).Inc()
	c.commandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// Write writes all metrics to a Prometheus text file.
func (c *Collector) Write(path string) error {
	metricFamilies, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range metricFamilies {
		if err := enc.Encode(family); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
