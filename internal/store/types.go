package store

// Snapshot is stored IR text for one model at one optimization level.
type Snapshot struct {
	ID        string `json:"id"`
	Model     string `json:"model"`
	Level     int    `json:"level"`
	Content   string `json:"content"`
	LineCount int    `json:"line_count"`
	Seq       int64  `json:"seq"`
}

// Run kinds.
const (
	RunGraph = "graph"
	RunFuse  = "fuse"
)

// Run records one graph analysis. FusedCounts and Reduction are set only
// for fusion runs, and Reduction stays nil when it is undefined.
type Run struct {
	ID          string         `json:"id"`
	Model       string         `json:"model"`
	Kind        string         `json:"kind"`
	GraphDigest string         `json:"graph_digest"`
	NodeCount   int            `json:"node_count"`
	EdgeCount   int            `json:"edge_count"`
	Counts      map[string]int `json:"counts"`
	FusedCounts map[string]int `json:"fused_counts,omitempty"`
	Reduction   *float64       `json:"reduction,omitempty"`
	Seq         int64          `json:"seq"`
}
