package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/xplain/internal/digest"
	"github.com/roach88/xplain/internal/irdiff"
)

// WriteSnapshot stores content as the IR of model at level. The snapshot id
// is derived from (model, level, content), so writing the same text twice
// is a no-op; created reports whether a new row was inserted.
func (s *Store) WriteSnapshot(ctx context.Context, model string, level int, content string) (id string, created bool, err error) {
	if strings.TrimSpace(model) == "" {
		return "", false, fmt.Errorf("write snapshot: model is required")
	}
	if level < 0 {
		return "", false, fmt.Errorf("write snapshot: level must be >= 0, got %d", level)
	}

	id = digest.SnapshotID(model, level, content)
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, model, level, content, line_count, seq)
		VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM snapshots))
		ON CONFLICT(id) DO NOTHING
	`, id, model, level, content, len(irdiff.SplitLines(content)))
	if err != nil {
		return "", false, fmt.Errorf("write snapshot: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return "", false, fmt.Errorf("write snapshot: %w", err)
	}
	return id, n > 0, nil
}

// WriteRun stores run. An empty ID is replaced with a new UUIDv7; Seq is
// always assigned by the store. The stored run is returned.
func (s *Store) WriteRun(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return Run{}, fmt.Errorf("write run: generate id: %w", err)
		}
		run.ID = id.String()
	}
	if run.Kind != RunGraph && run.Kind != RunFuse {
		return Run{}, fmt.Errorf("write run: unknown kind %q", run.Kind)
	}

	counts, err := marshalCounts(run.Counts)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}
	fused, err := marshalOptionalCounts(run.FusedCounts)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, model, kind, graph_digest, node_count, edge_count, counts, fused_counts, reduction, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM runs))
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Model,
		run.Kind,
		run.GraphDigest,
		run.NodeCount,
		run.EdgeCount,
		counts,
		fused,
		run.Reduction,
	)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}

	return s.ReadRun(ctx, run.ID)
}
