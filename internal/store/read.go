package store

import (
	"context"
	"database/sql"
	"fmt"
)

type scanner interface {
	Scan(dest ...any) error
}

// ReadSnapshot returns the most recently written snapshot of model at level.
// Returns an error wrapping sql.ErrNoRows if there is none.
func (s *Store) ReadSnapshot(ctx context.Context, model string, level int) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, model, level, content, line_count, seq
		FROM snapshots
		WHERE model = ? AND level = ?
		ORDER BY seq DESC, id COLLATE BINARY DESC
		LIMIT 1
	`, model, level)

	snap, err := scanSnapshot(row)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot %s@%d: %w", model, level, err)
	}
	return snap, nil
}

// ListSnapshots returns every snapshot of model ordered by level, then seq.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListSnapshots(ctx context.Context, model string) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, model, level, content, line_count, seq
		FROM snapshots
		WHERE model = ?
		ORDER BY level ASC, seq ASC, id COLLATE BINARY ASC
	`, model)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	snaps := []Snapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snaps, nil
}

// LatestSnapshots returns the newest snapshot of each level of model,
// ordered by level.
func (s *Store) LatestSnapshots(ctx context.Context, model string) ([]Snapshot, error) {
	all, err := s.ListSnapshots(ctx, model)
	if err != nil {
		return nil, err
	}

	latest := []Snapshot{}
	for _, snap := range all {
		if n := len(latest); n > 0 && latest[n-1].Level == snap.Level {
			latest[n-1] = snap
			continue
		}
		latest = append(latest, snap)
	}
	return latest, nil
}

// ReadRun retrieves a run by id. Returns an error wrapping sql.ErrNoRows if
// not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, model, kind, graph_digest, node_count, edge_count, counts, fused_counts, reduction, seq
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns the runs of model in write order. An empty model lists
// every run. Returns an empty slice (not nil) if there are none.
func (s *Store) ListRuns(ctx context.Context, model string) ([]Run, error) {
	return s.queryRuns(ctx, `WHERE ? = '' OR model = ?`, model, model)
}

// RunsByDigest returns the runs whose graph had the given digest, in write
// order, across all models.
func (s *Store) RunsByDigest(ctx context.Context, digest string) ([]Run, error) {
	return s.queryRuns(ctx, `WHERE graph_digest = ?`, digest)
}

func (s *Store) queryRuns(ctx context.Context, where string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, model, kind, graph_digest, node_count, edge_count, counts, fused_counts, reduction, seq
		FROM runs
		`+where+`
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func scanSnapshot(row scanner) (Snapshot, error) {
	var snap Snapshot
	err := row.Scan(&snap.ID, &snap.Model, &snap.Level, &snap.Content, &snap.LineCount, &snap.Seq)
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func scanRun(row scanner) (Run, error) {
	var (
		run       Run
		counts    string
		fused     sql.NullString
		reduction sql.NullFloat64
	)
	err := row.Scan(&run.ID, &run.Model, &run.Kind, &run.GraphDigest,
		&run.NodeCount, &run.EdgeCount, &counts, &fused, &reduction, &run.Seq)
	if err != nil {
		return Run{}, err
	}

	if run.Counts, err = unmarshalCounts(counts); err != nil {
		return Run{}, err
	}
	if fused.Valid {
		if run.FusedCounts, err = unmarshalCounts(fused.String); err != nil {
			return Run{}, err
		}
	}
	if reduction.Valid {
		r := reduction.Float64
		run.Reduction = &r
	}
	return run, nil
}
