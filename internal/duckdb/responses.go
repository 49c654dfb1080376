package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SourceStats summarizes the cached responses of one source.
type SourceStats struct {
	Source  string
	Entries int64
	Bytes   int64
	Newest  time.Time
}

// Get returns the cached payload for (source, key).
func (s *Store) Get(ctx context.Context, source, key string) ([]byte, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM responses WHERE source=? AND key=?`, source, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query response: %w", err)
	}
	return payload, true, nil
}

// Put stores a payload, replacing any previous entry for (source, key).
func (s *Store) Put(ctx context.Context, source, key string, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO responses (source, key, payload, fetched_at) VALUES (?, ?, ?, ?)`,
		source, key, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store response: %w", err)
	}
	return nil
}

// Clear removes cached responses. An empty source clears everything.
func (s *Store) Clear(ctx context.Context, source string) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if source == "" {
		res, err = s.db.ExecContext(ctx, "DELETE FROM responses")
	} else {
		res, err = s.db.ExecContext(ctx, "DELETE FROM responses WHERE source=?", source)
	}
	if err != nil {
		return 0, fmt.Errorf("clear responses: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of cached responses.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM responses").Scan(&n); err != nil {
		return 0, fmt.Errorf("count responses: %w", err)
	}
	return n, nil
}

// Stats returns per-source entry counts and sizes, ordered by source.
func (s *Store) Stats(ctx context.Context) ([]SourceStats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		source, COUNT(*), CAST(COALESCE(SUM(octet_length(payload)), 0) AS BIGINT), MAX(fetched_at)
		FROM responses
		GROUP BY source
		ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var stats []SourceStats
	for rows.Next() {
		var st SourceStats
		if err := rows.Scan(&st.Source, &st.Entries, &st.Bytes, &st.Newest); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats: %w", err)
	}
	return stats, nil
}
