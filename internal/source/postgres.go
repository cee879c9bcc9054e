package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/resilience"
)

const queryTimeout = 5 * time.Second

// SnapshotStore reads ranked result lists captured by the serving pipeline.
// It expects a ranking_snapshots table:
//
//	CREATE TABLE ranking_snapshots (
//	    variant     TEXT        NOT NULL,
//	    query       TEXT        NOT NULL,
//	    rank        INT         NOT NULL,
//	    doc_id      TEXT        NOT NULL,
//	    captured_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    PRIMARY KEY (variant, query, rank)
//	);
//
// Snapshots are written by the capture side of the platform; this store only
// ever reads them.
type SnapshotStore struct {
	db      *postgres.Client
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewSnapshotStore(db *postgres.Client, m *metrics.Metrics) *SnapshotStore {
	return &SnapshotStore{
		db:      db,
		metrics: m,
		logger:  logger.WithComponent("snapshot-store"),
	}
}

// Ranking returns the captured list for one variant and query, ordered by
// rank. Transient database failures are retried; an empty result maps to
// ErrSnapshotNotFound.
func (s *SnapshotStore) Ranking(ctx context.Context, variant, query string) ([]string, error) {
	var docs []string
	err := resilience.Retry(ctx, "snapshot-load", resilience.RetryConfig{MaxAttempts: 3}, func() error {
		return resilience.WithTimeout(ctx, queryTimeout, "snapshot-query", func(ctx context.Context) error {
			rows, err := s.db.DB.QueryContext(ctx,
				`SELECT doc_id FROM ranking_snapshots WHERE variant = $1 AND query = $2 ORDER BY rank`,
				variant, query)
			if err != nil {
				return fmt.Errorf("querying ranking snapshot: %w", err)
			}
			defer rows.Close()

			docs = docs[:0]
			for rows.Next() {
				var docID string
				if err := rows.Scan(&docID); err != nil {
					return fmt.Errorf("scanning snapshot row: %w", err)
				}
				docs = append(docs, docID)
			}
			return rows.Err()
		})
	})
	if err != nil {
		s.countLoad("error")
		return nil, err
	}
	if len(docs) == 0 {
		s.countLoad("not_found")
		return nil, apperrors.Newf(apperrors.ErrSnapshotNotFound, http.StatusNotFound,
			"no snapshot for variant %q and query %q", variant, query)
	}

	s.countLoad("ok")
	s.logger.Debug("snapshot loaded", "variant", variant, "query", query, "items", len(docs))
	return docs, nil
}

// Variants lists the variants that have a captured snapshot for the query.
func (s *SnapshotStore) Variants(ctx context.Context, query string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT DISTINCT variant FROM ranking_snapshots WHERE query = $1 ORDER BY variant`,
		query)
	if err != nil {
		return nil, fmt.Errorf("listing snapshot variants: %w", err)
	}
	defer rows.Close()

	var variants []string
	for rows.Next() {
		var variant string
		if err := rows.Scan(&variant); err != nil {
			return nil, fmt.Errorf("scanning variant row: %w", err)
		}
		variants = append(variants, variant)
	}
	return variants, rows.Err()
}

func (s *SnapshotStore) countLoad(status string) {
	if s.metrics != nil {
		s.metrics.SnapshotLoadsTotal.WithLabelValues(status).Inc()
	}
}
