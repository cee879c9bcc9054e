package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/postgres"
)

// liveStore connects to the database configured through REP_POSTGRES_* and
// skips the test when REP_TEST_POSTGRES is unset.
func liveStore(t *testing.T) (*SnapshotStore, *postgres.Client) {
	t.Helper()
	if os.Getenv("REP_TEST_POSTGRES") == "" {
		t.Skip("set REP_TEST_POSTGRES=1 to run snapshot store tests against a live database")
	}

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	client, err := postgres.New(cfg.Postgres)
	if err != nil {
		t.Fatalf("connecting to postgres: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return NewSnapshotStore(client, nil), client
}

func seedSnapshot(t *testing.T, client *postgres.Client, variant, query string, docs []string) {
	t.Helper()
	ctx := context.Background()
	err := client.InTx(ctx, func(tx *sql.Tx) error {
		for rank, doc := range docs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO ranking_snapshots (variant, query, rank, doc_id) VALUES ($1, $2, $3, $4)`,
				variant, query, rank, doc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seeding snapshot: %v", err)
	}
	t.Cleanup(func() {
		client.DB.ExecContext(context.Background(),
			`DELETE FROM ranking_snapshots WHERE variant = $1`, variant)
	})
}

func TestSnapshotStoreRanking(t *testing.T) {
	store, client := liveStore(t)
	ctx := context.Background()

	variant := fmt.Sprintf("test-variant-%d", time.Now().UnixNano())
	seedSnapshot(t, client, variant, "espresso machines", []string{"doc-9", "doc-2", "doc-5"})

	docs, err := store.Ranking(ctx, variant, "espresso machines")
	if err != nil {
		t.Fatalf("Ranking: %v", err)
	}
	want := []string{"doc-9", "doc-2", "doc-5"}
	if len(docs) != len(want) {
		t.Fatalf("got %d docs, want %d", len(docs), len(want))
	}
	for i := range want {
		if docs[i] != want[i] {
			t.Errorf("rank %d = %q, want %q", i, docs[i], want[i])
		}
	}
}

func TestSnapshotStoreNotFound(t *testing.T) {
	store, _ := liveStore(t)

	_, err := store.Ranking(context.Background(), "no-such-variant", "no such query")
	if !errors.Is(err, apperrors.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
	if status := apperrors.HTTPStatusCode(err); status != 404 {
		t.Errorf("status = %d, want 404", status)
	}
}

func TestSnapshotStoreVariants(t *testing.T) {
	store, client := liveStore(t)
	ctx := context.Background()

	variantA := fmt.Sprintf("test-a-%d", time.Now().UnixNano())
	variantB := fmt.Sprintf("test-b-%d", time.Now().UnixNano())
	seedSnapshot(t, client, variantA, "drip kettles", []string{"doc-1"})
	seedSnapshot(t, client, variantB, "drip kettles", []string{"doc-2"})

	variants, err := store.Variants(ctx, "drip kettles")
	if err != nil {
		t.Fatalf("Variants: %v", err)
	}
	found := map[string]bool{}
	for _, v := range variants {
		found[v] = true
	}
	if !found[variantA] || !found[variantB] {
		t.Errorf("variants %v missing seeded entries %q, %q", variants, variantA, variantB)
	}
}
