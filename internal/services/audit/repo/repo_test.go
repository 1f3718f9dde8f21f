package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"modguard/internal/modkit/repokit"
	"modguard/internal/platform/logger"
	"modguard/internal/platform/store"
	"modguard/internal/services/audit/domain"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const schema = `
CREATE TABLE audit_records (
	id uuid PRIMARY KEY,
	message_id text NOT NULL UNIQUE,
	group_id bigint NOT NULL,
	user_id bigint NOT NULL,
	body text NOT NULL,
	verdict text NOT NULL,
	checked_by text NOT NULL,
	detail text NOT NULL DEFAULT '',
	degraded boolean NOT NULL DEFAULT false,
	sent_at timestamptz NOT NULL,
	created_at timestamptz NOT NULL
)`

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test, skipped in -short")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "modguard",
				"POSTGRES_PASSWORD": "modguard",
				"POSTGRES_DB":       "modguard",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}

	host, err := ctr.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := ctr.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}

	st, err := store.Open(ctx, store.Config{
		AppName: "audit-test",
		PG: store.PGConfig{
			Enabled: true,
			URL: fmt.Sprintf("postgres://modguard:modguard@%s:%s/modguard?sslmode=disable",
				host, port.Port()),
		},
	}, store.WithLogger(*logger.Get()))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	if _, err := st.PG.Exec(ctx, schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return st
}

func testRec(off time.Duration, msgID string, group int64) domain.Record {
	return domain.Record{
		ID:        uuid.NewString(),
		MessageID: msgID,
		GroupID:   group,
		UserID:    10,
		Text:      "ciao a tutti",
		Verdict:   "approved",
		Check:     "default",
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Add(off),
		CreatedAt: time.Now().UTC(),
	}
}

func TestRepoRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	recs := []domain.Record{
		testRec(0, "m1", 1),
		testRec(time.Minute, "m2", 2),
	}
	dupe := testRec(2*time.Minute, "m1", 1) // same message id, new uuid

	err := repokit.WithTx(ctx, st.PG, func(q repokit.Queryer) error {
		r := NewPG().Bind(q)
		if err := r.WriteBatch(ctx, recs); err != nil {
			return err
		}
		// a redelivered message id must not create a second row
		return r.WriteBatch(ctx, []domain.Record{dupe})
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	var got []domain.Record
	err = repokit.WithTx(ctx, st.PG, func(q repokit.Queryer) error {
		var err error
		got, err = NewPG().Bind(q).List(ctx, domain.ListQuery{Start: start, End: end, PageSize: 10})
		return err
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows after dedupe, got %d", len(got))
	}
	if got[0].MessageID != "m1" || got[1].MessageID != "m2" {
		t.Fatalf("unexpected order: %s, %s", got[0].MessageID, got[1].MessageID)
	}

	// keyset pagination walks the same set one row at a time
	var paged []domain.Record
	q := domain.ListQuery{Start: start, End: end, PageSize: 1}
	for {
		var page []domain.Record
		err = repokit.WithTx(ctx, st.PG, func(qr repokit.Queryer) error {
			var err error
			page, err = NewPG().Bind(qr).List(ctx, q)
			return err
		})
		if err != nil {
			t.Fatalf("page: %v", err)
		}
		if len(page) == 0 {
			break
		}
		paged = append(paged, page...)
		q.AfterTS = page[len(page)-1].Timestamp
		q.AfterID = page[len(page)-1].ID
	}
	if len(paged) != 2 {
		t.Fatalf("keyset walk found %d rows", len(paged))
	}

	// replay writeback rewrites the verdict in place
	err = repokit.WithTx(ctx, st.PG, func(qr repokit.Queryer) error {
		return NewPG().Bind(qr).UpdateVerdict(ctx, domain.VerdictUpdate{
			ID:      got[0].ID,
			Verdict: "rejected_keyword",
			Check:   "keyword",
			Detail:  "vendo panieri",
		})
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	err = repokit.WithTx(ctx, st.PG, func(qr repokit.Queryer) error {
		var err error
		got, err = NewPG().Bind(qr).List(ctx, domain.ListQuery{Start: start, End: end, PageSize: 10})
		return err
	})
	if err != nil {
		t.Fatalf("list after update: %v", err)
	}
	if got[0].Verdict != "rejected_keyword" || got[0].Detail != "vendo panieri" {
		t.Fatalf("writeback not visible: %+v", got[0])
	}
}
