package syncx_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mind-engage/mcq-docgen/internal/db"
	syncx "github.com/mind-engage/mcq-docgen/internal/sync"
)

func TestEventRepoAppendSince(t *testing.T) {
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer dbh.Close()

	repo := syncx.NewEventRepo(dbh, "")
	if err := repo.AppendJSON(ctx, syncx.TypeConversionArchived, "c1", map[string]int{"questions": 2}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := repo.Append(ctx, syncx.Event{SiteID: "edge-1", Type: "Custom", Key: "c2", DataJSON: "{}"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	evs, err := repo.Since(ctx, 0, 10)
	if err != nil {
		t.Fatalf("since: %v", err)
	}
	if len(evs) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evs))
	}
	if evs[0].SiteID != "local" || evs[0].Key != "c1" || evs[0].DataJSON != `{"questions":2}` {
		t.Fatalf("first event: %+v", evs[0])
	}
	if evs[1].SiteID != "edge-1" {
		t.Fatalf("explicit site id lost: %+v", evs[1])
	}
	later, _ := repo.Since(ctx, evs[0].Seq, 10)
	if len(later) != 1 || later[0].Key != "c2" {
		t.Fatalf("since cursor: %+v", later)
	}
}
