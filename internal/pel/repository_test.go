package pel

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/panelworks/panel-core/internal/infrastructure/database"
	_ "github.com/panelworks/panel-core/migrations" // register embedded migrations
)

// setupTestDB opens a fresh migrated database in a temp directory.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

func testEntry(platformID uint64, severity string, raisedAt time.Time) *Entry {
	return &Entry{
		PlatformID: platformID,
		Severity:   severity,
		Message:    "test event",
		RaisedAt:   raisedAt,
	}
}

func TestCreateGeneratesID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db.DB)
	ctx := context.Background()

	entry := testEntry(1001, "error", time.Now().UTC())
	if err := repo.Create(ctx, entry); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if entry.ID == "" {
		t.Error("Create() did not generate an ID")
	}
	if entry.ID[:4] != "pel-" {
		t.Errorf("ID = %q, want pel- prefix", entry.ID)
	}
	if entry.CreatedAt.IsZero() {
		t.Error("Create() did not set CreatedAt")
	}
}

func TestCreateDuplicatePlatformID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db.DB)
	ctx := context.Background()

	raised := time.Now().UTC()
	if err := repo.Create(ctx, testEntry(2001, "error", raised)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	// Redelivered notification for the same platform event must not fail.
	if err := repo.Create(ctx, testEntry(2001, "error", raised)); err != nil {
		t.Fatalf("Create() duplicate error = %v", err)
	}

	result, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Total != 1 {
		t.Errorf("Total = %d, want 1 (duplicate ignored)", result.Total)
	}
}

func TestListOrderAndFilter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db.DB)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, severity := range []string{"error", "warning", "error"} {
		entry := testEntry(uint64(3000+i), severity, base.Add(time.Duration(i)*time.Minute)) //nolint:gosec // small test index
		if err := repo.Create(ctx, entry); err != nil {
			t.Fatalf("Create(%d) error = %v", i, err)
		}
	}

	result, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Total != 3 {
		t.Fatalf("Total = %d, want 3", result.Total)
	}
	// Most recently raised first.
	if result.Entries[0].PlatformID != 3002 {
		t.Errorf("Entries[0].PlatformID = %d, want 3002", result.Entries[0].PlatformID)
	}

	errors, err := repo.List(ctx, Filter{Severity: "error"})
	if err != nil {
		t.Fatalf("List(severity) error = %v", err)
	}
	if errors.Total != 2 {
		t.Errorf("severity filter Total = %d, want 2", errors.Total)
	}
	for _, e := range errors.Entries {
		if e.Severity != "error" {
			t.Errorf("entry %s severity = %q, want error", e.ID, e.Severity)
		}
	}
}

func TestListPagination(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db.DB)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		entry := testEntry(uint64(4000+i), "info", base.Add(time.Duration(i)*time.Minute)) //nolint:gosec // small test index
		if err := repo.Create(ctx, entry); err != nil {
			t.Fatalf("Create(%d) error = %v", i, err)
		}
	}

	page, err := repo.List(ctx, Filter{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Total != 5 {
		t.Errorf("Total = %d, want 5", page.Total)
	}
	if len(page.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(page.Entries))
	}
	if page.Entries[0].PlatformID != 4002 {
		t.Errorf("Entries[0].PlatformID = %d, want 4002", page.Entries[0].PlatformID)
	}
}

func TestListEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db.DB)

	result, err := repo.List(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Entries == nil {
		t.Error("Entries should be an empty slice, not nil")
	}
	if result.Total != 0 {
		t.Errorf("Total = %d, want 0", result.Total)
	}
}

func TestPrune(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db.DB)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		entry := testEntry(uint64(5000+i), "info", base.Add(time.Duration(i)*time.Minute)) //nolint:gosec // small test index
		if err := repo.Create(ctx, entry); err != nil {
			t.Fatalf("Create(%d) error = %v", i, err)
		}
	}

	removed, err := repo.Prune(ctx, 3)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 7 {
		t.Errorf("Prune() removed = %d, want 7", removed)
	}

	result, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Total != 3 {
		t.Fatalf("Total = %d, want 3 after prune", result.Total)
	}
	// The newest three survive.
	if result.Entries[0].PlatformID != 5009 {
		t.Errorf("Entries[0].PlatformID = %d, want 5009", result.Entries[0].PlatformID)
	}
}

func TestPruneNegativeKeep(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db.DB)

	if _, err := repo.Prune(context.Background(), -1); err == nil {
		t.Error("Prune(-1) should return an error")
	}
}
