package repo

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/emoto-backend/internal/domain"
)

func TestOpenSQLite_ErrorOnBadPath(t *testing.T) {
	base := t.TempDir()
	bad := filepath.Join(base, "does-not-exist", "app.db")

	db, err := OpenSQLite(bad)
	if err == nil || db != nil {
		t.Fatalf("expected error opening %q, got db=%v err=%v", bad, db, err)
	}

	// Be tolerant across platforms/drivers:
	// - Windows: *os.PathError ("CreateFile â€¦ cannot find the file specified")
	// - SQLite:  "unable to open database file" / "out of memory (14)"
	// - Unix:    "no such file or directory"
	lower := strings.ToLower(err.Error())
	if !(os.IsNotExist(err) ||
		strings.Contains(lower, "unable to open database file") ||
		strings.Contains(lower, "no such file or directory") ||
		strings.Contains(lower, "out of memory")) {
		t.Fatalf("unexpected error opening %q: %v", bad, err)
	}
}

func TestOpenSQLite_SetsPragmas_Pool_AndAutoMigrate(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "app.db")

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	// --- Verify PRAGMAs set by OpenSQLite ---
	var (
		journalMode string
		syncVal     int
		fkOn        int
		busyMS      int
	)

	if err := db.Raw("PRAGMA journal_mode;").Row().Scan(&journalMode); err != nil {
		t.Fatalf("PRAGMA journal_mode: %v", err)
	}
	if strings.ToLower(journalMode) != "wal" {
		t.Fatalf("expected journal_mode=wal, got %q", journalMode)
	}

	if err := db.Raw("PRAGMA synchronous;").Row().Scan(&syncVal); err != nil {
		t.Fatalf("PRAGMA synchronous: %v", err)
	}
	// NORMAL == 1
	if syncVal != 1 {
		t.Fatalf("expected synchronous=1 (NORMAL), got %d", syncVal)
	}

	if err := db.Raw("PRAGMA foreign_keys;").Row().Scan(&fkOn); err != nil {
		t.Fatalf("PRAGMA foreign_keys: %v", err)
	}
	if fkOn != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fkOn)
	}

	if err := db.Raw("PRAGMA busy_timeout;").Row().Scan(&busyMS); err != nil {
		t.Fatalf("PRAGMA busy_timeout: %v", err)
	}
	if busyMS != 5000 {
		t.Fatalf("expected busy_timeout=5000, got %d", busyMS)
	}

	// --- Verify pool tuning applied ---
	if stats := sqlDB.Stats(); stats.MaxOpenConnections != 10 {
		t.Fatalf("expected MaxOpenConnections=10, got %d", stats.MaxOpenConnections)
	}

	// --- AutoMigrate should create all tables ---
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	m := db.Migrator()
	for _, tbl := range []any{&domain.Emoto{}, &domain.Profile{}, &domain.Message{}, &domain.Idempotency{}} {
		if !m.HasTable(tbl) {
			t.Fatalf("expected table for %T to exist", tbl)
		}
	}

	// Quick insert round-trip to prove schema is usable.
	now := time.Now().UTC().Truncate(time.Second)
	p := &domain.Profile{Username: "alice", PresenceTimestamp: now}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("insert profile: %v", err)
	}
	msg := &domain.Message{Text: "hi", AuthorUsername: "alice", CreatedTime: now}
	if err := db.Create(msg).Error; err != nil {
		t.Fatalf("insert message: %v", err)
	}

	// foreign_keys applies on every pooled connection: an orphan message fails.
	orphan := &domain.Message{Text: "x", AuthorUsername: "ghost", CreatedTime: now}
	if err := db.Create(orphan).Error; err == nil {
		t.Fatalf("expected FK violation for unknown author")
	}

	var got domain.Profile
	if err := db.First(&got, "username = ?", "alice").Error; err != nil || got.Username != "alice" {
		t.Fatalf("readback profile failed: err=%v got=%+v", err, got)
	}
}

func TestOpenSQLite_WithTracingAndSilent(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "traced.db"), Options{Tracing: true, Silent: true})
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	if _, ok := db.Config.Plugins["otelgorm"]; !ok {
		t.Fatalf("expected otel gorm plugin to be registered, got %v", db.Config.Plugins)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
}

func TestWithPragmas(t *testing.T) {
	got := withPragmas("app.db")
	if !strings.HasPrefix(got, "app.db?_pragma=journal_mode(WAL)&") || !strings.Contains(got, "&_pragma=foreign_keys(1)") {
		t.Fatalf("unexpected dsn %q", got)
	}
	if got := withPragmas("file:x.db?mode=memory"); !strings.HasPrefix(got, "file:x.db?mode=memory&_pragma=") {
		t.Fatalf("existing query not extended: %q", got)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if isUniqueViolation(nil) {
		t.Fatalf("nil is not a violation")
	}
	if !isUniqueViolation(gorm.ErrDuplicatedKey) {
		t.Fatalf("gorm.ErrDuplicatedKey must count")
	}
	if !isUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: profiles.username (2067)")) {
		t.Fatalf("sqlite text must count")
	}
	if err := mapWriteErr(errors.New("UNIQUE constraint failed: x")); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("mapWriteErr should wrap ErrDuplicate, got %v", err)
	}
	if err := mapWriteErr(errors.New("disk full")); errors.Is(err, ErrDuplicate) {
		t.Fatalf("unrelated errors must pass through")
	}
}

// Compile-time guard to ensure signature stability.
var _ func(string, ...Options) (*gorm.DB, error) = OpenSQLite
