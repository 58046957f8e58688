// Package database manages the faultdesk SQLite store: connection setup,
// WAL pragmas, integrity checks, scheduled backups and migrations.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gridline/faultdesk/internal/config"

	_ "modernc.org/sqlite"
)

// ErrClosed is returned for operations on a closed DB.
var ErrClosed = errors.New("database is closed")

// backupPrefix names every backup file so retention only touches our files.
const backupPrefix = "faultdesk-"

// DB is the application's single SQLite connection.
type DB struct {
	*sql.DB
	path      string
	cfg       config.DatabaseConfig
	backupDir string

	mu     sync.RWMutex
	closed bool
	stop   chan struct{}
	wg     sync.WaitGroup
}

// pragmas are applied in order on every new connection.
var pragmas = []struct {
	name  string
	value string
}{
	{"journal_mode", "WAL"},
	{"synchronous", "NORMAL"},
	{"busy_timeout", "5000"},
	{"foreign_keys", "ON"},
	{"cache_size", "-16000"},
}

// Open connects to the database at dbPath, applies pragmas and starts the
// backup scheduler when cfg asks for one. A failed integrity check is logged,
// not returned; callers run Recover first when they need a healthy file.
func Open(dbPath string, cfg *config.DatabaseConfig, backupDir string) (*DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_txlock=immediate", dbPath))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One writer; everything goes through a single connection.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	db := &DB{
		DB:        sqlDB,
		path:      dbPath,
		backupDir: backupDir,
		stop:      make(chan struct{}),
	}
	if cfg != nil {
		db.cfg = *cfg
	}

	if err := db.applyPragmas(context.Background()); err != nil {
		sqlDB.Close()
		return nil, err
	}

	if err := db.CheckIntegrity(context.Background()); err != nil {
		slog.Warn("database integrity check failed", "path", dbPath, "error", err)
	}

	if db.cfg.BackupIntervalHours > 0 && backupDir != "" {
		db.scheduleBackups(time.Duration(db.cfg.BackupIntervalHours) * time.Hour)
	}

	return db, nil
}

func (db *DB) applyPragmas(ctx context.Context) error {
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA %s=%s", p.name, p.value)); err != nil {
			return fmt.Errorf("setting pragma %s: %w", p.name, err)
		}
	}
	return nil
}

// CheckIntegrity runs PRAGMA integrity_check and fails unless it reports ok.
func (db *DB) CheckIntegrity(ctx context.Context) error {
	rows, err := db.QueryContext(ctx, "PRAGMA integrity_check")
	if err != nil {
		return fmt.Errorf("running integrity check: %w", err)
	}
	defer rows.Close()

	var problems []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return fmt.Errorf("scanning integrity result: %w", err)
		}
		if line != "ok" {
			problems = append(problems, line)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading integrity results: %w", err)
	}

	if len(problems) > 0 {
		return fmt.Errorf("integrity check failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Checkpoint flushes the WAL into the main database file.
func (db *DB) Checkpoint(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("WAL checkpoint: %w", err)
	}
	return nil
}

// Backup writes a consistent copy of the database into the backup directory
// with VACUUM INTO and prunes copies older than the retention period.
func (db *DB) Backup(ctx context.Context) (string, error) {
	if db.backupDir == "" {
		return "", errors.New("backup directory not configured")
	}
	if err := os.MkdirAll(db.backupDir, 0750); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}

	name := backupPrefix + time.Now().UTC().Format("20060102-150405.000") + ".db"
	target := filepath.Join(db.backupDir, name)

	if err := db.Checkpoint(ctx); err != nil {
		slog.Warn("checkpoint before backup failed", "error", err)
	}

	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", target); err != nil {
		return "", fmt.Errorf("creating backup: %w", err)
	}
	slog.Info("database backup created", "path", target)

	if db.cfg.BackupRetentionDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -db.cfg.BackupRetentionDays)
		if n := pruneBackups(db.backupDir, cutoff); n > 0 {
			slog.Debug("pruned old backups", "count", n)
		}
	}

	return target, nil
}

// pruneBackups removes backup files modified before cutoff and returns how
// many were removed.
func pruneBackups(dir string, cutoff time.Time) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Warn("reading backup directory", "error", err)
		return 0
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), backupPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := os.Remove(path); err != nil {
			slog.Warn("removing old backup", "path", path, "error", err)
			continue
		}
		removed++
	}
	return removed
}

func (db *DB) scheduleBackups(every time.Duration) {
	db.wg.Add(1)
	go func() {
		defer db.wg.Done()
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				if _, err := db.Backup(ctx); err != nil {
					slog.Error("scheduled backup failed", "error", err)
				}
				cancel()
			case <-db.stop:
				return
			}
		}
	}()
}

// Close stops the backup scheduler, checkpoints the WAL and closes the
// connection. Calling Close more than once is a no-op.
func (db *DB) Close() error {
	db.mu.Lock()
	if db.closed {
		db.mu.Unlock()
		return nil
	}
	db.closed = true
	close(db.stop)
	db.mu.Unlock()

	db.wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.Checkpoint(ctx); err != nil {
		slog.Warn("final checkpoint failed", "error", err)
	}

	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	slog.Debug("database closed", "path", db.path)
	return nil
}

// IsClosed returns true if the database has been closed.
func (db *DB) IsClosed() bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.closed
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// WithTransaction runs fn inside a transaction, committing when fn returns
// nil and rolling back otherwise.
func (db *DB) WithTransaction(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	if db.IsClosed() {
		return ErrClosed
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rolling back after %v: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// HealthCheck verifies the connection answers a trivial query.
func (db *DB) HealthCheck(ctx context.Context) error {
	if db.IsClosed() {
		return ErrClosed
	}
	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("health check query: %w", err)
	}
	return nil
}

// Stats describes the database file.
type Stats struct {
	Path          string
	SizeBytes     int64
	WALSizeBytes  int64
	PageCount     int64
	PageSize      int64
	SchemaVersion int
	JournalMode   string
}

// GetStats collects file and page statistics plus the applied migration
// version.
func (db *DB) GetStats(ctx context.Context) (*Stats, error) {
	s := &Stats{Path: db.path}

	if info, err := os.Stat(db.path); err == nil {
		s.SizeBytes = info.Size()
	}
	if info, err := os.Stat(db.path + "-wal"); err == nil {
		s.WALSizeBytes = info.Size()
	}

	if err := db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&s.PageCount); err != nil {
		return nil, fmt.Errorf("reading page_count: %w", err)
	}
	if err := db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&s.PageSize); err != nil {
		return nil, fmt.Errorf("reading page_size: %w", err)
	}
	if err := db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&s.JournalMode); err != nil {
		return nil, fmt.Errorf("reading journal_mode: %w", err)
	}

	version, err := db.SchemaVersion(ctx)
	if err != nil {
		return nil, err
	}
	s.SchemaVersion = version
	return s, nil
}
