package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrUnrecoverable is returned when neither WAL replay nor any backup yields
// a healthy database.
var ErrUnrecoverable = errors.New("database could not be recovered")

// RecoveryOutcome is the end state of Recover.
type RecoveryOutcome string

const (
	RecoveryHealthy  RecoveryOutcome = "healthy"
	RecoveryWAL      RecoveryOutcome = "wal_replayed"
	RecoveryRestored RecoveryOutcome = "restored_from_backup"
	RecoveryFailed   RecoveryOutcome = "failed"
)

// RecoveryStep records one phase of a recovery attempt.
type RecoveryStep struct {
	Name     string
	OK       bool
	Detail   string
	Duration time.Duration
}

// RecoveryReport describes what Recover did.
type RecoveryReport struct {
	Outcome    RecoveryOutcome
	Path       string
	BackupUsed string
	Steps      []RecoveryStep
}

func (r *RecoveryReport) step(name string, fn func() (string, error)) bool {
	start := time.Now()
	detail, err := fn()
	s := RecoveryStep{Name: name, OK: err == nil, Detail: detail, Duration: time.Since(start)}
	if err != nil {
		s.Detail = err.Error()
	}
	r.Steps = append(r.Steps, s)
	return s.OK
}

// Recover makes sure the file at dbPath is usable before it is opened. It
// checks integrity, then replays the WAL, then restores the newest healthy
// backup from backupDir. A missing file is healthy: it is a first run.
func Recover(dbPath, backupDir string) (*RecoveryReport, error) {
	report := &RecoveryReport{Path: dbPath, Outcome: RecoveryHealthy}

	if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
		report.Steps = append(report.Steps, RecoveryStep{Name: "exists", OK: true, Detail: "no database yet"})
		return report, nil
	}

	if report.step("integrity_check", func() (string, error) { return "ok", checkFile(dbPath) }) {
		return report, nil
	}
	slog.Warn("database failed integrity check", "path", dbPath)

	if _, err := os.Stat(dbPath + "-wal"); err == nil {
		replayed := report.step("wal_replay", func() (string, error) { return "checkpointed", replayWAL(dbPath) })
		if replayed && report.step("post_wal_check", func() (string, error) { return "ok", checkFile(dbPath) }) {
			report.Outcome = RecoveryWAL
			slog.Info("database recovered by WAL replay", "path", dbPath)
			return report, nil
		}
	}

	if backupDir != "" {
		var used string
		if report.step("restore_backup", func() (string, error) {
			var err error
			used, err = restoreNewestBackup(dbPath, backupDir)
			return used, err
		}) {
			report.Outcome = RecoveryRestored
			report.BackupUsed = used
			slog.Warn("database restored from backup", "path", dbPath, "backup", used)
			return report, nil
		}
	}

	report.Outcome = RecoveryFailed
	slog.Error("database recovery failed", "path", dbPath, "steps", len(report.Steps))
	return report, ErrUnrecoverable
}

// checkFile runs an integrity check on a database file opened read-only.
func checkFile(path string) error {
	conn, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rows, err := conn.QueryContext(ctx, "PRAGMA integrity_check")
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
		return err
	}
	if len(problems) > 0 {
		return fmt.Errorf("integrity check failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

func replayWAL(path string) error {
	conn, err := sql.Open("sqlite", fmt.Sprintf("file:%s", path))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := conn.ExecContext(ctx, "PRAGMA wal_checkpoint(RESTART)"); err != nil {
		return fmt.Errorf("WAL checkpoint: %w", err)
	}
	return nil
}

// restoreNewestBackup replaces dbPath with the newest backup that passes an
// integrity check. The damaged file is kept beside the original with a
// .corrupted suffix.
func restoreNewestBackup(dbPath, backupDir string) (string, error) {
	backups, err := listBackups(backupDir)
	if err != nil {
		return "", err
	}
	if len(backups) == 0 {
		return "", errors.New("no backup files found")
	}

	for _, candidate := range backups {
		if err := checkFile(candidate); err != nil {
			slog.Debug("skipping unhealthy backup", "path", candidate, "error", err)
			continue
		}

		keep := dbPath + ".corrupted." + time.Now().UTC().Format("20060102-150405")
		if err := os.Rename(dbPath, keep); err != nil {
			slog.Warn("could not preserve damaged database", "path", dbPath, "error", err)
		}
		os.Remove(dbPath + "-wal")
		os.Remove(dbPath + "-shm")

		if err := copyFile(candidate, dbPath); err != nil {
			return "", fmt.Errorf("copying backup: %w", err)
		}
		return candidate, nil
	}
	return "", errors.New("no healthy backup found")
}

// listBackups returns backup files in dir, newest first.
func listBackups(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}

	type entry struct {
		path string
		mod  time.Time
	}
	var found []entry
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".db") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		found = append(found, entry{filepath.Join(dir, e.Name()), info.ModTime()})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].mod.After(found[j].mod) })

	out := make([]string, len(found))
	for i, f := range found {
		out[i] = f.path
	}
	return out, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0640)
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying data: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return fmt.Errorf("syncing destination: %w", err)
	}
	return out.Close()
}
