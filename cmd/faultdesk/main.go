// faultdesk: fault and asset desk for an electricity distribution network.
//
// Operators record outages against the network, and the desk reports
// SAIDI, SAIFI, CAIDI and MTTR for the regions and districts they may see.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gridline/faultdesk/internal/access"
	"github.com/gridline/faultdesk/internal/config"
	"github.com/gridline/faultdesk/internal/database"
	"github.com/gridline/faultdesk/internal/database/seed"
	"github.com/gridline/faultdesk/internal/metrics"
	"github.com/gridline/faultdesk/internal/repository"
	assetsvc "github.com/gridline/faultdesk/internal/services/assets"
	"github.com/gridline/faultdesk/internal/services/outages"
	"github.com/gridline/faultdesk/internal/tui"
	"github.com/gridline/faultdesk/internal/util"
)

// Build information (set via ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

type options struct {
	configPath  string
	migrateOnly bool
	seedData    bool
	debugMode   bool
	report      bool
	role        string
	region      string
	district    string
}

func main() {
	var (
		opts        options
		showVersion bool
	)
	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.BoolVar(&opts.migrateOnly, "migrate-only", false, "Run migrations and exit")
	flag.BoolVar(&opts.seedData, "seed", false, "Generate seed data")
	flag.BoolVar(&showVersion, "version", false, "Show version and exit")
	flag.BoolVar(&opts.debugMode, "debug", false, "Enable debug logging")
	flag.BoolVar(&opts.report, "report", false, "Print the reliability report for the operator's scope and exit")
	flag.StringVar(&opts.role, "role", "", "Operator role (overrides config)")
	flag.StringVar(&opts.region, "region", "", "Operator region id, code or name (overrides config)")
	flag.StringVar(&opts.district, "district", "", "Operator district id, code or name (overrides config)")
	flag.Parse()

	if showVersion {
		fmt.Printf("faultdesk version %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		slog.Info("received shutdown signal", "signal", sig)
		cancel()

		// Force exit after timeout
		time.AfterFunc(10*time.Second, func() {
			slog.Error("forced shutdown after timeout")
			os.Exit(1)
		})
	}()

	if err := run(ctx, opts); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, cfgPath, err := config.Load(opts.configPath, true)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	closeLog, err := setupLogging(cfg, opts.debugMode)
	if err != nil {
		return err
	}
	defer closeLog()

	slog.Info("faultdesk starting",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cfgPath,
	)

	dbPath, err := config.EnsureDataDir(cfg)
	if err != nil {
		return fmt.Errorf("ensuring data directory: %w", err)
	}

	backupDir, err := config.BackupDir(cfg)
	if err != nil {
		slog.Warn("failed to create backup directory", "error", err)
		backupDir = ""
	}

	report, err := database.Recover(dbPath, backupDir)
	if err != nil {
		return fmt.Errorf("database recovery failed: %w", err)
	}
	switch report.Outcome {
	case database.RecoveryRestored:
		slog.Warn("database restored from backup", "backup", report.BackupUsed)
	case database.RecoveryWAL:
		slog.Warn("database recovered from WAL")
	default:
		slog.Debug("database integrity verified", "steps", len(report.Steps))
	}

	db, err := database.Open(dbPath, &cfg.Database, backupDir)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		slog.Info("closing database")
		if err := db.Close(); err != nil {
			slog.Error("error closing database", "error", err)
		}
	}()

	migrator, err := database.NewMigrator(db)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	result, err := migrator.MigrateUp(ctx)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	if len(result.Applied) > 0 {
		slog.Info("applied migrations",
			"count", len(result.Applied),
			"to_version", result.ToVersion,
		)
	}

	if opts.migrateOnly {
		slog.Info("migrations complete, exiting")
		return nil
	}

	if opts.seedData {
		var count int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM districts").Scan(&count); err == nil && count > 0 {
			slog.Warn("database already contains a network, skipping seed generation", "districts", count)
			return nil
		}
		if _, err := seed.NewGenerator(db.DB, seed.DefaultConfig()).Generate(ctx); err != nil {
			return fmt.Errorf("generating seed data: %w", err)
		}
		return nil
	}

	ref, err := repository.NewRegionRepository(db.DB).LoadReferenceData(ctx)
	if err != nil {
		return fmt.Errorf("loading reference data: %w", err)
	}
	if len(ref.Districts) == 0 {
		slog.Warn("no districts configured; run with -seed to generate a sample network")
	}

	principal, err := operator(cfg, opts)
	if err != nil {
		return fmt.Errorf("operator: %w", err)
	}
	slog.Info("operator signed in",
		"subject", principal.Subject,
		"role", principal.Role,
		"scope", principal.ScopeLabel(),
	)

	clock := util.SystemClock{}
	logger := slog.Default()
	policy := access.NewPolicy(access.NewDirectory(ref), logger)
	outageSvc := outages.NewService(db.DB, ref, policy, outages.Options{
		Engine:           metrics.Engine{RejectNegative: cfg.Metrics.RejectNegativeDurations},
		Clock:            clock,
		Logger:           logger,
		ReportWindowDays: cfg.Metrics.ReportWindowDays,
	})
	assetSvc := assetsvc.NewService(db.DB, ref, policy, clock, logger, cfg.Metrics.InspectionIntervalDays)

	if opts.report {
		r, err := outageSvc.Report(ctx, &principal, outages.ReportInput{})
		if err != nil {
			return fmt.Errorf("building report: %w", err)
		}
		return writeReport(os.Stdout, cfg, r)
	}

	tui.Version = Version
	tui.BuildTime = BuildTime

	slog.Info("starting TUI", "utility", cfg.Utility.Name)

	if err := tui.Run(ctx, tui.Deps{
		Config:    cfg,
		Clock:     clock,
		Principal: principal,
		Reference: ref,
		Outages:   outageSvc,
		Assets:    assetSvc,
		Logger:    logger,
	}); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	slog.Info("faultdesk shutdown complete")
	return nil
}

// setupLogging installs the default logger. File logging is JSON; otherwise
// text goes to stderr.
func setupLogging(cfg *config.Config, debug bool) (func(), error) {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	} else {
		switch cfg.Logging.Level {
		case config.LogLevelDebug:
			logLevel = slog.LevelDebug
		case config.LogLevelWarn:
			logLevel = slog.LevelWarn
		case config.LogLevelError:
			logLevel = slog.LevelError
		}
	}

	logPath, err := config.EnsureLogDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	closeFn := func() {}
	var logHandler slog.Handler
	if logPath != "" {
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		closeFn = func() { logFile.Close() }
		logHandler = slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: logLevel})
	} else {
		logHandler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	}

	slog.SetDefault(slog.New(logHandler))
	return closeFn, nil
}

// operator builds the principal from the config's operator section with
// any flag overrides applied.
func operator(cfg *config.Config, opts options) (access.Principal, error) {
	op := cfg.Operator
	if opts.role != "" {
		op.Role = opts.role
	}
	if opts.region != "" {
		op.Region = opts.region
	}
	if opts.district != "" {
		op.District = opts.district
	}
	return op.Principal()
}
