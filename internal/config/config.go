// Package config provides configuration management for faultdesk.
// Configurations are loaded from TOML files with XDG-compliant paths.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/gridline/faultdesk/internal/access"
)

// Config holds the complete application configuration.
type Config struct {
	Utility  UtilityConfig  `toml:"utility"`
	Operator OperatorConfig `toml:"operator"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Display  DisplayConfig  `toml:"display"`
	Logging  LoggingConfig  `toml:"logging"`
	Database DatabaseConfig `toml:"database"`
}

// UtilityConfig identifies the utility the desk serves.
type UtilityConfig struct {
	Name     string `toml:"name"`
	Code     string `toml:"code"`
	Timezone string `toml:"timezone"`
}

// OperatorConfig is the signed-in operator. Region and district accept an
// id, code or name.
type OperatorConfig struct {
	Subject  string `toml:"subject"`
	Role     string `toml:"role"`
	Region   string `toml:"region"`
	District string `toml:"district"`
}

// MetricsConfig controls reliability reporting.
type MetricsConfig struct {
	RejectNegativeDurations bool `toml:"reject_negative_durations"`
	ReportWindowDays        int  `toml:"report_window_days"`
	InspectionIntervalDays  int  `toml:"inspection_interval_days"`
}

// DisplayConfig controls TUI appearance.
type DisplayConfig struct {
	ColorScheme ColorScheme `toml:"color_scheme"`
	DateFormat  string      `toml:"date_format"`
	TimeFormat  string      `toml:"time_format"`
	PageSize    int         `toml:"page_size"`
}

// ColorScheme defines the terminal color palette.
type ColorScheme string

const (
	ColorSchemeControlRoom ColorScheme = "control_room"
	ColorSchemeAmber       ColorScheme = "amber"
	ColorSchemeWhite       ColorScheme = "white"
)

// LoggingConfig controls application logging.
type LoggingConfig struct {
	Level LogLevel `toml:"level"`
	File  string   `toml:"file"`
}

// LogLevel defines logging verbosity.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// DatabaseConfig controls SQLite database settings.
type DatabaseConfig struct {
	Path                string `toml:"path"`
	BackupIntervalHours int    `toml:"backup_interval_hours"`
	BackupRetentionDays int    `toml:"backup_retention_days"`
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Utility.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("utility: %w", err))
	}
	if err := c.Operator.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("operator: %w", err))
	}
	if err := c.Metrics.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("metrics: %w", err))
	}
	if err := c.Display.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("display: %w", err))
	}
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}
	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}

	return errors.Join(errs...)
}

// Validate checks that the utility configuration is valid.
func (u *UtilityConfig) Validate() error {
	var errs []error
	if u.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if u.Timezone != "" {
		if _, err := time.LoadLocation(u.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("invalid timezone: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Location returns the utility's timezone, defaulting to UTC.
func (u *UtilityConfig) Location() *time.Location {
	if u.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Validate checks that the operator carries the scope its role needs.
func (o *OperatorConfig) Validate() error {
	_, err := o.Principal()
	return err
}

// Principal converts the operator section into an access principal.
func (o *OperatorConfig) Principal() (access.Principal, error) {
	role, err := access.ParseRole(o.Role)
	if err != nil {
		return access.Principal{}, err
	}
	p := access.Principal{
		Subject:  o.Subject,
		Role:     role,
		Region:   o.Region,
		District: o.District,
	}
	if err := p.Validate(); err != nil {
		return access.Principal{}, err
	}
	return p, nil
}

// Validate checks that the metrics configuration is valid.
func (m *MetricsConfig) Validate() error {
	var errs []error
	if m.ReportWindowDays < 0 {
		errs = append(errs, errors.New("report_window_days must be non-negative"))
	}
	if m.InspectionIntervalDays < 0 {
		errs = append(errs, errors.New("inspection_interval_days must be non-negative"))
	}
	return errors.Join(errs...)
}

// Validate checks that the display configuration is valid.
func (d *DisplayConfig) Validate() error {
	var errs []error

	switch d.ColorScheme {
	case "", ColorSchemeControlRoom, ColorSchemeAmber, ColorSchemeWhite:
	default:
		errs = append(errs, fmt.Errorf("invalid color_scheme: %s", d.ColorScheme))
	}
	if d.PageSize < 0 || d.PageSize > 100 {
		errs = append(errs, errors.New("page_size must be between 0 and 100"))
	}

	return errors.Join(errs...)
}

// Validate checks that the logging configuration is valid.
func (l *LoggingConfig) Validate() error {
	switch l.Level {
	case "", LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return nil
	default:
		return fmt.Errorf("invalid log level: %s", l.Level)
	}
}

// Validate checks that the database configuration is valid.
func (d *DatabaseConfig) Validate() error {
	var errs []error

	if d.Path == "" {
		errs = append(errs, errors.New("path is required"))
	}
	if d.BackupIntervalHours < 0 {
		errs = append(errs, errors.New("backup_interval_hours must be non-negative"))
	}
	if d.BackupRetentionDays < 0 {
		errs = append(errs, errors.New("backup_retention_days must be non-negative"))
	}

	return errors.Join(errs...)
}

// Default returns a configuration with sensible default values.
func Default() *Config {
	return &Config{
		Utility: UtilityConfig{
			Name:     "Gridline Electricity Distribution",
			Code:     "GED",
			Timezone: "UTC",
		},
		Operator: OperatorConfig{
			Subject: "operator",
			Role:    string(access.RoleGlobalEngineer),
		},
		Metrics: MetricsConfig{
			RejectNegativeDurations: false,
			ReportWindowDays:        30,
			InspectionIntervalDays:  180,
		},
		Display: DisplayConfig{
			ColorScheme: ColorSchemeControlRoom,
			DateFormat:  "2006-01-02",
			TimeFormat:  "15:04",
			PageSize:    25,
		},
		Logging: LoggingConfig{
			Level: LogLevelInfo,
			File:  "logs/faultdesk.log",
		},
		Database: DatabaseConfig{
			Path:                "faultdesk.db",
			BackupIntervalHours: 24,
			BackupRetentionDays: 30,
		},
	}
}
