package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gridline/faultdesk/internal/models"
)

// FaultRepository handles fault record data access.
type FaultRepository struct {
	db *sql.DB
}

// NewFaultRepository creates a new fault repository.
func NewFaultRepository(db *sql.DB) *FaultRepository {
	return &FaultRepository{db: db}
}

const faultColumns = `id, region_id, district_id, asset_id, fault_type, status, description,
	occurrence_date, restoration_date, repair_date,
	affected_rural, affected_urban, affected_metro, reported_by, created_at, updated_at`

// Create inserts a new fault record and stamps its timestamps.
func (r *FaultRepository) Create(ctx context.Context, tx *sql.Tx, f *models.FaultRecord) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	f.CreatedAt = now
	f.UpdatedAt = now

	_, err := pick(r.db, tx).ExecContext(ctx,
		`INSERT INTO faults (`+faultColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID,
		f.RegionID,
		f.DistrictID,
		nullableStringPtr(f.AssetID),
		string(f.FaultType),
		string(f.Status),
		nullableString(f.Description),
		formatTime(f.OccurrenceDate),
		nullableTime(f.RestorationDate),
		nullableTime(f.RepairDate),
		f.AffectedPopulation.Rural,
		f.AffectedPopulation.Urban,
		f.AffectedPopulation.Metro,
		nullableString(f.ReportedBy),
		formatTime(f.CreatedAt),
		formatTime(f.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting fault: %w", err)
	}
	return nil
}

// GetByID retrieves a fault record by ID.
func (r *FaultRepository) GetByID(ctx context.Context, id string) (*models.FaultRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+faultColumns+` FROM faults WHERE id = ?`, id)
	return scanFault(row)
}

// Update modifies an existing fault record.
func (r *FaultRepository) Update(ctx context.Context, tx *sql.Tx, f *models.FaultRecord) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	f.UpdatedAt = time.Now().UTC()

	res, err := pick(r.db, tx).ExecContext(ctx, `
		UPDATE faults SET
			region_id = ?, district_id = ?, asset_id = ?, fault_type = ?, status = ?,
			description = ?, occurrence_date = ?, restoration_date = ?, repair_date = ?,
			affected_rural = ?, affected_urban = ?, affected_metro = ?,
			reported_by = ?, updated_at = ?
		WHERE id = ?`,
		f.RegionID,
		f.DistrictID,
		nullableStringPtr(f.AssetID),
		string(f.FaultType),
		string(f.Status),
		nullableString(f.Description),
		formatTime(f.OccurrenceDate),
		nullableTime(f.RestorationDate),
		nullableTime(f.RepairDate),
		f.AffectedPopulation.Rural,
		f.AffectedPopulation.Urban,
		f.AffectedPopulation.Metro,
		nullableString(f.ReportedBy),
		formatTime(f.UpdatedAt),
		f.ID,
	)
	if err != nil {
		return fmt.Errorf("updating fault: %w", err)
	}
	if err := requireRow(res); err != nil {
		return fmt.Errorf("fault %s: %w", f.ID, err)
	}
	return nil
}

// Delete removes a fault record.
func (r *FaultRepository) Delete(ctx context.Context, tx *sql.Tx, id string) error {
	res, err := pick(r.db, tx).ExecContext(ctx, `DELETE FROM faults WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting fault: %w", err)
	}
	if err := requireRow(res); err != nil {
		return fmt.Errorf("fault %s: %w", id, err)
	}
	return nil
}

func faultWhere(filter models.FaultFilter) (string, []any) {
	var conditions []string
	var args []any

	if filter.RegionID != "" {
		conditions = append(conditions, "region_id = ?")
		args = append(args, filter.RegionID)
	}
	if filter.DistrictID != "" {
		conditions = append(conditions, "district_id = ?")
		args = append(args, filter.DistrictID)
	}
	if filter.AssetID != "" {
		conditions = append(conditions, "asset_id = ?")
		args = append(args, filter.AssetID)
	}
	if filter.FaultType != nil {
		conditions = append(conditions, "fault_type = ?")
		args = append(args, string(*filter.FaultType))
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.OpenOnly {
		conditions = append(conditions, "restoration_date IS NULL")
	}
	if filter.From != nil {
		conditions = append(conditions, "occurrence_date >= ?")
		args = append(args, formatTime(*filter.From))
	}
	if filter.To != nil {
		conditions = append(conditions, "occurrence_date < ?")
		args = append(args, formatTime(*filter.To))
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// List retrieves fault records newest first with filtering and pagination.
func (r *FaultRepository) List(ctx context.Context, filter models.FaultFilter, page models.Pagination) (*models.FaultList, error) {
	where, args := faultWhere(filter)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM faults "+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting faults: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM faults %s ORDER BY occurrence_date DESC, id LIMIT ? OFFSET ?`, faultColumns, where)
	faults, err := r.query(ctx, query, append(args, page.Limit(), page.Offset())...)
	if err != nil {
		return nil, err
	}

	return &models.FaultList{
		Faults:     faults,
		Total:      total,
		Page:       page.Page,
		TotalPages: page.TotalPages(total),
	}, nil
}

// ListAll returns every fault record matching filter, oldest first. Report
// generation uses it where pagination would split the summary.
func (r *FaultRepository) ListAll(ctx context.Context, filter models.FaultFilter) ([]*models.FaultRecord, error) {
	where, args := faultWhere(filter)
	query := fmt.Sprintf(`SELECT %s FROM faults %s ORDER BY occurrence_date, id`, faultColumns, where)
	return r.query(ctx, query, args...)
}

// CountOpen returns how many matching faults have not been restored.
func (r *FaultRepository) CountOpen(ctx context.Context, filter models.FaultFilter) (int, error) {
	filter.OpenOnly = true
	where, args := faultWhere(filter)
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM faults "+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting open faults: %w", err)
	}
	return n, nil
}

func (r *FaultRepository) query(ctx context.Context, query string, args ...any) ([]*models.FaultRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying faults: %w", err)
	}
	defer rows.Close()

	var faults []*models.FaultRecord
	for rows.Next() {
		f, err := scanFault(rows)
		if err != nil {
			return nil, err
		}
		faults = append(faults, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating faults: %w", err)
	}
	return faults, nil
}

func scanFault(s scanner) (*models.FaultRecord, error) {
	var f models.FaultRecord
	var occurrenceStr, createdStr, updatedStr string
	var assetID, description, reportedBy sql.NullString
	var restoration, repair sql.NullString

	err := s.Scan(
		&f.ID,
		&f.RegionID,
		&f.DistrictID,
		&assetID,
		&f.FaultType,
		&f.Status,
		&description,
		&occurrenceStr,
		&restoration,
		&repair,
		&f.AffectedPopulation.Rural,
		&f.AffectedPopulation.Urban,
		&f.AffectedPopulation.Metro,
		&reportedBy,
		&createdStr,
		&updatedStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("fault: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning fault: %w", err)
	}

	f.OccurrenceDate = parseTime(occurrenceStr)
	f.RestorationDate = parseNullTime(restoration)
	f.RepairDate = parseNullTime(repair)
	f.CreatedAt = parseTime(createdStr)
	f.UpdatedAt = parseTime(updatedStr)
	if assetID.Valid {
		f.AssetID = &assetID.String
	}
	f.Description = description.String
	f.ReportedBy = reportedBy.String
	return &f, nil
}
