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

// AssetRepository handles grid asset data access.
type AssetRepository struct {
	db *sql.DB
}

// NewAssetRepository creates a new asset repository.
func NewAssetRepository(db *sql.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

const assetColumns = `id, asset_code, name, asset_type, region_id, district_id, status,
	install_date, capacity_kva, last_inspection, notes, created_at, updated_at`

// Create inserts a new asset and stamps its timestamps.
func (r *AssetRepository) Create(ctx context.Context, tx *sql.Tx, a *models.Asset) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := pick(r.db, tx).ExecContext(ctx,
		`INSERT INTO assets (`+assetColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.AssetCode,
		a.Name,
		string(a.Type),
		a.RegionID,
		a.DistrictID,
		string(a.Status),
		a.InstallDate.Format(time.DateOnly),
		nullableFloat(a.CapacityKVA),
		nullableDate(a.LastInspection),
		nullableString(a.Notes),
		formatTime(a.CreatedAt),
		formatTime(a.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting asset: %w", err)
	}
	return nil
}

// GetByID retrieves an asset by ID.
func (r *AssetRepository) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = ?`, id)
	return scanAsset(row)
}

// GetByCode retrieves an asset by its asset code.
func (r *AssetRepository) GetByCode(ctx context.Context, code string) (*models.Asset, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+assetColumns+` FROM assets WHERE asset_code = ?`, code)
	return scanAsset(row)
}

// Update modifies an existing asset.
func (r *AssetRepository) Update(ctx context.Context, tx *sql.Tx, a *models.Asset) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	a.UpdatedAt = time.Now().UTC()

	res, err := pick(r.db, tx).ExecContext(ctx, `
		UPDATE assets SET
			asset_code = ?, name = ?, asset_type = ?, region_id = ?, district_id = ?,
			status = ?, install_date = ?, capacity_kva = ?, last_inspection = ?,
			notes = ?, updated_at = ?
		WHERE id = ?`,
		a.AssetCode,
		a.Name,
		string(a.Type),
		a.RegionID,
		a.DistrictID,
		string(a.Status),
		a.InstallDate.Format(time.DateOnly),
		nullableFloat(a.CapacityKVA),
		nullableDate(a.LastInspection),
		nullableString(a.Notes),
		formatTime(a.UpdatedAt),
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("updating asset: %w", err)
	}
	if err := requireRow(res); err != nil {
		return fmt.Errorf("asset %s: %w", a.ID, err)
	}
	return nil
}

// Delete removes an asset. Faults that referenced it keep their record with
// the asset link cleared.
func (r *AssetRepository) Delete(ctx context.Context, tx *sql.Tx, id string) error {
	res, err := pick(r.db, tx).ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting asset: %w", err)
	}
	if err := requireRow(res); err != nil {
		return fmt.Errorf("asset %s: %w", id, err)
	}
	return nil
}

func assetWhere(filter models.AssetFilter) (string, []any) {
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
	if filter.Type != nil {
		conditions = append(conditions, "asset_type = ?")
		args = append(args, string(*filter.Type))
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.SearchTerm != "" {
		conditions = append(conditions, "(name LIKE ? OR asset_code LIKE ?)")
		pattern := "%" + filter.SearchTerm + "%"
		args = append(args, pattern, pattern)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// List retrieves assets with filtering and pagination.
func (r *AssetRepository) List(ctx context.Context, filter models.AssetFilter, page models.Pagination) (*models.AssetList, error) {
	where, args := assetWhere(filter)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM assets "+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting assets: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM assets %s ORDER BY asset_type, asset_code LIMIT ? OFFSET ?`, assetColumns, where)
	rows, err := r.db.QueryContext(ctx, query, append(args, page.Limit(), page.Offset())...)
	if err != nil {
		return nil, fmt.Errorf("querying assets: %w", err)
	}
	defer rows.Close()

	var assets []*models.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assets: %w", err)
	}

	return &models.AssetList{
		Assets:     assets,
		Total:      total,
		Page:       page.Page,
		TotalPages: page.TotalPages(total),
	}, nil
}

// CountByStatus returns counts of assets by status within the filter.
func (r *AssetRepository) CountByStatus(ctx context.Context, filter models.AssetFilter) (map[models.AssetStatus]int, error) {
	where, args := assetWhere(filter)
	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM assets "+where+" GROUP BY status", args...)
	if err != nil {
		return nil, fmt.Errorf("counting by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.AssetStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning status count: %w", err)
		}
		counts[models.AssetStatus(status)] = n
	}
	return counts, rows.Err()
}

// Codes returns every asset code in use, for seeding a code generator.
func (r *AssetRepository) Codes(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT asset_code FROM assets`)
	if err != nil {
		return nil, fmt.Errorf("querying asset codes: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scanning asset code: %w", err)
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

func scanAsset(s scanner) (*models.Asset, error) {
	var a models.Asset
	var installStr, createdStr, updatedStr string
	var capacity sql.NullFloat64
	var lastInspection, notes sql.NullString

	err := s.Scan(
		&a.ID,
		&a.AssetCode,
		&a.Name,
		&a.Type,
		&a.RegionID,
		&a.DistrictID,
		&a.Status,
		&installStr,
		&capacity,
		&lastInspection,
		&notes,
		&createdStr,
		&updatedStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("asset: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning asset: %w", err)
	}

	a.InstallDate, _ = time.Parse(time.DateOnly, installStr)
	a.CreatedAt = parseTime(createdStr)
	a.UpdatedAt = parseTime(updatedStr)
	a.LastInspection = parseNullDate(lastInspection)
	if capacity.Valid {
		a.CapacityKVA = &capacity.Float64
	}
	if notes.Valid {
		a.Notes = notes.String
	}
	return &a, nil
}
