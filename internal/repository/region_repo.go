package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gridline/faultdesk/internal/models"
)

// RegionRepository reads and writes the region and district catalogue.
type RegionRepository struct {
	db *sql.DB
}

// NewRegionRepository creates a new region repository.
func NewRegionRepository(db *sql.DB) *RegionRepository {
	return &RegionRepository{db: db}
}

// CreateRegion inserts a region.
func (r *RegionRepository) CreateRegion(ctx context.Context, tx *sql.Tx, region *models.Region) error {
	if err := region.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	_, err := pick(r.db, tx).ExecContext(ctx,
		`INSERT INTO regions (id, code, name) VALUES (?, ?, ?)`,
		region.ID, region.Code, region.Name)
	if err != nil {
		return fmt.Errorf("inserting region: %w", err)
	}
	return nil
}

// CreateDistrict inserts a district. Its region must already exist.
func (r *RegionRepository) CreateDistrict(ctx context.Context, tx *sql.Tx, d *models.District) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	_, err := pick(r.db, tx).ExecContext(ctx,
		`INSERT INTO districts (id, region_id, code, name, customers_served) VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.RegionID, d.Code, d.Name, d.CustomersServed)
	if err != nil {
		return fmt.Errorf("inserting district: %w", err)
	}
	return nil
}

// UpdateCustomersServed changes the customer base of a district.
func (r *RegionRepository) UpdateCustomersServed(ctx context.Context, tx *sql.Tx, districtID string, customers int) error {
	if customers < 0 {
		return fmt.Errorf("customers_served must be non-negative")
	}
	res, err := pick(r.db, tx).ExecContext(ctx,
		`UPDATE districts SET customers_served = ? WHERE id = ?`, customers, districtID)
	if err != nil {
		return fmt.Errorf("updating district: %w", err)
	}
	if err := requireRow(res); err != nil {
		return fmt.Errorf("district %s: %w", districtID, err)
	}
	return nil
}

// ListRegions returns every region ordered by name.
func (r *RegionRepository) ListRegions(ctx context.Context) ([]models.Region, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, code, name FROM regions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying regions: %w", err)
	}
	defer rows.Close()

	var out []models.Region
	for rows.Next() {
		var reg models.Region
		if err := rows.Scan(&reg.ID, &reg.Code, &reg.Name); err != nil {
			return nil, fmt.Errorf("scanning region: %w", err)
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

// ListDistricts returns every district ordered by region then name.
func (r *RegionRepository) ListDistricts(ctx context.Context) ([]models.District, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT d.id, d.region_id, d.code, d.name, d.customers_served
		FROM districts d JOIN regions r ON r.id = d.region_id
		ORDER BY r.name, d.name`)
	if err != nil {
		return nil, fmt.Errorf("querying districts: %w", err)
	}
	defer rows.Close()

	var out []models.District
	for rows.Next() {
		var d models.District
		if err := rows.Scan(&d.ID, &d.RegionID, &d.Code, &d.Name, &d.CustomersServed); err != nil {
			return nil, fmt.Errorf("scanning district: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// LoadReferenceData reads the full catalogue.
func (r *RegionRepository) LoadReferenceData(ctx context.Context) (*models.ReferenceData, error) {
	regions, err := r.ListRegions(ctx)
	if err != nil {
		return nil, err
	}
	districts, err := r.ListDistricts(ctx)
	if err != nil {
		return nil, err
	}
	return &models.ReferenceData{Regions: regions, Districts: districts}, nil
}
