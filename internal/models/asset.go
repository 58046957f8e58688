package models

import (
	"fmt"
	"time"
)

// AssetType represents the kind of grid asset.
type AssetType string

const (
	AssetTypeSubstation  AssetType = "SUBSTATION"
	AssetTypeTransformer AssetType = "TRANSFORMER"
	AssetTypeFeeder      AssetType = "FEEDER"
	AssetTypeSwitchgear  AssetType = "SWITCHGEAR"
	AssetTypePole        AssetType = "POLE"
	AssetTypeMeter       AssetType = "METER"
)

// Valid returns true if the asset type is valid.
func (t AssetType) Valid() bool {
	switch t {
	case AssetTypeSubstation, AssetTypeTransformer, AssetTypeFeeder,
		AssetTypeSwitchgear, AssetTypePole, AssetTypeMeter:
		return true
	default:
		return false
	}
}

// AssetStatus represents the operational status of an asset.
type AssetStatus string

const (
	AssetStatusInService      AssetStatus = "IN_SERVICE"
	AssetStatusOutOfService   AssetStatus = "OUT_OF_SERVICE"
	AssetStatusUnderRepair    AssetStatus = "UNDER_REPAIR"
	AssetStatusDecommissioned AssetStatus = "DECOMMISSIONED"
)

// Valid returns true if the asset status is valid.
func (s AssetStatus) Valid() bool {
	switch s {
	case AssetStatusInService, AssetStatusOutOfService,
		AssetStatusUnderRepair, AssetStatusDecommissioned:
		return true
	default:
		return false
	}
}

// IsEnergized returns true if the asset is carrying load.
func (s AssetStatus) IsEnergized() bool {
	return s == AssetStatusInService
}

// Asset is a piece of grid equipment registered to a district.
type Asset struct {
	ID             string      `json:"id"`
	AssetCode      string      `json:"asset_code"`
	Name           string      `json:"name"`
	Type           AssetType   `json:"type"`
	RegionID       string      `json:"region_id"`
	DistrictID     string      `json:"district_id"`
	Status         AssetStatus `json:"status"`
	InstallDate    time.Time   `json:"install_date"`
	CapacityKVA    *float64    `json:"capacity_kva,omitempty"`
	LastInspection *time.Time  `json:"last_inspection,omitempty"`
	Notes          string      `json:"notes,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// Validate checks if the asset data is valid.
func (a *Asset) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("id is required")
	}
	if a.AssetCode == "" {
		return fmt.Errorf("asset_code is required")
	}
	if a.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !a.Type.Valid() {
		return fmt.Errorf("invalid type: %s", a.Type)
	}
	if a.RegionID == "" || a.DistrictID == "" {
		return fmt.Errorf("region_id and district_id are required")
	}
	if !a.Status.Valid() {
		return fmt.Errorf("invalid status: %s", a.Status)
	}
	if a.InstallDate.IsZero() {
		return fmt.Errorf("install_date is required")
	}
	if a.CapacityKVA != nil && *a.CapacityKVA < 0 {
		return fmt.Errorf("capacity_kva must be non-negative")
	}
	return nil
}

// InspectionOverdue returns true if the asset has not been inspected within
// intervalDays of asOf. Assets never inspected count from their install date.
func (a *Asset) InspectionOverdue(asOf time.Time, intervalDays int) bool {
	last := a.InstallDate
	if a.LastInspection != nil {
		last = *a.LastInspection
	}
	return asOf.Sub(last) > time.Duration(intervalDays)*24*time.Hour
}

// AssetFilter defines filters for querying assets.
type AssetFilter struct {
	RegionID   string
	DistrictID string
	Type       *AssetType
	Status     *AssetStatus
	SearchTerm string
}

// AssetList represents a paginated list of assets.
type AssetList struct {
	Assets     []*Asset
	Total      int
	Page       int
	TotalPages int
}
