package models

import (
	"fmt"
	"time"
)

// FaultType classifies the cause of an interruption.
type FaultType string

const (
	FaultTypeUnplanned    FaultType = "UNPLANNED"
	FaultTypePlanned      FaultType = "PLANNED"
	FaultTypeEmergency    FaultType = "EMERGENCY"
	FaultTypeLoadShedding FaultType = "LOAD_SHEDDING"
	FaultTypeGridCo       FaultType = "GRID_CO"
)

// FaultTypes lists every fault type in display order.
var FaultTypes = []FaultType{
	FaultTypeUnplanned,
	FaultTypePlanned,
	FaultTypeEmergency,
	FaultTypeLoadShedding,
	FaultTypeGridCo,
}

// Valid returns true if the fault type is valid.
func (t FaultType) Valid() bool {
	switch t {
	case FaultTypeUnplanned, FaultTypePlanned, FaultTypeEmergency,
		FaultTypeLoadShedding, FaultTypeGridCo:
		return true
	default:
		return false
	}
}

func (t FaultType) String() string {
	return string(t)
}

// FaultStatus tracks a fault through restoration and repair.
type FaultStatus string

const (
	FaultStatusPending    FaultStatus = "PENDING"
	FaultStatusInProgress FaultStatus = "IN_PROGRESS"
	FaultStatusRestored   FaultStatus = "RESTORED"
	FaultStatusResolved   FaultStatus = "RESOLVED"
)

// Valid returns true if the fault status is valid.
func (s FaultStatus) Valid() bool {
	switch s {
	case FaultStatusPending, FaultStatusInProgress, FaultStatusRestored, FaultStatusResolved:
		return true
	default:
		return false
	}
}

// IsOpen returns true while customers are still without supply.
func (s FaultStatus) IsOpen() bool {
	return s == FaultStatusPending || s == FaultStatusInProgress
}

func (s FaultStatus) String() string {
	return string(s)
}

// AffectedPopulation counts the customers interrupted by a fault.
type AffectedPopulation struct {
	Rural int `json:"rural"`
	Urban int `json:"urban"`
	Metro int `json:"metro"`
}

// Total returns the number of affected customers across all classes.
func (p AffectedPopulation) Total() int {
	return p.Rural + p.Urban + p.Metro
}

// Validate checks that every count is non-negative.
func (p AffectedPopulation) Validate() error {
	if p.Rural < 0 || p.Urban < 0 || p.Metro < 0 {
		return fmt.Errorf("affected population counts must be non-negative")
	}
	return nil
}

// FaultRecord is a single interruption reported against a district.
type FaultRecord struct {
	ID                 string             `json:"id"`
	RegionID           string             `json:"region_id"`
	DistrictID         string             `json:"district_id"`
	AssetID            *string            `json:"asset_id,omitempty"`
	FaultType          FaultType          `json:"fault_type"`
	Status             FaultStatus        `json:"status"`
	Description        string             `json:"description,omitempty"`
	OccurrenceDate     time.Time          `json:"occurrence_date"`
	RestorationDate    *time.Time         `json:"restoration_date,omitempty"`
	RepairDate         *time.Time         `json:"repair_date,omitempty"`
	AffectedPopulation AffectedPopulation `json:"affected_population"`
	ReportedBy         string             `json:"reported_by,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// Validate checks if the fault record data is valid.
func (f *FaultRecord) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("id is required")
	}
	if f.RegionID == "" {
		return fmt.Errorf("region_id is required")
	}
	if f.DistrictID == "" {
		return fmt.Errorf("district_id is required")
	}
	if !f.FaultType.Valid() {
		return fmt.Errorf("invalid fault_type: %s", f.FaultType)
	}
	if !f.Status.Valid() {
		return fmt.Errorf("invalid status: %s", f.Status)
	}
	if f.OccurrenceDate.IsZero() {
		return fmt.Errorf("occurrence_date is required")
	}
	if f.RestorationDate != nil && f.RestorationDate.Before(f.OccurrenceDate) {
		return fmt.Errorf("restoration_date cannot be before occurrence_date")
	}
	if f.RepairDate != nil && f.RepairDate.Before(f.OccurrenceDate) {
		return fmt.Errorf("repair_date cannot be before occurrence_date")
	}
	if err := f.AffectedPopulation.Validate(); err != nil {
		return err
	}
	return nil
}

// IsRestored returns true once supply has been restored.
func (f *FaultRecord) IsRestored() bool {
	return f.RestorationDate != nil
}

// IsRepaired returns true once the underlying repair is complete.
func (f *FaultRecord) IsRepaired() bool {
	return f.RepairDate != nil
}

// DeriveStatus returns the status implied by the recorded dates. An open
// fault keeps its current PENDING or IN_PROGRESS status.
func (f *FaultRecord) DeriveStatus() FaultStatus {
	switch {
	case f.RepairDate != nil:
		return FaultStatusResolved
	case f.RestorationDate != nil:
		return FaultStatusRestored
	case f.Status == FaultStatusInProgress:
		return FaultStatusInProgress
	default:
		return FaultStatusPending
	}
}

// FaultFilter defines filters for querying fault records.
type FaultFilter struct {
	RegionID   string
	DistrictID string
	AssetID    string
	FaultType  *FaultType
	Status     *FaultStatus
	OpenOnly   bool
	From       *time.Time
	To         *time.Time
}

// FaultList represents a paginated list of fault records.
type FaultList struct {
	Faults     []*FaultRecord
	Total      int
	Page       int
	TotalPages int
}
