package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gridline/faultdesk/internal/models"
)

// Reference IDs used by FixtureReference.
const (
	RegionCentral  = "r-c"
	RegionNorthern = "r-n"
	DistrictHarb   = "d-1"
	DistrictOldTwn = "d-2"
	DistrictHill   = "d-3"
)

// BaseTime is a fixed instant fixtures count from. It has whole seconds so
// records survive the RFC3339 round trip through SQLite unchanged.
var BaseTime = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

// FixtureReference returns two regions and three districts serving 12,500
// customers in total.
func FixtureReference() *models.ReferenceData {
	return &models.ReferenceData{
		Regions: []models.Region{
			{ID: RegionCentral, Code: "CEN", Name: "Central Region"},
			{ID: RegionNorthern, Code: "NOR", Name: "Northern Region"},
		},
		Districts: []models.District{
			{ID: DistrictHarb, RegionID: RegionCentral, Code: "CEN-01", Name: "Harbour", CustomersServed: 4000},
			{ID: DistrictOldTwn, RegionID: RegionCentral, Code: "CEN-02", Name: "Old Town", CustomersServed: 6000},
			{ID: DistrictHill, RegionID: RegionNorthern, Code: "NOR-01", Name: "Hillside", CustomersServed: 2500},
		},
	}
}

// SeedReference inserts the FixtureReference catalogue and returns it.
func (tdb *TestDB) SeedReference(t *testing.T) *models.ReferenceData {
	t.Helper()

	ref := FixtureReference()
	for _, r := range ref.Regions {
		tdb.ExecSQL(t, `INSERT INTO regions (id, code, name) VALUES (?, ?, ?)`, r.ID, r.Code, r.Name)
	}
	for _, d := range ref.Districts {
		tdb.ExecSQL(t, `INSERT INTO districts (id, region_id, code, name, customers_served) VALUES (?, ?, ?, ?, ?)`,
			d.ID, d.RegionID, d.Code, d.Name, d.CustomersServed)
	}
	return ref
}

// FixtureFault creates an open unplanned fault in Harbour with 100 urban
// customers affected.
func FixtureFault(overrides ...func(*models.FaultRecord)) *models.FaultRecord {
	f := &models.FaultRecord{
		ID:                 uuid.New().String(),
		RegionID:           RegionCentral,
		DistrictID:         DistrictHarb,
		FaultType:          models.FaultTypeUnplanned,
		Status:             models.FaultStatusPending,
		Description:        "Feeder trip",
		OccurrenceDate:     BaseTime,
		AffectedPopulation: models.AffectedPopulation{Urban: 100},
		ReportedBy:         "control",
	}
	for _, override := range overrides {
		override(f)
	}
	return f
}

// FixtureRestoredFault creates a fault restored after the given number of
// hours.
func FixtureRestoredFault(hours float64, overrides ...func(*models.FaultRecord)) *models.FaultRecord {
	return FixtureFault(append([]func(*models.FaultRecord){
		func(f *models.FaultRecord) {
			f.RestorationDate = TimePtr(f.OccurrenceDate.Add(time.Duration(hours * float64(time.Hour))))
			f.Status = models.FaultStatusRestored
		},
	}, overrides...)...)
}

// FixtureAsset creates an in-service transformer in Harbour.
func FixtureAsset(overrides ...func(*models.Asset)) *models.Asset {
	id := uuid.New().String()
	a := &models.Asset{
		ID:          id,
		AssetCode:   "TX-CEN01-" + id[:5],
		Name:        "Quay Street Transformer",
		Type:        models.AssetTypeTransformer,
		RegionID:    RegionCentral,
		DistrictID:  DistrictHarb,
		Status:      models.AssetStatusInService,
		InstallDate: time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC),
		CapacityKVA: Float64Ptr(500),
	}
	for _, override := range overrides {
		override(a)
	}
	return a
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// Float64Ptr returns a pointer to f.
func Float64Ptr(f float64) *float64 {
	return &f
}

// TimePtr returns a pointer to t.
func TimePtr(t time.Time) *time.Time {
	return &t
}
