package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gridline/faultdesk/internal/models"
	"github.com/gridline/faultdesk/internal/testutil"
)

func setupFaultTest(t *testing.T) (*FaultRepository, *testutil.TestDB, context.Context) {
	t.Helper()
	db := testutil.NewTestDB(t)
	db.SeedReference(t)
	return NewFaultRepository(db.DB.DB), db, context.Background()
}

func TestFaultRepository_CreateAndGet(t *testing.T) {
	repo, _, ctx := setupFaultTest(t)

	fault := testutil.FixtureRestoredFault(2.5, func(f *models.FaultRecord) {
		f.AffectedPopulation = models.AffectedPopulation{Rural: 10, Urban: 20, Metro: 30}
	})
	if err := repo.Create(ctx, nil, fault); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByID(ctx, fault.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !got.OccurrenceDate.Equal(fault.OccurrenceDate) {
		t.Errorf("OccurrenceDate = %v, want %v", got.OccurrenceDate, fault.OccurrenceDate)
	}
	if got.RestorationDate == nil || !got.RestorationDate.Equal(*fault.RestorationDate) {
		t.Errorf("RestorationDate = %v, want %v", got.RestorationDate, fault.RestorationDate)
	}
	if got.RepairDate != nil {
		t.Errorf("RepairDate = %v, want nil", got.RepairDate)
	}
	if got.AffectedPopulation != fault.AffectedPopulation {
		t.Errorf("AffectedPopulation = %+v", got.AffectedPopulation)
	}
	if got.Status != models.FaultStatusRestored || got.Description != "Feeder trip" || got.AssetID != nil {
		t.Errorf("got = %+v", got)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestFaultRepository_CreateRejectsInvalid(t *testing.T) {
	repo, db, ctx := setupFaultTest(t)

	tests := []struct {
		name   string
		modify func(*models.FaultRecord)
	}{
		{"unknown district", func(f *models.FaultRecord) { f.DistrictID = "d-missing" }},
		{"restoration before occurrence", func(f *models.FaultRecord) {
			f.RestorationDate = testutil.TimePtr(f.OccurrenceDate.Add(-time.Hour))
		}},
		{"bad type", func(f *models.FaultRecord) { f.FaultType = "SQUIRREL" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := repo.Create(ctx, nil, testutil.FixtureFault(tt.modify)); err == nil {
				t.Error("expected error")
			}
		})
	}
	db.AssertRowCount(t, "faults", 0)
}

func TestFaultRepository_UpdateAndDelete(t *testing.T) {
	repo, db, ctx := setupFaultTest(t)

	fault := testutil.FixtureFault()
	if err := repo.Create(ctx, nil, fault); err != nil {
		t.Fatalf("setup: %v", err)
	}

	restored := fault.OccurrenceDate.Add(90 * time.Minute)
	fault.RestorationDate = &restored
	fault.Status = fault.DeriveStatus()
	if err := repo.Update(ctx, nil, fault); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, _ := repo.GetByID(ctx, fault.ID)
	if got.Status != models.FaultStatusRestored || got.RestorationDate == nil {
		t.Errorf("after update = %+v", got)
	}

	missing := testutil.FixtureFault()
	if err := repo.Update(ctx, nil, missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}

	if err := repo.Delete(ctx, nil, fault.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, nil, fault.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
	db.AssertRowCount(t, "faults", 0)
}

func TestFaultRepository_List(t *testing.T) {
	repo, _, ctx := setupFaultTest(t)

	planned := models.FaultTypePlanned
	faults := []*models.FaultRecord{
		testutil.FixtureRestoredFault(1),
		testutil.FixtureFault(func(f *models.FaultRecord) {
			f.OccurrenceDate = testutil.BaseTime.Add(24 * time.Hour)
			f.DistrictID = testutil.DistrictOldTwn
		}),
		testutil.FixtureRestoredFault(3, func(f *models.FaultRecord) {
			f.OccurrenceDate = testutil.BaseTime.Add(48 * time.Hour)
			f.RestorationDate = testutil.TimePtr(f.OccurrenceDate.Add(3 * time.Hour))
			f.RegionID = testutil.RegionNorthern
			f.DistrictID = testutil.DistrictHill
			f.FaultType = planned
		}),
	}
	for _, f := range faults {
		if err := repo.Create(ctx, nil, f); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}

	from := testutil.BaseTime.Add(12 * time.Hour)
	tests := []struct {
		name   string
		filter models.FaultFilter
		want   int
	}{
		{"all", models.FaultFilter{}, 3},
		{"region", models.FaultFilter{RegionID: testutil.RegionCentral}, 2},
		{"district", models.FaultFilter{DistrictID: testutil.DistrictHill}, 1},
		{"type", models.FaultFilter{FaultType: &planned}, 1},
		{"open only", models.FaultFilter{OpenOnly: true}, 1},
		{"from", models.FaultFilter{From: &from}, 2},
		{"window", models.FaultFilter{From: &from, To: testutil.TimePtr(testutil.BaseTime.Add(36 * time.Hour))}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := repo.List(ctx, tt.filter, models.DefaultPagination())
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if list.Total != tt.want || len(list.Faults) != tt.want {
				t.Errorf("List() total = %d, len = %d, want %d", list.Total, len(list.Faults), tt.want)
			}
		})
	}

	t.Run("newest first with paging", func(t *testing.T) {
		list, err := repo.List(ctx, models.FaultFilter{}, models.Pagination{Page: 1, PageSize: 2})
		if err != nil {
			t.Fatal(err)
		}
		if list.TotalPages != 2 || len(list.Faults) != 2 || list.Faults[0].ID != faults[2].ID {
			t.Errorf("page 1 = %d faults of %d pages, first %s", len(list.Faults), list.TotalPages, list.Faults[0].ID)
		}
	})

	t.Run("list all oldest first", func(t *testing.T) {
		all, err := repo.ListAll(ctx, models.FaultFilter{})
		if err != nil {
			t.Fatal(err)
		}
		if len(all) != 3 || all[0].ID != faults[0].ID {
			t.Errorf("ListAll() = %d records", len(all))
		}
	})

	t.Run("count open", func(t *testing.T) {
		n, err := repo.CountOpen(ctx, models.FaultFilter{RegionID: testutil.RegionCentral})
		if err != nil || n != 1 {
			t.Errorf("CountOpen() = %d, %v; want 1", n, err)
		}
	})
}

func TestFaultRepository_AssetLink(t *testing.T) {
	repo, db, ctx := setupFaultTest(t)
	assets := NewAssetRepository(db.DB.DB)

	asset := testutil.FixtureAsset()
	if err := assets.Create(ctx, nil, asset); err != nil {
		t.Fatalf("setup asset: %v", err)
	}
	fault := testutil.FixtureFault(func(f *models.FaultRecord) { f.AssetID = &asset.ID })
	if err := repo.Create(ctx, nil, fault); err != nil {
		t.Fatalf("setup fault: %v", err)
	}

	list, err := repo.List(ctx, models.FaultFilter{AssetID: asset.ID}, models.DefaultPagination())
	if err != nil || list.Total != 1 {
		t.Fatalf("List(asset) = %v, %v", list, err)
	}

	if err := assets.Delete(ctx, nil, asset.ID); err != nil {
		t.Fatalf("Delete asset: %v", err)
	}
	got, err := repo.GetByID(ctx, fault.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.AssetID != nil {
		t.Errorf("AssetID = %v after asset deleted, want nil", *got.AssetID)
	}
}
