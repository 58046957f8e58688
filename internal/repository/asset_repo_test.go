package repository

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/gridline/faultdesk/internal/models"
	"github.com/gridline/faultdesk/internal/testutil"
)

func setupAssetTest(t *testing.T) (*AssetRepository, context.Context) {
	t.Helper()
	db := testutil.NewTestDB(t)
	db.SeedReference(t)
	return NewAssetRepository(db.DB.DB), context.Background()
}

func TestAssetRepository_Create(t *testing.T) {
	repo, ctx := setupAssetTest(t)

	inspected := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	asset := testutil.FixtureAsset(func(a *models.Asset) {
		a.LastInspection = &inspected
		a.Notes = "Oil sampled"
	})

	t.Run("Create asset", func(t *testing.T) {
		if err := repo.Create(ctx, nil, asset); err != nil {
			t.Fatalf("failed to create asset: %v", err)
		}

		got, err := repo.GetByCode(ctx, asset.AssetCode)
		if err != nil {
			t.Fatalf("failed to get asset: %v", err)
		}
		if got.ID != asset.ID || got.Type != models.AssetTypeTransformer {
			t.Errorf("got %+v", got)
		}
		if got.CapacityKVA == nil || *got.CapacityKVA != 500 {
			t.Errorf("expected capacity 500, got %v", got.CapacityKVA)
		}
		if got.LastInspection == nil || !got.LastInspection.Equal(inspected) {
			t.Errorf("expected last inspection %v, got %v", inspected, got.LastInspection)
		}
		if !got.InstallDate.Equal(asset.InstallDate) || got.Notes != "Oil sampled" {
			t.Errorf("got install %v notes %q", got.InstallDate, got.Notes)
		}
	})

	t.Run("Create duplicate code fails", func(t *testing.T) {
		dup := testutil.FixtureAsset(func(a *models.Asset) { a.AssetCode = asset.AssetCode })
		if err := repo.Create(ctx, nil, dup); err == nil {
			t.Error("expected error for duplicate asset code")
		}
	})

	t.Run("Get missing asset", func(t *testing.T) {
		if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestAssetRepository_UpdateAndList(t *testing.T) {
	repo, ctx := setupAssetTest(t)

	feeder := models.AssetTypeFeeder
	assets := []*models.Asset{
		testutil.FixtureAsset(func(a *models.Asset) { a.AssetCode = "TX-CEN01-00001" }),
		testutil.FixtureAsset(func(a *models.Asset) {
			a.AssetCode = "FD-CEN02-00001"
			a.Name = "Market Feeder"
			a.Type = feeder
			a.DistrictID = testutil.DistrictOldTwn
		}),
		testutil.FixtureAsset(func(a *models.Asset) {
			a.AssetCode = "TX-NOR01-00001"
			a.RegionID = testutil.RegionNorthern
			a.DistrictID = testutil.DistrictHill
		}),
	}
	for _, a := range assets {
		if err := repo.Create(ctx, nil, a); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}

	assets[0].Status = models.AssetStatusUnderRepair
	if err := repo.Update(ctx, nil, assets[0]); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	tests := []struct {
		name   string
		filter models.AssetFilter
		want   int
	}{
		{"all", models.AssetFilter{}, 3},
		{"region", models.AssetFilter{RegionID: testutil.RegionCentral}, 2},
		{"type", models.AssetFilter{Type: &feeder}, 1},
		{"search name", models.AssetFilter{SearchTerm: "market"}, 1},
		{"search code", models.AssetFilter{SearchTerm: "NOR01"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := repo.List(ctx, tt.filter, models.DefaultPagination())
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if list.Total != tt.want {
				t.Errorf("List() total = %d, want %d", list.Total, tt.want)
			}
		})
	}

	counts, err := repo.CountByStatus(ctx, models.AssetFilter{RegionID: testutil.RegionCentral})
	if err != nil {
		t.Fatalf("CountByStatus() error = %v", err)
	}
	if counts[models.AssetStatusUnderRepair] != 1 || counts[models.AssetStatusInService] != 1 {
		t.Errorf("CountByStatus() = %v", counts)
	}

	codes, err := repo.Codes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(codes)
	if len(codes) != 3 || codes[0] != "FD-CEN02-00001" {
		t.Errorf("Codes() = %v", codes)
	}
}
