package assets

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gridline/faultdesk/internal/access"
	"github.com/gridline/faultdesk/internal/models"
	"github.com/gridline/faultdesk/internal/repository"
	"github.com/gridline/faultdesk/internal/testutil"
	"github.com/gridline/faultdesk/internal/util"
)

var (
	globalEng   = &access.Principal{Subject: "grace", Role: access.RoleGlobalEngineer}
	centralEng  = &access.Principal{Subject: "rashid", Role: access.RoleRegionalEngineer, Region: "CEN"}
	harbourEng  = &access.Principal{Subject: "dede", Role: access.RoleDistrictEngineer, Region: "CEN", District: "Harbour"}
	harbourTech = &access.Principal{Subject: "kwame", Role: access.RoleTechnician, Region: "CEN", District: "Harbour"}
	hillTech    = &access.Principal{Subject: "ama", Role: access.RoleTechnician, Region: "NOR", District: "Hillside"}
)

type fixture struct {
	svc    *Service
	assets *repository.AssetRepository
	faults *repository.FaultRepository
	ctx    context.Context
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	ref := db.SeedReference(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	policy := access.NewPolicy(access.NewDirectory(ref), logger)
	clock := util.NewFixedClock(testutil.BaseTime.AddDate(0, 0, 10))

	return fixture{
		svc:    NewService(db.DB.DB, ref, policy, clock, logger, 90),
		assets: repository.NewAssetRepository(db.DB.DB),
		faults: repository.NewFaultRepository(db.DB.DB),
		ctx:    context.Background(),
	}
}

func TestTypeCode(t *testing.T) {
	if got := TypeCode(models.AssetTypeTransformer); got != "TX" {
		t.Errorf("TypeCode(TRANSFORMER) = %q", got)
	}
	if got := TypeCode("UNKNOWN"); got != "AS" {
		t.Errorf("TypeCode(UNKNOWN) = %q", got)
	}
}

func TestRegister(t *testing.T) {
	fx := setup(t)

	existing := testutil.FixtureAsset(func(a *models.Asset) { a.AssetCode = "TX-CEN01-00007" })
	if err := fx.assets.Create(fx.ctx, nil, existing); err != nil {
		t.Fatalf("setup: %v", err)
	}

	t.Run("continues the stored sequence", func(t *testing.T) {
		a, err := fx.svc.Register(fx.ctx, harbourEng, RegisterInput{
			District: "Harbour",
			Name:     "Dock Road Transformer",
			Type:     models.AssetTypeTransformer,
		})
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if a.AssetCode != "TX-CEN01-00008" {
			t.Errorf("AssetCode = %q, want TX-CEN01-00008", a.AssetCode)
		}
		if a.RegionID != testutil.RegionCentral || a.Status != models.AssetStatusInService {
			t.Errorf("asset = %+v", a)
		}
		want := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
		if !a.InstallDate.Equal(want) {
			t.Errorf("InstallDate = %v, want %v", a.InstallDate, want)
		}
	})

	t.Run("technician exception allows registration", func(t *testing.T) {
		a, err := fx.svc.Register(fx.ctx, harbourTech, RegisterInput{
			District: "CEN-01",
			Name:     "Pier Feeder",
			Type:     models.AssetTypeFeeder,
		})
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if a.AssetCode != "FD-CEN01-00001" {
			t.Errorf("AssetCode = %q", a.AssetCode)
		}
	})

	denied := []struct {
		name     string
		p        *access.Principal
		district string
		reason   access.Reason
	}{
		{"technician in other region", harbourTech, "Hillside", access.ReasonRegionMismatch},
		{"technician in other district", harbourTech, "Old Town", access.ReasonDistrictMismatch},
		{"district engineer in other district", harbourEng, "Old Town", access.ReasonDistrictMismatch},
	}
	for _, tt := range denied {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.svc.Register(fx.ctx, tt.p, RegisterInput{
				District: tt.district,
				Name:     "Denied",
				Type:     models.AssetTypePole,
			})
			var denied *access.DeniedError
			if !errors.As(err, &denied) {
				t.Fatalf("Register() error = %v, want DeniedError", err)
			}
			if denied.Decision.Reason != tt.reason {
				t.Errorf("reason = %s, want %s", denied.Decision.Reason, tt.reason)
			}
		})
	}

	t.Run("unknown district", func(t *testing.T) {
		_, err := fx.svc.Register(fx.ctx, globalEng, RegisterInput{District: "Atlantis", Name: "X", Type: models.AssetTypePole})
		if !errors.Is(err, ErrInvalidLocation) {
			t.Errorf("Register() error = %v, want ErrInvalidLocation", err)
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := fx.svc.Register(fx.ctx, nil, RegisterInput{District: "Harbour", Name: "X", Type: models.AssetTypePole})
		if !errors.Is(err, access.ErrUnauthenticated) {
			t.Errorf("Register() error = %v, want ErrUnauthenticated", err)
		}
	})
}

func TestGetAndList(t *testing.T) {
	fx := setup(t)

	harbour := testutil.FixtureAsset()
	hill := testutil.FixtureAsset(func(a *models.Asset) {
		a.AssetCode = "TX-NOR01-00001"
		a.RegionID = testutil.RegionNorthern
		a.DistrictID = testutil.DistrictHill
	})
	oldTown := testutil.FixtureAsset(func(a *models.Asset) {
		a.AssetCode = "TX-CEN02-00001"
		a.DistrictID = testutil.DistrictOldTwn
	})
	for _, a := range []*models.Asset{harbour, hill, oldTown} {
		if err := fx.assets.Create(fx.ctx, nil, a); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}

	if _, err := fx.svc.Get(fx.ctx, harbourTech, harbour.ID); err != nil {
		t.Errorf("Get() own district error = %v", err)
	}
	if _, err := fx.svc.Get(fx.ctx, hillTech, harbour.ID); err == nil {
		t.Error("Get() other region should be denied")
	}
	if _, err := fx.svc.Get(fx.ctx, globalEng, "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Get() missing error = %v", err)
	}

	tests := []struct {
		name   string
		p      *access.Principal
		filter models.AssetFilter
		want   int
	}{
		{"global", globalEng, models.AssetFilter{}, 3},
		{"regional", centralEng, models.AssetFilter{}, 2},
		{"regional filter outside region", centralEng, models.AssetFilter{RegionID: testutil.RegionNorthern}, 0},
		{"technician", harbourTech, models.AssetFilter{}, 1},
		{"technician filter other district", harbourTech, models.AssetFilter{DistrictID: testutil.DistrictOldTwn}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := fx.svc.List(fx.ctx, tt.p, tt.filter, models.DefaultPagination())
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(list.Assets) != tt.want {
				t.Errorf("List() = %d assets, want %d", len(list.Assets), tt.want)
			}
		})
	}

	if _, err := fx.svc.List(fx.ctx, nil, models.AssetFilter{}, models.DefaultPagination()); !errors.Is(err, access.ErrUnauthenticated) {
		t.Errorf("List(nil) error = %v", err)
	}
}

func TestMaintenance(t *testing.T) {
	fx := setup(t)

	a := testutil.FixtureAsset()
	if err := fx.assets.Create(fx.ctx, nil, a); err != nil {
		t.Fatalf("setup: %v", err)
	}

	overdue, err := fx.svc.OverdueInspections(fx.ctx, harbourTech)
	if err != nil {
		t.Fatalf("OverdueInspections() error = %v", err)
	}
	if len(overdue) != 1 {
		t.Fatalf("OverdueInspections() = %d, want 1", len(overdue))
	}

	got, err := fx.svc.RecordInspection(fx.ctx, harbourTech, a.ID, time.Time{})
	if err != nil {
		t.Fatalf("RecordInspection() error = %v", err)
	}
	want := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	if got.LastInspection == nil || !got.LastInspection.Equal(want) {
		t.Errorf("LastInspection = %v, want %v", got.LastInspection, want)
	}

	overdue, err = fx.svc.OverdueInspections(fx.ctx, harbourTech)
	if err != nil {
		t.Fatal(err)
	}
	if len(overdue) != 0 {
		t.Errorf("OverdueInspections() after inspection = %d, want 0", len(overdue))
	}

	if _, err := fx.svc.SetStatus(fx.ctx, harbourEng, a.ID, "BROKEN"); err == nil {
		t.Error("SetStatus() should reject an invalid status")
	}
	got, err = fx.svc.SetStatus(fx.ctx, harbourEng, a.ID, models.AssetStatusUnderRepair)
	if err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	stored, _ := fx.assets.GetByID(fx.ctx, a.ID)
	if got.Status != models.AssetStatusUnderRepair || stored.Status != models.AssetStatusUnderRepair {
		t.Errorf("status = %s, stored %s", got.Status, stored.Status)
	}

	if _, err := fx.svc.SetStatus(fx.ctx, hillTech, a.ID, models.AssetStatusInService); err == nil {
		t.Error("SetStatus() from another region should be denied")
	}
}

func TestOverdueSkipsDecommissioned(t *testing.T) {
	fx := setup(t)

	a := testutil.FixtureAsset(func(a *models.Asset) { a.Status = models.AssetStatusDecommissioned })
	if err := fx.assets.Create(fx.ctx, nil, a); err != nil {
		t.Fatalf("setup: %v", err)
	}
	overdue, err := fx.svc.OverdueInspections(fx.ctx, globalEng)
	if err != nil {
		t.Fatal(err)
	}
	if len(overdue) != 0 {
		t.Errorf("OverdueInspections() = %d, want 0", len(overdue))
	}
}

func TestFaultHistoryAndDelete(t *testing.T) {
	fx := setup(t)

	a := testutil.FixtureAsset()
	if err := fx.assets.Create(fx.ctx, nil, a); err != nil {
		t.Fatalf("setup: %v", err)
	}
	f := testutil.FixtureRestoredFault(2, func(f *models.FaultRecord) { f.AssetID = &a.ID })
	if err := fx.faults.Create(fx.ctx, nil, f); err != nil {
		t.Fatalf("setup: %v", err)
	}
	other := testutil.FixtureFault()
	if err := fx.faults.Create(fx.ctx, nil, other); err != nil {
		t.Fatalf("setup: %v", err)
	}

	history, err := fx.svc.FaultHistory(fx.ctx, harbourTech, a.ID)
	if err != nil {
		t.Fatalf("FaultHistory() error = %v", err)
	}
	if len(history) != 1 || history[0].ID != f.ID {
		t.Errorf("FaultHistory() = %v", history)
	}

	if err := fx.svc.Delete(fx.ctx, hillTech, a.ID); err == nil {
		t.Error("Delete() from another region should be denied")
	}
	if err := fx.svc.Delete(fx.ctx, harbourEng, a.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := fx.assets.GetByID(fx.ctx, a.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("asset still stored: %v", err)
	}

	kept, err := fx.faults.GetByID(fx.ctx, f.ID)
	if err != nil {
		t.Fatalf("fault lost with its asset: %v", err)
	}
	if kept.AssetID != nil {
		t.Errorf("AssetID = %v, want nil after asset delete", *kept.AssetID)
	}
}
