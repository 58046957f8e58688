package assets

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/gridline/faultdesk/internal/access"
	"github.com/gridline/faultdesk/internal/models"
	assetsvc "github.com/gridline/faultdesk/internal/services/assets"
	"github.com/gridline/faultdesk/internal/testutil"
	"github.com/gridline/faultdesk/internal/tui/components"
	"github.com/gridline/faultdesk/internal/util"
)

var (
	globalEng   = &access.Principal{Subject: "grace", Role: access.RoleGlobalEngineer}
	harbourTech = &access.Principal{Subject: "kwame", Role: access.RoleTechnician, Region: "CEN", District: "Harbour"}
)

func setupView(t *testing.T, p *access.Principal) (*RegisterView, *assetsvc.Service) {
	t.Helper()
	db := testutil.NewTestDB(t)
	ref := db.SeedReference(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	policy := access.NewPolicy(access.NewDirectory(ref), logger)
	clock := util.NewFixedClock(testutil.BaseTime.AddDate(0, 0, 200))
	svc := assetsvc.NewService(db.DB.DB, ref, policy, clock, logger, 90)

	return NewRegisterView(svc, p, ref, components.DefaultStyles(), 10), svc
}

func seedAssets(t *testing.T, svc *assetsvc.Service) []*models.Asset {
	t.Helper()
	kva := 500.0
	inputs := []assetsvc.RegisterInput{
		{District: "Harbour", Name: "Dock Road", Type: models.AssetTypeTransformer, InstallDate: testutil.BaseTime, CapacityKVA: &kva},
		{District: "Harbour", Name: "Quay Feeder", Type: models.AssetTypeFeeder},
		{District: "Hillside", Name: "Ridge Pole", Type: models.AssetTypePole},
	}
	var out []*models.Asset
	for _, in := range inputs {
		a, err := svc.Register(context.Background(), globalEng, in)
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		out = append(out, a)
	}
	return out
}

func TestRegisterView_EmptyRender(t *testing.T) {
	view, _ := setupView(t, globalEng)
	if err := view.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	out := view.Render(120, 40)
	if !strings.Contains(out, "ASSET REGISTER") || !strings.Contains(out, "No assets found") {
		t.Errorf("Render() = %q", out)
	}
	if !strings.Contains(view.Render(50, 40), "/:Search") {
		t.Error("expected compact help on narrow terminal")
	}
}

func TestRegisterView_LoadAndFilter(t *testing.T) {
	view, svc := setupView(t, harbourTech)
	seedAssets(t, svc)
	ctx := context.Background()

	if err := view.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if view.Count() != 2 {
		t.Errorf("Count() = %d, want 2 Harbour assets", view.Count())
	}

	out := view.Render(140, 40)
	for _, want := range []string{"TX-CEN01-00001", "Dock Road", "never!", "500"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q", want)
		}
	}
	if strings.Contains(out, "Ridge Pole") {
		t.Error("Render() shows an asset outside the technician's district")
	}

	view.SetSearch("quay")
	if err := view.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if view.Count() != 1 || view.SelectedAsset().Name != "Quay Feeder" {
		t.Errorf("search Count() = %d", view.Count())
	}
	view.SetSearch("")

	view.CycleType()
	if ft := view.Filter().Type; ft == nil || *ft != models.AssetTypeSubstation {
		t.Fatalf("CycleType() filter = %v", ft)
	}
	if err := view.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if view.Count() != 0 {
		t.Errorf("substation Count() = %d, want 0", view.Count())
	}
}

func TestRegisterView_RenderDetail(t *testing.T) {
	view, svc := setupView(t, globalEng)
	assets := seedAssets(t, svc)

	history := []*models.FaultRecord{testutil.FixtureFault()}
	out := view.RenderDetail(assets[0], history, 120)
	for _, want := range []string{"TX-CEN01-00001", "Central Region", "Harbour", "500 kVA", "OVERDUE", "FAULT HISTORY (1)", "UNPLANNED"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderDetail() missing %q", want)
		}
	}

	out = view.RenderDetail(assets[1], nil, 50)
	if strings.Contains(out, "OVERDUE") {
		t.Error("recently installed asset shown as overdue")
	}
	if !strings.Contains(out, "No faults recorded") {
		t.Error("expected empty history message")
	}
}

func TestNextStatus(t *testing.T) {
	s := models.AssetStatusInService
	seen := map[models.AssetStatus]bool{}
	for i := 0; i < 4; i++ {
		seen[s] = true
		s = NextStatus(s)
	}
	if len(seen) != 4 || s != models.AssetStatusInService {
		t.Errorf("status cycle visited %v and ended on %s", seen, s)
	}
}

func TestForm(t *testing.T) {
	t.Run("locked district", func(t *testing.T) {
		f := NewForm("Harbour", components.DefaultStyles())
		if !f.name.IsFocused() {
			t.Fatal("name should be focused first")
		}
		for _, r := range "Dock Road" {
			f.HandleKey(string(r))
		}
		f.installed.SetValue("2023-06-01")
		f.capacity.SetValue("315")
		f.assetType.SetValue(string(models.AssetTypeTransformer))

		f.HandleKey("ctrl+s")
		if !f.IsSubmitted() {
			t.Fatalf("not submitted: %s", f.Error())
		}
		in, err := f.GetInput()
		if err != nil {
			t.Fatalf("GetInput() error = %v", err)
		}
		if in.District != "Harbour" || in.Name != "Dock Road" || in.Type != models.AssetTypeTransformer {
			t.Errorf("input = %+v", in)
		}
		if in.CapacityKVA == nil || *in.CapacityKVA != 315 || util.FormatDate(in.InstallDate) != "2023-06-01" {
			t.Errorf("input = %+v", in)
		}
		if !strings.Contains(f.Render(120), "REGISTER ASSET") {
			t.Error("missing title")
		}
	})

	t.Run("rejects bad input", func(t *testing.T) {
		f := NewForm("", components.DefaultStyles())
		f.HandleKey("ctrl+s")
		if f.IsSubmitted() || !strings.Contains(f.Error(), "required") {
			t.Errorf("empty form submitted, err %q", f.Error())
		}

		f.district.SetValue("Harbour")
		f.name.SetValue("Quay")
		f.installed.SetValue("01/06/2023")
		f.HandleKey("ctrl+s")
		if f.IsSubmitted() || !strings.Contains(f.Error(), "install date") {
			t.Errorf("bad date submitted, err %q", f.Error())
		}
	})
}
