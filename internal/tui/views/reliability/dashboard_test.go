package reliability

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/gridline/faultdesk/internal/access"
	"github.com/gridline/faultdesk/internal/models"
	"github.com/gridline/faultdesk/internal/services/outages"
	"github.com/gridline/faultdesk/internal/testutil"
	"github.com/gridline/faultdesk/internal/tui/components"
	"github.com/gridline/faultdesk/internal/util"
)

var (
	globalEng   = &access.Principal{Subject: "grace", Role: access.RoleGlobalEngineer}
	northernEng = &access.Principal{Subject: "yaw", Role: access.RoleRegionalEngineer, Region: "NOR"}
)

func setup(t *testing.T) *outages.Service {
	t.Helper()
	db := testutil.NewTestDB(t)
	ref := db.SeedReference(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	policy := access.NewPolicy(access.NewDirectory(ref), logger)
	clock := util.NewFixedClock(testutil.BaseTime.AddDate(0, 0, 1))
	svc := outages.NewService(db.DB.DB, ref, policy, outages.Options{Clock: clock, Logger: logger})

	restored := testutil.BaseTime.Add(2 * time.Hour)
	_, err := svc.RecordFault(context.Background(), globalEng, outages.RecordFaultInput{
		Location:           outages.Location{Region: "CEN", District: "Harbour"},
		FaultType:          models.FaultTypeUnplanned,
		OccurrenceDate:     testutil.BaseTime,
		RestorationDate:    &restored,
		AffectedPopulation: models.AffectedPopulation{Urban: 100},
	})
	if err != nil {
		t.Fatalf("RecordFault() error = %v", err)
	}
	return svc
}

func TestDashboardView_Window(t *testing.T) {
	v := NewDashboardView(nil, globalEng, components.DefaultStyles(), 90)
	if v.WindowDays() != 90 {
		t.Errorf("WindowDays() = %d, want 90", v.WindowDays())
	}
	v.CycleWindow()
	v.CycleWindow()
	if v.WindowDays() != 7 {
		t.Errorf("WindowDays() after wrap = %d, want 7", v.WindowDays())
	}

	if got := NewDashboardView(nil, globalEng, components.DefaultStyles(), 12).WindowDays(); got != 30 {
		t.Errorf("unknown window = %d, want 30", got)
	}
}

func TestDashboardView_RenderBeforeLoad(t *testing.T) {
	v := NewDashboardView(nil, globalEng, components.DefaultStyles(), 30)
	if !strings.Contains(v.Render(120, 40), "Loading") {
		t.Error("expected loading state before the first report")
	}
}

func TestDashboardView_Load(t *testing.T) {
	svc := setup(t)
	v := NewDashboardView(svc, globalEng, components.DefaultStyles(), 30)
	if err := v.Load(context.Background(), testutil.BaseTime.AddDate(0, 0, 1)); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	r := v.Report()
	if r.Summary.Count != 1 || r.Summary.CustomersServed != 12500 {
		t.Fatalf("summary = %+v", r.Summary)
	}
	if r.To.Sub(r.From) != 30*24*time.Hour {
		t.Errorf("window = %v to %v", r.From, r.To)
	}

	out := v.Render(140, 60)
	for _, want := range []string{
		"NETWORK RELIABILITY",
		"all regions",
		"0.016",  // SAIDI: 200 customer hours / 12500
		"0.0080", // SAIFI: 100 / 12500
		"2.00",   // CAIDI
		"BY DISTRICT",
		"Harbour",
		"0.050", // Harbour SAIDI over 4000 customers
		"BY FAULT TYPE",
		"UNPLANNED",
		"200.0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q", want)
		}
	}

	narrow := v.Render(70, 60)
	if !strings.Contains(narrow, "SAIDI") {
		t.Error("narrow render should still show the indices")
	}
}

func TestDashboardView_RegionalScope(t *testing.T) {
	svc := setup(t)
	v := NewDashboardView(svc, northernEng, components.DefaultStyles(), 30)
	if err := v.Load(context.Background(), testutil.BaseTime.AddDate(0, 0, 1)); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	r := v.Report()
	if r.Summary.Count != 0 || r.Summary.CustomersServed != 2500 {
		t.Errorf("summary = %+v", r.Summary)
	}
	out := v.Render(140, 60)
	if strings.Contains(out, "Harbour") {
		t.Error("northern report lists a central district")
	}
	if !strings.Contains(out, "Hillside") {
		t.Error("northern report should list Hillside")
	}
}
