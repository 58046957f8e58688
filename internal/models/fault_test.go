package models

import (
	"strings"
	"testing"
	"time"
)

func TestFaultType_Valid(t *testing.T) {
	for _, ft := range FaultTypes {
		if !ft.Valid() {
			t.Errorf("FaultType(%q).Valid() = false, want true", ft)
		}
	}
	if FaultType("BLACKOUT").Valid() {
		t.Error("unknown fault type reported valid")
	}
}

func TestFaultStatus_Valid(t *testing.T) {
	tests := []struct {
		status FaultStatus
		valid  bool
		open   bool
	}{
		{FaultStatusPending, true, true},
		{FaultStatusInProgress, true, true},
		{FaultStatusRestored, true, false},
		{FaultStatusResolved, true, false},
		{FaultStatus("CLOSED"), false, false},
	}

	for _, tt := range tests {
		if got := tt.status.Valid(); got != tt.valid {
			t.Errorf("FaultStatus(%q).Valid() = %v, want %v", tt.status, got, tt.valid)
		}
		if got := tt.status.IsOpen(); got != tt.open {
			t.Errorf("FaultStatus(%q).IsOpen() = %v, want %v", tt.status, got, tt.open)
		}
	}
}

func TestAffectedPopulation_Total(t *testing.T) {
	p := AffectedPopulation{Rural: 100, Urban: 200, Metro: 50}
	if got := p.Total(); got != 350 {
		t.Errorf("Total() = %d, want 350", got)
	}
	if got := (AffectedPopulation{}).Total(); got != 0 {
		t.Errorf("zero Total() = %d, want 0", got)
	}
}

func TestFaultRecord_Validate(t *testing.T) {
	occurred := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	before := occurred.Add(-time.Hour)
	after := occurred.Add(3 * time.Hour)

	valid := func() *FaultRecord {
		return &FaultRecord{
			ID:                 "f-1",
			RegionID:           "r-1",
			DistrictID:         "d-1",
			FaultType:          FaultTypeUnplanned,
			Status:             FaultStatusPending,
			OccurrenceDate:     occurred,
			AffectedPopulation: AffectedPopulation{Urban: 10},
		}
	}

	tests := []struct {
		name    string
		modify  func(f *FaultRecord)
		wantErr string
	}{
		{"valid", func(f *FaultRecord) {}, ""},
		{"missing id", func(f *FaultRecord) { f.ID = "" }, "id is required"},
		{"missing region", func(f *FaultRecord) { f.RegionID = "" }, "region_id"},
		{"missing district", func(f *FaultRecord) { f.DistrictID = "" }, "district_id"},
		{"bad type", func(f *FaultRecord) { f.FaultType = "X" }, "fault_type"},
		{"bad status", func(f *FaultRecord) { f.Status = "X" }, "status"},
		{"zero occurrence", func(f *FaultRecord) { f.OccurrenceDate = time.Time{} }, "occurrence_date"},
		{"restoration before occurrence", func(f *FaultRecord) { f.RestorationDate = &before }, "restoration_date"},
		{"repair before occurrence", func(f *FaultRecord) { f.RepairDate = &before }, "repair_date"},
		{"restoration equal occurrence", func(f *FaultRecord) { f.RestorationDate = &occurred }, ""},
		{"restored and repaired", func(f *FaultRecord) { f.RestorationDate = &after; f.RepairDate = &after }, ""},
		{"negative population", func(f *FaultRecord) { f.AffectedPopulation.Metro = -1 }, "non-negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid()
			tt.modify(f)
			err := f.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestFaultRecord_DeriveStatus(t *testing.T) {
	now := time.Now().UTC()

	f := &FaultRecord{Status: FaultStatusPending}
	if got := f.DeriveStatus(); got != FaultStatusPending {
		t.Errorf("DeriveStatus() = %s, want PENDING", got)
	}

	f.Status = FaultStatusInProgress
	if got := f.DeriveStatus(); got != FaultStatusInProgress {
		t.Errorf("DeriveStatus() = %s, want IN_PROGRESS", got)
	}

	f.RestorationDate = &now
	if got := f.DeriveStatus(); got != FaultStatusRestored {
		t.Errorf("DeriveStatus() = %s, want RESTORED", got)
	}
	if !f.IsRestored() || f.IsRepaired() {
		t.Error("expected restored and not repaired")
	}

	f.RepairDate = &now
	if got := f.DeriveStatus(); got != FaultStatusResolved {
		t.Errorf("DeriveStatus() = %s, want RESOLVED", got)
	}
}
