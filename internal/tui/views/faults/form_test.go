package faults

import (
	"strings"
	"testing"

	"github.com/gridline/faultdesk/internal/access"
	"github.com/gridline/faultdesk/internal/models"
	"github.com/gridline/faultdesk/internal/testutil"
	"github.com/gridline/faultdesk/internal/tui/components"
)

func TestLocationFor(t *testing.T) {
	tests := []struct {
		name string
		p    access.Principal
		want LocationContext
	}{
		{"global is open", *globalEng, LocationContext{}},
		{"regional locks region", *centralEng, LocationContext{Region: "CEN", RegionLocked: true}},
		{"technician locks both", *harbourTech, LocationContext{Region: "CEN", District: "Harbour", RegionLocked: true, DistrictLocked: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LocationFor(tt.p); got != tt.want {
				t.Errorf("LocationFor() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestForm_LockedLocationSkipsFields(t *testing.T) {
	f := NewForm(LocationFor(*harbourTech), components.DefaultStyles(), testutil.BaseTime)
	if len(f.form.Fields()) != 8 {
		t.Errorf("fields = %d, want 8", len(f.form.Fields()))
	}
	if !f.asset.IsFocused() {
		t.Error("asset should be the first focused field")
	}

	out := f.Render(120)
	for _, want := range []string{"RECORD FAULT", "Harbour", "2024-03-01 08:00", "CUSTOMERS AFFECTED"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q", want)
		}
	}
}

func TestForm_Submit(t *testing.T) {
	f := NewForm(LocationFor(*harbourTech), components.DefaultStyles(), testutil.BaseTime)
	f.faultType.SetValue(string(models.FaultTypeEmergency))
	f.description.SetValue("Pole down")
	f.restored.SetValue("2024-03-01 09:45")
	f.urban.SetValue("120")
	f.metro.SetValue("")

	f.HandleKey("ctrl+s")
	if !f.IsSubmitted() {
		t.Fatalf("form not submitted: %s", f.Error())
	}

	in, err := f.GetInput()
	if err != nil {
		t.Fatalf("GetInput() error = %v", err)
	}
	if in.Location.Region != "CEN" || in.Location.District != "Harbour" {
		t.Errorf("Location = %+v", in.Location)
	}
	if in.FaultType != models.FaultTypeEmergency || in.Description != "Pole down" {
		t.Errorf("input = %+v", in)
	}
	if !in.OccurrenceDate.Equal(testutil.BaseTime) {
		t.Errorf("OccurrenceDate = %v", in.OccurrenceDate)
	}
	if in.RestorationDate == nil || in.RestorationDate.Sub(in.OccurrenceDate).Minutes() != 105 {
		t.Errorf("RestorationDate = %v", in.RestorationDate)
	}
	if in.AffectedPopulation != (models.AffectedPopulation{Urban: 120}) {
		t.Errorf("AffectedPopulation = %+v", in.AffectedPopulation)
	}
}

func TestForm_SubmitRejected(t *testing.T) {
	tests := []struct {
		name    string
		loc     LocationContext
		prepare func(*Form)
		wantErr string
	}{
		{
			name:    "missing location",
			loc:     LocationContext{},
			wantErr: "required",
		},
		{
			name:    "bad occurrence",
			loc:     LocationFor(*harbourTech),
			prepare: func(f *Form) { f.occurred.SetValue("yesterday") },
			wantErr: "invalid occurrence",
		},
		{
			name:    "restored before occurred",
			loc:     LocationFor(*harbourTech),
			prepare: func(f *Form) { f.restored.SetValue("2024-03-01 07:00") },
			wantErr: "end precedes start",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewForm(tt.loc, components.DefaultStyles(), testutil.BaseTime)
			if tt.prepare != nil {
				tt.prepare(f)
			}
			f.HandleKey("ctrl+s")
			if f.IsSubmitted() {
				t.Fatal("invalid form was submitted")
			}
			if !strings.Contains(f.Error(), tt.wantErr) {
				t.Errorf("Error() = %q, want %q", f.Error(), tt.wantErr)
			}
			if !strings.Contains(f.Render(120), "Error:") {
				t.Error("Render() should show the error")
			}
		})
	}
}

func TestForm_TypingIntoFields(t *testing.T) {
	f := NewForm(LocationFor(*centralEng), components.DefaultStyles(), testutil.BaseTime)
	if !f.district.IsFocused() {
		t.Fatal("district should be focused first for a regional engineer")
	}
	for _, r := range "Old Town" {
		f.HandleKey(string(r))
	}
	f.HandleKey("esc")
	if !f.IsCancelled() {
		t.Error("esc should cancel")
	}
	if f.district.Value() != "Old Town" {
		t.Errorf("district = %q", f.district.Value())
	}
}
