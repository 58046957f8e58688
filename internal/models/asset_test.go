package models

import (
	"testing"
	"time"
)

func TestAssetType_Valid(t *testing.T) {
	tests := []struct {
		typ   AssetType
		valid bool
	}{
		{AssetTypeSubstation, true},
		{AssetTypeTransformer, true},
		{AssetTypeFeeder, true},
		{AssetTypeSwitchgear, true},
		{AssetTypePole, true},
		{AssetTypeMeter, true},
		{AssetType("CABLE"), false},
	}

	for _, tt := range tests {
		if got := tt.typ.Valid(); got != tt.valid {
			t.Errorf("AssetType(%q).Valid() = %v, want %v", tt.typ, got, tt.valid)
		}
	}
}

func TestAssetStatus_IsEnergized(t *testing.T) {
	tests := []struct {
		status    AssetStatus
		energized bool
	}{
		{AssetStatusInService, true},
		{AssetStatusOutOfService, false},
		{AssetStatusUnderRepair, false},
		{AssetStatusDecommissioned, false},
	}

	for _, tt := range tests {
		if got := tt.status.IsEnergized(); got != tt.energized {
			t.Errorf("AssetStatus(%q).IsEnergized() = %v, want %v", tt.status, got, tt.energized)
		}
	}
}

func TestAsset_Validate(t *testing.T) {
	valid := func() *Asset {
		return &Asset{
			ID:          "a-1",
			AssetCode:   "TX-0001",
			Name:        "Pole-mount transformer",
			Type:        AssetTypeTransformer,
			RegionID:    "r-1",
			DistrictID:  "d-1",
			Status:      AssetStatusInService,
			InstallDate: time.Date(2019, 5, 1, 0, 0, 0, 0, time.UTC),
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	negative := -5.0
	tests := []struct {
		name   string
		modify func(a *Asset)
	}{
		{"missing code", func(a *Asset) { a.AssetCode = "" }},
		{"missing name", func(a *Asset) { a.Name = "" }},
		{"bad type", func(a *Asset) { a.Type = "X" }},
		{"missing district", func(a *Asset) { a.DistrictID = "" }},
		{"bad status", func(a *Asset) { a.Status = "X" }},
		{"zero install date", func(a *Asset) { a.InstallDate = time.Time{} }},
		{"negative capacity", func(a *Asset) { a.CapacityKVA = &negative }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid()
			tt.modify(a)
			if err := a.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestAsset_InspectionOverdue(t *testing.T) {
	installed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := &Asset{InstallDate: installed}

	if a.InspectionOverdue(installed.AddDate(0, 0, 30), 90) {
		t.Error("new asset should not be overdue")
	}
	if !a.InspectionOverdue(installed.AddDate(0, 0, 91), 90) {
		t.Error("uninspected asset past interval should be overdue")
	}

	inspected := installed.AddDate(0, 0, 80)
	a.LastInspection = &inspected
	if a.InspectionOverdue(installed.AddDate(0, 0, 91), 90) {
		t.Error("recently inspected asset should not be overdue")
	}
}
