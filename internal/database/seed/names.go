// Package seed provides data generation for populating a utility network.
package seed

import "github.com/gridline/faultdesk/internal/models"

// DistrictSpec describes a district in the seed catalogue.
type DistrictSpec struct {
	Name      string
	Customers int
}

// RegionSpec describes a region and its districts in the seed catalogue.
type RegionSpec struct {
	Code      string
	Name      string
	Districts []DistrictSpec
}

// Catalogue is the seeded operating network.
var Catalogue = []RegionSpec{
	{Code: "CEN", Name: "Central Region", Districts: []DistrictSpec{
		{"Harbour", 18500},
		{"Old Town", 24200},
		{"Riverside", 12800},
	}},
	{Code: "NOR", Name: "Northern Region", Districts: []DistrictSpec{
		{"Hillside", 7300},
		{"Kettle Ridge", 4100},
	}},
	{Code: "EST", Name: "Eastern Region", Districts: []DistrictSpec{
		{"Bayfront", 15600},
		{"Millbrook", 9900},
		{"Saltmarsh", 3800},
	}},
	{Code: "WST", Name: "Western Region", Districts: []DistrictSpec{
		{"Copper Flats", 6200},
		{"Westgate", 21400},
	}},
}

// AssetSpec describes how many assets of a type a district gets and what
// they are called.
type AssetSpec struct {
	Type        models.AssetType
	PerDistrict int
	Capacity    float64
	Names       []string
}

// AssetSpecs lists the asset mix seeded into every district.
var AssetSpecs = []AssetSpec{
	{models.AssetTypeSubstation, 1, 20000, []string{"Primary Substation", "Bulk Supply Point"}},
	{models.AssetTypeTransformer, 4, 500, []string{"Quay Street", "Market Lane", "School Road", "Chapel Hill", "Station Yard", "Mill Lane"}},
	{models.AssetTypeFeeder, 3, 0, []string{"North Feeder", "South Feeder", "Ring Feeder", "Industrial Feeder"}},
	{models.AssetTypeSwitchgear, 2, 0, []string{"Ring Main Unit", "Sectionaliser"}},
	{models.AssetTypePole, 2, 0, []string{"Span Pole", "Angle Pole", "Terminal Pole"}},
}

// FaultCauses are descriptions for generated faults, by fault type.
var FaultCauses = map[models.FaultType][]string{
	models.FaultTypeUnplanned: {
		"Feeder trip on earth fault",
		"Conductor down after storm",
		"Transformer fuse blown",
		"Vegetation contact on overhead line",
		"Cable fault at joint",
	},
	models.FaultTypePlanned: {
		"Scheduled transformer maintenance",
		"Line upgrade works",
		"Switchgear replacement",
	},
	models.FaultTypeEmergency: {
		"Vehicle strike on pole",
		"Substation fire",
		"Flood damage to kiosk",
	},
	models.FaultTypeLoadShedding: {
		"Stage 2 load shedding",
		"Rotational load shedding",
	},
	models.FaultTypeGridCo: {
		"Transmission supply loss",
		"Bulk supply frequency trip",
	},
}

// FaultTypeWeights sets how often each fault type is generated.
var FaultTypeWeights = []struct {
	Type   models.FaultType
	Weight int
}{
	{models.FaultTypeUnplanned, 55},
	{models.FaultTypePlanned, 15},
	{models.FaultTypeEmergency, 8},
	{models.FaultTypeLoadShedding, 15},
	{models.FaultTypeGridCo, 7},
}

// Reporters are the control room operators who log generated faults.
var Reporters = []string{
	"control.adjei", "control.mensah", "control.owusu", "control.boateng",
	"control.asante", "control.darko", "control.addo",
}
