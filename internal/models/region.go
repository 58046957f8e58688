package models

import (
	"fmt"
	"strings"
)

// Region is a top-level operating area of the utility.
type Region struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Validate checks if the region data is valid.
func (r *Region) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// District is an operating area inside a region.
type District struct {
	ID              string `json:"id"`
	RegionID        string `json:"region_id"`
	Code            string `json:"code"`
	Name            string `json:"name"`
	CustomersServed int    `json:"customers_served"`
}

// Validate checks if the district data is valid.
func (d *District) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("id is required")
	}
	if d.RegionID == "" {
		return fmt.Errorf("region_id is required")
	}
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if d.CustomersServed < 0 {
		return fmt.Errorf("customers_served must be non-negative")
	}
	return nil
}

// ReferenceData is the static region and district catalogue, loaded once at
// startup and read-only afterwards.
type ReferenceData struct {
	Regions   []Region
	Districts []District
}

// Region returns the region with the given ID.
func (rd *ReferenceData) Region(id string) (Region, bool) {
	for _, r := range rd.Regions {
		if r.ID == id {
			return r, true
		}
	}
	return Region{}, false
}

// District returns the district with the given ID.
func (rd *ReferenceData) District(id string) (District, bool) {
	for _, d := range rd.Districts {
		if d.ID == id {
			return d, true
		}
	}
	return District{}, false
}

// DistrictsIn returns the districts belonging to a region, in catalogue order.
func (rd *ReferenceData) DistrictsIn(regionID string) []District {
	var out []District
	for _, d := range rd.Districts {
		if d.RegionID == regionID {
			out = append(out, d)
		}
	}
	return out
}

// RegionName returns the display name for a region ID, or the ID itself.
func (rd *ReferenceData) RegionName(id string) string {
	if r, ok := rd.Region(id); ok {
		return r.Name
	}
	return id
}

// DistrictName returns the display name for a district ID, or the ID itself.
func (rd *ReferenceData) DistrictName(id string) string {
	if d, ok := rd.District(id); ok {
		return d.Name
	}
	return id
}

// CustomersServed returns the customer base for the given scope. An empty
// regionID and districtID means the whole utility.
func (rd *ReferenceData) CustomersServed(regionID, districtID string) int {
	total := 0
	for _, d := range rd.Districts {
		if districtID != "" && d.ID != districtID {
			continue
		}
		if regionID != "" && d.RegionID != regionID {
			continue
		}
		total += d.CustomersServed
	}
	return total
}
