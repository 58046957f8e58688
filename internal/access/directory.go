package access

import (
	"strings"

	"github.com/gridline/faultdesk/internal/models"
)

// Directory resolves the region and district a principal names into the ids
// stored on records. A Directory is immutable once built.
type Directory struct {
	regions   map[string]string
	districts map[string]string
	parent    map[string]string
}

// NewDirectory indexes the reference data by id, code and name. When two
// entries share a name the first one listed wins.
func NewDirectory(ref *models.ReferenceData) *Directory {
	d := &Directory{
		regions:   make(map[string]string),
		districts: make(map[string]string),
		parent:    make(map[string]string),
	}
	if ref == nil {
		return d
	}

	for _, r := range ref.Regions {
		addKey(d.regions, r.ID, r.ID)
		addKey(d.regions, r.Code, r.ID)
		addKey(d.regions, r.Name, r.ID)
	}
	for _, dist := range ref.Districts {
		addKey(d.districts, dist.ID, dist.ID)
		addKey(d.districts, dist.Code, dist.ID)
		addKey(d.districts, dist.Name, dist.ID)
		d.parent[dist.ID] = dist.RegionID
	}
	return d
}

func addKey(m map[string]string, key, id string) {
	k := normalize(key)
	if k == "" {
		return
	}
	if _, exists := m[k]; !exists {
		m[k] = id
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ResolveRegion returns the region id for an id, code or name. A nil
// Directory treats the value as an id.
func (d *Directory) ResolveRegion(s string) (string, bool) {
	if d == nil {
		return s, s != ""
	}
	id, ok := d.regions[normalize(s)]
	return id, ok
}

// ResolveDistrict returns the district id for an id, code or name.
func (d *Directory) ResolveDistrict(s string) (string, bool) {
	if d == nil {
		return s, s != ""
	}
	id, ok := d.districts[normalize(s)]
	return id, ok
}

// RegionOf returns the region id a district belongs to.
func (d *Directory) RegionOf(districtID string) (string, bool) {
	if d == nil {
		return "", false
	}
	id, ok := d.parent[districtID]
	return id, ok
}

// sameRegion compares two region references after resolving both. Values the
// directory does not know are compared literally.
func (d *Directory) sameRegion(a, b string) bool {
	return same(a, b, d.ResolveRegion)
}

func (d *Directory) sameDistrict(a, b string) bool {
	return same(a, b, d.ResolveDistrict)
}

func same(a, b string, resolve func(string) (string, bool)) bool {
	if a == b {
		return true
	}
	ra, okA := resolve(a)
	rb, okB := resolve(b)
	return okA && okB && ra == rb
}
