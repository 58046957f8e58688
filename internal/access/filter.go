package access

import "github.com/gridline/faultdesk/internal/models"

func matchNone(*models.FaultRecord) bool { return false }

// VisibleRecordsFilter returns the predicate selecting the fault records p may
// see. Global roles see every record, a regional engineer sees its region and
// district-scoped roles see their district. A scope dir cannot resolve, or an
// unknown role, matches nothing. A nil dir treats scope values as ids.
func VisibleRecordsFilter(p Principal, dir *Directory) func(*models.FaultRecord) bool {
	switch {
	case p.Role.IsGlobal():
		return func(*models.FaultRecord) bool { return true }

	case p.Role == RoleRegionalEngineer:
		regionID, ok := dir.ResolveRegion(p.Region)
		if !ok {
			return matchNone
		}
		return func(f *models.FaultRecord) bool { return f.RegionID == regionID }

	case p.Role.IsDistrictScoped():
		districtID, ok := dir.ResolveDistrict(p.District)
		if !ok {
			return matchNone
		}
		return func(f *models.FaultRecord) bool { return f.DistrictID == districtID }
	}
	return matchNone
}

// FilterRecords returns the records keep selects, in order, as a new slice.
func FilterRecords(records []*models.FaultRecord, keep func(*models.FaultRecord) bool) []*models.FaultRecord {
	out := make([]*models.FaultRecord, 0, len(records))
	for _, f := range records {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}

// ScopeQuery returns the region and district ids a store query should be
// narrowed to for p. Empty strings mean no narrowing. ok is false when p's
// scope cannot be resolved and nothing is visible.
func ScopeQuery(p Principal, dir *Directory) (regionID, districtID string, ok bool) {
	switch {
	case p.Role.IsGlobal():
		return "", "", true
	case p.Role == RoleRegionalEngineer:
		regionID, ok = dir.ResolveRegion(p.Region)
		return regionID, "", ok
	case p.Role.IsDistrictScoped():
		districtID, ok = dir.ResolveDistrict(p.District)
		return "", districtID, ok
	}
	return "", "", false
}
