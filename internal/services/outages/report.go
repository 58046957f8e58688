package outages

import (
	"context"
	"time"

	"github.com/gridline/faultdesk/internal/access"
	"github.com/gridline/faultdesk/internal/metrics"
	"github.com/gridline/faultdesk/internal/models"
)

// ReportInput selects the window and optional narrowing of a report. A nil
// From defaults to the configured report window before To; a nil To means
// now.
type ReportInput struct {
	From     *time.Time
	To       *time.Time
	Region   string
	District string
}

// DistrictSummary is one row of the per-district breakdown.
type DistrictSummary struct {
	District   models.District
	RegionName string
	Summary    metrics.Summary
}

// TypeSummary is one row of the per-fault-type breakdown.
type TypeSummary struct {
	Type    models.FaultType
	Summary metrics.Summary
}

// Report is the reliability summary for a principal's visible records.
type Report struct {
	Scope       string
	RegionID    string
	DistrictID  string
	From        time.Time
	To          time.Time
	GeneratedAt time.Time
	Summary     metrics.Summary
	ByDistrict  []DistrictSummary
	ByType      []TypeSummary
}

// Report builds the reliability summary of the faults p may see that
// occurred in the window. Index denominators are the customers served by
// the reported scope.
func (s *Service) Report(ctx context.Context, p *access.Principal, in ReportInput) (*Report, error) {
	if p == nil {
		return nil, access.ErrUnauthenticated
	}

	now := s.clock.Now().UTC()
	to := now
	if in.To != nil {
		to = in.To.UTC()
	}
	from := to.AddDate(0, 0, -s.window)
	if in.From != nil {
		from = in.From.UTC()
	}

	filter, ok := s.narrow(*p, models.FaultFilter{
		RegionID:   in.Region,
		DistrictID: in.District,
		From:       &from,
		To:         &to,
	})

	r := &Report{
		Scope:       p.ScopeLabel(),
		RegionID:    filter.RegionID,
		DistrictID:  filter.DistrictID,
		From:        from,
		To:          to,
		GeneratedAt: now,
	}
	if !ok {
		r.Summary = s.engine.Summarize(nil, 0)
		return r, nil
	}

	res := access.Resource{Scope: access.ScopeReports, Region: filter.RegionID, District: filter.DistrictID}
	if err := s.policy.Authorize(p, res); err != nil {
		return nil, err
	}

	records, err := s.faults.ListAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	records = access.FilterRecords(records, s.policy.VisibleRecords(*p))

	customers := s.ref.CustomersServed(filter.RegionID, filter.DistrictID)
	r.Summary = s.engine.Summarize(records, customers)

	byDistrict := make(map[string][]*models.FaultRecord)
	byType := make(map[models.FaultType][]*models.FaultRecord)
	for _, f := range records {
		byDistrict[f.DistrictID] = append(byDistrict[f.DistrictID], f)
		byType[f.FaultType] = append(byType[f.FaultType], f)
	}

	for _, d := range s.districtsInScope(filter) {
		r.ByDistrict = append(r.ByDistrict, DistrictSummary{
			District:   d,
			RegionName: s.ref.RegionName(d.RegionID),
			Summary:    s.engine.Summarize(byDistrict[d.ID], d.CustomersServed),
		})
	}
	for _, t := range models.FaultTypes {
		if recs := byType[t]; len(recs) > 0 {
			r.ByType = append(r.ByType, TypeSummary{Type: t, Summary: s.engine.Summarize(recs, customers)})
		}
	}

	s.logger.Debug("reliability report built",
		"scope", r.Scope,
		"records", r.Summary.Count,
		"skipped", r.Summary.Skipped,
		"saidi", r.Summary.Indices.SAIDI,
	)
	return r, nil
}

func (s *Service) districtsInScope(filter models.FaultFilter) []models.District {
	switch {
	case filter.DistrictID != "":
		if d, ok := s.ref.District(filter.DistrictID); ok {
			return []models.District{d}
		}
		return nil
	case filter.RegionID != "":
		return s.ref.DistrictsIn(filter.RegionID)
	default:
		return s.ref.Districts
	}
}
