package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/gridline/faultdesk/internal/models"
)

func at(d time.Duration) *time.Time {
	t := base.Add(d)
	return &t
}

func summaryRecords() []*models.FaultRecord {
	return []*models.FaultRecord{
		{
			ID:                 "restored-and-repaired",
			OccurrenceDate:     base,
			RestorationDate:    at(2 * time.Hour),
			RepairDate:         at(4 * time.Hour),
			AffectedPopulation: models.AffectedPopulation{Rural: 100},
		},
		{
			ID:                 "restored",
			OccurrenceDate:     base,
			RestorationDate:    at(3 * time.Hour),
			AffectedPopulation: models.AffectedPopulation{Urban: 50, Metro: 50},
		},
		{
			ID:                 "open",
			OccurrenceDate:     base,
			AffectedPopulation: models.AffectedPopulation{Rural: 10},
		},
		{
			ID:                 "no-occurrence",
			AffectedPopulation: models.AffectedPopulation{Rural: 999},
		},
	}
}

func TestSummarize(t *testing.T) {
	records := summaryRecords()
	s := Summarize(records, 1000)

	if s.Count != 3 || s.Open != 1 || s.Restored != 2 || s.Repaired != 1 || s.Skipped != 1 {
		t.Errorf("counts = %+v", s)
	}
	if s.TotalAffected != 210 {
		t.Errorf("TotalAffected = %d, want 210", s.TotalAffected)
	}
	if !approx(s.CustomerLostHours, 500) {
		t.Errorf("CustomerLostHours = %v, want 500", s.CustomerLostHours)
	}
	if !approx(s.Indices.SAIDI, 0.5) || !approx(s.Indices.SAIFI, 0.2) || !approx(s.Indices.CAIDI, 2.5) {
		t.Errorf("Indices = %+v, want {0.5 0.2 2.5}", s.Indices)
	}
	if !approx(s.MTTR, 4) {
		t.Errorf("MTTR = %v, want 4", s.MTTR)
	}
	if !approx(s.AverageOutage, 2.5) {
		t.Errorf("AverageOutage = %v, want 2.5", s.AverageOutage)
	}
	if records[0].RestorationDate.Sub(base) != 2*time.Hour {
		t.Error("Summarize modified its input")
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, 5000)
	if s.Count != 0 || s.CustomerLostHours != 0 || s.Indices != (ReliabilityIndices{}) || s.MTTR != 0 {
		t.Errorf("Summarize(nil) = %+v, want zeros", s)
	}
	if s.CustomersServed != 5000 {
		t.Errorf("CustomersServed = %d, want 5000", s.CustomersServed)
	}
}

func TestSummarize_ZeroCustomersServed(t *testing.T) {
	s := Summarize(summaryRecords(), 0)
	if s.Indices != (ReliabilityIndices{}) {
		t.Errorf("Indices = %+v, want zeros", s.Indices)
	}
	if !approx(s.CustomerLostHours, 500) {
		t.Errorf("CustomerLostHours = %v, want 500", s.CustomerLostHours)
	}
}

func TestEngine_RejectNegative(t *testing.T) {
	reversed := &models.FaultRecord{
		ID:                 "reversed",
		OccurrenceDate:     base,
		RestorationDate:    at(-time.Hour),
		AffectedPopulation: models.AffectedPopulation{Rural: 10},
	}

	d, err := FaultMetrics(reversed)
	if err != nil {
		t.Fatalf("permissive FaultMetrics() error = %v", err)
	}
	if !approx(d.OutageHours, -1) || !approx(d.CustomerLostHours, -10) {
		t.Errorf("permissive Derived = %+v, want -1h and -10 CLH", d)
	}

	strict := Engine{RejectNegative: true}
	if _, err := strict.FaultMetrics(reversed); !errors.Is(err, ErrNegativeDuration) {
		t.Errorf("strict FaultMetrics() error = %v, want ErrNegativeDuration", err)
	}
	if _, err := strict.OutageDuration("2026-03-01T08:00:00Z", "2026-03-01T07:00:00Z"); !errors.Is(err, ErrNegativeDuration) {
		t.Errorf("strict OutageDuration() error = %v, want ErrNegativeDuration", err)
	}
	if _, err := strict.RepairTime("2026-03-01T08:00:00Z", "2026-03-01T07:00:00Z"); !errors.Is(err, ErrNegativeDuration) {
		t.Errorf("strict RepairTime() error = %v, want ErrNegativeDuration", err)
	}

	got, err := strict.OutageDuration("2026-03-01T08:00:00Z", "2026-03-01T09:30:00Z")
	if err != nil || !approx(got, 1.5) {
		t.Errorf("strict OutageDuration() = %v, %v, want 1.5", got, err)
	}

	s := strict.Summarize([]*models.FaultRecord{reversed}, 100)
	if s.Skipped != 1 || s.Count != 0 {
		t.Errorf("strict Summarize() = %+v, want one skipped record", s)
	}
}

func TestFaultMetrics_Open(t *testing.T) {
	d, err := FaultMetrics(&models.FaultRecord{ID: "open", OccurrenceDate: base})
	if err != nil {
		t.Fatalf("FaultMetrics() error = %v", err)
	}
	if d.Restored || d.Repaired || d.OutageHours != 0 || d.CustomerLostHours != 0 {
		t.Errorf("FaultMetrics(open) = %+v, want zero values", d)
	}

	if _, err := FaultMetrics(&models.FaultRecord{ID: "bad"}); !errors.Is(err, ErrInvalidTimestamp) {
		t.Errorf("FaultMetrics(zero occurrence) error = %v, want ErrInvalidTimestamp", err)
	}
}
