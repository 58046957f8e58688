package metrics

import (
	"fmt"
	"time"

	"github.com/gridline/faultdesk/internal/models"
)

// Derived holds the per-record values shown alongside a fault.
type Derived struct {
	OutageHours       float64 `json:"outage_hours"`
	Restored          bool    `json:"restored"`
	RepairHours       float64 `json:"repair_hours"`
	Repaired          bool    `json:"repaired"`
	CustomerLostHours float64 `json:"customer_lost_hours"`
}

// Summary aggregates a set of fault records that a principal may see.
type Summary struct {
	Count             int                `json:"count"`
	Open              int                `json:"open"`
	Restored          int                `json:"restored"`
	Repaired          int                `json:"repaired"`
	Skipped           int                `json:"skipped"`
	TotalAffected     int                `json:"total_affected"`
	CustomersServed   int                `json:"customers_served"`
	CustomerLostHours float64            `json:"customer_lost_hours"`
	Indices           ReliabilityIndices `json:"indices"`
	MTTR              float64            `json:"mttr"`
	AverageOutage     float64            `json:"average_outage"`
}

// Engine applies the package functions with optional input checks. The zero
// value behaves exactly like the package-level functions.
type Engine struct {
	// RejectNegative makes every duration fail with ErrNegativeDuration when
	// the end timestamp precedes the occurrence.
	RejectNegative bool
}

// OutageDuration is OutageDuration with the engine's checks applied.
func (e Engine) OutageDuration(occurrence, restoration string) (float64, error) {
	start, end, err := parsePair(occurrence, restoration)
	if err != nil {
		return 0, err
	}
	if err := e.check(start, end); err != nil {
		return 0, err
	}
	return OutageDuration(start, end)
}

// RepairTime is RepairTime with the engine's checks applied.
func (e Engine) RepairTime(occurrence, repair string) (float64, error) {
	start, end, err := parsePair(occurrence, repair)
	if err != nil {
		return 0, err
	}
	if err := e.check(start, end); err != nil {
		return 0, err
	}
	return RepairTime(start, end)
}

// FaultMetrics derives the outage duration, repair time and customer lost
// hours of a single record. Values for an open or unrepaired fault are zero
// with the matching flag left false.
func (e Engine) FaultMetrics(f *models.FaultRecord) (Derived, error) {
	var d Derived
	if f.OccurrenceDate.IsZero() {
		return d, fmt.Errorf("fault %s: %w: occurrence is not set", f.ID, ErrInvalidTimestamp)
	}

	if f.RestorationDate != nil {
		if err := e.check(f.OccurrenceDate, *f.RestorationDate); err != nil {
			return Derived{}, fmt.Errorf("fault %s restoration: %w", f.ID, err)
		}
		hours, err := OutageDuration(f.OccurrenceDate, *f.RestorationDate)
		if err != nil {
			return Derived{}, fmt.Errorf("fault %s: %w", f.ID, err)
		}
		d.OutageHours = hours
		d.Restored = true
		d.CustomerLostHours = CustomerLostHours(hours, f.AffectedPopulation)
	}

	if f.RepairDate != nil {
		if err := e.check(f.OccurrenceDate, *f.RepairDate); err != nil {
			return Derived{}, fmt.Errorf("fault %s repair: %w", f.ID, err)
		}
		hours, err := RepairTime(f.OccurrenceDate, *f.RepairDate)
		if err != nil {
			return Derived{}, fmt.Errorf("fault %s: %w", f.ID, err)
		}
		d.RepairHours = hours
		d.Repaired = true
	}

	return d, nil
}

// Summarize aggregates records against a customer base of customersServed.
//
// Customer lost hours are the sum of each restored record's rounded value.
// The system indices use the restored records only, so SAIFI and SAIDI
// describe the same set of completed interruptions. Records the engine
// rejects are counted in Skipped and otherwise ignored. The input slice is
// never modified.
func (e Engine) Summarize(records []*models.FaultRecord, customersServed int) Summary {
	s := Summary{CustomersServed: customersServed}

	var (
		restoredAffected int
		outageTotal      float64
		repairTotal      float64
	)

	for _, f := range records {
		d, err := e.FaultMetrics(f)
		if err != nil {
			s.Skipped++
			continue
		}

		s.Count++
		s.TotalAffected += f.AffectedPopulation.Total()

		if !d.Restored {
			s.Open++
		} else {
			s.Restored++
			restoredAffected += f.AffectedPopulation.Total()
			outageTotal += d.OutageHours
			s.CustomerLostHours += d.CustomerLostHours
		}

		if d.Repaired {
			s.Repaired++
			repairTotal += d.RepairHours
		}
	}

	s.CustomerLostHours = Round2(s.CustomerLostHours)
	s.Indices = indicesFrom(s.CustomerLostHours, restoredAffected, customersServed)
	if s.Restored > 0 {
		s.AverageOutage = Round2(outageTotal / float64(s.Restored))
	}
	if s.Repaired > 0 {
		s.MTTR = Round2(repairTotal / float64(s.Repaired))
	}
	return s
}

func (e Engine) check(start, end time.Time) error {
	if !e.RejectNegative {
		return nil
	}
	return ValidateRange(start, end)
}

// FaultMetrics derives a record's values with the permissive default engine.
func FaultMetrics(f *models.FaultRecord) (Derived, error) {
	return Engine{}.FaultMetrics(f)
}

// Summarize aggregates records with the permissive default engine.
func Summarize(records []*models.FaultRecord, customersServed int) Summary {
	return Engine{}.Summarize(records, customersServed)
}
