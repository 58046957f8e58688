// Package metrics computes outage durations, repair times and the SAIDI,
// SAIFI and CAIDI reliability indices from fault records.
//
// Every function in this package is pure: it reads its arguments, never
// mutates them, and holds no state, so callers may use it from any goroutine.
package metrics

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gridline/faultdesk/internal/models"
)

var (
	// ErrInvalidTimestamp is returned when a timestamp is missing or cannot be parsed.
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// ErrNegativeDuration is returned by ValidateRange when the end precedes the start.
	ErrNegativeDuration = errors.New("end precedes start")
)

const millisPerHour = 3_600_000

// timestampLayouts are tried in order by ParseTimestamp.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ReliabilityIndices holds the three system indices for a set of interruptions.
type ReliabilityIndices struct {
	SAIDI float64 `json:"saidi"`
	SAIFI float64 `json:"saifi"`
	CAIDI float64 `json:"caidi"`
}

// ParseTimestamp parses an ISO-8601 timestamp. Values without a zone are UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidTimestamp)
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}

// OutageDuration returns the hours between occurrence and restoration,
// rounded to 2 decimal places. A restoration before the occurrence yields a
// negative value; use ValidateRange to reject that.
func OutageDuration(occurrence, restoration time.Time) (float64, error) {
	return elapsedHours(occurrence, restoration, "restoration")
}

// OutageDurationISO is OutageDuration over ISO-8601 strings.
func OutageDurationISO(occurrence, restoration string) (float64, error) {
	start, end, err := parsePair(occurrence, restoration)
	if err != nil {
		return 0, err
	}
	return OutageDuration(start, end)
}

// RepairTime returns the hours between occurrence and repair completion,
// rounded to 2 decimal places. Negative ranges are returned unmodified.
func RepairTime(occurrence, repair time.Time) (float64, error) {
	return elapsedHours(occurrence, repair, "repair")
}

// RepairTimeISO is RepairTime over ISO-8601 strings.
func RepairTimeISO(occurrence, repair string) (float64, error) {
	start, end, err := parsePair(occurrence, repair)
	if err != nil {
		return 0, err
	}
	return RepairTime(start, end)
}

// CustomerLostHours multiplies an outage duration by the number of customers
// affected, rounded to 2 decimal places.
func CustomerLostHours(durationHours float64, population models.AffectedPopulation) float64 {
	total := population.Total()
	if total == 0 {
		return 0
	}
	return Round2(durationHours * float64(total))
}

// CalculateIndices computes SAIDI, SAIFI and CAIDI for a single interruption.
// A zero totalPopulation yields all-zero indices, and CAIDI is zero whenever
// SAIFI is zero. Neither case is an error.
func CalculateIndices(durationHours float64, population models.AffectedPopulation, totalPopulation int) ReliabilityIndices {
	return indicesFrom(CustomerLostHours(durationHours, population), population.Total(), totalPopulation)
}

// ValidateRange is the opt-in check for callers that treat an end before the
// start as invalid input.
func ValidateRange(start, end time.Time) error {
	if end.Before(start) {
		return fmt.Errorf("%w: %s before %s", ErrNegativeDuration,
			end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return nil
}

// Round2 rounds half up to 2 decimal places.
func Round2(v float64) float64 {
	return roundTo(v, 100)
}

// Round3 rounds half up to 3 decimal places.
func Round3(v float64) float64 {
	return roundTo(v, 1000)
}

// The explicit conversion stops the compiler fusing the multiply-add.
func roundTo(v, scale float64) float64 {
	return math.Floor(float64(v*scale)+0.5) / scale
}

func indicesFrom(customerHours float64, affected, totalPopulation int) ReliabilityIndices {
	if totalPopulation == 0 {
		return ReliabilityIndices{}
	}

	served := float64(totalPopulation)
	idx := ReliabilityIndices{
		SAIDI: Round3(customerHours / served),
		SAIFI: Round3(float64(affected) / served),
	}
	if idx.SAIFI != 0 {
		idx.CAIDI = Round3(idx.SAIDI / idx.SAIFI)
	}
	return idx
}

func elapsedHours(start, end time.Time, endName string) (float64, error) {
	if start.IsZero() {
		return 0, fmt.Errorf("%w: occurrence is not set", ErrInvalidTimestamp)
	}
	if end.IsZero() {
		return 0, fmt.Errorf("%w: %s is not set", ErrInvalidTimestamp, endName)
	}
	ms := end.Sub(start).Milliseconds()
	return Round2(float64(ms) / millisPerHour), nil
}

func parsePair(start, end string) (time.Time, time.Time, error) {
	s, err := ParseTimestamp(start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("occurrence: %w", err)
	}
	e, err := ParseTimestamp(end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end: %w", err)
	}
	return s, e, nil
}
