package metrics

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/gridline/faultdesk/internal/models"
)

const epsilon = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

var base = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func TestOutageDuration(t *testing.T) {
	tests := []struct {
		name string
		end  time.Time
		want float64
	}{
		{"zero length", base, 0},
		{"ninety minutes", base.Add(90 * time.Minute), 1.5},
		{"twenty minutes rounds", base.Add(20 * time.Minute), 0.33},
		{"half hundredth rounds up", base.Add(18 * time.Second), 0.01},
		{"multi day", base.Add(50 * time.Hour), 50},
		{"negative passes through", base.Add(-2 * time.Hour), -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OutageDuration(base, tt.end)
			if err != nil {
				t.Fatalf("OutageDuration() error = %v", err)
			}
			if !approx(got, tt.want) {
				t.Errorf("OutageDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOutageDuration_NonNegativeForOrderedPairs(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		ms := rng.Int63n(30 * 24 * millisPerHour)
		end := base.Add(time.Duration(ms) * time.Millisecond)

		got, err := OutageDuration(base, end)
		if err != nil {
			t.Fatalf("OutageDuration() error = %v", err)
		}
		if got < 0 {
			t.Fatalf("OutageDuration(+%dms) = %v, want non-negative", ms, got)
		}
		if want := Round2(float64(ms) / millisPerHour); got != want {
			t.Fatalf("OutageDuration(+%dms) = %v, want %v", ms, got, want)
		}
	}
}

func TestOutageDurationISO(t *testing.T) {
	got, err := OutageDurationISO("2026-03-01T08:00:00Z", "2026-03-01T10:30:00Z")
	if err != nil {
		t.Fatalf("OutageDurationISO() error = %v", err)
	}
	if !approx(got, 2.5) {
		t.Errorf("OutageDurationISO() = %v, want 2.5", got)
	}

	got, err = OutageDurationISO("2026-03-01T08:00:00+02:00", "2026-03-01T08:00:00Z")
	if err != nil {
		t.Fatalf("OutageDurationISO() offset error = %v", err)
	}
	if !approx(got, 2) {
		t.Errorf("OutageDurationISO() with offset = %v, want 2", got)
	}

	got, err = OutageDurationISO("2026-03-01 08:00", "2026-03-02")
	if err != nil {
		t.Fatalf("OutageDurationISO() short layouts error = %v", err)
	}
	if !approx(got, 16) {
		t.Errorf("OutageDurationISO() short layouts = %v, want 16", got)
	}
}

func TestInvalidTimestamp(t *testing.T) {
	tests := []struct {
		name       string
		occurrence string
		end        string
	}{
		{"empty occurrence", "", "2026-03-01T10:00:00Z"},
		{"empty end", "2026-03-01T10:00:00Z", "  "},
		{"garbage", "yesterday", "2026-03-01T10:00:00Z"},
		{"bad month", "2026-13-01T10:00:00Z", "2026-03-01T10:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := OutageDurationISO(tt.occurrence, tt.end); !errors.Is(err, ErrInvalidTimestamp) {
				t.Errorf("OutageDurationISO() error = %v, want ErrInvalidTimestamp", err)
			}
			if _, err := RepairTimeISO(tt.occurrence, tt.end); !errors.Is(err, ErrInvalidTimestamp) {
				t.Errorf("RepairTimeISO() error = %v, want ErrInvalidTimestamp", err)
			}
		})
	}

	if _, err := OutageDuration(time.Time{}, base); !errors.Is(err, ErrInvalidTimestamp) {
		t.Errorf("OutageDuration(zero) error = %v, want ErrInvalidTimestamp", err)
	}
	if _, err := RepairTime(base, time.Time{}); !errors.Is(err, ErrInvalidTimestamp) {
		t.Errorf("RepairTime(zero) error = %v, want ErrInvalidTimestamp", err)
	}
}

func TestRepairTime(t *testing.T) {
	got, err := RepairTime(base, base.Add(6*time.Hour+15*time.Minute))
	if err != nil {
		t.Fatalf("RepairTime() error = %v", err)
	}
	if !approx(got, 6.25) {
		t.Errorf("RepairTime() = %v, want 6.25", got)
	}

	got, err = RepairTimeISO("2026-03-01T08:00:00Z", "2026-03-01T07:00:00Z")
	if err != nil {
		t.Fatalf("RepairTimeISO() error = %v", err)
	}
	if !approx(got, -1) {
		t.Errorf("RepairTimeISO() = %v, want -1", got)
	}
}

func TestCustomerLostHours(t *testing.T) {
	for _, d := range []float64{0, 1.5, 10, 123.45, -3} {
		if got := CustomerLostHours(d, models.AffectedPopulation{}); got != 0 {
			t.Errorf("CustomerLostHours(%v, {0,0,0}) = %v, want 0", d, got)
		}
	}

	pop := models.AffectedPopulation{Rural: 1, Urban: 2, Metro: 0}
	if got := CustomerLostHours(0.333, pop); !approx(got, 1.0) {
		t.Errorf("CustomerLostHours(0.333, 3) = %v, want 1.0", got)
	}
}

func TestCalculateIndices_ReferenceExample(t *testing.T) {
	pop := models.AffectedPopulation{Rural: 100, Urban: 200, Metro: 50}

	clh := CustomerLostHours(10, pop)
	if !approx(clh, 3500) {
		t.Errorf("CustomerLostHours() = %v, want 3500.00", clh)
	}

	got := CalculateIndices(10, pop, 10000)
	if !approx(got.SAIDI, 0.35) {
		t.Errorf("SAIDI = %v, want 0.35", got.SAIDI)
	}
	if !approx(got.SAIFI, 0.035) {
		t.Errorf("SAIFI = %v, want 0.035", got.SAIFI)
	}
	if !approx(got.CAIDI, 10.0) {
		t.Errorf("CAIDI = %v, want 10.0", got.CAIDI)
	}
}

func TestCalculateIndices_ZeroTotalPopulation(t *testing.T) {
	pops := []models.AffectedPopulation{
		{},
		{Rural: 5},
		{Rural: 100, Urban: 200, Metro: 50},
	}
	for _, d := range []float64{0, 2.5, 10, 1000} {
		for _, pop := range pops {
			if got := CalculateIndices(d, pop, 0); got != (ReliabilityIndices{}) {
				t.Errorf("CalculateIndices(%v, %+v, 0) = %+v, want zeros", d, pop, got)
			}
		}
	}
}

func TestCalculateIndices_CAIDIZeroWhenSAIFIZero(t *testing.T) {
	// One affected customer out of a million rounds SAIFI to zero while the
	// long duration keeps SAIDI above zero.
	got := CalculateIndices(5000, models.AffectedPopulation{Metro: 1}, 1_000_000)
	if got.SAIFI != 0 {
		t.Fatalf("SAIFI = %v, want 0", got.SAIFI)
	}
	if got.SAIDI == 0 {
		t.Fatalf("SAIDI = 0, want non-zero")
	}
	if got.CAIDI != 0 {
		t.Errorf("CAIDI = %v, want 0 when SAIFI is 0", got.CAIDI)
	}
}

func TestCalculateIndices_NonNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 300; i++ {
		pop := models.AffectedPopulation{
			Rural: rng.Intn(500),
			Urban: rng.Intn(500),
			Metro: rng.Intn(500),
		}
		d := Round2(rng.Float64() * 48)
		got := CalculateIndices(d, pop, 1+rng.Intn(50000))
		if got.SAIDI < 0 || got.SAIFI < 0 || got.CAIDI < 0 {
			t.Fatalf("CalculateIndices(%v, %+v) = %+v, want non-negative", d, pop, got)
		}
	}
}

func TestRounding(t *testing.T) {
	tests := []struct {
		in     float64
		round2 float64
		round3 float64
	}{
		{1.125, 1.13, 1.125},
		{2.675, 2.68, 2.675},
		{0.0004, 0, 0},
		{0.0005, 0, 0.001},
		{-1.5, -1.5, -1.5},
	}

	for _, tt := range tests {
		if got := Round2(tt.in); !approx(got, tt.round2) {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.round2)
		}
		if got := Round3(tt.in); !approx(got, tt.round3) {
			t.Errorf("Round3(%v) = %v, want %v", tt.in, got, tt.round3)
		}
	}
}

func TestValidateRange(t *testing.T) {
	if err := ValidateRange(base, base); err != nil {
		t.Errorf("ValidateRange(equal) error = %v", err)
	}
	if err := ValidateRange(base, base.Add(time.Minute)); err != nil {
		t.Errorf("ValidateRange(ordered) error = %v", err)
	}
	if err := ValidateRange(base, base.Add(-time.Minute)); !errors.Is(err, ErrNegativeDuration) {
		t.Errorf("ValidateRange(reversed) error = %v, want ErrNegativeDuration", err)
	}
}
