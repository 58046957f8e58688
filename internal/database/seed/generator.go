package seed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/gridline/faultdesk/internal/models"
	"github.com/gridline/faultdesk/internal/repository"
	"github.com/gridline/faultdesk/internal/services/assets"
	"github.com/gridline/faultdesk/internal/util"
)

// Config configures the seed data generator.
type Config struct {
	RandomSeed int64
	Faults     int
	Days       int
	End        time.Time
}

// DefaultConfig returns a default seed configuration ending now.
func DefaultConfig() Config {
	return Config{
		RandomSeed: 2024,
		Faults:     400,
		Days:       90,
		End:        time.Now().UTC().Truncate(time.Second),
	}
}

// Result counts what a Generate run inserted.
type Result struct {
	Regions   int
	Districts int
	Assets    int
	Faults    int
	Open      int
}

// Generator generates seed data for a utility network.
type Generator struct {
	db     *sql.DB
	cfg    Config
	rng    *rand.Rand
	seq    int64
	codes  *util.CodeGenerator
	region *repository.RegionRepository
	assets *repository.AssetRepository
	faults *repository.FaultRepository

	// Tracking
	districts  []models.District
	byDistrict map[string][]*models.Asset
	result     Result
}

// NewGenerator creates a new seed data generator. The same Config always
// produces the same data.
func NewGenerator(db *sql.DB, cfg Config) *Generator {
	if cfg.Days < 1 {
		cfg.Days = 90
	}
	if cfg.End.IsZero() {
		cfg.End = time.Now().UTC().Truncate(time.Second)
	}
	return &Generator{
		db:         db,
		cfg:        cfg,
		rng:        rand.New(rand.NewSource(cfg.RandomSeed)),
		codes:      util.NewCodeGenerator(),
		region:     repository.NewRegionRepository(db),
		assets:     repository.NewAssetRepository(db),
		faults:     repository.NewFaultRepository(db),
		byDistrict: make(map[string][]*models.Asset),
	}
}

func (g *Generator) nextID() string {
	g.seq++
	return util.DeterministicID(g.cfg.RandomSeed<<20 + g.seq)
}

// Generate creates all seed data in one transaction.
func (g *Generator) Generate(ctx context.Context) (Result, error) {
	slog.Info("starting seed data generation",
		"faults", g.cfg.Faults,
		"days", g.cfg.Days,
		"seed", g.cfg.RandomSeed,
	)

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := g.generateNetwork(ctx, tx); err != nil {
		return Result{}, fmt.Errorf("generating network: %w", err)
	}
	if err := g.generateAssets(ctx, tx); err != nil {
		return Result{}, fmt.Errorf("generating assets: %w", err)
	}
	if err := g.generateFaults(ctx, tx); err != nil {
		return Result{}, fmt.Errorf("generating faults: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("committing transaction: %w", err)
	}

	slog.Info("seed data generation complete",
		"regions", g.result.Regions,
		"districts", g.result.Districts,
		"assets", g.result.Assets,
		"faults", g.result.Faults,
		"open", g.result.Open,
	)
	return g.result, nil
}

func (g *Generator) generateNetwork(ctx context.Context, tx *sql.Tx) error {
	for _, rs := range Catalogue {
		r := &models.Region{ID: g.nextID(), Code: rs.Code, Name: rs.Name}
		if err := g.region.CreateRegion(ctx, tx, r); err != nil {
			return err
		}
		g.result.Regions++

		for i, ds := range rs.Districts {
			d := models.District{
				ID:              g.nextID(),
				RegionID:        r.ID,
				Code:            fmt.Sprintf("%s-%02d", rs.Code, i+1),
				Name:            ds.Name,
				CustomersServed: ds.Customers,
			}
			if err := g.region.CreateDistrict(ctx, tx, &d); err != nil {
				return err
			}
			g.districts = append(g.districts, d)
			g.result.Districts++
		}
	}
	slog.Debug("network generated", "regions", g.result.Regions, "districts", g.result.Districts)
	return nil
}

func (g *Generator) generateAssets(ctx context.Context, tx *sql.Tx) error {
	for _, d := range g.districts {
		for _, spec := range AssetSpecs {
			for i := 0; i < spec.PerDistrict; i++ {
				a := &models.Asset{
					ID:          g.nextID(),
					AssetCode:   g.codes.Next(assets.TypeCode(spec.Type), d.Code),
					Name:        fmt.Sprintf("%s %s", d.Name, spec.Names[g.rng.Intn(len(spec.Names))]),
					Type:        spec.Type,
					RegionID:    d.RegionID,
					DistrictID:  d.ID,
					Status:      models.AssetStatusInService,
					InstallDate: util.StartOfDay(g.cfg.End.AddDate(-1-g.rng.Intn(30), -g.rng.Intn(12), 0)),
				}
				if spec.Capacity > 0 {
					c := spec.Capacity
					a.CapacityKVA = &c
				}
				if g.rng.Intn(10) < 7 {
					last := util.StartOfDay(g.cfg.End.AddDate(0, 0, -g.rng.Intn(365)))
					a.LastInspection = &last
				}
				if g.rng.Intn(20) == 0 {
					a.Status = models.AssetStatusUnderRepair
				}

				if err := g.assets.Create(ctx, tx, a); err != nil {
					return fmt.Errorf("inserting asset %s: %w", a.AssetCode, err)
				}
				g.byDistrict[d.ID] = append(g.byDistrict[d.ID], a)
				g.result.Assets++
			}
		}
	}
	slog.Debug("assets generated", "count", g.result.Assets)
	return nil
}

func (g *Generator) generateFaults(ctx context.Context, tx *sql.Tx) error {
	start := g.cfg.End.AddDate(0, 0, -g.cfg.Days)
	span := g.cfg.End.Sub(start)

	for i := 0; i < g.cfg.Faults; i++ {
		d := g.districts[g.rng.Intn(len(g.districts))]
		ft := g.randomFaultType()
		causes := FaultCauses[ft]

		occurred := start.Add(time.Duration(g.rng.Int63n(int64(span)))).Truncate(time.Second)
		f := &models.FaultRecord{
			ID:                 g.nextID(),
			RegionID:           d.RegionID,
			DistrictID:         d.ID,
			FaultType:          ft,
			Status:             models.FaultStatusPending,
			Description:        causes[g.rng.Intn(len(causes))],
			OccurrenceDate:     occurred,
			AffectedPopulation: g.randomAffected(d),
			ReportedBy:         Reporters[g.rng.Intn(len(Reporters))],
		}

		pool := g.byDistrict[d.ID]
		if len(pool) > 0 && (ft == models.FaultTypeUnplanned || ft == models.FaultTypeEmergency) && g.rng.Intn(10) < 6 {
			id := pool[g.rng.Intn(len(pool))].ID
			f.AssetID = &id
		}

		restored := occurred.Add(g.randomDuration(ft))
		recent := g.cfg.End.Sub(occurred) < 48*time.Hour
		switch {
		case restored.After(g.cfg.End), recent && g.rng.Intn(10) < 4:
			if g.rng.Intn(2) == 0 {
				f.Status = models.FaultStatusInProgress
			}
			g.result.Open++
		default:
			f.RestorationDate = &restored
			repaired := restored
			if ft != models.FaultTypePlanned && ft != models.FaultTypeLoadShedding {
				repaired = restored.Add(time.Duration(g.rng.Intn(72*60)) * time.Minute)
			}
			if !repaired.After(g.cfg.End) {
				f.RepairDate = &repaired
			}
		}
		f.Status = f.DeriveStatus()

		if err := g.faults.Create(ctx, tx, f); err != nil {
			return fmt.Errorf("inserting fault %d: %w", i, err)
		}
		g.result.Faults++
	}
	slog.Debug("faults generated", "count", g.result.Faults, "open", g.result.Open)
	return nil
}

func (g *Generator) randomFaultType() models.FaultType {
	total := 0
	for _, w := range FaultTypeWeights {
		total += w.Weight
	}

	r := g.rng.Intn(total)
	cumulative := 0
	for _, w := range FaultTypeWeights {
		cumulative += w.Weight
		if r < cumulative {
			return w.Type
		}
	}
	return models.FaultTypeUnplanned
}

// randomDuration returns a restoration time typical of the fault type.
func (g *Generator) randomDuration(ft models.FaultType) time.Duration {
	minutes := func(lo, hi int) time.Duration {
		return time.Duration(lo+g.rng.Intn(hi-lo+1)) * time.Minute
	}
	switch ft {
	case models.FaultTypePlanned:
		return minutes(120, 360)
	case models.FaultTypeEmergency:
		return minutes(240, 1440)
	case models.FaultTypeLoadShedding:
		return minutes(120, 240)
	case models.FaultTypeGridCo:
		return minutes(30, 180)
	default:
		return minutes(30, 480)
	}
}

// randomAffected interrupts between 1% and 15% of a district's customers,
// split across the customer classes.
func (g *Generator) randomAffected(d models.District) models.AffectedPopulation {
	n := d.CustomersServed * (1 + g.rng.Intn(15)) / 100
	rural := n * g.rng.Intn(60) / 100
	metro := (n - rural) * g.rng.Intn(40) / 100
	return models.AffectedPopulation{
		Rural: rural,
		Urban: n - rural - metro,
		Metro: metro,
	}
}
