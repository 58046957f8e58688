// Package outages records fault events and reports reliability for the
// operator's scope. Every operation is checked against the access policy.
package outages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gridline/faultdesk/internal/access"
	"github.com/gridline/faultdesk/internal/metrics"
	"github.com/gridline/faultdesk/internal/models"
	"github.com/gridline/faultdesk/internal/repository"
	"github.com/gridline/faultdesk/internal/util"
)

var (
	// ErrAlreadyRestored is returned when restoring a fault twice.
	ErrAlreadyRestored = errors.New("fault already restored")

	// ErrAlreadyRepaired is returned when completing a repair twice.
	ErrAlreadyRepaired = errors.New("fault already repaired")

	// ErrInvalidLocation is returned when a region or district is unknown or
	// the district is not in the region.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidAsset is returned when a fault names an asset outside its
	// district.
	ErrInvalidAsset = errors.New("invalid asset")
)

// DeleteRole is the lowest role that may delete a fault record.
const DeleteRole = access.RoleDistrictEngineer

// Options tunes a Service. Zero values select the defaults.
type Options struct {
	Engine           metrics.Engine
	Clock            util.Clock
	Logger           *slog.Logger
	ReportWindowDays int
}

// Service provides fault data entry, scoped listing and reliability reports.
type Service struct {
	faults *repository.FaultRepository
	assets *repository.AssetRepository
	ref    *models.ReferenceData
	policy *access.Policy
	engine metrics.Engine
	clock  util.Clock
	logger *slog.Logger
	ids    *util.IDGenerator
	window int
}

// NewService creates an outages service over db. ref is the reference data
// the policy's directory was built from.
func NewService(db *sql.DB, ref *models.ReferenceData, policy *access.Policy, opts Options) *Service {
	s := &Service{
		faults: repository.NewFaultRepository(db),
		assets: repository.NewAssetRepository(db),
		ref:    ref,
		policy: policy,
		engine: opts.Engine,
		clock:  opts.Clock,
		logger: opts.Logger,
		ids:    util.NewIDGenerator(),
		window: opts.ReportWindowDays,
	}
	if s.clock == nil {
		s.clock = util.SystemClock{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.window < 1 {
		s.window = 30
	}
	return s
}

// Engine returns the metrics engine used for derived values.
func (s *Service) Engine() metrics.Engine {
	return s.engine
}

// Location is the region and district a new fault is entered against. Both
// accept an id, code or name.
type Location struct {
	Region   string
	District string
}

// RecordFaultInput contains data for recording a fault.
type RecordFaultInput struct {
	Location           Location
	AssetID            string
	FaultType          models.FaultType
	Description        string
	OccurrenceDate     time.Time
	RestorationDate    *time.Time
	AffectedPopulation models.AffectedPopulation
}

// resolveLocation maps loc to ids and checks the district is in the region.
// An empty region is taken from the district.
func (s *Service) resolveLocation(loc Location) (regionID, districtID string, err error) {
	dir := s.policy.Directory()
	districtID, ok := dir.ResolveDistrict(loc.District)
	if !ok {
		return "", "", fmt.Errorf("%w: unknown district %q", ErrInvalidLocation, loc.District)
	}
	if loc.Region == "" {
		if regionID, ok = dir.RegionOf(districtID); ok {
			return regionID, districtID, nil
		}
	}
	regionID, ok = dir.ResolveRegion(loc.Region)
	if !ok {
		return "", "", fmt.Errorf("%w: unknown region %q", ErrInvalidLocation, loc.Region)
	}
	if parent, known := dir.RegionOf(districtID); known && parent != regionID {
		return "", "", fmt.Errorf("%w: district %q is not in region %q", ErrInvalidLocation, loc.District, loc.Region)
	}
	return regionID, districtID, nil
}

// guard authorizes p for f and additionally requires f to be in p's visible
// set, so a technician cannot reach records outside its district.
func (s *Service) guard(p *access.Principal, f *models.FaultRecord, required access.Role) error {
	res := access.RecordResource(f)
	res.RequiredRole = required
	if err := s.policy.Authorize(p, res); err != nil {
		return err
	}
	if !s.policy.VisibleRecords(*p)(f) {
		return &access.DeniedError{
			Principal: *p,
			Resource:  res,
			Decision:  access.Decision{Reason: scopeReason(p.Role)},
		}
	}
	return nil
}

// scopeReason names the scope check a hidden record failed for role.
func scopeReason(role access.Role) access.Reason {
	if role.IsDistrictScoped() {
		return access.ReasonDistrictMismatch
	}
	return access.ReasonRegionMismatch
}

// RecordFault validates and stores a new fault on behalf of p. The status is
// derived from the dates given.
func (s *Service) RecordFault(ctx context.Context, p *access.Principal, in RecordFaultInput) (*models.FaultRecord, error) {
	regionID, districtID, err := s.resolveLocation(in.Location)
	if err != nil {
		return nil, err
	}

	f := &models.FaultRecord{
		ID:                 s.ids.NewID(),
		RegionID:           regionID,
		DistrictID:         districtID,
		FaultType:          in.FaultType,
		Status:             models.FaultStatusPending,
		Description:        in.Description,
		OccurrenceDate:     in.OccurrenceDate.UTC().Truncate(time.Second),
		AffectedPopulation: in.AffectedPopulation,
	}
	if p != nil {
		f.ReportedBy = p.Subject
	}
	if in.RestorationDate != nil {
		t := in.RestorationDate.UTC().Truncate(time.Second)
		f.RestorationDate = &t
	}

	if err := s.guard(p, f, ""); err != nil {
		return nil, err
	}

	if in.AssetID != "" {
		asset, err := s.assets.GetByID(ctx, in.AssetID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAsset, err)
		}
		if asset.DistrictID != districtID {
			return nil, fmt.Errorf("%w: asset %s is not in district %s", ErrInvalidAsset, asset.AssetCode, districtID)
		}
		f.AssetID = &asset.ID
	}

	f.Status = f.DeriveStatus()
	if err := s.faults.Create(ctx, nil, f); err != nil {
		return nil, fmt.Errorf("recording fault: %w", err)
	}

	s.logger.Info("fault recorded",
		"id", f.ID,
		"district", districtID,
		"type", f.FaultType,
		"affected", f.AffectedPopulation.Total(),
		"by", f.ReportedBy,
	)
	return f, nil
}

// GetFault returns a fault p may see.
func (s *Service) GetFault(ctx context.Context, p *access.Principal, id string) (*models.FaultRecord, error) {
	f, err := s.faults.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard(p, f, ""); err != nil {
		return nil, err
	}
	return f, nil
}

// StartWork moves a pending fault to IN_PROGRESS.
func (s *Service) StartWork(ctx context.Context, p *access.Principal, id string) (*models.FaultRecord, error) {
	return s.update(ctx, p, id, "", func(f *models.FaultRecord) error {
		if f.Status != models.FaultStatusPending {
			return fmt.Errorf("fault is %s, not PENDING", f.Status)
		}
		f.Status = models.FaultStatusInProgress
		return nil
	})
}

// RestoreFault records supply restoration at at, or now when at is zero.
func (s *Service) RestoreFault(ctx context.Context, p *access.Principal, id string, at time.Time) (*models.FaultRecord, error) {
	at = s.instant(at)
	return s.update(ctx, p, id, "", func(f *models.FaultRecord) error {
		if f.RestorationDate != nil {
			return ErrAlreadyRestored
		}
		if err := metrics.ValidateRange(f.OccurrenceDate, at); err != nil {
			return fmt.Errorf("restoration: %w", err)
		}
		f.RestorationDate = &at
		return nil
	})
}

// CompleteRepair records the repair at at, or now when at is zero. A fault
// not yet restored is restored at the same instant.
func (s *Service) CompleteRepair(ctx context.Context, p *access.Principal, id string, at time.Time) (*models.FaultRecord, error) {
	at = s.instant(at)
	return s.update(ctx, p, id, "", func(f *models.FaultRecord) error {
		if f.RepairDate != nil {
			return ErrAlreadyRepaired
		}
		if err := metrics.ValidateRange(f.OccurrenceDate, at); err != nil {
			return fmt.Errorf("repair: %w", err)
		}
		if f.RestorationDate == nil {
			f.RestorationDate = &at
		}
		f.RepairDate = &at
		return nil
	})
}

// DeleteFault removes a fault. It needs DeleteRole or above.
func (s *Service) DeleteFault(ctx context.Context, p *access.Principal, id string) error {
	f, err := s.faults.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.guard(p, f, DeleteRole); err != nil {
		return err
	}
	if err := s.faults.Delete(ctx, nil, id); err != nil {
		return err
	}
	s.logger.Info("fault deleted", "id", id, "by", p.Subject)
	return nil
}

func (s *Service) instant(at time.Time) time.Time {
	if at.IsZero() {
		at = s.clock.Now()
	}
	return at.UTC().Truncate(time.Second)
}

func (s *Service) update(ctx context.Context, p *access.Principal, id string, required access.Role, change func(*models.FaultRecord) error) (*models.FaultRecord, error) {
	f, err := s.faults.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard(p, f, required); err != nil {
		return nil, err
	}
	if err := change(f); err != nil {
		return nil, fmt.Errorf("fault %s: %w", id, err)
	}
	f.Status = f.DeriveStatus()
	if err := s.faults.Update(ctx, nil, f); err != nil {
		return nil, err
	}
	s.logger.Info("fault updated", "id", f.ID, "status", f.Status, "by", p.Subject)
	return f, nil
}

// narrow intersects filter with p's visible scope. ok is false when nothing
// can match.
func (s *Service) narrow(p access.Principal, filter models.FaultFilter) (models.FaultFilter, bool) {
	dir := s.policy.Directory()
	regionID, districtID, ok := access.ScopeQuery(p, dir)
	if !ok {
		return filter, false
	}
	if filter.RegionID != "" {
		id, found := dir.ResolveRegion(filter.RegionID)
		if !found {
			return filter, false
		}
		filter.RegionID = id
	}
	if filter.DistrictID != "" {
		id, found := dir.ResolveDistrict(filter.DistrictID)
		if !found {
			return filter, false
		}
		filter.DistrictID = id
	}

	if regionID != "" {
		if filter.RegionID != "" && filter.RegionID != regionID {
			return filter, false
		}
		filter.RegionID = regionID
	}
	if districtID != "" {
		if filter.DistrictID != "" && filter.DistrictID != districtID {
			return filter, false
		}
		filter.DistrictID = districtID
	}
	return filter, true
}

// ListVisible returns the page of faults matching filter that p may see.
func (s *Service) ListVisible(ctx context.Context, p *access.Principal, filter models.FaultFilter, page models.Pagination) (*models.FaultList, error) {
	if p == nil {
		return nil, access.ErrUnauthenticated
	}
	narrowed, ok := s.narrow(*p, filter)
	if !ok {
		return &models.FaultList{Page: page.Page, TotalPages: 1}, nil
	}

	list, err := s.faults.List(ctx, narrowed, page)
	if err != nil {
		return nil, err
	}
	// Same rule as the SQL scope, applied in memory.
	list.Faults = access.FilterRecords(list.Faults, s.policy.VisibleRecords(*p))
	return list, nil
}

// Derive returns the metrics for a single record.
func (s *Service) Derive(f *models.FaultRecord) (metrics.Derived, error) {
	return s.engine.FaultMetrics(f)
}
