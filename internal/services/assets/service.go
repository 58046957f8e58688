// Package assets maintains the grid asset register. Writes need ManageRole
// or the technician asset-management exception.
package assets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gridline/faultdesk/internal/access"
	"github.com/gridline/faultdesk/internal/models"
	"github.com/gridline/faultdesk/internal/repository"
	"github.com/gridline/faultdesk/internal/util"
)

// ManageRole is the lowest role that may change the asset register without
// a role exception.
const ManageRole = access.RoleDistrictEngineer

// ErrInvalidLocation is returned for an unknown district or a district
// outside the given region.
var ErrInvalidLocation = errors.New("invalid location")

var typeCodes = map[models.AssetType]string{
	models.AssetTypeSubstation:  "SS",
	models.AssetTypeTransformer: "TX",
	models.AssetTypeFeeder:      "FD",
	models.AssetTypeSwitchgear:  "SG",
	models.AssetTypePole:        "PL",
	models.AssetTypeMeter:       "MT",
}

// TypeCode returns the two-letter code prefix for an asset type.
func TypeCode(t models.AssetType) string {
	if c, ok := typeCodes[t]; ok {
		return c
	}
	return "AS"
}

// Service provides asset register operations.
type Service struct {
	assets *repository.AssetRepository
	faults *repository.FaultRepository
	ref    *models.ReferenceData
	policy *access.Policy
	clock  util.Clock
	logger *slog.Logger
	ids    *util.IDGenerator

	codesOnce sync.Once
	codesErr  error
	codes     *util.CodeGenerator

	inspectionDays int
}

// NewService creates an asset service. inspectionDays is the interval after
// which an asset counts as overdue for inspection.
func NewService(db *sql.DB, ref *models.ReferenceData, policy *access.Policy, clock util.Clock, logger *slog.Logger, inspectionDays int) *Service {
	if clock == nil {
		clock = util.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if inspectionDays < 1 {
		inspectionDays = 180
	}
	return &Service{
		assets:         repository.NewAssetRepository(db),
		faults:         repository.NewFaultRepository(db),
		ref:            ref,
		policy:         policy,
		clock:          clock,
		logger:         logger,
		ids:            util.NewIDGenerator(),
		codes:          util.NewCodeGenerator(),
		inspectionDays: inspectionDays,
	}
}

// loadCodes seeds the code generator from the codes already stored.
func (s *Service) loadCodes(ctx context.Context) error {
	s.codesOnce.Do(func() {
		codes, err := s.assets.Codes(ctx)
		if err != nil {
			s.codesErr = err
			return
		}
		for _, c := range codes {
			if prefix, seq, err := util.ParseCode(c); err == nil {
				s.codes.Seed(prefix, seq)
			}
		}
	})
	return s.codesErr
}

// guard authorizes p for a and, for district-scoped roles, requires a to be
// in p's own district.
func (s *Service) guard(p *access.Principal, a *models.Asset, required access.Role) error {
	res := access.AssetResource(a, required)
	if err := s.policy.Authorize(p, res); err != nil {
		return err
	}
	regionID, districtID, ok := access.ScopeQuery(*p, s.policy.Directory())
	if !ok || (regionID != "" && regionID != a.RegionID) || (districtID != "" && districtID != a.DistrictID) {
		return &access.DeniedError{
			Principal: *p,
			Resource:  res,
			Decision:  access.Decision{Reason: access.ReasonDistrictMismatch},
		}
	}
	return nil
}

// RegisterInput contains data for registering an asset. A zero InstallDate
// means today.
type RegisterInput struct {
	District    string
	Name        string
	Type        models.AssetType
	InstallDate time.Time
	CapacityKVA *float64
	Notes       string
}

// Register adds an asset to a district and issues its asset code.
func (s *Service) Register(ctx context.Context, p *access.Principal, in RegisterInput) (*models.Asset, error) {
	dir := s.policy.Directory()
	districtID, ok := dir.ResolveDistrict(in.District)
	if !ok {
		return nil, fmt.Errorf("%w: unknown district %q", ErrInvalidLocation, in.District)
	}
	district, ok := s.ref.District(districtID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown district %q", ErrInvalidLocation, in.District)
	}

	installed := in.InstallDate
	if installed.IsZero() {
		installed = s.clock.Now()
	}

	a := &models.Asset{
		ID:          s.ids.NewID(),
		Name:        in.Name,
		Type:        in.Type,
		RegionID:    district.RegionID,
		DistrictID:  district.ID,
		Status:      models.AssetStatusInService,
		InstallDate: util.StartOfDay(installed.UTC()),
		CapacityKVA: in.CapacityKVA,
		Notes:       in.Notes,
	}
	if err := s.guard(p, a, ManageRole); err != nil {
		return nil, err
	}

	if err := s.loadCodes(ctx); err != nil {
		return nil, fmt.Errorf("loading asset codes: %w", err)
	}
	a.AssetCode = s.codes.Next(TypeCode(in.Type), district.Code)

	if err := s.assets.Create(ctx, nil, a); err != nil {
		return nil, fmt.Errorf("registering asset: %w", err)
	}
	s.logger.Info("asset registered", "code", a.AssetCode, "district", a.DistrictID, "by", p.Subject)
	return a, nil
}

// Get returns an asset p may see.
func (s *Service) Get(ctx context.Context, p *access.Principal, id string) (*models.Asset, error) {
	a, err := s.assets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard(p, a, ""); err != nil {
		return nil, err
	}
	return a, nil
}

// List returns the page of assets matching filter inside p's scope.
func (s *Service) List(ctx context.Context, p *access.Principal, filter models.AssetFilter, page models.Pagination) (*models.AssetList, error) {
	if p == nil {
		return nil, access.ErrUnauthenticated
	}
	regionID, districtID, ok := access.ScopeQuery(*p, s.policy.Directory())
	empty := &models.AssetList{Page: page.Page, TotalPages: 1}
	if !ok {
		return empty, nil
	}
	if regionID != "" {
		if filter.RegionID != "" && filter.RegionID != regionID {
			return empty, nil
		}
		filter.RegionID = regionID
	}
	if districtID != "" {
		if filter.DistrictID != "" && filter.DistrictID != districtID {
			return empty, nil
		}
		filter.DistrictID = districtID
	}
	return s.assets.List(ctx, filter, page)
}

// SetStatus changes an asset's operational status.
func (s *Service) SetStatus(ctx context.Context, p *access.Principal, id string, status models.AssetStatus) (*models.Asset, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid status: %s", status)
	}
	return s.update(ctx, p, id, func(a *models.Asset) {
		a.Status = status
	})
}

// RecordInspection stamps the asset's last inspection date, today when at
// is zero.
func (s *Service) RecordInspection(ctx context.Context, p *access.Principal, id string, at time.Time) (*models.Asset, error) {
	if at.IsZero() {
		at = s.clock.Now()
	}
	day := util.StartOfDay(at.UTC())
	return s.update(ctx, p, id, func(a *models.Asset) {
		a.LastInspection = &day
	})
}

func (s *Service) update(ctx context.Context, p *access.Principal, id string, change func(*models.Asset)) (*models.Asset, error) {
	a, err := s.assets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard(p, a, ManageRole); err != nil {
		return nil, err
	}
	change(a)
	if err := s.assets.Update(ctx, nil, a); err != nil {
		return nil, err
	}
	s.logger.Info("asset updated", "code", a.AssetCode, "status", a.Status, "by", p.Subject)
	return a, nil
}

// Delete removes an asset. Faults that referenced it keep their record.
func (s *Service) Delete(ctx context.Context, p *access.Principal, id string) error {
	a, err := s.assets.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.guard(p, a, ManageRole); err != nil {
		return err
	}
	if err := s.assets.Delete(ctx, nil, id); err != nil {
		return err
	}
	s.logger.Info("asset deleted", "code", a.AssetCode, "by", p.Subject)
	return nil
}

// Overdue reports whether a is past its inspection interval now.
func (s *Service) Overdue(a *models.Asset) bool {
	return a.Status != models.AssetStatusDecommissioned && a.InspectionOverdue(s.clock.Now(), s.inspectionDays)
}

// OverdueInspections returns the assets in p's scope not inspected within
// the configured interval. Decommissioned assets are excluded.
func (s *Service) OverdueInspections(ctx context.Context, p *access.Principal) ([]*models.Asset, error) {
	list, err := s.List(ctx, p, models.AssetFilter{}, models.Pagination{Page: 1, PageSize: models.MaxPageSize})
	if err != nil {
		return nil, err
	}
	var out []*models.Asset
	for page := list; ; {
		for _, a := range page.Assets {
			if s.Overdue(a) {
				out = append(out, a)
			}
		}
		if page.Page >= page.TotalPages {
			break
		}
		page, err = s.List(ctx, p, models.AssetFilter{}, models.Pagination{Page: page.Page + 1, PageSize: models.MaxPageSize})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FaultHistory returns the faults recorded against an asset p may see,
// oldest first.
func (s *Service) FaultHistory(ctx context.Context, p *access.Principal, id string) ([]*models.FaultRecord, error) {
	if _, err := s.Get(ctx, p, id); err != nil {
		return nil, err
	}
	records, err := s.faults.ListAll(ctx, models.FaultFilter{AssetID: id})
	if err != nil {
		return nil, err
	}
	return access.FilterRecords(records, s.policy.VisibleRecords(*p)), nil
}
