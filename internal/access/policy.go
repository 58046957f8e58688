package access

import (
	"context"
	"log/slog"

	"github.com/gridline/faultdesk/internal/models"
)

// Scope names the functional area a resource belongs to.
type Scope string

const (
	ScopeGeneral         Scope = ""
	ScopeFaults          Scope = "faults"
	ScopeAssetManagement Scope = "asset_management"
	ScopeReports         Scope = "reports"
)

// Resource describes what is being reached. Empty fields impose no
// constraint.
type Resource struct {
	RequiredRole Role   `json:"required_role,omitempty"`
	Region       string `json:"region,omitempty"`
	District     string `json:"district,omitempty"`
	Scope        Scope  `json:"scope,omitempty"`
}

// RecordResource describes a stored fault record.
func RecordResource(f *models.FaultRecord) Resource {
	return Resource{Region: f.RegionID, District: f.DistrictID, Scope: ScopeFaults}
}

// AssetResource describes a stored asset behind the given role requirement.
func AssetResource(a *models.Asset, required Role) Resource {
	return Resource{
		RequiredRole: required,
		Region:       a.RegionID,
		District:     a.DistrictID,
		Scope:        ScopeAssetManagement,
	}
}

// Reason explains a Decision.
type Reason string

const (
	ReasonAllowed          Reason = "allowed"
	ReasonInsufficientRole Reason = "insufficient_role"
	ReasonRegionMismatch   Reason = "region_mismatch"
	ReasonDistrictMismatch Reason = "district_mismatch"
)

// Decision is the outcome of CanAccessResource. Exception names the role
// exception that waived the role check, if any.
type Decision struct {
	Allowed   bool   `json:"allowed"`
	Reason    Reason `json:"reason"`
	Exception string `json:"exception,omitempty"`
}

// RoleException lets a role reach every resource in a scope whatever role
// the resource declares. It waives the role check only; region and district
// checks still apply.
type RoleException struct {
	Name  string
	Role  Role
	Scope Scope
}

// roleExceptions is the complete list of role check waivers.
var roleExceptions = []RoleException{
	// Field crews maintain the asset register for their own district.
	{Name: "technician_asset_management", Role: RoleTechnician, Scope: ScopeAssetManagement},
}

// RoleExceptions returns a copy of the role exception table.
func RoleExceptions() []RoleException {
	out := make([]RoleException, len(roleExceptions))
	copy(out, roleExceptions)
	return out
}

func findException(role Role, scope Scope) (RoleException, bool) {
	for _, ex := range roleExceptions {
		if ex.Role == role && ex.Scope == scope {
			return ex, true
		}
	}
	return RoleException{}, false
}

// CanAccessResource decides whether p may reach r, comparing region and
// district values literally. Checks run in order: role, region, district.
// The first that fails decides the outcome.
func CanAccessResource(p Principal, r Resource) Decision {
	return evaluate(nil, p, r)
}

func evaluate(dir *Directory, p Principal, r Resource) Decision {
	var d Decision

	if r.RequiredRole != "" && !HasRequiredRole(p.Role, r.RequiredRole) {
		ex, ok := findException(p.Role, r.Scope)
		if !ok {
			return Decision{Reason: ReasonInsufficientRole}
		}
		d.Exception = ex.Name
	}

	// Global roles carry no region constraint.
	if r.Region != "" && !p.Role.IsGlobal() && !dir.sameRegion(p.Region, r.Region) {
		return Decision{Reason: ReasonRegionMismatch}
	}

	if r.District != "" && p.Role == RoleDistrictEngineer && !dir.sameDistrict(p.District, r.District) {
		return Decision{Reason: ReasonDistrictMismatch}
	}

	d.Allowed = true
	d.Reason = ReasonAllowed
	return d
}

// Authorize is the request guard contract: a nil principal is
// ErrUnauthenticated, a denial is a *DeniedError.
func Authorize(p *Principal, r Resource) error {
	return authorize(nil, p, r)
}

func authorize(dir *Directory, p *Principal, r Resource) error {
	if p == nil {
		return ErrUnauthenticated
	}
	d := evaluate(dir, *p, r)
	if !d.Allowed {
		return &DeniedError{Principal: *p, Resource: r, Decision: d}
	}
	return nil
}

// Policy evaluates decisions against a Directory, so a principal scoped by
// region name matches records stored by region id, and logs each decision.
type Policy struct {
	dir    *Directory
	logger *slog.Logger
}

// NewPolicy creates a policy. A nil dir compares scope values literally.
func NewPolicy(dir *Directory, logger *slog.Logger) *Policy {
	if logger == nil {
		logger = slog.Default()
	}
	return &Policy{dir: dir, logger: logger}
}

// Directory returns the directory the policy resolves scopes with.
func (p *Policy) Directory() *Directory {
	return p.dir
}

// CanAccess decides whether pr may reach r.
func (p *Policy) CanAccess(pr Principal, r Resource) Decision {
	d := evaluate(p.dir, pr, r)
	p.log(pr, r, d)
	return d
}

// Authorize applies the request guard contract with directory resolution.
func (p *Policy) Authorize(pr *Principal, r Resource) error {
	if pr == nil {
		p.logger.Info("authorization decision", "decision", false, "reason", "unauthenticated", "scope", r.Scope)
		return ErrUnauthenticated
	}
	d := evaluate(p.dir, *pr, r)
	p.log(*pr, r, d)
	if !d.Allowed {
		return &DeniedError{Principal: *pr, Resource: r, Decision: d}
	}
	return nil
}

// VisibleRecords returns the record predicate for pr.
func (p *Policy) VisibleRecords(pr Principal) func(*models.FaultRecord) bool {
	return VisibleRecordsFilter(pr, p.dir)
}

func (p *Policy) log(pr Principal, r Resource, d Decision) {
	level := slog.LevelDebug
	if !d.Allowed {
		level = slog.LevelInfo
	}
	p.logger.Log(context.Background(), level, "authorization decision",
		"subject", pr.Subject,
		"role", pr.Role,
		"scope", r.Scope,
		"region", r.Region,
		"district", r.District,
		"required_role", r.RequiredRole,
		"decision", d.Allowed,
		"reason", d.Reason,
		"exception", d.Exception,
	)
}
