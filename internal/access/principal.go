package access

import "fmt"

// Principal is the acting operator: a role plus the region and district it is
// scoped to. Region and District may hold an id, a code or a display name;
// a Directory resolves them to record ids.
type Principal struct {
	Subject  string `json:"subject,omitempty" toml:"subject"`
	Role     Role   `json:"role" toml:"role"`
	Region   string `json:"region,omitempty" toml:"region"`
	District string `json:"district,omitempty" toml:"district"`
}

// Validate checks that the principal carries the scope its role needs.
func (p Principal) Validate() error {
	if !p.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidPrincipal, p.Role)
	}
	switch {
	case p.Role.IsDistrictScoped():
		if p.Region == "" || p.District == "" {
			return fmt.Errorf("%w: %s requires region and district", ErrInvalidPrincipal, p.Role)
		}
	case p.Role == RoleRegionalEngineer:
		if p.Region == "" {
			return fmt.Errorf("%w: %s requires region", ErrInvalidPrincipal, p.Role)
		}
	}
	return nil
}

// ScopeLabel describes the principal's scope for display.
func (p Principal) ScopeLabel() string {
	switch {
	case p.Role.IsGlobal():
		return "all regions"
	case p.Role.IsDistrictScoped():
		return p.Region + " / " + p.District
	default:
		return p.Region
	}
}
