package engine

import (
	"context"
	"fmt"

	gate_errors "github.com/qc-suite/gatekeeper/errors"
	"github.com/qc-suite/gatekeeper/model"
	resolver_model "github.com/qc-suite/gatekeeper/resolver/model"
)

// DirectoryStore supplies the organizational lookups resolution needs.
type DirectoryStore interface {
	HomeUnit(ctx context.Context, userID string) (*model.HomeUnit, error)
	Department(ctx context.Context, deptID string) (*model.Department, error)
	Position(ctx context.Context, positionID string) (*model.Position, error)
	// Ancestry returns the department chain ordered root to self, inclusive.
	Ancestry(ctx context.Context, deptID string) ([]*model.Department, error)
}

// RoleStore supplies the union of capability codes a user holds through roles.
type RoleStore interface {
	RoleCodesForUser(ctx context.Context, userID string) ([]string, error)
}

// GrantStore supplies direct org-unit grants.
type GrantStore interface {
	UnitGrants(ctx context.Context, kind model.OrgUnitKind, unitID string) ([]*model.OrgUnitGrant, error)
}

// GrantSource contributes capability codes for a principal. The resolver takes
// the union over all sources; new sources plug in without touching the
// union/max-tier logic.
type GrantSource interface {
	Name() string
	CodesFor(ctx context.Context, userID string, unit *model.HomeUnit) (map[string]bool, error)
}

// RoleGrantSource yields codes granted through the user's roles. It ignores
// the org binding entirely, so it still contributes for unbound users.
type RoleGrantSource struct {
	roles RoleStore
}

func NewRoleGrantSource(roles RoleStore) *RoleGrantSource {
	return &RoleGrantSource{roles: roles}
}

func (s *RoleGrantSource) Name() string { return "roles" }

func (s *RoleGrantSource) CodesFor(ctx context.Context, userID string, _ *model.HomeUnit) (map[string]bool, error) {
	codes, err := s.roles.RoleCodesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(codes))
	for _, code := range codes {
		set[code] = true
	}
	return set, nil
}

// OrgUnitGrantSource yields codes granted directly to the user's company,
// department and position, expanding inherited grants down the department
// ancestry. It also verifies the binding's referential consistency: a
// position whose department sits in another company is reported as a
// configuration fault, never repaired.
type OrgUnitGrantSource struct {
	directory DirectoryStore
	grants    GrantStore
}

func NewOrgUnitGrantSource(directory DirectoryStore, grants GrantStore) *OrgUnitGrantSource {
	return &OrgUnitGrantSource{directory: directory, grants: grants}
}

func (s *OrgUnitGrantSource) Name() string { return "org-units" }

func (s *OrgUnitGrantSource) CodesFor(ctx context.Context, userID string, unit *model.HomeUnit) (map[string]bool, error) {
	set := make(map[string]bool)
	if unit == nil {
		return set, nil
	}

	if err := s.checkIntegrity(ctx, unit); err != nil {
		return nil, err
	}

	companyGrants, err := s.grants.UnitGrants(ctx, model.UnitCompany, unit.CompanyID)
	if err != nil {
		return nil, err
	}
	for _, grant := range companyGrants {
		set[grant.Code] = true
	}

	positionGrants, err := s.grants.UnitGrants(ctx, model.UnitPosition, unit.PositionID)
	if err != nil {
		return nil, err
	}
	for _, grant := range positionGrants {
		set[grant.Code] = true
	}

	chain, err := s.directory.Ancestry(ctx, unit.DepartmentID)
	if err != nil {
		return nil, err
	}
	for _, dept := range chain {
		deptGrants, err := s.grants.UnitGrants(ctx, model.UnitDepartment, dept.ID)
		if err != nil {
			return nil, err
		}
		for _, grant := range deptGrants {
			// Grants on an ancestor only propagate down when marked inherited.
			if dept.ID == unit.DepartmentID || grant.Inherited {
				set[grant.Code] = true
			}
		}
	}

	return set, nil
}

func (s *OrgUnitGrantSource) checkIntegrity(ctx context.Context, unit *model.HomeUnit) error {
	position, err := s.directory.Position(ctx, unit.PositionID)
	if err != nil {
		return err
	}
	department, err := s.directory.Department(ctx, unit.DepartmentID)
	if err != nil {
		return err
	}
	if position.CompanyID != department.CompanyID || department.CompanyID != unit.CompanyID {
		return &resolver_model.ConfigFault{
			Kind: resolver_model.FaultCompanyMismatch,
			Detail: fmt.Sprintf("position %s (company %s) bound under department %s (company %s): %v",
				position.ID, position.CompanyID, department.ID, department.CompanyID, gate_errors.ErrCompanyMismatch),
		}
	}
	return nil
}
