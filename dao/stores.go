package dao

import (
	"context"

	"github.com/qc-suite/gatekeeper/model"
)

// Stores bundles the DAO-backed lookups the resolution engine depends on.
// The engine sees only the narrow store interfaces; this adapter keeps the
// DAO surface (audit hooks, write paths) out of the hot resolution path.
type Stores struct {
	Users       *UserDAO
	Departments *DepartmentDAO
	Positions   *PositionDAO
	Roles       *RoleDAO
	Grants      *GrantDAO
}

func NewStores(users *UserDAO, departments *DepartmentDAO, positions *PositionDAO, roles *RoleDAO, grants *GrantDAO) *Stores {
	return &Stores{
		Users:       users,
		Departments: departments,
		Positions:   positions,
		Roles:       roles,
		Grants:      grants,
	}
}

func (s *Stores) HomeUnit(ctx context.Context, userID string) (*model.HomeUnit, error) {
	return s.Users.GetHomeUnit(ctx, userID)
}

func (s *Stores) Department(ctx context.Context, deptID string) (*model.Department, error) {
	return s.Departments.GetDepartment(ctx, deptID)
}

func (s *Stores) Position(ctx context.Context, positionID string) (*model.Position, error) {
	return s.Positions.GetPosition(ctx, positionID)
}

func (s *Stores) Ancestry(ctx context.Context, deptID string) ([]*model.Department, error) {
	return s.Departments.GetAncestry(ctx, deptID)
}

func (s *Stores) RoleCodesForUser(ctx context.Context, userID string) ([]string, error) {
	return s.Roles.GetRoleCodesForUser(ctx, userID)
}

func (s *Stores) UnitGrants(ctx context.Context, kind model.OrgUnitKind, unitID string) ([]*model.OrgUnitGrant, error) {
	return s.Grants.UnitGrants(ctx, kind, unitID)
}
