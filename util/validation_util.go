// api/util/validation_util.go

package util

import (
	"fmt"

	"github.com/qc-suite/gatekeeper/model"
	"github.com/qc-suite/gatekeeper/registry"
)

type ValidationUtil struct {
	Registry *registry.ModuleRegistry
}

func NewValidationUtil(reg *registry.ModuleRegistry) *ValidationUtil {
	return &ValidationUtil{Registry: reg}
}

func (v *ValidationUtil) ValidateCompany(company model.Company) error {
	if company.Code == "" {
		return fmt.Errorf("company code cannot be empty")
	}
	if company.Name == "" {
		return fmt.Errorf("company name cannot be empty")
	}
	return nil
}

func (v *ValidationUtil) ValidateDepartment(department model.Department) error {
	if department.Code == "" {
		return fmt.Errorf("department code cannot be empty")
	}
	if department.Name == "" {
		return fmt.Errorf("department name cannot be empty")
	}
	if department.CompanyID == "" {
		return fmt.Errorf("department company ID cannot be empty")
	}
	return nil
}

func (v *ValidationUtil) ValidatePosition(position model.Position) error {
	if position.Code == "" {
		return fmt.Errorf("position code cannot be empty")
	}
	if position.Name == "" {
		return fmt.Errorf("position name cannot be empty")
	}
	if position.CompanyID == "" {
		return fmt.Errorf("position company ID cannot be empty")
	}
	if position.DepartmentID == "" {
		return fmt.Errorf("position department ID cannot be empty")
	}
	return nil
}

func (v *ValidationUtil) ValidateUser(user model.UserIdentity) error {
	if user.Username == "" {
		return fmt.Errorf("user username cannot be empty")
	}
	if user.Name == "" {
		return fmt.Errorf("user name cannot be empty")
	}
	return nil
}

func (v *ValidationUtil) ValidateBinding(binding model.HomeUnit) error {
	if binding.CompanyID == "" {
		return fmt.Errorf("binding company ID cannot be empty")
	}
	if binding.DepartmentID == "" {
		return fmt.Errorf("binding department ID cannot be empty")
	}
	if binding.PositionID == "" {
		return fmt.Errorf("binding position ID cannot be empty")
	}
	return nil
}

func (v *ValidationUtil) ValidateRole(role model.Role) error {
	if role.Name == "" {
		return fmt.Errorf("role name cannot be empty")
	}
	return nil
}

// ValidatePermission checks the capability code against the module registry so
// a typo becomes an admin-facing error instead of a silent resolution miss.
func (v *ValidationUtil) ValidatePermission(permission model.Permission) error {
	if permission.Code == "" {
		return fmt.Errorf("permission code cannot be empty")
	}
	if permission.Name == "" {
		return fmt.Errorf("permission name cannot be empty")
	}
	if v.Registry != nil {
		if err := v.Registry.ValidateCode(permission.Code); err != nil {
			return err
		}
	}
	return nil
}

// ValidateGrant
func (v *ValidationUtil) ValidateGrant(grant model.OrgUnitGrant) error {
	switch grant.UnitKind {
	case model.UnitCompany, model.UnitDepartment, model.UnitPosition:
	default:
		return fmt.Errorf("grant unit kind %q is not valid", grant.UnitKind)
	}
	if grant.UnitID == "" {
		return fmt.Errorf("grant unit ID cannot be empty")
	}
	if grant.PermissionID == "" && grant.Code == "" {
		return fmt.Errorf("grant must reference a permission by ID or code")
	}
	return nil
}

// ValidateMenuList
func (v *ValidationUtil) ValidateMenuList(menu model.MenuAccessList) error {
	if menu.MenuName == "" {
		return fmt.Errorf("menu name cannot be empty")
	}
	return nil
}
