// api/controller/controllers.go
package controller

import "github.com/qc-suite/gatekeeper/service"

type Controllers struct {
	Company    *CompanyController
	Dept       *DepartmentController
	Position   *PositionController
	User       *UserController
	Role       *RoleController
	Permission *PermissionController
	Menu       *MenuController
	Param      *ParamController
	Access     *AccessController
}

func InitializeControllers(services *service.Services) *Controllers {
	return &Controllers{
		Company:    NewCompanyController(services.Company),
		Dept:       NewDepartmentController(services.Dept),
		Position:   NewPositionController(services.Position),
		User:       NewUserController(services.User, services.Role),
		Role:       NewRoleController(services.Role),
		Permission: NewPermissionController(services.Permission),
		Menu:       NewMenuController(services.Menu),
		Param:      NewParamController(services.Param),
		Access:     NewAccessController(services.Access),
	}
}
