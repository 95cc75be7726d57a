// api/service/services.go
package service

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/qc-suite/gatekeeper/audit"
	"github.com/qc-suite/gatekeeper/dao"
	logger "github.com/qc-suite/gatekeeper/logging"
	"github.com/qc-suite/gatekeeper/policy"
	"github.com/qc-suite/gatekeeper/registry"
	"github.com/qc-suite/gatekeeper/resolver/engine"
	"github.com/qc-suite/gatekeeper/util"
)

type Services struct {
	Company    ICompanyService
	Dept       IDepartmentService
	Position   IPositionService
	User       IUserService
	Role       IRoleService
	Permission IPermissionService
	Menu       IMenuService
	Param      IParamService
	Access     IAccessService
}

func InitializeServices(
	driver neo4j.Driver,
	auditService audit.Service,
	validationUtil *util.ValidationUtil,
	cacheService *util.CacheService,
	notificationSvc *util.NotificationService,
	eventBus *util.EventBus,
	reg *registry.ModuleRegistry,
	defaultOperators []string,
	policyDefaults policy.Config,
	decisionCacheSize int,
	decisionCacheTTL time.Duration,
) (*Services, error) {
	companyDAO := dao.NewCompanyDAO(driver, auditService)
	departmentDAO := dao.NewDepartmentDAO(driver, auditService)
	positionDAO := dao.NewPositionDAO(driver, auditService)
	userDAO := dao.NewUserDAO(driver, auditService)
	roleDAO := dao.NewRoleDAO(driver, auditService)
	permissionDAO := dao.NewPermissionDAO(driver, auditService)
	grantDAO := dao.NewGrantDAO(driver, auditService)
	menuDAO := dao.NewMenuDAO(driver, auditService)
	paramDAO := dao.NewParamDAO(driver, auditService)

	stores := dao.NewStores(userDAO, departmentDAO, positionDAO, roleDAO, grantDAO)
	sources := []engine.GrantSource{
		engine.NewRoleGrantSource(stores),
		engine.NewOrgUnitGrantSource(stores, stores),
	}
	resolver := engine.NewResolver(reg, stores, sources, decisionCacheSize, decisionCacheTTL)

	editWindow := policy.NewEditWindow(policyDefaults)
	policyLoader := policy.NewParameterLoader(context.Background(), paramDAO)
	if err := editWindow.Reload(policyLoader); err != nil {
		// Stored overrides are applied when reachable; defaults carry startup.
		logger.Warn("Falling back to default edit-window policy", zap.Error(err))
	}

	services := &Services{
		Company:    NewCompanyService(companyDAO, validationUtil, notificationSvc, eventBus),
		Dept:       NewDepartmentService(departmentDAO, validationUtil, cacheService, notificationSvc, eventBus),
		Position:   NewPositionService(positionDAO, validationUtil, notificationSvc, eventBus),
		User:       NewUserService(userDAO, validationUtil, cacheService, notificationSvc, eventBus),
		Role:       NewRoleService(roleDAO, validationUtil, notificationSvc, eventBus),
		Permission: NewPermissionService(permissionDAO, grantDAO, validationUtil, notificationSvc, eventBus),
		Menu:       NewMenuService(menuDAO, validationUtil, cacheService, notificationSvc, eventBus, defaultOperators),
		Param:      NewParamService(paramDAO, eventBus),
		Access:     NewAccessService(resolver, reg, stores, editWindow, policyLoader, auditService, notificationSvc, eventBus),
	}

	return services, nil
}
