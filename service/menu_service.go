// api/service/menu_service.go
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/qc-suite/gatekeeper/dao"
	gate_errors "github.com/qc-suite/gatekeeper/errors"
	logger "github.com/qc-suite/gatekeeper/logging"
	"github.com/qc-suite/gatekeeper/model"
	"github.com/qc-suite/gatekeeper/util"
)

// IMenuService defines the interface for menu allow-list operations
type IMenuService interface {
	UpsertMenuList(ctx context.Context, menu model.MenuAccessList, userID string) (*model.MenuAccessList, error)
	GetMenuList(ctx context.Context, menuName string) (*model.MenuAccessList, error)
	DeleteMenuList(ctx context.Context, menuName string, userID string) error
	IsAllowed(ctx context.Context, menuName string, principal model.Principal) (bool, error)
}

// MenuService gates menu entries by a flat allow-list. Visibility here is
// independent of data-scope resolution: a user can appear on a menu list
// without holding any capability, and vice versa.
type MenuService struct {
	menuDAO          *dao.MenuDAO
	validationUtil   *util.ValidationUtil
	cacheService     *util.CacheService
	notificationSvc  *util.NotificationService
	eventBus         *util.EventBus
	defaultOperators []string
}

var _ IMenuService = &MenuService{}

func NewMenuService(menuDAO *dao.MenuDAO, validationUtil *util.ValidationUtil, cacheService *util.CacheService, notificationSvc *util.NotificationService, eventBus *util.EventBus, defaultOperators []string) *MenuService {
	return &MenuService{
		menuDAO:          menuDAO,
		validationUtil:   validationUtil,
		cacheService:     cacheService,
		notificationSvc:  notificationSvc,
		eventBus:         eventBus,
		defaultOperators: defaultOperators,
	}
}

// UpsertMenuList creates or replaces the allow-list for a menu
func (s *MenuService) UpsertMenuList(ctx context.Context, menu model.MenuAccessList, userID string) (*model.MenuAccessList, error) {
	if err := s.validationUtil.ValidateMenuList(menu); err != nil {
		return nil, fmt.Errorf("invalid menu access list: %w", err)
	}

	menuID, err := s.menuDAO.UpsertMenuList(ctx, menu)
	if err != nil {
		logger.Error("Error upserting menu access list", zap.Error(err), zap.String("menuName", menu.MenuName))
		return nil, err
	}

	menu.ID = menuID

	if err := s.cacheService.SetMenuList(ctx, menu); err != nil {
		logger.Warn("Failed to cache menu access list", zap.Error(err), zap.String("menuName", menu.MenuName))
	}

	if err := s.notificationSvc.NotifyMenuChange(ctx, "upserted", menu); err != nil {
		logger.Warn("Failed to send menu change notification", zap.Error(err), zap.String("menuName", menu.MenuName))
	}

	logger.Info("Menu access list upserted", zap.String("menuName", menu.MenuName), zap.String("userID", userID))
	return &menu, nil
}

// GetMenuList retrieves the allow-list for a menu
func (s *MenuService) GetMenuList(ctx context.Context, menuName string) (*model.MenuAccessList, error) {
	cachedMenu, err := s.cacheService.GetMenuList(ctx, menuName)
	if err == nil && cachedMenu != nil {
		return cachedMenu, nil
	}

	menu, err := s.menuDAO.GetMenuList(ctx, menuName)
	if err != nil {
		if errors.Is(err, gate_errors.ErrMenuNotFound) {
			return nil, gate_errors.ErrMenuNotFound
		}
		logger.Error("Error retrieving menu access list", zap.Error(err), zap.String("menuName", menuName))
		return nil, gate_errors.ErrInternalServer
	}

	if err := s.cacheService.SetMenuList(ctx, *menu); err != nil {
		logger.Warn("Failed to cache menu access list", zap.Error(err), zap.String("menuName", menuName))
	}

	return menu, nil
}

// DeleteMenuList removes the allow-list for a menu
func (s *MenuService) DeleteMenuList(ctx context.Context, menuName string, userID string) error {
	err := s.menuDAO.DeleteMenuList(ctx, menuName)
	if err != nil {
		logger.Error("Error deleting menu access list", zap.Error(err), zap.String("menuName", menuName))
		return fmt.Errorf("failed to delete menu access list: %w", err)
	}

	if err := s.cacheService.DeleteMenuList(ctx, menuName); err != nil {
		logger.Warn("Failed to delete menu access list from cache", zap.Error(err), zap.String("menuName", menuName))
	}

	logger.Info("Menu access list deleted", zap.String("menuName", menuName), zap.String("userID", userID))
	return nil
}

// IsAllowed reports whether a principal may see a menu entry. Superusers see
// everything. A menu with no stored or active allow-list falls back to the
// configured default operator IDs; an empty fallback denies everyone.
func (s *MenuService) IsAllowed(ctx context.Context, menuName string, principal model.Principal) (bool, error) {
	if !principal.IsAuthenticated {
		return false, nil
	}
	if principal.IsSuperuser {
		return true, nil
	}

	menu, err := s.GetMenuList(ctx, menuName)
	if err != nil {
		if errors.Is(err, gate_errors.ErrMenuNotFound) {
			return s.allowedByDefault(principal.ID), nil
		}
		return false, err
	}
	if !menu.Active {
		return s.allowedByDefault(principal.ID), nil
	}

	return menu.Allows(principal.ID), nil
}

func (s *MenuService) allowedByDefault(userID string) bool {
	for _, id := range s.defaultOperators {
		if id == userID {
			return true
		}
	}
	return false
}
