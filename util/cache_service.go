// api/util/cache_service.go

package util

import (
	"context"

	"github.com/qc-suite/gatekeeper/db"
	"github.com/qc-suite/gatekeeper/model"
)

type CacheService struct{}

func NewCacheService() *CacheService {
	return &CacheService{}
}

func (c *CacheService) GetUser(ctx context.Context, userID string) (*model.UserIdentity, error) {
	return db.GetCachedUser(ctx, userID)
}

func (c *CacheService) SetUser(ctx context.Context, user model.UserIdentity) error {
	return db.CacheUser(ctx, &user)
}

func (c *CacheService) DeleteUser(ctx context.Context, userID string) error {
	return db.DeleteCachedUser(ctx, userID)
}

func (c *CacheService) SetDepartment(ctx context.Context, department model.Department) error {
	return db.CacheDepartment(ctx, &department)
}

func (c *CacheService) DeleteDepartment(ctx context.Context, departmentID string) error {
	return db.DeleteCachedDepartment(ctx, departmentID)
}

func (c *CacheService) GetDepartment(ctx context.Context, departmentID string) (*model.Department, error) {
	return db.GetCachedDepartment(ctx, departmentID)
}

func (c *CacheService) SetMenuList(ctx context.Context, menu model.MenuAccessList) error {
	return db.CacheMenuList(ctx, &menu)
}

func (c *CacheService) DeleteMenuList(ctx context.Context, menuName string) error {
	return db.DeleteCachedMenuList(ctx, menuName)
}

func (c *CacheService) GetMenuList(ctx context.Context, menuName string) (*model.MenuAccessList, error) {
	return db.GetCachedMenuList(ctx, menuName)
}
