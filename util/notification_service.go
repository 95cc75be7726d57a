// api/util/notification_service.go

package util

import (
	"context"

	"go.uber.org/zap"

	logger "github.com/qc-suite/gatekeeper/logging"
	"github.com/qc-suite/gatekeeper/model"
)

type NotificationService struct {
	// You might want to add dependencies here, such as a message queue client
}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

func (n *NotificationService) NotifyAdmins(ctx context.Context, message string) error {
	// Logic to notify all system administrators
	logger.Info("Notifying admins", zap.String("message", message))
	return nil
}

func (n *NotificationService) NotifyCompanyChange(ctx context.Context, changeType string, company model.Company) error {
	logger.Info("Notifying company change",
		zap.String("changeType", changeType),
		zap.String("companyID", company.ID),
		zap.String("companyName", company.Name))
	return nil
}

func (n *NotificationService) NotifyDepartmentChange(ctx context.Context, changeType string, dept model.Department) error {
	logger.Info("Notifying department change",
		zap.String("changeType", changeType),
		zap.String("deptID", dept.ID),
		zap.String("deptName", dept.Name))
	return nil
}

func (n *NotificationService) NotifyPositionChange(ctx context.Context, changeType string, position model.Position) error {
	logger.Info("Notifying position change",
		zap.String("changeType", changeType),
		zap.String("positionID", position.ID),
		zap.String("positionName", position.Name))
	return nil
}

func (n *NotificationService) NotifyUserChange(ctx context.Context, changeType string, user model.UserIdentity) error {
	logger.Info("Notifying user change",
		zap.String("changeType", changeType),
		zap.String("userID", user.ID),
		zap.String("userName", user.Username))
	return nil
}

func (n *NotificationService) NotifyRoleChange(ctx context.Context, changeType string, role model.Role) error {
	logger.Info("Notifying role change",
		zap.String("changeType", changeType),
		zap.String("roleID", role.ID),
		zap.String("roleName", role.Name))
	return nil
}

func (n *NotificationService) NotifyPermissionChange(ctx context.Context, changeType string, permission model.Permission) error {
	logger.Info("Notifying permission change",
		zap.String("changeType", changeType),
		zap.String("permissionID", permission.ID),
		zap.String("permissionName", permission.Name))
	return nil
}

func (n *NotificationService) NotifyGrantChange(ctx context.Context, changeType string, grant model.OrgUnitGrant) error {
	logger.Info("Notifying grant change",
		zap.String("changeType", changeType),
		zap.String("grantID", grant.ID),
		zap.String("unitID", grant.UnitID),
		zap.String("code", grant.Code))
	return nil
}

func (n *NotificationService) NotifyMenuChange(ctx context.Context, changeType string, menu model.MenuAccessList) error {
	logger.Info("Notifying menu change",
		zap.String("changeType", changeType),
		zap.String("menuName", menu.MenuName))
	return nil
}
