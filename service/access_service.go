// api/service/access_service.go
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/qc-suite/gatekeeper/audit"
	gate_errors "github.com/qc-suite/gatekeeper/errors"
	logger "github.com/qc-suite/gatekeeper/logging"
	"github.com/qc-suite/gatekeeper/model"
	"github.com/qc-suite/gatekeeper/policy"
	"github.com/qc-suite/gatekeeper/registry"
	"github.com/qc-suite/gatekeeper/resolver/engine"
	resolver_model "github.com/qc-suite/gatekeeper/resolver/model"
	"github.com/qc-suite/gatekeeper/scope"
	"github.com/qc-suite/gatekeeper/util"
)

// IAccessService defines the interface for access resolution operations
type IAccessService interface {
	Resolve(ctx context.Context, principal model.Principal, module string, capability registry.Capability) resolver_model.Decision
	ScopeFor(ctx context.Context, principal model.Principal, module string, capability registry.Capability, ownerField string) (resolver_model.Decision, scope.Predicate)
	CanEditRecord(ctx context.Context, principal model.Principal, module string, ownerID string, createdAt time.Time) (bool, error)
}

// AccessService fronts the resolution engine for the HTTP layer. Every
// decision is audited, and mutations elsewhere in the system invalidate the
// decision cache through event subscriptions.
type AccessService struct {
	resolver        *engine.Resolver
	registry        *registry.ModuleRegistry
	directory       engine.DirectoryStore
	editWindow      *policy.EditWindow
	policyLoad      policy.ConfigLoader
	auditSvc        audit.Service
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

var _ IAccessService = &AccessService{}

func NewAccessService(
	resolver *engine.Resolver,
	reg *registry.ModuleRegistry,
	directory engine.DirectoryStore,
	editWindow *policy.EditWindow,
	policyLoad policy.ConfigLoader,
	auditSvc audit.Service,
	notificationSvc *util.NotificationService,
	eventBus *util.EventBus,
) *AccessService {
	service := &AccessService{
		resolver:        resolver,
		registry:        reg,
		directory:       directory,
		editWindow:      editWindow,
		policyLoad:      policyLoad,
		auditSvc:        auditSvc,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}

	// Any catalog or grant mutation can change every cached decision; user
	// scoped mutations only invalidate that user's entries.
	eventBus.Subscribe(util.EventGrantChanged, service.handleGrantChanged)
	eventBus.Subscribe(util.EventOrgChanged, service.handleGrantChanged)
	eventBus.Subscribe(util.EventRoleAssigned, service.handleUserScopedChange)
	eventBus.Subscribe(util.EventBindingUpdated, service.handleUserScopedChange)
	eventBus.Subscribe(util.EventParamChanged, service.handleParamChanged)

	return service
}

func (s *AccessService) handleGrantChanged(ctx context.Context, event util.Event) error {
	logger.Info("Invalidating all cached decisions", zap.String("eventType", event.Type))
	s.resolver.InvalidateAll()
	return nil
}

func (s *AccessService) handleUserScopedChange(ctx context.Context, event util.Event) error {
	userID, ok := event.Payload.(string)
	if !ok {
		s.resolver.InvalidateAll()
		return nil
	}
	logger.Info("Invalidating cached decisions for user", zap.String("userID", userID), zap.String("eventType", event.Type))
	s.resolver.InvalidateUser(userID)
	return nil
}

func (s *AccessService) handleParamChanged(ctx context.Context, event util.Event) error {
	if err := s.editWindow.Reload(s.policyLoad); err != nil {
		logger.Error("Failed to reload edit-window policy", zap.Error(err))
		return err
	}
	return nil
}

// Resolve computes the scope tier a principal holds and audits the outcome.
func (s *AccessService) Resolve(ctx context.Context, principal model.Principal, module string, capability registry.Capability) resolver_model.Decision {
	request := &resolver_model.AccessRequest{
		Principal:  principal,
		Module:     module,
		Capability: capability,
		Timestamp:  time.Now(),
	}

	decision := s.resolver.Resolve(ctx, request)
	s.auditDecision(ctx, principal, module, capability, decision)
	return decision
}

// ScopeFor resolves the tier and translates it into the declarative predicate
// a consuming query layer applies to its records.
func (s *AccessService) ScopeFor(ctx context.Context, principal model.Principal, module string, capability registry.Capability, ownerField string) (resolver_model.Decision, scope.Predicate) {
	decision := s.Resolve(ctx, principal, module, capability)
	if decision.Tier == resolver_model.TierNone {
		return decision, scope.Predicate{Kind: scope.MatchNone}
	}

	unit, err := s.directory.HomeUnit(ctx, principal.ID)
	if err != nil && !errors.Is(err, gate_errors.ErrUserNotBound) {
		logger.Error("Failed to load binding for scope translation", zap.Error(err), zap.String("userID", principal.ID))
		return decision, scope.Predicate{Kind: scope.MatchNone}
	}

	return decision, scope.ForTier(decision.Tier, ownerField, principal, unit)
}

// CanEditRecord decides whether the principal may modify a specific record.
// The principal must hold the module's edit capability; editing someone
// else's record additionally requires the edit-window policy to allow it.
func (s *AccessService) CanEditRecord(ctx context.Context, principal model.Principal, module string, ownerID string, createdAt time.Time) (bool, error) {
	decision := s.Resolve(ctx, principal, module, registry.CapabilityEdit)
	if decision.Tier == resolver_model.TierNone {
		return false, nil
	}
	if principal.IsSuperuser || principal.ID == ownerID {
		return true, nil
	}

	moduleCode, err := s.registry.Normalize(module)
	if err != nil {
		return false, nil
	}
	return s.editWindow.CanEditForeign(moduleCode, createdAt, time.Now()), nil
}

func (s *AccessService) auditDecision(ctx context.Context, principal model.Principal, module string, capability registry.Capability, decision resolver_model.Decision) {
	entry := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        principal.ID,
		Action:        "RESOLVE_ACCESS",
		Module:        module,
		Capability:    string(capability),
		Tier:          decision.Tier.String(),
		AccessGranted: decision.Tier > resolver_model.TierNone,
	}
	if decision.Fault != nil {
		entry.Fault = string(decision.Fault.Kind)
		// Structural faults are an admin problem, not a user problem.
		if err := s.notificationSvc.NotifyAdmins(ctx, decision.Fault.Error()); err != nil {
			logger.Warn("Failed to notify admins of configuration fault", zap.Error(err))
		}
	}
	if err := s.auditSvc.LogAccess(ctx, entry); err != nil {
		logger.Warn("Failed to audit access decision", zap.Error(err), zap.String("userID", principal.ID))
	}
}
