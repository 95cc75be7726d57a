// Package engine resolves which scope tier a principal holds for one
// capability of one module. Resolution is a pure read over the catalog and
// directory stores; "no permission" is a normal TierNone decision, and any
// internal fault fails closed to TierNone with the fault attached.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	gate_errors "github.com/qc-suite/gatekeeper/errors"
	logger "github.com/qc-suite/gatekeeper/logging"
	"github.com/qc-suite/gatekeeper/registry"
	resolver_model "github.com/qc-suite/gatekeeper/resolver/model"
)

type Resolver struct {
	registry  *registry.ModuleRegistry
	directory DirectoryStore
	sources   []GrantSource
	cache     *decisionCache
}

func NewResolver(reg *registry.ModuleRegistry, directory DirectoryStore, sources []GrantSource, cacheSize int, cacheTTL time.Duration) *Resolver {
	return &Resolver{
		registry:  reg,
		directory: directory,
		sources:   sources,
		cache:     newDecisionCache(cacheSize, cacheTTL),
	}
}

// Resolve computes the highest scope tier the principal is entitled to. The
// returned decision never reports an error for missing permissions; a
// structural fault is carried in Decision.Fault with TierNone.
func (r *Resolver) Resolve(ctx context.Context, request *resolver_model.AccessRequest) resolver_model.Decision {
	if !request.Principal.IsAuthenticated {
		return resolver_model.Decision{Tier: resolver_model.TierNone, Reason: "unauthenticated principal"}
	}
	if request.Principal.IsSuperuser {
		return resolver_model.Decision{Tier: resolver_model.TierAll, Reason: "superuser"}
	}

	moduleCode, err := r.registry.Normalize(request.Module)
	if err != nil {
		// Unregistered modules fail closed instead of deriving a guessed code.
		logger.Warn("Access request for unregistered module",
			zap.String("module", request.Module),
			zap.String("userID", request.Principal.ID))
		return resolver_model.Decision{Tier: resolver_model.TierNone, Reason: "unregistered module"}
	}

	cacheKey := fmt.Sprintf("%s:%s:%s", request.Principal.ID, moduleCode, request.Capability)
	if cached := r.cache.Get(cacheKey); cached != nil {
		return *cached
	}

	decision := r.evaluate(ctx, request.Principal.ID, moduleCode, request.Capability)
	r.cache.Set(cacheKey, decision)
	return decision
}

// ResolveTier is the convenience form callers use when they only need the
// tier and want fail-closed semantics without inspecting faults.
func (r *Resolver) ResolveTier(ctx context.Context, request *resolver_model.AccessRequest) resolver_model.ScopeTier {
	return r.Resolve(ctx, request).Tier
}

func (r *Resolver) evaluate(ctx context.Context, userID, moduleCode string, capability registry.Capability) resolver_model.Decision {
	unit, err := r.directory.HomeUnit(ctx, userID)
	if err != nil && !errors.Is(err, gate_errors.ErrUserNotBound) {
		return r.failClosed(userID, moduleCode, err)
	}

	held := make(map[string]bool)
	for _, source := range r.sources {
		codes, err := source.CodesFor(ctx, userID, unit)
		if err != nil {
			return r.failClosed(userID, moduleCode, err)
		}
		for code := range codes {
			held[code] = true
		}
	}

	best := resolver_model.TierNone
	var matched []string
	for _, entry := range codeFamily(moduleCode, capability) {
		if held[entry.code] {
			matched = append(matched, entry.code)
			if entry.tier > best {
				best = entry.tier
			}
		}
	}

	if best == resolver_model.TierNone {
		return resolver_model.Decision{Tier: resolver_model.TierNone, Reason: "no matching grants"}
	}
	return resolver_model.Decision{Tier: best, Matched: matched}
}

// failClosed converts an internal lookup failure into the most restrictive
// outcome. Structural faults keep their identity so the admin alerting path
// can pick them up; everything else becomes a store failure.
func (r *Resolver) failClosed(userID, moduleCode string, err error) resolver_model.Decision {
	var fault *resolver_model.ConfigFault
	if !errors.As(err, &fault) {
		fault = &resolver_model.ConfigFault{
			Kind:   resolver_model.FaultStoreFailure,
			Detail: err.Error(),
		}
	}
	logger.Error("Resolution failed closed",
		zap.String("userID", userID),
		zap.String("module", moduleCode),
		zap.String("fault", string(fault.Kind)),
		zap.Error(err))
	return resolver_model.Decision{
		Tier:   resolver_model.TierNone,
		Reason: "configuration fault",
		Fault:  fault,
	}
}

// InvalidateUser drops cached decisions for one user, e.g. after a role
// assignment or binding change.
func (r *Resolver) InvalidateUser(userID string) {
	r.cache.InvalidateUser(userID)
}

// InvalidateAll drops the whole decision cache, e.g. after a grant mutation.
func (r *Resolver) InvalidateAll() {
	r.cache.Purge()
}

type codeTier struct {
	code string
	tier resolver_model.ScopeTier
}

// codeFamily enumerates the codes that can satisfy the request together with
// the tier each one confers, ordered from own to all so matched codes come
// out stable. View is tiered; edit, delete and export use the bare module
// code and confer own-records scope, with cross-user widening handled by the
// edit-window policy.
func codeFamily(moduleCode string, capability registry.Capability) []codeTier {
	if capability == registry.CapabilityView {
		codes := registry.ViewCodes(moduleCode)
		return []codeTier{
			{code: codes[0], tier: resolver_model.TierOwn},
			{code: codes[1], tier: resolver_model.TierDepartment},
			{code: codes[2], tier: resolver_model.TierCompany},
			{code: codes[3], tier: resolver_model.TierAll},
		}
	}
	return []codeTier{
		{code: registry.BareCode(moduleCode, capability), tier: resolver_model.TierOwn},
	}
}
