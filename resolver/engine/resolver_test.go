package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qc-suite/gatekeeper/config"
	"github.com/qc-suite/gatekeeper/logging"
	"github.com/qc-suite/gatekeeper/model"
	"github.com/qc-suite/gatekeeper/registry"
	resolver_model "github.com/qc-suite/gatekeeper/resolver/model"
)

func TestMain(m *testing.M) {
	logging.Log = zap.NewNop()
	os.Exit(m.Run())
}

type fakeDirectory struct {
	units       map[string]*model.HomeUnit
	departments map[string]*model.Department
	positions   map[string]*model.Position
	ancestry    map[string][]*model.Department
}

func (f *fakeDirectory) HomeUnit(_ context.Context, userID string) (*model.HomeUnit, error) {
	unit, ok := f.units[userID]
	if !ok {
		return nil, nil
	}
	return unit, nil
}

func (f *fakeDirectory) Department(_ context.Context, deptID string) (*model.Department, error) {
	dept, ok := f.departments[deptID]
	if !ok {
		return nil, fmt.Errorf("department %s missing", deptID)
	}
	return dept, nil
}

func (f *fakeDirectory) Position(_ context.Context, positionID string) (*model.Position, error) {
	position, ok := f.positions[positionID]
	if !ok {
		return nil, fmt.Errorf("position %s missing", positionID)
	}
	return position, nil
}

func (f *fakeDirectory) Ancestry(_ context.Context, deptID string) ([]*model.Department, error) {
	return f.ancestry[deptID], nil
}

type fakeRoles struct {
	codes map[string][]string
	err   error
}

func (f *fakeRoles) RoleCodesForUser(_ context.Context, userID string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.codes[userID], nil
}

type fakeGrants struct {
	grants map[string][]*model.OrgUnitGrant
}

func (f *fakeGrants) UnitGrants(_ context.Context, kind model.OrgUnitKind, unitID string) ([]*model.OrgUnitGrant, error) {
	return f.grants[string(kind)+":"+unitID], nil
}

func testRegistry(t *testing.T) *registry.ModuleRegistry {
	t.Helper()
	reg, err := registry.NewRegistry([]config.ModuleEntry{
		{Code: "changfu", Name: "Changfu Report", Aliases: []string{"changfu report"}},
		{Code: "dongtai", Name: "Dongtai Report"},
	})
	require.NoError(t, err)
	return reg
}

// The fixture mirrors a two-company plant: production department with a
// child line under company one, and a quality department under company two.
func testDirectory() *fakeDirectory {
	production := &model.Department{ID: "dept-prod", CompanyID: "co-1"}
	line := &model.Department{ID: "dept-line", CompanyID: "co-1", ParentID: "dept-prod"}
	quality := &model.Department{ID: "dept-qa", CompanyID: "co-2"}
	return &fakeDirectory{
		units: map[string]*model.HomeUnit{
			"alice": {CompanyID: "co-1", DepartmentID: "dept-line", PositionID: "pos-op"},
			"carol": {CompanyID: "co-1", DepartmentID: "dept-line", PositionID: "pos-op"},
			"mism":  {CompanyID: "co-1", DepartmentID: "dept-qa", PositionID: "pos-op"},
		},
		departments: map[string]*model.Department{
			"dept-prod": production,
			"dept-line": line,
			"dept-qa":   quality,
		},
		positions: map[string]*model.Position{
			"pos-op": {ID: "pos-op", CompanyID: "co-1", DepartmentID: "dept-line"},
		},
		ancestry: map[string][]*model.Department{
			"dept-line": {production, line},
			"dept-qa":   {quality},
		},
	}
}

func newTestResolver(t *testing.T, directory *fakeDirectory, roles *fakeRoles, grants *fakeGrants) *Resolver {
	t.Helper()
	sources := []GrantSource{
		NewRoleGrantSource(roles),
		NewOrgUnitGrantSource(directory, grants),
	}
	return NewResolver(testRegistry(t), directory, sources, 16, time.Minute)
}

func request(userID, module string, capability registry.Capability) *resolver_model.AccessRequest {
	return &resolver_model.AccessRequest{
		Principal:  model.Principal{ID: userID, IsAuthenticated: true},
		Module:     module,
		Capability: capability,
		Timestamp:  time.Now(),
	}
}

func TestResolveRoleGrantConfersOwnTier(t *testing.T) {
	roles := &fakeRoles{codes: map[string][]string{"alice": {"changfu_view_own"}}}
	r := newTestResolver(t, testDirectory(), roles, &fakeGrants{})

	decision := r.Resolve(context.Background(), request("alice", "changfu", registry.CapabilityView))

	assert.Equal(t, resolver_model.TierOwn, decision.Tier)
	assert.Nil(t, decision.Fault)
	assert.Contains(t, decision.Matched, "changfu_view_own")
}

func TestResolveTakesMaxTierAcrossSources(t *testing.T) {
	roles := &fakeRoles{codes: map[string][]string{"alice": {"changfu_view_own"}}}
	grants := &fakeGrants{grants: map[string][]*model.OrgUnitGrant{
		"company:co-1": {{Code: "changfu_view_company"}},
	}}
	r := newTestResolver(t, testDirectory(), roles, grants)

	decision := r.Resolve(context.Background(), request("alice", "changfu", registry.CapabilityView))

	assert.Equal(t, resolver_model.TierCompany, decision.Tier)
}

func TestResolveDepartmentGrant(t *testing.T) {
	grants := &fakeGrants{grants: map[string][]*model.OrgUnitGrant{
		"department:dept-line": {{Code: "changfu_view_department"}},
	}}
	r := newTestResolver(t, testDirectory(), &fakeRoles{}, grants)

	decision := r.Resolve(context.Background(), request("carol", "changfu", registry.CapabilityView))

	assert.Equal(t, resolver_model.TierDepartment, decision.Tier)
}

func TestResolveInheritedAncestorGrant(t *testing.T) {
	// The grant sits on the parent department. It only reaches carol in the
	// child department when marked inherited.
	grants := &fakeGrants{grants: map[string][]*model.OrgUnitGrant{
		"department:dept-prod": {{Code: "changfu_view_department", Inherited: true}},
	}}
	r := newTestResolver(t, testDirectory(), &fakeRoles{}, grants)

	decision := r.Resolve(context.Background(), request("carol", "changfu", registry.CapabilityView))
	assert.Equal(t, resolver_model.TierDepartment, decision.Tier)

	uninherited := &fakeGrants{grants: map[string][]*model.OrgUnitGrant{
		"department:dept-prod": {{Code: "changfu_view_department"}},
	}}
	r2 := newTestResolver(t, testDirectory(), &fakeRoles{}, uninherited)

	decision = r2.Resolve(context.Background(), request("carol", "changfu", registry.CapabilityView))
	assert.Equal(t, resolver_model.TierNone, decision.Tier)
}

func TestResolveSuperuserAlwaysAll(t *testing.T) {
	r := newTestResolver(t, testDirectory(), &fakeRoles{}, &fakeGrants{})

	req := request("root", "changfu", registry.CapabilityView)
	req.Principal.IsSuperuser = true

	decision := r.Resolve(context.Background(), req)
	assert.Equal(t, resolver_model.TierAll, decision.Tier)

	// Even for a module nobody registered.
	req = request("root", "no-such-module", registry.CapabilityView)
	req.Principal.IsSuperuser = true
	assert.Equal(t, resolver_model.TierAll, r.Resolve(context.Background(), req).Tier)
}

func TestResolveUnauthenticatedFailsClosed(t *testing.T) {
	r := newTestResolver(t, testDirectory(), &fakeRoles{}, &fakeGrants{})

	decision := r.Resolve(context.Background(), &resolver_model.AccessRequest{
		Module:     "changfu",
		Capability: registry.CapabilityView,
	})

	assert.Equal(t, resolver_model.TierNone, decision.Tier)
}

func TestResolveUnregisteredModuleFailsClosed(t *testing.T) {
	roles := &fakeRoles{codes: map[string][]string{"alice": {"changfu_view_all"}}}
	r := newTestResolver(t, testDirectory(), roles, &fakeGrants{})

	decision := r.Resolve(context.Background(), request("alice", "weekly report", registry.CapabilityView))

	assert.Equal(t, resolver_model.TierNone, decision.Tier)
	assert.Equal(t, "unregistered module", decision.Reason)
}

func TestResolveModuleAliasNormalizes(t *testing.T) {
	roles := &fakeRoles{codes: map[string][]string{"alice": {"changfu_view_own"}}}
	r := newTestResolver(t, testDirectory(), roles, &fakeGrants{})

	decision := r.Resolve(context.Background(), request("alice", "Changfu Report", registry.CapabilityView))

	assert.Equal(t, resolver_model.TierOwn, decision.Tier)
}

func TestResolveBareEditCodeConfersOwnTier(t *testing.T) {
	roles := &fakeRoles{codes: map[string][]string{"alice": {"changfu_edit"}}}
	r := newTestResolver(t, testDirectory(), roles, &fakeGrants{})

	decision := r.Resolve(context.Background(), request("alice", "changfu", registry.CapabilityEdit))
	assert.Equal(t, resolver_model.TierOwn, decision.Tier)

	// A view grant never satisfies edit.
	decision = r.Resolve(context.Background(), request("carol", "changfu", registry.CapabilityEdit))
	assert.Equal(t, resolver_model.TierNone, decision.Tier)
}

func TestResolveCompanyMismatchReportsFault(t *testing.T) {
	// "mism" is bound to a department in another company. The resolver must
	// not repair the binding; it fails closed and flags the fault.
	grants := &fakeGrants{grants: map[string][]*model.OrgUnitGrant{
		"company:co-1": {{Code: "changfu_view_company"}},
	}}
	r := newTestResolver(t, testDirectory(), &fakeRoles{}, grants)

	decision := r.Resolve(context.Background(), request("mism", "changfu", registry.CapabilityView))

	assert.Equal(t, resolver_model.TierNone, decision.Tier)
	require.NotNil(t, decision.Fault)
	assert.Equal(t, resolver_model.FaultCompanyMismatch, decision.Fault.Kind)
}

func TestResolveStoreFailureFailsClosed(t *testing.T) {
	roles := &fakeRoles{err: errors.New("connection refused")}
	r := newTestResolver(t, testDirectory(), roles, &fakeGrants{})

	decision := r.Resolve(context.Background(), request("alice", "changfu", registry.CapabilityView))

	assert.Equal(t, resolver_model.TierNone, decision.Tier)
	require.NotNil(t, decision.Fault)
	assert.Equal(t, resolver_model.FaultStoreFailure, decision.Fault.Kind)
}

func TestResolveUnboundUserStillGetsRoleGrants(t *testing.T) {
	roles := &fakeRoles{codes: map[string][]string{"ghost": {"dongtai_view_all"}}}
	r := newTestResolver(t, testDirectory(), roles, &fakeGrants{})

	decision := r.Resolve(context.Background(), request("ghost", "dongtai", registry.CapabilityView))

	assert.Equal(t, resolver_model.TierAll, decision.Tier)
}

func TestResolveMatchedCodesAreOrdered(t *testing.T) {
	roles := &fakeRoles{codes: map[string][]string{
		"alice": {"changfu_view_company", "changfu_view_own", "changfu_view_department"},
	}}
	r := newTestResolver(t, testDirectory(), roles, &fakeGrants{})

	// Matched codes always list own to all, regardless of grant order.
	want := []string{"changfu_view_own", "changfu_view_department", "changfu_view_company"}
	for i := 0; i < 10; i++ {
		r.InvalidateAll()
		decision := r.Resolve(context.Background(), request("alice", "changfu", registry.CapabilityView))
		assert.Equal(t, want, decision.Matched)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	roles := &fakeRoles{codes: map[string][]string{"alice": {"changfu_view_department"}}}
	r := newTestResolver(t, testDirectory(), roles, &fakeGrants{})

	req := request("alice", "changfu", registry.CapabilityView)
	first := r.Resolve(context.Background(), req)
	second := r.Resolve(context.Background(), req)

	assert.Equal(t, first.Tier, second.Tier)
}

func TestInvalidateUserDropsCachedDecision(t *testing.T) {
	roles := &fakeRoles{codes: map[string][]string{"alice": {"changfu_view_own"}}}
	r := newTestResolver(t, testDirectory(), roles, &fakeGrants{})

	req := request("alice", "changfu", registry.CapabilityView)
	assert.Equal(t, resolver_model.TierOwn, r.Resolve(context.Background(), req).Tier)

	// Widen the role grant. The cached decision survives until invalidation.
	roles.codes["alice"] = []string{"changfu_view_all"}
	assert.Equal(t, resolver_model.TierOwn, r.Resolve(context.Background(), req).Tier)

	r.InvalidateUser("alice")
	assert.Equal(t, resolver_model.TierAll, r.Resolve(context.Background(), req).Tier)
}

func TestInvalidateAllDropsEveryDecision(t *testing.T) {
	roles := &fakeRoles{codes: map[string][]string{"alice": {"changfu_view_own"}}}
	r := newTestResolver(t, testDirectory(), roles, &fakeGrants{})

	req := request("alice", "changfu", registry.CapabilityView)
	assert.Equal(t, resolver_model.TierOwn, r.Resolve(context.Background(), req).Tier)

	roles.codes["alice"] = nil
	r.InvalidateAll()

	assert.Equal(t, resolver_model.TierNone, r.Resolve(context.Background(), req).Tier)
}
