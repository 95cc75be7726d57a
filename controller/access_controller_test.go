package controller_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qc-suite/gatekeeper/controller"
	"github.com/qc-suite/gatekeeper/logging"
	"github.com/qc-suite/gatekeeper/model"
	"github.com/qc-suite/gatekeeper/registry"
	resolver_model "github.com/qc-suite/gatekeeper/resolver/model"
	"github.com/qc-suite/gatekeeper/scope"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logging.Log = zap.NewNop()
	os.Exit(m.Run())
}

type mockAccessService struct {
	mock.Mock
}

func (m *mockAccessService) Resolve(ctx context.Context, principal model.Principal, module string, capability registry.Capability) resolver_model.Decision {
	args := m.Called(ctx, principal, module, capability)
	return args.Get(0).(resolver_model.Decision)
}

func (m *mockAccessService) ScopeFor(ctx context.Context, principal model.Principal, module string, capability registry.Capability, ownerField string) (resolver_model.Decision, scope.Predicate) {
	args := m.Called(ctx, principal, module, capability, ownerField)
	return args.Get(0).(resolver_model.Decision), args.Get(1).(scope.Predicate)
}

func (m *mockAccessService) CanEditRecord(ctx context.Context, principal model.Principal, module string, ownerID string, createdAt time.Time) (bool, error) {
	args := m.Called(ctx, principal, module, ownerID, createdAt)
	return args.Bool(0), args.Error(1)
}

// asUser injects the identity keys the auth middleware would set.
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

func setupAccessRouter(svc *mockAccessService, userID string) *gin.Engine {
	router := gin.New()
	api := router.Group("/", asUser(userID))
	controller.NewAccessController(svc).RegisterRoutes(api)
	return router
}

func TestAccessControllerResolve(t *testing.T) {
	svc := new(mockAccessService)
	router := setupAccessRouter(svc, "u-9")

	svc.On("Resolve", mock.Anything, model.Principal{ID: "u-9", IsAuthenticated: true}, "changfu", registry.CapabilityView).
		Return(resolver_model.Decision{Tier: resolver_model.TierDepartment, Matched: []string{"changfu_view_department"}})

	body := strings.NewReader(`{"module":"changfu","capability":"view"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/access/resolve", body)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "department", response["tier"])
	assert.Equal(t, []interface{}{"changfu_view_department"}, response["matched"])
	svc.AssertExpectations(t)
}

func TestAccessControllerResolveRejectsUnknownCapability(t *testing.T) {
	svc := new(mockAccessService)
	router := setupAccessRouter(svc, "u-9")

	body := strings.NewReader(`{"module":"changfu","capability":"approve"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/access/resolve", body)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAccessControllerResolveRejectsMissingFields(t *testing.T) {
	svc := new(mockAccessService)
	router := setupAccessRouter(svc, "u-9")

	body := strings.NewReader(`{"module":"changfu"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/access/resolve", body)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAccessControllerResolveSurfacesFault(t *testing.T) {
	svc := new(mockAccessService)
	router := setupAccessRouter(svc, "u-9")

	svc.On("Resolve", mock.Anything, mock.Anything, "changfu", registry.CapabilityView).
		Return(resolver_model.Decision{
			Tier:   resolver_model.TierNone,
			Reason: "configuration fault",
			Fault:  &resolver_model.ConfigFault{Kind: resolver_model.FaultCompanyMismatch, Detail: "position bound across companies"},
		})

	body := strings.NewReader(`{"module":"changfu","capability":"view"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/access/resolve", body)
	router.ServeHTTP(w, req)

	// A fault is still a 200: the decision is TierNone, not an HTTP failure.
	require.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "none", response["tier"])
	fault, ok := response["fault"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "company_mismatch", fault["kind"])
}

func TestAccessControllerScope(t *testing.T) {
	svc := new(mockAccessService)
	router := setupAccessRouter(svc, "u-9")

	svc.On("ScopeFor", mock.Anything, mock.Anything, "changfu", registry.CapabilityView, "created_by").
		Return(
			resolver_model.Decision{Tier: resolver_model.TierOwn, Matched: []string{"changfu_view_own"}},
			scope.Predicate{Kind: scope.MatchField, Field: "created_by", Value: "u-9"},
		)

	body := strings.NewReader(`{"module":"changfu","capability":"view"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/access/scope", body)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "own", response["tier"])
	predicate, ok := response["predicate"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "field", predicate["kind"])
	assert.Equal(t, "created_by", predicate["field"])
	assert.Equal(t, "u-9", predicate["value"])
	svc.AssertExpectations(t)
}

func TestAccessControllerCanEdit(t *testing.T) {
	svc := new(mockAccessService)
	router := setupAccessRouter(svc, "u-9")

	svc.On("CanEditRecord", mock.Anything, mock.Anything, "changfu", "u-2", mock.Anything).
		Return(true, nil)

	body := strings.NewReader(`{"module":"changfu","ownerId":"u-2","createdAt":"2026-08-30T10:00:00Z"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/access/can-edit", body)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, true, response["allowed"])
	svc.AssertExpectations(t)
}
