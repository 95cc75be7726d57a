package dao_test

import (
	"context"
	"os"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	testify_mock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qc-suite/gatekeeper/dao"
	gate_errors "github.com/qc-suite/gatekeeper/errors"
	"github.com/qc-suite/gatekeeper/logging"
	"github.com/qc-suite/gatekeeper/model"
	"github.com/qc-suite/gatekeeper/test/mock"
)

func TestMain(m *testing.M) {
	logging.Log = zap.NewNop()
	os.Exit(m.Run())
}

func TestParamDAOGetParameter(t *testing.T) {
	driver := new(mock.MockDriver)
	session := new(mock.MockSession)
	result := new(mock.MockResult)

	node := neo4j.Node{Props: map[string]interface{}{
		"id":        "param-1",
		"key":       "edit_window_days",
		"value":     "14",
		"updatedAt": "2026-08-30T10:00:00Z",
	}}

	driver.On("NewSession", testify_mock.Anything).Return(session)
	session.On("Run", testify_mock.Anything, testify_mock.Anything, testify_mock.Anything).Return(result, nil)
	session.On("Close").Return(nil)
	result.On("Next").Return(true).Once()
	result.On("Record").Return(&neo4j.Record{Values: []interface{}{node}})

	paramDAO := dao.NewParamDAO(driver, new(mock.MockAuditService))

	param, err := paramDAO.GetParameter(context.Background(), "edit_window_days")
	require.NoError(t, err)
	assert.Equal(t, "edit_window_days", param.Key)
	assert.Equal(t, "14", param.Value)
	assert.Equal(t, 2026, param.UpdatedAt.Year())
}

func TestParamDAOGetParameterNotFound(t *testing.T) {
	driver := new(mock.MockDriver)
	session := new(mock.MockSession)
	result := new(mock.MockResult)

	driver.On("NewSession", testify_mock.Anything).Return(session)
	session.On("Run", testify_mock.Anything, testify_mock.Anything, testify_mock.Anything).Return(result, nil)
	session.On("Close").Return(nil)
	result.On("Next").Return(false)

	paramDAO := dao.NewParamDAO(driver, new(mock.MockAuditService))

	_, err := paramDAO.GetParameter(context.Background(), "missing")
	assert.ErrorIs(t, err, gate_errors.ErrParameterNotFound)
}

func TestParamDAOSetParameterAudits(t *testing.T) {
	driver := new(mock.MockDriver)
	session := new(mock.MockSession)
	tx := new(mock.MockTransaction)
	result := new(mock.MockResult)
	auditService := new(mock.MockAuditService)

	driver.On("NewSession", testify_mock.Anything).Return(session)
	session.On("Close").Return(nil)
	tx.On("Run", testify_mock.Anything, testify_mock.Anything).Return(result, nil)
	result.On("Next").Return(true).Once()
	result.On("Record").Return(&neo4j.Record{Values: []interface{}{"param-1"}})
	session.On("WriteTransaction", testify_mock.Anything, testify_mock.Anything).
		Return(nil, nil).
		Run(func(args testify_mock.Arguments) {
			work := args.Get(0).(neo4j.TransactionWork)
			_, _ = work(tx)
		})
	auditService.On("LogAccess", testify_mock.Anything, testify_mock.Anything).Return(nil)

	paramDAO := dao.NewParamDAO(driver, auditService)

	err := paramDAO.SetParameter(context.Background(), model.OverrideParameter{
		Key:   "cross_user_edit_enabled",
		Value: "true",
	})
	require.NoError(t, err)

	auditService.AssertCalled(t, "LogAccess", testify_mock.Anything, testify_mock.Anything)
	tx.AssertExpectations(t)
}
