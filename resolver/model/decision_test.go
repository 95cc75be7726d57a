package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeTierOrdering(t *testing.T) {
	assert.True(t, TierAll.Covers(TierCompany))
	assert.True(t, TierCompany.Covers(TierDepartment))
	assert.True(t, TierDepartment.Covers(TierOwn))
	assert.True(t, TierOwn.Covers(TierNone))
	assert.False(t, TierOwn.Covers(TierDepartment))
	assert.True(t, TierOwn.Covers(TierOwn))
}

func TestScopeTierString(t *testing.T) {
	assert.Equal(t, "none", TierNone.String())
	assert.Equal(t, "own", TierOwn.String())
	assert.Equal(t, "department", TierDepartment.String())
	assert.Equal(t, "company", TierCompany.String())
	assert.Equal(t, "all", TierAll.String())
	assert.Equal(t, "none", ScopeTier(42).String())
}

func TestConfigFaultError(t *testing.T) {
	fault := &ConfigFault{Kind: FaultCompanyMismatch, Detail: "position bound across companies"}
	assert.Equal(t, "company_mismatch: position bound across companies", fault.Error())
}
