package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMenuAccessListAllows(t *testing.T) {
	menu := &MenuAccessList{MenuName: "exports", UserIDs: "u-1, u-2 ,u-3", Active: true}

	assert.True(t, menu.Allows("u-1"))
	assert.True(t, menu.Allows("u-2"))
	assert.True(t, menu.Allows("u-3"))
	assert.False(t, menu.Allows("u-4"))
	// Membership is exact, never a substring match.
	assert.False(t, menu.Allows("u"))

	empty := &MenuAccessList{MenuName: "exports"}
	assert.False(t, empty.Allows("u-1"))
}
