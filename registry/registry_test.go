package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qc-suite/gatekeeper/config"
	gate_errors "github.com/qc-suite/gatekeeper/errors"
)

func newRegistry(t *testing.T) *ModuleRegistry {
	t.Helper()
	reg, err := NewRegistry([]config.ModuleEntry{
		{Code: "changfu", Name: "Changfu Report", Aliases: []string{"changfu report", "CF"}},
		{Code: "dongtai", Name: "Dongtai Report"},
	})
	require.NoError(t, err)
	return reg
}

func TestNormalizeAcceptsEverySpelling(t *testing.T) {
	reg := newRegistry(t)

	for _, spelling := range []string{"changfu", "Changfu Report", "CHANGFU REPORT", "  cf  ", "changfu_report"} {
		code, err := reg.Normalize(spelling)
		require.NoError(t, err, spelling)
		assert.Equal(t, "changfu", code)
	}
}

func TestNormalizeUnknownModuleFailsClosed(t *testing.T) {
	reg := newRegistry(t)

	_, err := reg.Normalize("zhoubao")
	assert.ErrorIs(t, err, gate_errors.ErrUnknownModule)

	// Never derive a code from an unknown name, no matter how plausible.
	_, err = reg.Normalize("changfu2")
	assert.ErrorIs(t, err, gate_errors.ErrUnknownModule)
}

func TestNewRegistryRejectsDuplicateCode(t *testing.T) {
	_, err := NewRegistry([]config.ModuleEntry{
		{Code: "changfu", Name: "Changfu Report"},
		{Code: "Changfu", Name: "Changfu Again"},
	})
	assert.Error(t, err)
}

func TestNewRegistryRejectsAliasCollision(t *testing.T) {
	_, err := NewRegistry([]config.ModuleEntry{
		{Code: "changfu", Name: "Changfu Report"},
		{Code: "dongtai", Name: "Dongtai Report", Aliases: []string{"changfu report"}},
	})
	assert.Error(t, err)
}

func TestNewRegistryRejectsEmptyCode(t *testing.T) {
	_, err := NewRegistry([]config.ModuleEntry{{Code: "  ", Name: "Nameless"}})
	assert.Error(t, err)
}

func TestValidateCode(t *testing.T) {
	reg := newRegistry(t)

	assert.NoError(t, reg.ValidateCode("changfu_view_own"))
	assert.NoError(t, reg.ValidateCode("changfu_view_all"))
	assert.NoError(t, reg.ValidateCode("dongtai_edit"))
	assert.NoError(t, reg.ValidateCode("dongtai_export"))

	assert.ErrorIs(t, reg.ValidateCode("changfu_edit_own"), gate_errors.ErrUnknownModule)
	assert.ErrorIs(t, reg.ValidateCode("zhoubao_view_own"), gate_errors.ErrUnknownModule)
	assert.ErrorIs(t, reg.ValidateCode("changfu"), gate_errors.ErrUnknownModule)
}

func TestParseCapability(t *testing.T) {
	for input, want := range map[string]Capability{
		"view":   CapabilityView,
		"EDIT":   CapabilityEdit,
		" delete ": CapabilityDelete,
		"export": CapabilityExport,
	} {
		got, err := ParseCapability(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got)
	}

	_, err := ParseCapability("approve")
	assert.ErrorIs(t, err, gate_errors.ErrUnknownCapability)
}

func TestCodeFamilies(t *testing.T) {
	assert.Equal(t, []string{
		"changfu_view_own",
		"changfu_view_department",
		"changfu_view_company",
		"changfu_view_all",
	}, ViewCodes("changfu"))

	assert.Equal(t, "changfu_edit", BareCode("changfu", CapabilityEdit))
	assert.Len(t, CodeFamilyAll("changfu"), 7)
}
