package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qc-suite/gatekeeper/model"
	resolver_model "github.com/qc-suite/gatekeeper/resolver/model"
)

type mapRecord map[string]string

func (r mapRecord) Attribute(name string) string { return r[name] }

func TestForTier(t *testing.T) {
	principal := model.Principal{ID: "u-9", IsAuthenticated: true}
	unit := &model.HomeUnit{CompanyID: "co-1", DepartmentID: "dept-7", PositionID: "pos-3"}

	tests := []struct {
		name string
		tier resolver_model.ScopeTier
		unit *model.HomeUnit
		want Predicate
	}{
		{
			name: "none matches nothing",
			tier: resolver_model.TierNone,
			unit: unit,
			want: Predicate{Kind: MatchNone},
		},
		{
			name: "own filters on the owner field",
			tier: resolver_model.TierOwn,
			unit: unit,
			want: Predicate{Kind: MatchField, Field: "created_by", Value: "u-9"},
		},
		{
			name: "department filters on the home department",
			tier: resolver_model.TierDepartment,
			unit: unit,
			want: Predicate{Kind: MatchField, Field: FieldDepartment, Value: "dept-7"},
		},
		{
			name: "company filters on the home company",
			tier: resolver_model.TierCompany,
			unit: unit,
			want: Predicate{Kind: MatchField, Field: FieldCompany, Value: "co-1"},
		},
		{
			name: "all applies no filter",
			tier: resolver_model.TierAll,
			unit: unit,
			want: Predicate{Kind: MatchAll},
		},
		{
			name: "department tier without a binding degrades to none",
			tier: resolver_model.TierDepartment,
			unit: nil,
			want: Predicate{Kind: MatchNone},
		},
		{
			name: "company tier without a binding degrades to none",
			tier: resolver_model.TierCompany,
			unit: nil,
			want: Predicate{Kind: MatchNone},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ForTier(tt.tier, "created_by", principal, tt.unit)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestForTierOwnWithoutBinding(t *testing.T) {
	// Own-tier scope does not need an org binding at all.
	principal := model.Principal{ID: "u-9", IsAuthenticated: true}
	got := ForTier(resolver_model.TierOwn, "created_by", principal, nil)
	assert.Equal(t, Predicate{Kind: MatchField, Field: "created_by", Value: "u-9"}, got)
}

func TestPredicateMatches(t *testing.T) {
	record := mapRecord{"created_by": "u-9", "department_id": "dept-7"}

	assert.True(t, Predicate{Kind: MatchAll}.Matches(record))
	assert.True(t, Predicate{Kind: MatchField, Field: "created_by", Value: "u-9"}.Matches(record))
	assert.False(t, Predicate{Kind: MatchField, Field: "created_by", Value: "u-2"}.Matches(record))
	assert.False(t, Predicate{Kind: MatchField, Field: "missing", Value: "x"}.Matches(record))
	assert.False(t, Predicate{Kind: MatchNone}.Matches(record))
}
