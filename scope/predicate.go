// Package scope translates resolved scope tiers into declarative predicates.
// This is the only point where a tier becomes an executable constraint; the
// consuming query/export layer applies the predicate to its own record store.
package scope

import (
	"github.com/qc-suite/gatekeeper/model"
	resolver_model "github.com/qc-suite/gatekeeper/resolver/model"
)

// PredicateKind tells a consumer how to filter.
type PredicateKind string

const (
	// MatchAll applies no filter at all.
	MatchAll PredicateKind = "all"
	// MatchField restricts to records whose Field equals Value.
	MatchField PredicateKind = "field"
	// MatchNone matches zero records. Distinct from "no filter".
	MatchNone PredicateKind = "none"
)

// Predicate is the declarative scope descriptor. For MatchField, Field names
// the record attribute to compare and Value the required value.
type Predicate struct {
	Kind  PredicateKind `json:"kind"`
	Field string        `json:"field,omitempty"`
	Value string        `json:"value,omitempty"`
}

// Record is the minimal view of a stored record a predicate can be checked
// against in process. Fields maps attribute names (including the owner field)
// to values.
type Record interface {
	Attribute(name string) string
}

// FieldDepartment and FieldCompany are the conventional org attribute names
// consumers expose on their records.
const (
	FieldDepartment = "department_id"
	FieldCompany    = "company_id"
)

// ForTier maps a resolved tier to its predicate. Pure and side-effect free:
// unknown tiers and missing bindings degrade to MatchNone, never to "no
// filter".
func ForTier(tier resolver_model.ScopeTier, ownerField string, principal model.Principal, unit *model.HomeUnit) Predicate {
	switch tier {
	case resolver_model.TierAll:
		return Predicate{Kind: MatchAll}
	case resolver_model.TierCompany:
		if unit == nil {
			return Predicate{Kind: MatchNone}
		}
		return Predicate{Kind: MatchField, Field: FieldCompany, Value: unit.CompanyID}
	case resolver_model.TierDepartment:
		if unit == nil {
			return Predicate{Kind: MatchNone}
		}
		return Predicate{Kind: MatchField, Field: FieldDepartment, Value: unit.DepartmentID}
	case resolver_model.TierOwn:
		return Predicate{Kind: MatchField, Field: ownerField, Value: principal.ID}
	default:
		return Predicate{Kind: MatchNone}
	}
}

// Matches checks one record against the predicate. Consumers that filter in
// their own store translate the predicate instead of calling this.
func (p Predicate) Matches(record Record) bool {
	switch p.Kind {
	case MatchAll:
		return true
	case MatchField:
		return record.Attribute(p.Field) == p.Value
	default:
		return false
	}
}
