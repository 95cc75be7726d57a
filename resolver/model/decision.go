package model

import "time"

// ScopeTier is the ordered access level describing how much of a record set a
// user may see or act on. Higher tiers subsume lower ones.
type ScopeTier int

const (
	TierNone ScopeTier = iota
	TierOwn
	TierDepartment
	TierCompany
	TierAll
)

func (t ScopeTier) String() string {
	switch t {
	case TierOwn:
		return "own"
	case TierDepartment:
		return "department"
	case TierCompany:
		return "company"
	case TierAll:
		return "all"
	default:
		return "none"
	}
}

// Covers reports whether the tier subsumes other.
func (t ScopeTier) Covers(other ScopeTier) bool {
	return t >= other
}

// FaultKind classifies a structural configuration fault detected during
// resolution.
type FaultKind string

const (
	FaultCompanyMismatch     FaultKind = "company_mismatch"
	FaultDuplicateCapability FaultKind = "duplicate_capability"
	FaultStoreFailure        FaultKind = "store_failure"
)

// ConfigFault describes a catalog or directory inconsistency. It is surfaced
// to administrators; the decision that carries it always fails closed.
type ConfigFault struct {
	Kind   FaultKind `json:"kind"`
	Detail string    `json:"detail"`
}

func (f *ConfigFault) Error() string {
	return string(f.Kind) + ": " + f.Detail
}

// Decision is the outcome of one resolution. Tier is TierNone both for a
// plain "no permission" and for a fault; Fault distinguishes the two so
// callers can escalate configuration problems without leaking them to end
// users.
type Decision struct {
	Tier    ScopeTier    `json:"tier"`
	Reason  string       `json:"reason,omitempty"`
	Fault   *ConfigFault `json:"fault,omitempty"`
	Matched []string     `json:"matched_codes,omitempty"`
}

// DecisionCacheEntry pairs a cached decision with its expiry.
type DecisionCacheEntry struct {
	Decision  Decision
	ExpiresAt time.Time
}
