package model

import "time"

type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PermissionKind classifies what a capability code governs.
type PermissionKind string

const (
	KindModule    PermissionKind = "module"
	KindOperation PermissionKind = "operation"
	KindData      PermissionKind = "data"
)

// Permission is one capability in the catalog. Code is globally unique and
// immutable once any grant references it, e.g. "changfu_view_department" or
// "changfu_edit".
type Permission struct {
	ID          string         `json:"id"`
	Code        string         `json:"code"`
	Name        string         `json:"name"`
	Kind        PermissionKind `json:"kind"`
	Module      string         `json:"module"`
	Description string         `json:"description,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// OrgUnitKind identifies which directory entity a direct grant hangs off.
type OrgUnitKind string

const (
	UnitCompany    OrgUnitKind = "company"
	UnitDepartment OrgUnitKind = "department"
	UnitPosition   OrgUnitKind = "position"
)

// OrgUnitGrant attaches a Permission directly to a Company, Department or
// Position. Inherited grants on a department also cover every descendant
// department.
type OrgUnitGrant struct {
	ID           string      `json:"id"`
	UnitKind     OrgUnitKind `json:"unit_kind"`
	UnitID       string      `json:"unit_id"`
	PermissionID string      `json:"permission_id"`
	Code         string      `json:"code"`
	Inherited    bool        `json:"inherited"`
	CreatedAt    time.Time   `json:"created_at"`
}
