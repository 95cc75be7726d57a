package model

import "time"

type UserIdentity struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	IsSuperuser bool      `json:"is_superuser"`
	Binding     *HomeUnit `json:"binding,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Principal is the authenticated identity an external auth layer supplies per
// request. It carries only what resolution needs.
type Principal struct {
	ID              string `json:"id"`
	IsSuperuser     bool   `json:"is_superuser"`
	IsAuthenticated bool   `json:"is_authenticated"`
}

type UserSearchCriteria struct {
	ID           string `json:"id,omitempty"`
	Username     string `json:"username,omitempty"`
	CompanyID    string `json:"company_id,omitempty"`
	DepartmentID string `json:"department_id,omitempty"`
	Limit        int    `json:"limit,omitempty"`
	Offset       int    `json:"offset,omitempty"`
}
