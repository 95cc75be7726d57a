package errors

import "errors"

var (
	ErrCompanyNotFound    = errors.New("company not found")
	ErrCompanyConflict    = errors.New("company conflict")
	ErrInvalidCompanyData = errors.New("invalid company data")

	ErrDepartmentNotFound    = errors.New("department not found")
	ErrDepartmentConflict    = errors.New("department conflict")
	ErrInvalidDepartmentData = errors.New("invalid department data")

	ErrPositionNotFound    = errors.New("position not found")
	ErrPositionConflict    = errors.New("position conflict")
	ErrInvalidPositionData = errors.New("invalid position data")

	// ErrCompanyMismatch marks a position whose department belongs to a
	// different company. This is a data-integrity fault to report, not repair.
	ErrCompanyMismatch = errors.New("position and department belong to different companies")
)
