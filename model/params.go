package model

import "time"

// Well-known override parameter keys. The params table is a generic key/value
// store; these are the keys the policy layer reads.
const (
	ParamCrossUserEdit  = "cross_user_edit_enabled"
	ParamEditWindowDays = "edit_window_days"
	ParamModuleFlags    = "module_flags"
)

// OverrideParameter is one entry of the generic key/value parameter store.
// Value holds either a scalar ("true", "7") or a JSON blob keyed by module.
type OverrideParameter struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ModuleFlags is the per-module flag object stored under ParamModuleFlags,
// one entry per module code.
type ModuleFlags struct {
	View       bool `json:"view"`
	Edit       bool `json:"edit"`
	EditOthers bool `json:"edit_others"`
	Delete     bool `json:"delete"`
	Manage     bool `json:"manage"`
}
