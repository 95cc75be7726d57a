package audit

import (
	"encoding/json"
	"time"
)

// AuditLog records one administrative mutation or one access decision. For
// decisions, Module/Capability/Tier carry the resolution outcome and Fault
// flags a configuration problem routed to administrators.
type AuditLog struct {
	Timestamp     time.Time       `json:"timestamp"`
	UserID        string          `json:"user_id"`
	Action        string          `json:"action"`
	ResourceID    string          `json:"resource_id,omitempty"`
	Module        string          `json:"module,omitempty"`
	Capability    string          `json:"capability,omitempty"`
	Tier          string          `json:"tier,omitempty"`
	AccessGranted bool            `json:"access_granted"`
	Fault         string          `json:"fault,omitempty"`
	ChangeDetails json.RawMessage `json:"change_details,omitempty"`
}
