package model

import (
	"strings"
	"time"
)

// MenuAccessList is a flat allow-list for a single administrative menu item.
// UserIDs is stored as a comma-separated string, matching how the admin
// screens edit it.
type MenuAccessList struct {
	ID        string    `json:"id"`
	MenuName  string    `json:"menu_name"`
	UserIDs   string    `json:"user_ids"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Allows reports whether userID appears in the allow-list.
func (m *MenuAccessList) Allows(userID string) bool {
	for _, id := range strings.Split(m.UserIDs, ",") {
		if strings.TrimSpace(id) == userID {
			return true
		}
	}
	return false
}
