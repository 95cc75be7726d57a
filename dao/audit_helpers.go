package dao

import (
	"context"
	"encoding/json"
)

// requestingUser pulls the acting admin's ID out of the request context. The
// identity middleware sets it; background jobs fall back to "system".
func requestingUser(ctx context.Context) string {
	if userID, ok := ctx.Value("requestingUserID").(string); ok && userID != "" {
		return userID
	}
	return "system"
}

// changeDetails marshals an old/new pair for the audit trail.
func changeDetails(oldValue, newValue interface{}) json.RawMessage {
	details, err := json.Marshal(map[string]interface{}{
		"old": oldValue,
		"new": newValue,
	})
	if err != nil {
		return nil
	}
	return details
}
