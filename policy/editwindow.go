// Package policy holds the ownership edit-window rule: a time-bounded
// widening that lets one user modify another user's submitted records. It
// widens edit only; view scope is untouched.
package policy

import (
	"sync"
	"time"

	"go.uber.org/zap"

	logger "github.com/qc-suite/gatekeeper/logging"
	"github.com/qc-suite/gatekeeper/model"
)

// DefaultEditWindowDays applies when the parameter store has no override.
const DefaultEditWindowDays = 7

// Config is the typed snapshot of the cross-cutting override parameters. It
// replaces ad hoc key/value reads at call sites: the policy is constructed
// with one and swapped atomically on reload.
type Config struct {
	CrossUserEditEnabled bool
	EditWindowDays       int
	Modules              map[string]model.ModuleFlags
}

// ConfigLoader rebuilds a Config from the parameter store. The reload
// boundary is explicit: nothing else mutates a live Config.
type ConfigLoader func() (Config, error)

// EditWindow evaluates whether a foreign record is still editable. Consulted
// only after the resolver has confirmed edit capability; it is the explicit
// widening mechanism for records the acting user does not own.
type EditWindow struct {
	mu     sync.RWMutex
	config Config
}

func NewEditWindow(config Config) *EditWindow {
	if config.EditWindowDays <= 0 {
		config.EditWindowDays = DefaultEditWindowDays
	}
	return &EditWindow{config: config}
}

// Reload atomically swaps in a fresh Config.
func (w *EditWindow) Reload(loader ConfigLoader) error {
	config, err := loader()
	if err != nil {
		return err
	}
	if config.EditWindowDays <= 0 {
		config.EditWindowDays = DefaultEditWindowDays
	}
	w.mu.Lock()
	w.config = config
	w.mu.Unlock()
	logger.Info("Edit-window policy reloaded",
		zap.Bool("crossUserEdit", config.CrossUserEditEnabled),
		zap.Int("editWindowDays", config.EditWindowDays))
	return nil
}

// Snapshot returns the live configuration.
func (w *EditWindow) Snapshot() Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

// CanEditForeign reports whether a record created at createdAt may still be
// edited by a user other than its author. All three gates are hard: the
// global switch, the module's edit_others flag, and the day window measured
// from creation time. A record exactly editWindowDays old is still editable;
// one day past is not, regardless of flags.
func (w *EditWindow) CanEditForeign(moduleCode string, createdAt time.Time, now time.Time) bool {
	w.mu.RLock()
	config := w.config
	w.mu.RUnlock()

	if !config.CrossUserEditEnabled {
		return false
	}
	flags, ok := config.Modules[moduleCode]
	if !ok || !flags.EditOthers {
		return false
	}

	elapsedDays := int(now.Sub(createdAt).Hours() / 24)
	return elapsedDays <= config.EditWindowDays
}
