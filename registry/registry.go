// Package registry maps human-readable module names to canonical capability
// code prefixes. The set of modules is closed: it is loaded once from
// configuration and an unknown name is an error, never a generated code.
package registry

import (
	"fmt"
	"strings"

	"github.com/qc-suite/gatekeeper/config"
	gate_errors "github.com/qc-suite/gatekeeper/errors"
)

// Capability is the kind of access being requested for a module.
type Capability string

const (
	CapabilityView   Capability = "view"
	CapabilityEdit   Capability = "edit"
	CapabilityDelete Capability = "delete"
	CapabilityExport Capability = "export"
)

// ParseCapability validates a capability kind supplied by a caller.
func ParseCapability(s string) (Capability, error) {
	switch Capability(strings.ToLower(strings.TrimSpace(s))) {
	case CapabilityView:
		return CapabilityView, nil
	case CapabilityEdit:
		return CapabilityEdit, nil
	case CapabilityDelete:
		return CapabilityDelete, nil
	case CapabilityExport:
		return CapabilityExport, nil
	default:
		return "", gate_errors.ErrUnknownCapability
	}
}

// ModuleRegistry is the closed set of registered modules keyed by every
// accepted spelling (canonical code, display name, aliases), all normalized.
type ModuleRegistry struct {
	byName map[string]string
	codes  map[string]bool
}

// NewRegistry builds a registry from configuration entries. Duplicate codes or
// colliding aliases are a load-time error.
func NewRegistry(entries []config.ModuleEntry) (*ModuleRegistry, error) {
	r := &ModuleRegistry{
		byName: make(map[string]string),
		codes:  make(map[string]bool),
	}
	for _, entry := range entries {
		code := normalize(entry.Code)
		if code == "" {
			return nil, fmt.Errorf("module entry %q: empty code", entry.Name)
		}
		if r.codes[code] {
			return nil, fmt.Errorf("module entry %q: duplicate code %q", entry.Name, code)
		}
		r.codes[code] = true
		names := append([]string{entry.Code, entry.Name}, entry.Aliases...)
		for _, name := range names {
			key := normalize(name)
			if key == "" {
				continue
			}
			if existing, ok := r.byName[key]; ok && existing != code {
				return nil, fmt.Errorf("module name %q maps to both %q and %q", name, existing, code)
			}
			r.byName[key] = code
		}
	}
	return r, nil
}

// Normalize resolves a module name to its canonical code. Unknown names fail
// closed with ErrUnknownModule.
func (r *ModuleRegistry) Normalize(module string) (string, error) {
	code, ok := r.byName[normalize(module)]
	if !ok {
		return "", gate_errors.ErrUnknownModule
	}
	return code, nil
}

// Codes returns the registered canonical module codes.
func (r *ModuleRegistry) Codes() []string {
	codes := make([]string, 0, len(r.codes))
	for code := range r.codes {
		codes = append(codes, code)
	}
	return codes
}

// ValidateCode checks a capability code against the registry: the module
// prefix must be registered and the code must belong to the module's closed
// code family. Used at catalog load/administration time so naming drift is an
// admin-facing error instead of a silent resolution miss.
func (r *ModuleRegistry) ValidateCode(code string) error {
	for moduleCode := range r.codes {
		for _, candidate := range CodeFamilyAll(moduleCode) {
			if code == candidate {
				return nil
			}
		}
	}
	return fmt.Errorf("capability code %q: %w", code, gate_errors.ErrUnknownModule)
}

// ViewCodes returns the tiered view code family for a module, ordered from
// own to all.
func ViewCodes(moduleCode string) []string {
	return []string{
		moduleCode + "_view_own",
		moduleCode + "_view_department",
		moduleCode + "_view_company",
		moduleCode + "_view_all",
	}
}

// BareCode returns the single code used by non-view capabilities.
func BareCode(moduleCode string, capability Capability) string {
	return moduleCode + "_" + string(capability)
}

// CodeFamilyAll enumerates every valid capability code of a module.
func CodeFamilyAll(moduleCode string) []string {
	codes := ViewCodes(moduleCode)
	for _, cap := range []Capability{CapabilityEdit, CapabilityDelete, CapabilityExport} {
		codes = append(codes, BareCode(moduleCode, cap))
	}
	return codes
}

func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, " ", "_")
}
