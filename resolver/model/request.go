package model

import (
	"time"

	app_model "github.com/qc-suite/gatekeeper/model"
	"github.com/qc-suite/gatekeeper/registry"
)

// AccessRequest asks which scope tier a principal holds for one capability of
// one module. Module may be any accepted spelling; the engine normalizes it
// against the registry.
type AccessRequest struct {
	Principal  app_model.Principal `json:"principal"`
	Module     string              `json:"module"`
	Capability registry.Capability `json:"capability"`
	Timestamp  time.Time           `json:"timestamp"`
}
