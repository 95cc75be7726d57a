package policy

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"go.uber.org/zap"

	gate_errors "github.com/qc-suite/gatekeeper/errors"
	logger "github.com/qc-suite/gatekeeper/logging"
	"github.com/qc-suite/gatekeeper/model"
)

// ParameterSource is the slice of the parameter store the loader reads.
type ParameterSource interface {
	GetParameter(ctx context.Context, key string) (*model.OverrideParameter, error)
}

// NewParameterLoader builds a ConfigLoader over the parameter store. Missing
// keys fall back to defaults; a malformed value is logged and skipped rather
// than failing the whole reload.
func NewParameterLoader(ctx context.Context, params ParameterSource) ConfigLoader {
	return func() (Config, error) {
		config := Config{
			CrossUserEditEnabled: false,
			EditWindowDays:       DefaultEditWindowDays,
			Modules:              map[string]model.ModuleFlags{},
		}

		if value, err := lookup(ctx, params, model.ParamCrossUserEdit); err != nil {
			return Config{}, err
		} else if value != "" {
			enabled, err := strconv.ParseBool(value)
			if err != nil {
				logger.Warn("Ignoring malformed cross-user-edit parameter", zap.String("value", value))
			} else {
				config.CrossUserEditEnabled = enabled
			}
		}

		if value, err := lookup(ctx, params, model.ParamEditWindowDays); err != nil {
			return Config{}, err
		} else if value != "" {
			days, err := strconv.Atoi(value)
			if err != nil || days <= 0 {
				logger.Warn("Ignoring malformed edit-window-days parameter", zap.String("value", value))
			} else {
				config.EditWindowDays = days
			}
		}

		if value, err := lookup(ctx, params, model.ParamModuleFlags); err != nil {
			return Config{}, err
		} else if value != "" {
			var flags map[string]model.ModuleFlags
			if err := json.Unmarshal([]byte(value), &flags); err != nil {
				logger.Warn("Ignoring malformed module-flags parameter", zap.Error(err))
			} else {
				config.Modules = flags
			}
		}

		return config, nil
	}
}

func lookup(ctx context.Context, params ParameterSource, key string) (string, error) {
	param, err := params.GetParameter(ctx, key)
	if err != nil {
		if errors.Is(err, gate_errors.ErrParameterNotFound) {
			return "", nil
		}
		return "", err
	}
	return param.Value, nil
}
