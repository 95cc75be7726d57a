package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gate_errors "github.com/qc-suite/gatekeeper/errors"
	"github.com/qc-suite/gatekeeper/model"
)

type fakeParams struct {
	values map[string]string
	err    error
}

func (f *fakeParams) GetParameter(_ context.Context, key string) (*model.OverrideParameter, error) {
	if f.err != nil {
		return nil, f.err
	}
	value, ok := f.values[key]
	if !ok {
		return nil, gate_errors.ErrParameterNotFound
	}
	return &model.OverrideParameter{Key: key, Value: value}, nil
}

func TestParameterLoaderReadsOverrides(t *testing.T) {
	params := &fakeParams{values: map[string]string{
		model.ParamCrossUserEdit:  "true",
		model.ParamEditWindowDays: "14",
		model.ParamModuleFlags:    `{"changfu":{"view":true,"edit":true,"edit_others":true}}`,
	}}

	config, err := NewParameterLoader(context.Background(), params)()
	require.NoError(t, err)

	assert.True(t, config.CrossUserEditEnabled)
	assert.Equal(t, 14, config.EditWindowDays)
	assert.True(t, config.Modules["changfu"].EditOthers)
	assert.False(t, config.Modules["changfu"].Delete)
}

func TestParameterLoaderDefaultsOnMissingKeys(t *testing.T) {
	config, err := NewParameterLoader(context.Background(), &fakeParams{})()
	require.NoError(t, err)

	assert.False(t, config.CrossUserEditEnabled)
	assert.Equal(t, DefaultEditWindowDays, config.EditWindowDays)
	assert.Empty(t, config.Modules)
}

func TestParameterLoaderSkipsMalformedValues(t *testing.T) {
	params := &fakeParams{values: map[string]string{
		model.ParamCrossUserEdit:  "definitely",
		model.ParamEditWindowDays: "-3",
		model.ParamModuleFlags:    "{not json",
	}}

	config, err := NewParameterLoader(context.Background(), params)()
	require.NoError(t, err)

	// Each malformed value falls back independently.
	assert.False(t, config.CrossUserEditEnabled)
	assert.Equal(t, DefaultEditWindowDays, config.EditWindowDays)
	assert.Empty(t, config.Modules)
}

func TestParameterLoaderPropagatesStoreFailure(t *testing.T) {
	params := &fakeParams{err: errors.New("neo4j unavailable")}

	_, err := NewParameterLoader(context.Background(), params)()
	assert.Error(t, err)
}
