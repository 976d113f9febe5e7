package rolemanager

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolemanager/rbac-engine/internal/config"
	"github.com/rolemanager/rbac-engine/internal/store"
)

func TestNewRejectsNilStore(t *testing.T) {
	_, err := New(Deps{}, config.Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestNewWiresCollaboratorsWithDefaults(t *testing.T) {
	eng, err := New(Deps{Store: store.NewMemory()}, config.Options{
		ConsoleLogLevel: "info",
		DBLogLevel:      "warning",
	})
	require.NoError(t, err)
	require.NotNil(t, eng.Users())
	require.NotNil(t, eng.Groups())
	require.NotNil(t, eng.Rights())
	require.NotNil(t, eng.RightGroups())
	require.NotNil(t, eng.RightTypes())
	require.NotNil(t, eng.Roles())
	require.NotNil(t, eng.Contexts())

	v, err := eng.CurrentVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestNewRejectsUnknownLogLevel(t *testing.T) {
	_, err := New(Deps{Store: store.NewMemory()}, config.Options{
		ConsoleLogLevel: "not-a-level",
		DBLogLevel:      "warning",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}
