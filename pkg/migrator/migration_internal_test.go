package migrator

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type panicSource struct{}

func (panicSource) ForwardText(context.Context) (string, error)   { panic("unexpected read") }
func (panicSource) RollbackText(context.Context) (*string, error) { panic("unexpected read") }

func TestMigration_LoadRejectsNonSQLBeforeReading(t *testing.T) {
	m := &Migration{ID: "0001", Path: "s3://acme/core/0001.txt", source: panicSource{}}

	err := m.Load(context.Background())

	var invalid *ValidationError
	require.True(t, errors.As(err, &invalid))
	require.Equal(t, "s3://acme/core/0001.txt", invalid.Path)
	require.EqualError(t, err, "invalid migration s3://acme/core/0001.txt: migration files must end in .sql")
	require.False(t, m.Loaded())
}
