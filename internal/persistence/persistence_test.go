package persistence

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/scan-token-service/internal/config"
	"github.com/spec-kit/scan-token-service/migrations"
)

func TestMigrationNames(t *testing.T) {
	fsys := fstest.MapFS{
		"002_b.sql":    {Data: []byte("SELECT 2")},
		"001_a.sql":    {Data: []byte("SELECT 1")},
		"README.md":    {Data: []byte("docs")},
		"nested/x.sql": {Data: []byte("SELECT 3")},
	}

	names, err := MigrationNames(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_a.sql", "002_b.sql"}, names)
}

func TestMigrationNames_Embedded(t *testing.T) {
	names, err := MigrationNames(migrations.FS)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_create_scan_events.sql", "002_create_token_issuances.sql"}, names)
}

func TestRunMigrations_NoPool(t *testing.T) {
	err := RunMigrations(context.Background(), nil, migrations.FS, zap.NewNop())
	assert.NoError(t, err)
}

func TestPostgres_WithoutDSN(t *testing.T) {
	pg, err := NewPostgres(context.Background(), config.PostgresConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, pg.PoolHandle())
	assert.Error(t, pg.Ping(context.Background()))
	pg.Close()
}

func TestRedis(t *testing.T) {
	t.Run("disabled without address", func(t *testing.T) {
		r := NewRedis(context.Background(), config.RedisConfig{}, zap.NewNop())
		assert.False(t, r.Enabled())
		assert.Error(t, r.Ping(context.Background()))
		r.Close()
	})

	t.Run("connects", func(t *testing.T) {
		srv := miniredis.RunT(t)
		r := NewRedis(context.Background(), config.RedisConfig{Addr: srv.Addr()}, zap.NewNop())
		defer r.Close()
		assert.True(t, r.Enabled())
		assert.NoError(t, r.Ping(context.Background()))
	})
}
