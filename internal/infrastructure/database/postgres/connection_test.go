package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"collection-engine/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestNewConnectionPoolRejectsBadURL(t *testing.T) {
	_, err := NewConnectionPool(context.Background(), config.DatabaseConfig{}, logger)
	assert.EqualError(t, err, "database url is not configured")

	_, err = NewConnectionPool(context.Background(), config.DatabaseConfig{URL: "invalid-url"}, logger)
	assert.ErrorContains(t, err, "parse database url")
}

func TestPoolConfigFor(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		poolConfig, err := poolConfigFor(config.DatabaseConfig{URL: "postgres://user:pw@localhost:5432/collections"})
		require.NoError(t, err)

		assert.Equal(t, int32(10), poolConfig.MaxConns)
		assert.Equal(t, 5*time.Minute, poolConfig.MaxConnIdleTime)
		assert.Equal(t, time.Minute, poolConfig.HealthCheckPeriod)
		assert.Equal(t, "collections", poolConfig.ConnConfig.Database)
		assert.Equal(t, "collection-engine", poolConfig.ConnConfig.RuntimeParams["application_name"])
	})

	t.Run("configured values win", func(t *testing.T) {
		poolConfig, err := poolConfigFor(config.DatabaseConfig{
			URL:               "postgres://user:pw@localhost:5432/collections?application_name=importer-7",
			MaxConns:          25,
			MaxConnIdleTime:   time.Minute,
			HealthCheckPeriod: 30 * time.Second,
		})
		require.NoError(t, err)

		assert.Equal(t, int32(25), poolConfig.MaxConns)
		assert.Equal(t, time.Minute, poolConfig.MaxConnIdleTime)
		assert.Equal(t, 30*time.Second, poolConfig.HealthCheckPeriod)
		assert.Equal(t, "importer-7", poolConfig.ConnConfig.RuntimeParams["application_name"])
	})
}

func TestPingTimeout(t *testing.T) {
	assert.Equal(t, 5*time.Second, pingTimeout(config.DatabaseConfig{}))
	assert.Equal(t, time.Second, pingTimeout(config.DatabaseConfig{PingTimeout: time.Second}))
}

func TestPing(t *testing.T) {
	t.Run("database down", func(t *testing.T) {
		db := new(MockPinger)
		db.On("Ping", mock.Anything).Return(errors.New("connection refused")).Once()

		err := ping(context.Background(), db, time.Second, logger)
		assert.ErrorContains(t, err, "ping database: connection refused")
		db.AssertExpectations(t)
	})

	t.Run("ping carries a deadline", func(t *testing.T) {
		db := new(MockPinger)
		db.On("Ping", mock.MatchedBy(func(ctx context.Context) bool {
			_, ok := ctx.Deadline()
			return ok
		})).Return(nil).Once()

		require.NoError(t, ping(context.Background(), db, time.Second, logger))
		db.AssertExpectations(t)
	})
}
