//go:build integration

package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/iliyamo/tourism-portal/internal/database"
	"github.com/iliyamo/tourism-portal/internal/repository"
	"github.com/iliyamo/tourism-portal/internal/session"
)

// StorageContractSuite runs the same checks against every durable backend.
type StorageContractSuite struct {
	suite.Suite
	storage session.Storage
	ctx     context.Context
}

func (s *StorageContractSuite) SetupTest() { s.ctx = context.Background() }

func (s *StorageContractSuite) TestRoundTrip() {
	_, ok, err := s.storage.Get(s.ctx, "c-rt", session.KeyToken)
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.storage.Set(s.ctx, "c-rt", session.KeyToken, "tok"))
	s.Require().NoError(s.storage.Set(s.ctx, "c-rt", session.KeyToken, "tok-2"))
	v, ok, err := s.storage.Get(s.ctx, "c-rt", session.KeyToken)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal("tok-2", v)
}

func (s *StorageContractSuite) TestDeleteIsScopedAndIdempotent() {
	s.Require().NoError(s.storage.Set(s.ctx, "c-a", session.KeyToken, "a"))
	s.Require().NoError(s.storage.Set(s.ctx, "c-a", session.KeyPendingCourse, "course"))
	s.Require().NoError(s.storage.Set(s.ctx, "c-b", session.KeyToken, "b"))

	s.Require().NoError(s.storage.Delete(s.ctx, "c-a", session.KeyToken, session.KeyUser))
	s.Require().NoError(s.storage.Delete(s.ctx, "c-a", session.KeyToken))

	_, ok, err := s.storage.Get(s.ctx, "c-a", session.KeyToken)
	s.Require().NoError(err)
	s.False(ok)
	v, ok, err := s.storage.Get(s.ctx, "c-a", session.KeyPendingCourse)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal("course", v)
	v, _, err = s.storage.Get(s.ctx, "c-b", session.KeyToken)
	s.Require().NoError(err)
	s.Equal("b", v)
}

func TestRedisStorage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	addr, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(addr)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })

	suite.Run(t, &StorageContractSuite{storage: session.NewRedisStorage(rdb, "test", time.Hour)})
}

func TestMySQLStorage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	container, err := tcmysql.Run(ctx, "mysql:8.0",
		tcmysql.WithDatabase("portal"),
		tcmysql.WithUsername("portal"),
		tcmysql.WithPassword("portal"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "parseTime=true", "loc=UTC")
	require.NoError(t, err)
	db, err := database.OpenDSN(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(ctx, db))

	repo := repository.NewClientStorageRepo(db)
	suite.Run(t, &StorageContractSuite{storage: repo})

	n, err := repo.PurgeOlderThan(ctx, 1)
	require.NoError(t, err)
	require.Zero(t, n)
}
