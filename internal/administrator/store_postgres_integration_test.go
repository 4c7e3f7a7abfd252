//go:build integration

package administrator_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/administrator"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/sentinel"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *administrator.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = administrator.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "administrador"))
}

func (s *PostgresStoreSuite) TestCreateAndGet() {
	ctx := context.Background()

	created, err := s.store.Create(ctx, administrator.Administrator{
		ExternalRef:  "ext-1",
		Position:     "Director",
		Active:       true,
		RegisteredAt: time.Now().UTC(),
	})
	s.Require().NoError(err)
	s.NotZero(created.ID)

	loaded, err := s.store.GetByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(created.ExternalRef, loaded.ExternalRef)
	s.True(loaded.Active)

	byRef, err := s.store.GetByExternalRef(ctx, "ext-1")
	s.Require().NoError(err)
	s.Equal(created.ID, byRef.ID)
}

func (s *PostgresStoreSuite) TestUniqueReference() {
	ctx := context.Background()

	_, err := s.store.Create(ctx, administrator.Administrator{
		ExternalRef: "ext-1", Active: true, RegisteredAt: time.Now().UTC(),
	})
	s.Require().NoError(err)

	// A retired row still holds the reference.
	_, err = s.store.Create(ctx, administrator.Administrator{
		ExternalRef: "ext-1", Active: false, RegisteredAt: time.Now().UTC(),
	})
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestActiveQueries() {
	ctx := context.Background()

	first, err := s.store.Create(ctx, administrator.Administrator{
		ExternalRef: "ext-1", Active: true, RegisteredAt: time.Now().UTC().Add(-time.Hour),
	})
	s.Require().NoError(err)
	second, err := s.store.Create(ctx, administrator.Administrator{
		ExternalRef: "ext-2", Active: true, RegisteredAt: time.Now().UTC(),
	})
	s.Require().NoError(err)

	exists, err := s.store.ExistsActiveByExternalRef(ctx, "ext-1", 0)
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.store.ExistsActiveByExternalRef(ctx, "ext-1", first.ID)
	s.Require().NoError(err)
	s.False(exists)

	s.Require().NoError(s.store.SetActive(ctx, first.ID, false))

	exists, err = s.store.ExistsActiveByExternalRef(ctx, "ext-1", 0)
	s.Require().NoError(err)
	s.False(exists)

	list, err := s.store.ListActive(ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(second.ID, list[0].ID)
}

func (s *PostgresStoreSuite) TestSetActiveMissing() {
	s.ErrorIs(s.store.SetActive(context.Background(), 999, false), sentinel.ErrNotFound)
}
