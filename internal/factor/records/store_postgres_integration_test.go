//go:build integration

package records_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"domainfactor/internal/factor/records"
	"domainfactor/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *records.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = records.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
	s.Require().NoError(s.store.EnsureSchema(context.Background()), "schema creation is idempotent")
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.Truncate(context.Background(), "tool_mfa"))
}

func (s *PostgresStoreSuite) TestInsertAndList() {
	ctx := context.Background()
	now := time.Date(2025, 5, 24, 12, 0, 0, 0, time.UTC)

	record := records.NewRecord("42", "domain", "203.0.113.5", now)
	s.Require().NoError(s.store.Insert(ctx, record))
	s.Require().NoError(s.store.Insert(ctx, records.NewRecord("42", "totp", "", now)))

	got, err := s.store.ListByUserFactor(ctx, "42", "domain")
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(record.ID, got[0].ID)
	s.Equal("203.0.113.5", got[0].CreatedFromIP)
	s.True(now.Equal(got[0].TimeCreated))
	s.False(got[0].Revoked)
}

func (s *PostgresStoreSuite) TestRunInTxRollsBack() {
	ctx := context.Background()

	err := s.store.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Insert(ctx, records.NewRecord("7", "domain", "", time.Now())); err != nil {
			return err
		}
		return context.Canceled
	})
	s.ErrorIs(err, context.Canceled)

	got, err := s.store.ListByUserFactor(ctx, "7", "domain")
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *PostgresStoreSuite) TestConcurrentGetOrCreateInsertsOnce() {
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.RunInTx(ctx, func(ctx context.Context) error {
				existing, err := s.store.ListByUserFactor(ctx, "99", "domain")
				if err != nil || len(existing) > 0 {
					return err
				}
				return s.store.Insert(ctx, records.NewRecord("99", "domain", "", time.Now()))
			})
			s.NoError(err)
		}()
	}
	wg.Wait()

	got, err := s.store.ListByUserFactor(ctx, "99", "domain")
	s.Require().NoError(err)
	s.Len(got, 1)
}
