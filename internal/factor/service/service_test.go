package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"domainfactor/internal/factor/metrics"
	"domainfactor/internal/factor/policy"
	"domainfactor/internal/factor/records"
	"domainfactor/internal/factor/service/mocks"
	"domainfactor/internal/factor/settings"
	dErrors "domainfactor/pkg/domain-errors"
	audit "domainfactor/pkg/platform/audit"
	"domainfactor/pkg/platform/sentinel"
	"domainfactor/pkg/requestcontext"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []audit.Event
}

func (p *recordingPublisher) Emit(_ context.Context, event audit.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Events() []audit.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]audit.Event{}, p.events...)
}

// =============================================================================
// Service Test Suite
// =============================================================================
// Store behavior is mocked so tests can drive read failures; the policy
// itself is covered in the policy package.

type ServiceSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	mockSettings  *mocks.MockSettingsStore
	mockRecords   *mocks.MockRecordStore
	publisher     *recordingPublisher
	metrics       *metrics.Metrics
	service       *Service
	ctx           context.Context
	fixedTime     time.Time
	passingConfig *settings.Raw
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockSettings = mocks.NewMockSettingsStore(s.ctrl)
	s.mockRecords = mocks.NewMockRecordStore(s.ctrl)
	s.publisher = &recordingPublisher{}
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.fixedTime = time.Date(2025, 5, 24, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithRequestID(requestcontext.WithTime(context.Background(), s.fixedTime), "req-1")
	s.passingConfig = &settings.Raw{Enabled: "1", Weight: "100", AllowedDomains: "example.com\nuni.edu"}

	var err error
	s.service, err = New(
		s.mockSettings,
		s.mockRecords,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
		WithAuditPublisher(s.publisher),
	)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

// =============================================================================
// Constructor
// =============================================================================

func (s *ServiceSuite) TestNew() {
	s.Run("nil settings store returns error", func() {
		_, err := New(nil, s.mockRecords)
		s.Error(err)
		s.Contains(err.Error(), "settings store is required")
	})

	s.Run("nil record store returns error", func() {
		_, err := New(s.mockSettings, nil)
		s.Error(err)
		s.Contains(err.Error(), "record store is required")
	})

	s.Run("options are applied", func() {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		svc, err := New(s.mockSettings, s.mockRecords, WithLogger(logger), WithAuditPublisher(s.publisher))
		s.NoError(err)
		s.Equal(logger, svc.logger)
		s.Equal(s.publisher, svc.auditPublisher)
	})
}

// =============================================================================
// Check
// =============================================================================

func (s *ServiceSuite) TestCheck() {
	s.Run("matching domain passes with configured weight", func() {
		s.mockSettings.EXPECT().Get(gomock.Any()).Return(s.passingConfig, nil)

		result, err := s.service.Check(s.ctx, Subject{UserID: "42", Email: "student@uni.edu"})
		s.Require().NoError(err)
		s.Equal(policy.StatePass, result.State)
		s.Equal(100, result.Points)
		s.Equal(100, result.Weight)
		s.Equal("uni.edu", result.MatchedDomain)
		s.Equal("User email domain is in allowed list (Weight: 100, Domains: 2)", result.Condition)
	})

	s.Run("non matching domain is neutral", func() {
		s.mockSettings.EXPECT().Get(gomock.Any()).Return(&settings.Raw{Enabled: "1", Weight: "50", AllowedDomains: "example.com"}, nil)

		result, err := s.service.Check(s.ctx, Subject{UserID: "42", Email: "user@other.com"})
		s.Require().NoError(err)
		s.Equal(policy.StateNeutral, result.State)
		s.Equal(0, result.Points)
		s.Equal(50, result.Weight)
	})

	s.Run("missing settings are neutral without error", func() {
		s.mockSettings.EXPECT().Get(gomock.Any()).Return(nil, sentinel.ErrNotFound)

		result, err := s.service.Check(s.ctx, Subject{UserID: "42", Email: "student@uni.edu"})
		s.Require().NoError(err)
		s.Equal(policy.StateNeutral, result.State)
		s.Equal(0, result.Points)
	})

	s.Run("unreadable settings are neutral and counted", func() {
		before := testutil.ToFloat64(s.metrics.SettingsLoadFailures)
		s.mockSettings.EXPECT().Get(gomock.Any()).Return(nil, errors.New("redis: connection refused"))

		result, err := s.service.Check(s.ctx, Subject{UserID: "42", Email: "student@uni.edu"})
		s.Require().NoError(err)
		s.Equal(policy.StateNeutral, result.State)
		s.Equal(before+1, testutil.ToFloat64(s.metrics.SettingsLoadFailures))
	})

	s.Run("missing user id is a bad request", func() {
		_, err := s.service.Check(s.ctx, Subject{UserID: "  ", Email: "student@uni.edu"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *ServiceSuite) TestCheckSideEffects() {
	s.mockSettings.EXPECT().Get(gomock.Any()).Return(s.passingConfig, nil)

	_, err := s.service.Check(s.ctx, Subject{UserID: "42", Email: "student@uni.edu"})
	s.Require().NoError(err)

	s.Equal(1.0, testutil.ToFloat64(s.metrics.CheckOutcome.WithLabelValues("pass")))

	events := s.publisher.Events()
	s.Require().Len(events, 1)
	s.Equal(audit.ActionFactorChecked, events[0].Action)
	s.Equal(audit.CategoryOperations, events[0].Category)
	s.Equal("42", events[0].UserID)
	s.Equal("pass", events[0].Decision)
	s.Equal("uni.edu", events[0].Reason)
	s.Equal("req-1", events[0].RequestID)
	s.Equal(s.fixedTime, events[0].Timestamp)
}

// =============================================================================
// Describe
// =============================================================================

func (s *ServiceSuite) TestDescribe() {
	s.Run("reports live configuration", func() {
		s.mockSettings.EXPECT().Get(gomock.Any()).Return(&settings.Raw{Enabled: "1", Weight: "70", AllowedDomains: "a.com\n \nb.com"}, nil)

		d := s.service.Describe(s.ctx)
		s.Equal(policy.FactorName, d.Name)
		s.True(d.Enabled)
		s.True(d.Available)
		s.Equal(70, d.Weight)
		s.Equal(2, d.DomainCount)
		s.False(d.Capabilities.SupportsRevocation)
	})

	s.Run("unconfigured factor is unavailable", func() {
		s.mockSettings.EXPECT().Get(gomock.Any()).Return(nil, sentinel.ErrNotFound)

		d := s.service.Describe(s.ctx)
		s.False(d.Available)
		s.Equal(policy.DefaultWeight, d.Weight)
		s.Equal(0, d.DomainCount)
	})
}

// =============================================================================
// Settings
// =============================================================================

func (s *ServiceSuite) TestSettings() {
	s.Run("no stored settings returns empty settings", func() {
		s.mockSettings.EXPECT().Get(gomock.Any()).Return(nil, sentinel.ErrNotFound)

		raw, err := s.service.Settings(s.ctx)
		s.Require().NoError(err)
		s.Equal(&settings.Raw{}, raw)
	})

	s.Run("store failure is internal", func() {
		s.mockSettings.EXPECT().Get(gomock.Any()).Return(nil, errors.New("boom"))

		_, err := s.service.Settings(s.ctx)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestUpdateSettings() {
	s.Run("valid settings are stored and audited", func() {
		ctx := requestcontext.WithActor(s.ctx, "site-admin")
		expected := settings.Raw{Enabled: "1", Weight: "80", AllowedDomains: "uni.edu"}
		s.mockSettings.EXPECT().Put(gomock.Any(), expected).Return(nil)

		stored, err := s.service.UpdateSettings(ctx, settings.Raw{Enabled: "true", Weight: " 80 ", AllowedDomains: "uni.edu"})
		s.Require().NoError(err)
		s.Equal(&expected, stored)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.SettingsUpdates))

		events := s.publisher.Events()
		s.Require().NotEmpty(events)
		last := events[len(events)-1]
		s.Equal(audit.ActionFactorSettingsUpdate, last.Action)
		s.Equal(audit.CategorySecurity, last.Category)
		s.Equal("site-admin", last.ActorID)
	})

	s.Run("invalid settings are rejected before storing", func() {
		_, err := s.service.UpdateSettings(s.ctx, settings.Raw{Weight: "heavy"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("store failure is internal", func() {
		s.mockSettings.EXPECT().Put(gomock.Any(), gomock.Any()).Return(errors.New("boom"))

		_, err := s.service.UpdateSettings(s.ctx, settings.Raw{Enabled: "1"})
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestSeedSettings() {
	s.Run("existing settings are left alone", func() {
		s.mockSettings.EXPECT().Get(gomock.Any()).Return(s.passingConfig, nil)

		seeded, err := s.service.SeedSettings(s.ctx, settings.Raw{Enabled: "0"})
		s.NoError(err)
		s.False(seeded)
	})

	s.Run("empty store is seeded", func() {
		s.mockSettings.EXPECT().Get(gomock.Any()).Return(nil, sentinel.ErrNotFound)
		s.mockSettings.EXPECT().Put(gomock.Any(), settings.Raw{Enabled: "1", Weight: "100", AllowedDomains: "uni.edu"}).Return(nil)

		seeded, err := s.service.SeedSettings(s.ctx, settings.Raw{Enabled: "yes", Weight: "100", AllowedDomains: "uni.edu"})
		s.NoError(err)
		s.True(seeded)
	})

	s.Run("read failure is returned", func() {
		s.mockSettings.EXPECT().Get(gomock.Any()).Return(nil, errors.New("boom"))

		_, err := s.service.SeedSettings(s.ctx, settings.Raw{})
		s.Error(err)
	})
}

// =============================================================================
// UserFactors
// =============================================================================

func (s *ServiceSuite) expectTx() {
	s.mockRecords.EXPECT().RunInTx(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		})
}

func (s *ServiceSuite) TestUserFactors() {
	s.Run("existing records are returned unchanged", func() {
		existing := []*records.Record{records.NewRecord("42", policy.FactorName, "10.0.0.1", s.fixedTime)}
		s.expectTx()
		s.mockRecords.EXPECT().ListByUserFactor(gomock.Any(), "42", policy.FactorName).Return(existing, nil)

		out, err := s.service.UserFactors(s.ctx, Subject{UserID: "42", LastIP: "10.9.9.9"})
		s.Require().NoError(err)
		s.Equal(existing, out)
	})

	s.Run("first call creates a record", func() {
		s.expectTx()
		s.mockRecords.EXPECT().ListByUserFactor(gomock.Any(), "7", policy.FactorName).Return(nil, nil)
		s.mockRecords.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, r *records.Record) error {
				s.Equal("7", r.UserID)
				s.Equal(policy.FactorName, r.Factor)
				s.Equal("10.0.0.7", r.CreatedFromIP)
				s.Equal(s.fixedTime, r.TimeCreated)
				s.Equal(s.fixedTime, r.TimeModified)
				s.False(r.Revoked)
				return nil
			})

		out, err := s.service.UserFactors(s.ctx, Subject{UserID: "7", LastIP: "10.0.0.7"})
		s.Require().NoError(err)
		s.Require().Len(out, 1)

		events := s.publisher.Events()
		s.Equal(audit.ActionFactorRecordCreated, events[len(events)-1].Action)
	})

	s.Run("store failure is internal", func() {
		s.expectTx()
		s.mockRecords.EXPECT().ListByUserFactor(gomock.Any(), "9", policy.FactorName).Return(nil, errors.New("db down"))

		_, err := s.service.UserFactors(s.ctx, Subject{UserID: "9"})
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("missing user id is a bad request", func() {
		_, err := s.service.UserFactors(s.ctx, Subject{})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

// TestWithInMemoryStores exercises the service against real in-memory stores.
func TestWithInMemoryStores(t *testing.T) {
	settingsStore := settings.NewInMemoryStore()
	recordStore := records.NewInMemoryStore()
	svc, err := New(settingsStore, recordStore)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	if _, err := svc.UpdateSettings(ctx, settings.Raw{Enabled: "1", Weight: "100", AllowedDomains: "Example.com"}); err != nil {
		t.Fatalf("update settings: %v", err)
	}

	result, err := svc.Check(ctx, Subject{UserID: "1", Email: "a@EXAMPLE.COM"})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if result.State != policy.StatePass || result.Points != 100 {
		t.Fatalf("expected pass with 100 points, got %s/%d", result.State, result.Points)
	}

	first, err := svc.UserFactors(ctx, Subject{UserID: "1", LastIP: "127.0.0.1"})
	if err != nil {
		t.Fatalf("user factors: %v", err)
	}
	second, err := svc.UserFactors(ctx, Subject{UserID: "1", LastIP: "10.0.0.1"})
	if err != nil {
		t.Fatalf("user factors: %v", err)
	}
	if len(first) != 1 || len(second) != 1 || first[0].ID != second[0].ID {
		t.Fatalf("expected a single stable record, got %d and %d", len(first), len(second))
	}
	if second[0].CreatedFromIP != "127.0.0.1" {
		t.Fatalf("expected record from first call, got ip %q", second[0].CreatedFromIP)
	}
}

func TestZeroWeightRoundTrip(t *testing.T) {
	svc, err := New(settings.NewInMemoryStore(), records.NewInMemoryStore())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	if _, err := svc.UpdateSettings(ctx, settings.Raw{Enabled: "1", Weight: "0", AllowedDomains: "uni.edu"}); err != nil {
		t.Fatalf("update settings: %v", err)
	}

	result, err := svc.Check(ctx, Subject{UserID: "1", Email: "s@uni.edu"})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if result.State != policy.StatePass || result.Points != 0 || result.Weight != 0 {
		t.Fatalf("expected pass with 0 points and weight 0, got %s/%d/%d", result.State, result.Points, result.Weight)
	}
	if d := svc.Describe(ctx); d.Weight != 0 {
		t.Fatalf("expected described weight 0, got %d", d.Weight)
	}
}
