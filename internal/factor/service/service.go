// Package service adapts the pure domain policy to the MFA host: it loads
// administrator settings, evaluates a subject, keeps the host's per-user
// factor record, and reports metrics and audit events.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks SettingsStore,RecordStore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"domainfactor/internal/factor/metrics"
	"domainfactor/internal/factor/policy"
	"domainfactor/internal/factor/records"
	"domainfactor/internal/factor/settings"
	dErrors "domainfactor/pkg/domain-errors"
	"domainfactor/pkg/email"
	audit "domainfactor/pkg/platform/audit"
	"domainfactor/pkg/platform/sentinel"
	"domainfactor/pkg/requestcontext"
)

// SettingsStore reads and writes the administrator settings.
type SettingsStore interface {
	Get(ctx context.Context) (*settings.Raw, error)
	Put(ctx context.Context, raw settings.Raw) error
}

// RecordStore persists the host's per-user factor records.
type RecordStore interface {
	ListByUserFactor(ctx context.Context, userID, factor string) ([]*records.Record, error)
	Insert(ctx context.Context, record *records.Record) error
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Subject is the user being checked.
type Subject struct {
	UserID string
	Email  string
	LastIP string
}

// CheckResult is the outcome of Check.
type CheckResult struct {
	State         policy.State
	Points        int
	Weight        int
	Condition     string
	MatchedDomain string
}

// Description is the factor metadata together with its live configuration.
type Description struct {
	policy.Descriptor
	Enabled     bool
	Available   bool
	Weight      int
	DomainCount int
	Condition   string
}

// Service evaluates the domain factor for host requests.
type Service struct {
	settings       SettingsStore
	records        RecordStore
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher audit.Publisher
	tracer         trace.Tracer
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithAuditPublisher sets the audit event sink.
func WithAuditPublisher(p audit.Publisher) Option {
	return func(s *Service) {
		s.auditPublisher = p
	}
}

// New constructs a Service. Both stores are required.
func New(settingsStore SettingsStore, recordStore RecordStore, opts ...Option) (*Service, error) {
	if settingsStore == nil {
		return nil, fmt.Errorf("settings store is required")
	}
	if recordStore == nil {
		return nil, fmt.Errorf("record store is required")
	}

	s := &Service{
		settings: settingsStore,
		records:  recordStore,
		logger:   slog.New(slog.DiscardHandler),
		tracer:   otel.Tracer("domainfactor/internal/factor/service"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Check evaluates the factor for subject. Settings that cannot be loaded are
// treated as not configured, so the result is neutral rather than an error.
func (s *Service) Check(ctx context.Context, subject Subject) (*CheckResult, error) {
	ctx, span := s.tracer.Start(ctx, "factor_domain.check")
	defer span.End()
	start := time.Now()

	subject.UserID = strings.TrimSpace(subject.UserID)
	if subject.UserID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user_id is required")
	}

	cfg := s.loadConfig(ctx)
	result := policy.Evaluate(cfg, policy.Input{Email: subject.Email})

	span.SetAttributes(
		attribute.String("factor.state", string(result.State)),
		attribute.Int("factor.points", result.Points),
	)
	s.metrics.IncrementOutcome(string(result.State))
	s.metrics.ObserveCheckLatency(time.Since(start))

	requestID := requestcontext.RequestID(ctx)
	s.logger.InfoContext(ctx, "domain factor checked",
		"request_id", requestID,
		"user_id", subject.UserID,
		"email_domain", email.Domain(subject.Email),
		"state", result.State,
		"points", result.Points,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	s.emit(ctx, audit.Event{
		Category:  audit.CategoryOperations,
		Timestamp: requestcontext.Now(ctx),
		UserID:    subject.UserID,
		Factor:    policy.FactorName,
		Action:    audit.ActionFactorChecked,
		Decision:  string(result.State),
		Reason:    result.MatchedDomain,
		RequestID: requestID,
	})

	return &CheckResult{
		State:         result.State,
		Points:        result.Points,
		Weight:        cfg.Weight,
		Condition:     policy.DescribeCondition(cfg),
		MatchedDomain: result.MatchedDomain,
	}, nil
}

// Describe returns the factor metadata and its current configuration.
func (s *Service) Describe(ctx context.Context) *Description {
	cfg := s.loadConfig(ctx)
	return &Description{
		Descriptor:  policy.Describe(),
		Enabled:     cfg.Enabled,
		Available:   cfg.Enabled,
		Weight:      cfg.Weight,
		DomainCount: len(cfg.AllowedDomains),
		Condition:   policy.DescribeCondition(cfg),
	}
}

// Settings returns the stored settings, or empty settings when none are stored.
func (s *Service) Settings(ctx context.Context) (*settings.Raw, error) {
	raw, err := s.settings.Get(ctx)
	if errors.Is(err, sentinel.ErrNotFound) {
		return &settings.Raw{}, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load settings")
	}
	return raw, nil
}

// UpdateSettings validates and stores new settings on behalf of the request actor.
func (s *Service) UpdateSettings(ctx context.Context, raw settings.Raw) (*settings.Raw, error) {
	if err := raw.Validate(); err != nil {
		return nil, err
	}
	if err := s.settings.Put(ctx, raw); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store settings")
	}

	cfg := raw.ToConfig()
	actor := requestcontext.Actor(ctx)
	requestID := requestcontext.RequestID(ctx)
	s.metrics.IncrementSettingsUpdate()
	s.logger.InfoContext(ctx, "domain factor settings updated",
		"request_id", requestID,
		"actor_id", actor,
		"enabled", cfg.Enabled,
		"weight", cfg.Weight,
		"domain_count", len(cfg.AllowedDomains),
	)
	s.emit(ctx, audit.Event{
		Category:  audit.CategorySecurity,
		Timestamp: requestcontext.Now(ctx),
		Factor:    policy.FactorName,
		Action:    audit.ActionFactorSettingsUpdate,
		Decision:  policy.DescribeCondition(cfg),
		RequestID: requestID,
		ActorID:   actor,
	})
	return &raw, nil
}

// SeedSettings stores seed only when no settings exist yet. It reports
// whether the seed was written.
func (s *Service) SeedSettings(ctx context.Context, seed settings.Raw) (bool, error) {
	_, err := s.settings.Get(ctx)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return false, fmt.Errorf("read settings before seeding: %w", err)
	}
	if err := seed.Validate(); err != nil {
		return false, fmt.Errorf("invalid seed settings: %w", err)
	}
	if err := s.settings.Put(ctx, seed); err != nil {
		return false, fmt.Errorf("store seed settings: %w", err)
	}
	return true, nil
}

// UserFactors returns the subject's records for this factor, creating the
// first one on demand.
func (s *Service) UserFactors(ctx context.Context, subject Subject) ([]*records.Record, error) {
	ctx, span := s.tracer.Start(ctx, "factor_domain.user_factors")
	defer span.End()

	subject.UserID = strings.TrimSpace(subject.UserID)
	if subject.UserID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user_id is required")
	}

	var (
		out     []*records.Record
		created bool
	)
	err := s.records.RunInTx(ctx, func(ctx context.Context) error {
		existing, err := s.records.ListByUserFactor(ctx, subject.UserID, policy.FactorName)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			out = existing
			return nil
		}

		record := records.NewRecord(subject.UserID, policy.FactorName, subject.LastIP, requestcontext.Now(ctx))
		if err := s.records.Insert(ctx, record); err != nil {
			return err
		}
		out = []*records.Record{record}
		created = true
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load user factor records",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", subject.UserID,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user factor records")
	}

	if created {
		s.emit(ctx, audit.Event{
			Category:  audit.CategoryOperations,
			Timestamp: requestcontext.Now(ctx),
			UserID:    subject.UserID,
			Factor:    policy.FactorName,
			Action:    audit.ActionFactorRecordCreated,
			RequestID: requestcontext.RequestID(ctx),
		})
	}
	span.SetAttributes(attribute.Bool("factor.record_created", created))
	return out, nil
}

// loadConfig never fails: read errors and missing settings both yield the
// zero configuration, which evaluates to neutral.
func (s *Service) loadConfig(ctx context.Context) policy.Config {
	raw, err := s.settings.Get(ctx)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncrementSettingsLoadFailure()
			s.logger.WarnContext(ctx, "domain factor settings unreadable, treating as not configured",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
		return settings.Raw{}.ToConfig()
	}
	return raw.ToConfig()
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	s.auditPublisher.Emit(ctx, event)
}
