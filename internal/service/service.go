// Package service implements the provider side of the connector: it owns the registry,
// applies the negotiation and transfer state machines and records every mutation
// in the audit log.
package service

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/darmiel/vertrag/internal/api/middleware"
	"github.com/darmiel/vertrag/internal/audit"
	"github.com/darmiel/vertrag/internal/catalog"
	"github.com/darmiel/vertrag/internal/core"
	"github.com/darmiel/vertrag/internal/engine"
	"github.com/darmiel/vertrag/internal/fsm"
	"github.com/darmiel/vertrag/internal/metrics"
)

const tracerName = "github.com/darmiel/vertrag/internal/service"

type Service struct {
	participantID string
	catalog       *catalog.Manager
	registry      core.Registry
	evaluator     core.Evaluator
	negotiations  *fsm.NegotiationMachine
	transfers     *fsm.TransferMachine
	auditor       core.Auditor
	metrics       *metrics.Metrics
	tracer        trace.Tracer
}

// New creates the connector service for the provider participantID.
// A nil auditor disables auditing and nil metrics are recorded on a private registry.
func New(
	participantID string,
	catalogManager *catalog.Manager,
	registry core.Registry,
	auditor core.Auditor,
	m *metrics.Metrics,
	opts ...fsm.Option,
) *Service {
	if auditor == nil {
		auditor = audit.NewNoopAuditor()
	}
	if m == nil {
		m = metrics.New(nil)
	}
	evaluator := engine.New()
	return &Service{
		participantID: participantID,
		catalog:       catalogManager,
		registry:      registry,
		evaluator:     evaluator,
		negotiations:  fsm.NewNegotiationMachine(evaluator, opts...),
		transfers:     fsm.NewTransferMachine(opts...),
		auditor:       auditor,
		metrics:       m,
		tracer:        otel.Tracer(tracerName),
	}
}

// ParticipantID returns the id the service acts as provider for.
func (s *Service) ParticipantID() string {
	return s.participantID
}

// track opens a span for a mutating operation. The returned function records the outcome
// in the span, the metrics and the audit log and must be called exactly once.
func (s *Service) track(ctx context.Context, operation string, entry *core.AuditEntry) (context.Context, func(err error)) {
	ctx, span := s.tracer.Start(ctx, operation)
	start := time.Now()

	// in-process callers have no request id
	correlationID := middleware.CorrelationCtx(ctx)
	if correlationID == "" {
		correlationID = xid.New().String()
		ctx = middleware.WithCorrelationID(ctx, correlationID)
	}

	// operations add fields to their logger, never to the caller's
	logger := log.Ctx(ctx).With().Str("operation", operation).Logger()
	ctx = logger.WithContext(ctx)

	entry.ID = correlationID
	entry.Time = start
	entry.Action = operation

	return ctx, func(err error) {
		defer span.End()
		s.metrics.ObserveSince(operation, start)

		span.SetAttributes(
			attribute.String("vertrag.negotiation_id", entry.NegotiationID),
			attribute.String("vertrag.transfer_id", entry.TransferID),
			attribute.String("vertrag.state", entry.State),
		)
		if err != nil {
			s.metrics.Errors.WithLabelValues(operation, core.ErrorCode(err)).Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			entry.Error = err.Error()
		}

		if logErr := s.auditor.Log(*entry); logErr != nil {
			log.Ctx(ctx).Error().Err(logErr).Str("operation", operation).Msg("failed to write audit log")
		}
	}
}

// read opens a span for a read-only operation.
func (s *Service) read(ctx context.Context, operation string) (context.Context, func(err error)) {
	ctx, span := s.tracer.Start(ctx, operation)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

func (s *Service) recordDecision(entry *core.AuditEntry, d *core.Decision) {
	if d == nil {
		return
	}
	allowed := d.Allowed
	entry.PolicyID = d.PolicyID
	entry.Allowed = &allowed
	entry.Reason = d.Reason
	s.metrics.Decisions.WithLabelValues(d.PolicyID, strconv.FormatBool(d.Allowed)).Inc()
}
