package payment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"paygate/internal/payment/metrics"
	"paygate/internal/rules"
	"paygate/pkg/domain"
	dErrors "paygate/pkg/domain-errors"
	"paygate/pkg/platform/sentinel"
)

// DecisionStore persists terminal decisions and answers repeat requests.
type DecisionStore interface {
	Save(ctx context.Context, d AuthorizationDecision) error
	Find(ctx context.Context, id domain.RequestID) (AuthorizationDecision, error)
}

// Authorizer drives one intent through validation, security screening,
// compliance, and the limit gate, in that order, stopping at the first
// failing stage. Decisions are terminal: once stored, the same request always
// yields the same decision and no stage runs again.
type Authorizer struct {
	validator  *Validator
	screener   *Screener
	compliance *ComplianceEngine
	gate       *Gate
	decisions  DecisionStore

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures an Authorizer.
type Option func(*Authorizer)

func WithLogger(l *slog.Logger) Option {
	return func(a *Authorizer) {
		if l != nil {
			a.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Authorizer) {
		a.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(a *Authorizer) {
		if t != nil {
			a.tracer = t
		}
	}
}

func NewAuthorizer(cfg rules.Config, decisions DecisionStore, volumes VolumeStore, sanctions SanctionsChecker, aml AMLChecker, levels LevelResolver, opts ...Option) *Authorizer {
	a := &Authorizer{
		validator:  NewValidator(cfg.Payment),
		screener:   NewScreener(cfg.Security, sanctions),
		compliance: NewComplianceEngine(cfg.Compliance, aml, levels),
		gate:       NewGate(cfg.Limits, volumes),
		decisions:  decisions,
		logger:     slog.Default(),
		tracer:     otel.Tracer("paygate/payment"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Gate exposes the limit gate so callers can commit volume after dispatch and
// answer limit queries.
func (a *Authorizer) Gate() *Gate {
	return a.gate
}

// Decided returns the stored terminal decision for a request, if one exists.
func (a *Authorizer) Decided(ctx context.Context, id domain.RequestID) (AuthorizationDecision, bool, error) {
	d, err := a.decisions.Find(ctx, id)
	if err == nil {
		return d, true, nil
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return AuthorizationDecision{}, false, nil
	}
	return AuthorizationDecision{}, false, dErrors.Wrap(err, dErrors.CodeUnavailable, "decision store unavailable")
}

// Authorize evaluates the intent and returns its terminal decision. A repeat
// of an already-decided request returns the stored decision without
// re-running any stage or producing new side effects. A collaborator outage
// mid-pipeline returns an error and stores nothing, so the request can be
// retried.
func (a *Authorizer) Authorize(ctx context.Context, intent PaymentIntent) (AuthorizationDecision, error) {
	if cached, err := a.decisions.Find(ctx, intent.RequestID); err == nil {
		a.metrics.CacheHit()
		a.logger.InfoContext(ctx, "authorization replayed from stored decision",
			"request_id", intent.RequestID, "allowed", cached.Allowed)
		return cached, nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return AuthorizationDecision{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "decision store unavailable")
	}

	ctx, span := a.tracer.Start(ctx, "payment.authorize", trace.WithAttributes(
		attribute.String("request_id", string(intent.RequestID)),
		attribute.String("currency", intent.Currency),
	))

	decision, err := a.evaluate(ctx, intent)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return AuthorizationDecision{}, err
	}
	span.SetAttributes(
		attribute.Bool("allowed", decision.Allowed),
		attribute.String("failure_stage", string(decision.FailureStage)),
	)
	span.End()

	if err := a.decisions.Save(ctx, decision); err != nil {
		// A concurrent evaluation won the race; its decision is the terminal
		// one.
		if errors.Is(err, sentinel.ErrDuplicate) {
			return a.decisions.Find(ctx, intent.RequestID)
		}
		return AuthorizationDecision{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "decision store unavailable")
	}

	a.metrics.Decision(decision.Allowed, string(decision.FailureStage))
	if decision.Allowed {
		a.logger.InfoContext(ctx, "payment authorized",
			"request_id", intent.RequestID, "to", intent.To, "amount", intent.Amount, "currency", intent.Currency,
			"daily_headroom", decision.DailyHeadroom)
	} else {
		a.logger.WarnContext(ctx, "payment rejected",
			"request_id", intent.RequestID, "stage", decision.FailureStage, "reason", decision.Reason)
	}
	return decision, nil
}

func (a *Authorizer) evaluate(ctx context.Context, intent PaymentIntent) (AuthorizationDecision, error) {
	decision := AuthorizationDecision{
		RequestID:    intent.RequestID,
		FailureStage: StageNone,
		EvaluatedAt:  time.Now().UTC(),
	}

	start := time.Now()
	validation := a.validator.Validate(intent)
	a.metrics.StageObserved(string(StageValidation), time.Since(start))
	if !validation.Valid {
		decision.FailureStage = StageValidation
		decision.Reason = validation.Reason
		return decision, nil
	}
	amount := validation.Amount

	start = time.Now()
	screen, err := a.screener.Screen(ctx, intent, amount)
	a.metrics.StageObserved(string(StageSecurity), time.Since(start))
	if err != nil {
		return AuthorizationDecision{}, err
	}
	if !screen.Passed {
		decision.FailureStage = StageSecurity
		decision.Reason = screen.Reason
		return decision, nil
	}

	start = time.Now()
	compliance, err := a.compliance.Check(ctx, intent, amount)
	a.metrics.StageObserved(string(StageCompliance), time.Since(start))
	if err != nil {
		return AuthorizationDecision{}, err
	}
	for _, t := range compliance.Triggered {
		if t == RequirementReporting {
			decision.RequiredActions = append(decision.RequiredActions, RequirementReporting)
		}
	}
	if !compliance.Compliant {
		decision.FailureStage = StageCompliance
		decision.Reason = "compliance requirements not met"
		decision.RequiredActions = append(decision.RequiredActions, compliance.Unmet...)
		return decision, nil
	}

	start = time.Now()
	gate, err := a.gate.Check(ctx, intent.From, amount)
	a.metrics.StageObserved(string(StageLimit), time.Since(start))
	if err != nil {
		return AuthorizationDecision{}, err
	}
	decision.DailyHeadroom = gate.Headroom
	if !gate.Allowed {
		decision.FailureStage = StageLimit
		decision.Reason = gate.Reason
		return decision, nil
	}

	decision.Allowed = true
	return decision, nil
}
