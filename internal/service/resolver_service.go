package service

import (
	"context"
	"log/slog"

	"github.com/matanmalka1/actiongate/internal/domain/action"
	"github.com/matanmalka1/actiongate/internal/domain/auth"
	"github.com/matanmalka1/actiongate/internal/domain/contract"
	"github.com/matanmalka1/actiongate/internal/domain/policy"
	"github.com/matanmalka1/actiongate/internal/metrics"
)

// Drop reasons, used for logging, metrics labels and the Explain output.
const (
	DropEmptyDescriptor = "empty_descriptor"
	DropMissingIDs      = "missing_required_ids"
	DropNoEndpoint      = "no_explicit_endpoint"
	DropUnauthorized    = "unauthorized"
	DropDeniedByRule    = "denied_by_rule"
	DropRuleError       = "rule_evaluation_error"
)

// Resolution is the per-descriptor outcome, including why a descriptor was
// dropped. ResolveActions discards the drop information; Explain keeps it
// for diagnostics and the CLI.
type Resolution struct {
	// Command is the materialized command, nil when dropped.
	Command *action.Command
	// Dropped is true when no command was produced.
	Dropped bool
	// Reason is one of the Drop* constants, empty on success.
	Reason string
	// Token is the descriptor's token identity, for diagnostics.
	Token action.Token
}

// ResolverService is the single consolidated resolution pipeline:
// normalize, resolve against the canonical catalog (or the descriptor's
// explicit endpoint for unrecognized tokens), apply both authorization
// checks and the deny rules, and materialize. Resolution is pure — no
// internal state, re-run on every render — so one service instance is safe
// for concurrent use by any number of scopes.
type ResolverService struct {
	registry *contract.Registry
	gate     *auth.Gate
	rules    policy.Engine
	metrics  *metrics.Metrics
	logger   *slog.Logger
	devMode  bool
}

// ResolverOption is a functional option for configuring a ResolverService.
type ResolverOption func(*ResolverService)

// WithRules adds a deny-rule engine to the pipeline.
func WithRules(e policy.Engine) ResolverOption {
	return func(s *ResolverService) { s.rules = e }
}

// WithMetrics records resolution outcome counters.
func WithMetrics(m *metrics.Metrics) ResolverOption {
	return func(s *ResolverService) { s.metrics = m }
}

// WithDevMode raises drop-reason logging from Debug to Warn.
func WithDevMode(dev bool) ResolverOption {
	return func(s *ResolverService) { s.devMode = dev }
}

// NewResolverService creates the pipeline over the given contract registry
// and gate. A nil logger falls back to slog.Default.
func NewResolverService(registry *contract.Registry, gate *auth.Gate, logger *slog.Logger, opts ...ResolverOption) *ResolverService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ResolverService{
		registry: registry,
		gate:     gate,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveActions resolves a render group of descriptors into executable
// commands. Descriptors that cannot be resolved or are not authorized are
// omitted silently; this is the dominant, expected outcome for most
// descriptor/context combinations, not an error.
func (s *ResolverService) ResolveActions(ctx context.Context, descriptors []action.RawDescriptor, entityCtx action.EntityContext, role auth.Role) []action.Command {
	resolutions := s.Explain(ctx, descriptors, entityCtx, role)
	commands := make([]action.Command, 0, len(resolutions))
	for _, r := range resolutions {
		if r.Command != nil {
			commands = append(commands, *r.Command)
		}
	}
	return commands
}

// ResolveEntityActions is the row-level convenience form: the descriptors
// came from a row with the given id on the given list page.
func (s *ResolverService) ResolveEntityActions(ctx context.Context, descriptors []action.RawDescriptor, entityPath string, entityID int64, role auth.Role) []action.Command {
	return s.ResolveActions(ctx, descriptors, action.EntityContext{
		EntityPath: entityPath,
		EntityID:   entityID,
		ScopeKey:   entityPath,
	}, role)
}

// Explain resolves like ResolveActions but keeps per-descriptor outcomes,
// including drop reasons.
func (s *ResolverService) Explain(ctx context.Context, descriptors []action.RawDescriptor, entityCtx action.EntityContext, role auth.Role) []Resolution {
	resolutions := make([]Resolution, 0, len(descriptors))
	for i := range descriptors {
		r := s.resolveOne(ctx, &descriptors[i], entityCtx, role, i)
		if r.Dropped {
			s.metrics.RecordResolution(metrics.OutcomeDropped, r.Reason)
			s.logDrop(r)
		} else {
			s.metrics.RecordResolution(metrics.OutcomeMaterialized, "")
		}
		resolutions = append(resolutions, r)
	}
	return resolutions
}

// resolveOne runs one descriptor through the full pipeline.
func (s *ResolverService) resolveOne(ctx context.Context, d *action.RawDescriptor, entityCtx action.EntityContext, role auth.Role, ordinal int) Resolution {
	n := action.Normalize(d, entityCtx, ordinal)
	if n == nil {
		return Resolution{Dropped: true, Reason: DropEmptyDescriptor}
	}

	ids := action.ResolvedIDs{BinderID: n.BinderID, ChargeID: n.ChargeID, ClientID: n.ClientID}

	var (
		method   action.Method
		endpoint string
		payload  map[string]any
		entityID int64
	)

	if n.Token.Recognized {
		res, ok := action.ResolveCanonical(n.Token, ids, n.Payload)
		if !ok {
			return Resolution{Dropped: true, Reason: DropMissingIDs, Token: n.Token}
		}
		method = res.Method
		endpoint = res.Endpoint
		payload = res.Payload
		entityID = res.EntityID
	} else {
		// Explicit-endpoint fallback, only for genuinely unrecognized
		// tokens. A recognized canonical action is never overridden by a
		// descriptor-supplied endpoint.
		if n.ExplicitEndpoint == "" {
			return Resolution{Dropped: true, Reason: DropNoEndpoint, Token: n.Token}
		}
		method = n.Method
		if method == "" {
			method = action.MethodPost
		}
		endpoint = contract.NormalizePath(n.ExplicitEndpoint, s.registry.BasePrefix())
		payload = n.Payload
		entityID = firstPositive(ids.BinderID, ids.ChargeID, ids.ClientID)
	}

	entry := s.registry.Match(method, endpoint)
	var (
		entryRole  auth.RoleRequirement
		entryFound bool
	)
	if entry != nil {
		entryRole = entry.Role
		entryFound = true
	}
	if decision := s.gate.Authorize(n.Token, endpoint, entryRole, entryFound, role); !decision.Allowed {
		return Resolution{Dropped: true, Reason: DropUnauthorized, Token: n.Token}
	}

	if s.rules != nil {
		decision, err := s.rules.Evaluate(ctx, policy.EvaluationContext{
			Role:       role.String(),
			Key:        n.Key,
			Recognized: n.Token.Recognized,
			Method:     method.String(),
			Endpoint:   endpoint,
			BinderID:   ids.BinderID,
			ChargeID:   ids.ChargeID,
			ClientID:   ids.ClientID,
		})
		if err != nil {
			// A broken rule must not let an action slip through.
			s.logger.Error("rule evaluation failed", "key", n.Key, "error", err)
			return Resolution{Dropped: true, Reason: DropRuleError, Token: n.Token}
		}
		if decision.Denied {
			s.logger.Debug("action denied by rule", "key", n.Key, "rule_id", decision.RuleID, "rule", decision.RuleName)
			return Resolution{Dropped: true, Reason: DropDeniedByRule, Token: n.Token}
		}
	}

	return Resolution{
		Command: &action.Command{
			Key:      n.Key,
			UIKey:    n.UIKey,
			ID:       entityID,
			Label:    n.Label,
			Method:   method,
			Endpoint: endpoint,
			Payload:  payload,
			Confirm:  n.Confirm,
		},
		Token: n.Token,
	}
}

// logDrop logs a drop reason: Debug always, Warn in dev mode so divergence
// between backend descriptors and the engine shows up during development.
func (s *ResolverService) logDrop(r Resolution) {
	level := slog.LevelDebug
	if s.devMode {
		level = slog.LevelWarn
	}
	s.logger.Log(context.Background(), level, "action dropped",
		"reason", r.Reason, "token", r.Token.Raw, "source", string(r.Token.Source))
}

func firstPositive(ids ...int64) int64 {
	for _, id := range ids {
		if id > 0 {
			return id
		}
	}
	return 0
}
