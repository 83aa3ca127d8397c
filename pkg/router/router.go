// Package router decides where an inbound envelope goes next. Routing is a
// pure function of the envelope's sender, type, stage, and status; callers
// own all persistence.
package router

import (
	"log/slog"
	"strings"

	"talewire/pkg/message"
)

// Protocol identities and stage prefixes. The prefix set is part of the
// routing contract, not user-extensible.
const (
	senderUserAlias    = "j"
	senderUser         = "user"
	senderBroker       = "data_broker"
	senderRulesLawyer  = "rules_lawyer"
	senderStateApplier = "state_applier"

	typeUserInput = "user_input"

	StageUserInput      = "user_input"
	StageRulingPrefix   = "ruling_"
	StageAppliedPrefix  = "applied_"
	StageRenderedPrefix = "rendered_"
	StageNPCResponse    = "npc_response"
)

// Decision is the routing outcome: the entry to persist in the slot log,
// and, when the pipeline should advance, the envelope addressed to the
// next stage's inbox.
type Decision struct {
	Log    message.Envelope
	Outbox *message.Envelope
}

// Forwarded reports whether the decision produced an outbox envelope.
func (d Decision) Forwarded() bool {
	return d.Outbox != nil
}

// Router classifies envelopes. The logger only emits debug traces; it
// never affects the routing outcome.
type Router struct {
	log *slog.Logger
}

// New builds a router around a trace sink. A nil logger means no tracing.
func New(log *slog.Logger) *Router {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Router{log: log.With("component", "router")}
}

// Route classifies one envelope, first match wins:
//
//  1. user input           -> log + outbox, status moved to sent
//  2. data broker          -> log only
//  3. ruling_* pending     -> log + outbox, pending_state_apply preserved
//  4. applied_*            -> log + outbox, outbox status reset to sent
//  5. rendered_*           -> log only, terminal for this hop
//  6. npc_response         -> log + outbox, outbox status set to sent
//  7. anything else        -> log only (unknown traffic never silently
//     advances the pipeline)
//
// Sender and type matching is case-insensitive; stage prefixes are
// case-sensitive. The input envelope is never mutated: every branch works
// on copies.
func (r *Router) Route(env message.Envelope) Decision {
	r.log.Debug("routing envelope",
		"id", env.ID,
		"sender", env.Sender,
		"stage", env.Stage,
		"status", env.Status,
	)

	decision := r.classify(env)

	attrs := []any{
		"id", env.ID,
		"sender", env.Sender,
		"stage", env.Stage,
		"forwarded", decision.Forwarded(),
	}
	if decision.Outbox != nil {
		attrs = append(attrs,
			"outbox_stage", decision.Outbox.Stage,
			"outbox_status", decision.Outbox.Status,
		)
	}
	r.log.Debug("routed envelope", attrs...)

	return decision
}

func (r *Router) classify(env message.Envelope) Decision {
	sender := strings.ToLower(env.Sender)
	kind := strings.ToLower(env.Type)

	switch {
	case sender == senderUserAlias || sender == senderUser || kind == typeUserInput:
		// An already-sent envelope stays as-is: the table has no
		// sent -> sent transition, and an invalid transition is a no-op.
		routed, _ := message.TrySetStatus(env, message.StatusSent)
		out := routed
		if out.Stage == "" {
			out.Stage = StageUserInput
		}
		return Decision{Log: routed, Outbox: &out}

	case sender == senderBroker || kind == senderBroker:
		// The bounce-back to the interpreter stage is retired; broker
		// traffic is recorded only.
		return Decision{Log: env}

	case sender == senderRulesLawyer &&
		strings.HasPrefix(env.Stage, StageRulingPrefix) &&
		env.Status == message.StatusPendingStateApply:
		// pending_state_apply is preserved so the state applier knows
		// it must act.
		out := env
		return Decision{Log: env, Outbox: &out}

	case (sender == senderStateApplier || kind == senderStateApplier) &&
		strings.HasPrefix(env.Stage, StageAppliedPrefix):
		// Hand off to rendering.
		out := env
		out.Status = message.StatusSent
		return Decision{Log: env, Outbox: &out}

	case strings.HasPrefix(env.Stage, StageRenderedPrefix):
		return Decision{Log: env}

	case strings.HasPrefix(env.Stage, StageNPCResponse):
		out := env
		out.Status = message.StatusSent
		return Decision{Log: env, Outbox: &out}

	default:
		return Decision{Log: env}
	}
}
