// Package plugin defines the compiled-in hook points of spec §4.10: the
// four extension seams the Rust original exposes through dynamically
// loaded plugins. Here they are a plain interface satisfied by a
// compiled-in implementation — NoopHooks by default — rather than
// loaded at runtime, since Go has no stable dlopen-style plugin ABI
// across platforms the way the original's plugin crate does.
package plugin

import (
	"errors"

	"github.com/rootasrole/rar/internal/actor"
	"github.com/rootasrole/rar/internal/policy"
)

// ErrComplexCommandUnsupported is returned by a Hooks implementation that
// cannot interpret a given Complex command body.
var ErrComplexCommandUnsupported = errors.New("complex command kind not supported by any hook")

// RoleOverrideAction tells the role matcher what RoleOverride decided.
type RoleOverrideAction int

const (
	// RoleOverrideNone means the hook took no position; normal role
	// matching proceeds.
	RoleOverrideNone RoleOverrideAction = iota
	// RoleOverrideForce forces the given role/task pair to be selected,
	// bypassing the normal scoring comparison.
	RoleOverrideForce
	// RoleOverrideDeny forces rejection of the given role regardless of
	// how it would otherwise score.
	RoleOverrideDeny
)

// RoleDecision is the result of a RoleOverride hook invocation.
type RoleDecision struct {
	Action RoleOverrideAction
	Role   string
	Task   string
}

// Hooks is the compiled-in extension surface consulted by the resolver.
// Every method must be safe to call for every resolution; NoopHooks is
// the default wired in when no domain-specific behavior is needed.
type Hooks interface {
	// SeparationOfDuty is consulted for each role before its actors are
	// matched, to let a policy-specific rule veto selection (e.g. an actor
	// who already holds one role in a conflicting set). Returning false
	// rejects the role as if it had not matched.
	SeparationOfDuty(cfg *policy.Config, role *policy.Role, invoker actor.Credentials) bool

	// MatchUnknownActor is consulted for policy.Actor entries whose Kind
	// is ActorKindUnknown (spec §3's forward-compatible actor extension
	// point). It returns whether invoker satisfies the unknown actor
	// type described by body, and the group count the role matcher
	// scores it with (as score.GroupMatch(groupCount)) when it does.
	MatchUnknownActor(kind string, body map[string]any, invoker actor.Credentials) (matched bool, groupCount int)

	// RoleOverride lets a hook short-circuit the role matcher's normal
	// best-score search for a given invoker and argv, e.g. to implement
	// a policy-specific "always prefer this role" rule.
	RoleOverride(cfg *policy.Config, invoker actor.Credentials, argv []string) RoleDecision

	// ParseComplexCommand expands a policy.Command of kind Complex into
	// the argv-matching pattern understood by the matcher package. A
	// Hooks implementation that does not understand body must return
	// ErrComplexCommandUnsupported. The resolver does not call this hook:
	// matcher.EvaluateCommandList skips every Complex entry.
	ParseComplexCommand(body map[string]any) (pattern []string, err error)
}

// NoopHooks is the zero-behavior Hooks implementation: no separation of
// duty rule, no unknown actor types, no role overrides, and no complex
// command support. It is the default wired into the resolver when a
// policy has no compiled-in domain extension.
type NoopHooks struct{}

func (NoopHooks) SeparationOfDuty(*policy.Config, *policy.Role, actor.Credentials) bool {
	return true
}

func (NoopHooks) MatchUnknownActor(string, map[string]any, actor.Credentials) (bool, int) {
	return false, 0
}

func (NoopHooks) RoleOverride(*policy.Config, actor.Credentials, []string) RoleDecision {
	return RoleDecision{Action: RoleOverrideNone}
}

func (NoopHooks) ParseComplexCommand(map[string]any) ([]string, error) {
	return nil, ErrComplexCommandUnsupported
}

var _ Hooks = NoopHooks{}
