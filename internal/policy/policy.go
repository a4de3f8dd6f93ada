// Package policy holds the immutable policy tree of spec §3: Config, Role,
// Task, Actor, Command, CommandList, Capabilities and the Opt option block.
// The tree is built once by the document store (internal/store) and never
// mutated while the resolver holds it; the editor (internal/editor) works
// against its own loaded copy and persists a fresh tree on success.
//
// Nodes are held in plain slices rather than shared-ownership cells with
// weak back-pointers (the approach the Rust original takes): the resolver
// is read-only per invocation, so parent context is threaded down as
// function arguments instead (spec §9's "arena + index" alternative).
package policy

import (
	"fmt"

	"github.com/rootasrole/rar/internal/actor"
	"github.com/rootasrole/rar/internal/capability"
)

// SetBehavior is the default allow/deny posture of a command list or
// capability set before its add/sub overrides are applied.
type SetBehavior int

const (
	SetBehaviorNone SetBehavior = iota
	SetBehaviorAll
)

func (b SetBehavior) String() string {
	if b == SetBehaviorAll {
		return "all"
	}
	return "none"
}

// CommandKind distinguishes a plain shell-word command from one delegated
// to a plugin.
type CommandKind int

const (
	CommandSimple CommandKind = iota
	CommandComplex
)

// Command is a single entry in a CommandList's add/sub lists.
type Command struct {
	Kind    CommandKind
	Simple  string         // shell-word string, parsed via POSIX rules
	Complex map[string]any // opaque, handed to plugin.Hooks.ParseComplexCommand
}

// CommandList is a task's allow/deny command policy (spec §3: default
// behavior + ordered add + ordered sub, sub is an absolute blacklist).
type CommandList struct {
	Default SetBehavior
	Add     []Command
	Sub     []Command
}

// Capabilities is a task's capability grant (spec §3: default behavior over
// the 64-bit vector plus explicit add/sub, sub wins on overlap).
type Capabilities struct {
	Default SetBehavior
	Add     capability.Set
	Sub     capability.Set
}

// Effective computes (default ∘ add) \ sub.
func (c Capabilities) Effective() capability.Set {
	base := capability.Set{}
	if c.Default == SetBehaviorAll {
		base = capability.All()
	}
	return capability.Difference(capability.Union(base, c.Add), c.Sub)
}

// ActorKind discriminates the variants of the Actor policy entry.
type ActorKind int

const (
	ActorKindUser ActorKind = iota
	ActorKindGroup
	ActorKindUnknown
)

// Actor is one entry in a Role's actor list (spec §3: User | Group |
// Unknown).
type Actor struct {
	Kind   ActorKind
	User   actor.UserRef
	Groups actor.GroupSet

	// UnknownType and UnknownBody hold an actor whose "type" discriminator
	// isn't "user" or "group"; handed to plugin.Hooks.MatchUnknownActor.
	UnknownType string
	UnknownBody map[string]any
}

// Cred is a task's credential grant (spec §3 Task.cred).
type Cred struct {
	Setuid       *actor.UserRef
	Setgid       *actor.GroupSet
	Capabilities *Capabilities
}

// Task is the atomic grant: commands allowed, credentials assumed, options
// applied (spec §3, §glossary).
type Task struct {
	// Name is the explicit name if Explicit is true, else a decimal ordinal
	// index rendering (spec §3: "name (either user-given string or ordinal
	// index within role)").
	Name     string
	Explicit bool
	Purpose  string
	Cred     Cred
	Commands CommandList
	Options  *Opt
}

// DisplayName renders the task's name for CLI/table output.
func (t *Task) DisplayName() string {
	if t.Explicit {
		return t.Name
	}
	return fmt.Sprintf("#%s", t.Name)
}

// Role is a named bundle of Actors + Tasks (spec §3, §glossary).
type Role struct {
	Name    string
	Actors  []Actor
	Tasks   []*Task
	Options *Opt
}

// Config is the policy document root (spec §3, §6).
type Config struct {
	Version string
	Options *Opt
	Roles   []*Role
}

// FindRole returns the role named name, or nil.
func (c *Config) FindRole(name string) *Role {
	for _, r := range c.Roles {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// FindTask returns the task named name within r (matching both explicit
// names and ordinal renderings), or nil.
func (r *Role) FindTask(name string) *Task {
	for _, t := range r.Tasks {
		if t.DisplayName() == name || t.Name == name {
			return t
		}
	}
	return nil
}
