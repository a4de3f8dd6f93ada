// Package store loads and persists the policy document as YAML (spec
// §6.1): a configurable path, default /etc/security/rootasrole.yaml,
// overridable via internal/config's PolicyPath/RAR_POLICY_PATH. Load
// parses into internal/policy.Config and validates every invariant of
// spec §3 before handing the tree to the resolver; Save writes a fresh
// document atomically.
//
// The on-disk schema (doc*.go in this package) is a plain serialization
// shape kept deliberately separate from internal/policy's in-memory tree:
// the policy package models "how the resolver thinks about the data",
// this package models "how the data sits on disk". toPolicy/fromPolicy
// translate between them.
package store

import (
	"fmt"

	"github.com/rootasrole/rar/internal/actor"
	"github.com/rootasrole/rar/internal/capability"
	"github.com/rootasrole/rar/internal/policy"
)

type docConfig struct {
	Version string    `yaml:"version"`
	Options *docOpt   `yaml:"options,omitempty"`
	Roles   []docRole `yaml:"roles"`
}

type docRole struct {
	Name    string    `yaml:"name"`
	Actors  []docActor `yaml:"actors,omitempty"`
	Tasks   []docTask  `yaml:"tasks,omitempty"`
	Options *docOpt    `yaml:"options,omitempty"`
}

type docActor struct {
	Type string `yaml:"type"` // "user" | "group" | anything else => Unknown

	// user
	ID   *uint32 `yaml:"id,omitempty"`
	Name string  `yaml:"name,omitempty"`

	// group: either a single id/name (Single) or Groups (Multiple)
	Groups []docGroupRef `yaml:"groups,omitempty"`

	// unknown actor body; tagged "-", so it is neither read from nor
	// written to YAML
	Body map[string]any `yaml:"-"`
}

type docGroupRef struct {
	ID   *uint32 `yaml:"id,omitempty"`
	Name string  `yaml:"name,omitempty"`
}

type docTask struct {
	Name        string         `yaml:"name,omitempty"`
	Purpose     string         `yaml:"purpose,omitempty"`
	Setuid      *docUserRef    `yaml:"setuid,omitempty"`
	Setgid      *docGroupSet   `yaml:"setgid,omitempty"`
	Capabilities *docCaps      `yaml:"capabilities,omitempty"`
	Commands    docCommandList `yaml:"commands"`
	Options     *docOpt        `yaml:"options,omitempty"`
}

type docUserRef struct {
	ID   *uint32 `yaml:"id,omitempty"`
	Name string  `yaml:"name,omitempty"`
}

type docGroupSet struct {
	Single *docGroupRef  `yaml:"single,omitempty"`
	Multiple []docGroupRef `yaml:"multiple,omitempty"`
}

type docCaps struct {
	Default string   `yaml:"default"`
	Add     []string `yaml:"add,omitempty"`
	Sub     []string `yaml:"sub,omitempty"`
}

type docCommand struct {
	Simple  string         `yaml:"simple,omitempty"`
	Complex map[string]any `yaml:"complex,omitempty"`
}

type docCommandList struct {
	Default string       `yaml:"default"`
	Add     []docCommand `yaml:"add,omitempty"`
	Sub     []docCommand `yaml:"sub,omitempty"`
}

type docOpt struct {
	Path           *docPathOptions `yaml:"path,omitempty"`
	Env            *docEnvOptions  `yaml:"env,omitempty"`
	Root           string          `yaml:"root,omitempty"`
	Bounding       string          `yaml:"bounding,omitempty"`
	Authentication string          `yaml:"authentication,omitempty"`
	WildcardDenied *string         `yaml:"wildcard_denied,omitempty"`
	Timeout        *docTimeout     `yaml:"timeout,omitempty"`
}

type docPathOptions struct {
	Default string   `yaml:"default"`
	Add     []string `yaml:"add,omitempty"`
	Sub     []string `yaml:"sub,omitempty"`
}

type docEnvOptions struct {
	Default          string            `yaml:"default"`
	Keep             []string          `yaml:"keep,omitempty"`
	Check            []string          `yaml:"check,omitempty"`
	Delete           []string          `yaml:"delete,omitempty"`
	Set              map[string]string `yaml:"set,omitempty"`
	OverrideBehavior *bool             `yaml:"override_behavior,omitempty"`
}

type docTimeout struct {
	Type     string `yaml:"type"`
	Duration string `yaml:"duration"`
	MaxUsage uint   `yaml:"max_usage,omitempty"`
}

// actorRefFromDoc builds an actor.Ref from an optional numeric id / name
// pair, preferring the id when both are present (spec §3 ActorRef).
func actorRefFromDoc(id *uint32, name string) (actor.Ref, error) {
	if id != nil {
		return actor.ByID(*id), nil
	}
	if name != "" {
		return actor.ByName(name), nil
	}
	return actor.Ref{}, fmt.Errorf("actor reference has neither id nor name")
}

func capsBehaviorFromDoc(s string) policy.SetBehavior {
	if s == "all" {
		return policy.SetBehaviorAll
	}
	return policy.SetBehaviorNone
}

func capsBehaviorToDoc(b policy.SetBehavior) string { return b.String() }

func capsSetFromDoc(names []string) (capability.Set, error) {
	return capability.NewSet(names)
}

func capsSetToDoc(s capability.Set) []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, string(n))
	}
	return out
}
