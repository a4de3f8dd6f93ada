// Package optstack implements the layered option block of spec §4.7: a
// [Default, Global, Role, Task] stack of *policy.Opt, finalized on demand
// into path/env/scalar settings rather than stored pre-folded.
package optstack

import (
	"time"

	"github.com/rootasrole/rar/internal/policy"
)

// Stack is the four layers, populated by walking a task upward to its role
// and the config root. Default is always populated from compile-time
// defaults (DefaultOpt); the others are nil when that layer carries no
// option block.
type Stack struct {
	Default *policy.Opt
	Global  *policy.Opt
	Role    *policy.Opt
	Task    *policy.Opt
}

// DefaultOpt is the compile-time Default layer (spec §4.7): it must supply
// every scalar field and a baseline PATH.
func DefaultOpt() *policy.Opt {
	root := policy.RootUser
	bounding := policy.BoundingStrict
	auth := policy.AuthPerform
	wildcard := "\\`$&*?"
	return &policy.Opt{
		Layer: policy.LayerDefault,
		Path: &policy.PathOptions{
			Default: policy.PathDelete,
			Add: []string{
				"/usr/local/sbin", "/usr/local/bin", "/usr/sbin",
				"/usr/bin", "/sbin", "/bin", "/snap/bin",
			},
		},
		Env: &policy.EnvOptions{
			Default: policy.EnvDelete,
		},
		Root:           &root,
		Bounding:       &bounding,
		Authentication: &auth,
		WildcardDenied: &wildcard,
		Timeout: &policy.Timeout{
			Type:     policy.TimeoutPPID,
			Duration: 5 * time.Minute,
		},
	}
}

// New builds a Stack for a task, threading its role and the config's global
// options as arguments in place of back-pointers (spec §9).
func New(global, role, task *policy.Opt) Stack {
	return Stack{Default: DefaultOpt(), Global: global, Role: role, Task: task}
}

func (s Stack) layers() []*policy.Opt { return []*policy.Opt{s.Default, s.Global, s.Role, s.Task} }

// Path is the finalized PATH policy.
type Path struct {
	Behavior policy.PathBehavior
	Add      []string
	Sub      []string
}

// FinalizePath folds path options top-down: a non-Inherit layer resets the
// accumulator to its own add/sub; an Inherit layer unions its add (minus its
// own sub) in when the running behavior is Delete, or unions its sub in
// when the running behavior is a Keep* variant.
func (s Stack) FinalizePath() Path {
	var out Path
	out.Behavior = policy.PathDelete
	for _, layer := range s.layers() {
		if layer == nil || layer.Path == nil {
			continue
		}
		p := layer.Path
		if p.Default != policy.PathInherit {
			out.Behavior = p.Default
			out.Add = append([]string(nil), p.Add...)
			out.Sub = append([]string(nil), p.Sub...)
			continue
		}
		switch out.Behavior {
		case policy.PathDelete:
			out.Add = append(out.Add, subtract(p.Add, p.Sub)...)
		case policy.PathKeepSafe, policy.PathKeepUnsafe:
			out.Sub = append(out.Sub, p.Sub...)
		}
	}
	return out
}

// Env is the finalized environment policy.
type Env struct {
	Behavior         policy.EnvBehavior
	Keep             []policy.EnvKey
	Check            []policy.EnvKey
	Delete           []policy.EnvKey
	Set              map[string]string
	OverrideBehavior bool
}

// FinalizeEnv folds env options top-down with the same reset/extend rule as
// FinalizePath; the `set` map updates overwrite on key collision (the
// deepest, i.e. task, layer wins).
func (s Stack) FinalizeEnv() Env {
	out := Env{Behavior: policy.EnvDelete, Set: map[string]string{}}
	for _, layer := range s.layers() {
		if layer == nil || layer.Env == nil {
			continue
		}
		e := layer.Env
		if e.Default != policy.EnvInherit {
			out.Behavior = e.Default
			out.Keep = append([]policy.EnvKey(nil), e.Keep...)
			out.Check = append([]policy.EnvKey(nil), e.Check...)
			out.Delete = append([]policy.EnvKey(nil), e.Delete...)
		} else {
			switch out.Behavior {
			case policy.EnvDelete:
				out.Keep = append(out.Keep, e.Keep...)
			case policy.EnvKeep:
				out.Delete = append(out.Delete, e.Delete...)
			}
			out.Check = append(out.Check, e.Check...)
		}
		for k, v := range e.Set {
			out.Set[k] = v
		}
		if e.OverrideBehavior != nil {
			out.OverrideBehavior = *e.OverrideBehavior
		}
	}
	return out
}

// Scalars is the finalized set of non-list options: the deepest layer that
// defines a non-Inherit value wins, searched from Task down to Default.
type Scalars struct {
	Root           policy.RootBehavior
	Bounding       policy.BoundingBehavior
	Authentication policy.AuthBehavior
	WildcardDenied string
	Timeout        policy.Timeout
}

func (s Stack) FinalizeScalars() Scalars {
	var out Scalars
	reversed := []*policy.Opt{s.Task, s.Role, s.Global, s.Default}

	rootSet, boundSet, authSet, wildSet, toSet := false, false, false, false, false
	for _, layer := range reversed {
		if layer == nil {
			continue
		}
		if !rootSet && layer.Root != nil && *layer.Root != policy.RootInherit {
			out.Root = *layer.Root
			rootSet = true
		}
		if !boundSet && layer.Bounding != nil && *layer.Bounding != policy.BoundingInherit {
			out.Bounding = *layer.Bounding
			boundSet = true
		}
		if !authSet && layer.Authentication != nil && *layer.Authentication != policy.AuthInherit {
			out.Authentication = *layer.Authentication
			authSet = true
		}
		if !wildSet && layer.WildcardDenied != nil {
			out.WildcardDenied = *layer.WildcardDenied
			wildSet = true
		}
		if !toSet && layer.Timeout != nil {
			out.Timeout = *layer.Timeout
			toSet = true
		}
	}
	return out
}

func subtract(add, sub []string) []string {
	if len(sub) == 0 {
		return append([]string(nil), add...)
	}
	excl := make(map[string]struct{}, len(sub))
	for _, s := range sub {
		excl[s] = struct{}{}
	}
	out := make([]string, 0, len(add))
	for _, a := range add {
		if _, skip := excl[a]; !skip {
			out = append(out, a)
		}
	}
	return out
}
