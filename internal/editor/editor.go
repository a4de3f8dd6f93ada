// Package editor implements the policy document mutations of spec §4.9:
// a small set of verbs (create/delete/purge, grant/revoke, add/del/set,
// setpolicy, set/unset) that mutate a loaded *policy.Config in place,
// each returning whether the document actually changed so the caller
// only persists on a real edit. CreateTask re-runs store.Validate and rolls
// back on a violation, leaving cfg untouched; the other mutations do not
// re-run it, and store.Save refuses to persist a document that fails it.
package editor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rootasrole/rar/internal/actor"
	"github.com/rootasrole/rar/internal/capability"
	"github.com/rootasrole/rar/internal/policy"
	"github.com/rootasrole/rar/internal/store"
)

// ErrNotFound is returned by mutations that target a nonexistent role or
// task.
var ErrNotFound = fmt.Errorf("role or task not found")

// CreateRole adds a new, empty role named name. Returns changed=false if a
// role by that name already exists (idempotent no-op, not an error).
func CreateRole(cfg *policy.Config, name string) (bool, error) {
	if cfg.FindRole(name) != nil {
		return false, nil
	}
	cfg.Roles = append(cfg.Roles, &policy.Role{Name: name})
	return true, nil
}

// DeleteRole removes the role named name entirely.
func DeleteRole(cfg *policy.Config, name string) (bool, error) {
	for i, r := range cfg.Roles {
		if r.Name == name {
			cfg.Roles = append(cfg.Roles[:i], cfg.Roles[i+1:]...)
			return true, nil
		}
	}
	return false, ErrNotFound
}

// PurgeRole clears a role's actors and tasks but keeps the role itself
// (and its option block) in place.
func PurgeRole(cfg *policy.Config, name string) (bool, error) {
	role := cfg.FindRole(name)
	if role == nil {
		return false, ErrNotFound
	}
	changed := len(role.Actors) > 0 || len(role.Tasks) > 0
	role.Actors = nil
	role.Tasks = nil
	return changed, nil
}

// CreateTask adds a new task to roleName. If taskName is empty, the task is
// implicit and gets the next ordinal index.
func CreateTask(cfg *policy.Config, roleName, taskName string) (bool, error) {
	role := cfg.FindRole(roleName)
	if role == nil {
		return false, ErrNotFound
	}
	if taskName != "" && role.FindTask(taskName) != nil {
		return false, nil
	}
	t := &policy.Task{Commands: policy.CommandList{Default: policy.SetBehaviorNone}}
	if taskName != "" {
		t.Name, t.Explicit = taskName, true
	} else {
		t.Name, t.Explicit = strconv.Itoa(len(role.Tasks)), false
	}
	role.Tasks = append(role.Tasks, t)

	if err := store.Validate(cfg); err != nil {
		role.Tasks = role.Tasks[:len(role.Tasks)-1]
		return false, err
	}
	return true, nil
}

// DeleteTask removes taskName from roleName.
func DeleteTask(cfg *policy.Config, roleName, taskName string) (bool, error) {
	role := cfg.FindRole(roleName)
	if role == nil {
		return false, ErrNotFound
	}
	for i, t := range role.Tasks {
		if t.DisplayName() == taskName || t.Name == taskName {
			role.Tasks = append(role.Tasks[:i], role.Tasks[i+1:]...)
			return true, nil
		}
	}
	return false, ErrNotFound
}

// PurgeTask resets a task's credentials, commands and options, keeping the
// task's name/identity.
func PurgeTask(cfg *policy.Config, roleName, taskName string) (bool, error) {
	role := cfg.FindRole(roleName)
	if role == nil {
		return false, ErrNotFound
	}
	task := role.FindTask(taskName)
	if task == nil {
		return false, ErrNotFound
	}
	task.Cred = policy.Cred{}
	task.Commands = policy.CommandList{Default: policy.SetBehaviorNone}
	task.Options = nil
	return true, nil
}

// ParseActorSpec parses "user:<name-or-id>" or "group:<name-or-id>[,<name-or-id>...]"
// into a policy.Actor; a comma-separated group spec builds a Multiple
// GroupSet (spec §3 GroupSet).
func ParseActorSpec(spec string) (policy.Actor, error) {
	kind, rest, ok := strings.Cut(spec, ":")
	if !ok {
		return policy.Actor{}, fmt.Errorf("invalid actor spec %q: expected kind:value", spec)
	}
	switch kind {
	case "user":
		return policy.Actor{Kind: policy.ActorKindUser, User: actor.NewUserRef(refFromSpec(rest))}, nil
	case "group":
		names := strings.Split(rest, ",")
		if len(names) == 1 {
			gs := actor.NewSingle(actor.NewGroupRef(refFromSpec(names[0])))
			return policy.Actor{Kind: policy.ActorKindGroup, Groups: gs}, nil
		}
		groups := make([]actor.GroupRef, 0, len(names))
		for _, n := range names {
			groups = append(groups, actor.NewGroupRef(refFromSpec(n)))
		}
		return policy.Actor{Kind: policy.ActorKindGroup, Groups: actor.NewMultiple(groups)}, nil
	default:
		return policy.Actor{}, fmt.Errorf("invalid actor kind %q: expected user or group", kind)
	}
}

func refFromSpec(s string) actor.Ref {
	if id, err := strconv.ParseUint(s, 10, 32); err == nil {
		return actor.ByID(uint32(id))
	}
	return actor.ByName(s)
}

// Grant adds an actor to roleName's actor list.
func Grant(cfg *policy.Config, roleName string, a policy.Actor) (bool, error) {
	role := cfg.FindRole(roleName)
	if role == nil {
		return false, ErrNotFound
	}
	role.Actors = append(role.Actors, a)
	return true, nil
}

// Revoke removes the first actor in roleName matching spec from its actor
// list.
func Revoke(cfg *policy.Config, roleName, spec string) (bool, error) {
	role := cfg.FindRole(roleName)
	if role == nil {
		return false, ErrNotFound
	}
	target, err := ParseActorSpec(spec)
	if err != nil {
		return false, err
	}
	for i, a := range role.Actors {
		if actorsEqual(a, target) {
			role.Actors = append(role.Actors[:i], role.Actors[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func actorsEqual(a, b policy.Actor) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case policy.ActorKindUser:
		return a.User.Ref.String() == b.User.Ref.String()
	case policy.ActorKindGroup:
		return actor.Equal(actor.KindGroup, groupRefOf(a), groupRefOf(b))
	default:
		return a.UnknownType == b.UnknownType
	}
}

func groupRefOf(a policy.Actor) actor.Ref {
	if len(a.Groups.Groups) == 0 {
		return actor.Ref{}
	}
	return a.Groups.Groups[0].Ref
}

// CommandListKind selects which side of a task's CommandList a mutation
// targets (spec §4.9's whitelist/blacklist qualifiers).
type CommandListKind int

const (
	Whitelist CommandListKind = iota // task.Commands.Add
	Blacklist                        // task.Commands.Sub
)

// AddCommand appends cmd to the chosen list of roleName/taskName.
func AddCommand(cfg *policy.Config, roleName, taskName string, kind CommandListKind, cmd string) (bool, error) {
	task, err := findTask(cfg, roleName, taskName)
	if err != nil {
		return false, err
	}
	c := policy.Command{Kind: policy.CommandSimple, Simple: cmd}
	if kind == Whitelist {
		task.Commands.Add = append(task.Commands.Add, c)
	} else {
		task.Commands.Sub = append(task.Commands.Sub, c)
	}
	return true, nil
}

// DelCommand removes the first entry matching cmd from the chosen list.
func DelCommand(cfg *policy.Config, roleName, taskName string, kind CommandListKind, cmd string) (bool, error) {
	task, err := findTask(cfg, roleName, taskName)
	if err != nil {
		return false, err
	}
	list := &task.Commands.Add
	if kind == Blacklist {
		list = &task.Commands.Sub
	}
	for i, c := range *list {
		if c.Simple == cmd {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// SetCommandPolicy sets the default allow/deny behavior for a task's
// command list (spec §4.9 "setpolicy").
func SetCommandPolicy(cfg *policy.Config, roleName, taskName string, behavior policy.SetBehavior) (bool, error) {
	task, err := findTask(cfg, roleName, taskName)
	if err != nil {
		return false, err
	}
	if task.Commands.Default == behavior {
		return false, nil
	}
	task.Commands.Default = behavior
	return true, nil
}

// SetCapabilityPolicy sets the default behavior of a task's capability set.
func SetCapabilityPolicy(cfg *policy.Config, roleName, taskName string, behavior policy.SetBehavior) (bool, error) {
	task, err := findTask(cfg, roleName, taskName)
	if err != nil {
		return false, err
	}
	if task.Cred.Capabilities == nil {
		task.Cred.Capabilities = &policy.Capabilities{}
	}
	if task.Cred.Capabilities.Default == behavior {
		return false, nil
	}
	task.Cred.Capabilities.Default = behavior
	return true, nil
}

// AddCapability adds a capability to a task's add set.
func AddCapability(cfg *policy.Config, roleName, taskName, name string) (bool, error) {
	task, err := findTask(cfg, roleName, taskName)
	if err != nil {
		return false, err
	}
	n, err := capability.Parse(name)
	if err != nil {
		return false, err
	}
	if task.Cred.Capabilities == nil {
		task.Cred.Capabilities = &policy.Capabilities{}
	}
	if task.Cred.Capabilities.Add == nil {
		task.Cred.Capabilities.Add = capability.Set{}
	}
	if _, ok := task.Cred.Capabilities.Add[n]; ok {
		return false, nil
	}
	task.Cred.Capabilities.Add[n] = struct{}{}
	return true, nil
}

// DelCapability removes a capability from a task's add set.
func DelCapability(cfg *policy.Config, roleName, taskName, name string) (bool, error) {
	task, err := findTask(cfg, roleName, taskName)
	if err != nil {
		return false, err
	}
	n, err := capability.Parse(name)
	if err != nil {
		return false, err
	}
	if task.Cred.Capabilities == nil || task.Cred.Capabilities.Add == nil {
		return false, nil
	}
	if _, ok := task.Cred.Capabilities.Add[n]; !ok {
		return false, nil
	}
	delete(task.Cred.Capabilities.Add, n)
	return true, nil
}

func findTask(cfg *policy.Config, roleName, taskName string) (*policy.Task, error) {
	role := cfg.FindRole(roleName)
	if role == nil {
		return nil, ErrNotFound
	}
	task := role.FindTask(taskName)
	if task == nil {
		return nil, ErrNotFound
	}
	return task, nil
}
