package store

import (
	"fmt"
	"strconv"

	"github.com/rootasrole/rar/internal/actor"
	"github.com/rootasrole/rar/internal/policy"
)

func toPolicy(doc *docConfig) (*policy.Config, error) {
	cfg := &policy.Config{Version: doc.Version}

	opt, err := optFromDoc(doc.Options, policy.LayerGlobal)
	if err != nil {
		return nil, fmt.Errorf("config options: %w", err)
	}
	cfg.Options = opt

	for _, dr := range doc.Roles {
		role, err := roleFromDoc(&dr)
		if err != nil {
			return nil, fmt.Errorf("role %q: %w", dr.Name, err)
		}
		cfg.Roles = append(cfg.Roles, role)
	}
	return cfg, nil
}

func roleFromDoc(dr *docRole) (*policy.Role, error) {
	role := &policy.Role{Name: dr.Name}

	opt, err := optFromDoc(dr.Options, policy.LayerRole)
	if err != nil {
		return nil, fmt.Errorf("options: %w", err)
	}
	role.Options = opt

	for _, da := range dr.Actors {
		a, err := actorFromDoc(&da)
		if err != nil {
			return nil, fmt.Errorf("actor: %w", err)
		}
		role.Actors = append(role.Actors, a)
	}

	for i, dt := range dr.Tasks {
		t, err := taskFromDoc(&dt, i)
		if err != nil {
			return nil, fmt.Errorf("task %q: %w", dt.Name, err)
		}
		role.Tasks = append(role.Tasks, t)
	}
	return role, nil
}

func actorFromDoc(da *docActor) (policy.Actor, error) {
	switch da.Type {
	case "user":
		ref, err := actorRefFromDoc(da.ID, da.Name)
		if err != nil {
			return policy.Actor{}, err
		}
		return policy.Actor{Kind: policy.ActorKindUser, User: actor.NewUserRef(ref)}, nil
	case "group":
		var gs *actor.GroupSet
		var err error
		if len(da.Groups) > 0 {
			gs, err = groupSetFromDoc(&docGroupSet{Multiple: da.Groups})
		} else {
			gs, err = groupSetFromDoc(&docGroupSet{Single: &docGroupRef{ID: da.ID, Name: da.Name}})
		}
		if err != nil {
			return policy.Actor{}, err
		}
		return policy.Actor{Kind: policy.ActorKindGroup, Groups: *gs}, nil
	default:
		return policy.Actor{Kind: policy.ActorKindUnknown, UnknownType: da.Type, UnknownBody: da.Body}, nil
	}
}

func taskFromDoc(dt *docTask, ordinal int) (*policy.Task, error) {
	t := &policy.Task{
		Purpose: dt.Purpose,
	}
	if dt.Name != "" {
		t.Name, t.Explicit = dt.Name, true
	} else {
		t.Name, t.Explicit = strconv.Itoa(ordinal), false
	}

	setuid, err := userRefFromDoc(dt.Setuid)
	if err != nil {
		return nil, fmt.Errorf("setuid: %w", err)
	}
	t.Cred.Setuid = setuid

	setgid, err := groupSetFromDoc(dt.Setgid)
	if err != nil {
		return nil, fmt.Errorf("setgid: %w", err)
	}
	t.Cred.Setgid = setgid

	if dt.Capabilities != nil {
		add, err := capsSetFromDoc(dt.Capabilities.Add)
		if err != nil {
			return nil, fmt.Errorf("capabilities.add: %w", err)
		}
		sub, err := capsSetFromDoc(dt.Capabilities.Sub)
		if err != nil {
			return nil, fmt.Errorf("capabilities.sub: %w", err)
		}
		t.Cred.Capabilities = &policy.Capabilities{
			Default: capsBehaviorFromDoc(dt.Capabilities.Default),
			Add:     add,
			Sub:     sub,
		}
	}

	cmds, err := commandListFromDoc(&dt.Commands)
	if err != nil {
		return nil, fmt.Errorf("commands: %w", err)
	}
	t.Commands = cmds

	opt, err := optFromDoc(dt.Options, policy.LayerTask)
	if err != nil {
		return nil, fmt.Errorf("options: %w", err)
	}
	t.Options = opt

	return t, nil
}

func commandListFromDoc(d *docCommandList) (policy.CommandList, error) {
	add, err := commandsFromDoc(d.Add)
	if err != nil {
		return policy.CommandList{}, fmt.Errorf("add: %w", err)
	}
	sub, err := commandsFromDoc(d.Sub)
	if err != nil {
		return policy.CommandList{}, fmt.Errorf("sub: %w", err)
	}
	return policy.CommandList{
		Default: capsBehaviorFromDoc(d.Default),
		Add:     add,
		Sub:     sub,
	}, nil
}

func commandsFromDoc(ds []docCommand) ([]policy.Command, error) {
	out := make([]policy.Command, 0, len(ds))
	for _, d := range ds {
		if d.Simple != "" {
			out = append(out, policy.Command{Kind: policy.CommandSimple, Simple: d.Simple})
			continue
		}
		if d.Complex != nil {
			out = append(out, policy.Command{Kind: policy.CommandComplex, Complex: d.Complex})
			continue
		}
		return nil, fmt.Errorf("command entry has neither simple nor complex body")
	}
	return out, nil
}

func optFromDoc(d *docOpt, layer policy.Layer) (*policy.Opt, error) {
	if d == nil {
		return nil, nil
	}
	opt := &policy.Opt{Layer: layer}

	if d.Path != nil {
		behavior, err := pathBehaviorFromDoc(d.Path.Default)
		if err != nil {
			return nil, fmt.Errorf("path.default: %w", err)
		}
		opt.Path = &policy.PathOptions{Default: behavior, Add: d.Path.Add, Sub: d.Path.Sub}
	}

	if d.Env != nil {
		behavior, err := envBehaviorFromDoc(d.Env.Default)
		if err != nil {
			return nil, fmt.Errorf("env.default: %w", err)
		}
		keep, err := envKeysFromDoc(d.Env.Keep)
		if err != nil {
			return nil, fmt.Errorf("env.keep: %w", err)
		}
		check, err := envKeysFromDoc(d.Env.Check)
		if err != nil {
			return nil, fmt.Errorf("env.check: %w", err)
		}
		del, err := envKeysFromDoc(d.Env.Delete)
		if err != nil {
			return nil, fmt.Errorf("env.delete: %w", err)
		}
		opt.Env = &policy.EnvOptions{
			Default:          behavior,
			Keep:             keep,
			Check:            check,
			Delete:           del,
			Set:              d.Env.Set,
			OverrideBehavior: d.Env.OverrideBehavior,
		}
	}

	if d.Root != "" {
		root, err := rootBehaviorFromDoc(d.Root)
		if err != nil {
			return nil, fmt.Errorf("root: %w", err)
		}
		opt.Root = &root
	}
	if d.Bounding != "" {
		bounding, err := boundingBehaviorFromDoc(d.Bounding)
		if err != nil {
			return nil, fmt.Errorf("bounding: %w", err)
		}
		opt.Bounding = &bounding
	}
	if d.Authentication != "" {
		auth, err := authBehaviorFromDoc(d.Authentication)
		if err != nil {
			return nil, fmt.Errorf("authentication: %w", err)
		}
		opt.Authentication = &auth
	}
	opt.WildcardDenied = d.WildcardDenied

	if d.Timeout != nil {
		tt, err := timeoutTypeFromDoc(d.Timeout.Type)
		if err != nil {
			return nil, fmt.Errorf("timeout.type: %w", err)
		}
		dur, err := durationFromDoc(d.Timeout.Duration)
		if err != nil {
			return nil, fmt.Errorf("timeout.duration: %w", err)
		}
		opt.Timeout = &policy.Timeout{Type: tt, Duration: dur, MaxUsage: d.Timeout.MaxUsage}
	}

	return opt, nil
}

func envKeysFromDoc(raws []string) ([]policy.EnvKey, error) {
	out := make([]policy.EnvKey, 0, len(raws))
	for _, raw := range raws {
		k, err := policy.NewEnvKey(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

// fromPolicy is the inverse of toPolicy, used by Save.
func fromPolicy(cfg *policy.Config) *docConfig {
	doc := &docConfig{Version: cfg.Version, Options: optToDoc(cfg.Options)}
	for _, role := range cfg.Roles {
		doc.Roles = append(doc.Roles, roleToDoc(role))
	}
	return doc
}

func roleToDoc(role *policy.Role) docRole {
	dr := docRole{Name: role.Name, Options: optToDoc(role.Options)}
	for _, a := range role.Actors {
		dr.Actors = append(dr.Actors, actorToDoc(a))
	}
	for _, t := range role.Tasks {
		dr.Tasks = append(dr.Tasks, taskToDoc(t))
	}
	return dr
}

func actorToDoc(a policy.Actor) docActor {
	switch a.Kind {
	case policy.ActorKindUser:
		d := userRefToDoc(&a.User)
		return docActor{Type: "user", ID: d.ID, Name: d.Name}
	case policy.ActorKindGroup:
		gs := groupSetToDoc(&a.Groups)
		if gs.Single != nil {
			return docActor{Type: "group", ID: gs.Single.ID, Name: gs.Single.Name}
		}
		return docActor{Type: "group", Groups: gs.Multiple}
	default:
		return docActor{Type: a.UnknownType, Body: a.UnknownBody}
	}
}

func taskToDoc(t *policy.Task) docTask {
	dt := docTask{Purpose: t.Purpose, Options: optToDoc(t.Options)}
	if t.Explicit {
		dt.Name = t.Name
	}
	dt.Setuid = userRefToDoc(t.Cred.Setuid)
	dt.Setgid = groupSetToDoc(t.Cred.Setgid)
	if t.Cred.Capabilities != nil {
		dt.Capabilities = &docCaps{
			Default: capsBehaviorToDoc(t.Cred.Capabilities.Default),
			Add:     capsSetToDoc(t.Cred.Capabilities.Add),
			Sub:     capsSetToDoc(t.Cred.Capabilities.Sub),
		}
	}
	dt.Commands = commandListToDoc(t.Commands)
	return dt
}

func commandListToDoc(l policy.CommandList) docCommandList {
	return docCommandList{
		Default: capsBehaviorToDoc(l.Default),
		Add:     commandsToDoc(l.Add),
		Sub:     commandsToDoc(l.Sub),
	}
}

func commandsToDoc(cmds []policy.Command) []docCommand {
	out := make([]docCommand, 0, len(cmds))
	for _, c := range cmds {
		if c.Kind == policy.CommandComplex {
			out = append(out, docCommand{Complex: c.Complex})
			continue
		}
		out = append(out, docCommand{Simple: c.Simple})
	}
	return out
}

func optToDoc(o *policy.Opt) *docOpt {
	if o == nil {
		return nil
	}
	d := &docOpt{WildcardDenied: o.WildcardDenied}
	if o.Path != nil {
		d.Path = &docPathOptions{Default: pathBehaviorToDoc(o.Path.Default), Add: o.Path.Add, Sub: o.Path.Sub}
	}
	if o.Env != nil {
		d.Env = &docEnvOptions{
			Default:          envBehaviorToDoc(o.Env.Default),
			Keep:             envKeysToDoc(o.Env.Keep),
			Check:            envKeysToDoc(o.Env.Check),
			Delete:           envKeysToDoc(o.Env.Delete),
			Set:              o.Env.Set,
			OverrideBehavior: o.Env.OverrideBehavior,
		}
	}
	if o.Root != nil {
		d.Root = rootBehaviorToDoc(*o.Root)
	}
	if o.Bounding != nil {
		d.Bounding = boundingBehaviorToDoc(*o.Bounding)
	}
	if o.Authentication != nil {
		d.Authentication = authBehaviorToDoc(*o.Authentication)
	}
	if o.Timeout != nil {
		d.Timeout = &docTimeout{
			Type:     timeoutTypeToDoc(o.Timeout.Type),
			Duration: o.Timeout.Duration.String(),
			MaxUsage: o.Timeout.MaxUsage,
		}
	}
	return d
}

func envKeysToDoc(keys []policy.EnvKey) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k.String())
	}
	return out
}
