package store

import (
	"fmt"
	"time"

	"github.com/rootasrole/rar/internal/actor"
	"github.com/rootasrole/rar/internal/policy"
)

func pathBehaviorFromDoc(s string) (policy.PathBehavior, error) {
	switch s {
	case "", "delete":
		return policy.PathDelete, nil
	case "keepsafe":
		return policy.PathKeepSafe, nil
	case "keepunsafe":
		return policy.PathKeepUnsafe, nil
	case "inherit":
		return policy.PathInherit, nil
	default:
		return 0, fmt.Errorf("unknown path default %q", s)
	}
}

func pathBehaviorToDoc(b policy.PathBehavior) string {
	switch b {
	case policy.PathKeepSafe:
		return "keepsafe"
	case policy.PathKeepUnsafe:
		return "keepunsafe"
	case policy.PathInherit:
		return "inherit"
	default:
		return "delete"
	}
}

func envBehaviorFromDoc(s string) (policy.EnvBehavior, error) {
	switch s {
	case "", "delete":
		return policy.EnvDelete, nil
	case "keep":
		return policy.EnvKeep, nil
	case "inherit":
		return policy.EnvInherit, nil
	default:
		return 0, fmt.Errorf("unknown env default %q", s)
	}
}

func envBehaviorToDoc(b policy.EnvBehavior) string {
	switch b {
	case policy.EnvKeep:
		return "keep"
	case policy.EnvInherit:
		return "inherit"
	default:
		return "delete"
	}
}

func rootBehaviorFromDoc(s string) (policy.RootBehavior, error) {
	switch s {
	case "", "user":
		return policy.RootUser, nil
	case "privileged":
		return policy.RootPrivileged, nil
	case "inherit":
		return policy.RootInherit, nil
	default:
		return 0, fmt.Errorf("unknown root behavior %q", s)
	}
}

func rootBehaviorToDoc(b policy.RootBehavior) string {
	switch b {
	case policy.RootPrivileged:
		return "privileged"
	case policy.RootInherit:
		return "inherit"
	default:
		return "user"
	}
}

func boundingBehaviorFromDoc(s string) (policy.BoundingBehavior, error) {
	switch s {
	case "", "strict":
		return policy.BoundingStrict, nil
	case "ignore":
		return policy.BoundingIgnore, nil
	case "inherit":
		return policy.BoundingInherit, nil
	default:
		return 0, fmt.Errorf("unknown bounding behavior %q", s)
	}
}

func boundingBehaviorToDoc(b policy.BoundingBehavior) string {
	switch b {
	case policy.BoundingIgnore:
		return "ignore"
	case policy.BoundingInherit:
		return "inherit"
	default:
		return "strict"
	}
}

func authBehaviorFromDoc(s string) (policy.AuthBehavior, error) {
	switch s {
	case "", "perform":
		return policy.AuthPerform, nil
	case "skip":
		return policy.AuthSkip, nil
	case "inherit":
		return policy.AuthInherit, nil
	default:
		return 0, fmt.Errorf("unknown authentication behavior %q", s)
	}
}

func authBehaviorToDoc(b policy.AuthBehavior) string {
	switch b {
	case policy.AuthSkip:
		return "skip"
	case policy.AuthInherit:
		return "inherit"
	default:
		return "perform"
	}
}

func timeoutTypeFromDoc(s string) (policy.TimeoutType, error) {
	switch s {
	case "", "ppid":
		return policy.TimeoutPPID, nil
	case "tty":
		return policy.TimeoutTTY, nil
	case "uid":
		return policy.TimeoutUID, nil
	default:
		return 0, fmt.Errorf("unknown timeout type %q", s)
	}
}

func timeoutTypeToDoc(t policy.TimeoutType) string {
	switch t {
	case policy.TimeoutTTY:
		return "tty"
	case policy.TimeoutUID:
		return "uid"
	default:
		return "ppid"
	}
}

func groupRefFromDoc(d docGroupRef) (actor.GroupRef, error) {
	ref, err := actorRefFromDoc(d.ID, d.Name)
	if err != nil {
		return actor.GroupRef{}, err
	}
	return actor.NewGroupRef(ref), nil
}

func groupSetFromDoc(d *docGroupSet) (*actor.GroupSet, error) {
	if d == nil {
		return nil, nil
	}
	if d.Single != nil {
		g, err := groupRefFromDoc(*d.Single)
		if err != nil {
			return nil, err
		}
		gs := actor.NewSingle(g)
		return &gs, nil
	}
	groups := make([]actor.GroupRef, 0, len(d.Multiple))
	for _, m := range d.Multiple {
		g, err := groupRefFromDoc(m)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	gs := actor.NewMultiple(groups)
	return &gs, nil
}

func groupSetToDoc(gs *actor.GroupSet) *docGroupSet {
	if gs == nil {
		return nil
	}
	if gs.Kind == actor.GroupSetSingle && len(gs.Groups) == 1 {
		return &docGroupSet{Single: groupRefToDoc(gs.Groups[0])}
	}
	multiple := make([]docGroupRef, 0, len(gs.Groups))
	for _, g := range gs.Groups {
		multiple = append(multiple, *groupRefToDoc(g))
	}
	return &docGroupSet{Multiple: multiple}
}

func groupRefToDoc(g actor.GroupRef) *docGroupRef {
	if g.Ref.IsName() {
		return &docGroupRef{Name: g.Ref.String()}
	}
	id, _ := g.Resolve()
	return &docGroupRef{ID: &id}
}

func userRefFromDoc(d *docUserRef) (*actor.UserRef, error) {
	if d == nil {
		return nil, nil
	}
	ref, err := actorRefFromDoc(d.ID, d.Name)
	if err != nil {
		return nil, err
	}
	u := actor.NewUserRef(ref)
	return &u, nil
}

func userRefToDoc(u *actor.UserRef) *docUserRef {
	if u == nil {
		return nil
	}
	if u.Ref.IsName() {
		return &docUserRef{Name: u.Ref.String()}
	}
	id, _ := u.Resolve()
	return &docUserRef{ID: &id}
}

func durationFromDoc(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
