// Package actor implements the id-or-name actor references of the policy
// data model (spec §3: ActorRef, UserRef, GroupRef, GroupSet) and their
// resolution against the OS user/group database.
package actor

import (
	"fmt"
	"os/user"
	"strconv"
)

// Ref is a tagged id-or-name reference, used for both users and groups.
// The zero value is invalid; construct with ByID or ByName.
type Ref struct {
	id       uint32
	name     string
	isByName bool
}

// ByID builds a Ref from a numeric id.
func ByID(id uint32) Ref { return Ref{id: id} }

// ByName builds a Ref from a name, resolved lazily.
func ByName(name string) Ref { return Ref{name: name, isByName: true} }

// IsName reports whether the Ref was constructed from a name.
func (r Ref) IsName() bool { return r.isByName }

// String renders the Ref the way it was given: the raw id or the raw name.
func (r Ref) String() string {
	if r.isByName {
		return r.name
	}
	return strconv.FormatUint(uint64(r.id), 10)
}

// Kind selects which OS namespace (user or group) a name lookup resolves
// against.
type Kind int

const (
	KindUser Kind = iota
	KindGroup
)

// Resolve looks up the canonical numeric id for r. Unresolved names return
// ok=false so that callers compare them as unequal to everything, per spec.
func (r Ref) Resolve(kind Kind) (id uint32, ok bool) {
	if !r.isByName {
		return r.id, true
	}
	switch kind {
	case KindUser:
		u, err := user.Lookup(r.name)
		if err != nil {
			return 0, false
		}
		n, err := strconv.ParseUint(u.Uid, 10, 32)
		if err != nil {
			return 0, false
		}
		return uint32(n), true
	case KindGroup:
		g, err := user.LookupGroup(r.name)
		if err != nil {
			return 0, false
		}
		n, err := strconv.ParseUint(g.Gid, 10, 32)
		if err != nil {
			return 0, false
		}
		return uint32(n), true
	default:
		return 0, false
	}
}

// Equal reports whether two Refs of the same kind resolve to the same id.
// Per spec, unresolved names never compare equal.
func Equal(kind Kind, a, b Ref) bool {
	aid, aok := a.Resolve(kind)
	bid, bok := b.Resolve(kind)
	return aok && bok && aid == bid
}

// UserRef and GroupRef are Ref specialized by namespace, kept distinct so
// the policy/YAML layer can't mix them up.
type UserRef struct{ Ref Ref }

func NewUserRef(ref Ref) UserRef { return UserRef{Ref: ref} }

func (u UserRef) Resolve() (uint32, bool) { return u.Ref.Resolve(KindUser) }

// IsRoot reports whether u denotes uid 0 or the literal name "root".
func (u UserRef) IsRoot() bool {
	if u.Ref.isByName {
		return u.Ref.name == "root"
	}
	return u.Ref.id == 0
}

type GroupRef struct{ Ref Ref }

func NewGroupRef(ref Ref) GroupRef { return GroupRef{Ref: ref} }

func (g GroupRef) Resolve() (uint32, bool) { return g.Ref.Resolve(KindGroup) }

func (g GroupRef) IsRoot() bool {
	if g.Ref.isByName {
		return g.Ref.name == "root"
	}
	return g.Ref.id == 0
}

// GroupSetKind distinguishes a singleton group from a conjunction of groups.
type GroupSetKind int

const (
	GroupSetSingle GroupSetKind = iota
	GroupSetMultiple
)

// GroupSet matches an invoker's group list iff every member is present
// (spec §3 invariant 4: ∀ GroupSet Multiple([g1,…,gn]) and invoker groups G,
// matches iff ∀i. gi ∈ G — a singleton GroupSet is the n=1 case).
type GroupSet struct {
	Kind   GroupSetKind
	Groups []GroupRef
}

// NewSingle builds a one-element GroupSet.
func NewSingle(g GroupRef) GroupSet {
	return GroupSet{Kind: GroupSetSingle, Groups: []GroupRef{g}}
}

// NewMultiple builds a conjunctive GroupSet. Order is preserved for display
// but not significant for matching.
func NewMultiple(groups []GroupRef) GroupSet {
	return GroupSet{Kind: GroupSetMultiple, Groups: groups}
}

// Len returns the number of groups in the set (used as the tie-breaking
// count in score.UserMin/GroupMatch(n) and score.SetuserMin).
func (gs GroupSet) Len() int { return len(gs.Groups) }

// Matches reports whether every group in gs resolves to a group present in
// invokerGIDs.
func (gs GroupSet) Matches(invokerGIDs []uint32) bool {
	if len(gs.Groups) == 0 {
		return false
	}
	present := func(gid uint32) bool {
		for _, g := range invokerGIDs {
			if g == gid {
				return true
			}
		}
		return false
	}
	for _, g := range gs.Groups {
		gid, ok := g.Resolve()
		if !ok || !present(gid) {
			return false
		}
	}
	return true
}

// ContainsRoot reports whether any member of gs denotes the root group.
func (gs GroupSet) ContainsRoot() bool {
	for _, g := range gs.Groups {
		if g.IsRoot() {
			return true
		}
	}
	return false
}

// Credentials is the invoker's resolved identity (spec §3 Credentials).
type Credentials struct {
	UID  uint32
	GIDs []uint32
	TTY  *uint64
	PPID int32
}

// String implements a debug-friendly rendering used by log lines.
func (c Credentials) String() string {
	return fmt.Sprintf("uid=%d gids=%v ppid=%d", c.UID, c.GIDs, c.PPID)
}
