package score

import (
	"testing"

	"github.com/rootasrole/rar/internal/actor"
)

func TestUserMinOrdering(t *testing.T) {
	if UserMatch().Compare(GroupMatch(1)) >= 0 {
		t.Fatal("UserMatch must be preferred over GroupMatch")
	}
	if GroupMatch(1).Compare(GroupMatch(2)) >= 0 {
		t.Fatal("fewer groups must be preferred")
	}
	if GroupMatch(2).Compare(NoMatch) >= 0 {
		t.Fatal("NoMatch must be the largest (worst)")
	}
}

func TestCapsMinOrdering(t *testing.T) {
	cases := []CapsMin{CapsNoCaps, CapsNoAdmin(1), CapsNoAdmin(2), CapsAdmin(1), CapsAdmin(2), CapsAll}
	for i := 0; i < len(cases)-1; i++ {
		if cases[i].Compare(cases[i+1]) >= 0 {
			t.Fatalf("expected %+v < %+v", cases[i], cases[i+1])
		}
	}
}

func TestCmdCmpIsPrimary(t *testing.T) {
	// spec §9 open question: cmd-primary ordering is authoritative.
	better := Score{UserMin: NoMatch, CmdMin: Match, CapsMin: CapsNoCaps}
	worse := Score{UserMin: UserMatch(), CmdMin: WildcardPath, CapsMin: CapsNoCaps}
	if !better.Less(worse) {
		t.Fatalf("expected cmd_min to dominate user_min in total ordering")
	}
}

func TestCmdMinAllIsWeakest(t *testing.T) {
	if CmdMinAll().Compare(Match) <= 0 {
		t.Fatalf("CmdMinAll must be weaker (larger) than an exact Match")
	}
}

func TestSetuserMinTable(t *testing.T) {
	root := actor.NewUserRef(actor.ByName("root"))
	nonRoot := actor.NewUserRef(actor.ByName("alice"))
	rootGroup := actor.NewSingle(actor.NewGroupRef(actor.ByName("root")))
	otherGroup := actor.NewSingle(actor.NewGroupRef(actor.ByName("wheel")))

	cases := []struct {
		name       string
		setuid     *actor.UserRef
		setgid     *actor.GroupSet
		enableRoot bool
		want       SetuserMinKind
	}{
		{"nil/nil", nil, nil, false, SetuserKindNoSetuidNoSetgid},
		{"nil/group no enableRoot", nil, &otherGroup, false, SetuserKindSetgid},
		{"nil/rootgroup no enableRoot", nil, &rootGroup, false, SetuserKindSetgid},
		{"nil/rootgroup enableRoot", nil, &rootGroup, true, SetuserKindSetgidRoot},
		{"uid/nil no enableRoot", &nonRoot, nil, false, SetuserKindSetuid},
		{"rootuid/nil no enableRoot", &root, nil, false, SetuserKindSetuid},
		{"rootuid/nil enableRoot", &root, nil, true, SetuserKindSetuidRoot},
		{"uid/group no enableRoot", &nonRoot, &otherGroup, false, SetuserKindSetuidSetgid},
		{"rootuid/rootgroup enableRoot", &root, &rootGroup, true, SetuserKindSetuidSetgidRoot},
		{"rootuid/othergroup enableRoot", &root, &otherGroup, true, SetuserKindSetuidRootSetgid},
		{"nonrootuid/rootgroup enableRoot", &nonRoot, &rootGroup, true, SetuserKindSetuidNotrootSetgidRoot},
		{"nonrootuid/othergroup enableRoot", &nonRoot, &otherGroup, true, SetuserKindSetuidSetgid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SetuserMinFor(tc.setuid, tc.setgid, tc.enableRoot)
			if got.Kind != tc.want {
				t.Fatalf("got %v, want %v", got.Kind, tc.want)
			}
		})
	}
}

func TestScoreFullyMatching(t *testing.T) {
	s := Zero
	if s.FullyMatching() {
		t.Fatal("zero score must not be fully matching")
	}
	s.UserMin = UserMatch()
	s.CmdMin = Match
	if !s.FullyMatching() {
		t.Fatal("expected fully matching once both dimensions score")
	}
}
