package resolve

import (
	"testing"

	"github.com/rootasrole/rar/internal/actor"
	"github.com/rootasrole/rar/internal/policy"
)

func rootRole() *policy.Role {
	return &policy.Role{
		Name: "r_root",
		Actors: []policy.Actor{
			{Kind: policy.ActorKindUser, User: actor.NewUserRef(actor.ByID(0))},
		},
		Tasks: []*policy.Task{
			{
				Name:     "0",
				Explicit: false,
				Commands: policy.CommandList{Default: policy.SetBehaviorAll},
			},
		},
	}
}

func TestResolveMatchesRootByDefaultAll(t *testing.T) {
	cfg := &policy.Config{Roles: []*policy.Role{rootRole()}}
	cred := actor.Credentials{UID: 0, GIDs: []uint32{0}}

	rm, err := Resolve(cfg, cred, []string{"/bin/ls"}, Filter{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rm.Role.Name != "r_root" {
		t.Fatalf("expected r_root, got %s", rm.Role.Name)
	}
}

func TestResolveNoMatchForWrongUser(t *testing.T) {
	cfg := &policy.Config{Roles: []*policy.Role{rootRole()}}
	cred := actor.Credentials{UID: 1000, GIDs: []uint32{1000}}

	_, err := Resolve(cfg, cred, []string{"/bin/ls"}, Filter{}, nil)
	if err != ErrNoMatch {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestResolveConflictOnTie(t *testing.T) {
	roleA := rootRole()
	roleA.Name = "r_a"
	roleB := rootRole()
	roleB.Name = "r_b"
	cfg := &policy.Config{Roles: []*policy.Role{roleA, roleB}}
	cred := actor.Credentials{UID: 0, GIDs: []uint32{0}}

	_, err := Resolve(cfg, cred, []string{"/bin/ls"}, Filter{}, nil)
	if err != ErrConflict {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestResolveFilterByRoleName(t *testing.T) {
	roleA := rootRole()
	roleA.Name = "r_a"
	roleB := rootRole()
	roleB.Name = "r_b"
	cfg := &policy.Config{Roles: []*policy.Role{roleA, roleB}}
	cred := actor.Credentials{UID: 0, GIDs: []uint32{0}}

	rm, err := Resolve(cfg, cred, []string{"/bin/ls"}, Filter{Role: "r_b"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rm.Role.Name != "r_b" {
		t.Fatalf("expected r_b, got %s", rm.Role.Name)
	}
}

func TestResolveAppliesGlobalOptionsLayer(t *testing.T) {
	root := policy.RootPrivileged
	cfg := &policy.Config{
		Options: &policy.Opt{Layer: policy.LayerGlobal, Root: &root},
		Roles:   []*policy.Role{rootRole()},
	}
	cred := actor.Credentials{UID: 0, GIDs: []uint32{0}}

	rm, err := Resolve(cfg, cred, []string{"/bin/ls"}, Filter{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rm.Task.Settings.Scalars.Root.IsPrivileged() {
		t.Fatalf("expected the config-level Global options layer to set root=privileged, got %v", rm.Task.Settings.Scalars.Root)
	}
}

func TestResolveRejectsForbiddenSubCommand(t *testing.T) {
	role := rootRole()
	role.Tasks[0].Commands.Sub = []policy.Command{{Kind: policy.CommandSimple, Simple: "/bin/ls"}}
	cfg := &policy.Config{Roles: []*policy.Role{role}}
	cred := actor.Credentials{UID: 0, GIDs: []uint32{0}}

	_, err := Resolve(cfg, cred, []string{"/bin/ls"}, Filter{}, nil)
	if err != ErrNoMatch {
		t.Fatalf("expected ErrNoMatch (sub rejects, no kept roles), got %v", err)
	}
}
