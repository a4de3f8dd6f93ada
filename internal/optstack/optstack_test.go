package optstack

import (
	"testing"

	"github.com/rootasrole/rar/internal/policy"
)

func TestFinalizePathResetOnNonInherit(t *testing.T) {
	role := &policy.Opt{
		Layer: policy.LayerRole,
		Path: &policy.PathOptions{
			Default: policy.PathKeepSafe,
			Add:     []string{"/opt/tool/bin"},
		},
	}
	s := New(nil, role, nil)
	got := s.FinalizePath()
	if got.Behavior != policy.PathKeepSafe {
		t.Fatalf("expected role layer to reset behavior to KeepSafe, got %v", got.Behavior)
	}
	if len(got.Add) != 1 || got.Add[0] != "/opt/tool/bin" {
		t.Fatalf("expected role add to replace default add, got %v", got.Add)
	}
}

func TestFinalizePathInheritUnionsAdd(t *testing.T) {
	task := &policy.Opt{
		Layer: policy.LayerTask,
		Path: &policy.PathOptions{
			Default: policy.PathInherit,
			Add:     []string{"/opt/extra/bin"},
		},
	}
	s := New(nil, nil, task)
	got := s.FinalizePath()
	if got.Behavior != policy.PathDelete {
		t.Fatalf("expected default behavior Delete to carry through, got %v", got.Behavior)
	}
	found := false
	for _, p := range got.Add {
		if p == "/opt/extra/bin" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected inherited task add to be unioned in, got %v", got.Add)
	}
}

func TestFinalizeScalarsDeepestWins(t *testing.T) {
	roleAuth := policy.AuthSkip
	taskRoot := policy.RootPrivileged
	role := &policy.Opt{Layer: policy.LayerRole, Authentication: &roleAuth}
	task := &policy.Opt{Layer: policy.LayerTask, Root: &taskRoot}
	s := New(nil, role, task)
	got := s.FinalizeScalars()
	if got.Root != policy.RootPrivileged {
		t.Fatalf("expected task layer's Root to win, got %v", got.Root)
	}
	if got.Authentication != policy.AuthSkip {
		t.Fatalf("expected role layer's Authentication to win over default, got %v", got.Authentication)
	}
	if got.Bounding != policy.BoundingStrict {
		t.Fatalf("expected default Bounding to win with no override, got %v", got.Bounding)
	}
}

func TestFinalizeScalarsGlobalLayerAppliesBelowRoleAndTask(t *testing.T) {
	globalBounding := policy.BoundingIgnore
	global := &policy.Opt{Layer: policy.LayerGlobal, Bounding: &globalBounding}
	s := New(global, nil, nil)
	got := s.FinalizeScalars()
	if got.Bounding != policy.BoundingIgnore {
		t.Fatalf("expected the global layer's Bounding to win over the default, got %v", got.Bounding)
	}
}

func TestFinalizePathGlobalLayerUsedWhenRoleAndTaskSilent(t *testing.T) {
	global := &policy.Opt{
		Layer: policy.LayerGlobal,
		Path:  &policy.PathOptions{Default: policy.PathKeepUnsafe},
	}
	s := New(global, nil, nil)
	got := s.FinalizePath()
	if got.Behavior != policy.PathKeepUnsafe {
		t.Fatalf("expected global layer to set PathKeepUnsafe, got %v", got.Behavior)
	}
}

func TestFinalizeEnvSetOverwriteDeepestWins(t *testing.T) {
	role := &policy.Opt{
		Layer: policy.LayerRole,
		Env:   &policy.EnvOptions{Default: policy.EnvInherit, Set: map[string]string{"FOO": "role"}},
	}
	task := &policy.Opt{
		Layer: policy.LayerTask,
		Env:   &policy.EnvOptions{Default: policy.EnvInherit, Set: map[string]string{"FOO": "task"}},
	}
	s := New(nil, role, task)
	got := s.FinalizeEnv()
	if got.Set["FOO"] != "task" {
		t.Fatalf("expected task's Set to overwrite role's, got %q", got.Set["FOO"])
	}
}
