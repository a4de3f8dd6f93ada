package editor

import (
	"testing"

	"github.com/rootasrole/rar/internal/policy"
)

func TestParseRoleTaskVerb(t *testing.T) {
	cmd, err := Parse([]string{"r", "r_ops", "t", "t_a", "add", "whitelist", "/bin/ls"})
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Role != "r_ops" || cmd.Task != "t_a" || cmd.Verb != "add" {
		t.Fatalf("unexpected parse: %+v", cmd)
	}
	if len(cmd.Args) != 2 || cmd.Args[0] != "whitelist" || cmd.Args[1] != "/bin/ls" {
		t.Fatalf("unexpected args: %+v", cmd.Args)
	}
}

func TestParseOptionsTarget(t *testing.T) {
	cmd, err := Parse([]string{"o", "set", "root", "privileged"})
	if err != nil {
		t.Fatal(err)
	}
	if !cmd.Options {
		t.Fatal("expected Options to be set")
	}
	if cmd.Verb != "set" {
		t.Fatalf("unexpected verb: %s", cmd.Verb)
	}
}

func TestParseMissingVerbFails(t *testing.T) {
	if _, err := Parse([]string{"r", "r_ops"}); err == nil {
		t.Fatal("expected an error for a command with no verb")
	}
}

func TestExecuteCreateRoleViaGrammar(t *testing.T) {
	cfg := freshConfig()
	cmd, err := Parse([]string{"r", "r_ops", "create"})
	if err != nil {
		t.Fatal(err)
	}
	changed, err := Execute(cfg, cmd)
	if err != nil || !changed {
		t.Fatalf("Execute: changed=%v err=%v", changed, err)
	}
	if cfg.FindRole("r_ops") == nil {
		t.Fatal("expected role r_ops to exist")
	}
}

func TestExecuteGrantViaGrammar(t *testing.T) {
	cfg := freshConfig()
	CreateRole(cfg, "r_ops")
	cmd, err := Parse([]string{"r", "r_ops", "grant", "user:0"})
	if err != nil {
		t.Fatal(err)
	}
	changed, err := Execute(cfg, cmd)
	if err != nil || !changed {
		t.Fatalf("Execute grant: changed=%v err=%v", changed, err)
	}
	if len(cfg.FindRole("r_ops").Actors) != 1 {
		t.Fatal("expected 1 actor")
	}
}

func TestExecuteSetPolicyViaGrammar(t *testing.T) {
	cfg := freshConfig()
	CreateRole(cfg, "r_ops")
	CreateTask(cfg, "r_ops", "t_a")
	cmd, err := Parse([]string{"r", "r_ops", "t", "t_a", "setpolicy", "commands", "all"})
	if err != nil {
		t.Fatal(err)
	}
	changed, err := Execute(cfg, cmd)
	if err != nil || !changed {
		t.Fatalf("Execute setpolicy: changed=%v err=%v", changed, err)
	}
	task := cfg.FindRole("r_ops").FindTask("t_a")
	if task.Commands.Default != policy.SetBehaviorAll {
		t.Fatalf("expected default=all, got %v", task.Commands.Default)
	}
}

func TestExecuteSetOnGlobalOptionsViaGrammar(t *testing.T) {
	cfg := freshConfig()
	cmd, err := Parse([]string{"o", "set", "root", "privileged"})
	if err != nil {
		t.Fatal(err)
	}
	changed, err := Execute(cfg, cmd)
	if err != nil || !changed {
		t.Fatalf("Execute o set: changed=%v err=%v", changed, err)
	}
	if cfg.Options == nil || cfg.Options.Root == nil || *cfg.Options.Root != policy.RootPrivileged {
		t.Fatalf("expected global options to be set, got %+v", cfg.Options)
	}
}

func TestExecuteRejectsOptionsCombinedWithRole(t *testing.T) {
	cfg := freshConfig()
	cmd := Command{Role: "r_ops", Options: true, Verb: "set", Args: []string{"root", "privileged"}}
	if _, err := Execute(cfg, cmd); err == nil {
		t.Fatal("expected an error combining o with r")
	}
}

func TestExecuteAddPathViaGrammar(t *testing.T) {
	cfg := freshConfig()
	CreateRole(cfg, "r_ops")
	CreateTask(cfg, "r_ops", "t_a")
	cmd, err := Parse([]string{"r", "r_ops", "t", "t_a", "add", "path", "whitelist", "/opt/tool/bin"})
	if err != nil {
		t.Fatal(err)
	}
	changed, err := Execute(cfg, cmd)
	if err != nil || !changed {
		t.Fatalf("Execute add path: changed=%v err=%v", changed, err)
	}
	task := cfg.FindRole("r_ops").FindTask("t_a")
	if task.Options == nil || task.Options.Path == nil || len(task.Options.Path.Add) != 1 {
		t.Fatalf("unexpected path options: %+v", task.Options)
	}
}

func TestExecuteAddEnvChecklistViaGrammar(t *testing.T) {
	cfg := freshConfig()
	CreateRole(cfg, "r_ops")
	CreateTask(cfg, "r_ops", "t_a")
	cmd, err := Parse([]string{"r", "r_ops", "t", "t_a", "add", "env", "checklist", "LANG"})
	if err != nil {
		t.Fatal(err)
	}
	changed, err := Execute(cfg, cmd)
	if err != nil || !changed {
		t.Fatalf("Execute add env checklist: changed=%v err=%v", changed, err)
	}
	task := cfg.FindRole("r_ops").FindTask("t_a")
	if task.Options == nil || task.Options.Env == nil || len(task.Options.Env.Check) != 1 {
		t.Fatalf("unexpected env options: %+v", task.Options)
	}
}

func TestExecuteAddCommandChecklistRejected(t *testing.T) {
	cfg := freshConfig()
	CreateRole(cfg, "r_ops")
	CreateTask(cfg, "r_ops", "t_a")
	cmd, err := Parse([]string{"r", "r_ops", "t", "t_a", "add", "checklist", "/bin/ls"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Execute(cfg, cmd); err == nil {
		t.Fatal("expected checklist to be rejected for the default command target")
	}
}

func TestExecuteCapabilityAddDelViaGrammar(t *testing.T) {
	cfg := freshConfig()
	CreateRole(cfg, "r_ops")
	CreateTask(cfg, "r_ops", "t_a")
	addCmd, err := Parse([]string{"r", "r_ops", "t", "t_a", "add", "capability", "cap_net_bind_service"})
	if err != nil {
		t.Fatal(err)
	}
	changed, err := Execute(cfg, addCmd)
	if err != nil || !changed {
		t.Fatalf("Execute add capability: changed=%v err=%v", changed, err)
	}

	delCmd, err := Parse([]string{"r", "r_ops", "t", "t_a", "del", "capability", "cap_net_bind_service"})
	if err != nil {
		t.Fatal(err)
	}
	changed, err = Execute(cfg, delCmd)
	if err != nil || !changed {
		t.Fatalf("Execute del capability: changed=%v err=%v", changed, err)
	}
}

func TestExecuteSetTimeoutViaGrammar(t *testing.T) {
	cfg := freshConfig()
	CreateRole(cfg, "r_ops")
	CreateTask(cfg, "r_ops", "t_a")
	cmd, err := Parse([]string{"r", "r_ops", "t", "t_a", "settimeout", "tty", "10m", "1"})
	if err != nil {
		t.Fatal(err)
	}
	changed, err := Execute(cfg, cmd)
	if err != nil || !changed {
		t.Fatalf("Execute settimeout: changed=%v err=%v", changed, err)
	}
	task := cfg.FindRole("r_ops").FindTask("t_a")
	if task.Options == nil || task.Options.Timeout == nil || task.Options.Timeout.Type != policy.TimeoutTTY {
		t.Fatalf("unexpected timeout options: %+v", task.Options)
	}
}

func TestExecuteUnknownVerbFails(t *testing.T) {
	cfg := freshConfig()
	cmd, err := Parse([]string{"r", "r_ops", "frobnicate"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Execute(cfg, cmd); err == nil {
		t.Fatal("expected an error for an unknown verb")
	}
}
