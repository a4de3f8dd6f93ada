// Package format renders resolver and editor output as table, JSON or
// YAML, grounded on the teacher's formatter package and its go-pretty
// table conventions.
package format

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/rootasrole/rar/internal/policy"
	"github.com/rootasrole/rar/internal/resolve"
)

// Type selects an output renderer.
type Type string

const (
	TypeJSON  Type = "json"
	TypeYAML  Type = "yaml"
	TypeTable Type = "table"
)

// ParseType converts a string flag value to a Type.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeJSON, TypeYAML, TypeTable:
		return Type(s), nil
	default:
		return "", fmt.Errorf("unknown format type: %s", s)
	}
}

// execSettingsView is the JSON/YAML-serializable projection of a resolved
// match, flattening resolve.RoleMatch into plain fields.
type execSettingsView struct {
	Role      string   `json:"role" yaml:"role"`
	Task      string   `json:"task" yaml:"task"`
	ExecPath  string   `json:"exec_path" yaml:"exec_path"`
	ExecArgs  []string `json:"exec_args" yaml:"exec_args"`
	UsedShell bool     `json:"used_shell" yaml:"used_shell"`
	Path      []string `json:"path" yaml:"path"`
	EnvKeep   []string `json:"env_keep" yaml:"env_keep"`
	Root      string   `json:"root" yaml:"root"`
	Bounding  string   `json:"bounding" yaml:"bounding"`
}

func toView(rm *resolve.RoleMatch) execSettingsView {
	s := rm.Task.Settings
	view := execSettingsView{
		Role:      rm.Role.Name,
		Task:      rm.Task.Task.DisplayName(),
		ExecPath:  s.ExecPath,
		ExecArgs:  s.ExecArgs,
		UsedShell: s.UsedShell,
		Path:      append([]string(nil), s.Path.Add...),
	}
	for _, k := range s.Env.Keep {
		view.EnvKeep = append(view.EnvKeep, k.String())
	}
	view.Root = rootString(s.Scalars.Root)
	view.Bounding = boundingString(s.Scalars.Bounding)
	return view
}

func rootString(r policy.RootBehavior) string {
	if r.IsPrivileged() {
		return "privileged"
	}
	return "user"
}

func boundingString(b policy.BoundingBehavior) string {
	if b.IsStrict() {
		return "strict"
	}
	return "ignore"
}

// RenderExecSettings renders a resolved match per typ (spec §6.2, cmd/sr).
func RenderExecSettings(rm *resolve.RoleMatch, typ Type) (string, error) {
	view := toView(rm)
	switch typ {
	case TypeJSON:
		b, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return "", fmt.Errorf("formatting as JSON: %w", err)
		}
		return string(b), nil
	case TypeYAML:
		b, err := yaml.Marshal(view)
		if err != nil {
			return "", fmt.Errorf("formatting as YAML: %w", err)
		}
		return string(b), nil
	case TypeTable:
		return renderExecTable(view), nil
	default:
		return "", fmt.Errorf("unknown format type: %s", typ)
	}
}

func renderExecTable(v execSettingsView) string {
	t := table.NewWriter()
	t.SetOutputMirror(nil)
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateColumns = true
	t.SetTitle("RESOLVED EXEC SETTINGS")
	t.AppendHeader(table.Row{"FIELD", "VALUE"})
	t.AppendRow(table.Row{"ROLE", v.Role})
	t.AppendRow(table.Row{"TASK", v.Task})
	t.AppendRow(table.Row{"EXEC PATH", v.ExecPath})
	t.AppendRow(table.Row{"EXEC ARGS", strings.Join(v.ExecArgs, " ")})
	t.AppendRow(table.Row{"USED SHELL", v.UsedShell})
	t.AppendRow(table.Row{"PATH", strings.Join(v.Path, ":")})
	t.AppendRow(table.Row{"ENV KEEP", strings.Join(v.EnvKeep, ",")})
	t.AppendRow(table.Row{"ROOT", v.Root})
	t.AppendRow(table.Row{"BOUNDING", v.Bounding})
	return t.Render() + "\n"
}

// RenderRole renders a role's tasks as a table, one row per task: command
// list default, add/sub pattern counts, setuid and setgid (the supplemented
// "chsr role <name> show" feature). Actors are not rendered.
func RenderRole(role *policy.Role) string {
	t := table.NewWriter()
	t.SetOutputMirror(nil)
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateColumns = true
	t.SetTitle(fmt.Sprintf("ROLE %s", role.Name))
	t.AppendHeader(table.Row{"TASK", "DEFAULT", "ADD COUNT", "SUB COUNT", "SETUID", "SETGID"})
	for _, task := range role.Tasks {
		setuid := ""
		if task.Cred.Setuid != nil {
			setuid = task.Cred.Setuid.Ref.String()
		}
		setgid := ""
		if task.Cred.Setgid != nil {
			setgid = fmt.Sprintf("%d groups", task.Cred.Setgid.Len())
		}
		t.AppendRow(table.Row{
			task.DisplayName(),
			task.Commands.Default.String(),
			len(task.Commands.Add),
			len(task.Commands.Sub),
			setuid,
			setgid,
		})
	}
	return t.Render() + "\n"
}

// RenderTask renders one task's full detail (the supplemented "chsr task
// <role> <task> show" feature).
func RenderTask(roleName string, task *policy.Task) string {
	t := table.NewWriter()
	t.SetOutputMirror(nil)
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateColumns = true
	t.SetTitle(fmt.Sprintf("TASK %s/%s", roleName, task.DisplayName()))
	t.AppendHeader(table.Row{"FIELD", "VALUE"})
	t.AppendRow(table.Row{"PURPOSE", task.Purpose})
	t.AppendRow(table.Row{"COMMANDS DEFAULT", task.Commands.Default.String()})
	for _, c := range task.Commands.Add {
		t.AppendRow(table.Row{"ADD", commandString(c)})
	}
	for _, c := range task.Commands.Sub {
		t.AppendRow(table.Row{"SUB", commandString(c)})
	}
	if task.Cred.Capabilities != nil {
		t.AppendRow(table.Row{"CAPABILITIES DEFAULT", task.Cred.Capabilities.Default.String()})
	}
	return t.Render() + "\n"
}

func commandString(c policy.Command) string {
	if c.Kind == policy.CommandComplex {
		return fmt.Sprintf("<complex: %v>", c.Complex)
	}
	return c.Simple
}
