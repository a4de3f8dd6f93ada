package editor

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rootasrole/rar/internal/policy"
)

// Command is one parsed invocation of the chsr grammar (spec §4.9):
//
//	chsr [r <role> [t <task>] | o] <verb> [args...]
type Command struct {
	Role    string
	Task    string
	Options bool // the `o` (global options) target
	Verb    string
	Args    []string
}

// Parse tokenizes argv (excluding the "chsr" program name) into a Command.
// It does not apply the command; call Execute for that.
func Parse(argv []string) (Command, error) {
	var cmd Command
	i := 0
	for i < len(argv) {
		switch argv[i] {
		case "r":
			if i+1 >= len(argv) {
				return Command{}, fmt.Errorf("r requires a role name")
			}
			cmd.Role = argv[i+1]
			i += 2
		case "t":
			if i+1 >= len(argv) {
				return Command{}, fmt.Errorf("t requires a task name")
			}
			cmd.Task = argv[i+1]
			i += 2
		case "o":
			cmd.Options = true
			i++
		default:
			cmd.Verb = argv[i]
			cmd.Args = argv[i+1:]
			return cmd, nil
		}
	}
	return Command{}, fmt.Errorf("missing verb")
}

// Execute applies cmd to cfg, returning whether the document changed.
func Execute(cfg *policy.Config, cmd Command) (bool, error) {
	if cmd.Options && (cmd.Role != "" || cmd.Task != "") {
		return false, fmt.Errorf("the o target cannot be combined with r/t")
	}
	switch cmd.Verb {
	case "create":
		return execCreate(cfg, cmd)
	case "delete":
		return execDelete(cfg, cmd)
	case "purge":
		return execPurge(cfg, cmd)
	case "grant":
		return execGrant(cfg, cmd)
	case "revoke":
		return execRevoke(cfg, cmd)
	case "add":
		return execAddDel(cfg, cmd, true)
	case "del":
		return execAddDel(cfg, cmd, false)
	case "setpolicy":
		return execSetPolicy(cfg, cmd)
	case "set":
		return execSet(cfg, cmd)
	case "unset":
		return execUnset(cfg, cmd)
	case "settimeout":
		return execSetTimeout(cfg, cmd)
	case "show":
		// show is read-only; the caller renders via internal/format and
		// never reaches Execute for it in cmd/chsr, but treat it as a
		// documented no-op here for batch-mode compatibility.
		return false, nil
	default:
		return false, fmt.Errorf("unknown verb %q", cmd.Verb)
	}
}

func execCreate(cfg *policy.Config, cmd Command) (bool, error) {
	if cmd.Task != "" {
		return CreateTask(cfg, cmd.Role, cmd.Task)
	}
	return CreateRole(cfg, cmd.Role)
}

func execDelete(cfg *policy.Config, cmd Command) (bool, error) {
	if cmd.Task != "" {
		return DeleteTask(cfg, cmd.Role, cmd.Task)
	}
	return DeleteRole(cfg, cmd.Role)
}

func execPurge(cfg *policy.Config, cmd Command) (bool, error) {
	if cmd.Task != "" {
		return PurgeTask(cfg, cmd.Role, cmd.Task)
	}
	return PurgeRole(cfg, cmd.Role)
}

func execGrant(cfg *policy.Config, cmd Command) (bool, error) {
	if len(cmd.Args) != 1 {
		return false, fmt.Errorf("grant requires exactly one actor spec")
	}
	a, err := ParseActorSpec(cmd.Args[0])
	if err != nil {
		return false, err
	}
	return Grant(cfg, cmd.Role, a)
}

func execRevoke(cfg *policy.Config, cmd Command) (bool, error) {
	if len(cmd.Args) != 1 {
		return false, fmt.Errorf("revoke requires exactly one actor spec")
	}
	return Revoke(cfg, cmd.Role, cmd.Args[0])
}

// execAddDel implements spec §4.9's `add`/`del` verbs against one of three
// list targets: command (the default, 2-arg form for backward
// compatibility), path, or env (explicit 3-arg form: target qualifier
// value...).
func execAddDel(cfg *policy.Config, cmd Command, add bool) (bool, error) {
	if len(cmd.Args) < 2 {
		return false, fmt.Errorf("%s requires a qualifier and a value", cmd.Verb)
	}
	if cmd.Args[0] == "capability" {
		name := strings.Join(cmd.Args[1:], " ")
		if add {
			return AddCapability(cfg, cmd.Role, cmd.Task, name)
		}
		return DelCapability(cfg, cmd.Role, cmd.Task, name)
	}

	target, qualifier, rest := "command", cmd.Args[0], cmd.Args[1:]
	switch cmd.Args[0] {
	case "command", "path", "env":
		if len(cmd.Args) < 3 {
			return false, fmt.Errorf("%s %s requires a qualifier and a value", cmd.Verb, cmd.Args[0])
		}
		target, qualifier, rest = cmd.Args[0], cmd.Args[1], cmd.Args[2:]
	}
	value := strings.Join(rest, " ")

	switch target {
	case "command":
		kind, err := commandQualifier(qualifier)
		if err != nil {
			return false, err
		}
		if add {
			return AddCommand(cfg, cmd.Role, cmd.Task, kind, value)
		}
		return DelCommand(cfg, cmd.Role, cmd.Task, kind, value)
	case "path":
		kind, err := pathQualifier(qualifier)
		if err != nil {
			return false, err
		}
		if add {
			return AddPath(cfg, cmd.Role, cmd.Task, kind, value)
		}
		return DelPath(cfg, cmd.Role, cmd.Task, kind, value)
	case "env":
		kind, err := envQualifier(qualifier)
		if err != nil {
			return false, err
		}
		if add {
			return AddEnv(cfg, cmd.Role, cmd.Task, kind, value)
		}
		return DelEnv(cfg, cmd.Role, cmd.Task, kind, value)
	default:
		return false, fmt.Errorf("unknown add/del target %q", target)
	}
}

func commandQualifier(q string) (CommandListKind, error) {
	switch q {
	case "whitelist":
		return Whitelist, nil
	case "blacklist":
		return Blacklist, nil
	case "checklist":
		return 0, fmt.Errorf("checklist qualifier applies to env options, not commands")
	default:
		return 0, fmt.Errorf("unknown qualifier %q", q)
	}
}

func pathQualifier(q string) (PathListKind, error) {
	switch q {
	case "whitelist":
		return PathAdd, nil
	case "blacklist":
		return PathSub, nil
	default:
		return 0, fmt.Errorf("unknown path qualifier %q: expected whitelist or blacklist", q)
	}
}

func envQualifier(q string) (EnvListKind, error) {
	switch q {
	case "whitelist":
		return EnvKeepList, nil
	case "blacklist":
		return EnvDeleteList, nil
	case "checklist":
		return EnvCheckList, nil
	default:
		return 0, fmt.Errorf("unknown env qualifier %q: expected whitelist, blacklist or checklist", q)
	}
}

func execSetPolicy(cfg *policy.Config, cmd Command) (bool, error) {
	if len(cmd.Args) != 2 {
		return false, fmt.Errorf("setpolicy requires a target and all|none")
	}
	behavior, err := parseSetBehavior(cmd.Args[1])
	if err != nil {
		return false, err
	}
	switch cmd.Args[0] {
	case "commands":
		return SetCommandPolicy(cfg, cmd.Role, cmd.Task, behavior)
	case "capabilities":
		return SetCapabilityPolicy(cfg, cmd.Role, cmd.Task, behavior)
	default:
		return false, fmt.Errorf("unknown setpolicy target %q", cmd.Args[0])
	}
}

func execSet(cfg *policy.Config, cmd Command) (bool, error) {
	if len(cmd.Args) != 2 {
		return false, fmt.Errorf("set requires a field and a value")
	}
	return SetScalarOption(cfg, cmd.Role, cmd.Task, cmd.Args[0], cmd.Args[1])
}

func execUnset(cfg *policy.Config, cmd Command) (bool, error) {
	if len(cmd.Args) != 1 {
		return false, fmt.Errorf("unset requires a field")
	}
	return UnsetScalarOption(cfg, cmd.Role, cmd.Task, cmd.Args[0])
}

func execSetTimeout(cfg *policy.Config, cmd Command) (bool, error) {
	if len(cmd.Args) != 3 {
		return false, fmt.Errorf("settimeout requires a type, a duration and a max-usage count")
	}
	timeoutType, err := ParseTimeoutType(cmd.Args[0])
	if err != nil {
		return false, err
	}
	duration, err := time.ParseDuration(cmd.Args[1])
	if err != nil {
		return false, fmt.Errorf("invalid timeout duration %q: %w", cmd.Args[1], err)
	}
	maxUsage, err := strconv.ParseUint(cmd.Args[2], 10, 0)
	if err != nil {
		return false, fmt.Errorf("invalid timeout max-usage %q: %w", cmd.Args[2], err)
	}
	return SetTimeout(cfg, cmd.Role, cmd.Task, timeoutType, duration, uint(maxUsage))
}

func parseSetBehavior(s string) (policy.SetBehavior, error) {
	switch s {
	case "all":
		return policy.SetBehaviorAll, nil
	case "none":
		return policy.SetBehaviorNone, nil
	default:
		return 0, fmt.Errorf("expected all or none, got %q", s)
	}
}
