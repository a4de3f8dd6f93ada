// Package resolve implements the three matchers of spec §4.4, §4.6 and §4.8
// — task matcher, role matcher, config matcher — tying together matcher,
// score, optstack and plugin into the single entry point Resolve.
package resolve

import (
	"errors"

	"github.com/rootasrole/rar/internal/actor"
	"github.com/rootasrole/rar/internal/matcher"
	"github.com/rootasrole/rar/internal/optstack"
	"github.com/rootasrole/rar/internal/plugin"
	"github.com/rootasrole/rar/internal/policy"
	"github.com/rootasrole/rar/internal/score"
)

// ErrNoMatch and ErrConflict are the resolver's two non-success outcomes
// (spec §4.6 step 5, §4.8 step 3).
var (
	ErrNoMatch  = errors.New("no role/task grants this invocation")
	ErrConflict = errors.New("multiple roles/tasks tie for the best match")
)

// Filter narrows resolution to a specific role and/or task name (spec §4.4
// step 1, §4.6 step 1); either field may be empty to mean "unconstrained".
type Filter struct {
	Role string
	Task string
}

// ExecSettings is what a successful resolution hands back to the caller:
// the resolved exec path/args and the finalized option stack.
type ExecSettings struct {
	ExecPath string
	ExecArgs []string
	UsedShell bool
	Path      optstack.Path
	Env       optstack.Env
	Scalars   optstack.Scalars
}

// TaskMatch is the result of matching a single task (spec §4.4).
type TaskMatch struct {
	Role     *policy.Role
	Task     *policy.Task
	Score    score.Score
	Settings ExecSettings
}

// matchTask implements spec §4.4: command-set evaluation, caps_min,
// security_min, setuser_min and the option stack for one task. Returns
// (nil, matcher.ErrNoMatch) when the task filter or the task's command list
// does not match argv, and (nil, matcher.ErrForbidden) when a deny pattern
// does.
func matchTask(cfg *policy.Config, role *policy.Role, task *policy.Task, argv []string, filter Filter) (*TaskMatch, error) {
	if filter.Task != "" && filter.Task != task.DisplayName() && filter.Task != task.Name {
		return nil, matcher.ErrNoMatch
	}

	cmdMin, err := matcher.EvaluateCommandList(argv, task.Commands)
	if err != nil {
		return nil, err
	}

	capsMin := capsMinFor(task)
	securityMin := securityMinFor(cfg, role, task)
	setuserMin := score.SetuserMinFor(task.Cred.Setuid, task.Cred.Setgid, securityMin.Has(score.EnableRoot))

	var roleOpt, taskOpt *policy.Opt
	if role != nil {
		roleOpt = role.Options
	}
	taskOpt = task.Options
	stack := optstack.New(cfg.Options, roleOpt, taskOpt)

	execPath, execArgs, usedShell := matcher.ResolveExec(argv)

	return &TaskMatch{
		Role: role,
		Task: task,
		Score: score.Score{
			UserMin:     score.NoMatch, // filled in by the role matcher
			CmdMin:      cmdMin,
			CapsMin:     capsMin,
			SetuserMin:  setuserMin,
			SecurityMin: securityMin,
		},
		Settings: ExecSettings{
			ExecPath:  execPath,
			ExecArgs:  execArgs,
			UsedShell: usedShell,
			Path:      stack.FinalizePath(),
			Env:       stack.FinalizeEnv(),
			Scalars:   stack.FinalizeScalars(),
		},
	}, nil
}

func capsMinFor(task *policy.Task) score.CapsMin {
	if task.Cred.Capabilities == nil {
		return score.CapsUndefined
	}
	eff := task.Cred.Capabilities.Effective()
	switch {
	case len(eff) == 0:
		return score.CapsNoCaps
	case eff.IsAll():
		return score.CapsAll
	case eff.HasAdminClass():
		return score.CapsAdmin(len(eff))
	default:
		return score.CapsNoAdmin(len(eff))
	}
}

func securityMinFor(cfg *policy.Config, role *policy.Role, task *policy.Task) score.SecurityMin {
	var roleOpt, taskOpt *policy.Opt
	if role != nil {
		roleOpt = role.Options
	}
	taskOpt = task.Options
	stack := optstack.New(cfg.Options, roleOpt, taskOpt)
	scalars := stack.FinalizeScalars()
	pathFinal := stack.FinalizePath()

	var m score.SecurityMin
	if !scalars.Bounding.IsStrict() {
		m |= score.DisableBounding
	}
	if scalars.Root.IsPrivileged() {
		m |= score.EnableRoot
	}
	switch pathFinal.Behavior {
	case policy.PathKeepSafe:
		m |= score.KeepPath
	case policy.PathKeepUnsafe:
		m |= score.KeepPath | score.KeepUnsafePath
	}
	envFinal := stack.FinalizeEnv()
	if envFinal.Behavior == policy.EnvKeep {
		m |= score.KeepEnv
	}
	if scalars.Authentication.IsSkip() {
		m |= score.SkipAuth
	}
	return m
}

// RoleMatch is the result of matching a role: its user_min plus the best
// task found within it (spec §4.6).
type RoleMatch struct {
	Role  *policy.Role
	Task  *TaskMatch
	Score score.Score
}

// matchRole implements spec §4.6: user matching across the role's actor
// list, then folding its tasks by cmd_cmp with conflict detection.
func matchRole(cfg *policy.Config, role *policy.Role, cred actor.Credentials, argv []string, filter Filter, hooks plugin.Hooks) (*RoleMatch, error) {
	if filter.Role != "" && filter.Role != role.Name {
		return nil, matcher.ErrNoMatch
	}
	if !hooks.SeparationOfDuty(cfg, role, cred) {
		return nil, matcher.ErrNoMatch
	}

	userMin := matchUser(role, cred, hooks)
	if userMin.IsNoMatch() {
		return nil, matcher.ErrNoMatch
	}

	var best *TaskMatch
	tieCount := 0
	for _, task := range role.Tasks {
		tm, err := matchTask(cfg, role, task, argv, filter)
		if err != nil {
			continue
		}
		tm.Score.UserMin = userMin
		switch {
		case best == nil:
			best, tieCount = tm, 1
		case tm.Score.CmdCmp(best.Score) < 0:
			best, tieCount = tm, 1
		case tm.Score.CmdCmp(best.Score) == 0 && tm.Task != best.Task:
			tieCount++
		}
	}

	decision := hooks.RoleOverride(cfg, cred, argv)
	switch decision.Action {
	case plugin.RoleOverrideDeny:
		if decision.Role == role.Name {
			return nil, matcher.ErrNoMatch
		}
	case plugin.RoleOverrideForce:
		if decision.Role == role.Name {
			if t := role.FindTask(decision.Task); t != nil {
				tm, err := matchTask(cfg, role, t, argv, filter)
				if err == nil {
					tm.Score.UserMin = userMin
					best, tieCount = tm, 1
				}
			}
		}
	}

	switch {
	case tieCount == 0:
		return nil, matcher.ErrNoMatch
	case tieCount == 1:
		return &RoleMatch{Role: role, Task: best, Score: best.Score}, nil
	default:
		return nil, ErrConflict
	}
}

func matchUser(role *policy.Role, cred actor.Credentials, hooks plugin.Hooks) score.UserMin {
	best := score.NoMatch
	for _, a := range role.Actors {
		var candidate score.UserMin
		switch a.Kind {
		case policy.ActorKindUser:
			id, ok := a.User.Resolve()
			if !ok || id != cred.UID {
				continue
			}
			candidate = score.UserMatch()
		case policy.ActorKindGroup:
			if !a.Groups.Matches(cred.GIDs) {
				continue
			}
			candidate = score.GroupMatch(a.Groups.Len())
		case policy.ActorKindUnknown:
			matched, n := hooks.MatchUnknownActor(a.UnknownType, a.UnknownBody, cred)
			if !matched {
				continue
			}
			candidate = score.GroupMatch(n)
		default:
			continue
		}
		if best.IsNoMatch() || candidate.Compare(best) < 0 {
			best = candidate
		}
	}
	return best
}

// Resolve implements spec §4.8, the config matcher: the single entry point
// tying the whole resolver together.
func Resolve(cfg *policy.Config, cred actor.Credentials, argv []string, filter Filter, hooks plugin.Hooks) (*RoleMatch, error) {
	if hooks == nil {
		hooks = plugin.NoopHooks{}
	}

	var kept []*RoleMatch
	for _, role := range cfg.Roles {
		rm, err := matchRole(cfg, role, cred, argv, filter, hooks)
		if err != nil {
			if errors.Is(err, matcher.ErrNoMatch) {
				continue
			}
			if errors.Is(err, ErrConflict) {
				return nil, ErrConflict
			}
			continue
		}
		if !rm.Score.FullyMatching() {
			continue
		}
		kept = append(kept, rm)
	}

	if len(kept) == 0 {
		return nil, ErrNoMatch
	}

	best := kept[0]
	ties := []*RoleMatch{best}
	for _, rm := range kept[1:] {
		switch c := rm.Score.Cmp(best.Score); {
		case c < 0:
			best = rm
			ties = []*RoleMatch{rm}
		case c == 0 && rm.Task.Task != best.Task.Task:
			ties = append(ties, rm)
		}
	}

	if len(ties) > 1 {
		return nil, ErrConflict
	}
	return best, nil
}
