// Command sr is the resolver front-end of spec.md §6: given an invoker's
// credentials and a requested command, it picks the single best-matching
// role/task (internal/resolve) and prints the ExecSettings a caller should
// use to actually exec() the target — the exec and capability-drop steps
// themselves stay out of scope (spec.md §1 Non-goals).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/rootasrole/rar/internal/actor"
	"github.com/rootasrole/rar/internal/config"
	"github.com/rootasrole/rar/internal/format"
	"github.com/rootasrole/rar/internal/logger"
	"github.com/rootasrole/rar/internal/osident"
	"github.com/rootasrole/rar/internal/plugin"
	"github.com/rootasrole/rar/internal/resolve"
	"github.com/rootasrole/rar/internal/store"
)

// Exit codes, exactly per spec.md §6: "Exit codes: as the executed command;
// or 1 on NoMatch, 2 on Conflict, 3 on policy load error."
const (
	exitNoMatch      = 1
	exitConflict     = 2
	exitPolicyError  = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	flags := pflag.NewFlagSet("sr", pflag.ContinueOnError)
	flags.SetInterspersed(false)

	role := flags.StringP("role", "r", "", "restrict matching to this role")
	task := flags.StringP("task", "t", "", "restrict matching to this task")
	user := flags.StringP("user", "u", "", "resolve as this user instead of the calling process")
	group := flags.StringArrayP("group", "g", nil, "resolve as this group instead of the calling process (repeatable)")
	outputFmt := flags.StringP("output", "o", "table", "output format: table, json, yaml")
	configPath := flags.String("config", "", "path to config file")
	debug := flags.Bool("debug", false, "enable verbose logging")

	if err := flags.Parse(argv); err != nil {
		fmt.Fprintf(os.Stderr, "sr: %v\n", err)
		return exitPolicyError
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sr: loading configuration: %v\n", err)
		return exitPolicyError
	}
	if *debug {
		cfg.Debug = true
	}
	logger.Init(cfg)

	args := flags.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "sr: missing command")
		return exitPolicyError
	}

	cred, err := credentialsFor(*user, *group)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sr: resolving credentials: %v\n", err)
		return exitPolicyError
	}

	policyCfg, err := store.Load(cfg.PolicyPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sr: %v\n", err)
		return exitPolicyError
	}

	filter := resolve.Filter{Role: *role, Task: *task}
	match, err := resolve.Resolve(policyCfg, cred, args, filter, plugin.NoopHooks{})
	switch {
	case err == resolve.ErrNoMatch:
		fmt.Fprintln(os.Stderr, "sr: no matching role/task for this invocation")
		return exitNoMatch
	case err == resolve.ErrConflict:
		fmt.Fprintln(os.Stderr, "sr: policy is ambiguous for this invocation")
		return exitConflict
	case err != nil:
		fmt.Fprintf(os.Stderr, "sr: %v\n", err)
		return exitPolicyError
	}

	typ, err := format.ParseType(*outputFmt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sr: %v\n", err)
		return exitPolicyError
	}
	out, err := format.RenderExecSettings(match, typ)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sr: %v\n", err)
		return exitPolicyError
	}
	fmt.Println(out)
	return 0
}

// credentialsFor builds the invoker's actor.Credentials: the current
// process's by default, or an override built from -u/-g (spec §6's
// "-u USER", "-g GROUP" options).
func credentialsFor(user string, groups []string) (actor.Credentials, error) {
	if user == "" && len(groups) == 0 {
		return osident.CurrentCredentials()
	}

	base, err := osident.CurrentCredentials()
	if err != nil {
		return actor.Credentials{}, err
	}

	if user != "" {
		uid, ok := actor.ByName(user).Resolve(actor.KindUser)
		if !ok {
			if id, idErr := parseUint32(user); idErr == nil {
				uid = id
			} else {
				return actor.Credentials{}, fmt.Errorf("unknown user %q", user)
			}
		}
		base.UID = uid
	}

	if len(groups) > 0 {
		gids := make([]uint32, 0, len(groups))
		for _, g := range groups {
			gid, ok := actor.ByName(g).Resolve(actor.KindGroup)
			if !ok {
				id, idErr := parseUint32(g)
				if idErr != nil {
					return actor.Credentials{}, fmt.Errorf("unknown group %q", g)
				}
				gid = id
			}
			gids = append(gids, gid)
		}
		base.GIDs = gids
	}

	return base, nil
}

func parseUint32(s string) (uint32, error) {
	var v uint32
	_, err := fmt.Sscanf(s, "%d", &v)
	return v, err
}
