package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/rootasrole/rar/internal/editor"
	"github.com/rootasrole/rar/internal/policy"
)

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "set or unset a role/task's scalar, path, env or timeout options",
}

func pathListKind(qualifier string) (editor.PathListKind, error) {
	switch qualifier {
	case "whitelist":
		return editor.PathAdd, nil
	case "blacklist":
		return editor.PathSub, nil
	default:
		return 0, fmt.Errorf("unknown qualifier %q: expected whitelist or blacklist", qualifier)
	}
}

func envListKind(qualifier string) (editor.EnvListKind, error) {
	switch qualifier {
	case "whitelist":
		return editor.EnvKeepList, nil
	case "blacklist":
		return editor.EnvDeleteList, nil
	case "checklist":
		return editor.EnvCheckList, nil
	default:
		return 0, fmt.Errorf("unknown qualifier %q: expected whitelist, blacklist or checklist", qualifier)
	}
}

func init() {
	optionsCmd.AddCommand(
		&cobra.Command{
			Use:   "set ROLE [TASK] FIELD VALUE",
			Short: "set a scalar option; pass an empty TASK (\"\") to target the role layer",
			Args:  cobra.ExactArgs(4),
			RunE: func(cmd *cobra.Command, args []string) error {
				role, task, field, value := args[0], args[1], args[2], args[3]
				return loadMutateSave(func(cfg *policy.Config) (bool, error) {
					return editor.SetScalarOption(cfg, role, task, field, value)
				})
			},
		},
		&cobra.Command{
			Use:   "unset ROLE [TASK] FIELD",
			Short: "clear a scalar option so it inherits from the surrounding layer",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				role, task, field := args[0], args[1], args[2]
				return loadMutateSave(func(cfg *policy.Config) (bool, error) {
					return editor.UnsetScalarOption(cfg, role, task, field)
				})
			},
		},
		&cobra.Command{
			Use:   "path-add ROLE TASK whitelist|blacklist DIR",
			Short: "add a directory to a role/task's PATH add or sub list",
			Args:  cobra.ExactArgs(4),
			RunE: func(cmd *cobra.Command, args []string) error {
				kind, err := pathListKind(args[2])
				if err != nil {
					lastExitCode = exitError
					return err
				}
				return loadMutateSave(func(cfg *policy.Config) (bool, error) {
					return editor.AddPath(cfg, args[0], args[1], kind, args[3])
				})
			},
		},
		&cobra.Command{
			Use:   "path-del ROLE TASK whitelist|blacklist DIR",
			Short: "remove a directory from a role/task's PATH add or sub list",
			Args:  cobra.ExactArgs(4),
			RunE: func(cmd *cobra.Command, args []string) error {
				kind, err := pathListKind(args[2])
				if err != nil {
					lastExitCode = exitError
					return err
				}
				return loadMutateSave(func(cfg *policy.Config) (bool, error) {
					return editor.DelPath(cfg, args[0], args[1], kind, args[3])
				})
			},
		},
		&cobra.Command{
			Use:   "env-add ROLE TASK whitelist|blacklist|checklist NAME",
			Short: "add an environment variable name/pattern to a role/task's env policy",
			Args:  cobra.ExactArgs(4),
			RunE: func(cmd *cobra.Command, args []string) error {
				kind, err := envListKind(args[2])
				if err != nil {
					lastExitCode = exitError
					return err
				}
				return loadMutateSave(func(cfg *policy.Config) (bool, error) {
					return editor.AddEnv(cfg, args[0], args[1], kind, args[3])
				})
			},
		},
		&cobra.Command{
			Use:   "env-del ROLE TASK whitelist|blacklist|checklist NAME",
			Short: "remove an environment variable name/pattern from a role/task's env policy",
			Args:  cobra.ExactArgs(4),
			RunE: func(cmd *cobra.Command, args []string) error {
				kind, err := envListKind(args[2])
				if err != nil {
					lastExitCode = exitError
					return err
				}
				return loadMutateSave(func(cfg *policy.Config) (bool, error) {
					return editor.DelEnv(cfg, args[0], args[1], kind, args[3])
				})
			},
		},
		&cobra.Command{
			Use:   "set-timeout ROLE TASK ppid|tty|uid DURATION MAX_USAGE",
			Short: "set a role/task's credential cache timeout",
			Args:  cobra.ExactArgs(5),
			RunE: func(cmd *cobra.Command, args []string) error {
				timeoutType, err := editor.ParseTimeoutType(args[2])
				if err != nil {
					lastExitCode = exitError
					return err
				}
				duration, err := time.ParseDuration(args[3])
				if err != nil {
					lastExitCode = exitError
					return fmt.Errorf("invalid duration %q: %w", args[3], err)
				}
				maxUsage, err := strconv.ParseUint(args[4], 10, 0)
				if err != nil {
					lastExitCode = exitError
					return fmt.Errorf("invalid max-usage %q: %w", args[4], err)
				}
				return loadMutateSave(func(cfg *policy.Config) (bool, error) {
					return editor.SetTimeout(cfg, args[0], args[1], timeoutType, duration, uint(maxUsage))
				})
			},
		},
	)
}
