package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rootasrole/rar/internal/editor"
	"github.com/rootasrole/rar/internal/format"
	"github.com/rootasrole/rar/internal/policy"
	"github.com/rootasrole/rar/internal/store"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "create, delete, purge, show, or edit a task's commands/capabilities",
}

func commandListKind(qualifier string) (editor.CommandListKind, error) {
	switch qualifier {
	case "whitelist":
		return editor.Whitelist, nil
	case "blacklist":
		return editor.Blacklist, nil
	default:
		return 0, fmt.Errorf("unknown qualifier %q: expected whitelist or blacklist", qualifier)
	}
}

func setBehavior(s string) (policy.SetBehavior, error) {
	switch s {
	case "all":
		return policy.SetBehaviorAll, nil
	case "none":
		return policy.SetBehaviorNone, nil
	default:
		return 0, fmt.Errorf("expected all or none, got %q", s)
	}
}

func init() {
	taskCmd.AddCommand(
		&cobra.Command{
			Use:  "create ROLE TASK",
			Args: cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return loadMutateSave(func(cfg *policy.Config) (bool, error) {
					return editor.CreateTask(cfg, args[0], args[1])
				})
			},
		},
		&cobra.Command{
			Use:  "delete ROLE TASK",
			Args: cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return loadMutateSave(func(cfg *policy.Config) (bool, error) {
					return editor.DeleteTask(cfg, args[0], args[1])
				})
			},
		},
		&cobra.Command{
			Use:  "purge ROLE TASK",
			Args: cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return loadMutateSave(func(cfg *policy.Config) (bool, error) {
					return editor.PurgeTask(cfg, args[0], args[1])
				})
			},
		},
		&cobra.Command{
			Use:  "show ROLE TASK",
			Args: cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				doc, err := store.Load(cfg.PolicyPath)
				if err != nil {
					lastExitCode = exitError
					return err
				}
				role := doc.FindRole(args[0])
				if role == nil {
					lastExitCode = exitError
					return editor.ErrNotFound
				}
				task := role.FindTask(args[1])
				if task == nil {
					lastExitCode = exitError
					return editor.ErrNotFound
				}
				fmt.Print(format.RenderTask(role.Name, task))
				lastExitCode = exitNoChange
				return nil
			},
		},
		&cobra.Command{
			Use:   "add ROLE TASK whitelist|blacklist COMMAND",
			Short: "add a command to a task's allow or deny list",
			Args:  cobra.MinimumNArgs(4),
			RunE: func(cmd *cobra.Command, args []string) error {
				kind, err := commandListKind(args[2])
				if err != nil {
					lastExitCode = exitError
					return err
				}
				command := joinArgs(args[3:])
				return loadMutateSave(func(cfg *policy.Config) (bool, error) {
					return editor.AddCommand(cfg, args[0], args[1], kind, command)
				})
			},
		},
		&cobra.Command{
			Use:   "del ROLE TASK whitelist|blacklist COMMAND",
			Short: "remove a command from a task's allow or deny list",
			Args:  cobra.MinimumNArgs(4),
			RunE: func(cmd *cobra.Command, args []string) error {
				kind, err := commandListKind(args[2])
				if err != nil {
					lastExitCode = exitError
					return err
				}
				command := joinArgs(args[3:])
				return loadMutateSave(func(cfg *policy.Config) (bool, error) {
					return editor.DelCommand(cfg, args[0], args[1], kind, command)
				})
			},
		},
		&cobra.Command{
			Use:   "setpolicy ROLE TASK commands|capabilities all|none",
			Short: "set the default allow/deny posture of a task's command or capability list",
			Args:  cobra.ExactArgs(4),
			RunE: func(cmd *cobra.Command, args []string) error {
				behavior, err := setBehavior(args[3])
				if err != nil {
					lastExitCode = exitError
					return err
				}
				return loadMutateSave(func(cfg *policy.Config) (bool, error) {
					switch args[2] {
					case "commands":
						return editor.SetCommandPolicy(cfg, args[0], args[1], behavior)
					case "capabilities":
						return editor.SetCapabilityPolicy(cfg, args[0], args[1], behavior)
					default:
						return false, fmt.Errorf("unknown setpolicy target %q", args[2])
					}
				})
			},
		},
		&cobra.Command{
			Use:   "capability-add ROLE TASK CAPABILITY",
			Short: "add a capability (e.g. cap_net_bind_service) to a task's grant set",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				return loadMutateSave(func(cfg *policy.Config) (bool, error) {
					return editor.AddCapability(cfg, args[0], args[1], args[2])
				})
			},
		},
		&cobra.Command{
			Use:   "capability-del ROLE TASK CAPABILITY",
			Short: "remove a capability from a task's grant set",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				return loadMutateSave(func(cfg *policy.Config) (bool, error) {
					return editor.DelCapability(cfg, args[0], args[1], args[2])
				})
			},
		},
	)
}

func joinArgs(args []string) string {
	out := args[0]
	for _, a := range args[1:] {
		out += " " + a
	}
	return out
}
