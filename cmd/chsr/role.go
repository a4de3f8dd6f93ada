package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rootasrole/rar/internal/editor"
	"github.com/rootasrole/rar/internal/format"
	"github.com/rootasrole/rar/internal/policy"
	"github.com/rootasrole/rar/internal/store"
)

var roleCmd = &cobra.Command{
	Use:   "role",
	Short: "create, delete, purge, show, grant or revoke a role",
}

func init() {
	roleCmd.AddCommand(
		&cobra.Command{
			Use:  "create ROLE",
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return loadMutateSave(func(cfg *policy.Config) (bool, error) {
					return editor.CreateRole(cfg, args[0])
				})
			},
		},
		&cobra.Command{
			Use:  "delete ROLE",
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return loadMutateSave(func(cfg *policy.Config) (bool, error) {
					return editor.DeleteRole(cfg, args[0])
				})
			},
		},
		&cobra.Command{
			Use:  "purge ROLE",
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return loadMutateSave(func(cfg *policy.Config) (bool, error) {
					return editor.PurgeRole(cfg, args[0])
				})
			},
		},
		&cobra.Command{
			Use:  "show ROLE",
			Args: cobra.ExactArgs(1),
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
				fmt.Print(format.RenderRole(role))
				lastExitCode = exitNoChange
				return nil
			},
		},
		&cobra.Command{
			Use:  "grant ROLE ACTOR",
			Short: "grant ROLE to an actor, e.g. user:0 or group:1,2",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := editor.ParseActorSpec(args[1])
				if err != nil {
					lastExitCode = exitError
					return err
				}
				return loadMutateSave(func(cfg *policy.Config) (bool, error) {
					return editor.Grant(cfg, args[0], a)
				})
			},
		},
		&cobra.Command{
			Use:  "revoke ROLE ACTOR",
			Args: cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return loadMutateSave(func(cfg *policy.Config) (bool, error) {
					return editor.Revoke(cfg, args[0], args[1])
				})
			},
		},
	)
}
