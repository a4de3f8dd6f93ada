package main

import (
	"github.com/spf13/cobra"

	"github.com/rootasrole/rar/internal/editor"
	"github.com/rootasrole/rar/internal/policy"
)

// globalCmd edits the `o` target of the chsr grammar: the config-wide
// options layer that sits below every role/task in the option stack.
var globalCmd = &cobra.Command{
	Use:   "global",
	Short: "set or unset the config-wide (Global layer) scalar options",
}

func init() {
	globalCmd.AddCommand(
		&cobra.Command{
			Use:  "set FIELD VALUE",
			Args: cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return loadMutateSave(func(cfg *policy.Config) (bool, error) {
					return editor.SetScalarOption(cfg, "", "", args[0], args[1])
				})
			},
		},
		&cobra.Command{
			Use:  "unset FIELD",
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return loadMutateSave(func(cfg *policy.Config) (bool, error) {
					return editor.UnsetScalarOption(cfg, "", "", args[0])
				})
			},
		},
	)
}
