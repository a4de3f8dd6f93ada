// Command chsr is the policy editor of spec.md §4.9: a small set of verbs
// (create/delete/purge, grant/revoke, add/del, setpolicy, set/unset) that
// mutate the policy document in place and persist it atomically.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rootasrole/rar/internal/config"
	"github.com/rootasrole/rar/internal/logger"
	"github.com/rootasrole/rar/internal/policy"
	"github.com/rootasrole/rar/internal/store"
)

// Exit codes, exactly per spec.md §6: "Exit codes: 0 no change needed / not
// applicable / help; 1 document modified and persisted; >1 error."
const (
	exitNoChange = 0
	exitChanged  = 1
	exitError    = 2
)

var (
	configPath string
	policyPath string
	debug      bool
)

var cfg = &config.Config{}

// lastExitCode lets a RunE record whether it changed the document, since
// cobra's own Execute() only distinguishes "error" from "no error".
var lastExitCode = exitNoChange

var rootCmd = &cobra.Command{
	Use:           "chsr",
	Short:         "chsr edits the run-as-role policy document",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		if debug {
			cfg.Debug = true
		}
		if policyPath != "" {
			cfg.PolicyPath = policyPath
		}
		logger.Init(cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&policyPath, "policy", "", "path to the policy document (overrides RAR_POLICY_PATH)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable verbose logging")

	rootCmd.AddCommand(roleCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(optionsCmd)
	rootCmd.AddCommand(globalCmd)
	rootCmd.AddCommand(batchCmd)
}

func main() {
	os.Exit(mainE())
}

func mainE() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "chsr: %v\n", err)
		return exitError
	}
	return lastExitCode
}

// loadMutateSave is the shared editor flow used by every role/task/options
// leaf command: load the document, apply mutate, persist only on a real
// change, and set lastExitCode to match spec.md §6's chsr convention.
func loadMutateSave(mutate func(*policy.Config) (bool, error)) error {
	doc, err := store.Load(cfg.PolicyPath)
	if err != nil {
		lastExitCode = exitError
		return err
	}
	changed, err := mutate(doc)
	if err != nil {
		lastExitCode = exitError
		return err
	}
	if !changed {
		lastExitCode = exitNoChange
		return nil
	}
	if err := store.Save(cfg.PolicyPath, doc); err != nil {
		lastExitCode = exitError
		return err
	}
	lastExitCode = exitChanged
	return nil
}
