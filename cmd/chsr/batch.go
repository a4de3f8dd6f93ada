package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rootasrole/rar/internal/editor"
	"github.com/rootasrole/rar/internal/store"
)

// batchCmd implements the supplemented JSON batch-edit mode: a single JSON
// document on stdin describing a batch of edits, applied atomically (spec
// SUPPLEMENTED FEATURES #1, grounded on the original's process::json
// module).
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "apply a JSON batch of edits read from stdin, atomically",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			lastExitCode = exitError
			return err
		}
		b, err := editor.ParseBatch(data)
		if err != nil {
			lastExitCode = exitError
			return err
		}

		doc, err := store.Load(cfg.PolicyPath)
		if err != nil {
			lastExitCode = exitError
			return err
		}

		result, err := editor.ApplyBatch(doc, b)
		if err != nil {
			lastExitCode = exitError
			return err
		}

		changed := false
		for _, c := range result.Changed {
			if c {
				changed = true
				break
			}
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
	},
}
