package main

import (
	"fmt"

	"github.com/aretw0/blox/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the document for consistency",
	Long: `Loads the document, checking every block against its type's schema, then
crawls the tree from 'root' and reports dangling references, unreachable
blocks, shared children and cycles.

Dangling references and cycles always fail. Unreachable and shared blocks
are reported as warnings unless --strict is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		strict, _ := cmd.Flags().GetBool("strict")

		var failures []validator.Issue
		for _, issue := range validator.ValidateTree(ws.editor.Document(), ws.editor.Registry()) {
			if strict || issue.Kind == validator.KindMissing || issue.Kind == validator.KindCycle {
				failures = append(failures, issue)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", issue)
		}
		if err := validator.Err(failures); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Document is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("strict", false, "Treat unreachable and shared blocks as errors")
}
