package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the document as a campaign template",
	Long: `Flattens the content blocks into repeater items and prints them as JSON.
With --campaign the template is wrapped with the campaign settings from the
configuration file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd)
		if err != nil {
			return err
		}

		var v any = ws.editor.Template()
		if campaign, _ := cmd.Flags().GetBool("campaign"); campaign {
			v = ws.editor.Campaign()
		}

		w, closeFn, err := output(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return err
		}
		return closeFn()
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().Bool("campaign", false, "Wrap the template with campaign settings")
	exportCmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
}
