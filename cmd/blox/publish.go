package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Store a snapshot of the document in Redis",
	Long: `Validates the document and writes it under the configured Redis prefix,
bumping the snapshot version. Requires redis.addr in the configuration or
BLOX_REDIS_ADDR.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd)
		if err != nil {
			return err
		}
		if !ws.cfg.Redis.Enabled() {
			return fmt.Errorf("redis is not configured, set redis.addr or BLOX_REDIS_ADDR")
		}

		outbox, err := openOutbox(cmd.Context(), ws)
		if err != nil {
			return err
		}
		defer outbox.Close()

		version, err := outbox.SaveSnapshot(cmd.Context(), ws.editor.Document())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Published %s as version %d\n", ws.cfg.Document, version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
}
