package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/blox/pkg/domain"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a block and everything under it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return edit(cmd, func(ws *workspace) error {
			return ws.editor.Delete(domain.BlockID(args[0]))
		})
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <id> <up|down>",
	Short: "Swap a block with its previous or next sibling",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := domain.ParseDirection(args[1])
		if err != nil {
			return err
		}
		return edit(cmd, func(ws *workspace) error {
			return ws.editor.Move(domain.BlockID(args[0]), dir)
		})
	},
}

var insertCmd = &cobra.Command{
	Use:   "insert <type>",
	Short: "Insert a new block with default content",
	Long: `Creates a block of the given type and places it in a container. The new
block's id is printed on success.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parent, _ := cmd.Flags().GetString("parent")
		site, _ := cmd.Flags().GetInt("site")
		index, _ := cmd.Flags().GetInt("index")

		return edit(cmd, func(ws *workspace) error {
			id, err := ws.editor.Insert(domain.BlockID(parent), site, index, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		})
	},
}

var patchCmd = &cobra.Command{
	Use:   "patch <id>",
	Short: "Replace a block with JSON read from stdin",
	Long: `Reads a block ({"type": ..., "data": {...}}) from stdin and stores it under
id. The block is validated against its type's schema first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return err
		}
		var block domain.Block
		if err := json.Unmarshal(data, &block); err != nil {
			return fmt.Errorf("invalid block: %w", err)
		}
		return edit(cmd, func(ws *workspace) error {
			return ws.editor.PatchBlock(domain.BlockID(args[0]), block)
		})
	},
}

// edit applies fn to the document and saves it when fn succeeds.
func edit(cmd *cobra.Command, fn func(*workspace) error) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	if err := fn(ws); err != nil {
		return err
	}
	return ws.source.Save(ws.editor.Document())
}

func init() {
	rootCmd.AddCommand(deleteCmd, moveCmd, insertCmd, patchCmd)

	insertCmd.Flags().String("parent", string(domain.RootID), "Container to insert into")
	insertCmd.Flags().Int("site", 0, "Child site of the container (column index for columns)")
	insertCmd.Flags().Int("index", -1, "Position within the site, negative appends")
}
