package main

import (
	"fmt"
	"os"

	"github.com/aretw0/blox/internal/presentation/graph"
	"github.com/aretw0/blox/internal/presentation/tui"
	"github.com/aretw0/blox/pkg/domain"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show the block tree",
	Long: `Prints the document as a nested outline, styled when stdout is a terminal.
With --mermaid it outputs a Mermaid diagram (graph TD) instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd)
		if err != nil {
			return err
		}
		doc := ws.editor.Document()
		sel, _ := cmd.Flags().GetString("select")
		selected := domain.BlockID(sel)

		if mermaid, _ := cmd.Flags().GetBool("mermaid"); mermaid {
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(doc, ws.editor.Registry(), &graph.Overlay{Selected: selected}))
			return nil
		}

		md := tui.Outline(doc, ws.editor.Registry(), selected)
		if f, ok := cmd.OutOrStdout().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			styled, err := tui.NewRenderer()(md)
			if err == nil {
				md = styled
			}
		}
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().Bool("mermaid", false, "Output a Mermaid diagram")
	treeCmd.Flags().String("select", "", "Highlight a block")
}
