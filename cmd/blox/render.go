package main

import (
	"fmt"

	"github.com/aretw0/blox/pkg/domain"
	"github.com/aretw0/blox/pkg/render"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the document to HTML",
	Long: `Prints the document's HTML. By default only the root's markup is written;
--page wraps it in a standalone preview page sized for --viewport.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd)
		if err != nil {
			return err
		}

		modeFlag, _ := cmd.Flags().GetString("mode")
		mode, err := render.ParseMode(modeFlag)
		if err != nil {
			return err
		}

		w, closeFn, err := output(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		page, _ := cmd.Flags().GetBool("page")
		if !page {
			_, err = fmt.Fprintln(w, ws.editor.HTML(mode))
			return err
		}

		vp, err := ws.cfg.Render.GetViewport()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("viewport") {
			flag, _ := cmd.Flags().GetString("viewport")
			if vp, err = domain.ParseViewport(flag); err != nil {
				return err
			}
		}
		if err := ws.editor.WritePage(w, vp); err != nil {
			return err
		}
		return closeFn()
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().String("mode", string(render.ModeStatic), "Render mode: static or editable")
	renderCmd.Flags().Bool("page", false, "Write a standalone preview page")
	renderCmd.Flags().String("viewport", string(domain.ViewportDesktop), "Preview width for --page: desktop or mobile")
	renderCmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
}
