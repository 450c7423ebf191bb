package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/shortcuts/internal/presentation"
	"github.com/zjrosen/shortcuts/internal/shortcut"
	"github.com/zjrosen/shortcuts/internal/ui/markdown"
)

var (
	showJSON  bool
	showStyle string
	showWidth int
)

var showCmd = &cobra.Command{
	Use:   "show <id|name>",
	Short: "Describe a saved shortcut",
	Long: `Print one shortcut as a rendered card, or as JSON with --json.

Examples:
  shortcuts show Build
  shortcuts show 3f2a... --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, err := newStore().List(cmd.Context())
		if err != nil {
			return err
		}
		sc, err := resolveShortcut(all, args[0])
		if err != nil {
			return err
		}
		dto := presentation.FromShortcuts(shortcut.Collection{sc.ID: sc}, nil)[0]
		if showJSON {
			return presentation.NewFormatter(cmd.OutOrStdout()).FormatShortcut(dto)
		}

		r, err := markdown.New(showWidth, showStyle)
		if err != nil {
			return fmt.Errorf("creating renderer: %w", err)
		}
		out, err := r.Render(presentation.ShortcutMarkdown(dto))
		if err != nil {
			return fmt.Errorf("rendering shortcut: %w", err)
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	},
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print JSON instead of a rendered card")
	showCmd.Flags().StringVar(&showStyle, "style", "", "Glamour style (dark, light, notty); default detects the terminal")
	showCmd.Flags().IntVar(&showWidth, "width", 80, "Wrap width")
	rootCmd.AddCommand(showCmd)
}
