package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/shortcuts/internal/presentation"
	"github.com/zjrosen/shortcuts/internal/shortcut"
	"github.com/zjrosen/shortcuts/internal/store"
)

var (
	listJSON     bool
	shortcutIcon string
	shortcutMeta []string
	editName     string
	editCmdLine  string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved shortcuts",
	Long: `List every shortcut stored by the backend, ordered by name.

Examples:
  shortcuts list
  shortcuts list --json | jq '.[].cmd'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		all, err := newStore().List(cmd.Context())
		if err != nil {
			return err
		}
		formatter := presentation.NewFormatter(cmd.OutOrStdout())
		dtos := presentation.FromShortcuts(all, nil)
		if listJSON {
			return formatter.FormatShortcuts(dtos)
		}
		return formatter.FormatShortcutsTable(dtos)
	},
}

var addCmd = &cobra.Command{
	Use:   "add <name> <cmd>",
	Short: "Save a new shortcut",
	Long: `Save a new shortcut. The command line runs through the daemon's shell.

Examples:
  shortcuts add "Build" "make build"
  shortcuts add "Tail logs" "tail -f /var/log/syslog" --icon terminal --meta group=ops`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		meta, err := parseMetadata(shortcutMeta)
		if err != nil {
			return err
		}
		sc := shortcut.New(args[0], args[1])
		sc.Icon = shortcutIcon
		sc.Metadata = meta

		all, err := newStore().Add(cmd.Context(), sc)
		if err != nil {
			return err
		}
		return printShortcut(cmd, all, sc.ID)
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a saved shortcut",
	Long: `Change the name, command, icon or metadata of a saved shortcut. Only the
given flags are changed.

Examples:
  shortcuts edit 3f2a... --cmd "make build-all"
  shortcuts edit 3f2a... --meta group=dev`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newStore()
		sc, err := s.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("name") {
			sc.Name = editName
		}
		if flags.Changed("cmd") {
			sc.Cmd = editCmdLine
		}
		if flags.Changed("icon") {
			sc.Icon = shortcutIcon
		}
		if flags.Changed("meta") {
			meta, err := parseMetadata(shortcutMeta)
			if err != nil {
				return err
			}
			if sc.Metadata == nil {
				sc.Metadata = map[string]string{}
			}
			for k, v := range meta {
				if v == "" {
					delete(sc.Metadata, k)
					continue
				}
				sc.Metadata[k] = v
			}
		}

		all, err := s.Update(cmd.Context(), sc)
		if err != nil {
			return err
		}
		return printShortcut(cmd, all, sc.ID)
	},
}

var rmCmd = &cobra.Command{
	Use:     "rm <id>...",
	Aliases: []string{"remove"},
	Short:   "Delete saved shortcuts",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newStore()
		for _, id := range args {
			if _, err := s.Remove(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", id)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print JSON instead of a table")

	for _, c := range []*cobra.Command{addCmd, editCmd} {
		c.Flags().StringVar(&shortcutIcon, "icon", "", "Icon name shown by the launcher")
		c.Flags().StringArrayVar(&shortcutMeta, "meta", nil, "Metadata as key=value (repeatable; key= removes on edit)")
	}
	editCmd.Flags().StringVar(&editName, "name", "", "New display name")
	editCmd.Flags().StringVar(&editCmdLine, "cmd", "", "New command line")

	rootCmd.AddCommand(listCmd, addCmd, editCmd, rmCmd)
}

func newStore() *store.Client {
	return store.New(newBackendClient(cfg))
}

// parseMetadata turns key=value pairs into a map.
func parseMetadata(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	meta := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid metadata %q: want key=value", p)
		}
		meta[strings.TrimSpace(k)] = v
	}
	return meta, nil
}

// printShortcut writes the stored version of id as JSON.
func printShortcut(cmd *cobra.Command, all shortcut.Collection, id string) error {
	sc, ok := all[id]
	if !ok {
		return fmt.Errorf("shortcut %s missing from backend response", id)
	}
	dtos := presentation.FromShortcuts(shortcut.Collection{id: sc}, nil)
	return presentation.NewFormatter(cmd.OutOrStdout()).FormatShortcut(dtos[0])
}
