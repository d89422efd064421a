package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/unclesp1d3r/keysmith/appstate"
	"github.com/unclesp1d3r/keysmith/lib/display"
	"github.com/unclesp1d3r/keysmith/lib/wordlist"
)

var fetchChecksum string //nolint:gochecknoglobals // bound to the --checksum flag

var listsCmd = &cobra.Command{ //nolint:gochecknoglobals // cobra command
	Use:     "lists",
	Aliases: []string{"wordlists"},
	Short:   "Manage password lists",
}

var listsListCmd = &cobra.Command{ //nolint:gochecknoglobals // cobra command
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the password lists in the lists directory",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		lists, err := wordlist.List(appstate.State.ListsPath)
		if err != nil {
			return err
		}

		return display.Lists(cmd.OutOrStdout(), lists)
	},
}

var listsCountCmd = &cobra.Command{ //nolint:gochecknoglobals // cobra command
	Use:   "count <list>",
	Short: "Count the candidates a password list yields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := wordlist.Resolve(appstate.State.ListsPath, args[0])
		if err != nil {
			return err
		}

		n, err := wordlist.Count(path)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s candidates\n", path, humanize.Comma(int64(n)))

		return err
	},
}

var listsFetchCmd = &cobra.Command{ //nolint:gochecknoglobals // cobra command
	Use:   "fetch <url>",
	Short: "Download a password list into the lists directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := wordlist.Fetch(cmd.Context(), args[0], appstate.State.ListsPath, fetchChecksum)
		if err != nil {
			return err
		}

		n, err := wordlist.Count(path)
		if err != nil {
			return err
		}

		appstate.Logger.Info("Password list ready", "path", path, "candidates", humanize.Comma(int64(n)))

		return nil
	},
}

func init() {
	listsFetchCmd.Flags().StringVar(&fetchChecksum, "checksum", "", "expected MD5 of the list")
	listsCmd.AddCommand(listsListCmd, listsCountCmd, listsFetchCmd)
}
