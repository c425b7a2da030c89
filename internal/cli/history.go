package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/safeweb/internal/domain/history"
)

func newHistoryCommand(o *rootOptions) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List previous checks, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.open(cmd.Context(), cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			items := a.store.Items()
			if o.asJSON {
				if items == nil {
					items = []history.Item{}
				}
				return printJSON(cmd.OutOrStdout(), items)
			}
			printItems(cmd.OutOrStdout(), items)
			return nil
		},
	}

	historyCmd.AddCommand(
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show one history item",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := o.open(cmd.Context(), cmd.ErrOrStderr(), false)
				if err != nil {
					return err
				}
				defer a.Close()

				item, err := a.store.Get(history.ItemID(args[0]))
				if err != nil {
					return err
				}
				if o.asJSON {
					return printJSON(cmd.OutOrStdout(), item)
				}
				printItem(cmd.OutOrStdout(), item)
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete every history item",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := o.open(cmd.Context(), cmd.ErrOrStderr(), false)
				if err != nil {
					return err
				}
				defer a.Close()

				a.store.Clear(cmd.Context())
				if a.store.Degraded() {
					return fmt.Errorf("history cleared in memory but could not be saved")
				}
				fmt.Fprintln(cmd.OutOrStdout(), "history cleared")
				return nil
			},
		},
	)
	return historyCmd
}

func newStatsCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count history items by risk level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.open(cmd.Context(), cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			stats := a.store.Stats()
			if o.asJSON {
				return printJSON(cmd.OutOrStdout(), stats)
			}
			printStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}
}
