package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newClearCommand(dbPath *string) *cobra.Command {
	var typeID string
	var all bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every key of one record type, or of all types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (typeID != "") {
				return errors.New("specify exactly one of --type and --all")
			}
			db, err := openDB(*dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			if all {
				if err := db.ClearAll(); err != nil {
					return errors.Wrap(err, "clearing all types")
				}
				fmt.Fprintln(cmd.OutOrStdout(), "cleared all types")
				return nil
			}
			if err := db.ClearType(typeID); err != nil {
				return errors.Wrapf(err, "clearing type %q", typeID)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared type %s\n", typeID)
			return nil
		},
	}
	cmd.Flags().StringVar(&typeID, "type", "", "record type to clear")
	cmd.Flags().BoolVar(&all, "all", false, "clear every record type")
	return cmd
}
