package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCommand(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count physical keys per record type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(*dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			stats, err := db.Stats()
			if err != nil {
				return err
			}
			if len(stats) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "empty database")
				return nil
			}
			for _, st := range stats {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", st.TypeID, st.Keys)
			}
			return nil
		},
	}
}
