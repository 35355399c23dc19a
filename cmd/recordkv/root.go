package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/recordkv/recordkv"
)

func newRootCommand() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:           "recordkv",
		Short:         "Inspect and maintain a recordkv database file",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the database file")
	cmd.AddCommand(newDumpCommand(&dbPath))
	cmd.AddCommand(newStatsCommand(&dbPath))
	cmd.AddCommand(newClearCommand(&dbPath))
	return cmd
}

func openDB(path string) (*recordkv.DB, error) {
	if path == "" {
		return nil, errors.New("--db is required")
	}
	db, err := recordkv.Open(path, nil, recordkv.Options{})
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	return db, nil
}
