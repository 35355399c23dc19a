package main

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/recordkv/recordkv"
)

func newDumpCommand(dbPath *string) *cobra.Command {
	var typeID string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print every physical key and its decoded record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(*dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			return db.VisitRaw(typeID, func(key recordkv.Key, value []byte) error {
				rec, err := recordkv.DecodeRecord(value)
				if err != nil {
					return errors.Wrapf(err, "decoding value at %s", key)
				}
				raw, err := json.Marshal(rec.Untyped())
				if err != nil {
					return errors.Wrapf(err, "rendering value at %s", key)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s => %s\n", key, raw)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&typeID, "type", "", "restrict output to one record type")
	return cmd
}
