package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.etcd.io/bbolt"

	"github.com/stssoft/persist/logging"
	"github.com/stssoft/persist/store"
)

func openStore(path string, logger *logging.Logger) (*store.DB, error) {
	return store.Open(path,
		store.WithBoltOptions(&bbolt.Options{ReadOnly: true, Timeout: time.Second}),
		store.WithLogger(logger),
	)
}

func newTablesCmd(logger func() *logging.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "tables <db>",
		Short: "List the tables and index snapshots of a store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore(args[0], logger())
			if err != nil {
				return err
			}
			defer db.Close()

			tables, err := db.Tables()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TABLE\tROWS\tINDEXES")
			for _, t := range tables {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", t.Name, t.Rows, strings.Join(t.Indexes, ","))
			}

			return tw.Flush()
		},
	}
}

func newIndexCmd(logger func() *logging.Logger) *cobra.Command {
	var verify bool

	c := &cobra.Command{
		Use:   "index <db> <table> <name>",
		Short: "Print the column directory of an index snapshot in a store",
		Long: `Print the column directory of an index snapshot built with
Table.BuildIndex.

Example:
  persistctl index quotes.db quotes prices --verify`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore(args[0], logger())
			if err != nil {
				return err
			}
			defer db.Close()

			blk, err := db.LoadIndex(args[1], args[2])
			if err != nil {
				return err
			}
			if verify {
				if err := blk.Verify(); err != nil {
					return err
				}
			}

			return printBlock(cmd.OutOrStdout(), blk)
		},
	}
	c.Flags().BoolVar(&verify, "verify", false, "decode every column before printing")

	return c
}
