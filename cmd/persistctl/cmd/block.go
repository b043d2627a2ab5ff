package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/stssoft/persist/column"
	"github.com/stssoft/persist/logging"
)

func readBlock(path string, logger *logging.Logger) (*column.Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return column.Decode(data, column.WithLogger(logger))
}

func newInspectCmd(logger func() *logging.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the column directory of a block file",
		Long: `Print the header and column directory of a column block file, with the
index codec header of every column.

Example:
  persistctl inspect quotes.pcol`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blk, err := readBlock(args[0], logger())
			if err != nil {
				return err
			}

			return printBlock(cmd.OutOrStdout(), blk)
		},
	}
}

func newVerifyCmd(logger func() *logging.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file>",
		Short: "Check the checksum and decode every column of a block file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blk, err := readBlock(args[0], logger())
			if err != nil {
				return err
			}
			if err := blk.Verify(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d columns, %d bytes\n", blk.Len(), blk.Size())

			return nil
		},
	}
}

func printBlock(out io.Writer, blk *column.Block) error {
	fmt.Fprintf(out, "version: %d\norder: %s\ncompression: %s\nsize: %d\ncolumns: %d\n",
		blk.Version(), blk.ByteOrder(), blk.Compression(), blk.Size(), blk.Len())
	if blk.Len() == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tCOUNT\tSTORED\tRAW\tSCALE")
	for _, info := range blk.Columns() {
		st, err := blk.Stat(info.Name)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n",
			st.Name, st.Type, st.Count, st.Size, st.RawSize, scale(st))
	}

	return tw.Flush()
}

func scale(st column.Stat) string {
	switch {
	case st.Type.IsInteger():
		return "factor=" + strconv.FormatUint(st.Header.Factor, 10)
	case st.Header.Native():
		return "native"
	default:
		return "digits=" + strconv.Itoa(int(st.Header.Digits))
	}
}
