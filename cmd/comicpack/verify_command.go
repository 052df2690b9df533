package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"comicpack/internal/assembler"
	"comicpack/internal/logging"
)

func newVerifyCommand() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:         "verify <archive.cbz>...",
		Short:       "Check member CRCs and sizes of cbz archives",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			failed := 0
			for _, path := range args {
				if list {
					entries, err := assembler.Read(path)
					if err != nil {
						return err
					}
					fmt.Fprintln(out, renderEntries(entries))
				}
				if err := assembler.Verify(path, nil); err != nil {
					failed++
					fmt.Fprintln(out, renderStatusLine(path, statusError, err.Error(), colorize))
					continue
				}
				fmt.Fprintln(out, renderStatusLine(path, statusOK, "", colorize))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d archives failed verification", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "List members before verifying")
	return cmd
}

func renderEntries(entries []assembler.Entry) string {
	rows := make([][]string, 0, len(entries))
	var size, stored int64
	for _, e := range entries {
		size += e.Size
		stored += e.CompressedSize
		method := "store"
		if e.Method != 0 {
			method = "deflate"
		}
		rows = append(rows, []string{
			e.Name,
			method,
			logging.FormatBytes(e.Size),
			logging.FormatBytes(e.CompressedSize),
			fmt.Sprintf("%08x", e.CRC32),
		})
	}
	footer := []string{strconv.Itoa(len(entries)) + " members", "", logging.FormatBytes(size), logging.FormatBytes(stored), ""}
	return renderTable(memberColumns, rows, footer)
}
