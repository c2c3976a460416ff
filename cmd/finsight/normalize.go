package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/finsight/internal/normalize"
	"github.com/dgallion1/finsight/internal/report"
	"github.com/dgallion1/finsight/internal/textextract"
)

var normalizeStats bool

var normalizeCmd = &cobra.Command{
	Use:   "normalize FILE",
	Short: "Print the cleaned text of a report",
	Long: `Read FILE, remove page markers, headers, footers and page numbers, repair
broken lines and print the result. No model is called.

Examples:
  finsight normalize reports/TRENT_2023.pdf
  finsight normalize --stats reports/TRENT_2023.txt > cleaned.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		text, err := textextract.Extract(f, path)
		if err != nil {
			return err
		}
		raw := report.NewRawDocument(report.IdentityFromPath(path), text)
		doc := normalize.Document(raw)

		fmt.Fprintln(cmd.OutOrStdout(), doc.Text)
		if normalizeStats {
			s := normalize.Measure(raw.Text, doc.Text)
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d -> %d words (%.1f%% removed)\n",
				doc.Identity, s.WordsBefore, s.WordsAfter, s.Reduction()*100)
		}
		return nil
	},
}

func init() {
	normalizeCmd.Flags().BoolVar(&normalizeStats, "stats", false, "print word counts to stderr")
}
