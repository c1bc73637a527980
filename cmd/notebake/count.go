package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agusx1211/notebake/internal/report"
)

var countModel string
var countDetailed bool
var countWords bool

var countCmd = &cobra.Command{
	Use:   "count [note]",
	Short: "Count the tokens (or words) of a baked note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger(verbose, cmd.ErrOrStderr())
		cfg, err := loadConfig(cmd, log)
		if err != nil {
			return err
		}
		b, err := openBaker(cfg, log)
		if err != nil {
			return err
		}

		if countWords {
			n, err := b.CountWords(cmd.Context(), args[0], cfg.Settings)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", n)
			return nil
		}

		counter, err := report.NewCounter(countModel)
		if err != nil {
			return err
		}
		baked, sources, err := b.BakeWithSources(cmd.Context(), args[0], cfg.Settings)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), counter.Build(baked, sources, countDetailed))
		return nil
	},
}

func init() {
	countCmd.Flags().StringVar(&countModel, "model", report.DefaultModel, "Tokenizer model")
	countCmd.Flags().BoolVar(&countDetailed, "detailed", false, "Break the token count down by source note")
	countCmd.Flags().BoolVar(&countWords, "words", false, "Count words instead of tokens")
}
