package main

import (
	"fmt"
	"io"
	"os"

	"github.com/example/go-taibun/internal/text"
	"github.com/spf13/cobra"
)

func newConvertCmd() *cobra.Command {
	var input string
	var batch bool

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert Tâi-lô with tone marks to numeric tones",
		Long: "Convert Tâi-lô with tone marks to numeric tones.\n\n" +
			"Sandhi is controlled by the global --sandhi and --variant flags.\n" +
			"With --batch every input line is converted on its own.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			conv, err := cfg.Converter()
			if err != nil {
				return err
			}

			return runConvert(conv, input, batch, os.Stdin, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&input, "text", "", "Text to convert (if empty, read from stdin)")
	cmd.Flags().BoolVar(&batch, "batch", false, "Convert each input line separately and in parallel")

	return cmd
}

func runConvert(conv text.Converter, input string, batch bool, stdin io.Reader, stdout io.Writer) error {
	if batch {
		lines, err := readInputLines(input, stdin)
		if err != nil {
			return err
		}
		for _, out := range conv.ConvertBatch(lines) {
			if _, err := fmt.Fprintln(stdout, out); err != nil {
				return err
			}
		}
		return nil
	}

	s, err := readInputText(input, stdin)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, conv.Convert(s))
	return err
}
