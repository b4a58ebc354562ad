package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/untillpro/goutils/logger"

	"github.com/goliatone/go-formengine/pkg/renderers/tui"
)

func newFillCmd(p *params) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "fill the form from the terminal and print the submitted record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := loadForm(cmd.Context(), p)
			if err != nil {
				return err
			}
			r := tui.New(
				tui.WithPromptDriver(p.driver),
				tui.WithOutputFormat(tui.OutputFormat(p.config.GetString(cfgKeyOutput))),
				tui.WithLanguagePrompt(p.config.GetString(cfgKeyLanguage) == ""),
				tui.WithMaxAttempts(p.config.GetInt(cfgKeyMaxAttempts)),
			)
			out, err := r.Fill(cmd.Context(), f)
			if errors.Is(err, tui.ErrAborted) {
				logger.Info("formengine: fill aborted")
				return nil
			}
			if err != nil {
				return fmt.Errorf("fill: %w", err)
			}
			w := cmd.OutOrStdout()
			if _, err := w.Write(out); err != nil {
				return err
			}
			if len(out) > 0 && out[len(out)-1] != '\n' {
				_, err = fmt.Fprintln(w)
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.String(flagOutput, "", "record format: json, form or pretty")
	flags.Int(flagMaxAttempts, 0, "give up after this many invalid submits (0: never)")
	return cmd
}
