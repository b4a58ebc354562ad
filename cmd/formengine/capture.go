package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formengine/pkg/capture"
)

func newCaptureCmd(p *params) *cobra.Command {
	var (
		all      bool
		validate bool
	)
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "print the record the prefilled form would submit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := loadForm(cmd.Context(), p)
			if err != nil {
				return err
			}
			if validate {
				if err := f.Validate(); err != nil {
					return err
				}
			}

			var data capture.Data
			if all {
				data = f.Capture()
			} else {
				data = f.CaptureVisible()
			}
			out, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				return fmt.Errorf("encode record: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&all, "all", false, "include fields hidden by conditions")
	flags.BoolVar(&validate, "validate", false, "fail when the record does not validate")
	return cmd
}
