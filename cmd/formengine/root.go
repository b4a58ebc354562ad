package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/untillpro/goutils/logger"

	"github.com/goliatone/go-formengine/pkg/renderers/tui"
)

const version = "0.1.0"

// params holds the flags shared by every command.
type params struct {
	ConfigFile string
	Verbose    bool
	Structure  string
	Layout     string
	Data       string
	Overlays   []string

	config *viper.Viper
	driver tui.PromptDriver
}

func newRootCmd(p *params) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "formengine",
		Short:         "formengine builds interactive multi-language forms",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if p.Verbose {
				logger.SetLogLevel(logger.LogLevelVerbose)
			}
			cfg, err := loadConfig(p.ConfigFile)
			if err != nil {
				return err
			}
			if err := bindFlags(cfg, cmd); err != nil {
				return err
			}
			p.config = cfg
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&p.ConfigFile, "config", "", "config file (default: ./formengine.yaml)")
	flags.BoolVarP(&p.Verbose, "verbose", "v", false, "verbose logging")
	flags.StringVarP(&p.Structure, "structure", "s", "", "structure file, JSON or YAML")
	flags.StringVarP(&p.Layout, "layout", "l", "", "layout file; the default layout lists every control")
	flags.StringVarP(&p.Data, "data", "d", "", "prefill data file")
	flags.StringSliceVar(&p.Overlays, "overlay", nil, "overlay file, repeatable")
	flags.String(flagLanguage, "", "preferred language")
	flags.Bool(flagShowFlagged, false, "start with flagged fields revealed")

	cmd.AddCommand(
		newRenderCmd(p),
		newFillCmd(p),
		newCaptureCmd(p),
	)
	return cmd
}
