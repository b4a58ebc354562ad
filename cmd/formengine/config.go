package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-formengine/pkg/renderers/html"
	"github.com/goliatone/go-formengine/pkg/renderers/tui"
)

const (
	configFileName = "formengine"
	configFileType = "yaml"
	envPrefix      = "FORMENGINE"
)

// Config keys. Each may come from formengine.yaml, a FORMENGINE_<KEY>
// variable or the flag of the same name with dashes.
const (
	cfgKeyLanguage    = "language"
	cfgKeyShowFlagged = "show_flagged"
	cfgKeyFormat      = "format"
	cfgKeyTemplates   = "templates"
	cfgKeyStandalone  = "standalone"
	cfgKeyCatalog     = "catalog"
	cfgKeyOutput      = "output"
	cfgKeyMaxAttempts = "max_attempts"
)

const (
	flagLanguage    = "lang"
	flagShowFlagged = "show-flagged"
	flagFormat      = "format"
	flagTemplates   = "templates"
	flagStandalone  = "standalone"
	flagCatalog     = "catalog"
	flagOutput      = "output"
	flagMaxAttempts = "max-attempts"
)

var flagKeys = map[string]string{
	flagLanguage:    cfgKeyLanguage,
	flagShowFlagged: cfgKeyShowFlagged,
	flagFormat:      cfgKeyFormat,
	flagTemplates:   cfgKeyTemplates,
	flagStandalone:  cfgKeyStandalone,
	flagCatalog:     cfgKeyCatalog,
	flagOutput:      cfgKeyOutput,
	flagMaxAttempts: cfgKeyMaxAttempts,
}

// loadConfig reads the config file. Without an explicit path a missing
// formengine.yaml in the working directory is not an error.
func loadConfig(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyFormat, html.Name)
	v.SetDefault(cfgKeyOutput, string(tui.OutputFormatJSON))
	v.SetDefault(cfgKeyStandalone, false)
	v.SetDefault(cfgKeyShowFlagged, false)
	v.SetDefault(cfgKeyMaxAttempts, 0)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// bindFlags lets the flags of cmd override config values once set.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}
