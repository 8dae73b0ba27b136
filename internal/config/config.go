// Package config layers geoprof settings: flags over GEOPROF_* environment
// variables and config.{yaml,json,toml} over built-in defaults.
package config

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"geoprof/internal/dirs"
)

// Keys shared by flags, environment and config file.
const (
	KeyVerbose      = "verbose"
	KeyConverter    = "converter"
	KeyLogFile      = "log_file"
	KeyKeepStore    = "keep_store"
	KeySameFolder   = "same_folder"
	KeySingleThread = "single_thread"
	KeyRegenerate   = "regenerate"
	KeyKeepTemp     = "keep_temp"
	KeyReport       = "report"
	KeyNoUI         = "no_ui"
)

// Init wires Viper with config paths, env, defaults, and flag bindings.
// It is non-fatal: a missing config file is not an error.
func Init(root *cobra.Command) error {
	_ = dirs.EnsureAll()

	if cfgDir, err := dirs.ConfigDir(); err == nil {
		viper.AddConfigPath(cfgDir)
	}
	viper.SetConfigName("config")

	viper.SetEnvPrefix("GEOPROF")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	for _, k := range []string{KeyVerbose, KeyKeepStore, KeySameFolder, KeySingleThread, KeyRegenerate, KeyKeepTemp, KeyNoUI} {
		viper.SetDefault(k, false)
	}
	for _, k := range []string{KeyConverter, KeyLogFile, KeyReport} {
		viper.SetDefault(k, "")
	}

	pf := root.PersistentFlags()
	_ = viper.BindPFlag(KeyVerbose, pf.Lookup("verbose"))
	_ = viper.BindPFlag(KeyConverter, pf.Lookup("converter"))
	_ = viper.BindPFlag(KeyLogFile, pf.Lookup("log-file"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}
	return nil
}

// Bool returns the named flag when it was set on the command line, else the
// value configured under key.
func Bool(fs *pflag.FlagSet, name, key string) bool {
	if f := fs.Lookup(name); f != nil && f.Changed {
		v, err := fs.GetBool(name)
		if err == nil {
			return v
		}
	}
	return viper.GetBool(key)
}

// String is Bool for string settings.
func String(fs *pflag.FlagSet, name, key string) string {
	if f := fs.Lookup(name); f != nil && f.Changed {
		v, err := fs.GetString(name)
		if err == nil {
			return v
		}
	}
	return viper.GetString(key)
}

// FileUsed returns the config file that was loaded, if any.
func FileUsed() string {
	return viper.ConfigFileUsed()
}
