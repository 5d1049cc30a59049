// Package cli implements screenctl, the maintenance command line.
package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Jgaps7/curriculos-saas/internal/config"
	"github.com/Jgaps7/curriculos-saas/internal/logger"
)

const appName = "screenctl"

var rootCmd = &cobra.Command{
	Use:           appName,
	Short:         "screenctl runs maintenance tasks against the résumé screening database and queue",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

// setup loads the environment config and a logger shaped by the global flags.
func setup() (*config.Config, *logrus.Logger) {
	cfg := config.Load()

	level, format := cfg.Log.Level, "text"
	if viper.GetBool("debug") {
		level = "debug"
	}
	if viper.GetBool("json") {
		format = "json"
	}
	return cfg, logger.New(level, format)
}
