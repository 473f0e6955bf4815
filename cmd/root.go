package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/model"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   model.AppName,
	Short: "Report iKuai router telemetry to a Komari monitoring server",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "configuration file, settings are overridden by AGENT_ prefixed env variables")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level - info, debug, trace, overrides log.level")
}
