package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/version"
)

var cmdVersion = &cobra.Command{
	Use:   "version",
	Short: "Print agent version along with dependency information.",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf(
			"commit: %s\nbranch: %s\ngit summary: %s\nbuildDate: %s\nversion: %s\nreported as: %s\nGo version: %s\nwebsocket version: %s\ngopsutil version: %s\n",
			version.GitCommit, version.GitBranch, version.GitSummary, version.BuildDate, version.AppVersion, version.Tag(), version.GoVersion, version.WebsocketVersion, version.GopsutilVersion)
	},
}

func init() {
	rootCmd.AddCommand(cmdVersion)
}
