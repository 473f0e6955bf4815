package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/app"
	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/collector"
	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/ikuai"
	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/model"
	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/version"
)

var cmdCollect = &cobra.Command{
	Use:   "collect",
	Short: "Log into the router once and print the inventory and sample records",
	Run: func(cmd *cobra.Command, _ []string) {
		collect(cmd.Context())
	},
}

func collect(ctx context.Context) {
	agent, err := app.New(model.AppKindCollect, cfgFile, logLevel)
	if err != nil {
		log.Fatal(err)
	}

	defer agent.Close()

	cfg := agent.Config

	device := ikuai.NewClient(
		cfg.Ikuai.BaseURL,
		cfg.Ikuai.Username,
		cfg.Ikuai.Password,
		agent.Logger,
		ikuai.WithTimeout(cfg.Ikuai.Timeout()),
	)

	defer device.Close()

	if err := device.Login(ctx); err != nil {
		agent.Logger.WithError(err).Fatal("router login failed")
	}

	records := collector.New(device, collector.NewHostSampler(), version.Tag(), agent.Logger)

	inventory := records.Inventory(ctx)
	sample := records.Sample(ctx)

	out := struct {
		Inventory *model.InventoryRecord `json:"basic_info"`
		Sample    *model.SampleRecord    `json:"report"`
	}{&inventory, &sample}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		agent.Logger.Fatal(err)
	}

	fmt.Println(string(b))
}

func init() {
	rootCmd.AddCommand(cmdCollect)
}
