package cmd

import (
	"context"
	"log"

	"github.com/equinix-labs/otel-init-go/otelinit"
	"github.com/spf13/cobra"

	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/app"
	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/collector"
	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/ikuai"
	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/komari"
	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/metrics"
	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/model"
	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/version"
	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/worker"
)

var cmdRun = &cobra.Command{
	Use:   "run",
	Short: "Run the agent, reporting samples and inventory until interrupted",
	Run: func(cmd *cobra.Command, _ []string) {
		runAgent(cmd.Context())
	},
}

func runAgent(ctx context.Context) {
	agent, err := app.New(model.AppKindAgent, cfgFile, logLevel)
	if err != nil {
		log.Fatal(err)
	}

	defer agent.Close()

	cfg := agent.Config

	if cfg.Metrics.ListenAddress != "" {
		// serve metrics endpoint
		metrics.ListenAndServe(cfg.Metrics.ListenAddress, agent.Logger)
		version.ExportBuildInfoMetric()
	}

	ctx, otelShutdown := otelinit.InitOpenTelemetry(ctx, model.AppName)
	defer otelShutdown(ctx)

	// Setup cancel context with cancel func.
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	// routine listens for termination signal and cancels the context
	go func() {
		<-agent.TermCh
		agent.Logger.Info("got TERM signal, exiting...")
		cancelFunc()
	}()

	endpoint, err := komari.ParseEndpoint(cfg.Komari.Endpoint, cfg.Komari.Token)
	if err != nil {
		agent.Logger.Fatal(err)
	}

	device := ikuai.NewClient(
		cfg.Ikuai.BaseURL,
		cfg.Ikuai.Username,
		cfg.Ikuai.Password,
		agent.Logger,
		ikuai.WithTimeout(cfg.Ikuai.Timeout()),
	)

	records := collector.New(device, collector.NewHostSampler(), version.Tag(), agent.Logger)

	stream := komari.NewStream(endpoint, cfg.Komari.ReconnectDelay(), cfg.Komari.IgnoreUnsafeCert, agent.Logger)
	uploader := komari.NewUploader(endpoint, cfg.Komari.UploadTimeout(), cfg.Komari.IgnoreUnsafeCert, agent.Logger)

	w := worker.New(
		device,
		records,
		stream,
		uploader,
		worker.Config{
			Interval:          cfg.Komari.Interval(),
			InventoryInterval: cfg.Komari.BasicInfoInterval(),
		},
		agent.Logger,
	)

	if err := w.Run(ctx); err != nil {
		agent.Logger.WithError(err).Fatal("agent exited with error")
	}
}

func init() {
	rootCmd.AddCommand(cmdRun)
}
