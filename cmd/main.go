package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/terabiome/kubeboot/internal/adapter"
	"github.com/terabiome/kubeboot/internal/config"
	"github.com/terabiome/kubeboot/pkg/join"
	"github.com/terabiome/kubeboot/pkg/kubeconfig"
	"github.com/terabiome/kubeboot/pkg/logger"
	"github.com/terabiome/kubeboot/pkg/telemetry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	var tel *telemetry.Telemetry
	if cfg.TelemetryEnabled {
		var err error
		tel, err = telemetry.Initialize("kubeboot")
		if err != nil {
			log.Error("failed to initialize telemetry", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := tel.Shutdown(shutdownCtx); err != nil {
				log.Error("failed to shutdown telemetry", slog.String("error", err.Error()))
			}
		}()
		log.Debug("telemetry initialized")
	}

	go func() {
		sig := <-sigChan
		log.Info("received shutdown signal", slog.String("signal", sig.String()))
		cancel()
	}()

	app := &cli.App{
		Name:                 "kubeboot",
		Usage:                "Bootstrap data plane for cluster provisioning",
		EnableBashCompletion: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "insecure",
				Usage: "Skip remote host identity verification",
			},
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "SSH user on the control-plane node",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "SSH port on the control-plane node",
			},
		},
		Before: func(cliCtx *cli.Context) error {
			if cliCtx.Bool("insecure") {
				cfg.HostKeyPolicy = config.HostKeyPolicyInsecure
			}
			if user := cliCtx.String("user"); user != "" {
				cfg.SSHUser = user
			}
			if port := cliCtx.Int("port"); port != 0 {
				cfg.SSHPort = port
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "kubeconfig",
				Usage:     "Fetch the cluster admin credential and rewrite its endpoint",
				ArgsUsage: "WORKSPACE PUBLIC_ADDRESS PRIVATE_ADDRESS KEY_PATH",
				Action: func(cliCtx *cli.Context) error {
					return runKubeconfig(ctx, cfg, log, cliCtx)
				},
			},
			{
				Name:  "join-command",
				Usage: "Mint a worker join command; reads {host,key} JSON from stdin, writes {command} JSON to stdout",
				Action: func(cliCtx *cli.Context) error {
					return runJoinCommand(ctx, cfg, log)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func runKubeconfig(ctx context.Context, cfg *config.Config, log *slog.Logger, cliCtx *cli.Context) error {
	args := cliCtx.Args()
	if args.Len() != 4 {
		return fmt.Errorf("expected 4 arguments (workspace, public address, private address, key path), got %d", args.Len())
	}

	req := adapter.FetchRequestFromArgs(args.Get(0), args.Get(1), args.Get(2), args.Get(3))

	opCtx, opCancel := context.WithTimeout(ctx, cfg.OperationTimeout)
	defer opCancel()

	fetcher := kubeconfig.NewFetcher(cfg, log)
	return fetcher.Fetch(opCtx, adapter.AdaptFetchRequest(req))
}

func runJoinCommand(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	req, err := join.DecodeRequest(os.Stdin)
	if err != nil {
		return err
	}

	opCtx, opCancel := context.WithTimeout(ctx, cfg.OperationTimeout)
	defer opCancel()

	provider := join.NewProvider(cfg, log)
	command, err := provider.Provide(opCtx, adapter.AdaptJoinRequest(req))
	if err != nil {
		// Nothing has been written to stdout yet: the caller sees a
		// nonzero exit and an empty data channel, never a truncated
		// response object.
		return err
	}

	return join.EncodeResponse(os.Stdout, adapter.AdaptJoinCommand(command))
}
