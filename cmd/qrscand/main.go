// qrscand is the URL-safety scoring daemon behind the QR scanner app.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Alcary/QR-Code-Analyzer/internal/analyzer"
	"github.com/Alcary/QR-Code-Analyzer/internal/config"
	"github.com/Alcary/QR-Code-Analyzer/internal/logging"
	"github.com/Alcary/QR-Code-Analyzer/internal/ml"
	"github.com/Alcary/QR-Code-Analyzer/internal/netprobe"
	"github.com/Alcary/QR-Code-Analyzer/internal/server"
)

var (
	configPath string
	verbose    bool
)

func main() {
	root := &cobra.Command{
		Use:           "qrscand",
		Short:         "URL safety scoring service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(serveCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scan API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			// .env is a dev convenience; absence is not an error.
			_ = godotenv.Load()

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			level := cfg.LogLevel
			if verbose {
				level = "debug"
			}
			log := logging.Setup(level, cfg.LogFormat)

			predictor, err := ml.New(cfg.ModelDir, log)
			if err != nil {
				// A broken/missing model is survivable; scoring falls back
				// to network and heuristic signals.
				log.Warn().Err(err).Msg("model load failed, continuing without ML")
				predictor = ml.Unloaded(log)
			}

			inspector := netprobe.NewInspector(netprobe.Timeouts{
				DNS:   cfg.NetworkTimeout,
				SSL:   cfg.SSLTimeout,
				HTTP:  cfg.NetworkTimeout,
				WHOIS: cfg.WhoisTimeout,
			}, log)

			a := analyzer.New(predictor, inspector, analyzer.Options{
				CacheMaxSize: cfg.CacheMaxSize,
				CacheTTL:     cfg.CacheTTL,
				MaxURLLength: cfg.MaxURLLength,
			}, log)

			srv := server.New(cfg, a, predictor, log)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return srv.ListenAndServe(ctx)
		},
	}
}
