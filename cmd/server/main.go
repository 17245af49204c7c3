package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Tyrowin/gochat/internal/logging"
	"github.com/Tyrowin/gochat/internal/server"
)

var (
	configFile string
	addr       string
	httpAddr   string
	maxClients int
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "gochat-server",
	Short: "Run the GoChat TCP relay",
	Long: `Start the GoChat relay. Each TCP client sends its name first; every later
read is relayed to all other clients, and joins and departures are announced
with ">>> " notices.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML configuration file")
	rootCmd.Flags().StringVar(&addr, "addr", "", "TCP listen address (overrides config)")
	rootCmd.Flags().StringVar(&httpAddr, "http-addr", "", "HTTP listen address for the WebSocket gateway")
	rootCmd.Flags().IntVar(&maxClients, "max-clients", 0, "maximum number of connected clients")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := server.LoadConfig(configFile)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting GoChat relay", "addr", cfg.Addr, "http_addr", cfg.HTTPAddr)
	return server.NewServer(*cfg, logger).ListenAndServe(ctx)
}

func applyFlags(cmd *cobra.Command, cfg *server.Config) {
	if cmd.Flags().Changed("addr") {
		cfg.Addr = addr
	}
	if cmd.Flags().Changed("http-addr") {
		cfg.HTTPAddr = httpAddr
	}
	if cmd.Flags().Changed("max-clients") && maxClients > 0 {
		cfg.MaxClients = maxClients
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
