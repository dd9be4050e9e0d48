package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tmek2/sflrp-bot/internal/config"
	"github.com/tmek2/sflrp-bot/internal/discord"
	"github.com/tmek2/sflrp-bot/internal/keepalive"
	"github.com/tmek2/sflrp-bot/internal/logging"
	"github.com/tmek2/sflrp-bot/internal/metrics"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "sflrp-bot: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var iniPath, envFile string

	cmd := &cobra.Command{
		Use:           "sflrp-bot",
		Short:         "South Florida Roleplay community bot",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), iniPath, envFile)
		},
	}
	cmd.Flags().StringVar(&iniPath, "config", "config.ini", "optional INI file with default settings")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "optional dotenv file")
	return cmd
}

func run(parent context.Context, iniPath, envFile string) error {
	// Load config file
	cfg, err := config.LoadConfig(iniPath, envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, closer := logging.Setup(cfg.Log)
	defer closer.Close()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	gin.SetMode(gin.ReleaseMode)
	metrics.Register()

	// Liveness first so the host sees the port open while the gateway connects.
	go func() {
		if err := keepalive.Serve(ctx, keepalive.Addr(cfg.Port), keepalive.Router(logger)); err != nil {
			log.Error().Err(err).Msg("liveness server stopped")
		}
	}()

	if cfg.MetricsPort > 0 {
		go func() {
			if err := keepalive.Serve(ctx, keepalive.Addr(cfg.MetricsPort), metrics.Router()); err != nil {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	bot, err := discord.New(cfg)
	if err != nil {
		return err
	}
	if err := bot.Open(ctx); err != nil {
		return err
	}
	log.Info().Msg("Discord bot is running...")

	// Block until signal is received
	<-ctx.Done()
	log.Info().Msg("Shutting down...")

	if err := bot.Close(); err != nil {
		log.Warn().Err(err).Msg("closing session")
	}
	log.Info().Msg("Bot stopped cleanly.")
	return nil
}
