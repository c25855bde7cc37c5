// Command cmdnet-server runs the command/reply TCP server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/lud4ik/cmdnet/cmdserver"
	"github.com/lud4ik/cmdnet/config"
	"github.com/lud4ik/cmdnet/logger"
	"github.com/lud4ik/cmdnet/metrics"
)

func main() {
	root := &cobra.Command{
		Use:   "cmdnet-server",
		Short: "Run the command/reply TCP server",
		RunE:  run,
	}
	config.BindFlags(root)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg := config.Load(cmd)

	log := logger.New()
	log.SetLevel(logger.GetLevelString(cfg.LogLevel))

	m := metrics.New(prometheus.DefaultRegisterer)

	svc, err := cmdserver.NewService(cfg.Addr(), log, m, nil)
	if err != nil {
		log.Error("failed to start server", logger.Fields{"err": err})
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info("listening", logger.Fields{"addr": svc.Addr().String()})
	if err := svc.Run(ctx); err != nil {
		log.Error("server stopped with error", logger.Fields{"err": err})
		return err
	}

	log.Info("server stopped cleanly", nil)
	return nil
}
