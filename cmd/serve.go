package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/mamacheck/internal/server"
)

// sweepInterval is how often expired sessions are dropped.
const sweepInterval = time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the screening API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := buildRuntime(ctx, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		go rt.sessions.Run(ctx, sweepInterval)

		rt.logger.WithFields(logrus.Fields{
			"rules":    rt.service.Rules().Version(),
			"provider": rt.providerName(),
		}).Info("Starting mamacheck server")

		srv := server.New(rt.cfg.Server, rt.service, rt.sessions, rt.metrics, rt.providerName(), rt.logger)
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	_ = v.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}
