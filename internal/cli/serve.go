package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/taskly/internal/api"
	"github.com/nhle/taskly/internal/reminder"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API server",
	Long: `Run the REST API server and, when enabled, the deadline reminder.

The server stops gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides http.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, os.Stderr)
	if err != nil {
		return err
	}
	defer a.close()

	if a.cfg.Reminder.Enabled {
		scanner := reminder.New(
			a.logger,
			a.engine,
			a.dispatcher,
			time.Duration(a.cfg.Reminder.WindowHours)*time.Hour,
		)
		if err := scanner.Start(a.cfg.Reminder.Schedule); err != nil {
			return err
		}
		defer scanner.Stop()
	}

	addr := a.cfg.HTTP.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	router := api.NewRouter(a.logger, a.engine, a.store, a.store)
	return api.Serve(
		ctx,
		a.logger,
		addr,
		router,
		time.Duration(a.cfg.HTTP.ShutdownTimeoutSec)*time.Second,
	)
}

// commandContext returns cmd's context, falling back to Background when
// the command runs outside Execute (e.g. in tests).
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
