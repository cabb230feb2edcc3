package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/msto63/dcmd/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the remote console",
	Long: `Starts the remote console: a WebSocket endpoint accepting JSON-RPC 2.0
requests (command.run, command.list, command.help). All clients share one
runtime; commands run one at a time.

Examples:
  dcmd serve
  dcmd serve --addr :9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	stopWatch := a.watch(ctx)
	defer stopWatch()

	addr := a.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := server.New(a.rt, server.Options{
		Addr:           addr,
		Path:           a.cfg.Server.Path,
		WriteTimeout:   a.cfg.Server.WriteTimeout.Duration,
		MaxMessageSize: a.cfg.Server.MaxMessageSize,
		Logger:         a.logger,
	})
	return srv.ListenAndServe(ctx)
}
