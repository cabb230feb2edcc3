package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/msto63/dcmd/internal/console"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Starts the interactive console",
	Long: `Starts the interactive console.

Each line is dispatched as a command. Console commands such as help,
hist, obj and batch are available next to the loaded commands; type
'\?' to list them and 'exit' or 'quit' to leave. Ctrl-C interrupts the
running command.`,
	Args: cobra.NoArgs,
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

func runConsole(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	stopWatch := a.watch(ctx)
	defer stopWatch()

	c := console.New(a.rt, console.Options{
		Prompt:     a.cfg.Console.Prompt,
		NoColor:    a.cfg.Console.NoColor,
		HideBanner: a.cfg.Console.HideBanner,
	})
	return c.Run(ctx)
}
