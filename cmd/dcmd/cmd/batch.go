package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/msto63/dcmd/foundation/command/dispatch"
)

var (
	batchStopOnError bool
	batchEcho        bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Runs the commands of a file",
	Long: `Runs a batch file line by line. Blank lines and lines starting with
'#' are skipped. With --stop-on-error the run ends at the first line
that does not succeed.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().BoolVarP(&batchStopOnError, "stop-on-error", "s", false, "stop at the first failing line")
	batchCmd.Flags().BoolVar(&batchEcho, "echo", false, "print every line before running it")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	opts := dispatch.BatchOptions{
		StopOnError: batchStopOnError || a.cfg.Batch.StopOnError,
		Echo:        batchEcho || a.cfg.Batch.Echo,
	}
	report, err := a.rt.RunBatchFile(ctx, args[0], opts)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), report.Summary())
	if report.Stopped {
		return fmt.Errorf("batch stopped at line %d", report.StoppedAt)
	}
	return nil
}
