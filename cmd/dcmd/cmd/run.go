package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <command> [args...]",
	Short: "Runs a single command",
	Long: `Runs a single command and exits. All arguments after the command
name are passed unchanged, so command flags need no "--".

Examples:
  dcmd run greet Ann -times 2
  dcmd run sum -ids 1,2,3`,
	Args:               cobra.MinimumNArgs(1),
	DisableFlagParsing: true,
	RunE:               runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	res := a.rt.Dispatch(ctx, args)
	if err := a.rt.Remember(ctx, "", args, res); err != nil {
		a.logger.WarnWithErr("Failed to record history", err)
	}
	if !res.OK() {
		return fmt.Errorf("%s: %w", res.Outcome, res.Err)
	}
	if res.Value.IsValid() {
		fmt.Fprintln(cmd.OutOrStdout(), res.Value.String())
	}
	return nil
}
