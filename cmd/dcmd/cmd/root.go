package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "dcmd",
	Short: "dcmd - declarative command dispatcher",
	Long: `dcmd dispatches command lines to declaratively described commands.

Commands declare their positional, named and dynamic parameters; dcmd
binds the arguments, runs the command and keeps produced values in an
object store that later commands can reference.

Without a subcommand the interactive console starts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runConsole,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError("dcmd", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $DCMD_CONFIG or ./configs/dcmd.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
}
