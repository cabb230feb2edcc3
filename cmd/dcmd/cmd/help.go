package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/dcmd/foundation/command/registry"
)

var helpConsole bool

var helpCmd = &cobra.Command{
	Use:   "help [command]",
	Short: "Shows help for dcmd or for a loaded command",
	Long: `Without an argument, lists the loaded and the console commands.
With the name of a dcmd subcommand, shows its usage; with the name of
a loaded command, shows its parameters.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHelp,
}

func init() {
	helpCmd.Flags().BoolVar(&helpConsole, "console", false, "prefer console commands over loaded ones")
	rootCmd.SetHelpCommand(helpCmd)
}

func runHelp(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		if sub, _, err := rootCmd.Find(args); err == nil && sub != rootCmd {
			return sub.Help()
		}
	}

	a, err := newApp(context.Background(), cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if len(args) == 0 {
		fmt.Fprintln(out, "Commands:")
		fmt.Fprint(out, a.rt.List(registry.Loadable))
		fmt.Fprintln(out, "\nConsole commands:")
		fmt.Fprint(out, a.rt.List(registry.Console))
		fmt.Fprintln(out, "\nUse \"dcmd help <command>\" for the parameters of a command.")
		return nil
	}

	text, err := a.rt.Help(args[0], helpConsole)
	if err != nil {
		return err
	}
	fmt.Fprint(out, text)
	return nil
}
