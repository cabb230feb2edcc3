// Package commands contains the built-in loadable command bundles.
package commands

import (
	"github.com/msto63/dcmd/foundation/command"
)

// CoreBundle is the name of the bundle loaded at startup
const CoreBundle = "core"

// Bundles returns the built-in bundles by name
func Bundles() map[string]func() []command.Definition {
	return map[string]func() []command.Definition{
		CoreBundle: Core,
	}
}

// Core returns the definitions of the core bundle
func Core() []command.Definition {
	return []command.Definition{
		{
			Name:        "greet",
			Description: "Greet someone by name",
			New:         func() command.Command { return &Greet{} },
			Params: []command.Param{
				command.Positional(1, "name", "Who to greet", (*Greet).SetName),
				command.Named("-loud", "Shout the greeting", (*Greet).SetLoud),
				command.Named("-times", "How often to greet", (*Greet).SetTimes, command.Default("1")),
			},
		},
		{
			Name:        "echo",
			Description: "Produce a text",
			New:         func() command.Command { return &Echo{} },
			Params: []command.Param{
				command.Positional(1, "text", "Text to produce", (*Echo).SetText),
				command.Named("-upper", "Convert to upper case", (*Echo).SetUpper),
			},
		},
		{
			Name:        "range",
			Description: "Produce the integers from..to",
			New:         func() command.Command { return &Range{} },
			Params: []command.Param{
				command.Positional(1, "from", "First value", (*Range).SetFrom),
				command.Positional(2, "to", "Last value", (*Range).SetTo),
				command.Named("-step", "Increment", (*Range).SetStep, command.Default("1")),
			},
		},
		{
			Name:        "sum",
			Description: "Add up integers",
			New:         func() command.Command { return &Sum{} },
			Params: []command.Param{
				command.Named("-ids", "Comma separated integers", (*Sum).SetIDs),
				command.Dynamic("-v", "Variable holding integers", (*Sum).SetValues),
			},
		},
		{
			Name:        "stats",
			Description: "Summarize stored integers",
			New:         func() command.Command { return &Stats{} },
			Params: []command.Param{
				command.Dynamic("-v", "Variable holding integers", (*Stats).SetValues),
			},
		},
		{
			Name:        "show",
			Description: "Print a stored object",
			New:         func() command.Command { return &Show{} },
			Params: []command.Param{
				command.Dynamic("-v", "Variable to print", (*Show).SetValue),
			},
		},
		{
			Name:        "sleep",
			Description: "Wait, stopping early on interrupt",
			New:         func() command.Command { return &Sleep{} },
			Params: []command.Param{
				command.Positional(1, "millis", "Milliseconds to wait", (*Sleep).SetMillis),
			},
		},
	}
}
