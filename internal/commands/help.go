package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "todo help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  todo                                               List tasks
  todo list [common flags] [--open] [--long]
  todo add [common flags] [--desc <text>] <title...>
  todo create [common flags] [--desc <text>] <title...>
  todo done [common flags] <n> [<n>...]
  todo toggle [common flags] <n> [<n>...]
  todo edit [common flags] [--title <text>] [--desc <text>] <n>
  todo rm [common flags] <n> [<n>...]
  todo register [common flags] [--username <name>] [--email <addr>]
  todo login [common flags] [--email <addr>]
  todo logout [common flags]
  todo whoami [common flags]
  todo status [common flags]
  todo help
  todo version

Common flags:
  --config <dir>   Override config directory
  --api <url>      Override API base URL
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
