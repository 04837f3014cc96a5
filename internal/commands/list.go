package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `todo` (no args) and `todo list`.
type ListCmd struct {
	open bool
	long bool
}

// SetOpen sets the open-only filter (for testing).
func (c *ListCmd) SetOpen(v bool) {
	c.open = v
}

// SetLong sets long output (for testing).
func (c *ListCmd) SetLong(v bool) {
	c.long = v
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return nil }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string     { return "todo list [--open] [--long]" }
func (c *ListCmd) NeedsAuth() bool   { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.open, "open", false, "")
	fs.BoolVar(&c.long, "long", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	tasks, err := svc.ListTasks(ctx)
	if err != nil {
		return writeServiceError(errOut, err)
	}

	// Task numbers follow the full listing, so filtering with --open
	// leaves them stable.
	printed := 0
	for i, task := range tasks {
		if c.open && task.Completed {
			continue
		}
		if c.long {
			output.FormatTaskLong(out, i+1, task)
		} else {
			output.FormatTask(out, i+1, task)
		}
		printed++
	}

	if printed == 0 && !cfg.Quiet {
		if len(tasks) == 0 {
			fmt.Fprintln(out, "no tasks found")
		} else {
			fmt.Fprintln(out, "no open tasks")
		}
	}

	return exitcode.Success
}
