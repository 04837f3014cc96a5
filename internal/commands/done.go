package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&DoneCmd{})
	Register(&ToggleCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return nil }
func (c *DoneCmd) Synopsis() string  { return "Toggle task completion" }
func (c *DoneCmd) Usage() string     { return "todo done <n> [<n>...]" }
func (c *DoneCmd) NeedsAuth() bool   { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runToggle(ctx, cfg, svc, args, out, errOut)
}

// ToggleCmd is an alias for DoneCmd.
type ToggleCmd struct{}

func (c *ToggleCmd) Name() string      { return "toggle" }
func (c *ToggleCmd) Aliases() []string { return nil }
func (c *ToggleCmd) Synopsis() string  { return "Toggle task completion (alias for done)" }
func (c *ToggleCmd) Usage() string     { return "todo toggle <n> [<n>...]" }
func (c *ToggleCmd) NeedsAuth() bool   { return true }

func (c *ToggleCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ToggleCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runToggle(ctx, cfg, svc, args, out, errOut)
}

// runToggle is the shared implementation for done and toggle commands.
func runToggle(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	nums, err := parseTaskNumbers(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	// Resolve every number against the same listing before touching
	// anything, so later toggles cannot shift earlier numbers.
	tasks, err := resolveTasks(ctx, svc, nums)
	if err != nil {
		if strings.Contains(err.Error(), "out of range") {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		return writeServiceError(errOut, err)
	}

	for _, task := range tasks {
		if _, err := svc.ToggleTask(ctx, task.ID); err != nil {
			return writeServiceError(errOut, err)
		}
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
