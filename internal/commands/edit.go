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
	Register(&EditCmd{})
}

// optionalString is a flag value that remembers whether it was set,
// so an explicit empty value can be told apart from an absent flag.
type optionalString struct {
	value string
	set   bool
}

func (o *optionalString) String() string { return o.value }

func (o *optionalString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

// EditCmd implements the edit command.
type EditCmd struct {
	title optionalString
	desc  optionalString
}

// SetTitle sets the new title (for testing).
func (c *EditCmd) SetTitle(title string) {
	c.title.Set(title)
}

// SetDescription sets the new description (for testing).
func (c *EditCmd) SetDescription(desc string) {
	c.desc.Set(desc)
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Edit a task" }
func (c *EditCmd) Usage() string     { return "todo edit [--title <text>] [--desc <text>] <n>" }
func (c *EditCmd) NeedsAuth() bool   { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.Var(&c.title, "title", "")
	fs.Var(&c.desc, "desc", "")
	fs.Var(&c.desc, "d", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	nums, err := parseTaskNumbers(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if len(nums) != 1 {
		fmt.Fprintln(errOut, "error: edit takes exactly one task number")
		return exitcode.UserError
	}

	if !c.title.set && !c.desc.set {
		fmt.Fprintln(errOut, "error: nothing to update")
		return exitcode.UserError
	}
	if c.title.set && strings.TrimSpace(c.title.value) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	tasks, err := resolveTasks(ctx, svc, nums)
	if err != nil {
		if strings.Contains(err.Error(), "out of range") {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		return writeServiceError(errOut, err)
	}

	var upd service.TaskUpdate
	if c.title.set {
		upd.Title = &c.title.value
	}
	if c.desc.set {
		upd.Description = &c.desc.value
	}

	if _, err := svc.UpdateTask(ctx, tasks[0].ID, upd); err != nil {
		return writeServiceError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
