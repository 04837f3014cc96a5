package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	email string
	in    io.Reader
}

// SetInput overrides the interactive input stream (for testing).
func (c *LoginCmd) SetInput(in io.Reader) {
	c.in = in
}

// SetEmail presets the email (for testing).
func (c *LoginCmd) SetEmail(email string) {
	c.email = email
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Log in and store a session" }
func (c *LoginCmd) Usage() string     { return "todo login [--email <addr>]" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	in := c.in
	if in == nil {
		in = os.Stdin
	}
	p := newPrompter(in, errOut)

	email := strings.TrimSpace(c.email)
	if email == "" {
		var err error
		email, err = p.line("Email")
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}
	if email == "" {
		fmt.Fprintln(errOut, "error: email required")
		return exitcode.UserError
	}

	password, err := p.password("Password")
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if password == "" {
		fmt.Fprintln(errOut, "error: password required")
		return exitcode.UserError
	}

	// Logging in again replaces any stored session.
	if _, err := svc.Login(ctx, email, password); err != nil {
		return writeServiceError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
