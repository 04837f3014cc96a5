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
	Register(&RegisterCmd{})
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	username string
	email    string
	in       io.Reader
}

// SetInput overrides the interactive input stream (for testing).
func (c *RegisterCmd) SetInput(in io.Reader) {
	c.in = in
}

// SetUsername presets the username (for testing).
func (c *RegisterCmd) SetUsername(username string) {
	c.username = username
}

// SetEmail presets the email (for testing).
func (c *RegisterCmd) SetEmail(email string) {
	c.email = email
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return nil }
func (c *RegisterCmd) Synopsis() string  { return "Create an account and log in" }
func (c *RegisterCmd) Usage() string     { return "todo register [--username <name>] [--email <addr>]" }
func (c *RegisterCmd) NeedsAuth() bool   { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.username, "username", "", "")
	fs.StringVar(&c.email, "email", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	in := c.in
	if in == nil {
		in = os.Stdin
	}
	p := newPrompter(in, errOut)

	username := strings.TrimSpace(c.username)
	if username == "" {
		var err error
		username, err = p.line("Username")
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}
	if username == "" {
		fmt.Fprintln(errOut, "error: username required")
		return exitcode.UserError
	}

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
	confirm, err := p.password("Confirm password")
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if confirm != password {
		fmt.Fprintln(errOut, "error: passwords do not match")
		return exitcode.UserError
	}

	if _, err := svc.Register(ctx, username, email, password); err != nil {
		return writeServiceError(errOut, err)
	}

	// Some backends return the new account without a token. Log in
	// with the same credentials so the command always ends with a
	// usable session.
	if !svc.Authenticated() {
		if _, err := svc.Login(ctx, email, password); err != nil {
			return writeServiceError(errOut, err)
		}
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
