package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/logging"
	"todo/internal/service"
	"todo/internal/session"
)

func init() {
	Register(&StatusCmd{})
}

// StatusCmd implements the status command. It reports the stored
// session from disk and never talks to the server, so it works
// offline.
type StatusCmd struct{}

func (c *StatusCmd) Name() string      { return "status" }
func (c *StatusCmd) Aliases() []string { return nil }
func (c *StatusCmd) Synopsis() string  { return "Show the stored session" }
func (c *StatusCmd) Usage() string     { return "todo status [common flags]" }
func (c *StatusCmd) NeedsAuth() bool   { return false }

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	sess := session.NewManager(session.NewFileStore(cfg.SessionPath()), logging.New(cfg.Debug))
	if err := sess.Restore(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	cur, ok := sess.Current()
	if !ok {
		if !cfg.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	}

	fmt.Fprintf(out, "logged in as %s <%s>\n", cur.User.Username, cur.User.Email)

	// Expiry is advisory; only the server decides whether the token
	// is still good.
	if claims, err := session.ParseClaims(cur.Token); err == nil && claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		if time.Now().After(exp) {
			fmt.Fprintf(out, "token expired %s\n", exp.Format(time.RFC3339))
		} else {
			fmt.Fprintf(out, "token expires %s\n", exp.Format(time.RFC3339))
		}
	}

	if cfg.Debug {
		if err := session.VerifyDevSigned(cur.Token); err != nil {
			fmt.Fprintln(out, "token not signed with the local dev key")
		} else {
			fmt.Fprintln(out, "token signed with the local dev key")
		}
	}

	return exitcode.Success
}
