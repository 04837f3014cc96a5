package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// prompter reads interactive input for the auth commands. It keeps a
// single buffered reader so consecutive prompts share the same input
// stream.
type prompter struct {
	in     io.Reader
	reader *bufio.Reader
	errOut io.Writer
}

func newPrompter(in io.Reader, errOut io.Writer) *prompter {
	return &prompter{in: in, reader: bufio.NewReader(in), errOut: errOut}
}

// line prompts for a single line of input and trims surrounding
// whitespace.
func (p *prompter) line(label string) (string, error) {
	fmt.Fprintf(p.errOut, "%s: ", label)
	s, err := p.reader.ReadString('\n')
	if err != nil && s == "" {
		return "", errors.New("input closed")
	}
	return strings.TrimSpace(s), nil
}

// password prompts without echo when the input is a terminal, and
// falls back to a plain line read otherwise (pipes, tests).
func (p *prompter) password(label string) (string, error) {
	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintf(p.errOut, "%s: ", label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.errOut)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return p.line(label)
}
