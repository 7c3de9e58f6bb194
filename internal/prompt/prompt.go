// Package prompt asks the operator to confirm risky operations.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/scallop-io/sui-package-kit/internal/messages"
	"github.com/scallop-io/sui-package-kit/internal/terminal"
)

var runConfirmFunc = func(title string, value *bool) error {
	return huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Affirmative("Yes").
			Negative("No").
			Value(value),
	)).WithOutput(os.Stderr).Run()
}

// Prompter confirms with a huh form on terminals and a line prompt elsewhere.
type Prompter struct {
	In  io.Reader
	Out io.Writer
	// IsTerminal defaults to terminal.IsTerminalPair(In, Out).
	IsTerminal func() bool
}

// New returns a prompter reading in and writing out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{In: in, Out: out}
}

func (p *Prompter) interactive() bool {
	if p.IsTerminal != nil {
		return p.IsTerminal()
	}
	return terminal.IsTerminalPair(p.In, p.Out)
}

// Confirm asks title and reports the answer. Aborting the form counts as no.
func (p *Prompter) Confirm(title string, defaultYes bool) (bool, error) {
	if !p.interactive() {
		return YesNo(p.In, p.Out, title, defaultYes)
	}
	value := defaultYes
	if err := runConfirmFunc(title, &value); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return value, nil
}

// YesNo asks a yes/no question on a line-based stream. defaultYes controls the result
// for an empty answer; an empty answer at EOF is always no.
func YesNo(in io.Reader, out io.Writer, prompt string, defaultYes bool) (bool, error) {
	reader := bufio.NewReader(in)
	format := messages.PromptNoDefaultFmt
	if defaultYes {
		format = messages.PromptYesDefaultFmt
	}
	for {
		if _, err := fmt.Fprintf(out, format, prompt); err != nil {
			return false, err
		}
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		response := strings.TrimSpace(line)
		if response == "" {
			if errors.Is(err, io.EOF) {
				return false, nil
			}
			return defaultYes, nil
		}
		switch strings.ToLower(response) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		if errors.Is(err, io.EOF) {
			return false, fmt.Errorf(messages.PromptInvalidResponse, response)
		}
		if _, err := fmt.Fprintln(out, messages.PromptRetryYesNo); err != nil {
			return false, err
		}
	}
}
