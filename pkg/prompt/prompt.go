// Package prompt renders numbered menus and yes/no questions and validates
// the answers.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	pkgerrors "github.com/pkg/errors"
)

// ErrInvalidSelection is returned for an unparsable or out-of-range menu
// choice and for an unrecognized confirmation token.
var ErrInvalidSelection = errors.New("invalid selection")

// ParseSelection parses a 1-based menu choice. Only plain decimal digits in
// 1..n are accepted.
func ParseSelection(input string, n int) (int, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, pkgerrors.Wrap(ErrInvalidSelection, "empty input")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, pkgerrors.Wrapf(ErrInvalidSelection, "%q is not a number", s)
		}
	}

	v, err := strconv.Atoi(s)
	if err != nil || v < 1 || v > n {
		return 0, pkgerrors.Wrapf(ErrInvalidSelection, "%s is not between 1 and %d", s, n)
	}
	return v, nil
}

// ParseConfirmation accepts 1/y/yes and 2/n/no, case-insensitively.
func ParseConfirmation(input string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "1", "y", "yes":
		return true, nil
	case "2", "n", "no":
		return false, nil
	}
	return false, pkgerrors.Wrapf(ErrInvalidSelection, "%q is neither yes nor no", strings.TrimSpace(input))
}

// Prompter asks questions on out and reads answers from in. A wrong answer
// is re-asked until attempts inputs have been rejected.
type Prompter struct {
	in       LineReader
	out      io.Writer
	attempts int
}

func New(in LineReader, out io.Writer, attempts int) *Prompter {
	if attempts < 1 {
		attempts = 1
	}
	return &Prompter{in: in, out: out, attempts: attempts}
}

// Select shows labels as a numbered list under title and returns the
// zero-based index of the chosen entry.
func (p *Prompter) Select(title, question string, labels []string) (int, error) {
	if len(labels) == 0 {
		return 0, pkgerrors.Wrap(ErrInvalidSelection, "nothing to select from")
	}

	color.New(color.Bold).Fprintln(p.out, title)
	for i, l := range labels {
		fmt.Fprintf(p.out, "%2d. %s\n", i+1, l)
	}

	var err error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		var line string
		line, err = p.read(question + ": ")
		if err != nil {
			return 0, err
		}
		var n int
		n, err = ParseSelection(line, len(labels))
		if err == nil {
			return n - 1, nil
		}
		p.reject(attempt)
	}
	return 0, err
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(question string) (bool, error) {
	fmt.Fprintln(p.out, question)
	fmt.Fprintln(p.out, "1. YES")
	fmt.Fprintln(p.out, "2. NO")

	var err error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		var line string
		line, err = p.read("Enter 1 for YES or 2 for NO: ")
		if err != nil {
			return false, err
		}
		var yes bool
		yes, err = ParseConfirmation(line)
		if err == nil {
			return yes, nil
		}
		p.reject(attempt)
	}
	return false, err
}

func (p *Prompter) read(prompt string) (string, error) {
	line, err := p.in.ReadLine(prompt)
	if errors.Is(err, io.EOF) {
		// Closed input can never become valid, so do not re-prompt.
		return "", pkgerrors.Wrap(ErrInvalidSelection, "input closed")
	}
	return line, err
}

func (p *Prompter) reject(attempt int) {
	if attempt < p.attempts {
		color.New(color.FgRed).Fprintln(p.out, "Invalid selection. Please try again.")
		return
	}
	color.New(color.FgRed).Fprintln(p.out, "Invalid selection.")
}
