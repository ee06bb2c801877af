package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/chzyer/readline"
)

// ErrInterrupted is returned when the user presses Ctrl-C at a prompt.
var ErrInterrupted = errors.New("interrupted")

// LineReader reads one line of user input after showing a prompt.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

type bufferedReader struct {
	r *bufio.Reader
	w io.Writer
}

// NewBufferedReader reads lines from r. It is used when stdin is not a
// terminal, e.g. when answers are piped in.
func NewBufferedReader(r io.Reader, w io.Writer) LineReader {
	return &bufferedReader{r: bufio.NewReader(r), w: w}
}

func (b *bufferedReader) ReadLine(prompt string) (string, error) {
	fmt.Fprint(b.w, prompt)
	line, err := b.r.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (b *bufferedReader) Close() error {
	return nil
}

type terminalReader struct {
	rl        *readline.Instance
	closeOnce sync.Once
	closeErr  error
}

// NewTerminalReader uses a line editor on an interactive terminal. Closing
// the reader unblocks a pending ReadLine.
func NewTerminalReader(stdin io.Reader, stdout io.Writer) (LineReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Stdin:        readline.NewCancelableStdin(stdin),
		Stdout:       stdout,
		HistoryLimit: -1,
	})
	if err != nil {
		return nil, err
	}
	return &terminalReader{rl: rl}, nil
}

func (t *terminalReader) ReadLine(prompt string) (string, error) {
	t.rl.SetPrompt(prompt)
	line, err := t.rl.Readline()
	if err == readline.ErrInterrupt {
		return "", ErrInterrupted
	}
	return line, err
}

func (t *terminalReader) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.rl.Close()
	})
	return t.closeErr
}
