package prompt

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestParseSelectionAcceptsExactlyRange(t *testing.T) {
	for n := 1; n <= 12; n++ {
		for i := 1; i <= n; i++ {
			got, err := ParseSelection(fmt.Sprint(i), n)
			if err != nil || got != i {
				t.Fatalf("ParseSelection(%d, %d) = %d, %v", i, n, got, err)
			}
		}
		for _, bad := range []string{"0", fmt.Sprint(n + 1), "", "  ", "abc", "-1", "+1", "1.0", "1 2", "99999999999999999999"} {
			if _, err := ParseSelection(bad, n); !errors.Is(err, ErrInvalidSelection) {
				t.Fatalf("ParseSelection(%q, %d) expected ErrInvalidSelection, got %v", bad, n, err)
			}
		}
	}
}

func TestParseSelectionTrimsWhitespace(t *testing.T) {
	got, err := ParseSelection(" 2\r\n", 3)
	if err != nil || got != 2 {
		t.Fatalf("ParseSelection = %d, %v, want 2", got, err)
	}
}

func TestParseConfirmation(t *testing.T) {
	tests := []struct {
		input   string
		want    bool
		wantErr bool
	}{
		{input: "1", want: true},
		{input: "y", want: true},
		{input: "YES", want: true},
		{input: " yes ", want: true},
		{input: "2", want: false},
		{input: "n", want: false},
		{input: "No", want: false},
		{input: "", wantErr: true},
		{input: "3", wantErr: true},
		{input: "maybe", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseConfirmation(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSelection) {
					t.Fatalf("expected ErrInvalidSelection, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("ParseConfirmation(%q) = %v, %v, want %v", tt.input, got, err, tt.want)
			}
		})
	}
}

func newTestPrompter(input string, attempts int) (*Prompter, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return New(NewBufferedReader(strings.NewReader(input), out), out, attempts), out
}

func TestSelect(t *testing.T) {
	p, out := newTestPrompter("2\n", 1)

	idx, err := p.Select("Available Models:", "Select the model", []string{"P3X", "WM332"})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if idx != 1 {
		t.Fatalf("Select() = %d, want 1", idx)
	}
	for _, want := range []string{"Available Models:", " 1. P3X", " 2. WM332", "Select the model: "} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestSelectSingleAttemptAborts(t *testing.T) {
	p, out := newTestPrompter("5\n1\n", 1)

	_, err := p.Select("Available Models:", "Select the model", []string{"P3X", "WM332"})
	if !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection, got %v", err)
	}
	if strings.Contains(out.String(), "try again") {
		t.Errorf("single attempt must not offer a retry:\n%s", out.String())
	}
}

func TestSelectBoundedRetry(t *testing.T) {
	p, _ := newTestPrompter("x\n0\n1\n", 3)
	idx, err := p.Select("Ports:", "Select", []string{"COM3"})
	if err != nil || idx != 0 {
		t.Fatalf("Select() = %d, %v, want 0, nil", idx, err)
	}

	p, out := newTestPrompter("x\n0\n9\n1\n", 3)
	if _, err := p.Select("Ports:", "Select", []string{"COM3"}); !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection after 3 attempts, got %v", err)
	}
	if c := strings.Count(out.String(), "Please try again."); c != 2 {
		t.Errorf("expected 2 retry hints, got %d", c)
	}
}

func TestSelectClosedInput(t *testing.T) {
	p, _ := newTestPrompter("", 3)
	if _, err := p.Select("Ports:", "Select", []string{"COM3"}); !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection on closed input, got %v", err)
	}
}

func TestSelectEmptyCandidates(t *testing.T) {
	p, _ := newTestPrompter("1\n", 1)
	if _, err := p.Select("Ports:", "Select", nil); !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection, got %v", err)
	}
}

func TestConfirm(t *testing.T) {
	p, out := newTestPrompter("2\n", 1)
	yes, err := p.Confirm("Run the second stage?")
	if err != nil || yes {
		t.Fatalf("Confirm() = %v, %v, want false, nil", yes, err)
	}
	if !strings.Contains(out.String(), "Enter 1 for YES or 2 for NO: ") {
		t.Errorf("unexpected output:\n%s", out.String())
	}

	p, _ = newTestPrompter("maybe\n", 1)
	if _, err := p.Confirm("Run the second stage?"); !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection, got %v", err)
	}

	p, _ = newTestPrompter("maybe\nyes\n", 2)
	if yes, err := p.Confirm("Run the second stage?"); err != nil || !yes {
		t.Fatalf("Confirm() = %v, %v, want true, nil", yes, err)
	}
}

type interruptingReader struct{}

func (interruptingReader) ReadLine(string) (string, error) { return "", ErrInterrupted }
func (interruptingReader) Close() error                    { return nil }

func TestSelectInterrupted(t *testing.T) {
	p := New(interruptingReader{}, &bytes.Buffer{}, 3)
	if _, err := p.Select("Ports:", "Select", []string{"COM3"}); !errors.Is(err, ErrInterrupted) {
		t.Fatalf("expected ErrInterrupted, got %v", err)
	}
}
