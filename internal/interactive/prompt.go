// Package interactive provides terminal detection and yes/no prompts.
package interactive

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter asks yes/no questions.
type Prompter struct {
	out     io.Writer
	scanner *bufio.Scanner
}

// NewPrompterWithIO creates a prompter reading answers from in and writing
// questions to out.
func NewPrompterWithIO(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		out:     out,
		scanner: bufio.NewScanner(in),
	}
}

// IsTerminalFile checks if f is a terminal.
func IsTerminalFile(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Confirm asks question and reports whether the answer was yes. End of input
// and anything other than y/yes count as no.
func (p *Prompter) Confirm(format string, args ...any) bool {
	_, _ = fmt.Fprintf(p.out, format, args...)
	_, _ = fmt.Fprint(p.out, " [y/N] ")

	if !p.scanner.Scan() {
		_, _ = fmt.Fprintln(p.out)
		return false
	}

	input := strings.ToLower(strings.TrimSpace(p.scanner.Text()))
	return input == "y" || input == "yes"
}
