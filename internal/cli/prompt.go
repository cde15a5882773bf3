package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/filedash/filedash/internal/services"
)

// stdinIsTerminal reports whether stdin is interactive.
func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// stdinConfirmer asks on the terminal. Without a terminal it declines, so
// scripts must pass --yes explicitly.
func stdinConfirmer() services.Confirmer {
	if !stdinIsTerminal() {
		return declineConfirmer{out: os.Stderr}
	}
	return newLineConfirmer(os.Stdin, os.Stderr)
}

type declineConfirmer struct {
	out io.Writer
}

func (d declineConfirmer) Confirm(prompt string) bool {
	fmt.Fprintf(d.out, "%s declined: stdin is not a terminal (use --yes)\n", prompt)
	return false
}

// promptSecret reads a secret without echo when stdin is a terminal, or a
// plain line otherwise (for piping a token in).
func promptSecret(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	if stdinIsTerminal() {
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptLine reads one line with a default shown in brackets.
func promptLine(reader *bufio.Reader, out io.Writer, label, def string) string {
	if def != "" {
		fmt.Fprintf(out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(out, "%s: ", label)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return def
	}
	return input
}
