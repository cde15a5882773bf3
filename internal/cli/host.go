package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/filedash/filedash/internal/diskspace"
	"github.com/filedash/filedash/internal/models"
	"github.com/filedash/filedash/internal/pathutil"
)

// statusPrinter shows status line messages on the terminal.
type statusPrinter struct {
	out io.Writer
}

func (p statusPrinter) Deliver(msg models.StatusMessage) {
	mark := "✓"
	if msg.Kind == models.StatusError {
		mark = "✗"
	}
	fmt.Fprintf(p.out, "%s %s\n", mark, msg.Text)
}

// printNavigator tells the user where to go after signing out.
type printNavigator struct {
	out io.Writer
}

func (n printNavigator) NavigateToEntry() {
	fmt.Fprintln(n.out, "Signed out. Run 'filedash login' to sign in again.")
}

// fileSaver writes downloads into a directory. Existing files are only
// replaced when overwrite is set.
type fileSaver struct {
	dir       string
	overwrite bool
	out       io.Writer
}

func (s fileSaver) Save(_ context.Context, filename string, data []byte) error {
	name := pathutil.SafeFilename(filename)
	if name == "" {
		return fmt.Errorf("invalid filename %q", filename)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	target := filepath.Join(s.dir, name)

	if err := diskspace.Check(s.dir, int64(len(data)), diskspace.DefaultSafetyMargin); err != nil {
		return err
	}

	if !s.overwrite {
		if _, err := os.Stat(target); err == nil {
			return fmt.Errorf("%s already exists (use --overwrite to replace)", target)
		}
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*.part")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save %s: %w", name, err)
	}

	if s.out != nil {
		fmt.Fprintf(s.out, "Saved %s (%s)\n", target, humanize.Bytes(uint64(len(data))))
	}
	return nil
}

// lineConfirmer asks yes/no questions on a line-oriented reader.
type lineConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func newLineConfirmer(in io.Reader, out io.Writer) *lineConfirmer {
	return &lineConfirmer{in: bufio.NewReader(in), out: out}
}

func (c *lineConfirmer) Confirm(prompt string) bool {
	fmt.Fprintf(c.out, "%s [y/N]: ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(c.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// alwaysYes confirms without asking (rm --yes).
type alwaysYes struct{}

func (alwaysYes) Confirm(string) bool { return true }
