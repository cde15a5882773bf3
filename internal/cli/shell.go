package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/filedash/filedash/internal/core"
	"github.com/filedash/filedash/internal/events"
	"github.com/filedash/filedash/internal/models"
	"github.com/filedash/filedash/internal/pathutil"
	"github.com/filedash/filedash/internal/preview"
	"github.com/filedash/filedash/internal/services"
)

const shellHelp = `Commands:
  search <text>    set the search text (refetches after a short pause)
  clear            clear the search text
  ext <ext>        filter by extension; the same ext again clears it
  refresh          refetch now
  ls               show the current file list
  select <path>    choose a local file to upload
  upload           upload the selected file
  open <id>        preview a file
  close            close the preview
  download         save the previewed file to the current directory
  delete           delete the previewed file
  profile          toggle the profile menu
  logout           sign out and exit
  help             show this help
  quit             exit`

// newShellCmd creates the 'shell' command.
func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(os.Stdin)
			engine, err := openEngine(core.Dependencies{
				Confirmer: &lineConfirmer{in: in, out: os.Stdout},
				Saver:     fileSaver{dir: ".", out: os.Stdout},
			})
			if err != nil {
				return err
			}
			defer engine.Close()

			return runShell(GetContext(), engine, in, os.Stdout)
		},
	}
}

// syncWriter serializes writes from the prompt loop and the event printer.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// runShell mounts the dashboard and reads commands until quit, logout, or
// EOF. Catalog and preview changes are printed as they arrive.
func runShell(ctx context.Context, engine *core.Engine, in *bufio.Reader, w io.Writer) error {
	out := &syncWriter{w: w}

	bus := engine.Events()
	ch := bus.SubscribeAll()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range ch {
			printEvent(out, engine, ev)
		}
	}()
	defer func() {
		bus.UnsubscribeAll(ch)
		wg.Wait()
	}()

	if err := engine.Mount(ctx); err != nil {
		GetLogger().Warn().Err(err).Msg("Some dashboard data failed to load")
	}
	if v := engine.View(); v.User != nil {
		fmt.Fprintf(out, "Signed in as %s. Type 'help' for commands.\n", v.User.Username)
	}

	for {
		fmt.Fprint(out, "> ")
		line, err := in.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			done, cmdErr := runShellCommand(ctx, engine, out, line)
			if cmdErr != nil {
				fmt.Fprintf(out, "error: %v\n", cmdErr)
			}
			if done {
				return nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// runShellCommand executes one line. It reports whether the shell should
// exit.
func runShellCommand(ctx context.Context, engine *core.Engine, out io.Writer, line string) (bool, error) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "search":
		engine.SetQuery(arg)
	case "clear":
		engine.ClearQuery()
	case "ext":
		engine.ToggleExtension(arg)
	case "refresh":
		return false, engine.Refresh(ctx)
	case "ls":
		writeFileTable(out, engine.View().Files)
	case "select":
		if arg == "" {
			engine.SelectFile(nil)
			return false, nil
		}
		path, err := pathutil.ResolveAbsolutePath(arg)
		if err != nil {
			return false, err
		}
		engine.SelectFile(services.LocalFile(path))
	case "upload":
		err := engine.SubmitUpload(ctx)
		if errors.Is(err, services.ErrNoSelection) {
			return false, nil
		}
		return false, err
	case "open":
		if arg == "" {
			return false, fmt.Errorf("usage: open <id>")
		}
		engine.OpenPreview(ctx, models.FileID(arg))
	case "close":
		engine.ClosePreview()
	case "download":
		return false, engine.DownloadPreview(ctx)
	case "delete":
		deleted, err := engine.DeletePreview(ctx)
		if deleted {
			fmt.Fprintln(out, "Deleted")
		}
		return false, err
	case "profile":
		if err := engine.ToggleProfileMenu(ctx); err != nil {
			return false, err
		}
		if v := engine.View(); v.ProfileOpen {
			printProfileTo(out, v)
		}
	case "logout":
		return true, engine.Logout()
	case "help", "?":
		fmt.Fprintln(out, shellHelp)
	case "quit", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q (try 'help')", name)
	}
	return false, nil
}

func printEvent(out io.Writer, engine *core.Engine, ev events.Event) {
	switch e := ev.(type) {
	case *events.CatalogEvent:
		switch e.Type() {
		case events.EventCatalogUpdated:
			v := engine.View()
			fmt.Fprintf(out, "\n%d file(s)", len(v.Files))
			if v.Criteria.Query != "" {
				fmt.Fprintf(out, " matching %q", v.Criteria.Query)
			}
			if v.Criteria.Extension != "" {
				fmt.Fprintf(out, " with .%s", v.Criteria.Extension)
			}
			fmt.Fprintln(out)
			writeFileTable(out, v.Files)
		case events.EventCatalogError:
			fmt.Fprintf(out, "\nFailed to load files: %v\n", e.Err)
		}
	case *events.ExtensionsEvent:
		if len(e.Extensions) > 0 {
			fmt.Fprintf(out, "Extensions: %s\n", strings.Join(e.Extensions, " "))
		}
	case *events.SelectionEvent:
		if e.Name != "" {
			fmt.Fprintf(out, "Selected %s\n", e.Name)
		}
	case *events.PreviewEvent:
		if e.Preview == nil {
			return
		}
		r := preview.Render(*e.Preview)
		fmt.Fprintf(out, "--- %s ---\n", r.Filename)
		writeRendering(out, r)
	}
}

func printProfileTo(out io.Writer, v core.ViewState) {
	if v.Profile == nil {
		return
	}
	fmt.Fprint(out, formatProfile(*v.Profile))
}
