package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/filedash/filedash/internal/core"
	"github.com/filedash/filedash/internal/models"
	"github.com/filedash/filedash/internal/pathutil"
	"github.com/filedash/filedash/internal/preview"
	"github.com/filedash/filedash/internal/progress"
	"github.com/filedash/filedash/internal/services"
)

// newListCmd creates the 'ls' command.
func newListCmd() *cobra.Command {
	var search, ext string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List your files",
		Long: `List files, optionally filtered by search text and extension.

Examples:
  filedash ls
  filedash ls --search report
  filedash ls --ext pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine(core.Dependencies{})
			if err != nil {
				return err
			}
			defer engine.Close()

			engine.SetQuery(search)
			if ext != "" {
				engine.ToggleExtension(ext)
			}
			if err := engine.Refresh(GetContext()); err != nil {
				return fmt.Errorf("failed to list files: %w", err)
			}

			writeFileTable(os.Stdout, engine.View().Files)
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Search text")
	cmd.Flags().StringVarP(&ext, "ext", "e", "", "Only show files with this extension")
	return cmd
}

func writeFileTable(w io.Writer, files []models.FileRecord) {
	if len(files) == 0 {
		fmt.Fprintln(w, "No files found")
		return
	}

	idWidth := len("ID")
	nameWidth := len("NAME")
	for _, f := range files {
		idWidth = max(idWidth, len(f.ID))
		nameWidth = max(nameWidth, len(f.Filename))
	}

	fmt.Fprintf(w, "%-*s  %-*s  %s\n", idWidth, "ID", nameWidth, "NAME", "UPLOADED")
	for _, f := range files {
		fmt.Fprintf(w, "%-*s  %-*s  %s\n", idWidth, f.ID, nameWidth, f.Filename, uploadedLabel(f.UploadedAt))
	}
}

func uploadedLabel(ts models.Timestamp) string {
	if ts.Valid() {
		return humanize.Time(ts.Time)
	}
	if ts.Raw != "" {
		return ts.Raw
	}
	return "-"
}

// newExtensionsCmd creates the 'exts' command.
func newExtensionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exts",
		Short: "List the file extensions you have uploaded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine(core.Dependencies{})
			if err != nil {
				return err
			}
			defer engine.Close()

			exts, err := engine.API().FileExtensions(GetContext())
			if err != nil {
				return fmt.Errorf("failed to list extensions: %w", err)
			}
			if len(exts) == 0 {
				fmt.Println("No extensions")
				return nil
			}
			fmt.Println(strings.Join(exts, " "))
			return nil
		},
	}
}

// newUploadCmd creates the 'upload' command.
func newUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine(core.Dependencies{})
			if err != nil {
				return err
			}
			defer engine.Close()

			path, err := pathutil.ResolveAbsolutePath(args[0])
			if err != nil {
				return fmt.Errorf("cannot upload %s: %w", args[0], err)
			}
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("cannot upload %s: %w", args[0], err)
			}
			if info.IsDir() {
				return fmt.Errorf("cannot upload %s: is a directory", args[0])
			}
			GetLogger().Info().Str("file", path).Str("size", humanize.Bytes(uint64(info.Size()))).Msg("Uploading")

			engine.SelectFile(services.LocalFile(path))
			return engine.SubmitUpload(GetContext())
		},
	}
}

// newPreviewCmd creates the 'preview' command.
func newPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview <file-id>",
		Short: "Show a file inline",
		Long: `Show a file's content. Text is printed; images and PDFs are
summarized with their size; other types are not previewable.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine(core.Dependencies{})
			if err != nil {
				return err
			}
			defer engine.Close()

			r, ok := engine.OpenPreview(GetContext(), models.FileID(args[0]))
			if !ok {
				return nil
			}
			writeRendering(os.Stdout, r)
			return nil
		},
	}
}

func writeRendering(w io.Writer, r preview.Rendering) {
	switch r.Kind {
	case preview.KindText:
		fmt.Fprint(w, r.Text)
		if !strings.HasSuffix(r.Text, "\n") {
			fmt.Fprintln(w)
		}
	case preview.KindImage, preview.KindPDF:
		fmt.Fprintf(w, "[%s %s, %s as data URI]\n", r.Kind, r.Filename, humanize.Bytes(uint64(len(r.DataURI))))
	default:
		fmt.Fprintln(w, r.Text)
	}
}

// newDownloadCmd creates the 'download' command.
func newDownloadCmd() *cobra.Command {
	var outputDir string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "download <file-id>",
		Short: "Download a file",
		Long: `Download a file under its original name.

Examples:
  filedash download 42
  filedash download 42 -o ./downloads`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := pathutil.ResolveAbsolutePath(outputDir)
			if err != nil {
				return fmt.Errorf("invalid output directory %s: %w", outputDir, err)
			}
			engine, err := openEngine(core.Dependencies{
				Saver: fileSaver{dir: dir, overwrite: overwrite, out: os.Stderr},
			})
			if err != nil {
				return err
			}
			defer engine.Close()

			ctx := GetContext()
			if _, ok := engine.OpenPreview(ctx, models.FileID(args[0])); !ok {
				return nil
			}
			ctx = progress.WithReporter(ctx, progress.NewReporter(os.Stderr))
			if err := engine.DownloadPreview(ctx); err != nil {
				if errors.Is(err, services.ErrNoPreview) {
					return fmt.Errorf("file %s is not available", args[0])
				}
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "outdir", "o", ".", "Directory to save into")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing local file")
	return cmd
}

// newDeleteCmd creates the 'rm' command.
func newDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <file-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a file",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var confirmer services.Confirmer = alwaysYes{}
			if !yes {
				confirmer = stdinConfirmer()
			}

			engine, err := openEngine(core.Dependencies{Confirmer: confirmer})
			if err != nil {
				return err
			}
			defer engine.Close()

			ctx := GetContext()
			if _, ok := engine.OpenPreview(ctx, models.FileID(args[0])); !ok {
				return nil
			}
			deleted, err := engine.DeletePreview(ctx)
			if err != nil {
				if errors.Is(err, services.ErrNoPreview) {
					return fmt.Errorf("file %s is not available", args[0])
				}
				return err
			}
			if deleted {
				fmt.Printf("Deleted %s\n", args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")
	return cmd
}
