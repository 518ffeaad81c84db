package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"voice-transcribe-go/internal/export"
	"voice-transcribe-go/internal/transcription"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "init",
		Short:         "Create the database schema if it does not exist",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.store.Init(commandContext(cmd)); err != nil {
				return WrapExitError(ExitCommandError, "failed to initialize schema", err)
			}

			out := newFormatter(rootOpts, cmd)
			if out.JSON() {
				return out.Success(map[string]string{"database": rootOpts.Database})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s\n", rootOpts.Database)
			return nil
		},
	}
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List all transcriptions in insertion order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			views, err := s.queries.GetAll(commandContext(cmd))
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to list transcriptions", err)
			}
			return newFormatter(rootOpts, cmd).Views(views)
		},
	}
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one transcription",
		Example: `  transcriptions get 3
  transcriptions get 3 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				_ = out.Error(string(transcription.KindNotFound), "Transcription not found")
				return reportedExitError(ExitFailure, fmt.Sprintf("invalid id %q", args[0]), err)
			}

			s, err := openSession(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			view, err := s.queries.GetByID(commandContext(cmd), id)
			if transcription.IsNotFound(err) {
				_ = out.Error(string(transcription.KindNotFound), "Transcription not found")
				return reportedExitError(ExitFailure, "lookup failed", err)
			}
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read transcription", err)
			}
			return out.View(view)
		},
	}
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Case-insensitive substring search over file names and text",
		Long: `Search file names and transcribed text for a substring, ignoring case.

An empty or missing query lists everything.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}

			s, err := openSession(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			views, err := s.queries.Search(commandContext(cmd), query)
			if err != nil {
				return WrapExitError(ExitCommandError, "search failed", err)
			}
			return newFormatter(rootOpts, cmd).Views(views)
		},
	}
}

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Out    string
	Verify bool
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every transcription to an XLSX workbook",
		Example: `  transcriptions export --out transcriptions.xlsx
  transcriptions export --out transcriptions.xlsx --verify`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output .xlsx path (required)")
	_ = cmd.MarkFlagRequired("out")
	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "read the workbook back and compare row count")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	s, err := openSession(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()

	views, err := s.queries.GetAll(commandContext(cmd))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list transcriptions", err)
	}

	f, err := os.Create(opts.Out)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create output file", err)
	}
	if err := export.WriteXLSX(f, views); err != nil {
		f.Close()
		return WrapExitError(ExitCommandError, "failed to write workbook", err)
	}
	if err := f.Close(); err != nil {
		return WrapExitError(ExitCommandError, "failed to close workbook", err)
	}
	out.VerboseLog("wrote %d rows to %s", len(views), opts.Out)

	if opts.Verify {
		if err := verifyExport(opts.Out, len(views)); err != nil {
			_ = out.Error("verify_failed", err.Error())
			return reportedExitError(ExitFailure, "export verification failed", err)
		}
	}

	if out.JSON() {
		return out.Success(map[string]interface{}{
			"path":     opts.Out,
			"rows":     len(views),
			"verified": opts.Verify,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d transcriptions to %s\n", len(views), opts.Out)
	return nil
}

func verifyExport(path string, want int) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	got, err := export.ReadXLSX(f)
	if err != nil {
		return err
	}
	if len(got) != want {
		return fmt.Errorf("workbook has %d rows, expected %d", len(got), want)
	}
	return nil
}
