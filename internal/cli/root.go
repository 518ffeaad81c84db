// Package cli implements the transcriptions admin command.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"voice-transcribe-go/internal/config"
	"voice-transcribe-go/internal/logger"
	"voice-transcribe-go/internal/store"
	"voice-transcribe-go/internal/transcription"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Database string
	Format   string // "json" | "text"
	Verbose  bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "transcriptions",
		Short: "Inspect and export stored transcriptions",
		Long: `Administer the transcription store used by the API service.

Reads go through the same query layer as the HTTP API, so results match
GET /transcriptions exactly.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if !cmd.Flags().Changed("db") {
				if env := os.Getenv("DB_PATH"); env != "" {
					opts.Database = env
				}
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", config.Default().DBPath, "path to SQLite database (env DB_PATH)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// session bundles what a command needs to talk to the store.
type session struct {
	store   *store.Store
	queries *transcription.QueryService
	log     *logrus.Entry
}

func openSession(opts *RootOptions, errOut io.Writer) (*session, error) {
	l := logger.NewWithOutput(errOut)
	if opts.Verbose {
		l.Logger.SetLevel(logrus.DebugLevel)
	} else {
		l.Logger.SetLevel(logrus.WarnLevel)
	}
	log := l.Component("cli").WithField("db", opts.Database)

	st, err := store.Open(opts.Database, store.Options{})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	log.Debug("store opened")

	return &session{
		store:   st,
		queries: transcription.NewQueryService(transcription.NewRepository(st)),
		log:     log,
	}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
