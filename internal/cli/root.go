// Package cli is the dws command line: serve the API, migrate the database
// or print the route table.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	LogFormat  string // "text" | "json"
	Verbose    bool
}

// NewRootCommand creates the root command of the dws binary.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "dws",
		Short: "Disaster Warning System forum backend",
		Long:  "JSON API for the Disaster Warning System community forum: geo-tagged warnings, comments, likes, follows and notifications.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger(opts, cmd.ErrOrStderr())
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "YAML config file (default $DWS_CONFIG)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "text", "log format (text|json)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewRoutesCommand(opts))

	return cmd
}

func setupLogger(opts *RootOptions, w io.Writer) error {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch opts.LogFormat {
	case "text":
		h = slog.NewTextHandler(w, hopts)
	case "json":
		h = slog.NewJSONHandler(w, hopts)
	default:
		return fmt.Errorf("invalid log format %q: must be text or json", opts.LogFormat)
	}
	slog.SetDefault(slog.New(h))
	return nil
}
