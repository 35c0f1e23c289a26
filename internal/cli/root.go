package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/requester/http"
)

var version = "0.1.0"

// NewRootCmd builds the command tree. A fresh tree per call keeps flag state
// from leaking between invocations in tests.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "requester",
		Short:   "A tiny HTTP client with charset-aware responses",
		Version: version,
		Long: `requester sends one HTTP request at a time, buffers the whole response and
decodes the body using the charset declared in Content-Type. Requests can be
given on the command line or collected in YAML/JSON request files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// If no subcommand is provided, print help
			return cmd.Help()
		},
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "Show headers and charset")
	root.PersistentFlags().Bool("no-color", false, "Disable colored output")
	root.PersistentFlags().Bool("debug", false, "Log request details to stderr")
	root.PersistentFlags().StringP("output", "o", "text", "Output format: text, json or yaml")

	root.AddCommand(newFetchCmd("fetch URL", "Send a request to the specified URL", ""))
	root.AddCommand(newFetchCmd("get URL", "Make a GET request to the specified URL", "GET"))
	root.AddCommand(newFetchCmd("post URL", "Make a POST request to the specified URL", http.MethodPost))
	root.AddCommand(newRunCmd())

	return root
}

// Execute runs the root command with os.Args and reports failures on stderr.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		printError(os.Stderr, err)
	}
	return err
}

func printError(w io.Writer, err error) {
	red := color.New(color.FgRed, color.Bold)
	msg := err.Error()
	if errors.Is(err, http.ErrTimeout) {
		msg += " (raise --connect-timeout or --read-timeout)"
	}
	fmt.Fprintf(w, "%s %s\n", red.Sprint("Error:"), msg)
}

// newLogger returns a text logger on w: debug level when requested,
// warnings only otherwise.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
