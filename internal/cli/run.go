package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/requester/http"
	"github.com/wesleyorama2/requester/internal/config"
	"github.com/wesleyorama2/requester/internal/expect"
)

// errChecksFailed is returned when at least one request failed or one of its
// expectations did not hold.
var errChecksFailed = errors.New("some requests failed their checks")

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run FILE [NAME...]",
		Short: "Run requests from a YAML or JSON request file",
		Long: `Run sends the named requests from a request file, or all of them in name
order when no names are given, and evaluates their expect blocks.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFile(cmd, args[0], args[1:])
		},
	}

	cmd.Flags().StringArray("var", []string{}, "Variable as name=value, overriding the file's variables")

	return cmd
}

func runFile(cmd *cobra.Command, path string, names []string) error {
	display, err := readDisplayOptions(cmd)
	if err != nil {
		return err
	}
	varFlags, _ := cmd.Flags().GetStringArray("var")
	vars, err := parsePairs(varFlags)
	if err != nil {
		return err
	}

	file, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		names = file.Names()
	}

	logger := newLogger(cmd.ErrOrStderr(), display.debug)
	formatter := display.formatter()
	out := cmd.OutOrStdout()
	failed := false

	for _, name := range names {
		req, entry, err := file.Requester(name, vars, http.WithLogger(logger))
		if err != nil {
			return err
		}

		fmt.Fprint(out, formatter.FormatRequest(req))

		resp, err := execute(cmd.Context(), req, entry.FollowRedirects, display.progressWriter(cmd))
		if err != nil {
			printError(cmd.ErrOrStderr(), fmt.Errorf("%s: %w", name, err))
			failed = true
			continue
		}

		text, err := decodeBody(resp, entry.Charset)
		if err != nil {
			printError(cmd.ErrOrStderr(), fmt.Errorf("%s: %w", name, err))
			failed = true
			continue
		}
		fmt.Fprint(out, formatter.FormatResponse(resp, text))

		if entry.Expect == nil {
			continue
		}
		results := expect.Evaluate(resp, text, entry.Expect)
		fmt.Fprint(out, formatter.FormatResults(name, results))
		if !expect.Passed(results) {
			failed = true
		}
	}

	if failed {
		return errChecksFailed
	}
	return nil
}
