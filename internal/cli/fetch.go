package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/requester/http"
	"github.com/wesleyorama2/requester/internal/output"
	"github.com/wesleyorama2/requester/internal/stats"
)

// displayOptions are the persistent flags shared by every subcommand
type displayOptions struct {
	verbose bool
	noColor bool
	debug   bool
	format  output.OutputFormat
}

func readDisplayOptions(cmd *cobra.Command) (displayOptions, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	noColor, _ := cmd.Flags().GetBool("no-color")
	debug, _ := cmd.Flags().GetBool("debug")
	formatName, _ := cmd.Flags().GetString("output")

	format, err := output.ParseFormat(formatName)
	if err != nil {
		return displayOptions{}, err
	}

	return displayOptions{
		verbose: verbose,
		noColor: noColor || !output.IsTerminal(os.Stdout),
		debug:   debug,
		format:  format,
	}, nil
}

func (o displayOptions) formatter() output.FormatProvider {
	return output.GetFormatter(o.format, o.verbose, o.noColor)
}

// progressWriter returns where the spinner is drawn, or nil for no spinner.
func (o displayOptions) progressWriter(cmd *cobra.Command) io.Writer {
	if o.format != output.FormatText || cmd.ErrOrStderr() != os.Stderr || !output.IsTerminal(os.Stderr) {
		return nil
	}
	return os.Stderr
}

// newFetchCmd builds a request command. A non-empty method presets the
// method and hides the --method flag.
func newFetchCmd(use, short, method string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, args[0], method)
		},
	}

	if method == "" {
		cmd.Flags().StringP("method", "X", "", "HTTP method (default GET, or POST when -d is given)")
	}
	cmd.Flags().StringArrayP("header", "H", []string{}, "HTTP headers to include, as \"Key: value\" (can be used multiple times)")
	cmd.Flags().StringArrayP("data", "d", []string{}, "POST parameter as key=value (can be used multiple times)")
	cmd.Flags().StringArrayP("query", "q", []string{}, "Query parameter as key=value, percent-encoded into the URL")
	cmd.Flags().Duration("connect-timeout", 10*time.Second, "Timeout for establishing the connection (0 for none)")
	cmd.Flags().Duration("read-timeout", 30*time.Second, "Timeout for each read from the server (0 for none)")
	cmd.Flags().BoolP("location", "L", false, "Follow Location headers")
	cmd.Flags().Int("max-redirects", 0, "Stop after this many redirects (0 for no limit)")
	cmd.Flags().String("charset", "", "Decode the body with this charset instead of the declared one")
	cmd.Flags().Int("repeat", 1, "Send the request this many times and report latency percentiles")

	return cmd
}

func runFetch(cmd *cobra.Command, rawURL, method string) error {
	display, err := readDisplayOptions(cmd)
	if err != nil {
		return err
	}

	if method == "" {
		method, _ = cmd.Flags().GetString("method")
	}
	headerFlags, _ := cmd.Flags().GetStringArray("header")
	dataFlags, _ := cmd.Flags().GetStringArray("data")
	queryFlags, _ := cmd.Flags().GetStringArray("query")
	connectTimeout, _ := cmd.Flags().GetDuration("connect-timeout")
	readTimeout, _ := cmd.Flags().GetDuration("read-timeout")
	follow, _ := cmd.Flags().GetBool("location")
	maxRedirects, _ := cmd.Flags().GetInt("max-redirects")
	charset, _ := cmd.Flags().GetString("charset")
	repeat, _ := cmd.Flags().GetInt("repeat")

	headers, err := parseHeaders(headerFlags)
	if err != nil {
		return err
	}
	params, err := parsePairs(dataFlags)
	if err != nil {
		return err
	}
	query, err := parsePairs(queryFlags)
	if err != nil {
		return err
	}
	if repeat < 1 {
		return fmt.Errorf("--repeat must be at least 1, got %d", repeat)
	}

	if method == "" {
		method = "GET"
		if len(params) > 0 {
			method = http.MethodPost
		}
	}

	logger := newLogger(cmd.ErrOrStderr(), display.debug)
	req := http.NewRequester(http.WithLogger(logger), http.WithMaxRedirects(maxRedirects)).
		SetMethod(method).
		SetConnectTimeout(connectTimeout).
		SetReadTimeout(readTimeout).
		AddHeaders(headers).
		AddParameters(params)

	target := normalizeURL(rawURL)
	if len(query) > 0 {
		req.SetURLWithQuery(target, query)
	} else {
		req.SetURL(target)
	}
	start := req.URL()

	formatter := display.formatter()
	out := cmd.OutOrStdout()
	fmt.Fprint(out, formatter.FormatRequest(req))

	recorder := stats.NewRecorder()
	var last *http.Response
	for i := 0; i < repeat; i++ {
		// Redirects rewrite the URL, so every round starts over
		req.SetURL(start)

		resp, err := execute(cmd.Context(), req, follow, display.progressWriter(cmd))
		if err != nil {
			if repeat == 1 {
				return err
			}
			recorder.Fail()
			logger.Warn("request failed", "round", i+1, "error", err)
			continue
		}
		recorder.Record(resp.Elapsed(), len(resp.Body()))
		last = resp
	}

	if last != nil {
		text, err := decodeBody(last, charset)
		if err != nil {
			return err
		}
		fmt.Fprint(out, formatter.FormatResponse(last, text))
	}
	if repeat > 1 {
		fmt.Fprint(out, formatter.FormatSummary(recorder.Summary()))
	}
	if last == nil {
		return fmt.Errorf("all %d requests failed", repeat)
	}

	return nil
}

// decodeBody decodes with the explicit charset when one is given, failing on
// unknown names, and with the declared charset otherwise.
func decodeBody(resp *http.Response, charset string) (string, error) {
	if charset == "" {
		return resp.Text(), nil
	}
	return resp.TextWithCharset(charset)
}
