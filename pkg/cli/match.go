package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/getmockd/mockwire/pkg/cli/internal/output"
	"github.com/getmockd/mockwire/pkg/cli/internal/parse"
	"github.com/getmockd/mockwire/pkg/engine"
	"github.com/getmockd/mockwire/pkg/mock"
	"github.com/getmockd/mockwire/pkg/request"
	"github.com/getmockd/mockwire/pkg/requestlog"
)

// matchFlags holds all flags for the match command.
type matchFlags struct {
	files        []string
	method       string
	headers      []string
	data         string
	network      bool
	networkHosts string
}

var matchFlagVals matchFlags

var matchCmd = &cobra.Command{
	Use:   "match <url>",
	Short: "Show which mock a request would match",
	Long: `Describe a request with curl-like flags and match it against the mocks of
the given definition files. The matched mock and its response are printed;
when nothing matches, every mock is listed with the reasons it rejected the
request and the command fails.`,
	Example: `  mockwire match -f mocks.yaml http://api.example.com/users

  mockwire match -f mocks.yaml -X POST \
    -H 'Content-Type: application/json' -d '{"name": "ada"}' \
    http://api.example.com/users

  # Read the body from a file
  mockwire match -f mocks.yaml -X PUT -d @user.json http://api.example.com/users/1`,
	Args: cobra.ExactArgs(1),
	RunE: runMatch,
}

func init() {
	f := &matchFlagVals

	matchCmd.Flags().StringArrayVarP(&f.files, "file", "f", nil, "Definition file or glob (repeatable) [required]")
	matchCmd.Flags().StringVarP(&f.method, "method", "X", http.MethodGet, "Request method")
	matchCmd.Flags().StringArrayVarP(&f.headers, "header", "H", nil, `Request header "Name: value" (repeatable)`)
	matchCmd.Flags().StringVarP(&f.data, "data", "d", "", "Request body, or @file to read it from a file")
	matchCmd.Flags().BoolVar(&f.network, "network", false, "Allow unmatched requests to reach the network")
	matchCmd.Flags().StringVar(&f.networkHosts, "network-hosts", "", "Comma-separated hosts the network is allowed for")

	_ = matchCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(matchCmd)
}

// matchResult is the JSON output of the match command.
type matchResult struct {
	Outcome    string                    `json:"outcome"`
	MockID     string                    `json:"mockId,omitempty"`
	Mock       string                    `json:"mock,omitempty"`
	Status     int                       `json:"status,omitempty"`
	Headers    http.Header               `json:"headers,omitempty"`
	Body       string                    `json:"body,omitempty"`
	Error      string                    `json:"error,omitempty"`
	NearMisses []requestlog.NearMissInfo `json:"nearMisses,omitempty"`
}

func runMatch(cmd *cobra.Command, args []string) error {
	f := &matchFlagVals

	log, closeLog, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	opts := []engine.Option{engine.WithLogger(log.With("component", "engine"))}
	if f.network || f.networkHosts != "" {
		opts = append(opts, engine.WithNetwork(parse.SplitTrim(f.networkHosts, ",")...))
	}
	e, err := loadEngine(f.files, opts...)
	if err != nil {
		return err
	}

	req, err := buildRequest(f, args[0])
	if err != nil {
		return err
	}

	res, matchErr := e.Match(req)
	result := describeMatch(res, matchErr)
	if result.Outcome == requestlog.OutcomeUnmatched {
		if entries := e.History(nil); len(entries) > 0 {
			result.NearMisses = entries[0].NearMisses
		}
	}

	if jsonOutput {
		if err := output.JSON(cmd.OutOrStdout(), result); err != nil {
			return err
		}
		if matchErr != nil {
			return errReported
		}
		return nil
	}

	w := cmd.OutOrStdout()
	switch result.Outcome {
	case requestlog.OutcomeMatched:
		printMatched(w, res, matchErr)
	case requestlog.OutcomeFiltered:
		fmt.Fprintln(w, "filtered: the request was rejected by an engine filter")
	case requestlog.OutcomePassthrough:
		fmt.Fprintln(w, "passthrough: no mock matched; the request would be sent to the network")
	}
	return matchErr
}

// buildRequest creates the request described by the match flags.
func buildRequest(f *matchFlags, rawURL string) (*request.Request, error) {
	headers, err := parse.Headers(f.headers)
	if err != nil {
		return nil, err
	}
	opts := []request.Option{request.WithHeaders(headers)}

	if f.data != "" {
		body := []byte(f.data)
		if path, ok := strings.CutPrefix(f.data, "@"); ok {
			body, err = os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("reading request body: %w", err)
			}
		}
		opts = append(opts, request.WithBody(body))
	}
	return request.New(f.method, rawURL, opts...)
}

func describeMatch(res *engine.Result, err error) matchResult {
	var result matchResult
	switch {
	case res != nil:
		result.Outcome = res.Outcome.String()
	case errors.Is(err, engine.ErrNoMatch):
		result.Outcome = requestlog.OutcomeUnmatched
	default:
		result.Outcome = requestlog.OutcomeError
	}
	if err != nil {
		result.Error = err.Error()
	}

	if res.Matched() {
		resp := res.Response()
		result.MockID = res.Mock.ID
		result.Mock = res.Mock.String()
		result.Status = resp.StatusCode()
		result.Headers = resp.HTTPHeader()
		result.Body = string(resp.BodyBytes())

		var simErr *mock.SimulatedError
		if errors.As(err, &simErr) {
			result.Status = 0
			result.Headers = nil
			result.Body = ""
		}
	}
	return result
}

func printMatched(w io.Writer, res *engine.Result, err error) {
	fmt.Fprintf(w, "matched: %s\n", res.Mock)
	var simErr *mock.SimulatedError
	if errors.As(err, &simErr) {
		return
	}

	resp := res.Response()
	fmt.Fprintf(w, "status: %d\n", resp.StatusCode())
	header := resp.HTTPHeader()
	names := make([]string, 0, len(header))
	for name := range header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, v := range header[name] {
			fmt.Fprintf(w, "%s: %s\n", name, v)
		}
	}
	if body := resp.BodyBytes(); len(body) > 0 {
		fmt.Fprintf(w, "\n%s\n", strings.TrimRight(string(body), "\n"))
	}
}
