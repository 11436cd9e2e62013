package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/getmockd/mockwire/pkg/engine"
)

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	files           []string
	addr            string
	printURL        bool
	historySize     int
	readTimeout     int
	writeTimeout    int
	shutdownTimeout int
}

var serveFlagVals serveFlags

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve mock definitions over HTTP",
	Long: `Run an HTTP server answering requests with the responses of the matching
mocks. Requests no mock matches get a 404 with a JSON body listing the
closest mocks. Runs in the foreground until SIGTERM/SIGINT.`,
	Example: `  mockwire serve -f mocks.yaml

  # Auto-assign a port and print the URL
  mockwire serve -f 'mocks/**/*.yaml' --addr 127.0.0.1:0 --print-url

  # JSON logs for CI parsing
  mockwire serve -f mocks.yaml --log-level info --log-format json`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	f := &serveFlagVals

	serveCmd.Flags().StringArrayVarP(&f.files, "file", "f", nil, "Definition file or glob (repeatable) [required]")
	serveCmd.Flags().StringVar(&f.addr, "addr", "localhost:4280", "Listen address (port 0 = OS auto-assign)")
	serveCmd.Flags().BoolVar(&f.printURL, "print-url", false, "Print the server URL to stdout on startup")
	serveCmd.Flags().IntVar(&f.historySize, "history-size", 1000, "Number of requests kept in the request history")
	serveCmd.Flags().IntVar(&f.readTimeout, "read-timeout", 30, "HTTP read timeout in seconds")
	serveCmd.Flags().IntVar(&f.writeTimeout, "write-timeout", 30, "HTTP write timeout in seconds")
	serveCmd.Flags().IntVar(&f.shutdownTimeout, "shutdown-timeout", 5, "Graceful shutdown timeout in seconds")

	_ = serveCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	f := &serveFlagVals

	log, closeLog, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	e, err := loadEngine(f.files,
		engine.WithLogger(log.With("component", "engine")),
		engine.WithHistorySize(f.historySize),
	)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", f.addr)
	if err != nil {
		if isAddrInUseError(err) {
			return fmt.Errorf("address %s is already in use - try port 0 for auto-assign", f.addr)
		}
		return fmt.Errorf("failed to listen: %w", err)
	}

	if f.printURL {
		fmt.Fprintf(cmd.OutOrStdout(), "http://%s\n", ln.Addr())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		ReadTimeout:  time.Duration(f.readTimeout) * time.Second,
		WriteTimeout: time.Duration(f.writeTimeout) * time.Second,
	}
	return serve(ctx, log, e, srv, ln, time.Duration(f.shutdownTimeout)*time.Second)
}

// serve answers requests on ln from e until ctx is done, then shuts srv
// down gracefully.
func serve(ctx context.Context, log *slog.Logger, e *engine.Engine, srv *http.Server, ln net.Listener, shutdownTimeout time.Duration) error {
	handler := engine.NewHandler(e)
	handler.SetOperationalLogger(log.With("component", "handler"))
	srv.Handler = handler

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	log.Info("mock server started",
		"addr", ln.Addr().String(),
		"mocks", len(e.Mocks()),
		"network", e.NetworkEnabled(),
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("mock server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down mock server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	pending := e.PendingMocks()
	for _, m := range pending {
		log.Warn("mock still pending", "mock", m.String())
	}
	log.Info("mock server stopped", "requests", e.HistoryStore().Count(), "pending", len(pending))
	return nil
}

func isAddrInUseError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, syscall.EADDRINUSE) ||
			strings.Contains(strings.ToLower(opErr.Err.Error()), "address already in use")
	}
	return false
}
