// HTTP handler serving mock responses from an engine.

package engine

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/getmockd/mockwire/pkg/logging"
	"github.com/getmockd/mockwire/pkg/mock"
	"github.com/getmockd/mockwire/pkg/request"
	"github.com/getmockd/mockwire/pkg/requestlog"
)

// MaxRequestBodySize is the maximum allowed request body size for mock matching (10MB).
// This prevents denial-of-service via oversized request bodies.
const MaxRequestBodySize = 10 << 20 // 10MB

// NearMissHeader carries the number of near misses on unmatched responses.
const NearMissHeader = "X-Mockwire-Near-Misses"

// Handler serves requests with the responses of matching mocks, turning
// the engine into a stand-alone mock server. Unmatched requests get a 404
// with a JSON explanation.
type Handler struct {
	engine *Engine
	log    *slog.Logger
}

// NewHandler creates a Handler for e.
func NewHandler(e *Engine) *Handler {
	return &Handler{
		engine: e,
		log:    logging.Nop(),
	}
}

// SetOperationalLogger sets the logger used for errors and warnings.
func (h *Handler) SetOperationalLogger(log *slog.Logger) {
	if log == nil {
		log = logging.Nop()
	}
	h.log = log
}

// errorResponse is the JSON body of handler errors.
type errorResponse struct {
	Error      string                    `json:"error"`
	Message    string                    `json:"message"`
	NearMisses []requestlog.NearMissInfo `json:"nearMisses,omitempty"`
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// MaxBytesReader returns an error when the limit is exceeded, unlike
	// LimitReader which silently truncates.
	if r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	}

	req, err := request.FromHTTP(r)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.log.Warn("request body too large", "path", r.URL.Path, "limit", MaxRequestBodySize)
			h.writeError(w, http.StatusRequestEntityTooLarge, errorResponse{
				Error:   "body_too_large",
				Message: "request body exceeds " + strconv.Itoa(MaxRequestBodySize) + " bytes",
			})
			return
		}
		h.writeError(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
		return
	}

	res, err := h.engine.Match(req)
	var noMatch *NoMatchError
	var simErr *mock.SimulatedError
	switch {
	case errors.As(err, &noMatch):
		misses := nearMisses(noMatch.Misses)
		w.Header().Set(NearMissHeader, strconv.Itoa(len(misses)))
		h.writeError(w, http.StatusNotFound, errorResponse{
			Error:      "no_match",
			Message:    "no mock matched " + req.Method + " " + req.URL.String(),
			NearMisses: misses,
		})
		return
	case errors.As(err, &simErr):
		h.writeError(w, http.StatusBadGateway, errorResponse{Error: "simulated_error", Message: simErr.Err.Error()})
		return
	case err != nil:
		h.log.Error("failed to match request", "method", req.Method, "url", req.URL, "error", err)
		h.writeError(w, http.StatusInternalServerError, errorResponse{Error: "match_error", Message: err.Error()})
		return
	case !res.Matched():
		// There is no upstream to pass the request to.
		h.writeError(w, http.StatusNotFound, errorResponse{
			Error:   "no_match",
			Message: "request was not handled by any mock (" + res.Outcome.String() + ")",
		})
		return
	}

	if err := sleep(r.Context(), res.Mock.GetDelay()); err != nil {
		return
	}
	h.writeResponse(w, r, res.Response())
}

// writeResponse copies resp to w, flushing after every chunk of a chunked
// response.
func (h *Handler) writeResponse(w http.ResponseWriter, r *http.Request, resp *mock.Response) {
	for name, values := range resp.HTTPHeader() {
		if name == "Transfer-Encoding" || name == "Content-Length" {
			continue
		}
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}

	out := resp.HTTPResponse(r)
	defer out.Body.Close()

	if !resp.IsChunked() {
		body := resp.BodyBytes()
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(resp.StatusCode())
		if r.Method != http.MethodHead {
			if _, err := w.Write(body); err != nil {
				h.log.Debug("failed to write response body", "error", err)
			}
		}
		return
	}

	w.WriteHeader(resp.StatusCode())
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 32*1024)
	for {
		n, err := out.Body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				h.log.Debug("failed to write response chunk", "error", werr)
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err != nil {
			return
		}
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, body errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Debug("failed to write error response", "error", err)
	}
}
