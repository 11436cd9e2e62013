package mock

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
)

// Response describes the reply for a matched request.
type Response struct {
	status int
	header http.Header
	body   []byte
	chunks [][]byte
	mock   *Mock
	err    error
}

// NewResponse creates an empty 200 response.
func NewResponse() *Response {
	return &Response{
		status: http.StatusOK,
		header: make(http.Header),
	}
}

// setError records the first error encountered during building.
func (r *Response) setError(err error) {
	if r.err == nil {
		r.err = err
	}
}

// Err returns the first configuration error.
func (r *Response) Err() error { return r.err }

// Status sets the status code.
func (r *Response) Status(code int) *Response {
	if code < 100 || code > 999 {
		r.setError(&InvalidArgumentError{Key: "status", Err: fmt.Errorf("invalid status code %d", code)})
		return r
	}
	r.status = code
	return r
}

// Header adds a header value.
func (r *Response) Header(name, value string) *Response {
	r.header.Add(name, value)
	return r
}

// Headers adds every header in headers.
func (r *Response) Headers(headers map[string]string) *Response {
	for k, v := range headers {
		r.header.Add(k, v)
	}
	return r
}

// Set replaces a header value.
func (r *Response) Set(name, value string) *Response {
	r.header.Set(name, value)
	return r
}

// Type sets Content-Type, expanding aliases such as "json".
func (r *Response) Type(name string) *Response {
	return r.Set("Content-Type", ContentType(name))
}

// Content is an alias for Type.
func (r *Response) Content(name string) *Response {
	return r.Type(name)
}

// Body sets the body from a string or []byte.
func (r *Response) Body(body any) *Response {
	switch b := body.(type) {
	case string:
		r.body = []byte(b)
	case []byte:
		r.body = append([]byte(nil), b...)
	case nil:
		r.body = nil
	default:
		r.setError(&InvalidArgumentError{Key: "body", Err: fmt.Errorf("unsupported type %T", body)})
		return r
	}
	r.chunks = nil
	return r
}

// Chunked sends the body as a sequence of chunks with chunked transfer
// encoding. Chunks may be strings or byte slices.
func (r *Response) Chunked(chunks ...any) *Response {
	out := make([][]byte, 0, len(chunks))
	for _, c := range chunks {
		switch v := c.(type) {
		case string:
			out = append(out, []byte(v))
		case []byte:
			out = append(out, append([]byte(nil), v...))
		default:
			r.setError(&InvalidArgumentError{Key: "chunked", Err: fmt.Errorf("unsupported chunk type %T", c)})
			return r
		}
	}
	r.chunks = out
	r.body = nil
	r.header.Set("Transfer-Encoding", "chunked")
	return r
}

// JSON sets a JSON body and Content-Type. Strings and byte slices are
// used verbatim; other values are encoded with four space indentation.
func (r *Response) JSON(v any) *Response {
	r.header.Set("Content-Type", "application/json")
	switch d := v.(type) {
	case string, []byte:
		return r.Body(d)
	}
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		r.setError(&InvalidArgumentError{Key: "json", Err: err})
		return r
	}
	return r.Body(data)
}

// XML sets an XML body and Content-Type.
func (r *Response) XML(doc any) *Response {
	r.header.Set("Content-Type", "application/xml")
	return r.Body(doc)
}

// File sets the body to the contents of path.
func (r *Response) File(path string) *Response {
	data, err := os.ReadFile(path)
	if err != nil {
		r.setError(&InvalidArgumentError{Key: "file", Err: err})
		return r
	}
	return r.Body(data)
}

// Mock returns the mock the response belongs to.
func (r *Response) Mock() *Mock { return r.mock }

// StatusCode returns the status code.
func (r *Response) StatusCode() int { return r.status }

// HTTPHeader returns a copy of the headers.
func (r *Response) HTTPHeader() http.Header { return r.header.Clone() }

// BodyBytes returns the body, joining chunks for chunked responses.
func (r *Response) BodyBytes() []byte {
	if r.chunks != nil {
		return bytes.Join(r.chunks, nil)
	}
	return append([]byte(nil), r.body...)
}

// IsChunked reports whether the body is sent in chunks.
func (r *Response) IsChunked() bool { return r.chunks != nil }

// HTTPResponse builds the *http.Response returned for req.
func (r *Response) HTTPResponse(req *http.Request) *http.Response {
	resp := &http.Response{
		Status:     strconv.Itoa(r.status) + " " + http.StatusText(r.status),
		StatusCode: r.status,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     r.header.Clone(),
		Request:    req,
	}
	resp.Status = strings.TrimSpace(resp.Status)

	if r.chunks != nil {
		readers := make([]io.Reader, 0, len(r.chunks))
		for _, c := range r.chunks {
			readers = append(readers, bytes.NewReader(c))
		}
		resp.Body = io.NopCloser(io.MultiReader(readers...))
		resp.ContentLength = -1
		resp.TransferEncoding = []string{"chunked"}
		resp.Header.Del("Transfer-Encoding")
		return resp
	}

	resp.Body = io.NopCloser(bytes.NewReader(r.body))
	resp.ContentLength = int64(len(r.body))
	if req != nil && req.Method == http.MethodHead {
		resp.Body = http.NoBody
	}
	return resp
}

// String describes the response for logs.
func (r *Response) String() string {
	return fmt.Sprintf("Response(status=%d, headers=%v, body=%d bytes)", r.status, r.header, len(r.BodyBytes()))
}
