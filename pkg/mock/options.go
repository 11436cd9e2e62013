package mock

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/getmockd/mockwire/internal/matching"
	"github.com/getmockd/mockwire/pkg/request"
)

// Options configures a mock by option name, as read from mock definition
// files. Keys prefixed with "response_" or "reply_" configure the
// response; for example {"url": "http://x.com", "reply": 404,
// "response_json": {"error": "not found"}}.
type Options map[string]any

type mockSetter func(m *Mock, v any) error

type responseSetter func(r *Response, v any) error

var mockSetters = map[string]mockSetter{
	"name": func(m *Mock, v any) error {
		s, err := toString(v)
		if err == nil {
			m.Named(s)
		}
		return err
	},
	"url":    func(m *Mock, v any) error { return built(m.URL(v)) },
	"path":   func(m *Mock, v any) error { return built(m.Path(v)) },
	"method": func(m *Mock, v any) error {
		s, err := toString(v)
		if err != nil {
			return err
		}
		return built(m.Method(s))
	},
	"headers": func(m *Mock, v any) error {
		return built(m.Headers(normalizeMap(v)))
	},
	"header_present": func(m *Mock, v any) error {
		names, err := toStrings(v)
		if err == nil {
			m.HeadersPresent(names...)
		}
		return err
	},
	"type":    stringSetter((*Mock).Type),
	"content": stringSetter((*Mock).Content),
	"params": func(m *Mock, v any) error {
		return built(m.Params(normalizeMap(v)))
	},
	"param": func(m *Mock, v any) error {
		pairs, ok := toAnyMap(v)
		if !ok {
			return fmt.Errorf("expected a map, got %T", v)
		}
		for _, k := range sortedKeys(pairs) {
			m.Param(k, pairs[k])
		}
		return built(m)
	},
	"param_exists": func(m *Mock, v any) error {
		if name, ok := v.(string); ok {
			return built(m.ParamExists(name))
		}
		fields, ok := toAnyMap(v)
		if !ok {
			return fmt.Errorf("expected a name or {name, allow_empty}, got %T", v)
		}
		name, err := toString(fields["name"])
		if err != nil {
			return err
		}
		var opts []MatchOption
		if allow, _ := toBool(fields["allow_empty"]); allow {
			opts = append(opts, AllowEmpty())
		}
		return built(m.ParamExists(name, opts...))
	},
	"body":       func(m *Mock, v any) error { return built(m.Body(v)) },
	"json":       func(m *Mock, v any) error { return built(m.JSON(normalize(v))) },
	"jsonschema": func(m *Mock, v any) error { return built(m.JSONSchema(normalize(v))) },
	"xml":        func(m *Mock, v any) error { return built(m.XML(v)) },
	"jsonpath": func(m *Mock, v any) error {
		conds, ok := toAnyMap(v)
		if !ok {
			return fmt.Errorf("expected a map of path to value, got %T", v)
		}
		for _, path := range sortedKeys(conds) {
			m.JSONPath(path, conds[path])
		}
		return built(m)
	},
	"xpath": func(m *Mock, v any) error {
		conds, ok := toAnyMap(v)
		if !ok {
			return fmt.Errorf("expected a map of path to value, got %T", v)
		}
		for _, path := range sortedKeys(conds) {
			m.XPath(path, conds[path])
		}
		return built(m)
	},
	"expr": func(m *Mock, v any) error {
		sources, err := toStrings(v)
		if err != nil {
			return err
		}
		for _, src := range sources {
			m.Expr(src)
		}
		return built(m)
	},
	"times": func(m *Mock, v any) error {
		n, err := toInt(v)
		if err == nil {
			m.Times(n)
		}
		return err
	},
	"persist": func(m *Mock, v any) error {
		on, err := toBool(v)
		if err == nil {
			m.SetPersist(on)
		}
		return err
	},
	"delay": func(m *Mock, v any) error {
		d, err := toDuration(v)
		if err == nil {
			m.Delay(d)
		}
		return err
	},
	"error": func(m *Mock, v any) error { return built(m.Error(v)) },
	"reply": func(m *Mock, v any) error {
		code, err := toInt(v)
		if err != nil {
			return err
		}
		return m.Reply(code).Err()
	},
	"filter": func(m *Mock, v any) error {
		filters, err := toFilters(v)
		if err == nil {
			m.Filter(filters...)
		}
		return err
	},
	"mapper": func(m *Mock, v any) error {
		switch fn := v.(type) {
		case MapperFunc:
			m.Map(fn)
		case func(*request.Request, *Mock) *request.Request:
			m.Map(fn)
		case []MapperFunc:
			m.Map(fn...)
		default:
			return fmt.Errorf("expected a MapperFunc, got %T", v)
		}
		return nil
	},
	"callback": func(m *Mock, v any) error {
		switch fn := v.(type) {
		case CallbackFunc:
			m.Callback(fn)
		case func(*request.Request, *Mock):
			m.Callback(fn)
		case []CallbackFunc:
			m.Callback(fn...)
		default:
			return fmt.Errorf("expected a CallbackFunc, got %T", v)
		}
		return nil
	},
}

// responseKeyOrder fixes the order response options are applied in, so
// that e.g. "json" cannot be overridden by a later "type".
var responseKeyOrder = []string{
	"body", "chunked", "content", "file", "header", "headers", "json", "set", "status", "type", "xml",
}

var responseSetters = map[string]responseSetter{
	"status": func(r *Response, v any) error {
		code, err := toInt(v)
		if err == nil {
			r.Status(code)
		}
		return err
	},
	"header": func(r *Response, v any) error {
		h, err := toStringMap(v)
		if err == nil {
			for _, k := range sortedKeys(h) {
				r.Header(k, h[k])
			}
		}
		return err
	},
	"headers": func(r *Response, v any) error {
		h, err := toStringMap(v)
		if err == nil {
			r.Headers(h)
		}
		return err
	},
	"set": func(r *Response, v any) error {
		h, err := toStringMap(v)
		if err == nil {
			for k, val := range h {
				r.Set(k, val)
			}
		}
		return err
	},
	"type":    func(r *Response, v any) error { return stringApply(v, func(s string) { r.Type(s) }) },
	"content": func(r *Response, v any) error { return stringApply(v, func(s string) { r.Content(s) }) },
	"body":    func(r *Response, v any) error { r.Body(v); return nil },
	"json":    func(r *Response, v any) error { r.JSON(normalize(v)); return nil },
	"xml":     func(r *Response, v any) error { r.XML(v); return nil },
	"file":    func(r *Response, v any) error { return stringApply(v, func(s string) { r.File(s) }) },
	"chunked": func(r *Response, v any) error {
		switch c := v.(type) {
		case []any:
			r.Chunked(c...)
		case []string:
			chunks := make([]any, len(c))
			for i, s := range c {
				chunks[i] = s
			}
			r.Chunked(chunks...)
		default:
			return fmt.Errorf("expected a list of chunks, got %T", v)
		}
		return nil
	},
}

var responsePrefix = regexp.MustCompile(`^(response|reply)_`)

// NewFromOptions creates a mock configured from opts.
func NewFromOptions(opts Options) (*Mock, error) {
	m := New()
	if err := m.Apply(opts); err != nil {
		return nil, err
	}
	return m, nil
}

// Apply configures the mock from opts. Mock options are applied in sorted
// key order, then response options in a fixed order. Unknown keys fail
// with an *InvalidArgumentError.
func (m *Mock) Apply(opts Options) error {
	var mockKeys, respKeys []string
	for key := range opts {
		if responsePrefix.MatchString(key) {
			respKeys = append(respKeys, key)
			continue
		}
		if _, ok := mockSetters[key]; !ok {
			return &InvalidArgumentError{Key: key}
		}
		mockKeys = append(mockKeys, key)
	}
	sort.Strings(mockKeys)
	sort.Slice(respKeys, func(i, j int) bool {
		return responseKeyRank(respKeys[i]) < responseKeyRank(respKeys[j])
	})

	for _, key := range mockKeys {
		if err := mockSetters[key](m, opts[key]); err != nil {
			return wrapArg(key, err)
		}
	}
	if len(respKeys) == 0 {
		return nil
	}
	resp := m.Response()
	if err := resp.Apply(respOptions(opts, respKeys)); err != nil {
		return err
	}
	return nil
}

// Apply configures the response from opts using the response option
// names without prefix ("status", "json", ...).
func (r *Response) Apply(opts Options) error {
	keys := make([]string, 0, len(opts))
	for key := range opts {
		if _, ok := responseSetters[key]; !ok {
			return &InvalidArgumentError{Key: key}
		}
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return responseKeyRank(keys[i]) < responseKeyRank(keys[j])
	})
	for _, key := range keys {
		if err := responseSetters[key](r, opts[key]); err != nil {
			return wrapArg(key, err)
		}
		if err := r.Err(); err != nil {
			return err
		}
	}
	return nil
}

func respOptions(opts Options, keys []string) Options {
	out := make(Options, len(keys))
	for _, key := range keys {
		out[responsePrefix.ReplaceAllString(key, "")] = opts[key]
	}
	return out
}

func responseKeyRank(key string) int {
	key = responsePrefix.ReplaceAllString(key, "")
	for i, k := range responseKeyOrder {
		if k == key {
			return i
		}
	}
	return len(responseKeyOrder)
}

func wrapArg(key string, err error) error {
	var argErr *InvalidArgumentError
	if errors.As(err, &argErr) {
		return err
	}
	return &InvalidArgumentError{Key: key, Err: err}
}

// built returns the first configuration error of m.
func built(m *Mock) error { return m.Err() }

func stringSetter(fn func(*Mock, string) *Mock) mockSetter {
	return func(m *Mock, v any) error {
		s, err := toString(v)
		if err != nil {
			return err
		}
		return built(fn(m, s))
	}
}

func stringApply(v any, fn func(string)) error {
	s, err := toString(v)
	if err == nil {
		fn(s)
	}
	return err
}

func toFilters(v any) ([]FilterFunc, error) {
	switch f := v.(type) {
	case FilterFunc:
		return []FilterFunc{f}, nil
	case func(*request.Request, *Mock) bool:
		return []FilterFunc{f}, nil
	case []FilterFunc:
		return f, nil
	}
	// Expression filters, as written in definition files.
	sources, err := toStrings(v)
	if err != nil {
		return nil, fmt.Errorf("expected a FilterFunc or expression, got %T", v)
	}
	filters := make([]FilterFunc, 0, len(sources))
	for _, src := range sources {
		e, err := matching.CompileExpr(src)
		if err != nil {
			return nil, err
		}
		filters = append(filters, func(req *request.Request, _ *Mock) bool {
			ok, err := e.Eval(req)
			return err == nil && ok
		})
	}
	return filters, nil
}

func toString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	case fmt.Stringer:
		return s.String(), nil
	default:
		return "", fmt.Errorf("expected a string, got %T", v)
	}
}

func toStrings(v any) ([]string, error) {
	switch s := v.(type) {
	case string:
		return []string{s}, nil
	case []string:
		return s, nil
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			str, err := toString(item)
			if err != nil {
				return nil, err
			}
			out = append(out, str)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a string or list of strings, got %T", v)
	}
}

func toStringMap(v any) (map[string]string, error) {
	switch h := v.(type) {
	case map[string]string:
		return h, nil
	case http.Header:
		out := make(map[string]string, len(h))
		for k := range h {
			out[k] = h.Get(k)
		}
		return out, nil
	}
	m, ok := toAnyMap(v)
	if !ok {
		return nil, fmt.Errorf("expected a map, got %T", v)
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		out[k] = fmt.Sprint(val)
	}
	return out, nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("expected an integer, got %v", n)
		}
		return int(n), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("expected an integer, got %q", n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case nil:
		return false, nil
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return false, fmt.Errorf("expected a boolean, got %q", b)
		}
		return parsed, nil
	default:
		return false, fmt.Errorf("expected a boolean, got %T", v)
	}
}

// toDuration accepts a time.Duration, a Go duration string or a number of
// milliseconds.
func toDuration(v any) (time.Duration, error) {
	switch d := v.(type) {
	case time.Duration:
		return d, nil
	case string:
		parsed, err := time.ParseDuration(d)
		if err != nil {
			return 0, fmt.Errorf("expected a duration, got %q", d)
		}
		return parsed, nil
	default:
		ms, err := toInt(v)
		if err != nil {
			return 0, fmt.Errorf("expected a duration, got %T", v)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
}

// normalize converts map[any]any values, as produced by some YAML
// decoders, into map[string]any recursively.
func normalize(v any) any {
	switch x := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}

func normalizeMap(v any) any {
	if _, ok := v.(map[any]any); ok {
		return normalize(v)
	}
	return v
}

func toAnyMap(v any) (map[string]any, bool) {
	switch m := normalizeMap(v).(type) {
	case map[string]any:
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
