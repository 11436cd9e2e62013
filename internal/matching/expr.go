package matching

import (
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/getmockd/mockwire/pkg/request"
)

// Expr is a compiled boolean expression evaluated against a request.
//
// The environment exposes:
//
//	method   string             upper-case method
//	url      string             full URL
//	scheme   string
//	host     string             hostname without port
//	path     string
//	query    map[string]string  first value per parameter
//	headers  map[string]string  canonical names, values joined with ", "
//	body     string             decoded body text
//	json     any                decoded JSON body, nil when not JSON
type Expr struct {
	source  string
	program *vm.Program
}

var (
	programMu    sync.RWMutex
	programCache = make(map[string]*vm.Program)
)

// CompileExpr compiles source into a boolean request expression. Programs
// are cached by source text.
func CompileExpr(source string) (*Expr, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, invalidf("expression cannot be empty")
	}

	programMu.RLock()
	program, ok := programCache[source]
	programMu.RUnlock()
	if ok {
		return &Expr{source: source, program: program}, nil
	}

	program, err := expr.Compile(source, expr.Env(exprEnv{}), expr.AsBool())
	if err != nil {
		return nil, invalidf("compile %q: %v", source, err)
	}

	programMu.Lock()
	// Another goroutine may have compiled the same source meanwhile.
	if existing, ok := programCache[source]; ok {
		program = existing
	} else {
		programCache[source] = program
	}
	programMu.Unlock()

	return &Expr{source: source, program: program}, nil
}

// String returns the expression source.
func (e *Expr) String() string { return e.source }

// Eval runs the expression against req.
func (e *Expr) Eval(req *request.Request) (bool, error) {
	out, err := expr.Run(e.program, newExprEnv(req))
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", e.source, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

// exprEnv is the variable environment of request expressions.
type exprEnv struct {
	Method  string            `expr:"method"`
	URL     string            `expr:"url"`
	Scheme  string            `expr:"scheme"`
	Host    string            `expr:"host"`
	Path    string            `expr:"path"`
	Query   map[string]string `expr:"query"`
	Headers map[string]string `expr:"headers"`
	Body    string            `expr:"body"`
	JSON    any               `expr:"json"`
}

func newExprEnv(req *request.Request) exprEnv {
	env := exprEnv{
		Method:  req.Method,
		Path:    requestPath(req),
		Query:   make(map[string]string),
		Headers: make(map[string]string, len(req.Header)),
		Body:    req.Text(),
	}
	if req.URL != nil {
		env.URL = req.URL.String()
		env.Scheme = req.URL.Scheme
		env.Host = req.URL.Hostname()
	}
	for k, vs := range req.Query() {
		if len(vs) > 0 {
			env.Query[k] = vs[0]
		}
	}
	for k, vs := range req.Header {
		env.Headers[k] = strings.Join(vs, ", ")
	}
	if v, err := req.JSON(); err == nil {
		env.JSON = v
	}
	return env
}

// ExprMatcher matches requests for which an expression evaluates to true.
type ExprMatcher struct {
	base
	expr *Expr
}

// NewExpr compiles source into a matcher.
func NewExpr(source string, opts ...Option) (*ExprMatcher, error) {
	e, err := CompileExpr(source)
	if err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &ExprMatcher{
		base: base{name: "ExprMatcher", desc: e.source, negate: o.negate},
		expr: e,
	}, nil
}

// Match implements Matcher.
func (m *ExprMatcher) Match(req *request.Request) (bool, error) {
	ok, err := m.expr.Eval(req)
	if err != nil {
		return m.result(err)
	}
	if !ok {
		return m.result(fmt.Errorf("expression %q evaluated to false", m.expr.source))
	}
	return m.result(nil)
}

// FuncMatcher adapts a predicate into a Matcher.
type FuncMatcher struct {
	base
	fn func(*request.Request) (bool, error)
}

// NewFunc creates a matcher named name that calls fn.
func NewFunc(name string, fn func(*request.Request) (bool, error), opts ...Option) (*FuncMatcher, error) {
	if fn == nil {
		return nil, invalidf("matcher function cannot be nil")
	}
	if name == "" {
		name = "FuncMatcher"
	}
	o := buildOptions(opts)
	return &FuncMatcher{base: base{name: name, desc: "func", negate: o.negate}, fn: fn}, nil
}

// Match implements Matcher.
func (m *FuncMatcher) Match(req *request.Request) (bool, error) {
	ok, err := m.fn(req)
	if err == nil && !ok {
		err = fmt.Errorf("%s returned false", m.name)
	}
	return m.result(err)
}
