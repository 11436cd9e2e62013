package engine

import "sync/atomic"

var defaultEngine atomic.Pointer[Engine]

// Default returns the process-wide engine, creating it on first use.
func Default() *Engine {
	if e := defaultEngine.Load(); e != nil {
		return e
	}
	defaultEngine.CompareAndSwap(nil, New())
	return defaultEngine.Load()
}

// SetDefault replaces the process-wide engine.
func SetDefault(e *Engine) {
	if e == nil {
		e = New()
	}
	defaultEngine.Store(e)
}

// Use makes e the process-wide engine and returns a function restoring the
// previous one:
//
//	defer engine.Use(engine.New())()
func Use(e *Engine) (restore func()) {
	if e == nil {
		e = New()
	}
	prev := defaultEngine.Swap(e)
	return func() {
		defaultEngine.CompareAndSwap(e, prev)
	}
}
