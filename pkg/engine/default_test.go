package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault_IsStable(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestUse_RestoresPrevious(t *testing.T) {
	before := Default()
	isolated := New()

	restore := Use(isolated)
	assert.Same(t, isolated, Default())

	restore()
	assert.Same(t, before, Default())
}

func TestUse_Nested(t *testing.T) {
	before := Default()
	outer, inner := New(), New()

	restoreOuter := Use(outer)
	restoreInner := Use(inner)
	assert.Same(t, inner, Default())
	restoreInner()
	assert.Same(t, outer, Default())
	restoreOuter()
	assert.Same(t, before, Default())
}

func TestUse_NilCreatesEngine(t *testing.T) {
	before := Default()
	restore := Use(nil)
	defer restore()
	assert.NotSame(t, before, Default())
	assert.Empty(t, Default().Mocks())
}

func TestSetDefault(t *testing.T) {
	before := Default()
	defer SetDefault(before)

	e := New()
	SetDefault(e)
	assert.Same(t, e, Default())

	SetDefault(nil)
	assert.NotSame(t, e, Default())
}

func TestDefault_ConcurrentFirstUse(t *testing.T) {
	var wg sync.WaitGroup
	got := make([]*Engine, 16)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = Default()
		}()
	}
	wg.Wait()
	for _, e := range got {
		assert.Same(t, got[0], e)
	}
}
