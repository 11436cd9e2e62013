package config

import (
	"errors"
	"fmt"

	"github.com/getmockd/mockwire/internal/matching"
	"github.com/getmockd/mockwire/pkg/engine"
	"github.com/getmockd/mockwire/pkg/mock"
)

// Build creates the mocks described by f, stopping at the first invalid
// entry.
func (f *File) Build() ([]*mock.Mock, error) {
	mocks := make([]*mock.Mock, 0, len(f.Mocks))
	for _, entry := range f.Mocks {
		m, err := entry.Build()
		if err != nil {
			return nil, err
		}
		mocks = append(mocks, m)
	}
	return mocks, nil
}

// Build creates the mock described by e.
func (e Entry) Build() (*mock.Mock, error) {
	m, err := mock.NewFromOptions(e.Options)
	if err == nil {
		err = m.Err()
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e, err)
	}
	return m, nil
}

// Validate checks every mock and filter, reporting all problems.
func (f *File) Validate() error {
	var errs []error
	for i, src := range f.Filters {
		if _, err := matching.CompileExpr(src); err != nil {
			errs = append(errs, fmt.Errorf("%s: filters[%d]: %w", displayName(f.Path), i, err))
		}
	}
	for _, entry := range f.Mocks {
		if _, err := entry.Build(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Apply registers the definitions with e. Nothing is registered when any
// definition is invalid.
func (f *File) Apply(e *engine.Engine) error {
	mocks, err := f.Build()
	if err != nil {
		return err
	}
	for i, src := range f.Filters {
		if _, err := matching.CompileExpr(src); err != nil {
			return fmt.Errorf("%s: filters[%d]: %w", displayName(f.Path), i, err)
		}
	}

	for _, src := range f.Filters {
		if err := e.FilterExpr(src); err != nil {
			return err
		}
	}
	if f.Network.Enabled {
		e.EnableNetwork(f.Network.Hosts...)
	}
	e.Add(mocks...)
	return nil
}
