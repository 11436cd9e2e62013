package cli

import (
	"strings"

	"github.com/getmockd/mockwire/pkg/config"
	"github.com/getmockd/mockwire/pkg/engine"
)

// loadDefinition loads a definition file, or every file matching a glob.
func loadDefinition(arg string) (*config.File, error) {
	if strings.ContainsAny(arg, "*?[{") {
		return config.LoadGlob(arg)
	}
	return config.Load(arg)
}

// loadEngine creates an engine holding the definitions of every file.
func loadEngine(paths []string, opts ...engine.Option) (*engine.Engine, error) {
	e := engine.New(opts...)
	for _, path := range paths {
		f, err := loadDefinition(path)
		if err != nil {
			return nil, err
		}
		if err := f.Apply(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}
