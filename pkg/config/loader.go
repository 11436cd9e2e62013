package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/mockwire/pkg/mock"
)

// maxIncludeDepth bounds nested includes, which also stops include cycles.
const maxIncludeDepth = 8

// ErrEmptyFile is returned for files without content.
var ErrEmptyFile = errors.New("file is empty")

// Load reads a definition file and the files it includes.
func Load(path string) (*File, error) {
	f := &File{Path: path}
	if err := f.load(path, 0); err != nil {
		return nil, err
	}
	return f, nil
}

// LoadGlob loads every file matching pattern, in lexical order, into one
// File. ** matches any number of directories.
func LoadGlob(pattern string) (*File, error) {
	matches, err := expandGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("expanding glob pattern: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match %s", pattern)
	}

	f := &File{Path: pattern}
	for _, match := range matches {
		if err := f.load(match, 0); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Parse reads definitions from data. Includes are resolved against the
// working directory.
func Parse(data []byte) (*File, error) {
	f := &File{}
	if err := f.parse(data, "", ".", 0); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) load(path string, depth int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", path)
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return f.parse(data, path, filepath.Dir(path), depth)
}

func (f *File) parse(data []byte, source, baseDir string, depth int) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		if source == "" {
			return ErrEmptyFile
		}
		return fmt.Errorf("%w: %s", ErrEmptyFile, source)
	}

	var content fileContent
	if err := yaml.Unmarshal([]byte(ExpandEnvVars(string(data))), &content); err != nil {
		return fmt.Errorf("parsing %s: %w", displayName(source), err)
	}

	if content.Network != nil {
		f.Network.Enabled = f.Network.Enabled || content.Network.Enabled
		f.Network.Hosts = append(f.Network.Hosts, content.Network.Hosts...)
	}
	f.Filters = append(f.Filters, content.Filters...)

	for i, raw := range content.Mocks {
		pattern, ok := includePattern(raw)
		if !ok {
			f.Mocks = append(f.Mocks, Entry{Source: source, Index: i, Options: mock.Options(raw)})
			continue
		}
		if depth >= maxIncludeDepth {
			return fmt.Errorf("%s: mocks[%d]: includes nested deeper than %d", displayName(source), i, maxIncludeDepth)
		}
		if err := f.include(ResolvePath(baseDir, pattern), depth+1); err != nil {
			return fmt.Errorf("%s: mocks[%d] (file: %s): %w", displayName(source), i, pattern, err)
		}
	}
	return nil
}

// include loads a path or every file matching a glob.
func (f *File) include(pattern string, depth int) error {
	if !isGlob(pattern) {
		return f.load(pattern, depth)
	}
	matches, err := expandGlob(pattern)
	if err != nil {
		return fmt.Errorf("expanding glob pattern: %w", err)
	}
	for _, match := range matches {
		if err := f.load(match, depth); err != nil {
			return err
		}
	}
	return nil
}

func isGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// expandGlob returns the files matching pattern in lexical order.
func expandGlob(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

func displayName(source string) string {
	if source == "" {
		return "<input>"
	}
	return source
}
