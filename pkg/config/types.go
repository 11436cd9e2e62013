package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/getmockd/mockwire/pkg/mock"
)

// File is a loaded definition file with its includes resolved.
type File struct {
	// Path is the file the definitions were loaded from; empty for Parse.
	Path string

	Network NetworkConfig
	// Filters are expr-lang expressions; requests for which any is false
	// are not matched.
	Filters []string
	Mocks   []Entry
}

// NetworkConfig controls real networking for unmatched requests.
type NetworkConfig struct {
	Enabled bool     `yaml:"enabled" json:"enabled"`
	Hosts   []string `yaml:"hosts,omitempty" json:"hosts,omitempty"`
}

// Entry is one mock definition and where it came from.
type Entry struct {
	// Source is the file the entry was read from.
	Source string
	// Index is the position of the entry in its file.
	Index   int
	Options mock.Options
}

// Name returns the mock name, if the entry sets one.
func (e Entry) Name() string {
	name, _ := e.Options["name"].(string)
	return name
}

func (e Entry) String() string {
	source := e.Source
	if source == "" {
		source = "<input>"
	}
	if name := e.Name(); name != "" {
		return fmt.Sprintf("%s: mocks[%d] (%s)", source, e.Index, name)
	}
	return fmt.Sprintf("%s: mocks[%d]", source, e.Index)
}

// document is the on-disk layout of a definition file.
type document struct {
	Network *NetworkConfig   `yaml:"network,omitempty"`
	Filters []string         `yaml:"filters,omitempty"`
	Mocks   []map[string]any `yaml:"mocks,omitempty"`
}

// fileContent accepts a full document, a list of mocks or a single mock.
type fileContent struct {
	document
}

// UnmarshalYAML implements custom YAML unmarshaling to handle every
// supported layout.
func (c *fileContent) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		return node.Decode(&c.Mocks)
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping or a list of mocks", node.Line)
	}
	if isDocument(node) {
		return node.Decode(&c.document)
	}
	var single map[string]any
	if err := node.Decode(&single); err != nil {
		return err
	}
	c.Mocks = []map[string]any{single}
	return nil
}

// isDocument reports whether a mapping uses the top-level document keys.
func isDocument(node *yaml.Node) bool {
	for i := 0; i+1 < len(node.Content); i += 2 {
		switch node.Content[i].Value {
		case "mocks", "network", "filters":
			return true
		}
	}
	return false
}

// includeKey marks an entry that includes other files.
const includeKey = "file"

// includePattern returns the include path or glob of an entry holding only
// a "file" key.
func includePattern(raw map[string]any) (string, bool) {
	if len(raw) != 1 {
		return "", false
	}
	pattern, ok := raw[includeKey].(string)
	return pattern, ok
}
