package matching

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/getmockd/mockwire/pkg/request"
)

// JSONSchemaMatcher validates the request body against a JSON Schema.
// A body that fails validation is a non-match, never an error.
type JSONSchemaMatcher struct {
	base
	schema *jsonschema.Schema
}

// NewJSONSchema compiles schema, given as a JSON string, []byte or a value
// that encodes to a JSON Schema document.
func NewJSONSchema(schema any, opts ...Option) (*JSONSchemaMatcher, error) {
	var data []byte
	switch s := schema.(type) {
	case nil:
		return nil, invalidf("JSON schema cannot be empty")
	case string:
		data = []byte(s)
	case []byte:
		data = s
	default:
		var err error
		data, err = json.Marshal(s)
		if err != nil {
			return nil, invalidf("cannot encode JSON schema: %v", err)
		}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, invalidf("JSON schema cannot be empty")
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.ExtractAnnotations = true
	if err := compiler.AddResource("schema.json", bytes.NewReader(data)); err != nil {
		return nil, invalidf("failed to add schema resource: %v", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, invalidf("failed to compile schema: %v", err)
	}

	o := buildOptions(opts)
	return &JSONSchemaMatcher{
		base:   base{name: "JSONSchemaMatcher", desc: describeSchema(compiled), negate: o.negate},
		schema: compiled,
	}, nil
}

// Match implements Matcher.
func (m *JSONSchemaMatcher) Match(req *request.Request) (bool, error) {
	body, err := req.JSON()
	if err != nil {
		return m.result(err)
	}
	if err := m.schema.Validate(body); err != nil {
		return m.result(schemaError(err))
	}
	return m.result(nil)
}

func schemaError(err error) error {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	var msgs []string
	collectCauses(verr, &msgs)
	if len(msgs) == 0 {
		msgs = append(msgs, verr.Message)
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
}

func collectCauses(verr *jsonschema.ValidationError, msgs *[]string) {
	if len(verr.Causes) == 0 {
		loc := verr.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*msgs = append(*msgs, fmt.Sprintf("%s: %s", loc, verr.Message))
		return
	}
	for _, cause := range verr.Causes {
		collectCauses(cause, msgs)
	}
}

func describeSchema(s *jsonschema.Schema) string {
	if s.Title != "" {
		return s.Title
	}
	return "schema"
}
