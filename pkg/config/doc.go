// Package config loads mock definition files.
//
// A definition file is YAML (JSON is accepted too) describing mocks as
// option maps, the engine filters and whether unmatched requests may reach
// the real network:
//
//	network:
//	  enabled: true
//	  hosts: [api.example.com]
//	filters:
//	  - 'method != "OPTIONS"'
//	mocks:
//	  - name: ip
//	    url: http://x.com/ip
//	    method: GET
//	    times: 2
//	    reply: 404
//	    response_json: {error: not found}
//	  - file: more/**/*.yaml
//
// Mock keys are the names accepted by mock.Options. An entry holding only
// a "file" key includes other files; the value is a path or a glob with **
// support, resolved against the including file's directory. Included files
// contain a full document, a list of mocks, or a single mock.
//
// ${VAR} and ${VAR:-default} references are expanded from the environment
// before parsing.
//
//	f, err := config.Load("mocks.yaml")
//	if err != nil {
//		return err
//	}
//	if err := f.Apply(engine.Default()); err != nil {
//		return err
//	}
package config
