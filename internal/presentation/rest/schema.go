package rest

import (
	"embed"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// requestSchemas holds the compiled request body schemas, keyed by file name
// without extension.
type requestSchemas map[string]*gojsonschema.Schema

func loadSchemas() (requestSchemas, error) {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("read schemas: %w", err)
	}
	out := make(requestSchemas, len(entries))
	for _, e := range entries {
		raw, err := schemaFS.ReadFile("schemas/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", e.Name(), err)
		}
		s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", e.Name(), err)
		}
		out[e.Name()[:len(e.Name())-len(".json")]] = s
	}
	return out, nil
}

// check validates body against the named schema. The returned messages are
// suitable for a 400 response; err is set only when body is not JSON.
func (s requestSchemas) check(name string, body []byte) ([]string, error) {
	schema, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("no schema named %q", name)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, fmt.Errorf("malformed JSON: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}
	msgs := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		msgs[i] = desc.String()
	}
	return msgs, nil
}
