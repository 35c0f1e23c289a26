package expect

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// validateSchema validates body against a JSON Schema document and returns one
// message per violation. A broken schema or body is reported as an error.
func validateSchema(body, schema string) ([]string, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", strings.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	var doc interface{}
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	err = compiled.Validate(doc)
	if err == nil {
		return nil, nil
	}

	validationErr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return nil, err
	}
	return flatten(validationErr), nil
}

// flatten collects the leaf causes of a validation error
func flatten(err *jsonschema.ValidationError) []string {
	if len(err.Causes) == 0 {
		return []string{fmt.Sprintf("%s: %s", location(err.InstanceLocation), err.Message)}
	}

	var msgs []string
	for _, cause := range err.Causes {
		msgs = append(msgs, flatten(cause)...)
	}
	return msgs
}

func location(ptr string) string {
	if ptr == "" {
		return "/"
	}
	return ptr
}
