package api

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const itemSchemaDoc = `{
  "$id": "tada://item.json",
  "type": "object",
  "required": ["id"],
  "properties": {
    "id": {"type": "integer", "minimum": 1},
    "content": {"type": "string"},
    "isCompleted": {"type": "boolean"}
  }
}`

const itemListSchemaDoc = `{
  "$id": "tada://items.json",
  "type": "array",
  "items": {"$ref": "tada://item.json"}
}`

var (
	itemSchema     *jsonschema.Schema
	itemListSchema *jsonschema.Schema
)

func init() {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("tada://item.json", strings.NewReader(itemSchemaDoc)); err != nil {
		panic(err)
	}
	if err := compiler.AddResource("tada://items.json", strings.NewReader(itemListSchemaDoc)); err != nil {
		panic(err)
	}
	itemSchema = compiler.MustCompile("tada://item.json")
	itemListSchema = compiler.MustCompile("tada://items.json")
}

// ValidationError reports a backend payload that does not look like todo
// items (missing or non-integer id, wrong field types, not JSON).
type ValidationError struct {
	Op  string
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid payload: %v", e.Op, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// validate checks raw against schema, then decodes it into out.
func validate(op string, schema *jsonschema.Schema, raw []byte, out any) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return &ValidationError{Op: op, Err: err}
	}
	if err := schema.Validate(doc); err != nil {
		return &ValidationError{Op: op, Err: err}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ValidationError{Op: op, Err: err}
	}
	return nil
}
