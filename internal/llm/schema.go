package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Prishashn/Hrextractor/constants"
)

// BuildProfileJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. We pass it to the backend as a structured-output constraint
// and also use it locally to validate.
func BuildProfileJSONSchema() map[string]any {
	props := make(map[string]any, len(constants.ProfileFieldKeys))
	required := make([]string, 0, len(constants.ProfileFieldKeys))
	for _, k := range constants.ProfileFieldKeys {
		props[k] = map[string]any{"type": "string", "minLength": 1}
		required = append(required, k)
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
