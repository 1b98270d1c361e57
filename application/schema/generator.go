// Package schema generates JSON Schema documents for request types.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/budget-tools/rateconv/domain/entities"
	"github.com/budget-tools/rateconv/domain/errors"
)

// GenerateSchema creates a JSON schema (Draft 2020-12) from a Go struct.
func GenerateSchema(v any) ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct:            true, // Expand struct definitions inline
		DoNotReference:            true,
		AllowAdditionalProperties: false,
	}
	schema := reflector.Reflect(v)

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, &errors.SchemaError{Type: fmt.Sprintf("%T", v), Err: err}
	}

	return jsonBytes, nil
}

// RateRequestSchema returns the schema of entities.RateRequest.
func RateRequestSchema() ([]byte, error) {
	return GenerateSchema(&entities.RateRequest{})
}
