package testcase

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// GetJSONSchema returns the JSON schema the front matter must satisfy.
func GetJSONSchema() string {
	return `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"additionalProperties": false,
		"properties": {
			"tags": { "$ref": "#/definitions/strings" },
			"estimate": { "type": "string" },
			"components": { "$ref": "#/definitions/strings" },
			"automation": { "$ref": "#/definitions/strings" },
			"automation_jiras": { "$ref": "#/definitions/strings" },
			"require": { "$ref": "#/definitions/strings" },
			"targets": { "$ref": "#/definitions/strings" },
			"environments": { "$ref": "#/definitions/strings" },
			"products": {
				"type": "array",
				"items": { "$ref": "#/definitions/product" }
			},
			"variants": {
				"type": "array",
				"items": { "type": "object" }
			},
			"vars": { "type": "object" }
		},
		"definitions": {
			"strings": {
				"type": "array",
				"items": { "type": "string" }
			},
			"product": {
				"type": "object",
				"required": ["name"],
				"additionalProperties": false,
				"properties": {
					"name": { "type": "string", "minLength": 1 },
					"targets": { "$ref": "#/definitions/strings" },
					"environments": { "$ref": "#/definitions/strings" }
				}
			}
		}
	}`
}

var schemaLoader = gojsonschema.NewStringLoader(GetJSONSchema())

// ValidateFrontMatter checks raw front matter against the schema and
// returns one message per problem.
func ValidateFrontMatter(raw map[string]interface{}) ([]string, error) {
	if raw == nil {
		raw = map[string]interface{}{}
	}

	jsonData, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal to JSON: %w", err)
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to validate schema: %w", err)
	}

	var problems []string
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return problems, nil
}
