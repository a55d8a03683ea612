package definition

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/xeipuuv/gojsonschema"
)

// Schema is the JSON schema of a description document.
const Schema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["graphs"],
  "properties": {
    "graphs": {
      "type": "array",
      "minItems": 1,
      "items": { "$ref": "#/definitions/graph" }
    }
  },
  "definitions": {
    "id": { "type": "string", "minLength": 1 },
    "graph": {
      "type": "object",
      "required": ["nodes"],
      "properties": {
        "nodes": {
          "type": "array",
          "minItems": 1,
          "items": { "$ref": "#/definitions/node" }
        },
        "variables": {
          "type": ["array", "null"],
          "items": { "$ref": "#/definitions/variable" }
        },
        "connections": {
          "type": ["array", "null"],
          "items": { "$ref": "#/definitions/connection" }
        }
      }
    },
    "node": {
      "type": "object",
      "required": ["nodeId", "uniqueId"],
      "properties": {
        "nodeId": { "$ref": "#/definitions/id" },
        "uniqueId": { "$ref": "#/definitions/id" },
        "arguments": { "type": ["object", "null"] }
      }
    },
    "variable": {
      "type": "object",
      "required": ["name", "type"],
      "properties": {
        "name": { "$ref": "#/definitions/id" },
        "type": { "$ref": "#/definitions/id" }
      }
    },
    "connection": {
      "type": "object",
      "required": ["fromNode", "fromPin", "toNode", "toPin"],
      "properties": {
        "fromNode": { "$ref": "#/definitions/id" },
        "fromPin": { "$ref": "#/definitions/id" },
        "toNode": { "$ref": "#/definitions/id" },
        "toPin": { "$ref": "#/definitions/id" }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(Schema)

// ValidateSchemaBytes validates raw JSON or YAML input against Schema.
func ValidateSchemaBytes(data []byte) error {
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return validate(gojsonschema.NewBytesLoader(jsonData))
}

// ValidateSchema validates a decoded document against Schema.
func ValidateSchema(doc *Document) error {
	return validate(gojsonschema.NewGoLoader(doc))
}

func validate(documentLoader gojsonschema.JSONLoader) error {
	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
	}
	return nil
}
