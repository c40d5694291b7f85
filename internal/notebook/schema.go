package notebook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

const documentSchemaURL = "https://photon.local/schemas/notebook.json"

// documentSchemaJSON describes the subset of the notebook format the client
// depends on: a top-level cells array whose entries carry a source that is
// either a string or a list of strings.
const documentSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://photon.local/schemas/notebook.json",
  "type": "object",
  "required": ["cells"],
  "properties": {
    "cells": {
      "type": "array",
      "items": { "$ref": "#/$defs/cell" }
    }
  },
  "$defs": {
    "cell": {
      "type": "object",
      "required": ["source"],
      "properties": {
        "cell_type": { "type": "string" },
        "source": {
          "anyOf": [
            { "type": "string" },
            { "type": "array", "items": { "type": "string" } }
          ]
        }
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	documentSchema *jsonschema.Schema
	schemaErr      error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(documentSchemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("unmarshal notebook schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(documentSchemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add notebook schema resource: %w", err)
			return
		}
		documentSchema, schemaErr = c.Compile(documentSchemaURL)
	})
	return documentSchema, schemaErr
}

// validateDocument checks doc against the notebook schema. doc is re-encoded
// first so numbers reach the validator as json.Number.
func validateDocument(doc map[string]any) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return sch.Validate(inst)
}
