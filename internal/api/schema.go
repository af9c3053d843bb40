package api

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// bulkSchemaJSON mirrors the service-side validation rules for the bulk
// history insert, so a bad batch is caught before the network call.
const bulkSchemaJSON = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["quiz_id", "category_id", "is_correct", "answered_at"],
		"properties": {
			"quiz_id":     {"type": "integer", "minimum": 1},
			"category_id": {"type": "integer", "minimum": 1},
			"is_correct":  {"type": "boolean"},
			"answered_at": {
				"type": "string",
				"pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2} [0-9]{2}:[0-9]{2}:[0-9]{2}$"
			}
		}
	}
}`

var (
	bulkSchemaOnce sync.Once
	bulkSchema     *jsonschema.Schema
	bulkSchemaErr  error
)

func compiledBulkSchema() (*jsonschema.Schema, error) {
	bulkSchemaOnce.Do(func() {
		var def any
		if err := json.Unmarshal([]byte(bulkSchemaJSON), &def); err != nil {
			bulkSchemaErr = fmt.Errorf("parse bulk schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema://history_bulk.json", def); err != nil {
			bulkSchemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		bulkSchema, bulkSchemaErr = c.Compile("schema://history_bulk.json")
	})
	return bulkSchema, bulkSchemaErr
}

// validateBulkPayload checks the bulk batch against the service schema.
// The jsonschema library validates parsed JSON values, so the payload is
// round-tripped through encoding/json first.
func validateBulkPayload(payloads []HistoryPayload) error {
	schema, err := compiledBulkSchema()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(payloads)
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("parse batch: %w", err)
	}

	if err := schema.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
