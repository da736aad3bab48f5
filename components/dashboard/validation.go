package dashboard

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/config.schema.json
var configSchema []byte

const configSchemaName = "config.schema.json"

// ConfigValidator validates raw dashboard config documents.
type ConfigValidator interface {
	Validate(doc map[string]any) error
}

// JSONSchemaValidator compiles a schema once and validates config documents against it.
type JSONSchemaValidator struct {
	schema []byte

	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

// NewJSONSchemaValidator builds a validator for the embedded config schema.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return NewJSONSchemaValidatorFor(configSchema)
}

// NewJSONSchemaValidatorFor builds a validator for a custom schema document.
func NewJSONSchemaValidatorFor(schema []byte) *JSONSchemaValidator {
	return &JSONSchemaValidator{schema: schema}
}

// Validate ensures the document satisfies the schema.
func (v *JSONSchemaValidator) Validate(doc map[string]any) error {
	schema, err := v.compile()
	if err != nil {
		return err
	}
	payload := map[string]any{}
	if doc != nil {
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("dashboard: marshal config: %w", err)
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("dashboard: normalize config: %w", err)
		}
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("dashboard: config failed validation: %w", err)
	}
	return nil
}

func (v *JSONSchemaValidator) compile() (*jsonschema.Schema, error) {
	v.once.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(configSchemaName, bytes.NewReader(v.schema)); err != nil {
			v.err = fmt.Errorf("dashboard: load schema: %w", err)
			return
		}
		v.compiled, v.err = compiler.Compile(configSchemaName)
		if v.err != nil {
			v.err = fmt.Errorf("dashboard: compile schema: %w", v.err)
		}
	})
	return v.compiled, v.err
}
