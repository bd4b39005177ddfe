package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed config.schema.json
var configSchemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func configSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("config.schema.json", configSchemaJSON)
	})
	return schema, schemaErr
}

// ValidateDocument проверяет YAML-документ по JSON-схеме конфигурации:
// неизвестные ключи и значения вне допустимых диапазонов отклоняются до разбора.
func ValidateDocument(data []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc == nil {
		return nil // пустой файл — все значения по умолчанию
	}

	// YAML → JSON, чтобы числа стали json.Number, как ожидает валидатор
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("конфигурация не представима в JSON: %w", err)
	}
	value, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return err
	}

	s, err := configSchema()
	if err != nil {
		return fmt.Errorf("схема конфигурации: %w", err)
	}
	return s.Validate(value)
}
