package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/bgscroll.schema.json
var bgScrollSchemaJSON string

const bgScrollSchemaURL = "bgscroll.schema.json"

var (
	bgScrollSchemaOnce sync.Once
	bgScrollSchema     *jsonschema.Schema
	bgScrollSchemaErr  error
)

func compiledBgScrollSchema() (*jsonschema.Schema, error) {
	bgScrollSchemaOnce.Do(func() {
		bgScrollSchema, bgScrollSchemaErr = jsonschema.CompileString(bgScrollSchemaURL, bgScrollSchemaJSON)
	})
	return bgScrollSchema, bgScrollSchemaErr
}

// ValidateBgScrollSchema 使用内嵌 JSON Schema 校验 YAML 配置结构
// 字段类型、必填项与未知字段在这里被拦截，数值间的关联约束由 validateBgScrollDocument 负责
func ValidateBgScrollSchema(data []byte) error {
	schema, err := compiledBgScrollSchema()
	if err != nil {
		return fmt.Errorf("failed to compile bg scroll schema: %w", err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse bg scroll config YAML: %w", err)
	}

	// YAML 节点需经过一次 JSON 往返，才能得到 Schema 校验器认识的类型
	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("bg scroll config is not representable as JSON: %w", err)
	}
	dec := json.NewDecoder(strings.NewReader(string(encoded)))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("failed to normalize bg scroll config: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("bg scroll config schema validation failed: %w", err)
	}
	return nil
}
