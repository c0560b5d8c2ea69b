package schema

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"beconforms/internal/model"

	"github.com/hashicorp/golang-lru/v2/expirable"
	js "github.com/santhosh-tekuri/jsonschema/v5"
)

// Validator checks submission payloads against the JSON Schema derived from
// a form definition. Compiled schemas are cached per definition revision.
// The compiler mutates internal state on AddResource/Compile, so cache
// misses are serialized; hits stay lock-free through the LRU.
type Validator struct {
	mu       sync.Mutex
	compiler *js.Compiler
	cache    *expirable.LRU[string, *js.Schema]
}

// NewValidator creates a validator with a compile cache of maxSize entries.
func NewValidator(maxSize int) *Validator {
	c := js.NewCompiler()
	c.ExtractAnnotations = true

	return &Validator{
		compiler: c,
		cache:    expirable.NewLRU[string, *js.Schema](maxSize, nil, time.Hour),
	}
}

// ValidateResponse validates a submitted data map against the shape the
// definition implies. Required-field presence is checked separately by the
// service so the failure can name the field label; this guards value shapes
// and option membership.
func (v *Validator) ValidateResponse(ctx context.Context, def *model.FormDefinition, data map[string]interface{}) error {
	compiled, err := v.compiled(def)
	if err != nil {
		return err
	}

	// round-trip through JSON so typed answers become plain interface values
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	if err := compiled.Validate(value); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

func (v *Validator) compiled(def *model.FormDefinition) (*js.Schema, error) {
	key := def.ID + "@" + def.UpdatedAt
	if s, ok := v.cache.Get(key); ok {
		return s, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	// another submission may have compiled this revision while we waited
	if s, ok := v.cache.Get(key); ok {
		return s, nil
	}

	derived := Derive(def)
	schemaBytes, err := json.Marshal(derived)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	resourceURL := fmt.Sprintf("mem://forms/%s.json", key)
	if err := v.compiler.AddResource(resourceURL, bytes.NewReader(schemaBytes)); err != nil {
		return nil, fmt.Errorf("failed to add resource: %w", err)
	}

	compiled, err := v.compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	v.cache.Add(key, compiled)
	return compiled, nil
}

// Derive builds the JSON Schema a form definition implies: scalar fields are
// strings, checkbox fields are string arrays, and option-carrying fields
// only accept their declared options (or empty, meaning unanswered).
func Derive(def *model.FormDefinition) map[string]interface{} {
	properties := make(map[string]interface{}, len(def.Fields))
	for _, f := range def.Fields {
		properties[f.ID] = fieldSchema(f)
	}
	return map[string]interface{}{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
}

func fieldSchema(f model.FormField) map[string]interface{} {
	if f.Type.Multi() {
		items := map[string]interface{}{"type": "string"}
		if len(f.Options) > 0 {
			items["enum"] = toAny(f.Options)
		}
		return map[string]interface{}{
			"type":  "array",
			"items": items,
		}
	}

	s := map[string]interface{}{"type": "string"}
	if f.Type.HasOptions() && len(f.Options) > 0 {
		// empty string stands for unanswered
		s["enum"] = append([]interface{}{""}, toAny(f.Options)...)
	}
	return s
}

func toAny(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
