package tools

import (
	"fmt"
	"strings"
)

// validateArgs checks arguments against a tool's declared object schema:
// required fields must be present and each supplied field's value must
// match its declared JSON type. Unknown fields are rejected so a model
// hallucinating a parameter fails loudly instead of being silently
// ignored.
func validateArgs(schema, args map[string]any) error {
	props, _ := schema["properties"].(map[string]any)

	for _, name := range requiredFields(schema) {
		if _, ok := args[name]; !ok {
			return fmt.Errorf("missing required argument %q", name)
		}
	}

	for name, value := range args {
		rawProp, ok := props[name]
		if !ok {
			return fmt.Errorf("unknown argument %q", name)
		}
		prop, _ := rawProp.(map[string]any)
		declared, _ := prop["type"].(string)
		if declared == "" {
			continue
		}
		if err := checkType(name, declared, value); err != nil {
			return err
		}
	}
	return nil
}

func requiredFields(schema map[string]any) []string {
	switch v := schema["required"].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func checkType(name, declared string, value any) error {
	ok := false
	switch declared {
	case "string":
		_, ok = value.(string)
	case "number":
		switch value.(type) {
		case float64, int:
			ok = true
		}
	case "integer":
		switch v := value.(type) {
		case int:
			ok = true
		case float64:
			ok = v == float64(int64(v))
		}
	case "boolean":
		_, ok = value.(bool)
	case "array":
		_, ok = value.([]any)
	case "object":
		_, ok = value.(map[string]any)
	default:
		return nil
	}
	if !ok {
		return fmt.Errorf("argument %q must be %s %s", name, article(declared), declared)
	}
	return nil
}

func article(word string) string {
	if strings.ContainsRune("aeiou", rune(word[0])) {
		return "an"
	}
	return "a"
}
