package engine

import (
	"fmt"
	"slices"

	contractx "pieline/agent/contract"
)

// validateArgs checks an argument map against the tool's declared schema
// before the handler runs: required fields present, basic types correct,
// enums respected. Unknown extra arguments are tolerated.
func validateArgs(spec contractx.ToolSpec, args map[string]any) error {
	for name, param := range spec.Params {
		raw, present := args[name]
		if !present || raw == nil {
			if param.Required {
				return fmt.Errorf("missing required argument %q", name)
			}
			continue
		}
		if err := checkType(name, param, raw); err != nil {
			return err
		}
		if len(param.Enum) > 0 {
			s, _ := raw.(string)
			if !slices.Contains(param.Enum, s) {
				return fmt.Errorf("argument %q must be one of %v", name, param.Enum)
			}
		}
	}
	return nil
}

func checkType(name string, param contractx.ParamSpec, raw any) error {
	switch param.Type {
	case contractx.ParamString:
		if _, ok := raw.(string); !ok {
			return fmt.Errorf("argument %q must be a string", name)
		}
	case contractx.ParamNumber, contractx.ParamInteger:
		switch raw.(type) {
		case float64, int, int64:
		default:
			return fmt.Errorf("argument %q must be a number", name)
		}
	case contractx.ParamArray:
		if _, ok := raw.([]any); !ok {
			return fmt.Errorf("argument %q must be an array", name)
		}
	case contractx.ParamObject:
		if _, ok := raw.(map[string]any); !ok {
			return fmt.Errorf("argument %q must be an object", name)
		}
	}
	return nil
}
