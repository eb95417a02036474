package element

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// DecodeYAML decodes an authored tree (YAML or JSON, which YAML accepts)
// and returns it as compact wire JSON.
func DecodeYAML(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	doc, err := normalize(doc)
	if err != nil {
		return nil, err
	}
	if _, ok := doc.(map[string]any); !ok {
		return nil, fmt.Errorf("decode yaml: top level is %T, want mapping", doc)
	}
	return json.Marshal(doc)
}

// normalize converts YAML mappings with non-string keys into JSON objects.
func normalize(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			t[k] = n
		}
		return t, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(k)] = n
		}
		return out, nil
	case []any:
		for i, e := range t {
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			t[i] = n
		}
		return t, nil
	default:
		return v, nil
	}
}

// DecodeRaw decodes wire JSON into generic values, keeping numbers exact.
func DecodeRaw(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// StripNulls removes null-valued object members at every depth. Nulls
// inside arrays are kept.
func StripNulls(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			if e == nil {
				continue
			}
			out[k] = StripNulls(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = StripNulls(e)
		}
		return out
	default:
		return v
	}
}

// CompactJSON strips nulls from raw wire JSON and re-encodes it.
func CompactJSON(raw []byte) ([]byte, error) {
	v, err := DecodeRaw(raw)
	if err != nil {
		return nil, fmt.Errorf("compact: %w", err)
	}
	return json.Marshal(StripNulls(v))
}
