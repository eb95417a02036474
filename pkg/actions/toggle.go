package actions

import (
	"encoding/json"
	"fmt"

	"github.com/go-drift/widgetkit/pkg/element"
)

// Toggle flips every checkbox in a serialized config whose action equals
// action, and reports whether anything changed. It works on the generic
// JSON value so unknown fields survive untouched.
//
// A list item is a checkbox when it has "checked" or "isOn". The current
// state is checked, else isOn, else false. The flipped value is written to
// "checked" (unless only "isOn" is present) and to "isOn" when present.
// Only list items are mutated; a toggle element's action is queued like any
// other tap.
func Toggle(raw []byte, action string) ([]byte, bool, error) {
	if action == "" {
		return raw, false, nil
	}
	doc, err := element.DecodeRaw(raw)
	if err != nil {
		return raw, false, fmt.Errorf("toggle: %w", err)
	}
	root, ok := doc.(map[string]any)
	if !ok {
		return raw, false, fmt.Errorf("toggle: top level is %T, want object", doc)
	}
	changed := false
	for _, f := range element.Families {
		if el, ok := root[f.String()].(map[string]any); ok {
			changed = toggleIn(el, action) || changed
		}
	}
	if !changed {
		return raw, false, nil
	}
	out, err := json.Marshal(root)
	if err != nil {
		return raw, false, fmt.Errorf("toggle: %w", err)
	}
	return out, true, nil
}

func toggleIn(el map[string]any, action string) bool {
	changed := false
	if el["type"] == "list" {
		items, _ := el["items"].([]any)
		for _, it := range items {
			item, ok := it.(map[string]any)
			if !ok || item["action"] != action {
				continue
			}
			changed = flip(item) || changed
		}
	}
	if children, ok := el["children"].([]any); ok {
		for _, c := range children {
			if child, ok := c.(map[string]any); ok {
				changed = toggleIn(child, action) || changed
			}
		}
	}
	return changed
}

func flip(item map[string]any) bool {
	_, hasChecked := item["checked"]
	_, hasIsOn := item["isOn"]
	if !hasChecked && !hasIsOn {
		return false
	}
	current := false
	if b, ok := item["checked"].(bool); ok {
		current = b
	} else if b, ok := item["isOn"].(bool); ok {
		current = b
	}
	next := !current
	if hasChecked || !hasIsOn {
		item["checked"] = next
	}
	if hasIsOn {
		item["isOn"] = next
	}
	return true
}
