package imagecache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"
)

// Preprocess walks a decoded config and points every remote image node at
// its cached file by setting "localPath". Nodes that already carry
// "localPath" or "data" are left alone. It returns the number of nodes
// rewritten.
func (c *Cache) Preprocess(ctx context.Context, doc any) int {
	n := 0
	var walk func(v any)
	walk = func(v any) {
		switch t := v.(type) {
		case map[string]any:
			if t["type"] == "image" {
				url, _ := t["url"].(string)
				if url != "" && !hasString(t, "localPath") && !hasString(t, "data") {
					if path, ok := c.EnsureLocal(ctx, url, TTLOf(t, c.ttl)); ok {
						t["localPath"] = path
						n++
					}
				}
			}
			for _, e := range t {
				walk(e)
			}
		case []any:
			for _, e := range t {
				walk(e)
			}
		}
	}
	walk(doc)
	return n
}

func hasString(m map[string]any, key string) bool {
	s, ok := m[key].(string)
	return ok && s != ""
}

// TTLOf reads a node's cache TTL from "cacheTtlMs", then "cacheTtlSec",
// falling back to def.
func TTLOf(node map[string]any, def time.Duration) time.Duration {
	if ms, ok := number(node["cacheTtlMs"]); ok {
		return time.Duration(ms * float64(time.Millisecond))
	}
	if sec, ok := number(node["cacheTtlSec"]); ok {
		return time.Duration(sec * float64(time.Second))
	}
	return def
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	}
	return 0, false
}
