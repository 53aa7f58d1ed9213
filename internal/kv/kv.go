// Package kv assembles flat configuration maps for the report sinks from
// environment variables, JSON documents and key=value flags.
package kv

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"strconv"
	"strings"
)

// Parse splits a key=value pair and infers the value type: integers, then
// floats, then the literals true and false, else the trimmed string.
func Parse(pair string) (string, any, error) {
	key, raw, ok := strings.Cut(pair, "=")
	if !ok {
		return "", nil, fmt.Errorf("invalid format, expected key=value: %s", pair)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", nil, fmt.Errorf("empty key in key=value pair")
	}
	return key, inferValue(strings.TrimSpace(raw)), nil
}

func inferValue(s string) any {
	// Integers first so "1" stays a number rather than a boolean.
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if s == "true" || s == "false" {
		return s == "true"
	}
	return s
}

// ParseJSON decodes a JSON object.
func ParseJSON(doc string) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(doc), &m); err != nil {
		return nil, fmt.Errorf("invalid JSON object: %w", err)
	}
	return m, nil
}

// ParseFile decodes a JSON object stored at path.
func ParseFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	m, err := ParseJSON(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// FromEnv collects PREFIX (a JSON object) and PREFIX_KEY=value variables from
// environ. Keys are lower-cased with the prefix removed. Individual variables
// win over the JSON object. Malformed JSON in PREFIX is ignored.
func FromEnv(prefix string, environ []string) map[string]any {
	out := make(map[string]any)
	named := prefix + "_"

	for _, entry := range environ {
		name, value, ok := strings.Cut(entry, "=")
		if !ok || name != prefix || value == "" {
			continue
		}
		if m, err := ParseJSON(value); err == nil {
			maps.Copy(out, m)
		}
	}
	for _, entry := range environ {
		name, value, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(name, named) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, named))
		if key == "" {
			continue
		}
		out[key] = inferValue(strings.TrimSpace(value))
	}
	return out
}

// Merge overlays the maps left to right; later maps win.
func Merge(layers ...map[string]any) map[string]any {
	out := make(map[string]any)
	for _, layer := range layers {
		maps.Copy(out, layer)
	}
	return out
}

// Sources names every place a sink configuration may come from.
type Sources struct {
	EnvPrefix string
	JSON      string
	KV        []string
	File      string

	// Environ defaults to os.Environ.
	Environ func() []string
}

// Build merges the sources with precedence env < file < JSON < key=value.
func Build(src Sources) (map[string]any, error) {
	var layers []map[string]any

	if src.EnvPrefix != "" {
		environ := src.Environ
		if environ == nil {
			environ = os.Environ
		}
		layers = append(layers, FromEnv(src.EnvPrefix, environ()))
	}

	if src.File != "" {
		m, err := ParseFile(src.File)
		if err != nil {
			return nil, err
		}
		layers = append(layers, m)
	}

	if src.JSON != "" {
		m, err := ParseJSON(src.JSON)
		if err != nil {
			return nil, err
		}
		layers = append(layers, m)
	}

	if len(src.KV) > 0 {
		pairs := make(map[string]any, len(src.KV))
		for _, pair := range src.KV {
			key, value, err := Parse(pair)
			if err != nil {
				return nil, err
			}
			pairs[key] = value
		}
		layers = append(layers, pairs)
	}

	return Merge(layers...), nil
}

// String returns m[key] when it is a non-empty string.
func String(m map[string]any, key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok && s != ""
}

// StringOr returns m[key] as a string, or def.
func StringOr(m map[string]any, key, def string) string {
	if s, ok := String(m, key); ok {
		return s
	}
	return def
}

// BoolOr accepts booleans and strconv.ParseBool strings.
func BoolOr(m map[string]any, key string, def bool) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// IntOr accepts ints and whole JSON numbers.
func IntOr(m map[string]any, key string, def int) int {
	switch v := m[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
