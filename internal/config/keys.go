package config

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Key is one settable leaf of config.yaml.
type Key struct {
	Path string // dot-separated, e.g. "providers.perplexity.model"
	Type string // "string", "int", "bool", "[]string"
}

var configType = reflect.TypeOf(Config{})

// ParseConfigPath splits raw on dots and resolves it against the Config
// schema. Sections ("logging") and leaves ("logging.level") both resolve.
func ParseConfigPath(raw string) ([]string, error) {
	if raw == "" {
		return nil, &ConfigError{Message: "empty config path"}
	}
	parts := strings.Split(raw, ".")
	if slices.Contains(parts, "") {
		return nil, &ConfigError{Message: fmt.Sprintf("config path %q has an empty segment", raw)}
	}
	if _, err := resolveKey(parts); err != nil {
		return nil, err
	}
	return parts, nil
}

// CoerceValue converts a command-line string into the type the schema
// declares for path. List values are comma-separated.
func CoerceValue(path []string, s string) (any, error) {
	t, err := resolveKey(path)
	if err != nil {
		return nil, err
	}
	key := strings.Join(path, ".")
	switch t.Kind() {
	case reflect.String:
		return s, nil
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, &ConfigError{Message: fmt.Sprintf("%s expects an integer, got %q", key, s)}
		}
		return int(n), nil
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(s)))
		if err != nil {
			return nil, &ConfigError{Message: fmt.Sprintf("%s expects true or false, got %q", key, s)}
		}
		return b, nil
	case reflect.Slice:
		var out []any
		for _, item := range strings.Split(s, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out, nil
	case reflect.Struct:
		return nil, &ConfigError{Message: fmt.Sprintf("%s is a section; set one of its keys", key)}
	}
	return nil, &ConfigError{Message: fmt.Sprintf("%s cannot be set from the command line", key)}
}

// Keys lists every leaf key in schema order.
func Keys() []Key {
	var keys []Key
	var walk func(t reflect.Type, prefix string)
	walk = func(t reflect.Type, prefix string) {
		for i := range t.NumField() {
			f := t.Field(i)
			name := yamlName(f)
			if name == "" {
				continue
			}
			ft := deref(f.Type)
			if ft.Kind() == reflect.Struct {
				walk(ft, prefix+name+".")
				continue
			}
			keys = append(keys, Key{Path: prefix + name, Type: ft.String()})
		}
	}
	walk(configType, "")
	return keys
}

// resolveKey returns the type declared at path.
func resolveKey(path []string) (reflect.Type, error) {
	t := configType
	for i, seg := range path {
		if t.Kind() != reflect.Struct {
			return nil, &ConfigError{Message: fmt.Sprintf("%s is a value, not a section", strings.Join(path[:i], "."))}
		}
		f, ok := fieldByYAMLName(t, seg)
		if !ok {
			return nil, &ConfigError{Message: fmt.Sprintf("unknown config key %q", strings.Join(path[:i+1], "."))}
		}
		t = deref(f.Type)
	}
	return t, nil
}

func fieldByYAMLName(t reflect.Type, name string) (reflect.StructField, bool) {
	for i := range t.NumField() {
		if f := t.Field(i); yamlName(f) == name {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

func yamlName(f reflect.StructField) string {
	if !f.IsExported() {
		return ""
	}
	name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
	if name == "-" {
		return ""
	}
	return name
}

func deref(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}
