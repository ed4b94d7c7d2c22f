// Package centers maps mask centre identifiers to grid centre coordinates.
package centers

import (
	"fmt"
	"sort"
)

// Center is a grid centre in die units: X is the column, Y the row.
type Center struct {
	X int
	Y int
}

// UnknownCenterError is returned for an identifier not in the registry.
type UnknownCenterError struct {
	Key string
}

func (e *UnknownCenterError) Error() string {
	return fmt.Sprintf("unknown mask center %q", e.Key)
}

// builtin holds the centres of the masks the OWT station ships with.
var builtin = map[string]Center{
	"OWT-1":   {X: 12, Y: 12},
	"OWT-2":   {X: 16, Y: 16},
	"OWT-3":   {X: 10, Y: 11},
	"PCM-100": {X: 8, Y: 8},
	"PCM-150": {X: 14, Y: 14},
	"TEG-50":  {X: 5, Y: 5},
}

// Registry resolves centre identifiers. The zero value is empty.
type Registry struct {
	entries map[string]Center
}

// Default returns a registry holding the built-in centres.
func Default() *Registry {
	return New(nil)
}

// New returns a registry with the built-in centres, overridden or extended
// by overrides.
func New(overrides map[string]Center) *Registry {
	entries := make(map[string]Center, len(builtin)+len(overrides))
	for k, v := range builtin {
		entries[k] = v
	}
	for k, v := range overrides {
		entries[k] = v
	}
	return &Registry{entries: entries}
}

// Resolve looks up key after stripping one leading and one trailing quote
// character, the form the value takes in mask files.
func (r *Registry) Resolve(key string) (Center, error) {
	name := Unquote(key)
	c, ok := r.entries[name]
	if !ok {
		return Center{}, &UnknownCenterError{Key: name}
	}
	return c, nil
}

// Keys returns the registered identifiers sorted.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Unquote strips a single leading and trailing quote character.
func Unquote(s string) string {
	if len(s) > 0 && (s[0] == '"' || s[0] == '\'') {
		s = s[1:]
	}
	if len(s) > 0 && (s[len(s)-1] == '"' || s[len(s)-1] == '\'') {
		s = s[:len(s)-1]
	}
	return s
}
