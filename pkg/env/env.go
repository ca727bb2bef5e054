// Package env reads process environment variables with defaults. Typed
// configuration lives in pkg/config; this covers the few lookups needed
// before the config layer is up.
package env

import "os"

// Get returns the variable's value, or fallback when unset or empty.
func Get(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
