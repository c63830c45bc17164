// Package env reads process environment values for the few settings that
// are resolved before the config layer loads.
package env

import (
	"os"
	"strings"
)

// Get returns the trimmed value of key, or fallback when the variable is
// unset or blank.
func Get(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	if value = strings.TrimSpace(value); value == "" {
		return fallback
	}
	return value
}
