// Package helpers provides common utility functions used across the project.
package helpers

import (
	"os"
	"strconv"
	"strings"
)

// PtrOf creates a pointer to any value type.
//
// Useful for optional config fields.
//
// Example:
//
//	config.MaxTokens = helpers.PtrOf(8000)         // *int
//	config.Temperature = helpers.PtrOf(float32(0)) // *float32
func PtrOf[T any](t T) *T { return &t }

// IsEmpty checks if a string is empty or contains only whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// DefaultString returns the first non-empty string from the provided options.
//
// Example:
//
//	model := helpers.DefaultString(cfg.Model, "llama-3.3-70b-versatile")
func DefaultString(options ...string) string {
	for _, option := range options {
		if !IsEmpty(option) {
			return option
		}
	}
	return ""
}

// GetStringFromEnv returns the environment variable value or default if not set or empty.
//
// Example:
//
//	host := helpers.GetStringFromEnv("OLLAMA_HOST", "http://localhost:11434")
func GetStringFromEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetIntFromEnv returns the environment variable value as int or default
// if not set or invalid.
func GetIntFromEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetBoolFromEnv returns the environment variable value as bool or default
// if not set or invalid.
//
// Example:
//
//	routing := helpers.GetBoolFromEnv("AUTO_COMPLEXITY_ROUTING", true)
func GetBoolFromEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
