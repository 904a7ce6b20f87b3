// Package config defines the application configuration structure and
// loads it from environment variables (EDITORIAL_ prefix) and an optional
// config file, validating the result before the server starts.
package config
