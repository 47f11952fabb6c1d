// Package config provides configuration management for Verdict.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention VERDICT_SECTION_FIELD.
// For example:
//
//   - VERDICT_DEFINITIONS_PATH overrides definitions.path
//   - VERDICT_AUDIT_BACKEND overrides audit.backend
//   - VERDICT_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides
// earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
// For application-wide configuration access, use the singleton pattern:
//
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//	cfg := config.GetConfig()
//
// For testing, prefer dependency injection with explicit Config instances.
package config
