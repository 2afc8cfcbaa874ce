// Package config loads, validates, and normalizes reelsort configuration
// from TOML files, providing defaults when no file exists.
//
// Load resolves the config path (explicit flag, then the user config dir,
// then a project-local reelsort.toml), expands ~ in path fields, and
// validates everything in one pass so users see all problems at once.
package config
