// Package config loads the framepipe TOML configuration file.
//
// Load starts from Default, decodes the file on top of it, normalizes
// string values and durations, and validates the result. Unknown keys are
// rejected so a typo does not silently fall back to a default.
package config
