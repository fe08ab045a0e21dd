// Package logging builds the structured slog loggers used by the framepipe
// command. Library packages never build their own logger; they accept a
// *slog.Logger option and default to discarding output.
package logging
