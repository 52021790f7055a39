package sl

import (
	"log/slog"
)

// Err wraps an error into a slog attribute under the "error" key.
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
