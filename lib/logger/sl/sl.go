// Package sl содержит небольшие хелперы для структурированного логгера slog.
package sl

import "log/slog"

// Err оборачивает ошибку в стандартный атрибут "error",
// чтобы все ошибки в логах имели одинаковый ключ.
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
