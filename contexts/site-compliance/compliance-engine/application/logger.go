package application

import "log/slog"

const LogModule = "site-compliance/compliance-engine"

func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
