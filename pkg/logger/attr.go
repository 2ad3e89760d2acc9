package logger

import "log/slog"

// Attribute helpers keep field names consistent across the codebase so that
// log aggregation queries don't have to account for spelling drift.

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}

func UserID(id string) slog.Attr {
	return slog.String("user_id", id)
}

func Email(email string) slog.Attr {
	return slog.String("email", email)
}

func IP(addr string) slog.Attr {
	return slog.String("ip", addr)
}

func Provider(name string) slog.Attr {
	return slog.String("provider", name)
}
