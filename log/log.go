package log

import (
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/motemen/go-loghttp"
)

// EnvDebug enables debug logging when set to any non-empty value
const EnvDebug = "FPLFEED_DEBUG"

// Logger is the global logger instance
var Logger *slog.Logger

// level is shared by every handler InitLogger creates so SetLevel applies at once
var level = new(slog.LevelVar)

// secretParams are query parameters masked before a URL is logged
var secretParams = []string{"apiKey", "api_key", "token"}

// InitLogger initializes the global logger on stderr.
// It sets the log level to Debug if FPLFEED_DEBUG is set
func InitLogger() {
	level.Set(slog.LevelInfo)
	if os.Getenv(EnvDebug) != "" {
		level.Set(slog.LevelDebug)
	}

	Logger = slog.New(newHandler(os.Stderr, isatty.IsTerminal(os.Stderr.Fd())))
	slog.SetDefault(Logger)

	loghttp.DefaultTransport.LogRequest = func(req *http.Request) {
		Debug("HTTP request",
			"method", req.Method,
			"url", RedactURL(req.URL),
			"headers", req.Header,
		)
	}

	loghttp.DefaultTransport.LogResponse = func(resp *http.Response) {
		Debug("HTTP response",
			"method", resp.Request.Method,
			"url", RedactURL(resp.Request.URL),
			"status", resp.Status,
			"status_code", resp.StatusCode,
		)
	}
}

// newHandler picks a human readable handler for terminals and JSON otherwise
func newHandler(w io.Writer, terminal bool) slog.Handler {
	opts := &slog.HandlerOptions{
		AddSource: false,
		Level:     level,
	}
	if terminal {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// init initializes the logger when the package is imported
func init() {
	InitLogger()
}

// SetLevel changes the level of the global logger
func SetLevel(l slog.Level) {
	level.Set(l)
}

// Transport returns the logging round tripper used for outgoing requests
func Transport() http.RoundTripper {
	return loghttp.DefaultTransport
}

// RedactURL renders u with secret query parameters masked
func RedactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	q := u.Query()
	masked := false
	for _, p := range secretParams {
		if q.Has(p) {
			q.Set(p, "REDACTED")
			masked = true
		}
	}
	if !masked {
		return u.String()
	}
	c := *u
	c.RawQuery = q.Encode()
	return c.String()
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// With adds attributes to every subsequent log record, e.g. a run id
func With(args ...any) {
	Logger = Logger.With(args...)
	slog.SetDefault(Logger)
}
