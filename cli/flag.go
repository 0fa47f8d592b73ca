package cli

import (
	"log/slog"
	"strings"

	"github.com/morikuni/failure/v2"
	"github.com/spf13/pflag"
)

type logLevelFlag struct {
	IsSet bool
	Value slog.Level
}

// String implements pflag.Value.
func (f *logLevelFlag) String() string {
	if !f.IsSet {
		return ""
	}
	return strings.ToLower(f.Value.String())
}

func (f *logLevelFlag) Set(value string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(value)); err != nil {
		return failure.New(InvalidLogLevel,
			failure.Message("log level must be one of debug, info, warn, error"),
			failure.Context{"value": value},
		)
	}
	f.Value = l
	f.IsSet = true
	return nil
}

func (f *logLevelFlag) Type() string {
	return "level"
}

var _ pflag.Value = &logLevelFlag{}
