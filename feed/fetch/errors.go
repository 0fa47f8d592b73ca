package fetch

import "github.com/morikuni/failure/v2"

// ErrorCode defines error types for fetch operations
type ErrorCode string

const (
	// ErrInvalidRequest represents a URL that could not be turned into a request
	ErrInvalidRequest ErrorCode = "InvalidRequest"
	// ErrTransport represents network, timeout and body read failures
	ErrTransport ErrorCode = "Transport"
	// ErrHTTPStatus represents a non-2xx response
	ErrHTTPStatus ErrorCode = "HTTPStatus"
	// ErrDecode represents a body that is not valid JSON
	ErrDecode ErrorCode = "Decode"
	// ErrLocalFile represents a missing or unusable local JSON file
	ErrLocalFile ErrorCode = "LocalFile"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}

var codes = []ErrorCode{ErrInvalidRequest, ErrTransport, ErrHTTPStatus, ErrDecode, ErrLocalFile}

// Message returns the text that is stored in a snapshot for err
func Message(err error) string {
	if err == nil {
		return ""
	}
	if fmsg := failure.MessageOf(err); fmsg != "" {
		return fmsg.String()
	}
	return err.Error()
}

// Classify returns the error code name of err, "ok" for nil and "unknown" otherwise
func Classify(err error) string {
	if err == nil {
		return "ok"
	}
	for _, c := range codes {
		if failure.Is(err, c) {
			return c.ErrorCode()
		}
	}
	return "unknown"
}
