package cli

// ErrorCode defines error types for CLI operations
type ErrorCode string

const (
	InvalidLogLevel  ErrorCode = "InvalidLogLevel"
	ValidationFailed ErrorCode = "ValidationFailed"
	SnapshotUnread   ErrorCode = "SnapshotUnread"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}
