// Package validate checks that a written snapshot has the minimal shape
// consumers rely on.
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/morikuni/failure/v2"
	"github.com/samber/lo"
)

// DefaultPath is the snapshot checked when no path is given
const DefaultPath = "data/latest.json"

// OKMessage is printed when a snapshot passes
const OKMessage = "Feed looks OK."

// ErrorCode defines error types for validation
type ErrorCode string

const (
	// ErrMissingFile represents an absent snapshot file
	ErrMissingFile ErrorCode = "MissingFile"
	// ErrInvalidJSON represents a file that is not a JSON object
	ErrInvalidJSON ErrorCode = "InvalidJSON"
	// ErrMissingKey represents a required key that is absent
	ErrMissingKey ErrorCode = "MissingKey"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}

var (
	topLevelKeys = []string{"fpl", "_fetched_at_utc"}
	fplKeys      = []string{"bootstrap_static", "fixtures", "entry", "leagues"}
)

// Check returns nil when the snapshot at path has every required key. The
// returned error carries the line Run prints as its message.
func Check(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return failure.New(ErrMissingFile,
				failure.Message("Missing: "+path),
			)
		}
		return failure.New(ErrInvalidJSON,
			failure.Message(fmt.Sprintf("Invalid JSON: %s: %v", path, err)),
		)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(b, &doc); err != nil || doc == nil {
		if err == nil {
			err = errors.New("not an object")
		}
		return failure.New(ErrInvalidJSON,
			failure.Message(fmt.Sprintf("Invalid JSON: %s: %v", path, err)),
		)
	}

	if key, missing := firstMissing(doc, topLevelKeys); missing {
		return failure.New(ErrMissingKey,
			failure.Message("Missing top-level key: "+key),
			failure.Context{"path": path},
		)
	}

	// a non-object fpl section has none of the required keys
	var fpl map[string]json.RawMessage
	_ = json.Unmarshal(doc["fpl"], &fpl)
	if key, missing := firstMissing(fpl, fplKeys); missing {
		return failure.New(ErrMissingKey,
			failure.Message("Missing fpl key: "+key),
			failure.Context{"path": path},
		)
	}
	return nil
}

// Run checks the snapshot at path, prints exactly one line to w and returns
// the process exit status
func Run(path string, w io.Writer) int {
	if path == "" {
		path = DefaultPath
	}
	if err := Check(path); err != nil {
		fmt.Fprintln(w, Message(err))
		return 1
	}
	fmt.Fprintln(w, OKMessage)
	return 0
}

// Message returns the line printed for a failed check
func Message(err error) string {
	if fmsg := failure.MessageOf(err); fmsg != "" {
		return fmsg.String()
	}
	return err.Error()
}

func firstMissing(doc map[string]json.RawMessage, keys []string) (string, bool) {
	return lo.Find(keys, func(k string) bool {
		_, ok := doc[k]
		return !ok
	})
}
