package snapshot

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed/fetch"
	"github.com/morikuni/failure/v2"
)

// ErrorCode defines error types for snapshot operations
type ErrorCode string

const (
	// ErrOutputWrite represents a failure to create the output directory or a file
	ErrOutputWrite ErrorCode = "OutputWrite"
	// ErrEncode represents a snapshot that could not be encoded
	ErrEncode ErrorCode = "Encode"
	// ErrInvalidSnapshot represents a file that is not a snapshot document
	ErrInvalidSnapshot ErrorCode = "InvalidSnapshot"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}

// File names inside the output directory
const (
	CompactFile = "latest.json"
	PrettyFile  = "latest.pretty.json"
)

// Paths are the files written by Write
type Paths struct {
	Compact string
	Pretty  string
}

// Write stores snap as a compact and an indented document in dir, creating
// dir when absent. Existing files are overwritten in place.
func Write(dir string, snap Snapshot) (Paths, error) {
	compact, err := fetch.MarshalUnescaped(snap)
	if err == nil {
		compact, err = fetch.Unescape(compact)
	}
	if err != nil {
		return Paths{}, failure.New(ErrEncode, failure.Message("failed to encode snapshot: "+err.Error()))
	}
	pretty, err := Indent(compact)
	if err != nil {
		return Paths{}, failure.New(ErrEncode, failure.Message("failed to indent snapshot: "+err.Error()))
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Paths{}, failure.New(ErrOutputWrite,
			failure.Message("failed to create output directory: "+err.Error()),
			failure.Context{"dir": dir},
		)
	}

	paths := Paths{
		Compact: filepath.Join(dir, CompactFile),
		Pretty:  filepath.Join(dir, PrettyFile),
	}
	files := []struct {
		path string
		body []byte
	}{
		{paths.Compact, compact},
		{paths.Pretty, pretty},
	}
	for _, f := range files {
		if err := os.WriteFile(f.path, f.body, 0o644); err != nil {
			return Paths{}, failure.New(ErrOutputWrite,
				failure.Message("failed to write snapshot: "+err.Error()),
				failure.Context{"path": f.path},
			)
		}
	}
	return paths, nil
}

// Indent re-encodes a compact document with two-space indentation and no
// trailing newline
func Indent(compact []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
