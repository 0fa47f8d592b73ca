// Package optional resolves the auxiliary feeds (set pieces, injuries and
// elite highlights) from a remote URL, a local file, or a built-in default.
package optional

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed/config"
	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed/fetch"
	"github.com/henrikbykvist/fpl-feed-raakens-disipler/log"
)

// Source tells where the data of a Wrapper came from
type Source string

const (
	SourceRemote        Source = "remote"
	SourceFallbackLocal Source = "fallback_local"
)

// Confidence is a coarse label attached to a Wrapper
type Confidence string

const (
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Feed describes one optional feed
type Feed struct {
	// Name is the snapshot key, e.g. "set_pieces"
	Name string

	// URL is the remote location. Empty means local only.
	URL string

	// RelPath is the local fallback file relative to the repository root
	RelPath string

	// Default is used when the local file is missing or unusable
	Default json.RawMessage
}

// Set is the three optional feeds in collection order
type Set struct {
	SetPieces Feed
	Injuries  Feed
	Elite     Feed
}

// Feeds returns the optional feeds with remote URLs taken from extras
func Feeds(extras config.Extras) Set {
	return Set{
		SetPieces: Feed{
			Name:    "set_pieces",
			URL:     extras.SetPiecesURL,
			RelPath: filepath.Join("extras", "setpieces.json"),
			Default: json.RawMessage(`{"penalties":[],"corners":[],"direct_freekicks":[]}`),
		},
		Injuries: Feed{
			Name:    "injuries",
			URL:     extras.InjuriesURL,
			RelPath: filepath.Join("extras", "injuries.json"),
			Default: json.RawMessage(`{"players":[]}`),
		},
		Elite: Feed{
			Name:    "elite",
			URL:     extras.EliteFeedsURL,
			RelPath: filepath.Join("extras", "elite_feeds.json"),
			Default: json.RawMessage(`{"highlights":[]}`),
		},
	}
}

// Wrapper is the snapshot form of an optional feed
type Wrapper struct {
	Source     Source          `json:"source"`
	Confidence Confidence      `json:"confidence"`
	Data       json.RawMessage `json:"data"`
}

// Getter is the part of fetch.Client the resolver needs
type Getter interface {
	Get(ctx context.Context, req fetch.Request) fetch.Result
}

// Recorder is notified of the source chosen for every feed
type Recorder interface {
	RecordSource(feed, source string)
}

// Option configures a Resolver
type Option func(*Resolver)

// WithRecorder registers rec to receive resolved sources
func WithRecorder(rec Recorder) Option {
	return func(r *Resolver) {
		r.recorder = rec
	}
}

// Resolver picks remote data when available and falls back to local files
type Resolver struct {
	client   Getter
	root     string
	recorder Recorder
}

// NewResolver creates a Resolver reading local files below root
func NewResolver(client Getter, root string, opts ...Option) *Resolver {
	r := &Resolver{
		client: client,
		root:   root,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the remote document when the URL is set and the fetch
// succeeds. Otherwise it returns the local file, or the default when the
// file cannot be used. Remote and local data are never merged.
func (r *Resolver) Resolve(ctx context.Context, f Feed) Wrapper {
	if u := strings.TrimSpace(f.URL); u != "" {
		res := r.client.Get(ctx, fetch.Request{
			Name: "optional." + f.Name,
			URL:  u,
		})
		switch {
		case !res.OK():
			log.Warn("Optional feed fetch failed, using local fallback", "feed", f.Name, "error", fetch.Message(res.Err))
		case res.IsNull():
			log.Warn("Optional feed returned null, using local fallback", "feed", f.Name)
		default:
			return r.wrap(f, Wrapper{
				Source:     SourceRemote,
				Confidence: ConfidenceMedium,
				Data:       res.Value,
			})
		}
	}

	path := filepath.Join(r.root, f.RelPath)
	data, err := fetch.ReadLocalJSON(path)
	if err != nil {
		log.Debug("Local feed unusable, using default", "feed", f.Name, "path", path, "error", fetch.Message(err))
		data = f.Default
	}
	return r.wrap(f, Wrapper{
		Source:     SourceFallbackLocal,
		Confidence: ConfidenceLow,
		Data:       data,
	})
}

func (r *Resolver) wrap(f Feed, w Wrapper) Wrapper {
	if r.recorder != nil {
		r.recorder.RecordSource(f.Name, string(w.Source))
	}
	return w
}
