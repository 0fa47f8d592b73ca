// Package snapshot assembles the feed document and writes it to disk.
package snapshot

import (
	"context"
	"time"

	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed/fpl"
	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed/odds"
	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed/optional"
	"github.com/henrikbykvist/fpl-feed-raakens-disipler/log"
)

const (
	// Note is written verbatim into every snapshot
	Note = "Public FPL feed for Raakens Disipler (Henrik). Some sections may be fallbacks with low confidence."

	// TimestampLayout is an ISO-8601 UTC instant with microseconds
	TimestampLayout = "2006-01-02T15:04:05.000000Z"
)

// Section names in document order
const (
	SectionFPL       = "fpl"
	SectionSetPieces = "set_pieces"
	SectionInjuries  = "injuries"
	SectionElite     = "elite"
	SectionOdds      = "odds"
	SectionFetchedAt = "_fetched_at_utc"
	SectionNote      = "_note"
)

// Sections lists every top-level key of a snapshot in document order
var Sections = []string{
	SectionFPL,
	SectionSetPieces,
	SectionInjuries,
	SectionElite,
	SectionOdds,
	SectionFetchedAt,
	SectionNote,
}

// Snapshot is the whole feed document. Field order is the key order on disk.
type Snapshot struct {
	FPL       fpl.Bundle       `json:"fpl"`
	SetPieces optional.Wrapper `json:"set_pieces"`
	Injuries  optional.Wrapper `json:"injuries"`
	Elite     optional.Wrapper `json:"elite"`
	Odds      odds.Block       `json:"odds"`
	FetchedAt string           `json:"_fetched_at_utc"`
	Note      string           `json:"_note"`
}

// PrimaryCollector produces the primary bundle
type PrimaryCollector interface {
	Collect(ctx context.Context) fpl.Bundle
}

// OptionalResolver produces one optional feed wrapper
type OptionalResolver interface {
	Resolve(ctx context.Context, f optional.Feed) optional.Wrapper
}

// OddsFetcher produces the odds block
type OddsFetcher interface {
	Fetch(ctx context.Context) odds.Block
}

// Sources are the collaborators of Collect
type Sources struct {
	Primary  PrimaryCollector
	Optional OptionalResolver
	Feeds    optional.Set
	Odds     OddsFetcher

	// Now defaults to time.Now
	Now func() time.Time
}

// Collect runs every stage in order: primary bundle, set pieces, injuries,
// elite, odds. The timestamp is taken after the last stage.
func Collect(ctx context.Context, src Sources) Snapshot {
	now := src.Now
	if now == nil {
		now = time.Now
	}

	var s Snapshot
	log.Info("Collecting primary feed")
	s.FPL = src.Primary.Collect(ctx)

	log.Info("Resolving optional feeds")
	s.SetPieces = src.Optional.Resolve(ctx, src.Feeds.SetPieces)
	s.Injuries = src.Optional.Resolve(ctx, src.Feeds.Injuries)
	s.Elite = src.Optional.Resolve(ctx, src.Feeds.Elite)

	log.Info("Fetching odds")
	s.Odds = src.Odds.Fetch(ctx)

	s.FetchedAt = FormatTimestamp(now())
	s.Note = Note
	return s
}

// FormatTimestamp renders t in UTC using TimestampLayout
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
