// Package odds fetches betting odds from The Odds API and trims them to a
// small per-match shape.
package odds

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed/config"
	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed/fetch"
	"github.com/henrikbykvist/fpl-feed-raakens-disipler/log"
	"github.com/mitchellh/mapstructure"
	"github.com/morikuni/failure/v2"
)

const (
	// ReasonDisabled is reported when odds are disabled or no API key is set
	ReasonDisabled = "missing_api_key_or_disabled"
	// ReasonUnsupportedPrefix is followed by the configured provider name
	ReasonUnsupportedPrefix = "provider_not_supported:"
)

// ErrUnexpectedShape represents an odds body that is not a list of match objects
const ErrUnexpectedShape fetch.ErrorCode = "UnexpectedShape"

// Block is the odds section of a snapshot
type Block struct {
	Enabled  bool   `json:"enabled"`
	Reason   string `json:"reason,omitempty"`
	Provider string `json:"provider,omitempty"`
	SportKey string `json:"sport_key,omitempty"`
	Error    string `json:"error,omitempty"`

	// Matches is nil unless the fetch succeeded
	Matches []Match `json:"matches,omitzero"`
}

// MarshalJSON always writes sport_key on a successful block, even when empty
func (b Block) MarshalJSON() ([]byte, error) {
	type plain Block
	if b.Matches == nil {
		return fetch.MarshalUnescaped(plain(b))
	}
	return fetch.MarshalUnescaped(struct {
		Enabled  bool    `json:"enabled"`
		Provider string  `json:"provider"`
		SportKey string  `json:"sport_key"`
		Matches  []Match `json:"matches"`
	}{b.Enabled, b.Provider, b.SportKey, b.Matches})
}

// Match keeps the identifying fields of one event and its first bookmaker.
// Absent fields are written as null.
type Match struct {
	ID           any   `mapstructure:"id" json:"id"`
	CommenceTime any   `mapstructure:"commence_time" json:"commence_time"`
	HomeTeam     any   `mapstructure:"home_team" json:"home_team"`
	AwayTeam     any   `mapstructure:"away_team" json:"away_team"`
	Bookmakers   []any `mapstructure:"bookmakers" json:"bookmakers"`
}

// Getter is the part of fetch.Client the odds fetcher needs
type Getter interface {
	Get(ctx context.Context, req fetch.Request) fetch.Result
}

// Fetcher fetches odds according to the odds configuration
type Fetcher struct {
	client Getter
	cfg    config.Odds
}

// NewFetcher creates a Fetcher for cfg
func NewFetcher(client Getter, cfg config.Odds) *Fetcher {
	return &Fetcher{
		client: client,
		cfg:    cfg,
	}
}

// Fetch returns a disabled block unless odds are enabled, an API key is
// present and the provider is supported. Otherwise it performs one request.
func (f *Fetcher) Fetch(ctx context.Context) Block {
	provider := f.cfg.Provider
	if !f.cfg.Enabled || strings.TrimSpace(f.cfg.APIKey) == "" {
		log.Info("Odds disabled", "reason", ReasonDisabled)
		return Block{Enabled: false, Reason: ReasonDisabled}
	}
	if !strings.EqualFold(provider, config.DefaultOddsProvider) {
		log.Warn("Odds provider not supported", "provider", provider)
		return Block{Enabled: false, Reason: ReasonUnsupportedPrefix + provider}
	}

	r := f.client.Get(ctx, fetch.Request{
		Name: "odds",
		URL:  f.URL(),
	})
	if !r.OK() {
		log.Warn("Odds fetch failed", "provider", provider, "error", fetch.Message(r.Err))
		return Block{Enabled: true, Provider: provider, Error: fetch.Message(r.Err)}
	}

	matches, err := Trim(r.Value)
	if err != nil {
		log.Warn("Odds response has unexpected shape", "provider", provider, "error", fetch.Message(err))
		return Block{Enabled: true, Provider: provider, Error: fetch.Message(err)}
	}
	return Block{
		Enabled:  true,
		Provider: provider,
		SportKey: f.cfg.SportKey,
		Matches:  matches,
	}
}

// URL builds the odds request URL including the API key
func (f *Fetcher) URL() string {
	return fmt.Sprintf("%s/sports/%s/odds?regions=%s&markets=%s&oddsFormat=decimal&apiKey=%s",
		strings.TrimRight(f.cfg.APIBase, "/"),
		url.PathEscape(f.cfg.SportKey),
		url.QueryEscape(f.cfg.Regions),
		url.QueryEscape(f.cfg.Markets),
		url.QueryEscape(strings.TrimSpace(f.cfg.APIKey)),
	)
}

// Trim projects a list of match objects to Match, keeping only the first
// bookmaker of each to bound output size
func Trim(body json.RawMessage) ([]Match, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, failure.New(ErrUnexpectedShape,
			failure.Message("unexpected odds response: "+err.Error()),
		)
	}

	matches := make([]Match, 0, len(raw))
	for i, m := range raw {
		var match Match
		if err := mapstructure.Decode(m, &match); err != nil {
			return nil, failure.New(ErrUnexpectedShape,
				failure.Message(fmt.Sprintf("unexpected odds match at index %d: %v", i, err)),
			)
		}
		match.Bookmakers = firstOnly(match.Bookmakers)
		matches = append(matches, match)
	}
	return matches, nil
}

func firstOnly(bookmakers []any) []any {
	if len(bookmakers) == 0 {
		return []any{}
	}
	return bookmakers[:1]
}
