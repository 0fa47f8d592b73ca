// Package fpl collects the primary Fantasy Premier League feed bundle.
package fpl

import (
	"context"
	"strconv"
	"strings"

	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed/config"
	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed/fetch"
	"github.com/henrikbykvist/fpl-feed-raakens-disipler/log"
)

// Bundle holds the four primary sub-results. A failed fetch serializes as {"_error": "..."}.
type Bundle struct {
	BootstrapStatic fetch.Result `json:"bootstrap_static"`
	Fixtures        fetch.Result `json:"fixtures"`
	Entry           fetch.Result `json:"entry"`

	// Leagues is keyed by the decimal form of the league id
	Leagues map[string]fetch.Result `json:"leagues"`
}

// Getter is the part of fetch.Client the collector needs
type Getter interface {
	Get(ctx context.Context, req fetch.Request) fetch.Result
}

// Collector fetches the primary bundle from one provider
type Collector struct {
	client Getter
	cfg    *config.Config
}

// NewCollector creates a Collector for cfg
func NewCollector(client Getter, cfg *config.Config) *Collector {
	return &Collector{
		client: client,
		cfg:    cfg,
	}
}

// Collect fetches bootstrap, fixtures, entry and every configured league in
// that order. A failure in one fetch never stops the others.
func (c *Collector) Collect(ctx context.Context) Bundle {
	ep := c.cfg.Endpoints
	managerID := strconv.FormatInt(c.cfg.ManagerID, 10)

	b := Bundle{
		Leagues: make(map[string]fetch.Result, len(c.cfg.LeagueIDs)),
	}
	b.BootstrapStatic = c.get(ctx, "fpl.bootstrap_static", ep.BootstrapStatic)
	b.Fixtures = c.get(ctx, "fpl.fixtures", ep.Fixtures)
	b.Entry = c.get(ctx, "fpl.entry", expand(ep.Entry, "{manager_id}", managerID))

	for _, id := range c.cfg.LeagueIDs {
		key := strconv.FormatInt(id, 10)
		b.Leagues[key] = c.get(ctx, "fpl.league", expand(ep.League, "{league_id}", key))
	}
	return b
}

func (c *Collector) get(ctx context.Context, name, path string) fetch.Result {
	r := c.client.Get(ctx, fetch.Request{
		Name: name,
		URL:  URL(c.cfg.BaseURL, path),
	})
	if !r.OK() {
		log.Warn("Primary feed fetch failed", "name", name, "path", path, "error", fetch.Message(r.Err))
	}
	return r
}

// URL joins base and path, dropping trailing slashes from base
func URL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}

func expand(template, placeholder, value string) string {
	return strings.ReplaceAll(template, placeholder, value)
}
