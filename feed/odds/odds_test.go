package odds

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed/config"
	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed/fetch"
	"github.com/morikuni/failure/v2"
)

// panicGetter fails the test if any request is attempted
type panicGetter struct {
	t *testing.T
}

func (g panicGetter) Get(ctx context.Context, req fetch.Request) fetch.Result {
	g.t.Fatalf("unexpected request to %s", req.URL)
	return fetch.Result{}
}

var sortStrings = cmpopts.SortSlices(func(a, b string) bool { return a < b })

func oddsConfig(base string) config.Odds {
	return config.Odds{
		Enabled:  true,
		Provider: config.DefaultOddsProvider,
		SportKey: config.DefaultSportKey,
		Regions:  config.DefaultRegions,
		Markets:  config.DefaultMarkets,
		APIKey:   "key-123",
		APIBase:  base,
	}
}

func TestFetchDisabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  func(config.Odds) config.Odds
		want Block
	}{
		{
			name: "disabled in config with API key present",
			cfg: func(c config.Odds) config.Odds {
				c.Enabled = false
				return c
			},
			want: Block{Enabled: false, Reason: "missing_api_key_or_disabled"},
		},
		{
			name: "enabled without API key",
			cfg: func(c config.Odds) config.Odds {
				c.APIKey = ""
				return c
			},
			want: Block{Enabled: false, Reason: "missing_api_key_or_disabled"},
		},
		{
			name: "whitespace API key",
			cfg: func(c config.Odds) config.Odds {
				c.APIKey = "  \t"
				return c
			},
			want: Block{Enabled: false, Reason: "missing_api_key_or_disabled"},
		},
		{
			name: "disabled with unsupported provider",
			cfg: func(c config.Odds) config.Odds {
				c.Enabled = false
				c.Provider = "OTHER_PROVIDER"
				return c
			},
			want: Block{Enabled: false, Reason: "missing_api_key_or_disabled"},
		},
		{
			name: "unsupported provider",
			cfg: func(c config.Odds) config.Odds {
				c.Provider = "OTHER_PROVIDER"
				return c
			},
			want: Block{Enabled: false, Reason: "provider_not_supported:OTHER_PROVIDER"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFetcher(panicGetter{t}, tt.cfg(oddsConfig("http://unused")))
			got := f.Fetch(context.Background())
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Fetch() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFetchFileAPIKeyOnly(t *testing.T) {
	t.Setenv(config.EnvOddsAPIKey, "")
	cfg, err := config.Load(filepath.Join("..", "config", "testdata", "file_api_key.json"))
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}

	got := NewFetcher(panicGetter{t}, cfg.Odds).Fetch(context.Background())
	if diff := cmp.Diff(Block{Enabled: false, Reason: ReasonDisabled}, got); diff != "" {
		t.Errorf("Fetch() mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchDisabledJSON(t *testing.T) {
	cfg := oddsConfig("http://unused")
	cfg.Provider = "OTHER_PROVIDER"
	b, err := json.Marshal(NewFetcher(panicGetter{t}, cfg).Fetch(context.Background()))
	if err != nil {
		t.Fatal(err)
	}
	want := `{"enabled":false,"reason":"provider_not_supported:OTHER_PROVIDER"}`
	if diff := cmp.Diff(want, string(b)); diff != "" {
		t.Errorf("disabled block JSON mismatch (-want +got):\n%s", diff)
	}
}

func TestFetch(t *testing.T) {
	body, err := os.ReadFile(filepath.Join("testdata", "odds.json"))
	if err != nil {
		t.Fatal(err)
	}

	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write(body)
	}))
	defer srv.Close()

	cfg := oddsConfig(srv.URL + "/v4/")
	cfg.Provider = "the_odds_api"
	got := NewFetcher(fetch.New(), cfg).Fetch(context.Background())

	if gotPath != "/v4/sports/soccer_epl/odds" {
		t.Errorf("request path = %q", gotPath)
	}
	if want := "regions=eu&markets=h2h%2Ctotals&oddsFormat=decimal&apiKey=key-123"; gotQuery != want {
		t.Errorf("request query = %q, want %q", gotQuery, want)
	}

	if !got.Enabled || got.Provider != "the_odds_api" || got.SportKey != "soccer_epl" || got.Error != "" {
		t.Fatalf("Fetch() = %+v, want enabled success block", got)
	}
	if len(got.Matches) != 2 {
		t.Fatalf("len(Matches) = %d, want 2", len(got.Matches))
	}
	if n := len(got.Matches[0].Bookmakers); n != 1 {
		t.Errorf("len(Matches[0].Bookmakers) = %d, want 1", n)
	}
	first, _ := got.Matches[0].Bookmakers[0].(map[string]any)
	if first["key"] != "unibet_eu" {
		t.Errorf("kept bookmaker = %v, want the first one (unibet_eu)", first["key"])
	}
	if got.Matches[1].Bookmakers == nil || len(got.Matches[1].Bookmakers) != 0 {
		t.Errorf("Matches[1].Bookmakers = %v, want empty list", got.Matches[1].Bookmakers)
	}

	b, err := json.Marshal(got)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Matches []map[string]any `json:"matches"`
	}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	wantKeys := []string{"away_team", "bookmakers", "commence_time", "home_team", "id"}
	for i, m := range decoded.Matches {
		var keys []string
		for k := range m {
			keys = append(keys, k)
		}
		if diff := cmp.Diff(wantKeys, keys, sortStrings); diff != "" {
			t.Errorf("match %d keys mismatch (-want +got):\n%s", i, diff)
		}
	}
	if decoded.Matches[1]["home_team"] != "Liverpool" {
		t.Errorf("home_team = %v", decoded.Matches[1]["home_team"])
	}
}

func TestFetchEmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	b, err := json.Marshal(NewFetcher(fetch.New(), oddsConfig(srv.URL)).Fetch(context.Background()))
	if err != nil {
		t.Fatal(err)
	}
	want := `{"enabled":true,"provider":"THE_ODDS_API","sport_key":"soccer_epl","matches":[]}`
	if diff := cmp.Diff(want, string(b)); diff != "" {
		t.Errorf("empty odds JSON mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchEmptySportKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	cfg := oddsConfig(srv.URL)
	cfg.SportKey = ""
	b, err := json.Marshal(NewFetcher(fetch.New(), cfg).Fetch(context.Background()))
	if err != nil {
		t.Fatal(err)
	}
	want := `{"enabled":true,"provider":"THE_ODDS_API","sport_key":"","matches":[]}`
	if diff := cmp.Diff(want, string(b)); diff != "" {
		t.Errorf("odds JSON mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		wantError string
	}{
		{
			name: "quota exhausted",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"message":"Usage quota has been reached"}`, http.StatusUnauthorized)
			},
			wantError: "HTTP Error 401: Unauthorized",
		},
		{
			name: "object instead of list",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"message":"unknown sport"}`))
			},
		},
		{
			name: "list of scalars",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[1, 2]`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			got := NewFetcher(fetch.New(), oddsConfig(srv.URL)).Fetch(context.Background())
			if !got.Enabled || got.Provider != config.DefaultOddsProvider {
				t.Errorf("Fetch() = %+v, want enabled block with provider", got)
			}
			if got.Error == "" {
				t.Fatalf("Fetch() error is empty")
			}
			if tt.wantError != "" && got.Error != tt.wantError {
				t.Errorf("Fetch() error = %q, want %q", got.Error, tt.wantError)
			}
			if got.Matches != nil {
				t.Errorf("Fetch() matches = %v, want nil", got.Matches)
			}
		})
	}
}

func TestTrim(t *testing.T) {
	got, err := Trim(json.RawMessage(`[{"id":"x","bookmakers":[{"key":"a"},{"key":"b"}],"extra":true}]`))
	if err != nil {
		t.Fatalf("Trim() error = %v", err)
	}
	want := []Match{{
		ID:         "x",
		Bookmakers: []any{map[string]any{"key": "a"}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Trim() mismatch (-want +got):\n%s", diff)
	}

	if _, err := Trim(json.RawMessage(`"nope"`)); !failure.Is(err, ErrUnexpectedShape) {
		t.Errorf("Trim() error = %v, want %v", err, ErrUnexpectedShape)
	}
}
