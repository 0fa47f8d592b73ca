package optional

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed/config"
	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed/fetch"
)

type recorded struct {
	feed, source string
}

type recorder struct {
	calls []recorded
}

func (r *recorder) RecordSource(feed, source string) {
	r.calls = append(r.calls, recorded{feed, source})
}

func writeLocal(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func marshal(t *testing.T, w Wrapper) string {
	t.Helper()
	b, err := fetch.MarshalUnescaped(w)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestResolve(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/setpieces.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"penalties":[{"team":"ARS","taker":"Saka"}],"corners":[],"direct_freekicks":[]}`))
	})
	mux.HandleFunc("/null.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	})
	mux.HandleFunc("/broken.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"players":[`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tests := []struct {
		name   string
		feed   func(Set) Feed
		url    string
		local  string
		want   string
		source string
	}{
		{
			name:   "remote wins over local file",
			feed:   func(s Set) Feed { return s.SetPieces },
			url:    srv.URL + "/setpieces.json",
			local:  `{"penalties":["local"],"corners":[],"direct_freekicks":[]}`,
			want:   `{"source":"remote","confidence":"medium","data":{"penalties":[{"team":"ARS","taker":"Saka"}],"corners":[],"direct_freekicks":[]}}`,
			source: "remote",
		},
		{
			name:   "remote 404 falls back to local file",
			feed:   func(s Set) Feed { return s.Injuries },
			url:    srv.URL + "/missing.json",
			local:  `{"players":[{"name":"Ødegaard","status":"doubtful"}]}`,
			want:   `{"source":"fallback_local","confidence":"low","data":{"players":[{"name":"Ødegaard","status":"doubtful"}]}}`,
			source: "fallback_local",
		},
		{
			name:   "remote invalid JSON falls back to default",
			feed:   func(s Set) Feed { return s.Injuries },
			url:    srv.URL + "/broken.json",
			want:   `{"source":"fallback_local","confidence":"low","data":{"players":[]}}`,
			source: "fallback_local",
		},
		{
			name:   "remote null falls back",
			feed:   func(s Set) Feed { return s.Elite },
			url:    srv.URL + "/null.json",
			local:  `{"highlights":["a"]}`,
			want:   `{"source":"fallback_local","confidence":"low","data":{"highlights":["a"]}}`,
			source: "fallback_local",
		},
		{
			name:   "no URL and no local file",
			feed:   func(s Set) Feed { return s.SetPieces },
			want:   `{"source":"fallback_local","confidence":"low","data":{"penalties":[],"corners":[],"direct_freekicks":[]}}`,
			source: "fallback_local",
		},
		{
			name:   "invalid local file",
			feed:   func(s Set) Feed { return s.Elite },
			local:  `{not json`,
			want:   `{"source":"fallback_local","confidence":"low","data":{"highlights":[]}}`,
			source: "fallback_local",
		},
		{
			name:   "local null uses default",
			feed:   func(s Set) Feed { return s.Injuries },
			local:  `null`,
			want:   `{"source":"fallback_local","confidence":"low","data":{"players":[]}}`,
			source: "fallback_local",
		},
		{
			name:   "whitespace URL is ignored",
			feed:   func(s Set) Feed { return s.Elite },
			url:    "   ",
			local:  `[1,2,3]`,
			want:   `{"source":"fallback_local","confidence":"low","data":[1,2,3]}`,
			source: "fallback_local",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			f := tt.feed(Feeds(config.Extras{}))
			f.URL = tt.url
			if tt.local != "" {
				writeLocal(t, root, f.RelPath, tt.local)
			}

			rec := &recorder{}
			got := NewResolver(fetch.New(), root, WithRecorder(rec)).Resolve(context.Background(), f)

			if diff := cmp.Diff(tt.want, marshal(t, got)); diff != "" {
				t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff([]recorded{{f.Name, tt.source}}, rec.calls, cmp.AllowUnexported(recorded{})); diff != "" {
				t.Errorf("recorded sources mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolvePrettyLocal(t *testing.T) {
	root := t.TempDir()
	f := Feeds(config.Extras{}).SetPieces
	writeLocal(t, root, f.RelPath, "{\n  \"penalties\": [],\n  \"corners\": [],\n  \"direct_freekicks\": []\n}\n")

	got := NewResolver(fetch.New(), root).Resolve(context.Background(), f)

	var data map[string]any
	if err := json.Unmarshal(got.Data, &data); err != nil {
		t.Fatalf("Data is not valid JSON: %v", err)
	}
	want := `{"source":"fallback_local","confidence":"low","data":{"penalties":[],"corners":[],"direct_freekicks":[]}}`
	if diff := cmp.Diff(want, marshal(t, got)); diff != "" {
		t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
	}
}

func TestFeeds(t *testing.T) {
	set := Feeds(config.Extras{
		SetPiecesURL:  "https://example.com/sp.json",
		InjuriesURL:   "https://example.com/inj.json",
		EliteFeedsURL: "https://example.com/elite.json",
	})

	got := []string{set.SetPieces.Name, set.Injuries.Name, set.Elite.Name}
	if diff := cmp.Diff([]string{"set_pieces", "injuries", "elite"}, got); diff != "" {
		t.Errorf("feed names mismatch (-want +got):\n%s", diff)
	}
	if set.Injuries.URL != "https://example.com/inj.json" {
		t.Errorf("Injuries.URL = %q", set.Injuries.URL)
	}
	if set.Elite.RelPath != filepath.Join("extras", "elite_feeds.json") {
		t.Errorf("Elite.RelPath = %q", set.Elite.RelPath)
	}
}
