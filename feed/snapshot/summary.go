package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed/fetch"
	"github.com/morikuni/failure/v2"
	"github.com/samber/lo"
)

// Row describes the provenance of one section of a written snapshot
type Row struct {
	Section string
	Status  string
	Detail  string
}

// Summary is a per-section provenance report of a written snapshot
type Summary struct {
	FetchedAt string
	Rows      []Row
}

// Status values used in a Summary
const (
	StatusOK       = "ok"
	StatusError    = "error"
	StatusFallback = "fallback"
	StatusDisabled = "disabled"
	StatusMissing  = "missing"
)

type rawSnapshot struct {
	FPL       map[string]json.RawMessage `json:"fpl"`
	SetPieces *rawWrapper                `json:"set_pieces"`
	Injuries  *rawWrapper                `json:"injuries"`
	Elite     *rawWrapper                `json:"elite"`
	Odds      *rawOdds                   `json:"odds"`
	FetchedAt string                     `json:"_fetched_at_utc"`
}

type rawWrapper struct {
	Source     string `json:"source"`
	Confidence string `json:"confidence"`
}

type rawOdds struct {
	Enabled  bool              `json:"enabled"`
	Reason   string            `json:"reason"`
	Provider string            `json:"provider"`
	Error    string            `json:"error"`
	Matches  []json.RawMessage `json:"matches"`
}

// Summarize derives a Summary from the bytes of a written snapshot
func Summarize(raw []byte) (Summary, error) {
	var doc rawSnapshot
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Summary{}, failure.Wrap(err, failure.WithCode(ErrInvalidSnapshot),
			failure.Message("snapshot is not a JSON object: "+err.Error()),
		)
	}

	s := Summary{FetchedAt: doc.FetchedAt}
	for _, key := range []string{"bootstrap_static", "fixtures", "entry"} {
		s.Rows = append(s.Rows, primaryRow("fpl."+key, doc.FPL[key]))
	}
	s.Rows = append(s.Rows, leagueRows(doc.FPL["leagues"])...)

	s.Rows = append(s.Rows,
		optionalRow(SectionSetPieces, doc.SetPieces),
		optionalRow(SectionInjuries, doc.Injuries),
		optionalRow(SectionElite, doc.Elite),
		oddsRow(doc.Odds),
	)
	return s, nil
}

// Failed reports the number of rows with an error status
func (s Summary) Failed() int {
	return lo.CountBy(s.Rows, func(r Row) bool {
		return r.Status == StatusError
	})
}

// Markdown renders the summary as a markdown table
func (s Summary) Markdown() string {
	var b strings.Builder
	b.WriteString("# Feed snapshot\n\n")
	if s.FetchedAt != "" {
		fmt.Fprintf(&b, "Fetched at `%s`\n\n", s.FetchedAt)
	}
	b.WriteString("| Section | Status | Detail |\n")
	b.WriteString("|---|---|---|\n")
	for _, r := range s.Rows {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", r.Section, r.Status, escapeCell(r.Detail))
	}
	if n := s.Failed(); n > 0 {
		fmt.Fprintf(&b, "\n%d section(s) failed to fetch.\n", n)
	}
	return b.String()
}

func primaryRow(section string, v json.RawMessage) Row {
	if v == nil {
		return Row{Section: section, Status: StatusMissing}
	}
	if msg, ok := errorText(v); ok {
		return Row{Section: section, Status: StatusError, Detail: msg}
	}
	return Row{Section: section, Status: StatusOK}
}

func leagueRows(v json.RawMessage) []Row {
	if v == nil {
		return []Row{{Section: "fpl.leagues", Status: StatusMissing}}
	}
	var leagues map[string]json.RawMessage
	if err := json.Unmarshal(v, &leagues); err != nil {
		return []Row{{Section: "fpl.leagues", Status: StatusError, Detail: "not an object"}}
	}
	ids := lo.Keys(leagues)
	slices.Sort(ids)
	return lo.Map(ids, func(id string, _ int) Row {
		return primaryRow("fpl.leagues."+id, leagues[id])
	})
}

func optionalRow(section string, w *rawWrapper) Row {
	if w == nil {
		return Row{Section: section, Status: StatusMissing}
	}
	status := StatusOK
	if w.Source != "remote" {
		status = StatusFallback
	}
	return Row{
		Section: section,
		Status:  status,
		Detail:  fmt.Sprintf("source=%s confidence=%s", w.Source, w.Confidence),
	}
}

func oddsRow(o *rawOdds) Row {
	switch {
	case o == nil:
		return Row{Section: SectionOdds, Status: StatusMissing}
	case !o.Enabled:
		return Row{Section: SectionOdds, Status: StatusDisabled, Detail: o.Reason}
	case o.Error != "":
		return Row{Section: SectionOdds, Status: StatusError, Detail: o.Error}
	default:
		return Row{
			Section: SectionOdds,
			Status:  StatusOK,
			Detail:  fmt.Sprintf("provider=%s matches=%d", o.Provider, len(o.Matches)),
		}
	}
}

// errorText returns the placeholder text when v is {"_error": "..."}
func errorText(v json.RawMessage) (string, bool) {
	if !bytes.HasPrefix(bytes.TrimSpace(v), []byte("{")) {
		return "", false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(v, &obj); err != nil {
		return "", false
	}
	raw, ok := obj[fetch.ErrorKey]
	if !ok {
		return "", false
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err != nil {
		return string(raw), true
	}
	return msg, true
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
