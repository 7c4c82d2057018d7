package statcast

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"statcast/internal/datasource/httpds"
	"statcast/pkg/records"
)

const registerCSV = `name_first,name_last,key_mlbam,key_retro
Shohei,Ohtani,660271,ohtas001
José,Ramírez,608070,ramij003
Luis,García,0,
Luis,García,677651,garcl002
Luis,García,472610,garcl001
`

const searchCSV = `pitch_type,game_date,release_speed,game_pk,at_bat_number,pitch_number,description,unknown_extra
FF,2023-04-01,97.2,718781,12,1,called_strike,x
SL,2023-04-01,84.9,718781,12,2,swinging_strike,y
`

// newTestFetcher wires a Fetcher against local register and search handlers.
func newTestFetcher(t *testing.T, register, search http.HandlerFunc) *Fetcher {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/register.csv", register)
	mux.HandleFunc("/search", search)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return NewFetcher(Config{
		Client:      httpds.NewClient(httpds.Config{MaxRetries: 0}),
		SearchURL:   srv.URL + "/search",
		RegisterURL: srv.URL + "/register.csv",
	})
}

func serveCSV(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(body))
	}
}

func TestLookupPlayerID(t *testing.T) {
	t.Parallel()

	f := newTestFetcher(t, serveCSV(registerCSV), serveCSV(searchCSV))

	id, err := f.LookupPlayerID(context.Background(), "Shohei", "Ohtani")
	if err != nil {
		t.Fatalf("LookupPlayerID: %v", err)
	}
	if id != 660271 {
		t.Errorf("id = %d, want 660271", id)
	}
}

func TestLookupPlayerIDFoldsDiacritics(t *testing.T) {
	t.Parallel()

	f := newTestFetcher(t, serveCSV(registerCSV), serveCSV(searchCSV))

	// ASCII query matches the accented register row.
	id, err := f.LookupPlayerID(context.Background(), "jose", "ramirez")
	if err != nil {
		t.Fatalf("LookupPlayerID: %v", err)
	}
	if id != 608070 {
		t.Errorf("id = %d, want 608070", id)
	}
}

func TestLookupPlayerIDAmbiguousTakesFirst(t *testing.T) {
	t.Parallel()

	f := newTestFetcher(t, serveCSV(registerCSV), serveCSV(searchCSV))

	// Rows without a positive key_mlbam are skipped; the first usable id wins.
	id, err := f.LookupPlayerID(context.Background(), "Luis", "García")
	if err != nil {
		t.Fatalf("LookupPlayerID: %v", err)
	}
	if id != 677651 {
		t.Errorf("id = %d, want 677651", id)
	}
}

func TestLookupPlayerIDNotFound(t *testing.T) {
	t.Parallel()

	f := newTestFetcher(t, serveCSV(registerCSV), serveCSV(searchCSV))

	_, err := f.LookupPlayerID(context.Background(), "Babe", "Ruth")
	if !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("err = %v, want ErrPlayerNotFound", err)
	}
}

func TestFetch(t *testing.T) {
	t.Parallel()

	var gotQuery map[string]string
	search := func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k, vs := range r.URL.Query() {
			gotQuery[k] = vs[0]
		}
		serveCSV(searchCSV)(w, r)
	}
	f := newTestFetcher(t, serveCSV(registerCSV), search)

	res, err := f.Fetch(context.Background(), Query{
		FirstName: "Shohei",
		LastName:  "Ohtani",
		Role:      RoleBatter,
		StartDate: "2023-01-01",
		EndDate:   "2023-12-31",
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if res.PlayerID != 660271 {
		t.Errorf("PlayerID = %d", res.PlayerID)
	}
	for k, want := range map[string]string{
		"all":              "true",
		"type":             "details",
		"player_type":      "batter",
		"game_date_gt":     "2023-01-01",
		"game_date_lt":     "2023-12-31",
		"batters_lookup[]": "660271",
	} {
		if gotQuery[k] != want {
			t.Errorf("query %s = %q, want %q", k, gotQuery[k], want)
		}
	}

	if len(res.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(res.Rows))
	}
	// Off-contract columns are pruned; canonical columns keep contract order.
	for _, rec := range res.Rows {
		if _, ok := rec["unknown_extra"]; ok {
			t.Error("unknown_extra survived pruning")
		}
	}
	if res.Columns[0] != "pitch_type" {
		t.Errorf("Columns[0] = %q, want pitch_type", res.Columns[0])
	}
	for _, col := range res.Columns {
		if col == "unknown_extra" {
			t.Error("unknown_extra in Columns")
		}
	}
	if got := res.Rows[0]["description"]; got != "called_strike" {
		t.Errorf("description = %v", got)
	}
}

func TestFetchNoData(t *testing.T) {
	t.Parallel()

	f := newTestFetcher(t, serveCSV(registerCSV), serveCSV("pitch_type,game_pk\n"))

	_, err := f.Fetch(context.Background(), Query{
		FirstName: "Shohei", LastName: "Ohtani", Role: RolePitcher,
		StartDate: "2023-01-01", EndDate: "2023-01-02",
	})
	if !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestFetchRejectsBadInput(t *testing.T) {
	t.Parallel()

	f := newTestFetcher(t, serveCSV(registerCSV), serveCSV(searchCSV))

	if _, err := f.Fetch(context.Background(), Query{Role: "coach", StartDate: "2023-01-01", EndDate: "2023-01-02"}); err == nil {
		t.Error("bad role accepted")
	}
	if _, err := f.Fetch(context.Background(), Query{Role: RoleBatter, StartDate: "01/01/2023", EndDate: "2023-01-02"}); err == nil {
		t.Error("bad date accepted")
	}
}

func TestSnapshotName(t *testing.T) {
	t.Parallel()

	q := Query{FirstName: "José", LastName: "Ramírez", Role: RoleBatter, StartDate: "2023-01-01", EndDate: "2023-12-31"}
	if got, want := SnapshotName(q), "jose_ramirez_batter_statcast_2023-01-01_to_2023-12-31.csv"; got != want {
		t.Errorf("SnapshotName = %q, want %q", got, want)
	}
}

func TestWriteSnapshot(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "raw")
	q := Query{FirstName: "Shohei", LastName: "Ohtani", Role: RoleBatter, StartDate: "2023-01-01", EndDate: "2023-12-31"}
	columns := []string{"game_pk", "pitch_number", "description"}
	rows := []records.Record{
		{"game_pk": "718781", "pitch_number": "1", "description": "foul"},
		{"game_pk": "718781", "pitch_number": "2", "description": nil},
	}

	path, err := WriteSnapshot(dir, q, columns, rows)
	if err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	if filepath.Base(path) != SnapshotName(q) {
		t.Errorf("path = %q", path)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "game_pk,pitch_number,description\n718781,1,foul\n718781,2,\n"
	if string(b) != want {
		t.Errorf("snapshot content:\n got %q\nwant %q", b, want)
	}
	if strings.Count(string(b), "\n") != 3 {
		t.Errorf("unexpected line count in %q", b)
	}
}
