package statcast

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	csvparser "statcast/internal/parser/csv"
	"statcast/internal/schema"
	"statcast/pkg/records"
)

// Result is one fetched, column-pruned row-set. Columns holds the canonical
// columns actually present in the download, in contract order.
type Result struct {
	PlayerID int64
	Columns  []string
	Rows     []records.Record
}

// Fetch resolves the player and downloads their pitch-by-pitch rows for the
// query's date range, pruned to the canonical column set. A player with no
// rows in the range yields ErrNoData.
func (f *Fetcher) Fetch(ctx context.Context, q Query) (*Result, error) {
	if !validRole(q.Role) {
		return nil, fmt.Errorf("statcast: role must be %q or %q, got %q", RolePitcher, RoleBatter, q.Role)
	}
	for _, d := range []string{q.StartDate, q.EndDate} {
		if _, err := time.Parse(schema.DateLayout, d); err != nil {
			return nil, fmt.Errorf("statcast: bad date %q: %w", d, err)
		}
	}

	id, err := f.LookupPlayerID(ctx, q.FirstName, q.LastName)
	if err != nil {
		return nil, err
	}
	log.Printf("Found MLBAM id=%d for %s %s", id, q.FirstName, q.LastName)

	rows, err := f.download(ctx, id, q)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: id=%d %s..%s", ErrNoData, id, q.StartDate, q.EndDate)
	}

	cols, pruned := prune(rows)
	return &Result{PlayerID: id, Columns: cols, Rows: pruned}, nil
}

// download issues the search request and parses the CSV payload.
func (f *Fetcher) download(ctx context.Context, id int64, q Query) ([]records.Record, error) {
	v := url.Values{}
	v.Set("all", "true")
	v.Set("type", "details")
	v.Set("player_type", q.Role)
	v.Set("game_date_gt", q.StartDate)
	v.Set("game_date_lt", q.EndDate)
	switch q.Role {
	case RolePitcher:
		v.Set("pitchers_lookup[]", fmt.Sprint(id))
	case RoleBatter:
		v.Set("batters_lookup[]", fmt.Sprint(id))
	}

	resp, err := f.client.Get(ctx, f.searchURL+"?"+v.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch statcast rows: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("fetch statcast rows: status %d", resp.StatusCode)
	}

	p := csvparser.NewParser(csvparser.Options{HasHeader: true, TrimSpace: true})
	rows, skipped, err := p.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse statcast payload: %w", err)
	}
	if skipped > 0 {
		log.Printf("Skipped %d malformed rows in statcast payload", skipped)
	}
	return rows, nil
}

// prune drops columns outside the canonical keep-list and reports, once, the
// canonical columns the payload did not carry.
func prune(rows []records.Record) ([]string, []records.Record) {
	contract := schema.Statcast()

	present := map[string]bool{}
	for k := range rows[0] {
		present[k] = true
	}

	var keep, missing []string
	for _, name := range contract.Names() {
		if present[name] {
			keep = append(keep, name)
		} else {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		log.Printf("Requested columns not found in the data: %v", missing)
	}

	out := make([]records.Record, len(rows))
	for i, rec := range rows {
		slim := make(records.Record, len(keep))
		for _, name := range keep {
			slim[name] = rec[name]
		}
		out[i] = slim
	}
	return keep, out
}
