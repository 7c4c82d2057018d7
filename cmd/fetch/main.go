package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"statcast/internal/datasource/file"
	"statcast/internal/datasource/httpds"
	"statcast/internal/datasource/statcast"
)

// main is the entry point for the fetch binary. It resolves one player (or a
// watch-list of players), downloads their pitch-by-pitch rows for the date
// range, and writes one CSV snapshot per player under the output directory.
//
// Flag defaults come from the same environment variables the original
// operators already set, so existing cron entries keep working.
func main() {
	var (
		first       string
		last        string
		role        string
		start       string
		end         string
		outDir      string
		playersFile string
		searchURL   string
		registerURL string
	)

	flag.StringVar(&first, "first", envOr("PLAYER_FIRST_NAME", "Shohei"), "player first name")
	flag.StringVar(&last, "last", envOr("PLAYER_LAST_NAME", "Ohtani"), "player last name")
	flag.StringVar(&role, "type", envOr("PLAYER_TYPE", "batter"), "player type (pitcher or batter)")
	flag.StringVar(&start, "start", envOr("START_DATE", "2023-01-01"), "start date (YYYY-MM-DD)")
	flag.StringVar(&end, "end", envOr("END_DATE", "2023-12-31"), "end date (YYYY-MM-DD)")
	flag.StringVar(&outDir, "out", "data/raw", "output directory for snapshots")
	flag.StringVar(&playersFile, "players-file", "", "file listing one \"First Last\" per line; overrides -first/-last")
	flag.StringVar(&searchURL, "search-url", "", "override the statcast search endpoint")
	flag.StringVar(&registerURL, "register-url", "", "override the player register URL")

	flag.Parse()

	role = strings.ToLower(role)

	players := [][2]string{{first, last}}
	if playersFile != "" {
		lines, err := file.ReadList(playersFile)
		if err != nil {
			fatalf("read players file: %v", err)
		}
		players = players[:0]
		for _, line := range lines {
			f, l, ok := splitName(line)
			if !ok {
				fatalf("players file: cannot split %q into first and last name", line)
			}
			players = append(players, [2]string{f, l})
		}
		if len(players) == 0 {
			fatalf("players file %s has no entries", playersFile)
		}
	}

	fetcher := statcast.NewFetcher(statcast.Config{
		Client:      httpds.NewClient(httpds.Config{Timeout: 2 * time.Minute}),
		SearchURL:   searchURL,
		RegisterURL: registerURL,
	})

	ctx := context.Background()
	failed := 0
	for _, p := range players {
		if err := fetchOne(ctx, fetcher, p[0], p[1], role, start, end, outDir); err != nil {
			log.Printf("fetch failed player=%s %s err=%v", p[0], p[1], err)
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
	log.Printf("Fetch finished successfully.")
}

// fetchOne downloads and writes the snapshot for a single player.
func fetchOne(ctx context.Context, fetcher *statcast.Fetcher, first, last, role, start, end, outDir string) error {
	q := statcast.Query{
		FirstName: first,
		LastName:  last,
		Role:      role,
		StartDate: start,
		EndDate:   end,
	}

	log.Printf("Fetching statcast rows player=%s %s type=%s range=%s..%s", first, last, role, start, end)
	res, err := fetcher.Fetch(ctx, q)
	if err != nil {
		if errors.Is(err, statcast.ErrNoData) {
			log.Printf("No statcast rows for %s %s in the date range.", first, last)
		}
		return err
	}
	log.Printf("Fetched %d rows of statcast data.", len(res.Rows))

	path, err := statcast.WriteSnapshot(outDir, q, res.Columns, res.Rows)
	if err != nil {
		return err
	}
	log.Printf("Successfully saved data to: %s", path)
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}

// splitName splits "First Last" (last token is the last name, everything
// before it the first name, so "Hyun Jin Ryu" works).
func splitName(line string) (string, string, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", "", false
	}
	return strings.Join(fields[:len(fields)-1], " "), fields[len(fields)-1], true
}
