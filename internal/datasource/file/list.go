package file

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ReadList reads a text file line by line and returns the non-empty,
// non-comment lines. Lines that are empty or start with '#' (after trimming
// whitespace) are skipped, so player watch-lists can carry comments and
// blank separators. Order is preserved.
func ReadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Latest returns the path of the newest *.csv snapshot in dir by modification
// time, optionally narrowed to filenames starting with prefix. Extension and
// prefix matching is case-insensitive. Ties break on lexically larger name so
// the result is deterministic.
func Latest(dir, prefix string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("scan %s: %w", dir, err)
	}

	type candidate struct {
		name string
		mod  int64
	}
	var cands []candidate
	lowerPrefix := strings.ToLower(prefix)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		lower := strings.ToLower(name)
		if !strings.HasSuffix(lower, ".csv") {
			continue
		}
		if lowerPrefix != "" && !strings.HasPrefix(lower, lowerPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", name, err)
		}
		cands = append(cands, candidate{name: name, mod: info.ModTime().UnixNano()})
	}
	if len(cands) == 0 {
		if prefix != "" {
			return "", fmt.Errorf("no *.csv snapshots with prefix %q in %s", prefix, dir)
		}
		return "", fmt.Errorf("no *.csv snapshots in %s", dir)
	}

	sort.Slice(cands, func(i, j int) bool {
		if cands[i].mod != cands[j].mod {
			return cands[i].mod > cands[j].mod
		}
		return cands[i].name > cands[j].name
	})
	return filepath.Join(dir, cands[0].name), nil
}
