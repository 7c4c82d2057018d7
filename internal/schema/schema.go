// Package schema declares the canonical Statcast pitch-event schema: the
// fixed set of column names, their kinds, the composite natural key, and the
// bounded-length text columns enforced by the target table.
//
// The rest of the pipeline treats this package as the single source of truth:
// the normalizer maps incoming CSV columns onto it, the validator reads the
// key columns and length limits from it, and the DDL layer renders it into a
// CREATE TABLE statement per backend.
package schema

// Column kinds. The set is deliberately small; anything the pipeline does not
// understand stays text and the store sorts it out.
const (
	Text   = "text"   // free-form string
	Real   = "real"   // float64, nullable; parse failure becomes NULL
	BigInt = "bigint" // int64, nullable; NULL is preserved, never zeroed
	Date   = "date"   // time.Time; load-critical, parse failure is fatal
)

// Column describes one canonical column.
type Column struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	PrimaryKey bool   `json:"primary_key,omitempty"`

	// MaxLen bounds the stored string length for text columns. Zero means
	// unbounded. Exceeding MaxLen is a validation warning (or a violation in
	// strict mode); the store enforces the bound either way.
	MaxLen int `json:"max_len,omitempty"`
}

// Contract is an ordered set of canonical columns for one target table.
type Contract struct {
	Name    string   `json:"name"` // target table, e.g. "public.statcast_data"
	Columns []Column `json:"columns"`
}

// DescriptionLimit is the bound on the "description" column, mirroring the
// VARCHAR(100) in the target table.
const DescriptionLimit = 100

// Table is the default fully qualified target table name.
const Table = "public.statcast_data"

// DateLayout is the wire format of game_date in Statcast CSV exports.
const DateLayout = "2006-01-02"

// Statcast returns the canonical pitch-event contract. The column order is
// the snapshot column order produced by the fetch stage.
func Statcast() Contract {
	return Contract{
		Name: Table,
		Columns: []Column{
			{Name: "pitch_type", Kind: Text},
			{Name: "game_date", Kind: Date},
			{Name: "release_speed", Kind: Real},
			{Name: "release_pos_x", Kind: Real},
			{Name: "release_pos_z", Kind: Real},
			{Name: "player_name", Kind: Text},
			{Name: "batter", Kind: BigInt},
			{Name: "pitcher", Kind: BigInt},
			{Name: "events", Kind: Text},
			{Name: "description", Kind: Text, MaxLen: DescriptionLimit},
			{Name: "zone", Kind: BigInt},
			{Name: "des", Kind: Text},
			{Name: "game_type", Kind: Text},
			{Name: "stand", Kind: Text},
			{Name: "p_throws", Kind: Text},
			{Name: "home_team", Kind: Text},
			{Name: "away_team", Kind: Text},
			{Name: "type", Kind: Text},
			{Name: "hit_location", Kind: BigInt},
			{Name: "bb_type", Kind: Text},
			{Name: "balls", Kind: BigInt},
			{Name: "strikes", Kind: BigInt},
			{Name: "game_year", Kind: BigInt},
			{Name: "pfx_x", Kind: Real},
			{Name: "pfx_z", Kind: Real},
			{Name: "plate_x", Kind: Real},
			{Name: "plate_z", Kind: Real},
			{Name: "on_3b", Kind: BigInt},
			{Name: "on_2b", Kind: BigInt},
			{Name: "on_1b", Kind: BigInt},
			{Name: "outs_when_up", Kind: BigInt},
			{Name: "inning", Kind: BigInt},
			{Name: "inning_topbot", Kind: Text},
			{Name: "hc_x", Kind: Real},
			{Name: "hc_y", Kind: Real},
			{Name: "sv_id", Kind: Text},
			{Name: "vx0", Kind: Real},
			{Name: "vy0", Kind: Real},
			{Name: "vz0", Kind: Real},
			{Name: "ax", Kind: Real},
			{Name: "ay", Kind: Real},
			{Name: "az", Kind: Real},
			{Name: "sz_top", Kind: Real},
			{Name: "sz_bot", Kind: Real},
			{Name: "hit_distance_sc", Kind: Real},
			{Name: "launch_speed", Kind: Real},
			{Name: "launch_angle", Kind: Real},
			{Name: "effective_speed", Kind: Real},
			{Name: "release_spin_rate", Kind: Real},
			{Name: "release_extension", Kind: Real},
			{Name: "game_pk", Kind: BigInt, PrimaryKey: true},
			{Name: "fielder_2", Kind: BigInt},
			{Name: "fielder_3", Kind: BigInt},
			{Name: "fielder_4", Kind: BigInt},
			{Name: "fielder_5", Kind: BigInt},
			{Name: "fielder_6", Kind: BigInt},
			{Name: "fielder_7", Kind: BigInt},
			{Name: "fielder_8", Kind: BigInt},
			{Name: "fielder_9", Kind: BigInt},
			{Name: "estimated_ba_using_speedangle", Kind: Real},
			{Name: "estimated_woba_using_speedangle", Kind: Real},
			{Name: "woba_value", Kind: Real},
			{Name: "woba_denom", Kind: BigInt},
			{Name: "babip_value", Kind: BigInt},
			{Name: "iso_value", Kind: BigInt},
			{Name: "launch_speed_angle", Kind: BigInt},
			{Name: "at_bat_number", Kind: BigInt, PrimaryKey: true},
			{Name: "pitch_number", Kind: BigInt, PrimaryKey: true},
			{Name: "pitch_name", Kind: Text},
			{Name: "home_score", Kind: BigInt},
			{Name: "away_score", Kind: BigInt},
			{Name: "bat_score", Kind: BigInt},
			{Name: "fld_score", Kind: BigInt},
			{Name: "post_away_score", Kind: BigInt},
			{Name: "post_home_score", Kind: BigInt},
			{Name: "post_bat_score", Kind: BigInt},
			{Name: "post_fld_score", Kind: BigInt},
		},
	}
}

// Names returns the ordered canonical column names.
func (c Contract) Names() []string {
	out := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		out[i] = col.Name
	}
	return out
}

// PrimaryKey returns the names of the key columns in contract order. For the
// Statcast contract this is (game_pk, at_bat_number, pitch_number).
func (c Contract) PrimaryKey() []string {
	var out []string
	for _, col := range c.Columns {
		if col.PrimaryKey {
			out = append(out, col.Name)
		}
	}
	return out
}

// Lookup returns the column named name, if declared.
func (c Contract) Lookup(name string) (Column, bool) {
	for _, col := range c.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

// LengthLimits returns the per-column string length bounds, keyed by column
// name. Columns without a bound are absent.
func (c Contract) LengthLimits() map[string]int {
	out := map[string]int{}
	for _, col := range c.Columns {
		if col.MaxLen > 0 {
			out[col.Name] = col.MaxLen
		}
	}
	return out
}
