package models

import "time"

// BracketRecord stores a generated bracket structure for a tournament as
// raw JSON. Immutable once written except through explicit regeneration.
type BracketRecord struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Format       string    `json:"format" db:"format"`
	DataJSON     string    `json:"-" db:"data_json"`
	Seed         *string   `json:"seed,omitempty" db:"seed"`
	SnapshotKey  *string   `json:"-" db:"snapshot_key"`
	SnapshotURL  *string   `json:"snapshot_url,omitempty" db:"-"`
	GeneratedAt  time.Time `json:"generated_at" db:"generated_at"`
}
