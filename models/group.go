package models

import "time"

// Group is one draw group of a tournament. TeamIDs is the ordered list of
// registration ids placed into the group; groups are replaced wholesale on
// redraw, never partially mutated.
type Group struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Letter       string    `json:"letter" db:"letter"`
	TeamIDs      []int64   `json:"team_ids" db:"team_ids"`
	DisplayOrder int       `json:"display_order" db:"display_order"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
