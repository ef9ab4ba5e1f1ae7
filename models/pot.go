package models

import "time"

// MinPotNumber and MaxPotNumber bound the seeding tiers; pot 1 holds the
// strongest teams.
const (
	MinPotNumber = 1
	MaxPotNumber = 4
)

// TournamentPot assigns one approved registration to a seeding pot.
// Unique per (tournament, registration).
type TournamentPot struct {
	ID             int       `json:"id" db:"id"`
	TournamentID   int       `json:"tournament_id" db:"tournament_id"`
	RegistrationID int       `json:"registration_id" db:"registration_id"`
	PotNumber      int       `json:"pot_number" db:"pot_number"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`

	// Optional linked registration for display (club/coach names).
	Registration *Registration `json:"registration,omitempty" db:"-"`
}
