package models

import "time"

// TournamentStatus mirrors the ENUM in the tournaments table.
type TournamentStatus string

const (
	StatusSoon         TournamentStatus = "soon"
	StatusRegistration TournamentStatus = "registration"
	StatusActive       TournamentStatus = "active"
	StatusCompleted    TournamentStatus = "completed"
	StatusCanceled     TournamentStatus = "canceled"
)

func (s TournamentStatus) Valid() bool {
	switch s {
	case StatusSoon, StatusRegistration, StatusActive, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

// Tournament is a single competition. A tournament owns at most one
// completed draw (DrawCompleted + optional DrawSeed), its groups and,
// for pot-based draws, its pot assignments.
type Tournament struct {
	ID            int              `json:"id" db:"id"`
	Name          string           `json:"name" db:"name"`
	Description   *string          `json:"description,omitempty" db:"description"`
	OrganizerID   int              `json:"organizer_id" db:"organizer_id"`
	AgeGroup      *string          `json:"age_group,omitempty" db:"age_group"`
	RegDate       time.Time        `json:"reg_date" db:"reg_date"`
	StartDate     time.Time        `json:"start_date" db:"start_date"`
	EndDate       time.Time        `json:"end_date" db:"end_date"`
	Location      *string          `json:"location,omitempty" db:"location"`
	Status        TournamentStatus `json:"status" db:"status"`
	MaxTeams      int              `json:"max_teams" db:"max_teams"`
	DrawCompleted bool             `json:"draw_completed" db:"draw_completed"`
	DrawSeed      *string          `json:"draw_seed,omitempty" db:"draw_seed"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`

	// Optional linked entities, populated by services.
	Organizer *User   `json:"organizer,omitempty" db:"-"`
	Groups    []Group `json:"groups,omitempty" db:"-"`
}
