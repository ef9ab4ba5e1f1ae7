package models

import "time"

type MatchStatus string

const (
	MatchPending    MatchStatus = "pending"
	MatchInProgress MatchStatus = "in_progress"
	MatchCompleted  MatchStatus = "completed"
)

// Match is a persisted group-stage fixture. Playoff matches live inside the
// generated bracket record; group matches are stored individually because
// standings are derived from their results.
type Match struct {
	ID                   int         `json:"id" db:"id"`
	TournamentID         int         `json:"tournament_id" db:"tournament_id"`
	GroupID              int         `json:"group_id" db:"group_id"`
	Round                *int        `json:"round,omitempty" db:"round"`
	Team1RegistrationID  *int        `json:"team1_registration_id,omitempty" db:"team1_registration_id"`
	Team2RegistrationID  *int        `json:"team2_registration_id,omitempty" db:"team2_registration_id"`
	Score1               *int        `json:"score1,omitempty" db:"score1"`
	Score2               *int        `json:"score2,omitempty" db:"score2"`
	WinnerRegistrationID *int        `json:"winner_registration_id,omitempty" db:"winner_registration_id"`
	Status               MatchStatus `json:"status" db:"status"`
	MatchTime            time.Time   `json:"match_time" db:"match_time"`
	CreatedAt            time.Time   `json:"created_at" db:"created_at"`
}
