package models

import "time"

// RegistrationStatus mirrors the ENUM in the registrations table.
type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
	RegistrationRejected RegistrationStatus = "rejected"
)

// Registration is a team's application to a tournament. Only approved
// registrations take part in draws and bracket seeding.
type Registration struct {
	ID           int                `json:"id" db:"id"`
	TournamentID int                `json:"tournament_id" db:"tournament_id"`
	ClubName     string             `json:"club_name" db:"club_name"`
	TeamName     string             `json:"team_name" db:"team_name"`
	CoachName    *string            `json:"coach_name,omitempty" db:"coach_name"`
	Status       RegistrationStatus `json:"status" db:"status"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
}
