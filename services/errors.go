package services

import "errors"

// Shared errors used across services and the HTTP mapping layer.
var (
	// Not found
	ErrNotFound             = errors.New("requested resource not found")
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrGroupNotFound        = errors.New("group not found")
	ErrBracketNotFound      = errors.New("bracket not found")
	ErrMatchNotFound        = errors.New("match not found")
	ErrUserNotFound         = errors.New("user not found")

	// Validation and business rules
	ErrValidationFailed         = errors.New("validation failed")
	ErrDrawAlreadyCompleted     = errors.New("tournament draw is already completed")
	ErrNoApprovedRegistrations  = errors.New("tournament has no approved registrations")
	ErrInvalidGroupCount        = errors.New("number of groups is out of the valid range")
	ErrInvalidPotNumber         = errors.New("pot number must be between 1 and 4")
	ErrPotCountMismatch         = errors.New("pot assignments do not cover all approved registrations")
	ErrInvalidPotDistribution   = errors.New("pot distribution does not match the expected size")
	ErrRegistrationNotApproved  = errors.New("registration is not approved")
	ErrRegistrationNotInTourney = errors.New("registration does not belong to this tournament")
	ErrInvalidMatchScore        = errors.New("match score must be non-negative")
	ErrWinnerRequired           = errors.New("a drawn knockout match requires an explicit winner")
	ErrTeamNotInGroup           = errors.New("team is not part of this group")
	ErrInvalidGroupLetter       = errors.New("unknown group letter for this tournament")

	// Authentication and authorization
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")
)
