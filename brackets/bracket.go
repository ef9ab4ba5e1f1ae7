package brackets

import (
	"errors"
	"fmt"
	"time"
)

// Format selects the competition structure a bracket is generated for.
type Format string

const (
	FormatGroups            Format = "groups"
	FormatSingleElimination Format = "single_elimination"
	FormatDoubleElimination Format = "double_elimination"
	FormatRoundRobin        Format = "round_robin"
	FormatLeague            Format = "league"
	FormatGroupsKnockout    Format = "groups_knockout"
)

// Lane tags a playoff round with its double-elimination bracket side.
type Lane string

const (
	LaneWinners    Lane = "winners"
	LaneLosers     Lane = "losers"
	LaneGrandFinal Lane = "grand_final"
)

type MatchStatus string

const (
	MatchPending    MatchStatus = "pending"
	MatchInProgress MatchStatus = "in_progress"
	MatchCompleted  MatchStatus = "completed"
)

// Match is one slot of a generated structure. Team slots hold registration
// ids and stay nil until seeding or earlier results fill them. AutoAdvance
// marks a bye: team 1 advances without playing.
type Match struct {
	ID               string      `json:"id"`
	Round            int         `json:"round"`
	Index            int         `json:"index"`
	Team1ID          *int        `json:"team1_id,omitempty"`
	Team2ID          *int        `json:"team2_id,omitempty"`
	Score1           *int        `json:"score1,omitempty"`
	Score2           *int        `json:"score2,omitempty"`
	WinnerID         *int        `json:"winner_id,omitempty"`
	LoserID          *int        `json:"loser_id,omitempty"`
	ManualWinnerID   *int        `json:"manual_winner_id,omitempty"`
	Status           MatchStatus `json:"status"`
	NextMatchID      *string     `json:"next_match_id,omitempty"`
	LoserNextMatchID *string     `json:"loser_next_match_id,omitempty"`
	AutoAdvance      bool        `json:"auto_advance,omitempty"`
}

// Round is an ordered collection of matches sharing a round number.
// Round numbers are strictly increasing across the whole structure.
type Round struct {
	Number  int      `json:"number"`
	Name    string   `json:"name"`
	Lane    Lane     `json:"lane,omitempty"`
	Matches []*Match `json:"matches"`
}

// BracketData is the generated competition structure. Knockout formats fill
// Rounds; round robin and league additionally expose the flat fixture list.
type BracketData struct {
	Format        Format    `json:"format"`
	GroupCount    int       `json:"group_count,omitempty"`
	TeamsPerGroup int       `json:"teams_per_group,omitempty"`
	Rounds        []*Round  `json:"rounds,omitempty"`
	Matches       []*Match  `json:"matches,omitempty"`
	Seed          string    `json:"seed,omitempty"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// GenerateParams carries the format plus its knobs. TeamIDs is the seeding
// order; when it is empty the shape is generated from TeamCount with empty
// team slots.
type GenerateParams struct {
	Format            Format
	TeamIDs           []int
	TeamCount         int
	GroupCount        int
	AdvancingPerGroup int
	Legs              int
	ThirdPlaceMatch   bool
	Seed              string
}

func (p GenerateParams) teamCount() int {
	if len(p.TeamIDs) > 0 {
		return len(p.TeamIDs)
	}
	return p.TeamCount
}

var ErrNotEnoughTeams = errors.New("not enough teams to generate a bracket (minimum 2)")

// Generate dispatches to the generator of the requested format. The result
// is a pure in-memory structure; callers persist it.
func Generate(params GenerateParams) (*BracketData, error) {
	if params.teamCount() < 2 {
		return nil, ErrNotEnoughTeams
	}

	var (
		data *BracketData
		err  error
	)
	switch params.Format {
	case FormatGroups:
		data, err = generateGroups(params)
	case FormatSingleElimination:
		data, err = generateSingleElimination(params)
	case FormatDoubleElimination:
		data, err = generateDoubleElimination(params)
	case FormatRoundRobin:
		data, err = generateRoundRobin(params)
	case FormatLeague:
		data, err = generateLeague(params)
	case FormatGroupsKnockout:
		data, err = generateGroupsKnockout(params)
	default:
		return nil, fmt.Errorf("unsupported bracket format %q", params.Format)
	}
	if err != nil {
		return nil, err
	}

	data.Seed = params.Seed
	data.GeneratedAt = time.Now().UTC()
	return data, nil
}

// FindMatch returns the match with the given structural id, searching both
// rounds and the flat fixture list.
func (b *BracketData) FindMatch(id string) *Match {
	for _, r := range b.Rounds {
		for _, m := range r.Matches {
			if m.ID == id {
				return m
			}
		}
	}
	for _, m := range b.Matches {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// roundName maps a round's distance from the final to its display name.
func roundName(distanceFromFinal, roundNumber int) string {
	switch distanceFromFinal {
	case 0:
		return "Final"
	case 1:
		return "Semi-Finals"
	case 2:
		return "Quarter-Finals"
	case 3:
		return "Round of 16"
	case 4:
		return "Round of 32"
	default:
		return fmt.Sprintf("Round %d", roundNumber)
	}
}

func intPtr(v int) *int {
	return &v
}

func strPtr(s string) *string {
	return &s
}
