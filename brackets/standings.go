package brackets

import (
	"sort"

	"github.com/Sport-Tournaments/sport-tournaments-backend/models"
)

// Points awarded per result, football style.
const (
	PointsPerWin  = 3
	PointsPerDraw = 1
)

// GroupStanding is the computed table row of one team within a group. It is
// derived on demand from completed matches and never persisted.
type GroupStanding struct {
	RegistrationID int `json:"registration_id"`
	Played         int `json:"played"`
	Won            int `json:"won"`
	Drawn          int `json:"drawn"`
	Lost           int `json:"lost"`
	GoalsFor       int `json:"goals_for"`
	GoalsAgainst   int `json:"goals_against"`
	GoalDifference int `json:"goal_difference"`
	Points         int `json:"points"`
	Position       int `json:"position"`
}

// CalculateGroupStandings folds the group's completed matches into a ranked
// table. Every team starts at zero; only completed matches with both team
// slots and both scores count. Ranking order is points, then goal
// difference, then goals for, with registration id as the stable tail.
func CalculateGroupStandings(teamIDs []int, matches []models.Match) []GroupStanding {
	byTeam := make(map[int]*GroupStanding, len(teamIDs))
	order := make([]*GroupStanding, 0, len(teamIDs))
	for _, id := range teamIDs {
		s := &GroupStanding{RegistrationID: id}
		byTeam[id] = s
		order = append(order, s)
	}

	for _, m := range matches {
		if m.Status != models.MatchCompleted {
			continue
		}
		if m.Team1RegistrationID == nil || m.Team2RegistrationID == nil {
			continue
		}
		if m.Score1 == nil || m.Score2 == nil {
			continue
		}
		team1, ok1 := byTeam[*m.Team1RegistrationID]
		team2, ok2 := byTeam[*m.Team2RegistrationID]
		if !ok1 || !ok2 {
			continue
		}
		applyResult(team1, *m.Score1, *m.Score2)
		applyResult(team2, *m.Score2, *m.Score1)
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.RegistrationID < b.RegistrationID
	})

	standings := make([]GroupStanding, len(order))
	for i, s := range order {
		s.Position = i + 1
		standings[i] = *s
	}
	return standings
}

func applyResult(s *GroupStanding, scored, conceded int) {
	s.Played++
	s.GoalsFor += scored
	s.GoalsAgainst += conceded
	s.GoalDifference = s.GoalsFor - s.GoalsAgainst
	switch {
	case scored > conceded:
		s.Won++
		s.Points += PointsPerWin
	case scored == conceded:
		s.Drawn++
		s.Points += PointsPerDraw
	default:
		s.Lost++
	}
}
