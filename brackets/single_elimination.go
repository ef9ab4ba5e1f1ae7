package brackets

import (
	"fmt"
	"math"
)

// ThirdPlaceMatchID is the structural id of the optional third-place match.
// Both semi-final losers are routed into it.
const ThirdPlaceMatchID = "3P"

// generateSingleElimination builds a knockout tree for the given team count.
// With n teams it produces ceil(log2(n)) rounds over a bracket of the next
// power of two; the missing slots become byes in round one, taken by the
// highest seeds.
func generateSingleElimination(params GenerateParams) (*BracketData, error) {
	n := params.teamCount()

	numRounds := int(math.Ceil(math.Log2(float64(n))))
	bracketSize := 1 << uint(numRounds)
	byeCount := bracketSize - n

	rounds := make([]*Round, 0, numRounds+1)
	for r := 1; r <= numRounds; r++ {
		matchCount := bracketSize >> uint(r)
		round := &Round{
			Number:  r,
			Name:    roundName(numRounds-r, r),
			Matches: make([]*Match, 0, matchCount),
		}
		for i := 0; i < matchCount; i++ {
			m := &Match{
				ID:     seMatchID(r, i),
				Round:  r,
				Index:  i,
				Status: MatchPending,
			}
			if r < numRounds {
				m.NextMatchID = strPtr(seMatchID(r+1, i/2))
			}
			round.Matches = append(round.Matches, m)
		}
		rounds = append(rounds, round)
	}

	seedFirstRound(rounds, params.TeamIDs, byeCount)

	if params.ThirdPlaceMatch && numRounds >= 2 {
		thirdPlace := &Match{
			ID:     ThirdPlaceMatchID,
			Round:  numRounds + 1,
			Index:  0,
			Status: MatchPending,
		}
		for _, semi := range rounds[numRounds-2].Matches {
			semi.LoserNextMatchID = strPtr(ThirdPlaceMatchID)
		}
		rounds = append(rounds, &Round{
			Number:  numRounds + 1,
			Name:    "Third Place Match",
			Matches: []*Match{thirdPlace},
		})
	}

	return &BracketData{
		Format: FormatSingleElimination,
		Rounds: rounds,
	}, nil
}

// seedFirstRound writes the seeding order into round one. The first byeCount
// matches each take a single team that advances unopposed; the remaining
// matches take the leftover teams two at a time. Known bye winners are
// resolved immediately and propagated into round two.
func seedFirstRound(rounds []*Round, teamIDs []int, byeCount int) {
	firstRound := rounds[0].Matches
	for i := 0; i < byeCount && i < len(firstRound); i++ {
		firstRound[i].AutoAdvance = true
	}

	if len(teamIDs) == 0 {
		return
	}

	next := 0
	for i, m := range firstRound {
		if i < byeCount {
			if next < len(teamIDs) {
				m.Team1ID = intPtr(teamIDs[next])
				next++
				resolveBye(rounds, m)
			}
			continue
		}
		if next < len(teamIDs) {
			m.Team1ID = intPtr(teamIDs[next])
			next++
		}
		if next < len(teamIDs) {
			m.Team2ID = intPtr(teamIDs[next])
			next++
		}
	}
}

// resolveBye completes a bye match and places its team into the linked slot
// of the following round.
func resolveBye(rounds []*Round, m *Match) {
	m.Status = MatchCompleted
	m.WinnerID = m.Team1ID
	if m.NextMatchID == nil || len(rounds) < 2 {
		return
	}
	next := rounds[1].Matches[m.Index/2]
	if m.Index%2 == 0 {
		next.Team1ID = m.Team1ID
	} else {
		next.Team2ID = m.Team1ID
	}
}

func seMatchID(round, index int) string {
	return fmt.Sprintf("R%dM%d", round, index+1)
}
