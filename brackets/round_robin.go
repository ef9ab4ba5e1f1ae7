package brackets

import "fmt"

// byeSlot marks the dummy entry appended for odd team counts. Pairings that
// touch it are discarded, giving one team per round a rest.
const byeSlot = -1

// generateRoundRobin builds a circle-method (Berger table) schedule: team 0
// stays fixed while the remaining slots rotate, so every team meets every
// other exactly once and never twice in the same round.
func generateRoundRobin(params GenerateParams) (*BracketData, error) {
	ids := roundRobinTeamIDs(params)

	rounds, matches := wheelSchedule(ids, 0)

	return &BracketData{
		Format:  FormatRoundRobin,
		Rounds:  rounds,
		Matches: matches,
	}, nil
}

// roundRobinTeamIDs returns the team ids to schedule, synthesizing 1..n when
// only a count was supplied.
func roundRobinTeamIDs(params GenerateParams) []int {
	if len(params.TeamIDs) > 0 {
		ids := make([]int, len(params.TeamIDs))
		copy(ids, params.TeamIDs)
		return ids
	}
	ids := make([]int, params.TeamCount)
	for i := range ids {
		ids[i] = i + 1
	}
	return ids
}

// wheelSchedule produces the rotation rounds for the given ids, numbering
// rounds starting after roundOffset. Odd-sized fields get a dummy slot whose
// pairings are dropped.
func wheelSchedule(ids []int, roundOffset int) ([]*Round, []*Match) {
	if len(ids)%2 != 0 {
		ids = append(ids, byeSlot)
	}
	n := len(ids)
	numRounds := n - 1
	half := n / 2

	fixed := ids[0]
	rotating := ids[1:]

	rounds := make([]*Round, 0, numRounds)
	matches := make([]*Match, 0, numRounds*half)

	for r := 0; r < numRounds; r++ {
		roundNumber := roundOffset + r + 1
		round := &Round{
			Number:  roundNumber,
			Name:    fmt.Sprintf("Round %d", roundNumber),
			Matches: make([]*Match, 0, half),
		}

		appendPairing := func(team1, team2 int) {
			if team1 == byeSlot || team2 == byeSlot {
				return
			}
			m := &Match{
				ID:      fmt.Sprintf("R%dM%d", roundNumber, len(round.Matches)+1),
				Round:   roundNumber,
				Index:   len(round.Matches),
				Team1ID: intPtr(team1),
				Team2ID: intPtr(team2),
				Status:  MatchPending,
			}
			round.Matches = append(round.Matches, m)
			matches = append(matches, m)
		}

		// The fixed team's opponent is the one rotating slot left
		// uncovered by the pair formula below.
		appendPairing(fixed, rotating[(r+n-2)%(n-1)])
		for i := 1; i < half; i++ {
			appendPairing(rotating[(r+i-1)%(n-1)], rotating[(r+n-2-i)%(n-1)])
		}

		rounds = append(rounds, round)
	}

	return rounds, matches
}
