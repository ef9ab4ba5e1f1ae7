package brackets

import "fmt"

// generateLeague builds a league fixture list from the round-robin wheel.
// With two legs the whole first-leg schedule is mirrored: every fixture is
// repeated with home and away swapped, offset by the first leg's rounds.
func generateLeague(params GenerateParams) (*BracketData, error) {
	ids := roundRobinTeamIDs(params)

	rounds, matches := wheelSchedule(ids, 0)

	legs := params.Legs
	if legs < 1 {
		legs = 1
	}

	if legs > 1 {
		firstLegRounds := len(rounds)
		returnRounds := make([]*Round, 0, firstLegRounds)
		for _, leg := range rounds {
			roundNumber := leg.Number + firstLegRounds
			round := &Round{
				Number:  roundNumber,
				Name:    fmt.Sprintf("Round %d", roundNumber),
				Matches: make([]*Match, 0, len(leg.Matches)),
			}
			for i, first := range leg.Matches {
				m := &Match{
					ID:      fmt.Sprintf("R%dM%d", roundNumber, i+1),
					Round:   roundNumber,
					Index:   i,
					Team1ID: first.Team2ID,
					Team2ID: first.Team1ID,
					Status:  MatchPending,
				}
				round.Matches = append(round.Matches, m)
				matches = append(matches, m)
			}
			returnRounds = append(returnRounds, round)
		}
		rounds = append(rounds, returnRounds...)
	}

	return &BracketData{
		Format:  FormatLeague,
		Rounds:  rounds,
		Matches: matches,
	}, nil
}
