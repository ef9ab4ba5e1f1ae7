package brackets

import (
	"fmt"
	"math"
)

// GrandFinalMatchID is the structural id of the single deciding match
// between the winners-bracket and losers-bracket champions.
const GrandFinalMatchID = "GF"

// generateDoubleElimination builds a winners bracket shaped like single
// elimination, a losers bracket of 2*rounds-2 rounds, and a grand final.
// Every winners-bracket match routes its loser into the losers bracket:
// round one two-per-match, later rounds one-to-one by index, and the
// winners final into the losers final.
func generateDoubleElimination(params GenerateParams) (*BracketData, error) {
	n := params.teamCount()

	numRounds := int(math.Ceil(math.Log2(float64(n))))
	bracketSize := 1 << uint(numRounds)
	byeCount := bracketSize - n
	numLoserRounds := 2*numRounds - 2

	rounds := make([]*Round, 0, numRounds+numLoserRounds+1)

	// Winners bracket.
	for r := 1; r <= numRounds; r++ {
		matchCount := bracketSize >> uint(r)
		name := fmt.Sprintf("Winners Round %d", r)
		if r == numRounds {
			name = "Winners Final"
		}
		round := &Round{
			Number:  r,
			Name:    name,
			Lane:    LaneWinners,
			Matches: make([]*Match, 0, matchCount),
		}
		for i := 0; i < matchCount; i++ {
			m := &Match{
				ID:     wbMatchID(r, i),
				Round:  r,
				Index:  i,
				Status: MatchPending,
			}
			if r < numRounds {
				m.NextMatchID = strPtr(wbMatchID(r+1, i/2))
			} else {
				m.NextMatchID = strPtr(GrandFinalMatchID)
			}
			switch {
			case numLoserRounds == 0:
				// Two-team bracket: the only loser drops straight
				// into the grand final.
				m.LoserNextMatchID = strPtr(GrandFinalMatchID)
			case r == 1:
				m.LoserNextMatchID = strPtr(lbMatchID(1, i/2))
			case r == numRounds:
				m.LoserNextMatchID = strPtr(lbMatchID(numLoserRounds, 0))
			default:
				m.LoserNextMatchID = strPtr(lbMatchID(r, i))
			}
			round.Matches = append(round.Matches, m)
		}
		rounds = append(rounds, round)
	}

	seedFirstRound(rounds, params.TeamIDs, byeCount)

	// Losers bracket. Rounds keep globally increasing numbers while match
	// ids use lane-local indices.
	for r := 1; r <= numLoserRounds; r++ {
		matchCount := lbMatchCount(bracketSize, r)
		name := fmt.Sprintf("Losers Round %d", r)
		if r == numLoserRounds {
			name = "Losers Final"
		}
		round := &Round{
			Number:  numRounds + r,
			Name:    name,
			Lane:    LaneLosers,
			Matches: make([]*Match, 0, matchCount),
		}
		for i := 0; i < matchCount; i++ {
			m := &Match{
				ID:     lbMatchID(r, i),
				Round:  numRounds + r,
				Index:  i,
				Status: MatchPending,
			}
			if r == numLoserRounds {
				m.NextMatchID = strPtr(GrandFinalMatchID)
			} else if lbMatchCount(bracketSize, r+1) == matchCount {
				m.NextMatchID = strPtr(lbMatchID(r+1, i))
			} else {
				m.NextMatchID = strPtr(lbMatchID(r+1, i/2))
			}
			round.Matches = append(round.Matches, m)
		}
		rounds = append(rounds, round)
	}

	grandFinal := &Round{
		Number: numRounds + numLoserRounds + 1,
		Name:   "Grand Final",
		Lane:   LaneGrandFinal,
		Matches: []*Match{{
			ID:     GrandFinalMatchID,
			Round:  numRounds + numLoserRounds + 1,
			Index:  0,
			Status: MatchPending,
		}},
	}
	rounds = append(rounds, grandFinal)

	return &BracketData{
		Format: FormatDoubleElimination,
		Rounds: rounds,
	}, nil
}

// lbMatchCount is ceil(bracketSize / 2^(ceil(r/2)+1)); with bracketSize a
// power of two the shift is exact and bottoms out at one match.
func lbMatchCount(bracketSize, r int) int {
	count := bracketSize >> uint((r+1)/2+1)
	if count < 1 {
		count = 1
	}
	return count
}

func wbMatchID(round, index int) string {
	return fmt.Sprintf("WR%dM%d", round, index+1)
}

func lbMatchID(round, index int) string {
	return fmt.Sprintf("LR%dM%d", round, index+1)
}
