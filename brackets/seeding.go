package brackets

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrNoKnockoutRounds  = errors.New("bracket has no knockout rounds to seed")
	ErrSeedCountMismatch = errors.New("advancing team count does not match the first knockout round")
)

// SeedKnockoutFirstRound writes the teams advancing from the group stage
// into the first knockout round. groupStandings holds one ranked table per
// group, in group display order; advancingPerGroup teams qualify from each.
//
// For an even group count the pairings are interleaved so group winners from
// adjacent groups land in opposite halves (1A v 2B, 1C v 2D, then 2A v 1B,
// 2C v 1D): in a standard four-group layout two group winners cannot meet
// before the semi-finals. Odd or irregular layouts fall back to best-vs-worst
// seeding over all qualifiers.
func SeedKnockoutFirstRound(bracket *BracketData, groupStandings [][]GroupStanding, advancingPerGroup int) error {
	if advancingPerGroup < 1 {
		advancingPerGroup = defaultAdvancingPerGroup
	}

	firstRound := firstKnockoutRound(bracket)
	if firstRound == nil {
		return ErrNoKnockoutRounds
	}

	pairs, err := knockoutPairings(groupStandings, advancingPerGroup)
	if err != nil {
		return err
	}
	if len(pairs) != len(firstRound.Matches) {
		return fmt.Errorf("%w: %d pairings for %d matches", ErrSeedCountMismatch, len(pairs), len(firstRound.Matches))
	}

	for i, p := range pairs {
		firstRound.Matches[i].Team1ID = intPtr(p[0])
		firstRound.Matches[i].Team2ID = intPtr(p[1])
	}
	return nil
}

func firstKnockoutRound(bracket *BracketData) *Round {
	for _, r := range bracket.Rounds {
		if r.Lane == LaneLosers || r.Lane == LaneGrandFinal {
			continue
		}
		if len(r.Matches) > 0 {
			return r
		}
	}
	return nil
}

func knockoutPairings(groupStandings [][]GroupStanding, advancingPerGroup int) ([][2]int, error) {
	groupCount := len(groupStandings)
	if groupCount == 0 {
		return nil, ErrSeedCountMismatch
	}

	if groupCount >= 2 && groupCount%2 == 0 && advancingPerGroup == 2 {
		return interleavedPairings(groupStandings)
	}
	return bestVersusWorstPairings(groupStandings, advancingPerGroup)
}

// interleavedPairings implements the classic two-qualifier crossing: the
// first half of the draw pairs winner[i] with runner-up[i+1], the second
// half runner-up[i] with winner[i+1], walking groups two at a time.
func interleavedPairings(groupStandings [][]GroupStanding) ([][2]int, error) {
	groupCount := len(groupStandings)
	winners := make([]int, groupCount)
	runnersUp := make([]int, groupCount)
	for i, table := range groupStandings {
		if len(table) < 2 {
			return nil, fmt.Errorf("%w: group %d has fewer than 2 ranked teams", ErrSeedCountMismatch, i+1)
		}
		winners[i] = table[0].RegistrationID
		runnersUp[i] = table[1].RegistrationID
	}

	pairs := make([][2]int, 0, groupCount)
	for i := 0; i < groupCount; i += 2 {
		pairs = append(pairs, [2]int{winners[i], runnersUp[i+1]})
	}
	for i := 0; i < groupCount; i += 2 {
		pairs = append(pairs, [2]int{runnersUp[i], winners[i+1]})
	}
	return pairs, nil
}

// bestVersusWorstPairings flattens all qualifiers, orders them by group
// position (points and goal difference breaking ties across groups), and
// pairs the top seed with the bottom seed inward.
func bestVersusWorstPairings(groupStandings [][]GroupStanding, advancingPerGroup int) ([][2]int, error) {
	qualifiers := make([]GroupStanding, 0, len(groupStandings)*advancingPerGroup)
	for i, table := range groupStandings {
		if len(table) < advancingPerGroup {
			return nil, fmt.Errorf("%w: group %d has fewer than %d ranked teams", ErrSeedCountMismatch, i+1, advancingPerGroup)
		}
		qualifiers = append(qualifiers, table[:advancingPerGroup]...)
	}

	sort.SliceStable(qualifiers, func(i, j int) bool {
		a, b := qualifiers[i], qualifiers[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		return a.GoalDifference > b.GoalDifference
	})

	if len(qualifiers)%2 != 0 {
		return nil, fmt.Errorf("%w: odd qualifier count %d", ErrSeedCountMismatch, len(qualifiers))
	}

	pairs := make([][2]int, 0, len(qualifiers)/2)
	for i := 0; i < len(qualifiers)/2; i++ {
		pairs = append(pairs, [2]int{
			qualifiers[i].RegistrationID,
			qualifiers[len(qualifiers)-1-i].RegistrationID,
		})
	}
	return pairs, nil
}
