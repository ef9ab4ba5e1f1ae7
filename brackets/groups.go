package brackets

// defaultGroupSize drives the group count when none is requested: one group
// per four teams.
const defaultGroupSize = 4

// defaultAdvancingPerGroup is how many teams of each group reach the
// knockout stage unless configured otherwise.
const defaultAdvancingPerGroup = 2

// generateGroups computes the group layout only. Group matches are entered
// externally; standings are derived from their results later.
func generateGroups(params GenerateParams) (*BracketData, error) {
	groupCount, teamsPerGroup := groupLayout(params.teamCount(), params.GroupCount)

	return &BracketData{
		Format:        FormatGroups,
		GroupCount:    groupCount,
		TeamsPerGroup: teamsPerGroup,
	}, nil
}

// generateGroupsKnockout stitches the group layout together with a single
// elimination playoff sized for the advancing teams. The playoff's first
// round stays unseeded until the group stage concludes.
func generateGroupsKnockout(params GenerateParams) (*BracketData, error) {
	groupCount, teamsPerGroup := groupLayout(params.teamCount(), params.GroupCount)

	advancing := params.AdvancingPerGroup
	if advancing < 1 {
		advancing = defaultAdvancingPerGroup
	}
	playoffTeamCount := groupCount * advancing

	playoff, err := generateSingleElimination(GenerateParams{
		TeamCount:       playoffTeamCount,
		ThirdPlaceMatch: params.ThirdPlaceMatch,
	})
	if err != nil {
		return nil, err
	}

	return &BracketData{
		Format:        FormatGroupsKnockout,
		GroupCount:    groupCount,
		TeamsPerGroup: teamsPerGroup,
		Rounds:        playoff.Rounds,
	}, nil
}

func groupLayout(teamCount, requestedGroups int) (groupCount, teamsPerGroup int) {
	groupCount = requestedGroups
	if groupCount <= 0 {
		groupCount = ceilDiv(teamCount, defaultGroupSize)
	}
	teamsPerGroup = ceilDiv(teamCount, groupCount)
	return groupCount, teamsPerGroup
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
