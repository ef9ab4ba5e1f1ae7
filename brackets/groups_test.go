package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupsDefaultLayout(t *testing.T) {
	data, err := Generate(GenerateParams{
		Format:    FormatGroups,
		TeamCount: 16,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, data.GroupCount)
	assert.Equal(t, 4, data.TeamsPerGroup)
	assert.Empty(t, data.Rounds)
}

func TestGroupsUnevenLayout(t *testing.T) {
	data, err := Generate(GenerateParams{
		Format:    FormatGroups,
		TeamCount: 10,
	})
	require.NoError(t, err)

	// ceil(10/4) groups, each holding up to ceil(10/3) teams.
	assert.Equal(t, 3, data.GroupCount)
	assert.Equal(t, 4, data.TeamsPerGroup)
}

func TestGroupsRequestedCount(t *testing.T) {
	data, err := Generate(GenerateParams{
		Format:     FormatGroups,
		TeamCount:  12,
		GroupCount: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, data.GroupCount)
	assert.Equal(t, 6, data.TeamsPerGroup)
}

func TestGroupsKnockoutPlayoffShape(t *testing.T) {
	data, err := Generate(GenerateParams{
		Format:    FormatGroupsKnockout,
		TeamCount: 16,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, data.GroupCount)

	// 4 groups x 2 advancing feed an 8-team knockout: quarters on down.
	require.Len(t, data.Rounds, 3)
	assert.Equal(t, "Quarter-Finals", data.Rounds[0].Name)
	require.Len(t, data.Rounds[0].Matches, 4)

	// The playoff stays unseeded until the group stage ends.
	for _, m := range data.Rounds[0].Matches {
		assert.Nil(t, m.Team1ID)
		assert.Nil(t, m.Team2ID)
	}
}

func TestGroupsKnockoutCustomAdvancing(t *testing.T) {
	data, err := Generate(GenerateParams{
		Format:            FormatGroupsKnockout,
		TeamCount:         8,
		GroupCount:        2,
		AdvancingPerGroup: 1,
	})
	require.NoError(t, err)

	// 2 groups x 1 advancing is a straight final.
	require.Len(t, data.Rounds, 1)
	assert.Equal(t, "Final", data.Rounds[0].Name)
}
