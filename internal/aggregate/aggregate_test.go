package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nami-dev/nami/agent"
)

func contrib(role, text string) Contribution {
	return Contribution{Role: role, Output: &agent.Output{Text: text}}
}

func TestConsensusFullAgreement(t *testing.T) {
	contribs := []Contribution{
		contrib("researcher-1", "- Qubits are fragile.\n- Error correction is essential."),
		contrib("researcher-2", "* qubits are fragile\n* Error correction is essential!"),
		contrib("researcher-3", "Qubits are fragile.\nerror correction is essential"),
	}

	merged, err := Merge(contribs, 3, PolicyConsensus)
	require.NoError(t, err)

	assert.Len(t, merged.Agreements, 2)
	assert.Empty(t, merged.Divergences)
	assert.False(t, merged.PartialConsensus)
	assert.Equal(t, []string{"researcher-1", "researcher-2", "researcher-3"}, merged.Contributors)
	assert.Contains(t, merged.Text, "## Consensus Synthesis")
	assert.NotContains(t, merged.Text, "Points of Divergence")
}

func TestConsensusSurfacesDivergences(t *testing.T) {
	contribs := []Contribution{
		contrib("researcher-1", "Shared claim.\nOnly one saw this."),
		contrib("researcher-2", "Shared claim."),
	}

	merged, err := Merge(contribs, 2, PolicyConsensus)
	require.NoError(t, err)

	assert.Equal(t, []string{"Shared claim."}, merged.Agreements)
	require.Len(t, merged.Divergences, 1)
	assert.Contains(t, merged.Divergences[0], "Only one saw this.")
	assert.Contains(t, merged.Divergences[0], "[divergent: researcher-1]")
	assert.Contains(t, merged.Text, "## Points of Divergence")
}

func TestConsensusPartial(t *testing.T) {
	contribs := []Contribution{
		contrib("researcher-1", "A lone finding."),
	}

	merged, err := Merge(contribs, 3, PolicyConsensus)
	require.NoError(t, err)

	assert.True(t, merged.PartialConsensus)
	assert.Contains(t, merged.Text, "1 of 3 expected contributions")
}

func TestConsensusDeterministic(t *testing.T) {
	contribs := []Contribution{
		contrib("researcher-1", "First claim.\nSecond claim."),
		contrib("researcher-2", "Second claim.\nThird claim."),
		contrib("researcher-3", "Second claim.\nFirst claim."),
	}

	first, err := Merge(contribs, 3, PolicyConsensus)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Merge(contribs, 3, PolicyConsensus)
		require.NoError(t, err)
		assert.Equal(t, first.Text, again.Text)
		assert.Equal(t, first.Divergences, again.Divergences)
	}
}

func TestDebateTwoPositions(t *testing.T) {
	contribs := []Contribution{
		contrib("advocate", "Mars is reachable.\nThe cost is justified."),
		contrib("skeptic", "Mars is reachable.\nThe cost is prohibitive."),
	}

	merged, err := Merge(contribs, 2, PolicyDebate)
	require.NoError(t, err)

	assert.Contains(t, merged.Text, "### Position: advocate")
	assert.Contains(t, merged.Text, "### Position: skeptic")
	assert.Equal(t, []string{"Mars is reachable."}, merged.Agreements)
	require.Len(t, merged.Divergences, 2)
	assert.Contains(t, merged.Divergences[0], "[advocate only]")
	assert.Contains(t, merged.Divergences[1], "[skeptic only]")
	assert.Contains(t, merged.Text, "### Open Disagreements")
}

func TestDebateSingleSurvivor(t *testing.T) {
	contribs := []Contribution{
		contrib("advocate", "Mars is reachable."),
	}

	merged, err := Merge(contribs, 2, PolicyDebate)
	require.NoError(t, err)

	assert.True(t, merged.PartialConsensus)
	assert.Contains(t, merged.Text, "only the advocate position is available")
	assert.Empty(t, merged.Divergences)
}

func TestDebateRequiresTwoDeclaredRoles(t *testing.T) {
	contribs := []Contribution{
		contrib("a", "x"), contrib("b", "y"), contrib("c", "z"),
	}
	_, err := Merge(contribs, 3, PolicyDebate)
	assert.Error(t, err)
}

func TestMergeRejectsEmptyAndOverfull(t *testing.T) {
	_, err := Merge(nil, 3, PolicyConsensus)
	assert.Error(t, err)

	_, err = Merge([]Contribution{contrib("a", "x"), contrib("b", "y")}, 1, PolicyConsensus)
	assert.Error(t, err)
}

func TestMergeUnknownPolicy(t *testing.T) {
	_, err := Merge([]Contribution{contrib("a", "x")}, 1, Policy("majority"))
	assert.Error(t, err)
}

func TestPolicyValid(t *testing.T) {
	assert.True(t, PolicyConsensus.Valid())
	assert.True(t, PolicyDebate.Valid())
	assert.False(t, Policy("majority").Valid())
	assert.False(t, Policy("").Valid())
}
