package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStepsOrder pins the canonical execution order.
func TestStepsOrder(t *testing.T) {
	var names []string
	for _, step := range Steps() {
		names = append(names, step.Name)
		assert.NotEmpty(t, step.Description)
		assert.NotNil(t, step.Run)
	}
	assert.Equal(t, []string{
		"references",
		"transactions",
		"missing-transactions",
		"nav",
		"management-fee",
		"holdings",
		"aum",
	}, names)
}

// TestSelectStepsEmpty returns all steps in order.
func TestSelectStepsEmpty(t *testing.T) {
	steps, err := SelectSteps("")
	require.NoError(t, err)
	assert.Len(t, steps, len(Steps()))

	steps, err = SelectSteps("   ")
	require.NoError(t, err)
	assert.Len(t, steps, len(Steps()))
}

// TestSelectStepsKeepsCanonicalOrder regardless of the order given.
func TestSelectStepsKeepsCanonicalOrder(t *testing.T) {
	steps, err := SelectSteps("holdings, references,nav")
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.Equal(t, "references", steps[0].Name)
	assert.Equal(t, "nav", steps[1].Name)
	assert.Equal(t, "holdings", steps[2].Name)
}

// TestSelectStepsUnknown fails before anything runs.
func TestSelectStepsUnknown(t *testing.T) {
	_, err := SelectSteps("references,bogus,nav,also-bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
	assert.Contains(t, err.Error(), "also-bogus")
}

// TestExternalCodeRoundTrip: the natural key survives both directions.
func TestExternalCodeRoundTrip(t *testing.T) {
	assert.Equal(t, "SIAR-42", externalCode(42))

	id, ok := siarID("SIAR-42")
	require.True(t, ok)
	assert.Equal(t, "42", id)

	_, ok = siarID("OTHER-42")
	assert.False(t, ok)
}
