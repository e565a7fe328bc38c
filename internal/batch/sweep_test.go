package batch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/cooldown/internal/thermal"
)

func TestSweepKeepsOrderAndIsolatesFailures(t *testing.T) {
	flows := []float64{30, 50, 0, 80}
	scenarios := make([]thermal.Inputs, len(flows))
	for i, f := range flows {
		in := referenceInputs()
		in.GasFlowNm3h = f
		scenarios[i] = in
	}

	variants, err := New().Sweep(context.Background(), scenarios)
	require.NoError(t, err)
	require.Len(t, variants, len(flows))

	for i, v := range variants {
		assert.Equal(t, flows[i], v.Inputs.GasFlowNm3h)
	}

	assert.ErrorIs(t, variants[2].Err, thermal.ErrStall)
	assert.Nil(t, variants[2].Result)

	for _, i := range []int{0, 1, 3} {
		require.NoError(t, variants[i].Err)
		require.NotNil(t, variants[i].Result)
	}

	// more flow, faster cooldown
	assert.Greater(t, variants[0].Result.Totals.Elapsed, variants[1].Result.Totals.Elapsed)
	assert.Greater(t, variants[1].Result.Totals.Elapsed, variants[3].Result.Totals.Elapsed)
}

func TestSweepCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Sweep(ctx, []thermal.Inputs{referenceInputs(), referenceInputs()})
	assert.ErrorIs(t, err, context.Canceled)
}
