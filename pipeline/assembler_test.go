package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/thermoflow/errors"
	"github.com/c360/thermoflow/stage"
)

type sliceSource struct {
	values []float64
	pos    int
}

func (p *sliceSource) Next() (float64, bool) {
	if p.pos >= len(p.values) {
		return 0, false
	}
	v := p.values[p.pos]
	p.pos++
	return v, true
}

func TestAssemble_ChainOrderAndIndices(t *testing.T) {
	specs := []stage.Spec{
		{Kind: stage.KindAverage, N: 3},
		{Kind: stage.KindClip, Min: 0, Max: 100},
		{Kind: stage.KindIdentity},
	}

	chain, err := Assemble(&sliceSource{values: []float64{50}}, specs, nil)
	require.NoError(t, err)

	require.Equal(t, 3, chain.Len())
	assert.Equal(t, stage.KindAverage, chain.Stages()[0].Kind())
	assert.Equal(t, stage.KindClip, chain.Stages()[1].Kind())
	assert.Equal(t, stage.KindIdentity, chain.Stages()[2].Kind())
}

func TestAssemble_EvaluatesThroughAllStages(t *testing.T) {
	specs := []stage.Spec{
		{Kind: stage.KindAverage, N: 3},
		{Kind: stage.KindClip, Min: 12, Max: 18},
	}

	chain, err := Assemble(&sliceSource{values: []float64{10, 20, 30, 40}}, specs, nil)
	require.NoError(t, err)

	// Average(3) yields 10, 15, 20, 30; Clip(12,18) clamps to 12, 15, 18, 18.
	var out []float64
	for {
		v, ok := chain.Next()
		if !ok {
			break
		}
		out = append(out, v)
	}
	assert.Equal(t, []float64{12, 15, 18, 18}, out)
}

func TestAssemble_InvalidSpecRejected(t *testing.T) {
	specs := []stage.Spec{
		{Kind: stage.KindAverage, N: 3},
		{Kind: stage.KindClip, Min: 100, Max: 30},
	}

	_, err := Assemble(&sliceSource{}, specs, nil)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
	assert.Contains(t, err.Error(), "stage 1")
}

func TestAssemble_UnknownKindRejected(t *testing.T) {
	_, err := Assemble(&sliceSource{}, []stage.Spec{{Kind: "Smooth"}}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnknownStage)
}

func TestAssemble_NilSourceRejected(t *testing.T) {
	_, err := Assemble(nil, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

type indexEmitter struct{ index int }

func (e *indexEmitter) State(string, any) {}
func (e *indexEmitter) Output(float64)    {}

func TestAssemble_EmitterPerIndex(t *testing.T) {
	specs := []stage.Spec{
		{Kind: stage.KindIdentity},
		{Kind: stage.KindIdentity},
		{Kind: stage.KindIdentity},
	}

	var requested []int
	_, err := Assemble(&sliceSource{}, specs, func(index int) stage.Emitter {
		requested = append(requested, index)
		return &indexEmitter{index: index}
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, requested)
}
