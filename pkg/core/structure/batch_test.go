package structure

import (
	"context"
	"testing"

	"github.com/scienceol/molbank/pkg/common/code"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatch_Render(t *testing.T) {
	eng, raw := chemTestEngine()
	b := NewBatch(context.Background(), 4)
	defer b.Close()

	reqs := []RenderRequest{
		{Structure: "CCO"},
		{Structure: "invalid"},
		{Structure: "c1ccccc1", SubStructure: "c"},
		{Structure: "CC(=O)Oc1ccccc1C(=O)O", Width: 400, Height: 300},
	}
	items, err := b.Render(context.Background(), eng, reqs)
	require.NoError(t, err)
	require.Len(t, items, len(reqs))

	for i, it := range items {
		assert.Equal(t, i, it.Index)
	}
	assert.Zero(t, items[0].Code)
	assert.Contains(t, items[0].SVG, "<svg")
	assert.Equal(t, code.InvalidStructureErr.Int(), items[1].Code)
	assert.Empty(t, items[1].SVG)
	assert.Contains(t, items[2].SVG, "<ellipse")
	assert.Contains(t, items[3].SVG, "width='400px'")
	assert.Zero(t, raw.Live())
}

func TestBatch_Canceled(t *testing.T) {
	fake := newFakeEngine()
	b := NewBatch(context.Background(), 2)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	items, err := b.Render(ctx, fake, []RenderRequest{{Structure: "CCO"}, {Structure: "CCN"}})
	assert.ErrorIs(t, err, context.Canceled)
	for _, it := range items {
		assert.Equal(t, code.RenderCanceledErr.Int(), it.Code)
	}
	assert.Empty(t, fake.SVGs())
}
