package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/xplain/internal/canon"
	"github.com/roach88/xplain/internal/model"
)

func sampleOps() []model.OperationRecord {
	return []model.OperationRecord{
		{OpType: "Conv", Name: "conv1", Inputs: []string{"input", "w1"}, Outputs: []string{"c1"}},
		{OpType: "Relu", Name: "relu1", Inputs: []string{"c1"}, Outputs: []string{"r1"}},
		{OpType: "Conv", Name: "conv2", Inputs: []string{"r1", "w2"}, Outputs: []string{"c2"}},
		{OpType: "Add", Name: "add", Inputs: []string{"c2", "r1"}, Outputs: []string{"a"}},
		{OpType: "Flatten", Inputs: []string{"a"}, Outputs: []string{"f"}},
		{OpType: "Gemm", Name: "fc", Inputs: []string{"f", "w3"}, Outputs: []string{"logits"}},
	}
}

func TestCounts(t *testing.T) {
	g := NewBuilder(canon.Default(), DefaultTrivialKinds).Build(sampleOps())

	counts := Counts(g)

	assert.Equal(t, 2, counts.Get(canon.CategoryConv))
	assert.Equal(t, 1, counts.Get(canon.CategoryMatMul))
	assert.Equal(t, 1, counts.Get(canon.CategoryActivation))
	assert.Equal(t, 1, counts.Get(canon.CategoryAdd))
	assert.Equal(t, 0, counts.Get("Missing"))
	assert.Equal(t, g.NodeCount(), counts.Total())
}

func TestCounts_FreshEachCall(t *testing.T) {
	g := NewBuilder(canon.Default(), nil).Build(sampleOps())

	a := Counts(g)
	a[canon.CategoryConv] = 100
	assert.Equal(t, 2, Counts(g).Get(canon.CategoryConv))
}

func TestSimulate_Relabels(t *testing.T) {
	g := NewBuilder(canon.Default(), DefaultTrivialKinds).Build(sampleOps())

	fused := Simulate(g)

	for _, id := range []string{"conv1", "conv2", "fc"} {
		n, ok := fused.Node(id)
		require.True(t, ok)
		assert.Equal(t, canon.CategoryFused, n.Category, id)
	}
	relu, _ := fused.Node("relu1")
	assert.Equal(t, canon.CategoryActivation, relu.Category)

	// The original keeps its categories.
	conv, _ := g.Node("conv1")
	assert.Equal(t, canon.CategoryConv, conv.Category)
	assert.Equal(t, g.Edges(), fused.Edges())
}

func TestSimulate_CustomCategories(t *testing.T) {
	g := NewBuilder(canon.Default(), DefaultTrivialKinds).Build(sampleOps())

	fused := Simulate(g, canon.CategoryActivation)

	counts := Counts(fused)
	assert.Equal(t, 1, counts.Get(canon.CategoryFused))
	assert.Equal(t, 2, counts.Get(canon.CategoryConv))
}

func TestFusionReduction(t *testing.T) {
	r, ok := FusionReduction(CategoryCounts{"Conv": 10}, CategoryCounts{"FusedOp": 4})
	require.True(t, ok)
	assert.Equal(t, 60.0, r)

	r, ok = FusionReduction(CategoryCounts{"Conv": 3, "MatMul/Gemm": 1}, CategoryCounts{"FusedOp": 4})
	require.True(t, ok)
	assert.Equal(t, 0.0, r)

	r, ok = FusionReduction(CategoryCounts{"MatMul/Gemm": 4}, CategoryCounts{})
	require.True(t, ok)
	assert.Equal(t, 100.0, r)
}

func TestFusionReduction_Undefined(t *testing.T) {
	_, ok := FusionReduction(CategoryCounts{}, CategoryCounts{"FusedOp": 0})
	assert.False(t, ok)

	_, ok = FusionReduction(nil, nil)
	assert.False(t, ok)

	_, ok = FusionReduction(CategoryCounts{"Relu": 5}, CategoryCounts{"FusedOp": 2})
	assert.False(t, ok)
}

func TestCompare(t *testing.T) {
	before := CategoryCounts{"Conv": 2, "MatMul/Gemm": 1, "Activation": 1}
	after := CategoryCounts{"FusedOp": 3, "Activation": 1}

	cmp := Compare(before, after)

	assert.Equal(t, 3, cmp.HeavyBefore)
	assert.Equal(t, 3, cmp.FusedAfter)
	require.NotNil(t, cmp.Reduction)
	assert.Equal(t, 0.0, *cmp.Reduction)
	assert.Equal(t, []CompareRow{
		{Category: "Activation", Before: 1, After: 1},
		{Category: "Conv", Before: 2, After: 0},
		{Category: "FusedOp", Before: 0, After: 3},
		{Category: "MatMul/Gemm", Before: 1, After: 0},
	}, cmp.Rows)
}

func TestCompare_NoHeavyOps(t *testing.T) {
	cmp := Compare(CategoryCounts{"Relu": 1}, CategoryCounts{"Relu": 1})
	assert.Nil(t, cmp.Reduction)
	assert.Equal(t, []CompareRow{{Category: "Relu", Before: 1, After: 1}}, cmp.Rows)
}
