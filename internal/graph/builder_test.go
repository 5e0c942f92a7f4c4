package graph

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/xplain/internal/canon"
	"github.com/roach88/xplain/internal/model"
)

func newTestBuilder(trivial ...string) *Builder {
	return NewBuilder(canon.Default(), trivial)
}

func nodeIDs(g *Graph) []string {
	var ids []string
	for _, n := range g.Nodes() {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestBuild_TrivialOpFiltered(t *testing.T) {
	ops := []model.OperationRecord{
		{OpType: "Conv", Name: "Conv_0", Inputs: []string{"x"}, Outputs: []string{"y"}},
		{OpType: "Identity", Inputs: []string{"y"}, Outputs: []string{"z"}},
	}

	g := newTestBuilder("Identity").Build(ops)

	assert.Equal(t, []string{"Conv_0", "x", "y"}, nodeIDs(g))
	assert.Equal(t, []Edge{{"x", "Conv_0"}, {"Conv_0", "y"}}, g.Edges())
	assert.False(t, g.HasNode("z"))
}

func TestBuild_NodeAttributes(t *testing.T) {
	ops := []model.OperationRecord{
		{OpType: "Gemm", Name: "fc", Inputs: []string{"h"}, Outputs: []string{"logits"}},
	}

	g := newTestBuilder().Build(ops)

	fc, ok := g.Node("fc")
	require.True(t, ok)
	assert.Equal(t, Node{ID: "fc", RawLabel: "Gemm", Category: canon.CategoryMatMul, Kind: KindOperation}, fc)

	h, ok := g.Node("h")
	require.True(t, ok)
	assert.Equal(t, Node{ID: "h", RawLabel: "h", Category: "h", Kind: KindValue}, h)
}

func TestBuild_SynthesizedIDsUseFullIndex(t *testing.T) {
	ops := []model.OperationRecord{
		{OpType: "Constant", Outputs: []string{"c"}},
		{OpType: "Dropout", Inputs: []string{"c"}, Outputs: []string{"d"}},
		{OpType: "Relu", Inputs: []string{"d"}, Outputs: []string{"r"}},
		{OpType: "Relu", Inputs: []string{"r"}, Outputs: []string{"s"}},
	}

	g := newTestBuilder(DefaultTrivialKinds...).Build(ops)

	assert.True(t, g.HasNode("Relu_2"))
	assert.True(t, g.HasNode("Relu_3"))
	assert.False(t, g.HasNode("Relu_0"))
	// d was produced by a trivial op, so it only appears as an unlinked value.
	assert.True(t, g.HasNode("d"))
	assert.False(t, g.HasNode("c"))
}

func TestBuild_ValueCategoryFallsBackToCanonicalizer(t *testing.T) {
	ops := []model.OperationRecord{
		{OpType: "Add", Name: "add", Inputs: []string{"onnx::Conv_5", "Relu"}, Outputs: []string{"o"}},
	}

	g := newTestBuilder().Build(ops)

	v, _ := g.Node("onnx::Conv_5")
	assert.Equal(t, canon.CategoryConv, v.Category)
	r, _ := g.Node("Relu")
	assert.Equal(t, canon.CategoryActivation, r.Category)
	assert.Equal(t, KindValue, r.Kind)
}

func TestBuild_ParallelEdgesKept(t *testing.T) {
	ops := []model.OperationRecord{
		{OpType: "Mul", Name: "square", Inputs: []string{"x", "x"}, Outputs: []string{"y"}},
	}

	g := newTestBuilder().Build(ops)

	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, []Edge{{"x", "square"}, {"x", "square"}, {"square", "y"}}, g.Edges())
}

func TestBuild_OperationReplacesValueNodeInPlace(t *testing.T) {
	ops := []model.OperationRecord{
		{OpType: "Relu", Name: "a", Inputs: []string{"b"}, Outputs: []string{"c"}},
		{OpType: "Conv", Name: "b", Inputs: []string{"x"}, Outputs: []string{"y"}},
	}

	g := newTestBuilder().Build(ops)

	assert.Equal(t, []string{"a", "b", "c", "x", "y"}, nodeIDs(g))
	b, _ := g.Node("b")
	assert.Equal(t, KindOperation, b.Kind)
	assert.Equal(t, canon.CategoryConv, b.Category)
}

func TestBuild_Empty(t *testing.T) {
	g := newTestBuilder().Build(nil)
	assert.True(t, g.IsEmpty())
	assert.Empty(t, g.Nodes())
	assert.Empty(t, g.Edges())
}

func TestBuild_InputNotMutated(t *testing.T) {
	ops := []model.OperationRecord{
		{OpType: "Conv", Inputs: []string{"x"}, Outputs: []string{"y"}},
	}
	snapshot := []model.OperationRecord{
		{OpType: "Conv", Inputs: []string{"x"}, Outputs: []string{"y"}},
	}

	newTestBuilder().Build(ops)

	if diff := cmp.Diff(snapshot, ops); diff != "" {
		t.Errorf("ops mutated (-want +got):\n%s", diff)
	}
}

func TestBuildFrom_SourceFailure(t *testing.T) {
	src := func() ([]model.OperationRecord, error) {
		return nil, errors.New("protobuf: truncated")
	}

	g, diag := newTestBuilder().BuildFrom(src)

	require.NotNil(t, g)
	assert.True(t, g.IsEmpty())
	require.NotNil(t, diag)
	assert.Contains(t, diag.String(), "protobuf: truncated")
	assert.Contains(t, diag.String(), "check upstream export")
}

func TestBuildFrom_Success(t *testing.T) {
	src := func() ([]model.OperationRecord, error) {
		return []model.OperationRecord{{OpType: "Relu", Inputs: []string{"a"}, Outputs: []string{"b"}}}, nil
	}

	g, diag := newTestBuilder().BuildFrom(src)

	assert.Nil(t, diag)
	assert.Equal(t, 3, g.NodeCount())
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "model.yaml")
	require.NoError(t, os.WriteFile(good, []byte("model: m\nops:\n  - op_type: Conv\n    inputs: [x]\n    outputs: [y]\n"), 0644))

	g, diag := newTestBuilder().BuildFrom(FileSource(good))
	assert.Nil(t, diag)
	assert.Equal(t, []string{"Conv_0", "x", "y"}, nodeIDs(g))

	g, diag = newTestBuilder().BuildFrom(FileSource(filepath.Join(dir, "missing.yaml")))
	require.NotNil(t, diag)
	assert.True(t, g.IsEmpty())
	var loadErr *model.LoadError
	assert.True(t, errors.As(diag.Err, &loadErr))
}

func TestAddEdge_PanicsOnDanglingEndpoint(t *testing.T) {
	g := New()
	g.setNode(Node{ID: "a"})
	assert.Panics(t, func() { g.addEdge("a", "missing") })
}
