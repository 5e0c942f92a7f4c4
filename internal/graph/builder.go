package graph

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/roach88/xplain/internal/canon"
	"github.com/roach88/xplain/internal/model"
)

// DefaultTrivialKinds are the operator kinds hidden from the graph because
// they clutter it without adding meaning.
var DefaultTrivialKinds = []string{"Identity", "Dropout", "Constant", "Reshape", "Flatten"}

// Builder builds Graphs from operation records.
type Builder struct {
	canon   *canon.Canonicalizer
	trivial map[string]bool
}

// NewBuilder creates a Builder. Operations whose op_type is in trivialKinds
// are skipped.
func NewBuilder(c *canon.Canonicalizer, trivialKinds []string) *Builder {
	return &Builder{
		canon:   c,
		trivial: lo.SliceToMap(trivialKinds, func(k string) (string, bool) { return k, true }),
	}
}

// Build constructs the graph for ops.
//
// Synthesized node ids use the operation's index in the full ops slice,
// trivial operations included, so ids are stable regardless of which kinds
// are filtered. A trivial operation contributes nothing, but identifiers it
// produced still become value nodes when a later operation consumes them.
func (b *Builder) Build(ops []model.OperationRecord) *Graph {
	g := New()

	for i, op := range ops {
		if b.trivial[op.OpType] {
			continue
		}

		id := op.Name
		if id == "" {
			id = fmt.Sprintf("%s_%d", op.OpType, i)
		}
		g.setNode(Node{
			ID:       id,
			RawLabel: op.OpType,
			Category: b.canon.CategoryOf(op.OpType),
			Kind:     KindOperation,
		})

		for _, in := range op.Inputs {
			b.ensureValue(g, in)
			g.addEdge(in, id)
		}
		for _, out := range op.Outputs {
			b.ensureValue(g, out)
			g.addEdge(id, out)
		}
	}

	return g
}

// ensureValue creates a value node for id unless a node already exists.
func (b *Builder) ensureValue(g *Graph, id string) {
	if g.HasNode(id) {
		return
	}
	g.setNode(Node{
		ID:       id,
		RawLabel: id,
		Category: b.canon.CategoryOf(id),
		Kind:     KindValue,
	})
}

// Source yields the operation records of a model. It stands in for the
// external model-format parser.
type Source func() ([]model.OperationRecord, error)

// Diagnostic explains why a graph came back empty.
type Diagnostic struct {
	Message string
	Err     error
}

func (d *Diagnostic) String() string {
	if d.Err != nil {
		return fmt.Sprintf("%s: %v", d.Message, d.Err)
	}
	return d.Message
}

// BuildFrom builds the graph for the records src yields. If src fails, the
// result is an empty Graph and a Diagnostic; BuildFrom never returns an error
// so callers can always render something.
func (b *Builder) BuildFrom(src Source) (*Graph, *Diagnostic) {
	ops, err := src()
	if err != nil {
		return New(), &Diagnostic{Message: "model operations unavailable, check upstream export", Err: err}
	}
	return b.Build(ops), nil
}

// FileSource reads operation records from a model description file.
func FileSource(path string) Source {
	return func() ([]model.OperationRecord, error) {
		desc, err := model.Load(path)
		if err != nil {
			return nil, err
		}
		return desc.Ops, nil
	}
}
