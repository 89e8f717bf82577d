package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEdgeValidate(t *testing.T) {
	e := &Edge{ID: "e1", EdgeType: EdgeTypeLink, SourceID: "a", TargetID: "b"}
	assert.NoError(t, e.Validate())

	e.EdgeType = "FRIEND"
	assert.True(t, IsInvalidData(e.Validate()))

	e.EdgeType = EdgeTypeNest
	e.SourceID = ""
	assert.True(t, IsInvalidData(e.Validate()))

	e.SourceID = "a"
	e.TargetID = ""
	assert.True(t, IsInvalidData(e.Validate()))
}

func TestValidEdgeType(t *testing.T) {
	for _, et := range []EdgeType{EdgeTypeLink, EdgeTypeNest, EdgeTypeSequence, EdgeTypeAffinity} {
		assert.True(t, ValidEdgeType(et))
	}
	assert.False(t, ValidEdgeType("link"), "edge types are case-sensitive")
	assert.False(t, ValidEdgeType(""))
}

func TestEdgeClone(t *testing.T) {
	e := &Edge{
		ID:            "e1",
		EdgeType:      EdgeTypeSequence,
		SourceID:      "a",
		TargetID:      "b",
		Label:         StringPtr("next"),
		SequenceOrder: IntPtr(3),
	}
	c := e.Clone()
	assert.Equal(t, e, c)

	*c.Label = "prev"
	*c.SequenceOrder = 9
	assert.Equal(t, "next", *e.Label)
	assert.Equal(t, 3, *e.SequenceOrder)
}
