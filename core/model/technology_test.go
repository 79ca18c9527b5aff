package model

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundsRangeAndIntersect(t *testing.T) {
	lo, hi := Bounds{}.Range()
	assert.Equal(t, 0.0, lo)
	assert.True(t, math.IsInf(hi, 1))

	floor := 5.0
	b := Bounds{Min: &floor}.Intersect(AtMost(20)).Intersect(AtMost(10))
	lo, hi = b.Range()
	assert.Equal(t, 5.0, lo)
	assert.Equal(t, 10.0, hi)
	require.NoError(t, b.Validate())

	lo, hi = Fixed(3).Range()
	assert.Equal(t, lo, hi)

	assert.Error(t, b.Intersect(AtMost(1)).Validate())
	neg := -1.0
	assert.Error(t, Bounds{Min: &neg}.Validate())
}

// Intersect copies values so later changes to the inputs do not leak.
func TestBoundsIntersectCopies(t *testing.T) {
	v := 4.0
	in := Bounds{Max: &v}
	out := Bounds{}.Intersect(in)
	v = 100
	_, hi := out.Range()
	assert.Equal(t, 4.0, hi)
}

func TestTechnologyValidate(t *testing.T) {
	ok := Technology{Name: "battery", Kind: Storage, Efficiency: 0.9, DurationHours: 4}
	require.NoError(t, ok.Validate())
	assert.True(t, ok.IsStorage())

	bad := []Technology{
		{},
		{Name: "gas", CapacityCost: math.NaN()},
		{Name: "gas", Emissions: math.Inf(1)},
		{Name: "battery", Kind: Storage, Efficiency: 0.9},
		{Name: "battery", Kind: Storage, Efficiency: 0, DurationHours: 4},
	}
	for _, tech := range bad {
		assert.Error(t, tech.Validate(), "%+v", tech)
	}
}

func TestParseEnums(t *testing.T) {
	k, err := ParseTechKind("storage")
	require.NoError(t, err)
	assert.Equal(t, Storage, k)
	_, err = ParseTechKind("nuclear")
	assert.Error(t, err)

	m, err := ParseInitialSOCMode("wrap_around")
	require.NoError(t, err)
	assert.Equal(t, SOCWrapAround, m)
	assert.Equal(t, "wrap_around", m.String())
	m, err = ParseInitialSOCMode("")
	require.NoError(t, err)
	assert.Equal(t, SOCFixed, m)
	_, err = ParseInitialSOCMode("cyclic")
	assert.Error(t, err)

	o, err := ParseObjectiveKind("benefit")
	require.NoError(t, err)
	assert.Equal(t, MaximizeBenefit, o)
	assert.Equal(t, "cost", MinimizeCost.String())
}

func TestCapacityRange(t *testing.T) {
	sc := &Scenario{Bounds: []CapacityBound{
		{Technology: "wind", Bounds: AtMost(100)},
		{Technology: "wind", Node: "south", Bounds: Fixed(0)},
		{Technology: "solar", Bounds: AtMost(1)},
	}}
	_, hi := sc.CapacityRange("wind", "north").Range()
	assert.Equal(t, 100.0, hi)
	lo, hi := sc.CapacityRange("wind", "south").Range()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 0.0, hi)
	_, hi = sc.CapacityRange("gas", "north").Range()
	assert.True(t, math.IsInf(hi, 1))
}

func TestSpecificationError(t *testing.T) {
	err := Specf("s1", "missing %s", "demand")
	assert.True(t, errors.Is(err, ErrSpecification))
	assert.Equal(t, "specification s1: missing demand", err.Error())
	assert.Equal(t, "specification: x", Specf("", "x").Error())
}
