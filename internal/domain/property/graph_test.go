package property_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/attribute-engine/internal/domain/modifier"
	"github.com/KirkDiggler/attribute-engine/internal/domain/property"
	apperr "github.com/KirkDiggler/attribute-engine/internal/errors"
	"github.com/KirkDiggler/attribute-engine/internal/events"
	mockrandom "github.com/KirkDiggler/attribute-engine/internal/random/mock"
)

type GraphSuite struct {
	suite.Suite
	engine *property.Engine
	source *mockrandom.ManualSource
}

func TestGraphSuite(t *testing.T) {
	suite.Run(t, new(GraphSuite))
}

func (s *GraphSuite) SetupTest() {
	s.engine, s.source = newTestEngine(s.T(), 0.5)
}

func double(_ *property.Property, v float64) float64 { return v * 2 }

type edgeSnapshot struct {
	deps       []*property.Property
	dependents []*property.Property
	depth      int
}

func snapshot(props ...*property.Property) []edgeSnapshot {
	out := make([]edgeSnapshot, 0, len(props))
	for _, p := range props {
		out = append(out, edgeSnapshot{deps: p.Dependencies(), dependents: p.Dependents(), depth: p.Depth()})
	}
	return out
}

func (s *GraphSuite) TestCycleRejectedAndGraphUnchanged() {
	a := s.engine.NewProperty("a", 1)
	b := s.engine.NewProperty("b", 1)

	s.True(a.AddDependency(b, nil))
	before := snapshot(a, b)

	s.False(b.AddDependency(a, nil))

	s.Equal(before, snapshot(a, b))
	s.True(a.DependsOn(b))
	s.False(b.DependsOn(a))
}

func (s *GraphSuite) TestLongCycleRejected() {
	a := s.engine.NewProperty("a", 0)
	b := s.engine.NewProperty("b", 0)
	c := s.engine.NewProperty("c", 0)
	d := s.engine.NewProperty("d", 0)

	s.True(a.AddDependency(b, nil))
	s.True(b.AddDependency(c, nil))
	s.True(c.AddDependency(d, nil))

	s.False(d.AddDependency(a, nil))
	s.False(d.AddDependency(b, nil))
	s.Empty(d.Dependencies())
}

func (s *GraphSuite) TestDiamondIsNotACycle() {
	root := s.engine.NewProperty("root", 0)
	left := s.engine.NewProperty("left", 0)
	right := s.engine.NewProperty("right", 0)
	top := s.engine.NewProperty("top", 0)

	s.True(left.AddDependency(root, nil))
	s.True(right.AddDependency(root, nil))
	s.True(top.AddDependency(left, nil))
	s.True(top.AddDependency(right, nil))

	s.Equal(2, top.Depth())
	s.False(root.AddDependency(top, nil))
}

func (s *GraphSuite) TestSelfReferenceRejected() {
	a := s.engine.NewProperty("a", 0)

	s.False(a.AddDependency(a, nil))
	s.False(a.AddDependency(nil, nil))
	s.Empty(a.Dependencies())
}

func (s *GraphSuite) TestCrossEngineRejected() {
	other, _ := newTestEngine(s.T())
	a := s.engine.NewProperty("a", 0)
	b := other.NewProperty("b", 0)

	s.False(a.AddDependency(b, nil))
}

func (s *GraphSuite) TestRejectionEvent() {
	var got []events.Event
	id := s.engine.SubscribeRejections(func(e events.Event) error {
		got = append(got, e)
		return nil
	})
	defer s.engine.Unsubscribe(id)

	a := s.engine.NewProperty("a", 0)
	b := s.engine.NewProperty("b", 0)
	s.True(a.AddDependency(b, nil))
	s.False(b.AddDependency(a, nil))

	s.Require().Len(got, 1)
	s.Equal("b", got[0].PropertyID)
	s.Equal("a", got[0].DependencyID)
	s.True(apperr.IsGraphRejection(got[0].Err))
	s.Equal("would create a cycle", apperr.GetMeta(got[0].Err)["reason"])
}

func (s *GraphSuite) TestDepthChain() {
	a := s.engine.NewProperty("a", 0)
	b := s.engine.NewProperty("b", 0)
	c := s.engine.NewProperty("c", 0)

	s.True(a.AddDependency(b, nil))
	s.True(b.AddDependency(c, nil))

	s.Equal(0, c.Depth())
	s.Equal(1, b.Depth())
	s.Equal(2, a.Depth())

	// inserting below the chain cascades upward
	leaf := s.engine.NewProperty("leaf", 0)
	s.True(c.AddDependency(leaf, nil))
	s.Equal(1, c.Depth())
	s.Equal(3, a.Depth())

	s.True(c.RemoveDependency(leaf))
	s.Equal(2, a.Depth())
}

func (s *GraphSuite) TestDepthCeiling() {
	engine, err := property.NewEngine(&property.EngineConfig{MaxDepth: 2})
	s.Require().NoError(err)

	a := engine.NewProperty("a", 0)
	b := engine.NewProperty("b", 0)
	c := engine.NewProperty("c", 0)
	s.True(a.AddDependency(b, nil))
	s.True(b.AddDependency(c, nil))

	over := engine.NewProperty("over", 0)
	s.False(over.AddDependency(a, nil))

	under := engine.NewProperty("under", 0)
	s.False(c.AddDependency(under, nil), "would push a to depth 3")
	s.Equal(2, a.Depth())
}

func (s *GraphSuite) TestCalculatorAppliedOnAddAndOnChange() {
	a := s.engine.NewProperty("a", 0)
	b := s.engine.NewProperty("b", 5)

	s.True(a.AddDependency(b, double))
	s.Equal(10.0, a.BaseValue())
	s.True(a.HasCalculator(b))

	b.SetBaseValue(7)
	s.Equal(14.0, a.BaseValue())
	s.Equal(14.0, a.Value())
}

func (s *GraphSuite) TestCalculatorUsesComputedValue() {
	a := s.engine.NewProperty("a", 0)
	b := s.engine.NewProperty("b", 5)
	s.Require().NoError(b.AddModifier(modifier.NewScalar(modifier.KindAdd, 0, 1)))

	s.True(a.AddDependency(b, double))
	s.Equal(12.0, a.BaseValue())

	b.SetBaseValue(9)
	s.Equal(20.0, a.BaseValue())
}

func (s *GraphSuite) TestModifierChangePropagates() {
	a := s.engine.NewProperty("a", 0)
	b := s.engine.NewProperty("b", 5)
	s.True(a.AddDependency(b, double))

	buff := modifier.NewScalar(modifier.KindAdd, 0, 5)
	s.Require().NoError(b.AddModifier(buff))
	s.Equal(20.0, a.BaseValue())

	s.True(b.RemoveModifier(buff))
	s.Equal(10.0, a.BaseValue())
}

func (s *GraphSuite) TestRemovingCalculatorLeavesBaseUntouched() {
	a := s.engine.NewProperty("a", 0)
	b := s.engine.NewProperty("b", 5)

	s.True(a.AddDependency(b, double))
	s.Equal(10.0, a.BaseValue())

	// re-adding without a calculator drops it but keeps the edge
	s.True(a.AddDependency(b, nil))
	s.False(a.HasCalculator(b))
	s.True(a.DependsOn(b))

	b.SetBaseValue(100)
	s.Equal(10.0, a.BaseValue())
	s.Equal(10.0, a.Value())
}

func (s *GraphSuite) TestRemoveDependency() {
	a := s.engine.NewProperty("a", 0)
	b := s.engine.NewProperty("b", 5)
	s.True(a.AddDependency(b, double))

	s.True(a.RemoveDependency(b))
	s.False(a.RemoveDependency(b))
	s.False(a.HasCalculator(b))
	s.Empty(b.Dependents())
	s.Equal(0, a.Depth())

	b.SetBaseValue(50)
	s.Equal(10.0, a.BaseValue())
}

func (s *GraphSuite) TestChainPropagatesEagerly() {
	c := s.engine.NewProperty("c", 1)
	b := s.engine.NewProperty("b", 0)
	a := s.engine.NewProperty("a", 0)
	s.True(b.AddDependency(c, func(_ *property.Property, v float64) float64 { return v + 1 }))
	s.True(a.AddDependency(b, double))
	s.Equal(4.0, a.BaseValue())

	c.SetBaseValue(10)

	s.False(b.IsDirty())
	s.False(a.IsDirty())
	s.Equal(11.0, b.Value())
	s.Equal(22.0, a.Value())
}

func (s *GraphSuite) TestDependentWithoutCalculatorIsRecomputed() {
	s.source.SetFractions(0, 1)
	b := s.engine.NewProperty("b", 1)
	a := s.engine.NewProperty("a", 100)
	s.Require().NoError(a.AddModifier(modifier.NewRange(modifier.KindAdd, 0, 0, 10)))
	s.Equal(100.0, a.Value())

	s.True(a.AddDependency(b, nil))
	b.SetBaseValue(2)

	s.False(a.IsDirty())
	s.Equal(100.0, a.BaseValue())
	s.Equal(110.0, a.Value(), "recomputed eagerly with a fresh sample")
}

func (s *GraphSuite) TestEpsilonSuppressesRedundantUpdates() {
	a := s.engine.NewProperty("a", 0)
	b := s.engine.NewProperty("b", 1)

	updates := 0
	id := a.SubscribeBaseValue(func(events.Event) error {
		updates++
		return nil
	})
	defer a.Unsubscribe(id)

	s.True(a.AddDependency(b, func(_ *property.Property, v float64) float64 {
		if v > 0 {
			return 1
		}
		return -1
	}))
	s.Equal(1, updates)

	b.SetBaseValue(2)
	b.SetBaseValue(3)
	s.Equal(1, updates)

	b.SetBaseValue(-3)
	s.Equal(2, updates)
}

func (s *GraphSuite) TestRandomDependencyFlag() {
	leaf := s.engine.NewProperty("leaf", 0)
	mid := s.engine.NewProperty("mid", 0)
	top := s.engine.NewProperty("top", 0)

	s.True(mid.AddDependency(leaf, nil))
	s.True(top.AddDependency(mid, nil))
	s.False(top.HasRandomDependency())

	clamp := modifier.NewRange(modifier.KindClamp, 0, 0, 10)
	s.Require().NoError(leaf.AddModifier(clamp))
	s.False(top.HasRandomDependency(), "clamp ranges are never sampled")

	roll := modifier.NewRange(modifier.KindAdd, 0, 1, 6)
	s.Require().NoError(leaf.AddModifier(roll))
	s.True(leaf.HasRandomDependency())
	s.True(mid.HasRandomDependency())
	s.True(top.HasRandomDependency())

	s.True(mid.RemoveDependency(leaf))
	s.False(mid.HasRandomDependency())
	s.False(top.HasRandomDependency())
	s.True(leaf.HasRandomDependency())

	s.True(leaf.RemoveModifier(roll))
	s.False(leaf.HasRandomDependency())
}

func (s *GraphSuite) TestRandomDependencyOnEdgeAdd() {
	dice := s.engine.NewProperty("dice", 0)
	s.Require().NoError(dice.AddModifier(modifier.NewRange(modifier.KindMul, 0, 1, 2)))

	dmg := s.engine.NewProperty("dmg", 0)
	s.False(dmg.HasRandomDependency())

	s.True(dmg.AddDependency(dice, nil))
	s.True(dmg.HasRandomDependency())
}

func (s *GraphSuite) TestClearAll() {
	a := s.engine.NewProperty("a", 0)
	b := s.engine.NewProperty("b", 0)
	c := s.engine.NewProperty("c", 0)
	s.True(a.AddDependency(b, nil))
	s.True(b.AddDependency(c, double))

	b.ClearAll()

	s.Empty(b.Dependencies())
	s.Empty(b.Dependents())
	s.Empty(a.Dependencies())
	s.Empty(c.Dependents())
	s.Equal(0, a.Depth())
	s.Equal(0, b.Depth())
	s.False(b.HasCalculator(c))
}

func (s *GraphSuite) TestCalculatorMayMutateGraph() {
	b := s.engine.NewProperty("b", 1)
	a := s.engine.NewProperty("a", 0)
	other := s.engine.NewProperty("other", 0)
	s.True(other.AddDependency(b, nil))

	s.True(a.AddDependency(b, func(dep *property.Property, v float64) float64 {
		if v > 5 {
			other.RemoveDependency(dep)
		}
		return v
	}))

	b.SetBaseValue(10)

	s.Equal(10.0, a.BaseValue())
	s.False(other.DependsOn(b))
}

func (s *GraphSuite) TestCalculatorClampingItsSourceKeepsSiblingsConsistent() {
	b := s.engine.NewProperty("b", 0)
	limiter := s.engine.NewProperty("limiter", 0)
	mirror := s.engine.NewProperty("mirror", 0)

	s.Require().True(limiter.AddDependency(b, func(dep *property.Property, v float64) float64 {
		if v > 10 {
			dep.SetBaseValue(10)
		}
		return v
	}))
	s.Require().True(mirror.AddDependency(b, func(_ *property.Property, v float64) float64 { return v }))

	b.SetBaseValue(50)

	s.Equal(10.0, b.Value())
	s.Equal(10.0, limiter.BaseValue())
	s.Equal(10.0, mirror.BaseValue())
}

func (s *GraphSuite) TestReentrantPropagationTerminates() {
	engine, err := property.NewEngine(&property.EngineConfig{
		Source:   mockrandom.NewManualSource(),
		MaxDepth: 10,
	})
	s.Require().NoError(err)

	b := engine.NewProperty("b", 0)
	a := engine.NewProperty("a", 0)

	feeding := false
	calls := 0
	s.Require().True(a.AddDependency(b, func(dep *property.Property, v float64) float64 {
		if feeding {
			calls++
			dep.SetBaseValue(v + 1)
		}
		return v
	}))

	feeding = true
	b.SetBaseValue(0)

	// one calculator call per propagation level until the ceiling cuts it off
	s.Equal(10, calls)
	s.Equal(10.0, b.BaseValue())

	// the cut-off unwinds cleanly and later propagation works again
	feeding = false
	b.SetBaseValue(3)
	s.Equal(3.0, a.BaseValue())
}
