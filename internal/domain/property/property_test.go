package property_test

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/attribute-engine/internal/domain/modifier"
	"github.com/KirkDiggler/attribute-engine/internal/domain/property"
	apperr "github.com/KirkDiggler/attribute-engine/internal/errors"
	"github.com/KirkDiggler/attribute-engine/internal/events"
	mockrandom "github.com/KirkDiggler/attribute-engine/internal/random/mock"
)

type PropertySuite struct {
	suite.Suite
	engine *property.Engine
	source *mockrandom.ManualSource
}

func TestPropertySuite(t *testing.T) {
	suite.Run(t, new(PropertySuite))
}

func (s *PropertySuite) SetupTest() {
	s.engine, s.source = newTestEngine(s.T(), 0.5)
}

func (s *PropertySuite) TestNewPropertyIsDirty() {
	p := s.engine.NewProperty("str", 12)

	s.Equal("str", p.ID())
	s.True(p.IsDirty())
	s.Equal(12.0, p.Value())
	s.False(p.IsDirty())
	s.Equal(0, p.Depth())
}

func (s *PropertySuite) TestAddThenMulInCanonicalOrder() {
	p := s.engine.NewProperty("atk", 10)
	// attached in reverse order on purpose
	s.Require().NoError(p.AddModifier(modifier.NewScalar(modifier.KindMul, 0, 2)))
	s.Require().NoError(p.AddModifier(modifier.NewScalar(modifier.KindAdd, 0, 5)))

	s.Equal(30.0, p.Value())
}

func (s *PropertySuite) TestOverrideScalarBeatsLowerPriorityRange() {
	p := s.engine.NewProperty("speed", 7)
	s.Require().NoError(p.AddModifier(modifier.NewScalar(modifier.KindOverride, 5, 100)))
	s.Require().NoError(p.AddModifier(modifier.NewRange(modifier.KindOverride, 3, 0, 1)))

	s.Equal(100.0, p.Value())
}

func (s *PropertySuite) TestClamp() {
	high := s.engine.NewProperty("high", 50)
	s.Require().NoError(high.AddModifier(modifier.NewRange(modifier.KindClamp, 0, 0, 10)))
	s.Equal(10.0, high.Value())

	low := s.engine.NewProperty("low", -5)
	s.Require().NoError(low.AddModifier(modifier.NewRange(modifier.KindClamp, 0, 0, 10)))
	s.Equal(0.0, low.Value())
}

func (s *PropertySuite) TestBaseValueNeverEvaluatesModifiers() {
	ctrl := gomock.NewController(s.T())
	src := mockrandom.NewMockSource(ctrl)
	src.EXPECT().Uniform(gomock.Any(), gomock.Any()).Times(0)

	engine, err := property.NewEngine(&property.EngineConfig{Source: src})
	s.Require().NoError(err)

	p := engine.NewProperty("hp", 40)
	s.Require().NoError(p.AddModifier(modifier.NewRange(modifier.KindAdd, 0, 1, 6)))

	s.Equal(40.0, p.BaseValue())
	s.True(p.IsDirty())
}

func (s *PropertySuite) TestRangeSampledOncePerRecompute() {
	s.source.SetFractions(0.5, 1)
	p := s.engine.NewProperty("dmg", 0)
	s.Require().NoError(p.AddModifier(modifier.NewRange(modifier.KindAdd, 0, 0, 10)))

	s.Equal(5.0, p.Value())
	s.Equal(5.0, p.Value())
	s.Equal(1, s.source.Calls())

	p.MarkDirty()
	s.Equal(10.0, p.Value())
	s.Equal(2, s.source.Calls())
}

func (s *PropertySuite) TestRemoveSpecificInstance() {
	p := s.engine.NewProperty("armor", 10)
	first := modifier.NewScalar(modifier.KindAdd, 1, 3)
	second := first.Clone()

	s.Require().NoError(p.AddModifier(first))
	s.Require().NoError(p.AddModifier(second))
	s.Equal(16.0, p.Value())

	s.True(p.RemoveModifier(second))
	s.True(p.IsDirty())
	s.Equal(13.0, p.Value())

	mods := p.Modifiers()
	s.Require().Len(mods, 1)
	s.Same(first, mods[0])

	s.False(p.RemoveModifier(second))
}

func (s *PropertySuite) TestAddModifierErrors() {
	p := s.engine.NewProperty("p", 0)
	m := modifier.NewScalar(modifier.KindAdd, 0, 1)

	s.True(apperr.IsInvalidArgument(p.AddModifier(nil)))
	s.True(apperr.IsInvalidArgument(p.AddModifier(modifier.NewScalar(modifier.Kind(12), 0, 1))))

	s.Require().NoError(p.AddModifier(m))
	s.True(apperr.IsAlreadyExists(p.AddModifier(m)))
	s.Len(p.Modifiers(), 1)
}

func (s *PropertySuite) TestRemoveModifiersOfKind() {
	p := s.engine.NewProperty("p", 1)
	s.Require().NoError(p.AddModifier(modifier.NewScalar(modifier.KindOverride, 0, 99)))
	s.Require().NoError(p.AddModifier(modifier.NewScalar(modifier.KindAdd, 0, 1)))
	s.Require().NoError(p.AddModifier(modifier.NewScalar(modifier.KindOverride, 1, 42)))
	s.Equal(42.0, p.Value())

	s.Equal(2, p.RemoveModifiersOfKind(modifier.KindOverride))
	s.Equal(2.0, p.Value())
	s.Equal(0, p.RemoveModifiersOfKind(modifier.KindOverride))
	s.Len(p.Modifiers(), 1)
}

func (s *PropertySuite) TestModifiersReturnsCopy() {
	p := s.engine.NewProperty("p", 1)
	s.Require().NoError(p.AddModifier(modifier.NewScalar(modifier.KindAdd, 0, 1)))

	mods := p.Modifiers()
	mods[0] = nil

	s.NotNil(p.Modifiers()[0])
}

func (s *PropertySuite) TestSubscribeValueChanges() {
	p := s.engine.NewProperty("hp", 10)
	p.Value()

	var got []events.Event
	id := p.Subscribe(func(e events.Event) error {
		got = append(got, e)
		return nil
	})

	s.Require().NoError(p.AddModifier(modifier.NewScalar(modifier.KindAdd, 0, 5)))
	s.Empty(got, "no recompute happens until the next read")

	s.Equal(15.0, p.Value())
	s.Require().Len(got, 1)
	s.Equal(events.ValueChanged, got[0].Type)
	s.Equal("hp", got[0].PropertyID)
	s.Equal(10.0, got[0].Old)
	s.Equal(15.0, got[0].New)

	s.True(p.Unsubscribe(id))
	p.SetBaseValue(1)
	s.Len(got, 1)
}

func (s *PropertySuite) TestSubscribeBaseValue() {
	p := s.engine.NewProperty("hp", 10)

	var got []events.Event
	id := p.SubscribeBaseValue(func(e events.Event) error {
		got = append(got, e)
		return nil
	})
	defer p.Unsubscribe(id)

	p.SetBaseValue(12)
	p.SetBaseValue(12)

	s.Require().Len(got, 1)
	s.Equal(10.0, got[0].Old)
	s.Equal(12.0, got[0].New)
}

func (s *PropertySuite) TestSetBaseValueRecomputes() {
	p := s.engine.NewProperty("p", 1)
	s.Require().NoError(p.AddModifier(modifier.NewScalar(modifier.KindMul, 0, 3)))
	s.Equal(3.0, p.Value())

	p.SetBaseValue(2)

	s.Equal(2.0, p.BaseValue())
	s.False(p.IsDirty())
	s.Equal(6.0, p.Value())
}
