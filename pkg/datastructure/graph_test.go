package datastructure_test

import (
	"encoding/json"
	"testing"

	"lintang/dronepatrol/pkg/datastructure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allZones = []datastructure.Zone{
	datastructure.ZoneHotspot,
	datastructure.ZoneTerminal,
	datastructure.ZoneAerodrome,
	datastructure.ZonePropertyLine,
}

func TestSegmentWeight(t *testing.T) {
	t.Run("terminal or property line endpoint is impassable", func(t *testing.T) {
		for _, blocked := range []datastructure.Zone{datastructure.ZoneTerminal, datastructure.ZonePropertyLine} {
			for _, other := range allZones {
				assert.Equal(t, datastructure.ImpassableWeight, datastructure.SegmentWeight(blocked, other), "%v -> %v", blocked, other)
				assert.Equal(t, datastructure.ImpassableWeight, datastructure.SegmentWeight(other, blocked), "%v -> %v", other, blocked)
			}
		}
	})

	t.Run("aerodrome to aerodrome costs 5", func(t *testing.T) {
		assert.Equal(t, 5, datastructure.SegmentWeight(datastructure.ZoneAerodrome, datastructure.ZoneAerodrome))
	})

	t.Run("other pairs cost 1", func(t *testing.T) {
		assert.Equal(t, 1, datastructure.SegmentWeight(datastructure.ZoneHotspot, datastructure.ZoneHotspot))
		assert.Equal(t, 1, datastructure.SegmentWeight(datastructure.ZoneHotspot, datastructure.ZoneAerodrome))
		assert.Equal(t, 1, datastructure.SegmentWeight(datastructure.ZoneAerodrome, datastructure.ZoneHotspot))
	})

	t.Run("unknown zone endpoint is impassable", func(t *testing.T) {
		unknown := datastructure.Zone(9)
		for _, other := range allZones {
			assert.Equal(t, datastructure.ImpassableWeight, datastructure.SegmentWeight(unknown, other), "%v -> %v", unknown, other)
			assert.Equal(t, datastructure.ImpassableWeight, datastructure.SegmentWeight(other, unknown), "%v -> %v", other, unknown)
		}

		h := datastructure.NewLocation("H1", datastructure.ZoneHotspot, 0, 0, 300)
		odd := datastructure.NewLocation("X1", unknown, 0, 1, 300)
		var seg *datastructure.TravelSegment
		require.NotPanics(t, func() { seg = datastructure.NewTravelSegment(h, odd) })
		assert.Equal(t, datastructure.ImpassableWeight, seg.Weight())
		require.NotPanics(t, func() { seg.RecoverWeight() })
		assert.Equal(t, datastructure.ImpassableWeight, seg.Weight())
	})

	t.Run("weight is cached on the segment", func(t *testing.T) {
		a := datastructure.NewLocation("A-1", datastructure.ZoneAerodrome, 0, 0, 280)
		b := datastructure.NewLocation("A-2", datastructure.ZoneAerodrome, 0, 1, 280)
		seg := datastructure.NewTravelSegment(a, b)
		assert.Equal(t, 5, seg.Weight())
		assert.Same(t, a, seg.From())
		assert.Same(t, b, seg.To())
	})
}

func TestOverrideWeight(t *testing.T) {
	center := datastructure.NewLocation("A-Center", datastructure.ZoneAerodrome, 40.49, -80.2365, 280)
	outline := datastructure.NewLocation("A-Outline-0", datastructure.ZoneAerodrome, 40.49, -80.234, 280)
	hotspot := datastructure.NewLocation("H1", datastructure.ZoneHotspot, 40.489, -80.24, 305)

	t.Run("segment leaving the aerodrome drops to 1 and recovers", func(t *testing.T) {
		seg := center.Connect(outline)
		msg := seg.OverrideWeight()
		assert.Equal(t, 1, seg.Weight())
		assert.Equal(t, "weight changed from 5 to 1 for emergency purpose", msg)

		msg = seg.RecoverWeight()
		assert.Equal(t, 5, seg.Weight())
		assert.Equal(t, "weight restored from 1 to 5 after emergency", msg)
	})

	t.Run("segment leaving a hotspot is unchanged", func(t *testing.T) {
		seg := datastructure.NewTravelSegment(hotspot, center)
		msg := seg.OverrideWeight()
		assert.Equal(t, 1, seg.Weight())
		assert.Equal(t, "weight changed from 1 to 1 for emergency purpose", msg)
	})
}

func TestLocationSegments(t *testing.T) {
	a := datastructure.NewLocation("H1", datastructure.ZoneHotspot, 1, 2, 300)
	b := datastructure.NewLocation("H2", datastructure.ZoneHotspot, 3, 4, 301)

	a.Connect(b)
	a.Connect(b)
	assert.Len(t, a.Segments(), 2, "parallel segments are allowed")
	assert.Empty(t, b.Segments(), "destination holds no reference")

	a.ClearSegments()
	assert.Empty(t, a.Segments())

	assert.Equal(t, "H1 [HOTSPOT] @ (1.000000, 2.000000, 300.0m)", a.String())
	assert.Equal(t, datastructure.NewCoordinate(1, 2), a.Coordinate())
}

func TestZone(t *testing.T) {
	t.Run("parse", func(t *testing.T) {
		cases := map[string]datastructure.Zone{
			"hotspot":       datastructure.ZoneHotspot,
			"TERMINAL":      datastructure.ZoneTerminal,
			" Aerodrome ":   datastructure.ZoneAerodrome,
			"property-line": datastructure.ZonePropertyLine,
			"property line": datastructure.ZonePropertyLine,
			"PROPERTY_LINE": datastructure.ZonePropertyLine,
		}
		for in, want := range cases {
			got, err := datastructure.ParseZone(in)
			require.NoError(t, err, in)
			assert.Equal(t, want, got, in)
		}

		_, err := datastructure.ParseZone("runway")
		assert.Error(t, err)
	})

	t.Run("json round trip as text", func(t *testing.T) {
		bb, err := json.Marshal(struct {
			Zone datastructure.Zone `json:"zone"`
		}{datastructure.ZonePropertyLine})
		require.NoError(t, err)
		assert.JSONEq(t, `{"zone":"PROPERTY_LINE"}`, string(bb))

		var out struct {
			Zone datastructure.Zone `json:"zone"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"zone":"aerodrome"}`), &out))
		assert.Equal(t, datastructure.ZoneAerodrome, out.Zone)
	})

	t.Run("unknown zone value", func(t *testing.T) {
		z := datastructure.Zone(42)
		assert.False(t, z.Valid())
		assert.Equal(t, "Zone(42)", z.String())
		_, err := z.MarshalText()
		assert.Error(t, err)
	})
}

func TestGraph(t *testing.T) {
	g := datastructure.NewGraph()
	h1 := datastructure.NewLocation("H1", datastructure.ZoneHotspot, 0, 0, 300)
	h2 := datastructure.NewLocation("H2", datastructure.ZoneHotspot, 0, 1, 300)
	term := datastructure.NewLocation("T-N-outer", datastructure.ZoneTerminal, 1, 1, 330)
	term2 := datastructure.NewLocation("T-N-inner", datastructure.ZoneTerminal, 1, 2, 330)

	require.NoError(t, g.Add(h1))
	require.NoError(t, g.Add(term))
	g.MustAdd(h2, term2)
	assert.ErrorIs(t, g.Add(datastructure.NewLocation("H1", datastructure.ZoneHotspot, 5, 5, 0)), datastructure.ErrDuplicateLocation)

	assert.Equal(t, 4, g.Len())
	assert.Equal(t, 2, g.CountZone(datastructure.ZoneHotspot))
	assert.Equal(t, []*datastructure.Location{h1, term, h2, term2}, g.Locations(), "creation order is kept")

	loc, ok := g.Location("H2")
	assert.True(t, ok)
	assert.Same(t, h2, loc)
	_, ok = g.Location("H9")
	assert.False(t, ok)

	h1.Connect(h2)
	h2.Connect(h1)
	term.Connect(term2)
	assert.Len(t, g.Segments(), 3)

	t.Run("clear routable segments keeps infrastructure", func(t *testing.T) {
		g.ClearRoutableSegments()
		assert.Empty(t, h1.Segments())
		assert.Empty(t, h2.Segments())
		assert.Len(t, term.Segments(), 1)
	})
}
