package kv_test

import (
	"testing"
	"time"

	"lintang/dronepatrol/pkg/datastructure"
	"lintang/dronepatrol/pkg/kv"
	"lintang/dronepatrol/pkg/layout"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMem(t *testing.T) *kv.KVDB {
	t.Helper()
	db, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	require.NoError(t, err)
	store := kv.NewKVDB(db)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCompress(t *testing.T) {
	in := []byte("H1 H2 H3 H1 H2 H3 H1 H2 H3")
	c, err := kv.Compress(in)
	require.NoError(t, err)
	out, err := kv.Decompress(c)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = kv.Decompress([]byte("not zstd"))
	assert.Error(t, err)
}

func TestLayoutRoundTrip(t *testing.T) {
	store := openMem(t)
	g, err := layout.PittsburghAirfield().Build(10, 7)
	require.NoError(t, err)

	require.NoError(t, store.SaveLayout(kv.NewLayoutRecord("pit", g)))
	rec, err := store.GetLayout("pit")
	require.NoError(t, err)

	got, err := rec.Graph()
	require.NoError(t, err)
	require.Equal(t, g.Len(), got.Len())
	for i, loc := range g.Locations() {
		other := got.Locations()[i]
		assert.Equal(t, loc.String(), other.String())
		require.Len(t, other.Segments(), len(loc.Segments()), loc.ID())
		for j, seg := range loc.Segments() {
			assert.Equal(t, seg.To().ID(), other.Segments()[j].To().ID())
			assert.Equal(t, seg.Weight(), other.Segments()[j].Weight())
		}
	}

	_, err = store.GetLayout("cle")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestLayoutRecordErrors(t *testing.T) {
	_, err := kv.LayoutRecord{Locations: []kv.LocationRecord{{ID: "X", Zone: "RUNWAY"}}}.Graph()
	assert.Error(t, err)

	_, err = kv.LayoutRecord{
		Locations: []kv.LocationRecord{{ID: "H1", Zone: "HOTSPOT"}},
		Segments:  []kv.SegmentRecord{{From: "H1", To: "H9"}},
	}.Graph()
	assert.Error(t, err)
}

func TestSaveRoute(t *testing.T) {
	store := openMem(t)

	_, err := store.LatestRoute("pit")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	plannedAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	first := kv.RouteRecord{
		Layout:      "pit",
		PlannedAt:   plannedAt,
		Status:      "complete",
		LocationIDs: []string{"H1", "H2", "H1"},
		Coordinates: []datastructure.Coordinate{{Lat: 1, Lon: 2}, {Lat: 3, Lon: 4}, {Lat: 1, Lon: 2}},
		LengthDeg:   5.65,
	}
	id, err := store.SaveRoute(first)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	second := first
	second.Status = "incomplete"
	second.LocationIDs = []string{"H1"}
	id, err = store.SaveRoute(second)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), id)

	latest, err := store.LatestRoute("pit")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), latest.ID)
	assert.Equal(t, "incomplete", latest.Status)
	assert.True(t, plannedAt.Equal(latest.PlannedAt))

	old, err := store.GetRoute("pit", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"H1", "H2", "H1"}, old.LocationIDs)
	assert.Equal(t, first.Coordinates, old.Coordinates)

	_, err = store.GetRoute("pit", 3)
	assert.ErrorIs(t, err, kv.ErrNotFound)

	id, err = store.SaveRoute(kv.RouteRecord{Layout: "cle"})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id, "ids are per layout")
}

func TestHotspotsNear(t *testing.T) {
	store := openMem(t)
	locs := []*datastructure.Location{
		datastructure.NewLocation("H1", datastructure.ZoneHotspot, 40.4950, -80.2400, 300),
		datastructure.NewLocation("H2", datastructure.ZoneHotspot, 40.4951, -80.2401, 300),
		datastructure.NewLocation("H3", datastructure.ZoneHotspot, 40.4700, -80.2000, 300),
		datastructure.NewLocation("T1", datastructure.ZoneTerminal, 40.4950, -80.2400, 340),
	}

	cells := kv.GroupHotspotsByCell(locs)
	total := 0
	for cell, ids := range cells {
		require.NoError(t, store.SaveCell("pit", cell, ids))
		total += len(ids)
	}
	assert.Equal(t, 3, total, "only hotspots are indexed")

	ids, err := store.HotspotsNear("pit", 40.4950, -80.2400, 0.5)
	require.NoError(t, err)
	assert.Equal(t, []string{"H1", "H2"}, ids)

	ids, err = store.HotspotsNear("pit", 40.4700, -80.2000, 0.5)
	require.NoError(t, err)
	assert.Equal(t, []string{"H3"}, ids)

	ids, err = store.HotspotsNear("pit", 10, 10, 0.1)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSaveCoverage(t *testing.T) {
	store := openMem(t)
	g, err := layout.PittsburghAirfield().Build(25, 3)
	require.NoError(t, err)

	n, err := store.SaveCoverage("pit", g.Locations(), false)
	require.NoError(t, err)
	assert.Equal(t, len(kv.GroupHotspotsByCell(g.Locations())), n)

	// a wide radius reaches every hotspot of the property
	hs := g.Locations()[len(g.Locations())-1]
	ids, err := store.HotspotsNear("pit", hs.Lat(), hs.Lon(), 5)
	require.NoError(t, err)
	assert.Len(t, ids, g.CountZone(datastructure.ZoneHotspot))

	n, err = store.SaveCoverage("pit", nil, false)
	require.NoError(t, err)
	assert.Zero(t, n)
}
