package kv

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"

	"lintang/dronepatrol/pkg/datastructure"

	"github.com/cockroachdb/pebble"
	"github.com/uber/h3-go/v4"
)

// CellResolution is the h3 resolution of the hotspot coverage index, roughly 0.1 km2 per cell.
const CellResolution = 9

var ErrNotFound = errors.New("kv: key not found")

const (
	layoutPrefix = "layout/"
	routePrefix  = "route/"
	cellPrefix   = "cell/"
	latestSuffix = "latest"
	seqSuffix    = "seq"
)

type KVDB struct {
	db *pebble.DB
}

func NewKVDB(db *pebble.DB) *KVDB {
	return &KVDB{db}
}

func (k *KVDB) Close() error {
	return k.db.Close()
}

func (k *KVDB) put(key string, v any) error {
	val, err := encode(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return k.db.Set([]byte(key), val, pebble.Sync)
}

func (k *KVDB) get(key string, v any) error {
	val, closer, err := k.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := decode(val, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (k *KVDB) SaveLayout(rec LayoutRecord) error {
	return k.put(layoutPrefix+rec.Name, rec)
}

func (k *KVDB) GetLayout(name string) (LayoutRecord, error) {
	var rec LayoutRecord
	err := k.get(layoutPrefix+name, &rec)
	return rec, err
}

// SaveRoute assigns rec the next route id for its layout, stores it and marks it as
// the latest route of the layout. The id is returned.
func (k *KVDB) SaveRoute(rec RouteRecord) (uint64, error) {
	seqKey := []byte(routePrefix + rec.Layout + "/" + seqSuffix)

	seq := uint64(0)
	val, closer, err := k.db.Get(seqKey)
	switch {
	case err == nil:
		if len(val) == 8 {
			seq = binary.BigEndian.Uint64(val)
		}
		closer.Close()
	case !errors.Is(err, pebble.ErrNotFound):
		return 0, err
	}
	seq++
	rec.ID = seq

	enc, err := encode(rec)
	if err != nil {
		return 0, err
	}
	seqVal := make([]byte, 8)
	binary.BigEndian.PutUint64(seqVal, seq)

	b := k.db.NewBatch()
	defer b.Close()
	if err := b.Set([]byte(routeKey(rec.Layout, seq)), enc, nil); err != nil {
		return 0, err
	}
	if err := b.Set([]byte(routePrefix+rec.Layout+"/"+latestSuffix), enc, nil); err != nil {
		return 0, err
	}
	if err := b.Set(seqKey, seqVal, nil); err != nil {
		return 0, err
	}
	if err := b.Commit(pebble.Sync); err != nil {
		return 0, err
	}
	return seq, nil
}

func routeKey(layout string, id uint64) string {
	return fmt.Sprintf("%s%s/%020d", routePrefix, layout, id)
}

func (k *KVDB) GetRoute(layout string, id uint64) (RouteRecord, error) {
	var rec RouteRecord
	err := k.get(routeKey(layout, id), &rec)
	return rec, err
}

func (k *KVDB) LatestRoute(layout string) (RouteRecord, error) {
	var rec RouteRecord
	err := k.get(routePrefix+layout+"/"+latestSuffix, &rec)
	return rec, err
}

func cellKey(layout string, cell h3.Cell) string {
	return cellPrefix + layout + "/" + cell.String()
}

// HotspotCell returns the coverage cell containing loc.
func HotspotCell(loc *datastructure.Location) h3.Cell {
	return h3.LatLngToCell(h3.NewLatLng(loc.Lat(), loc.Lon()), CellResolution)
}

// GroupHotspotsByCell groups the hotspot ids of locations by coverage cell, in input order.
func GroupHotspotsByCell(locations []*datastructure.Location) map[h3.Cell][]string {
	cells := make(map[h3.Cell][]string)
	for _, loc := range locations {
		if loc.Zone() != datastructure.ZoneHotspot {
			continue
		}
		c := HotspotCell(loc)
		cells[c] = append(cells[c], loc.ID())
	}
	return cells
}

func (k *KVDB) SaveCell(layout string, cell h3.Cell, hotspotIDs []string) error {
	return k.put(cellKey(layout, cell), hotspotIDs)
}

// HotspotsNear returns the ids of hotspots indexed in the cells within radiusKm of
// (lat, lon), sorted. Cells with no hotspots are skipped.
func (k *KVDB) HotspotsNear(layout string, lat, lon, radiusKm float64) ([]string, error) {
	ids := []string{}
	for _, cell := range kRingIndexesArea(lat, lon, radiusKm) {
		var cellIDs []string
		err := k.get(cellKey(layout, cell), &cellIDs)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		ids = append(ids, cellIDs...)
	}
	sort.Strings(ids)
	return ids, nil
}

// kRingIndexesArea returns the disk of cells around (lat, lon) whose total area
// covers a circle of searchRadiusKm.
// https://observablehq.com/@nrabinowitz/h3-radius-lookup
func kRingIndexesArea(lat, lon, searchRadiusKm float64) []h3.Cell {
	origin := h3.LatLngToCell(h3.NewLatLng(lat, lon), CellResolution)
	originArea := h3.CellAreaKm2(origin)
	searchArea := math.Pi * searchRadiusKm * searchRadiusKm

	radius := 0
	diskArea := originArea
	for diskArea < searchArea {
		radius++
		cellCount := float64(3*radius*(radius+1) + 1)
		diskArea = cellCount * originArea
	}

	return h3.GridDisk(origin, radius)
}
