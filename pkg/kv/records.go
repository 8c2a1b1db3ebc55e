package kv

import (
	"fmt"
	"time"

	"lintang/dronepatrol/pkg/datastructure"
)

type LocationRecord struct {
	ID   string  `msgpack:"id"`
	Zone string  `msgpack:"zone"`
	Lat  float64 `msgpack:"lat"`
	Lon  float64 `msgpack:"lon"`
	Alt  float64 `msgpack:"alt"`
}

type SegmentRecord struct {
	From string `msgpack:"from"`
	To   string `msgpack:"to"`
}

// LayoutRecord is the stored form of an airfield graph. Weights are not stored,
// they are recomputed from the zones when the graph is rebuilt.
type LayoutRecord struct {
	Name      string           `msgpack:"name"`
	Locations []LocationRecord `msgpack:"locations"`
	Segments  []SegmentRecord  `msgpack:"segments"`
}

func NewLayoutRecord(name string, g *datastructure.Graph) LayoutRecord {
	rec := LayoutRecord{
		Name:      name,
		Locations: make([]LocationRecord, 0, g.Len()),
	}
	for _, loc := range g.Locations() {
		rec.Locations = append(rec.Locations, LocationRecord{
			ID:   loc.ID(),
			Zone: loc.Zone().String(),
			Lat:  loc.Lat(),
			Lon:  loc.Lon(),
			Alt:  loc.Altitude(),
		})
	}
	for _, seg := range g.Segments() {
		rec.Segments = append(rec.Segments, SegmentRecord{From: seg.From().ID(), To: seg.To().ID()})
	}
	return rec
}

// Graph rebuilds the airfield graph, locations and segments in stored order.
func (r LayoutRecord) Graph() (*datastructure.Graph, error) {
	g := datastructure.NewGraph()
	for _, lr := range r.Locations {
		zone, err := datastructure.ParseZone(lr.Zone)
		if err != nil {
			return nil, err
		}
		if err := g.Add(datastructure.NewLocation(lr.ID, zone, lr.Lat, lr.Lon, lr.Alt)); err != nil {
			return nil, err
		}
	}
	for _, sr := range r.Segments {
		from, ok := g.Location(sr.From)
		if !ok {
			return nil, fmt.Errorf("segment origin %q not in layout", sr.From)
		}
		to, ok := g.Location(sr.To)
		if !ok {
			return nil, fmt.Errorf("segment destination %q not in layout", sr.To)
		}
		from.Connect(to)
	}
	return g, nil
}

type RouteRecord struct {
	ID          uint64                     `msgpack:"id"`
	Layout      string                     `msgpack:"layout"`
	PlannedAt   time.Time                  `msgpack:"planned_at"`
	Status      string                     `msgpack:"status"`
	Message     string                     `msgpack:"message"`
	LocationIDs []string                   `msgpack:"location_ids"`
	Coordinates []datastructure.Coordinate `msgpack:"coordinates"`
	Polyline    string                     `msgpack:"polyline"`
	LengthDeg   float64                    `msgpack:"length_deg"`
	LengthM     float64                    `msgpack:"length_m"`
}
