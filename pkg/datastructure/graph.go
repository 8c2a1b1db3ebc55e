package datastructure

import (
	"fmt"
	"math"
)

// ImpassableWeight marks a segment no cost based planner may choose.
const ImpassableWeight = math.MaxInt

const aerodromeWeight = 5

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{
		Lat: lat,
		Lon: lon,
	}
}

// Location is a vertex of the airfield graph. Identity, zone and coordinates are
// fixed at construction; only the outgoing segment list changes.
type Location struct {
	id       string
	zone     Zone
	lat, lon float64
	alt      float64
	segments []*TravelSegment
}

func NewLocation(id string, zone Zone, lat, lon, alt float64) *Location {
	return &Location{
		id:   id,
		zone: zone,
		lat:  lat,
		lon:  lon,
		alt:  alt,
	}
}

func (l *Location) ID() string { return l.id }
func (l *Location) Zone() Zone { return l.zone }
func (l *Location) Lat() float64 { return l.lat }
func (l *Location) Lon() float64 { return l.lon }
func (l *Location) Altitude() float64 { return l.alt }

func (l *Location) Coordinate() Coordinate {
	return NewCoordinate(l.lat, l.lon)
}

// Segments returns the outgoing segments in insertion order. The slice is shared
// with the location and must not be modified by the caller.
func (l *Location) Segments() []*TravelSegment {
	return l.segments
}

// AddSegment appends seg to the outgoing list. Parallel and duplicate segments are allowed.
func (l *Location) AddSegment(seg *TravelSegment) {
	l.segments = append(l.segments, seg)
}

// Connect creates the segment l->to and appends it to l.
func (l *Location) Connect(to *Location) *TravelSegment {
	seg := NewTravelSegment(l, to)
	l.AddSegment(seg)
	return seg
}

func (l *Location) ClearSegments() {
	l.segments = nil
}

func (l *Location) String() string {
	return fmt.Sprintf("%s [%s] @ (%.6f, %.6f, %.1fm)", l.id, l.zone, l.lat, l.lon, l.alt)
}

// TravelSegment is a directed edge owned by its origin location.
type TravelSegment struct {
	from   *Location
	to     *Location
	weight int
}

func NewTravelSegment(from, to *Location) *TravelSegment {
	return &TravelSegment{
		from:   from,
		to:     to,
		weight: SegmentWeight(from.zone, to.zone),
	}
}

func (s *TravelSegment) From() *Location { return s.from }
func (s *TravelSegment) To() *Location { return s.to }
func (s *TravelSegment) Weight() int { return s.weight }

// SegmentWeight is the traversal cost between two zones. Terminal, property line and
// unknown zone endpoints are impassable, travel inside the aerodrome costs aerodromeWeight, anything
// else costs 1.
func SegmentWeight(from, to Zone) int {
	if impassable(from) || impassable(to) {
		return ImpassableWeight
	}
	if from == ZoneAerodrome && to == ZoneAerodrome {
		return aerodromeWeight
	}
	return 1
}

func impassable(z Zone) bool {
	switch z {
	case ZoneTerminal, ZonePropertyLine:
		return true
	case ZoneHotspot, ZoneAerodrome:
		return false
	default:
		return true
	}
}

// OverrideWeight drops the weight of a segment leaving the aerodrome to 1 so a drone can
// pursue a bird into it. Segments with any other origin keep their weight.
func (s *TravelSegment) OverrideWeight() string {
	prev := s.weight
	if s.from.zone == ZoneAerodrome {
		s.weight = 1
	}
	return fmt.Sprintf("weight changed from %d to %d for emergency purpose", prev, s.weight)
}

// RecoverWeight restores the zone derived weight after OverrideWeight.
func (s *TravelSegment) RecoverWeight() string {
	prev := s.weight
	s.weight = SegmentWeight(s.from.zone, s.to.zone)
	return fmt.Sprintf("weight restored from %d to %d after emergency", prev, s.weight)
}
