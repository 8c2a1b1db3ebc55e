package datastructure

import (
	"errors"
	"fmt"
)

var ErrDuplicateLocation = errors.New("duplicate location id")

// Graph owns every location of one airfield layout. Locations are kept in creation
// order, which is the iteration order every planner tie-break relies on.
type Graph struct {
	locations []*Location
	index     map[string]*Location
}

func NewGraph() *Graph {
	return &Graph{
		index: make(map[string]*Location),
	}
}

// Add registers loc. IDs are unique within a graph.
func (g *Graph) Add(loc *Location) error {
	if _, ok := g.index[loc.id]; ok {
		return fmt.Errorf("%w %q", ErrDuplicateLocation, loc.id)
	}
	g.index[loc.id] = loc
	g.locations = append(g.locations, loc)
	return nil
}

// MustAdd is Add for layout code where ids are generated and cannot clash.
func (g *Graph) MustAdd(locs ...*Location) {
	for _, loc := range locs {
		if err := g.Add(loc); err != nil {
			panic(err)
		}
	}
}

func (g *Graph) Location(id string) (*Location, bool) {
	loc, ok := g.index[id]
	return loc, ok
}

func (g *Graph) Locations() []*Location {
	return g.locations
}

func (g *Graph) Len() int {
	return len(g.locations)
}

func (g *Graph) CountZone(zone Zone) int {
	n := 0
	for _, loc := range g.locations {
		if loc.zone == zone {
			n++
		}
	}
	return n
}

// ClearRoutableSegments removes the outgoing segments of every hotspot. It must run
// before a route is recomputed in place so stale legs do not linger.
func (g *Graph) ClearRoutableSegments() {
	for _, loc := range g.locations {
		if loc.zone == ZoneHotspot {
			loc.ClearSegments()
		}
	}
}

// Segments lists every segment of the graph grouped by origin, origins in creation order.
func (g *Graph) Segments() []*TravelSegment {
	segs := []*TravelSegment{}
	for _, loc := range g.locations {
		segs = append(segs, loc.segments...)
	}
	return segs
}
