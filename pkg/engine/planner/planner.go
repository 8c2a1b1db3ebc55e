package planner

import (
	"errors"
	"fmt"
	"math"

	"lintang/dronepatrol/pkg/datastructure"
	"lintang/dronepatrol/pkg/geo"
)

var (
	ErrNoHotspots = errors.New("no hotspot nodes found to create a path")
	ErrNoStart    = errors.New("could not find a starting hotspot node")
	ErrStalled    = errors.New("could not find a valid path to the next node, path is incomplete")
)

type Status int

const (
	StatusComplete Status = iota
	StatusNoHotspots
	StatusNoStart
	StatusIncomplete
)

func (s Status) String() string {
	switch s {
	case StatusComplete:
		return "complete"
	case StatusNoHotspots:
		return "no_hotspots"
	case StatusNoStart:
		return "no_start"
	case StatusIncomplete:
		return "incomplete"
	default:
		return "unknown"
	}
}

// Config holds the fixed airfield constants the planner depends on.
type Config struct {
	ExclusionCenter   datastructure.Coordinate
	ExclusionRadius   float64
	TerminalReference datastructure.Coordinate
}

type Result struct {
	// Route starts at the hotspot nearest the terminal. A complete route repeats the
	// start as its last element. After a stall Route holds the visited prefix, closed
	// back to the start when more than one hotspot was visited.
	Route   []*datastructure.Location
	Status  Status
	Message string
}

func (r Result) Err() error {
	switch r.Status {
	case StatusNoHotspots:
		return ErrNoHotspots
	case StatusNoStart:
		return ErrNoStart
	case StatusIncomplete:
		return ErrStalled
	default:
		return nil
	}
}

func (r Result) Complete() bool {
	return r.Status == StatusComplete
}

// Visited is the number of distinct hotspots on the route.
func (r Result) Visited() int {
	if len(r.Route) > 1 && r.Route[0] == r.Route[len(r.Route)-1] {
		return len(r.Route) - 1
	}
	return len(r.Route)
}

type Planner struct {
	cfg Config
}

func New(cfg Config) *Planner {
	return &Planner{cfg: cfg}
}

func (p *Planner) Config() Config {
	return p.cfg
}

// Plan builds the patrol route over the hotspots in locations without touching the graph.
func (p *Planner) Plan(locations []*datastructure.Location) Result {
	return p.plan(locations, func(from, to *datastructure.Location) {})
}

// PlanInPlace runs the same selection as Plan and attaches every chosen leg, closing leg
// included, to the outgoing segments of its origin. Callers replanning an existing graph
// clear the hotspot segments first.
func (p *Planner) PlanInPlace(locations []*datastructure.Location) Result {
	return p.plan(locations, func(from, to *datastructure.Location) {
		from.Connect(to)
	})
}

type legSink func(from, to *datastructure.Location)

func (p *Planner) plan(locations []*datastructure.Location, emit legSink) Result {
	hotspots := filterHotspots(locations)
	if len(hotspots) == 0 {
		return Result{Status: StatusNoHotspots, Message: ErrNoHotspots.Error()}
	}

	start := p.closestToTerminal(hotspots)
	if start == nil {
		return Result{Status: StatusNoStart, Message: ErrNoStart.Error()}
	}

	unvisited := make([]*datastructure.Location, 0, len(hotspots)-1)
	for _, h := range hotspots {
		if h != start {
			unvisited = append(unvisited, h)
		}
	}

	route := make([]*datastructure.Location, 0, len(hotspots)+1)
	route = append(route, start)

	status := StatusComplete
	curr := start
	for len(unvisited) > 0 {
		idx := p.nearestValid(curr, unvisited)
		if idx < 0 {
			status = StatusIncomplete
			break
		}
		next := unvisited[idx]
		emit(curr, next)
		route = append(route, next)
		unvisited = append(unvisited[:idx], unvisited[idx+1:]...)
		curr = next
	}

	// closing leg is the one leg allowed across the aerodrome
	if len(route) > 1 {
		emit(curr, start)
		route = append(route, start)
	}

	res := Result{Route: route, Status: status}
	if status == StatusIncomplete {
		res.Message = fmt.Sprintf("%s: stalled after %d of %d hotspots", ErrStalled, res.Visited(), len(hotspots))
	} else {
		res.Message = fmt.Sprintf("patrol route visits %d hotspots", len(hotspots))
	}
	return res
}

func filterHotspots(locations []*datastructure.Location) []*datastructure.Location {
	hotspots := []*datastructure.Location{}
	for _, loc := range locations {
		if loc != nil && loc.Zone() == datastructure.ZoneHotspot {
			hotspots = append(hotspots, loc)
		}
	}
	return hotspots
}

func (p *Planner) closestToTerminal(hotspots []*datastructure.Location) *datastructure.Location {
	var closest *datastructure.Location
	minDist := math.MaxFloat64
	for _, h := range hotspots {
		d := geo.PlanarDistance(h.Coordinate(), p.cfg.TerminalReference)
		if d < minDist {
			minDist = d
			closest = h
		}
	}
	return closest
}

// nearestValid returns the index of the unvisited location closest to from whose leg
// stays clear of the aerodrome, or -1 when every candidate is blocked.
func (p *Planner) nearestValid(from *datastructure.Location, unvisited []*datastructure.Location) int {
	nearest := -1
	minDist := math.MaxFloat64
	for i, to := range unvisited {
		if p.CrossesExclusionZone(from, to) {
			continue
		}
		d := geo.PlanarDistance(from.Coordinate(), to.Coordinate())
		if d < minDist {
			minDist = d
			nearest = i
		}
	}
	return nearest
}

func (p *Planner) CrossesExclusionZone(from, to *datastructure.Location) bool {
	return geo.SegmentCrossesCircle(from.Coordinate(), to.Coordinate(), p.cfg.ExclusionCenter, p.cfg.ExclusionRadius)
}
