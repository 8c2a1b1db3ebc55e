package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"lintang/dronepatrol/pkg/datastructure"
	"lintang/dronepatrol/pkg/engine/planner"
	"lintang/dronepatrol/pkg/geo"
	"lintang/dronepatrol/pkg/kv"
	"lintang/dronepatrol/pkg/server"

	"github.com/twpayne/go-polyline"
)

type Planner interface {
	Plan(locations []*datastructure.Location) planner.Result
	PlanInPlace(locations []*datastructure.Location) planner.Result
}

type RouteStore interface {
	SaveRoute(rec kv.RouteRecord) (uint64, error)
	GetRoute(layout string, id uint64) (kv.RouteRecord, error)
	LatestRoute(layout string) (kv.RouteRecord, error)
	HotspotsNear(layout string, lat, lon, radiusKm float64) ([]string, error)
}

type SpatialIndex interface {
	Nearest(p datastructure.Coordinate) (*datastructure.Location, error)
	NearestK(p datastructure.Coordinate, k int, zones ...datastructure.Zone) []*datastructure.Location
	Within(minLat, minLon, maxLat, maxLon float64) ([]*datastructure.Location, error)
}

// PatrolService owns the session graph of one airfield layout. Every operation that
// reads or mutates segments holds mu, so a replan never interleaves with a render.
type PatrolService struct {
	mu      sync.Mutex
	layout  string
	graph   *datastructure.Graph
	planner Planner
	store   RouteStore
	index   SpatialIndex
	log     *slog.Logger
	now     func() time.Time
}

func NewPatrolService(layout string, graph *datastructure.Graph, p Planner, store RouteStore, index SpatialIndex, log *slog.Logger) *PatrolService {
	return &PatrolService{
		layout:  layout,
		graph:   graph,
		planner: p,
		store:   store,
		index:   index,
		log:     log,
		now:     time.Now,
	}
}

type SegmentView struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Weight int    `json:"weight"`
}

type LocationView struct {
	ID         string                   `json:"id"`
	Zone       datastructure.Zone       `json:"zone"`
	Coordinate datastructure.Coordinate `json:"coordinate"`
	Altitude   float64                  `json:"altitude"`
	Label      string                   `json:"label"`
}

type LayoutView struct {
	Name      string         `json:"name"`
	Locations []LocationView `json:"locations"`
	Segments  []SegmentView  `json:"segments"`
}

func NewLocationView(loc *datastructure.Location) LocationView {
	return LocationView{
		ID:         loc.ID(),
		Zone:       loc.Zone(),
		Coordinate: loc.Coordinate(),
		Altitude:   loc.Altitude(),
		Label:      loc.String(),
	}
}

func (s *PatrolService) Name() string {
	return s.layout
}

func (s *PatrolService) Layout(ctx context.Context) LayoutView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := LayoutView{
		Name:      s.layout,
		Locations: make([]LocationView, 0, s.graph.Len()),
		Segments:  []SegmentView{},
	}
	for _, loc := range s.graph.Locations() {
		view.Locations = append(view.Locations, NewLocationView(loc))
	}
	for _, seg := range s.graph.Segments() {
		view.Segments = append(view.Segments, SegmentView{From: seg.From().ID(), To: seg.To().ID(), Weight: seg.Weight()})
	}
	return view
}

func (s *PatrolService) HotspotCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.CountZone(datastructure.ZoneHotspot)
}

// NearestLocation returns the location closest to (lat, lon), restricted to zones when given.
func (s *PatrolService) NearestLocation(ctx context.Context, lat, lon float64, zones ...datastructure.Zone) (LocationView, error) {
	p := datastructure.NewCoordinate(lat, lon)
	if len(zones) == 0 {
		loc, err := s.index.Nearest(p)
		if err != nil {
			return LocationView{}, server.WrapErrorf(err, server.ErrNotFound, "layout %s has no locations", s.layout)
		}
		return NewLocationView(loc), nil
	}

	locs := s.index.NearestK(p, 1, zones...)
	if len(locs) == 0 {
		return LocationView{}, server.WrapErrorf(nil, server.ErrNotFound, "layout %s has no %v locations", s.layout, zones)
	}
	return NewLocationView(locs[0]), nil
}

// LocationsWithin returns the locations inside the lat/lon box in creation order,
// restricted to zones when given.
func (s *PatrolService) LocationsWithin(ctx context.Context, minLat, minLon, maxLat, maxLon float64, zones ...datastructure.Zone) ([]LocationView, error) {
	if minLat >= maxLat || minLon >= maxLon {
		return nil, server.WrapErrorf(nil, server.ErrBadParamInput, "empty box (%f, %f) (%f, %f)", minLat, minLon, maxLat, maxLon)
	}
	found, err := s.index.Within(minLat, minLon, maxLat, maxLon)
	if err != nil {
		return nil, server.WrapErrorf(err, server.ErrBadParamInput, "invalid box (%f, %f) (%f, %f)", minLat, minLon, maxLat, maxLon)
	}
	inBox := make(map[string]struct{}, len(found))
	for _, loc := range found {
		inBox[loc.ID()] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	views := make([]LocationView, 0, len(found))
	for _, loc := range s.graph.Locations() {
		if _, ok := inBox[loc.ID()]; !ok || !zoneIn(loc.Zone(), zones) {
			continue
		}
		views = append(views, NewLocationView(loc))
	}
	return views, nil
}

func zoneIn(z datastructure.Zone, zones []datastructure.Zone) bool {
	if len(zones) == 0 {
		return true
	}
	for _, want := range zones {
		if z == want {
			return true
		}
	}
	return false
}

// Replan clears every hotspot leg of the session graph, plans in place and stores the result.
func (s *PatrolService) Replan(ctx context.Context) (kv.RouteRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.graph.ClearRoutableSegments()
	res := s.planner.PlanInPlace(s.graph.Locations())
	s.logResult("replanned patrol route", res)

	rec := s.newRouteRecord(res)
	id, err := s.store.SaveRoute(rec)
	if err != nil {
		return kv.RouteRecord{}, server.WrapErrorf(err, server.ErrInternalServerError, "failed to save route of layout %s", s.layout)
	}
	rec.ID = id
	return rec, nil
}

// Preview plans over caller supplied locations without touching the session graph or the store.
func (s *PatrolService) Preview(ctx context.Context, locations []*datastructure.Location) kv.RouteRecord {
	res := s.planner.Plan(locations)
	s.logResult("previewed patrol route", res)
	return s.newRouteRecord(res)
}

func (s *PatrolService) LatestRoute(ctx context.Context) (kv.RouteRecord, error) {
	rec, err := s.store.LatestRoute(s.layout)
	if errors.Is(err, kv.ErrNotFound) {
		return kv.RouteRecord{}, server.WrapErrorf(err, server.ErrNotFound, "layout %s has no planned route yet", s.layout)
	}
	if err != nil {
		return kv.RouteRecord{}, server.WrapErrorf(err, server.ErrInternalServerError, "failed to load latest route")
	}
	return rec, nil
}

func (s *PatrolService) Route(ctx context.Context, id uint64) (kv.RouteRecord, error) {
	rec, err := s.store.GetRoute(s.layout, id)
	if errors.Is(err, kv.ErrNotFound) {
		return kv.RouteRecord{}, server.WrapErrorf(err, server.ErrNotFound, "route %d not found", id)
	}
	if err != nil {
		return kv.RouteRecord{}, server.WrapErrorf(err, server.ErrInternalServerError, "failed to load route %d", id)
	}
	return rec, nil
}

// HotspotsNear lists the hotspots whose coverage cell lies within radiusKm of (lat, lon).
func (s *PatrolService) HotspotsNear(ctx context.Context, lat, lon, radiusKm float64) ([]LocationView, error) {
	ids, err := s.store.HotspotsNear(s.layout, lat, lon, radiusKm)
	if err != nil {
		return nil, server.WrapErrorf(err, server.ErrInternalServerError, "failed to read hotspot coverage")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	views := make([]LocationView, 0, len(ids))
	for _, id := range ids {
		if loc, ok := s.graph.Location(id); ok {
			views = append(views, NewLocationView(loc))
		}
	}
	return views, nil
}

// OverrideSegment switches the from->to segment to its emergency weight.
func (s *PatrolService) OverrideSegment(ctx context.Context, from, to string) (string, error) {
	return s.withSegment(from, to, (*datastructure.TravelSegment).OverrideWeight)
}

func (s *PatrolService) RecoverSegment(ctx context.Context, from, to string) (string, error) {
	return s.withSegment(from, to, (*datastructure.TravelSegment).RecoverWeight)
}

func (s *PatrolService) withSegment(from, to string, fn func(*datastructure.TravelSegment) string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	origin, ok := s.graph.Location(from)
	if !ok {
		return "", server.WrapErrorf(nil, server.ErrNotFound, "location %s not found", from)
	}
	if _, ok := s.graph.Location(to); !ok {
		return "", server.WrapErrorf(nil, server.ErrNotFound, "location %s not found", to)
	}
	for _, seg := range origin.Segments() {
		if seg.To().ID() == to {
			msg := fn(seg)
			s.log.Info(msg, slog.String("from", from), slog.String("to", to))
			return msg, nil
		}
	}
	return "", server.WrapErrorf(nil, server.ErrNotFound, "no segment from %s to %s", from, to)
}

func (s *PatrolService) newRouteRecord(res planner.Result) kv.RouteRecord {
	ids := make([]string, 0, len(res.Route))
	coords := make([]datastructure.Coordinate, 0, len(res.Route))
	pl := make([][]float64, 0, len(res.Route))
	for _, loc := range res.Route {
		ids = append(ids, loc.ID())
		coords = append(coords, loc.Coordinate())
		pl = append(pl, []float64{loc.Lat(), loc.Lon()})
	}
	deg, meters := geo.PathLength(coords)

	return kv.RouteRecord{
		Layout:      s.layout,
		PlannedAt:   s.now(),
		Status:      res.Status.String(),
		Message:     res.Message,
		LocationIDs: ids,
		Coordinates: coords,
		Polyline:    string(polyline.EncodeCoords(pl)),
		LengthDeg:   deg,
		LengthM:     meters,
	}
}

func (s *PatrolService) logResult(msg string, res planner.Result) {
	attrs := []any{
		slog.String("layout", s.layout),
		slog.String("status", res.Status.String()),
		slog.Int("visited", res.Visited()),
	}
	if err := res.Err(); err != nil {
		s.log.Warn(msg, append(attrs, slog.String("error", res.Message))...)
		return
	}
	s.log.Info(msg, attrs...)
}
