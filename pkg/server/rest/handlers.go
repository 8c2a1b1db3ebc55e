package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"lintang/dronepatrol/pkg/datastructure"
	"lintang/dronepatrol/pkg/kv"
	"lintang/dronepatrol/pkg/server"
	"lintang/dronepatrol/pkg/server/rest/service"
	"lintang/dronepatrol/pkg/util"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

type PatrolService interface {
	HotspotCount() int
	Layout(ctx context.Context) service.LayoutView
	NearestLocation(ctx context.Context, lat, lon float64, zones ...datastructure.Zone) (service.LocationView, error)
	LocationsWithin(ctx context.Context, minLat, minLon, maxLat, maxLon float64, zones ...datastructure.Zone) ([]service.LocationView, error)
	HotspotsNear(ctx context.Context, lat, lon, radiusKm float64) ([]service.LocationView, error)
	Replan(ctx context.Context) (kv.RouteRecord, error)
	Preview(ctx context.Context, locations []*datastructure.Location) kv.RouteRecord
	LatestRoute(ctx context.Context) (kv.RouteRecord, error)
	Route(ctx context.Context, id uint64) (kv.RouteRecord, error)
	OverrideSegment(ctx context.Context, from, to string) (string, error)
	RecoverSegment(ctx context.Context, from, to string) (string, error)
}

type PatrolHandler struct {
	svc          PatrolService
	promeMetrics *metrics
	validate     *validator.Validate
	trans        ut.Translator
}

func PatrolRouter(r *chi.Mux, svc PatrolService, m *metrics) {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	validate := validator.New()
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)

	handler := &PatrolHandler{svc, m, validate, trans}
	m.hotspots.Set(float64(svc.HotspotCount()))

	r.Group(func(r chi.Router) {
		r.Route("/api/patrol", func(r chi.Router) {
			r.Get("/layout", handler.layout)
			r.Get("/layout/nearest", handler.nearestLocation)
			r.Get("/layout/coverage", handler.hotspotCoverage)
			r.Get("/layout/within", handler.locationsWithin)
			r.Post("/routes", handler.replan)
			r.Post("/routes/preview", handler.preview)
			r.Get("/routes/latest", handler.latestRoute)
			r.Get("/routes/{id}", handler.route)
			r.Post("/segments/{from}/{to}/override", handler.overrideSegment)
			r.Post("/segments/{from}/{to}/recover", handler.recoverSegment)
		})
	})
}

// validateStruct renders the english validation errors of data and reports whether it was valid.
func (h *PatrolHandler) validateStruct(w http.ResponseWriter, r *http.Request, data any) bool {
	if err := h.validate.Struct(data); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			render.Render(w, r, ErrInvalidRequest(err))
			return false
		}
		render.Render(w, r, ErrValidation(err, translateError(verrs, h.trans)))
		return false
	}
	return true
}

// LayoutResponse model info
//
//	@Description	every location and segment of the session airfield, for the renderer
type LayoutResponse struct {
	Name      string                 `json:"name"`
	Hotspots  int                    `json:"hotspots"`
	Locations []service.LocationView `json:"locations"`
	Segments  []service.SegmentView  `json:"segments"`
}

// layout
//
//	@Summary		airfield layout of the session.
//	@Description	all locations in creation order and all current segments, hotspot legs of the last replan included.
//	@Tags			patrol
//	@Produce		application/json
//	@Router			/patrol/layout [get]
//	@Success		200	{object}	LayoutResponse
func (h *PatrolHandler) layout(w http.ResponseWriter, r *http.Request) {
	view := h.svc.Layout(r.Context())
	hotspots := 0
	for _, loc := range view.Locations {
		if loc.Zone == datastructure.ZoneHotspot {
			hotspots++
		}
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, &LayoutResponse{
		Name:      view.Name,
		Hotspots:  hotspots,
		Locations: view.Locations,
		Segments:  view.Segments,
	})
}

// PointQuery model info
//
//	@Description	query params of the point lookups
type PointQuery struct {
	Lat      float64 `validate:"gte=-90,lte=90"`
	Lon      float64 `validate:"gte=-180,lte=180"`
	RadiusKm float64 `validate:"gt=0,lte=50"`
	Zone     string
}

func parsePointQuery(r *http.Request, withRadius bool) (PointQuery, error) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		return PointQuery{}, fmt.Errorf("invalid lat %q", q.Get("lat"))
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		return PointQuery{}, fmt.Errorf("invalid lon %q", q.Get("lon"))
	}

	pq := PointQuery{Lat: lat, Lon: lon, RadiusKm: 0.5, Zone: q.Get("zone")}
	if withRadius && q.Get("radius_km") != "" {
		pq.RadiusKm, err = strconv.ParseFloat(q.Get("radius_km"), 64)
		if err != nil {
			return PointQuery{}, fmt.Errorf("invalid radius_km %q", q.Get("radius_km"))
		}
	}
	return pq, nil
}

// nearestLocation
//
//	@Summary		nearest location to a point.
//	@Description	nearest location of the layout to lat,lon by planar distance, optionally restricted to one zone.
//	@Tags			patrol
//	@Param			lat		query	number	true	"latitude"
//	@Param			lon		query	number	true	"longitude"
//	@Param			zone	query	string	false	"HOTSPOT, TERMINAL, AERODROME or PROPERTY_LINE"
//	@Produce		application/json
//	@Router			/patrol/layout/nearest [get]
//	@Success		200	{object}	service.LocationView
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
func (h *PatrolHandler) nearestLocation(w http.ResponseWriter, r *http.Request) {
	pq, err := parsePointQuery(r, false)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.validateStruct(w, r, pq) {
		return
	}

	zones := []datastructure.Zone{}
	if pq.Zone != "" {
		zone, err := datastructure.ParseZone(pq.Zone)
		if err != nil {
			render.Render(w, r, ErrInvalidRequest(err))
			return
		}
		zones = append(zones, zone)
	}

	loc, err := h.svc.NearestLocation(r.Context(), pq.Lat, pq.Lon, zones...)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, loc)
}

// hotspotCoverage
//
//	@Summary		hotspots around a point.
//	@Description	hotspots whose h3 coverage cell lies within radius_km of lat,lon.
//	@Tags			patrol
//	@Param			lat			query	number	true	"latitude"
//	@Param			lon			query	number	true	"longitude"
//	@Param			radius_km	query	number	false	"search radius in km, default 0.5"
//	@Produce		application/json
//	@Router			/patrol/layout/coverage [get]
//	@Success		200	{array}		service.LocationView
//	@Failure		400	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *PatrolHandler) hotspotCoverage(w http.ResponseWriter, r *http.Request) {
	pq, err := parsePointQuery(r, true)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.validateStruct(w, r, pq) {
		return
	}

	locs, err := h.svc.HotspotsNear(r.Context(), pq.Lat, pq.Lon, pq.RadiusKm)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, locs)
}

// BoxQuery model info
//
//	@Description	query params of the bounding box lookup
type BoxQuery struct {
	MinLat float64 `validate:"gte=-90,lte=90"`
	MinLon float64 `validate:"gte=-180,lte=180"`
	MaxLat float64 `validate:"gte=-90,lte=90,gtfield=MinLat"`
	MaxLon float64 `validate:"gte=-180,lte=180,gtfield=MinLon"`
	Zone   string
}

func parseBoxQuery(r *http.Request) (BoxQuery, error) {
	q := r.URL.Query()
	bounds := make([]float64, 0, 4)
	for _, key := range []string{"min_lat", "min_lon", "max_lat", "max_lon"} {
		v, err := strconv.ParseFloat(q.Get(key), 64)
		if err != nil {
			return BoxQuery{}, fmt.Errorf("invalid %s %q", key, q.Get(key))
		}
		bounds = append(bounds, v)
	}
	return BoxQuery{MinLat: bounds[0], MinLon: bounds[1], MaxLat: bounds[2], MaxLon: bounds[3], Zone: q.Get("zone")}, nil
}

// locationsWithin
//
//	@Summary		locations inside a bounding box.
//	@Description	locations of the layout inside the lat/lon box in creation order, optionally restricted to one zone.
//	@Tags			patrol
//	@Param			min_lat	query	number	true	"south edge"
//	@Param			min_lon	query	number	true	"west edge"
//	@Param			max_lat	query	number	true	"north edge"
//	@Param			max_lon	query	number	true	"east edge"
//	@Param			zone	query	string	false	"HOTSPOT, TERMINAL, AERODROME or PROPERTY_LINE"
//	@Produce		application/json
//	@Router			/patrol/layout/within [get]
//	@Success		200	{array}		service.LocationView
//	@Failure		400	{object}	ErrResponse
func (h *PatrolHandler) locationsWithin(w http.ResponseWriter, r *http.Request) {
	bq, err := parseBoxQuery(r)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.validateStruct(w, r, bq) {
		return
	}

	zones := []datastructure.Zone{}
	if bq.Zone != "" {
		zone, err := datastructure.ParseZone(bq.Zone)
		if err != nil {
			render.Render(w, r, ErrInvalidRequest(err))
			return
		}
		zones = append(zones, zone)
	}

	locs, err := h.svc.LocationsWithin(r.Context(), bq.MinLat, bq.MinLon, bq.MaxLat, bq.MaxLon, zones...)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, locs)
}

// RouteResponse model info
//
//	@Description	a planned patrol route. route repeats the start as its last id when the cycle is closed.
type RouteResponse struct {
	ID          uint64                     `json:"id,omitempty"`
	Layout      string                     `json:"layout"`
	Status      string                     `json:"status"`
	Complete    bool                       `json:"complete"`
	Message     string                     `json:"message"`
	Route       []string                   `json:"route"`
	Coordinates []datastructure.Coordinate `json:"coordinates"`
	Polyline    string                     `json:"polyline"`
	LengthDeg   float64                    `json:"length_deg"`
	LengthM     float64                    `json:"length_m"`
	PlannedAt   time.Time                  `json:"planned_at"`
}

func NewRouteResponse(rec kv.RouteRecord) *RouteResponse {
	return &RouteResponse{
		ID:          rec.ID,
		Layout:      rec.Layout,
		Status:      rec.Status,
		Complete:    rec.Status == "complete",
		Message:     rec.Message,
		Route:       rec.LocationIDs,
		Coordinates: rec.Coordinates,
		Polyline:    rec.Polyline,
		LengthDeg:   util.RoundFloat(rec.LengthDeg, 6),
		LengthM:     util.RoundFloat(rec.LengthM, 2),
		PlannedAt:   rec.PlannedAt,
	}
}

// replan
//
//	@Summary		replan the patrol route of the session airfield.
//	@Description	clears every hotspot leg, plans the route in place and stores it. Stalled plans are still 200 with status incomplete.
//	@Tags			patrol
//	@Produce		application/json
//	@Router			/patrol/routes [post]
//	@Success		200	{object}	RouteResponse
//	@Failure		500	{object}	ErrResponse
func (h *PatrolHandler) replan(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	rec, err := h.svc.Replan(r.Context())
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	h.promeMetrics.observePlan("replan", rec.Status, started)
	h.promeMetrics.hotspots.Set(float64(h.svc.HotspotCount()))

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewRouteResponse(rec))
}

// PreviewRequest model info
//
//	@Description	request body for planning over an ad hoc location list
type PreviewRequest struct {
	Locations []LocationRequest `json:"locations" validate:"dive"`
}

// LocationRequest model info
//
//	@Description	one location of a preview request
type LocationRequest struct {
	ID   string  `json:"id" validate:"required"`
	Zone string  `json:"zone" validate:"required"`
	Lat  float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon  float64 `json:"lon" validate:"gte=-180,lte=180"`
	Alt  float64 `json:"alt"`
}

func (p *PreviewRequest) Bind(r *http.Request) error {
	if p.Locations == nil {
		return errors.New("invalid request: locations is required")
	}
	return nil
}

// toLocations converts the request into fresh, unconnected locations. Unknown zones
// are bad input, a repeated id is a conflict.
func (p *PreviewRequest) toLocations() ([]*datastructure.Location, error) {
	g := datastructure.NewGraph()
	for i, l := range p.Locations {
		zone, err := datastructure.ParseZone(l.Zone)
		if err != nil {
			return nil, server.WrapErrorf(err, server.ErrBadParamInput, "locations[%d]: %s", i, err.Error())
		}
		if err := g.Add(datastructure.NewLocation(l.ID, zone, l.Lat, l.Lon, l.Alt)); err != nil {
			return nil, server.WrapErrorf(err, server.ErrConflict, "locations[%d]: %s", i, err.Error())
		}
	}
	return g.Locations(), nil
}

// preview
//
//	@Summary		plan a patrol route over a location list.
//	@Description	pure plan over the given locations. Nothing is stored and the session layout is left untouched.
//	@Tags			patrol
//	@Param			body	body	PreviewRequest	true	"locations to plan over, non hotspots are ignored"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/patrol/routes/preview [post]
//	@Success		200	{object}	RouteResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		409	{object}	ErrResponse
func (h *PatrolHandler) preview(w http.ResponseWriter, r *http.Request) {
	data := &PreviewRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.validateStruct(w, r, *data) {
		return
	}

	locs, err := data.toLocations()
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	started := time.Now()
	rec := h.svc.Preview(r.Context(), locs)
	h.promeMetrics.observePlan("preview", rec.Status, started)

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewRouteResponse(rec))
}

// latestRoute
//
//	@Summary		last stored patrol route.
//	@Tags			patrol
//	@Produce		application/json
//	@Router			/patrol/routes/latest [get]
//	@Success		200	{object}	RouteResponse
//	@Failure		404	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *PatrolHandler) latestRoute(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.LatestRoute(r.Context())
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewRouteResponse(rec))
}

// route
//
//	@Summary		stored patrol route by id.
//	@Tags			patrol
//	@Param			id	path	int	true	"route id"
//	@Produce		application/json
//	@Router			/patrol/routes/{id} [get]
//	@Success		200	{object}	RouteResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
func (h *PatrolHandler) route(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(fmt.Errorf("invalid route id %q", chi.URLParam(r, "id"))))
		return
	}

	rec, err := h.svc.Route(r.Context(), id)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewRouteResponse(rec))
}

// SegmentWeightResponse model info
//
//	@Description	outcome of an emergency weight toggle
type SegmentWeightResponse struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Message string `json:"message"`
}

// overrideSegment
//
//	@Summary		emergency weight override of one segment.
//	@Description	a segment leaving the aerodrome drops to weight 1, other segments keep their weight.
//	@Tags			patrol
//	@Param			from	path	string	true	"origin location id"
//	@Param			to		path	string	true	"destination location id"
//	@Produce		application/json
//	@Router			/patrol/segments/{from}/{to}/override [post]
//	@Success		200	{object}	SegmentWeightResponse
//	@Failure		404	{object}	ErrResponse
func (h *PatrolHandler) overrideSegment(w http.ResponseWriter, r *http.Request) {
	h.segmentWeight(w, r, h.svc.OverrideSegment)
}

// recoverSegment
//
//	@Summary		restore the zone weight of one segment.
//	@Tags			patrol
//	@Param			from	path	string	true	"origin location id"
//	@Param			to		path	string	true	"destination location id"
//	@Produce		application/json
//	@Router			/patrol/segments/{from}/{to}/recover [post]
//	@Success		200	{object}	SegmentWeightResponse
//	@Failure		404	{object}	ErrResponse
func (h *PatrolHandler) recoverSegment(w http.ResponseWriter, r *http.Request) {
	h.segmentWeight(w, r, h.svc.RecoverSegment)
}

func (h *PatrolHandler) segmentWeight(w http.ResponseWriter, r *http.Request,
	toggle func(ctx context.Context, from, to string) (string, error)) {
	from, to := chi.URLParam(r, "from"), chi.URLParam(r, "to")
	msg, err := toggle(r.Context(), from, to)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, &SegmentWeightResponse{From: from, To: to, Message: msg})
}

// ErrResponse model info
//
//	@Description	error response
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText    string   `json:"status"`          // user-level status message
	AppCode       int64    `json:"code,omitempty"`  // application-specific error code
	ErrorText     string   `json:"error,omitempty"` // application-level error message, for debugging
	ErrValidation []string `json:"validation,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrValidation(err error, errV []error) render.Renderer {
	vv := []string{}
	for _, v := range errV {
		vv = append(vv, v.Error())
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
		ErrValidation:  vv,
	}
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

func ErrChi(err error) render.Renderer {
	code := getStatusCode(err)
	statusText := ""
	switch code {
	case http.StatusNotFound:
		statusText = "Resource not found."
	case http.StatusInternalServerError:
		statusText = "Internal server error."
	case http.StatusConflict:
		statusText = "Resource conflict."
	case http.StatusBadRequest:
		statusText = "Bad request."
	default:
		statusText = "Error."
	}

	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: code,
		StatusText:     statusText,
		ErrorText:      err.Error(),
	}
}

func getStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch server.CodeOf(err) {
	case server.ErrNotFound:
		return http.StatusNotFound
	case server.ErrConflict:
		return http.StatusConflict
	case server.ErrBadParamInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func translateError(verrs validator.ValidationErrors, trans ut.Translator) (errs []error) {
	for _, e := range verrs {
		errs = append(errs, errors.New(e.Translate(trans)))
	}
	return errs
}
