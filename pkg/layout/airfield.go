package layout

import (
	"errors"
	"fmt"

	"lintang/dronepatrol/pkg/datastructure"
	"lintang/dronepatrol/pkg/geo"

	"golang.org/x/exp/rand"
)

const AerodromeOutlineNodes = 24

// maxSampleAttempts bounds the rejection sampling of one hotspot.
const maxSampleAttempts = 1000

var (
	ErrAerodromeOutsideProperty = errors.New("aerodrome circle does not fit inside the property")
	ErrNoHotspotRoom            = errors.New("no room for hotspots between the property line and the aerodrome")
)

const (
	terminalAltitude            = 330
	aerodromeAltitude           = 280
	propertyAltitude            = 285
	hotspotOverTerminalAltitude = 340
)

// Rect is an axis aligned lat/lon box.
type Rect struct {
	MinLat, MinLon float64
	MaxLat, MaxLon float64
}

func (r Rect) Contains(lat, lon float64) bool {
	return lat >= r.MinLat && lat <= r.MaxLat && lon >= r.MinLon && lon <= r.MaxLon
}

// Airfield describes the fixed shapes of one airport property. Hotspots are sampled
// inside HotspotArea and kept only if they also fall inside Property and outside the
// aerodrome. The terminal footprint is a U open to the west.
type Airfield struct {
	AerodromeCenter  datastructure.Coordinate
	AerodromeRadius  float64
	Property         Rect
	HotspotArea      Rect
	TerminalTop      Rect
	TerminalBottom   Rect
	TerminalVertical Rect
}

// PittsburghAirfield is the surveyed layout the default configuration is built around.
func PittsburghAirfield() Airfield {
	return Airfield{
		AerodromeCenter:  datastructure.NewCoordinate(40.4900, -80.2365),
		AerodromeRadius:  0.0025,
		Property:         Rect{MinLat: 40.4870, MinLon: -80.2460, MaxLat: 40.4945, MaxLon: -80.2290},
		HotspotArea:      Rect{MinLat: 40.4880, MinLon: -80.2450, MaxLat: 40.4950, MaxLon: -80.2300},
		TerminalTop:      Rect{MinLat: 40.4905, MinLon: -80.2330, MaxLat: 40.4910, MaxLon: -80.2310},
		TerminalBottom:   Rect{MinLat: 40.4890, MinLon: -80.2330, MaxLat: 40.4895, MaxLon: -80.2310},
		TerminalVertical: Rect{MinLat: 40.4890, MinLon: -80.2330, MaxLat: 40.4910, MaxLon: -80.2310},
	}
}

func (a Airfield) WithinTerminal(lat, lon float64) bool {
	return a.TerminalTop.Contains(lat, lon) || a.TerminalBottom.Contains(lat, lon) || a.TerminalVertical.Contains(lat, lon)
}

func (a Airfield) WithinAerodrome(lat, lon float64) bool {
	return geo.WithinCircle(datastructure.NewCoordinate(lat, lon), a.AerodromeCenter, a.AerodromeRadius)
}

// Validate checks that the aerodrome circle lies inside the property rectangle.
func (a Airfield) Validate() error {
	c, r := a.AerodromeCenter, a.AerodromeRadius
	if r <= 0 || !a.Property.Contains(c.Lat-r, c.Lon-r) || !a.Property.Contains(c.Lat+r, c.Lon+r) {
		return fmt.Errorf("%w: center (%f, %f) radius %f", ErrAerodromeOutsideProperty, c.Lat, c.Lon, r)
	}
	return nil
}

// Build creates the airfield graph: the terminal ring, the aerodrome center with its
// outline ring and spokes, the property line ring and hotspotCount hotspots placed by
// rejection sampling. The same seed always yields the same layout.
func (a Airfield) Build(hotspotCount int, seed uint64) (*datastructure.Graph, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	hotspots, err := a.sampleHotspots(hotspotCount, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, err
	}

	g := datastructure.NewGraph()

	// surveyed terminal outline
	tNOuter := datastructure.NewLocation("T-N-outer", datastructure.ZoneTerminal, 40.4910, -80.2330, terminalAltitude)
	tNInner := datastructure.NewLocation("T-N-inner", datastructure.ZoneTerminal, 40.4905, -80.2330, terminalAltitude)
	tEInnerN := datastructure.NewLocation("T-E-inner-N", datastructure.ZoneTerminal, 40.4905, -80.2315, terminalAltitude)
	tEInnerS := datastructure.NewLocation("T-E-inner-S", datastructure.ZoneTerminal, 40.4895, -80.2315, terminalAltitude)
	tSInner := datastructure.NewLocation("T-S-inner", datastructure.ZoneTerminal, 40.4895, -80.2330, terminalAltitude)
	tSOuter := datastructure.NewLocation("T-S-outer", datastructure.ZoneTerminal, 40.4890, -80.2330, terminalAltitude)
	tWOuterS := datastructure.NewLocation("T-W-outer-S", datastructure.ZoneTerminal, 40.4890, -80.2310, terminalAltitude)
	tWOuterN := datastructure.NewLocation("T-W-outer-N", datastructure.ZoneTerminal, 40.4910, -80.2310, terminalAltitude)

	center := datastructure.NewLocation("A-Center", datastructure.ZoneAerodrome, a.AerodromeCenter.Lat, a.AerodromeCenter.Lon, aerodromeAltitude)

	outline := make([]*datastructure.Location, 0, AerodromeOutlineNodes)
	for i, p := range geo.CirclePoints(a.AerodromeCenter, a.AerodromeRadius, AerodromeOutlineNodes) {
		node := datastructure.NewLocation(fmt.Sprintf("A-Outline-%d", i), datastructure.ZoneAerodrome, p.Lat, p.Lon, aerodromeAltitude)
		outline = append(outline, node)
		center.Connect(node)
	}
	ring(outline)

	pNW := datastructure.NewLocation("P-NW", datastructure.ZonePropertyLine, a.Property.MaxLat, a.Property.MinLon, propertyAltitude)
	pNE := datastructure.NewLocation("P-NE", datastructure.ZonePropertyLine, a.Property.MaxLat, a.Property.MaxLon, propertyAltitude)
	pSE := datastructure.NewLocation("P-SE", datastructure.ZonePropertyLine, a.Property.MinLat, a.Property.MaxLon, propertyAltitude)
	pSW := datastructure.NewLocation("P-SW", datastructure.ZonePropertyLine, a.Property.MinLat, a.Property.MinLon, propertyAltitude)

	g.MustAdd(tNOuter, tNInner, tEInnerN, tEInnerS, tSInner, tSOuter, tWOuterS, tWOuterN, center, pNW, pNE, pSE, pSW)
	g.MustAdd(outline...)
	g.MustAdd(hotspots...)

	ring([]*datastructure.Location{tNOuter, tWOuterN, tWOuterS, tSOuter, tSInner, tEInnerS, tEInnerN, tNInner})
	ring([]*datastructure.Location{pNW, pNE, pSE, pSW})

	return g, nil
}

func (a Airfield) sampleHotspots(n int, rng *rand.Rand) ([]*datastructure.Location, error) {
	hotspots := make([]*datastructure.Location, 0, n)
	for i := 0; i < n; i++ {
		var lat, lon, alt float64
		placed := false
		for attempt := 0; attempt < maxSampleAttempts; attempt++ {
			lat = a.HotspotArea.MinLat + rng.Float64()*(a.HotspotArea.MaxLat-a.HotspotArea.MinLat)
			lon = a.HotspotArea.MinLon + rng.Float64()*(a.HotspotArea.MaxLon-a.HotspotArea.MinLon)
			alt = 300 + rng.Float64()*20

			if a.WithinTerminal(lat, lon) {
				alt = hotspotOverTerminalAltitude
			}
			if a.Property.Contains(lat, lon) && !a.WithinAerodrome(lat, lon) {
				placed = true
				break
			}
		}
		if !placed {
			return nil, fmt.Errorf("%w: H%d rejected %d times", ErrNoHotspotRoom, i+1, maxSampleAttempts)
		}
		hotspots = append(hotspots, datastructure.NewLocation(fmt.Sprintf("H%d", i+1), datastructure.ZoneHotspot, lat, lon, alt))
	}
	return hotspots, nil
}

// ring links every node to its successor and the last back to the first.
func ring(nodes []*datastructure.Location) {
	for i, n := range nodes {
		n.Connect(nodes[(i+1)%len(nodes)])
	}
}
